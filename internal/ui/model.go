package ui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nconklindev/scanmerge/internal/config"
	"github.com/nconklindev/scanmerge/internal/logger"
	"github.com/nconklindev/scanmerge/internal/merger"
	"github.com/nconklindev/scanmerge/internal/types"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type state int

const (
	stateFilePicker state = iota
	stateFilename
	stateProcessing
	stateComplete
	stateError
)

const missingInputWarning = "Please select scan report files and enter a filename."

type Model struct {
	state         state
	cfg           *config.Config
	filepicker    filepicker.Model
	filename      textinput.Model
	selectedFiles []string
	warning       string
	result        *types.MergeResult
	err           error
	width         int
	height        int
	progress      progress.Model
	progressChan  chan float64
	resultChan    chan mergeResultMsg
}

type mergeResultMsg struct {
	result *types.MergeResult
	err    error
}

type mergeCompleteMsg struct {
	result *types.MergeResult
	err    error
}

type progressMsg float64

type waitForProgressMsg struct{}

func InitialModel(cfg *config.Config, now time.Time) Model {
	fp := filepicker.New()
	fp.AllowedTypes = []string{".xlsx"}
	fp.CurrentDirectory, _ = os.Getwd()

	fp.Styles.Cursor = lipgloss.NewStyle().Foreground(colorAccent)
	fp.Styles.Symlink = lipgloss.NewStyle().Foreground(colorHighlit)
	fp.Styles.Directory = lipgloss.NewStyle().Foreground(colorHighlit)
	fp.Styles.File = lipgloss.NewStyle().Foreground(colorText)
	fp.Styles.Permission = lipgloss.NewStyle().Foreground(colorMuted)
	fp.Styles.Selected = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	fp.Styles.FileSize = lipgloss.NewStyle().Foreground(colorMuted)

	ti := textinput.New()
	ti.Placeholder = "merged report filename"
	ti.SetValue(cfg.DefaultFilename(now))
	ti.CharLimit = 255
	ti.Width = 50
	ti.PromptStyle = CheckedStyle
	ti.Cursor.Style = SelectedStyle

	prog := progress.New(progress.WithGradient("#FF8C42", "#FF9F5A"))

	return Model{
		state:      stateFilePicker,
		cfg:        cfg,
		filepicker: fp,
		filename:   ti,
		progress:   prog,
	}
}

func (m Model) Init() tea.Cmd {
	return m.filepicker.Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// Room for the title, selected file list and help text
		height := msg.Height - 14 - m.selectedListHeight()
		if height < 5 {
			height = 5
		}
		m.filepicker.SetHeight(height)

		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case stateFilePicker:
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "tab":
				m.state = stateFilename
				m.warning = ""
				return m, m.filename.Focus()
			case "x":
				m.selectedFiles = nil
				return m, nil
			}

		case stateFilename:
			switch msg.String() {
			case "ctrl+c":
				return m, tea.Quit
			case "esc", "shift+tab":
				m.filename.Blur()
				m.state = stateFilePicker
				return m, nil
			case "enter":
				outputFile := m.cfg.OutputPath(m.filename.Value())
				if err := merger.CheckInputs(m.selectedFiles, outputFile); err != nil {
					m.warning = missingInputWarning
					logger.Warn("Merge requested with %d file(s) and filename %q", len(m.selectedFiles), m.filename.Value())
					return m, nil
				}
				m.warning = ""
				m.filename.Blur()
				m.state = stateProcessing
				return m.mergeFiles(outputFile)
			}
			var cmd tea.Cmd
			m.filename, cmd = m.filename.Update(msg)
			return m, cmd

		case stateComplete, stateError:
			return m, tea.Quit
		}

	case mergeCompleteMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = stateError
			logger.Error("Merge failed: %v", msg.err)
			return m, nil
		}
		m.result = msg.result
		m.state = stateComplete
		return m, nil

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd

	case progressMsg:
		if m.state == stateProcessing {
			cmd := m.progress.SetPercent(float64(msg))
			return m, tea.Batch(cmd, waitForProgress(m.progressChan, m.resultChan))
		}
		return m, nil

	case waitForProgressMsg:
		return m, waitForProgress(m.progressChan, m.resultChan)
	}

	switch m.state {
	case stateFilePicker:
		var cmd tea.Cmd
		m.filepicker, cmd = m.filepicker.Update(msg)

		if didSelect, path := m.filepicker.DidSelectFile(msg); didSelect {
			m.toggleFile(path)
		}

		return m, cmd

	case stateFilename:
		var cmd tea.Cmd
		m.filename, cmd = m.filename.Update(msg)
		return m, cmd
	}

	return m, nil
}

// toggleFile adds path to the merge list, or removes it if already there.
// Files merge in the order they were selected.
func (m *Model) toggleFile(path string) {
	for i, f := range m.selectedFiles {
		if f == path {
			m.selectedFiles = append(m.selectedFiles[:i], m.selectedFiles[i+1:]...)
			return
		}
	}
	m.selectedFiles = append(m.selectedFiles, path)
}

func (m Model) selectedListHeight() int {
	if len(m.selectedFiles) == 0 {
		return 1
	}
	return len(m.selectedFiles) + 1
}

func (m Model) mergeFiles(outputFile string) (Model, tea.Cmd) {
	m.progressChan = make(chan float64, 100)
	m.resultChan = make(chan mergeResultMsg, 1)

	cmd := tea.Batch(
		func() tea.Msg {
			// Capture for the goroutine
			progressChan := m.progressChan
			resultChan := m.resultChan
			inputFiles := append([]string(nil), m.selectedFiles...)
			cfg := m.cfg

			go func() {
				var result *types.MergeResult
				err := cfg.EnsureOutputDir()
				if err == nil {
					result, err = merger.MergeFiles(inputFiles, outputFile, progressChan)
				}

				resultChan <- mergeResultMsg{result: result, err: err}

				close(progressChan)
				close(resultChan)
			}()

			return waitForProgressMsg{}
		},
		waitForProgress(m.progressChan, m.resultChan),
		m.progress.Init(),
	)

	return m, cmd
}

func waitForProgress(progressChan chan float64, resultChan chan mergeResultMsg) tea.Cmd {
	return func() tea.Msg {
		if progressChan == nil {
			return nil
		}

		p, ok := <-progressChan
		if !ok {
			res, ok := <-resultChan
			if ok {
				return mergeCompleteMsg(res)
			}
			return nil
		}

		return progressMsg(p)
	}
}

func (m Model) View() string {
	switch m.state {
	case stateFilePicker:
		return m.viewFilePicker()
	case stateFilename:
		return m.viewFilename()
	case stateProcessing:
		return m.viewProcessing()
	case stateComplete:
		return m.viewComplete()
	case stateError:
		return m.viewError()
	}
	return ""
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	title := TitleStyle.Render("▦ Scanmerge - WhiteRabbit Scan Report Merger")
	s.WriteString(title)
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render("Select the scan report files to merge"))
	s.WriteString("\n\n")
	s.WriteString(m.filepicker.View())
	s.WriteString("\n\n")
	s.WriteString(m.viewSelectedFiles())
	s.WriteString("\n")
	s.WriteString(HelpStyle.Render("enter: add/remove file • x: clear selection • tab: continue • q: quit"))

	return s.String()
}

func (m Model) viewSelectedFiles() string {
	if len(m.selectedFiles) == 0 {
		return UnselectedStyle.Render("No files selected")
	}

	var s strings.Builder
	s.WriteString(SuccessStyle.Render(fmt.Sprintf("✓ %d file(s) selected", len(m.selectedFiles))))
	s.WriteString("\n")
	for i, f := range m.selectedFiles {
		s.WriteString(CheckedStyle.Render(fmt.Sprintf("  %d. %s", i+1, filepath.Base(f))))
		s.WriteString("\n")
	}
	return s.String()
}

func (m Model) viewFilename() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("▦ Name the Merged Report"))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render(fmt.Sprintf("Merging %d file(s) into %s", len(m.selectedFiles), m.cfg.Output.Dir)))
	s.WriteString("\n\n")
	s.WriteString(m.filename.View())
	s.WriteString("\n")

	if m.warning != "" {
		s.WriteString("\n")
		s.WriteString(WarningStyle.Render("⚠ " + m.warning))
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(HelpStyle.Render("enter: merge • esc: back to files • ctrl+c: quit"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewProcessing() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("▦ Merging..."))
	s.WriteString("\n\n")
	s.WriteString(fmt.Sprintf("Merging %d scan report(s)...", len(m.selectedFiles)))
	s.WriteString("\n\n")
	s.WriteString(m.progress.View())

	return BoxStyle.Render(s.String())
}

func (m Model) viewComplete() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("✓ Files merged successfully!"))
	s.WriteString("\n\n")

	// Truncate paths if they're too long
	maxPathLen := m.width - 20
	if maxPathLen < 30 {
		maxPathLen = 30
	}

	outputPath := m.result.OutputFile
	if len(outputPath) > maxPathLen {
		outputPath = "..." + outputPath[len(outputPath)-maxPathLen+3:]
	}

	s.WriteString(fmt.Sprintf("Inputs: %d file(s)\n", len(m.result.InputFiles)))
	s.WriteString(SuccessStyle.Render(fmt.Sprintf("Output: %s\n", outputPath)))
	s.WriteString("\n")
	for _, sheet := range m.result.Sheets {
		s.WriteString(fmt.Sprintf("  %-31s %6d rows\n", sheet.Name, sheet.Rows-sheet.Separators))
	}
	s.WriteString("\n")
	s.WriteString(fmt.Sprintf("Rows merged: %d\n", m.result.TotalRows()))
	s.WriteString("\n")
	s.WriteString(HelpStyle.Render("Press any key to exit"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewError() string {
	var s strings.Builder

	s.WriteString(ErrorStyle.Render("✗ An error occurred while merging files"))
	s.WriteString("\n\n")
	s.WriteString(m.err.Error())

	var docErr *merger.DocumentError
	if errors.As(m.err, &docErr) {
		s.WriteString("\n\n")
		s.WriteString(SubtitleStyle.Render("Check that every selected file is a valid .xlsx scan report."))
	}

	if path := logger.GetLogFilePath(); path != "" {
		s.WriteString("\n")
		s.WriteString(SubtitleStyle.Render("Log: " + path))
	}
	s.WriteString("\n\n")
	s.WriteString(HelpStyle.Render("Press any key to exit"))

	return BoxStyle.Render(s.String())
}
