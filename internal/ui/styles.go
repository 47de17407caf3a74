package ui

import "github.com/charmbracelet/lipgloss"

const (
	colorAccent  = lipgloss.Color("#FF8C42")
	colorHighlit = lipgloss.Color("#FFB84D")
	colorMuted   = lipgloss.Color("#6B7280")
	colorText    = lipgloss.Color("#FFFFFF")
	colorWarning = lipgloss.Color("#FACC15")
	colorError   = lipgloss.Color("#FF4757")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent).
			MarginTop(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			MarginBottom(1)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	UnselectedStyle = lipgloss.NewStyle().
			Foreground(colorText)

	CheckedStyle = lipgloss.NewStyle().
			Foreground(colorHighlit).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(colorWarning).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(colorHighlit).
			Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			MarginTop(1)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(1, 2)
)
