package merger

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nconklindev/scanmerge/internal/logger"
	"github.com/nconklindev/scanmerge/internal/types"
)

// Reserved sheet names every scan report carries
const (
	TableOverview = "Table Overview"
	FieldOverview = "Field Overview"
)

// Merger accumulates sheets across input workbooks. The zero value is not
// usable; create one with New for every merge.
type Merger struct {
	tableOverview *types.MergedSheet
	fieldOverview *types.MergedSheet
	order         []string
	other         map[string]*types.MergedSheet
}

func New() *Merger {
	return &Merger{
		tableOverview: types.NewMergedSheet(TableOverview),
		fieldOverview: types.NewMergedSheet(FieldOverview),
		other:         make(map[string]*types.MergedSheet),
	}
}

// Add appends every sheet of wb to its accumulator. "Field Overview" gets a
// blank separator row after the rows of each workbook that has one.
func (m *Merger) Add(wb *types.Workbook) {
	for _, sheet := range wb.Sheets {
		switch sheet.Name {
		case TableOverview:
			m.tableOverview.Append(sheet)
		case FieldOverview:
			m.fieldOverview.Append(sheet)
			m.fieldOverview.AppendSeparator()
		default:
			merged, ok := m.other[sheet.Name]
			if !ok {
				merged = types.NewMergedSheet(sheet.Name)
				m.other[sheet.Name] = merged
				m.order = append(m.order, sheet.Name)
			}
			merged.Append(sheet)
		}
	}
}

// Sheets returns the output sheets: the two overviews first, then every other
// sheet in the order it was first seen.
func (m *Merger) Sheets() []*types.MergedSheet {
	sheets := make([]*types.MergedSheet, 0, len(m.order)+2)
	sheets = append(sheets, m.tableOverview, m.fieldOverview)
	for _, name := range m.order {
		sheets = append(sheets, m.other[name])
	}
	return sheets
}

// Merge reads every input in order and builds the consolidated workbook.
// Any unreadable input aborts the merge with a *DocumentError.
func Merge(inputs []types.Blob, progressChan chan<- float64) (*types.MergeResult, error) {
	m := New()

	// One step per input plus the final write
	totalSteps := len(inputs) + 1
	reportProgress := func(current int) {
		if progressChan != nil {
			select {
			case progressChan <- float64(current) / float64(totalSteps):
			default:
			}
		}
	}

	result := &types.MergeResult{}
	for i, blob := range inputs {
		wb, err := ReadWorkbook(blob)
		if err != nil {
			return nil, newDocumentError(i, blob.Name, err)
		}
		m.Add(wb)
		result.InputFiles = append(result.InputFiles, blob.Name)
		logger.Debug("Merged %s (%d sheets)", displayName(blob.Name), len(wb.Sheets))
		reportProgress(i + 1)
	}

	sheets := m.Sheets()
	data, err := WriteWorkbook(sheets)
	if err != nil {
		return nil, fmt.Errorf("write merged workbook: %w", err)
	}
	reportProgress(totalSteps)

	for _, s := range sheets {
		result.Sheets = append(result.Sheets, types.SheetSummary{
			Name:       s.Name,
			Columns:    len(s.Columns),
			Rows:       len(s.Rows),
			Separators: s.Separators(),
		})
	}
	result.Data = data

	return result, nil
}

// CheckInputs rejects a merge request with no files or no output filename
func CheckInputs(inputFiles []string, outputFile string) error {
	if len(inputFiles) == 0 || outputFile == "" {
		return ErrMissingInput
	}
	return nil
}

// MergeFiles merges the workbooks at inputFiles into outputFile. The output is
// only written once the whole merge has succeeded.
func MergeFiles(inputFiles []string, outputFile string, progressChan chan<- float64) (*types.MergeResult, error) {
	if outputFile == "" {
		return nil, ErrMissingInput
	}

	blobs := make([]types.Blob, 0, len(inputFiles))
	for _, path := range inputFiles {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		blobs = append(blobs, types.Blob{Name: filepath.Base(path), Data: data})
	}

	result, err := Merge(blobs, progressChan)
	if err != nil {
		return nil, err
	}

	if err := os.WriteFile(outputFile, result.Data, 0644); err != nil {
		return nil, err
	}

	result.InputFiles = inputFiles
	result.OutputFile = outputFile
	logger.Info("Merged %d report(s) into %s", len(inputFiles), outputFile)

	return result, nil
}
