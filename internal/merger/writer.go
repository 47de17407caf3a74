package merger

import (
	"strconv"

	"github.com/nconklindev/scanmerge/internal/logger"
	"github.com/nconklindev/scanmerge/internal/types"

	"github.com/xuri/excelize/v2"
)

const (
	// defaultSheet is the sheet excelize.NewFile starts with
	defaultSheet    = "Sheet1"
	maxSheetNameLen = 31
)

// WriteWorkbook renders sheets, in order, into a new xlsx document.
// Each sheet gets a header row of its columns; separator records stay blank.
func WriteWorkbook(sheets []*types.MergedSheet) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "top"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, err
	}

	for i, sheet := range sheets {
		name := sheet.Name
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				return nil, err
			}
		} else {
			name = uniqueSheetName(f, name)
			if name != sheet.Name {
				logger.Warn("Sheet %q clashes with an existing sheet name, writing it as %q", sheet.Name, name)
			}
			if _, err := f.NewSheet(name); err != nil {
				return nil, err
			}
		}

		if err := writeSheet(f, name, sheet, headerStyle); err != nil {
			return nil, err
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// uniqueSheetName appends a counter when name matches an existing sheet.
// Sheet names compare case-insensitively and are capped at 31 characters.
func uniqueSheetName(f *excelize.File, name string) string {
	if idx, err := f.GetSheetIndex(name); err != nil || idx == -1 {
		return name
	}

	for n := 1; ; n++ {
		suffix := strconv.Itoa(n)
		base := []rune(name)
		if len(base)+len(suffix) > maxSheetNameLen {
			base = base[:maxSheetNameLen-len(suffix)]
		}
		candidate := string(base) + suffix
		if idx, err := f.GetSheetIndex(candidate); err == nil && idx == -1 {
			return candidate
		}
	}
}

func writeSheet(f *excelize.File, name string, sheet *types.MergedSheet, headerStyle int) error {
	if len(sheet.Columns) == 0 {
		return nil
	}

	header := make([]interface{}, len(sheet.Columns))
	for i, col := range sheet.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return err
	}

	lastHeader, err := excelize.CoordinatesToCellName(len(sheet.Columns), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(name, "A1", lastHeader, headerStyle); err != nil {
		return err
	}

	for i, record := range sheet.Rows {
		if record.IsSeparator() {
			continue
		}

		values := make([]interface{}, len(sheet.Columns))
		for j, col := range sheet.Columns {
			if v, ok := record.Get(col); ok {
				values[j] = v.Interface()
			}
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &values); err != nil {
			return err
		}
	}

	return nil
}
