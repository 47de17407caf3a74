package merger

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nconklindev/scanmerge/internal/logger"
	"github.com/nconklindev/scanmerge/internal/types"

	"github.com/xuri/excelize/v2"
)

// builtInDateFormats are the number format ids Excel reserves for dates and times
var builtInDateFormats = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 18: true, 19: true, 20: true, 21: true, 22: true,
	27: true, 28: true, 29: true, 30: true, 31: true, 32: true, 33: true, 34: true, 35: true, 36: true,
	45: true, 46: true, 47: true,
	50: true, 51: true, 52: true, 53: true, 54: true, 55: true, 56: true, 57: true, 58: true,
}

var isoDateLayouts = []string{
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// ReadWorkbook parses an xlsx blob into its sheets, in workbook order.
// The first row of every sheet is taken as the header row.
func ReadWorkbook(blob types.Blob) (*types.Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(blob.Data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	wb := &types.Workbook{Name: blob.Name}
	for _, name := range f.GetSheetList() {
		sheet, err := readSheet(f, name, date1904)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", name, err)
		}
		logger.Debug("Read sheet %q from %s: %d columns, %d rows", name, displayName(blob.Name), len(sheet.Columns), len(sheet.Rows))
		wb.Sheets = append(wb.Sheets, sheet)
	}

	return wb, nil
}

func readSheet(f *excelize.File, name string, date1904 bool) (types.Sheet, error) {
	sheet := types.Sheet{Name: name}

	display, err := f.GetRows(name)
	if err != nil {
		return sheet, err
	}
	if len(display) == 0 {
		return sheet, nil
	}

	raw, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return sheet, err
	}

	width := 0
	for _, row := range display {
		if len(row) > width {
			width = len(row)
		}
	}
	sheet.Columns = headerNames(display[0], width)

	for rowIdx := 1; rowIdx < len(display); rowIdx++ {
		var record types.Record
		for colIdx, text := range display[rowIdx] {
			v, err := readCell(f, name, colIdx, rowIdx, text, cellAt(raw, rowIdx, colIdx), date1904)
			if err != nil {
				return sheet, err
			}
			if v.IsBlank() {
				continue
			}
			record.Fields = append(record.Fields, types.Field{Column: sheet.Columns[colIdx], Value: v})
		}

		// Blank rows in a source sheet carry no data
		if record.IsSeparator() {
			continue
		}
		sheet.Rows = append(sheet.Rows, record)
	}

	return sheet, nil
}

// headerNames turns the header row into unique column names. Header text is
// kept verbatim; blank or missing headers become "Unnamed: <index>" and
// repeats get a ".<n>" suffix.
func headerNames(header []string, width int) []string {
	names := make([]string, width)
	seen := make(map[string]int, width)

	for i := 0; i < width; i++ {
		name := ""
		if i < len(header) {
			name = header[i]
		}
		if strings.TrimSpace(name) == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}

		base := name
		for seen[name] > 0 {
			name = fmt.Sprintf("%s.%d", base, seen[base])
			seen[base]++
		}
		seen[name]++
		names[i] = name
	}

	return names
}

func readCell(f *excelize.File, sheet string, col, row int, display, raw string, date1904 bool) (types.Value, error) {
	if display == "" && raw == "" {
		return types.Value{}, nil
	}

	cell, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return types.Value{}, err
	}
	cellType, err := f.GetCellType(sheet, cell)
	if err != nil {
		return types.Value{}, err
	}

	switch cellType {
	case excelize.CellTypeBool:
		return types.Bool(raw == "1" || strings.EqualFold(raw, "true")), nil
	case excelize.CellTypeDate:
		for _, layout := range isoDateLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return types.Date(t), nil
			}
		}
		return types.Text(display), nil
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString,
		excelize.CellTypeFormula, excelize.CellTypeError:
		return types.Text(display), nil
	}

	n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return types.Text(display), nil
	}
	if isDateCell(f, sheet, cell) {
		if t, err := excelize.ExcelDateToTime(n, date1904); err == nil {
			return types.Date(t), nil
		}
	}

	return types.Number(n), nil
}

// isDateCell checks the number format applied to cell
func isDateCell(f *excelize.File, sheet, cell string) bool {
	styleID, err := f.GetCellStyle(sheet, cell)
	if err != nil || styleID == 0 {
		return false
	}

	style, err := f.GetStyle(styleID)
	if err != nil || style == nil {
		return false
	}
	if builtInDateFormats[style.NumFmt] {
		return true
	}
	return style.CustomNumFmt != nil && IsDateFormat(*style.CustomNumFmt)
}

// IsDateFormat reports whether a custom number format code renders a date or time
func IsDateFormat(code string) bool {
	var b strings.Builder
	inQuote, inBracket := false, false

	for _, r := range code {
		switch {
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '[':
			inBracket = true
		case r == ']':
			inBracket = false
		case inBracket:
		default:
			b.WriteRune(r)
		}
	}

	stripped := strings.ToLower(b.String())
	if stripped == "general" {
		return false
	}
	return strings.ContainsAny(stripped, "ymdhs")
}

func cellAt(rows [][]string, row, col int) string {
	if row >= len(rows) || col >= len(rows[row]) {
		return ""
	}
	return rows[row][col]
}

func displayName(name string) string {
	if name == "" {
		return "<unnamed input>"
	}
	return name
}
