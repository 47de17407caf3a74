package merger

import (
	"testing"
	"time"

	"github.com/nconklindev/scanmerge/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestHeaderNames(t *testing.T) {
	tests := []struct {
		name     string
		header   []string
		width    int
		expected []string
	}{
		{"Plain", []string{"Table", "Field"}, 2, []string{"Table", "Field"}},
		{"Blank header", []string{"Table", "", "Type"}, 3, []string{"Table", "Unnamed: 1", "Type"}},
		{"Data wider than header", []string{"Table"}, 3, []string{"Table", "Unnamed: 1", "Unnamed: 2"}},
		{"Duplicates", []string{"Value", "Frequency", "Value", "Frequency", "Value"}, 5,
			[]string{"Value", "Frequency", "Value.1", "Frequency.1", "Value.2"}},
		{"Duplicate clashes with existing suffix", []string{"A.1", "A", "A"}, 3, []string{"A.1", "A", "A.2"}},
		{"Keeps surrounding whitespace", []string{" Table ", "Field"}, 2, []string{" Table ", "Field"}},
		{"Whitespace only is blank", []string{"Table", "   "}, 2, []string{"Table", "Unnamed: 1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, headerNames(tt.header, tt.width))
		})
	}
}

func TestIsDateFormat(t *testing.T) {
	tests := []struct {
		code     string
		expected bool
	}{
		{"yyyy-mm-dd", true},
		{"d/m/yyyy h:mm", true},
		{"[$-409]mmmm d, yyyy", true},
		{"hh:mm:ss", true},
		{"General", false},
		{"0.00%", false},
		{"#,##0.00_);[Red](#,##0.00)", false},
		{`0 "days"`, false},
		{"0.00E+00", false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsDateFormat(tt.code))
		})
	}
}

func TestReadWorkbookCellTypes(t *testing.T) {
	when := time.Date(2023, time.November, 14, 0, 0, 0, 0, time.UTC)
	data := buildWorkbook(t, fixtureSheet{name: "Types", rows: [][]interface{}{
		{"Text", "Number", "Float", "Bool", "Date", "Numeric text"},
		{"abc", 42, 0.5, true, when, "007"},
	}})

	wb, err := ReadWorkbook(types.Blob{Name: "types.xlsx", Data: data})
	require.NoError(t, err)
	require.Len(t, wb.Sheets, 1)

	sheet := wb.Sheets[0]
	require.Len(t, sheet.Rows, 1)
	row := sheet.Rows[0]

	get := func(col string) types.Value {
		v, ok := row.Get(col)
		require.True(t, ok, "column %q missing", col)
		return v
	}

	assert.Equal(t, types.Text("abc"), get("Text"))
	assert.Equal(t, types.Number(42), get("Number"))
	assert.Equal(t, types.Number(0.5), get("Float"))
	assert.Equal(t, types.Bool(true), get("Bool"))
	assert.Equal(t, types.Text("007"), get("Numeric text"))

	date := get("Date")
	require.Equal(t, types.KindDate, date.Kind)
	assert.WithinDuration(t, when, date.Date, time.Second)
}

func TestReadWorkbookSkipsBlankRows(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Table", "Field"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"person", "person_id"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A4", &[]interface{}{"visit", "visit_id"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	wb, err := ReadWorkbook(types.Blob{Data: buf.Bytes()})
	require.NoError(t, err)

	rows := wb.Sheets[0].Rows
	require.Len(t, rows, 2)
	v, _ := rows[1].Get("Table")
	assert.Equal(t, "visit", v.Text)
}

func TestReadWorkbookSheetShapes(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	_, err := f.NewSheet("Header only")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Header only", "A1", &[]interface{}{"A", "B"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	wb, err := ReadWorkbook(types.Blob{Data: buf.Bytes()})
	require.NoError(t, err)
	require.Len(t, wb.Sheets, 2)

	empty := wb.Sheets[0]
	assert.Equal(t, "Sheet1", empty.Name)
	assert.Empty(t, empty.Columns)
	assert.Empty(t, empty.Rows)

	headerOnly := wb.Sheets[1]
	assert.Equal(t, []string{"A", "B"}, headerOnly.Columns)
	assert.Empty(t, headerOnly.Rows)
}

func TestReadWorkbookRejectsGarbage(t *testing.T) {
	_, err := ReadWorkbook(types.Blob{Data: []byte{0x00, 0x01, 0x02}})
	assert.Error(t, err)
}
