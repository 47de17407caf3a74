package types

import "time"

// ValueKind identifies which field of a Value is populated
type ValueKind int

const (
	KindBlank ValueKind = iota
	KindText
	KindNumber
	KindBool
	KindDate
)

// Value is a single cell read from a report sheet
type Value struct {
	Kind   ValueKind
	Text   string
	Number float64
	Bool   bool
	Date   time.Time
}

func Text(s string) Value    { return Value{Kind: KindText, Text: s} }
func Number(n float64) Value { return Value{Kind: KindNumber, Number: n} }
func Bool(b bool) Value      { return Value{Kind: KindBool, Bool: b} }
func Date(t time.Time) Value { return Value{Kind: KindDate, Date: t} }

func (v Value) IsBlank() bool { return v.Kind == KindBlank }

// Interface returns the value in the form excelize expects when writing a cell
func (v Value) Interface() interface{} {
	switch v.Kind {
	case KindText:
		return v.Text
	case KindNumber:
		return v.Number
	case KindBool:
		return v.Bool
	case KindDate:
		return v.Date
	}
	return nil
}

// Field is one column/value pair of a Record
type Field struct {
	Column string
	Value  Value
}

// Record is a data row keyed by column header, in source column order.
// A Record with no fields is the separator row.
type Record struct {
	Fields []Field
}

// Get returns the value stored under column
func (r Record) Get(column string) (Value, bool) {
	for _, f := range r.Fields {
		if f.Column == column {
			return f.Value, true
		}
	}
	return Value{}, false
}

// IsSeparator reports whether r carries no values at all
func (r Record) IsSeparator() bool {
	return len(r.Fields) == 0
}

// Sheet is a named table read from one input workbook
type Sheet struct {
	Name    string
	Columns []string
	Rows    []Record
}

// Workbook is a parsed input blob
type Workbook struct {
	Name   string
	Sheets []Sheet
}

// Blob is an input workbook held in memory
type Blob struct {
	Name string
	Data []byte
}

// MergedSheet accumulates rows for one output sheet
type MergedSheet struct {
	Name    string
	Columns []string
	Rows    []Record
}

// NewMergedSheet creates an empty accumulator named name
func NewMergedSheet(name string) *MergedSheet {
	return &MergedSheet{Name: name}
}

// Append adds the rows of s in order and widens Columns with any headers not yet seen
func (m *MergedSheet) Append(s Sheet) {
	for _, col := range s.Columns {
		if !m.hasColumn(col) {
			m.Columns = append(m.Columns, col)
		}
	}
	m.Rows = append(m.Rows, s.Rows...)
}

// AppendSeparator adds one blank row
func (m *MergedSheet) AppendSeparator() {
	m.Rows = append(m.Rows, Record{})
}

// Separators counts the blank rows in m
func (m *MergedSheet) Separators() int {
	n := 0
	for _, r := range m.Rows {
		if r.IsSeparator() {
			n++
		}
	}
	return n
}

func (m *MergedSheet) hasColumn(col string) bool {
	for _, c := range m.Columns {
		if c == col {
			return true
		}
	}
	return false
}

type SheetSummary struct {
	Name       string
	Columns    int
	Rows       int
	Separators int
}

type MergeResult struct {
	InputFiles []string
	OutputFile string
	Sheets     []SheetSummary
	Data       []byte
}

// TotalRows sums data rows across every output sheet, separators excluded
func (r *MergeResult) TotalRows() int {
	total := 0
	for _, s := range r.Sheets {
		total += s.Rows - s.Separators
	}
	return total
}
