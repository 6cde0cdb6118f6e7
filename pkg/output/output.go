// Package output prints query results as table, json, csv or "line" text.
package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/valyala/fastjson"

	"github.com/umputun/hostql/pkg/table"
)

// Mode is output format
type Mode string

// enum of output modes
const (
	ModeTable Mode = "table"
	ModeJSON  Mode = "json"
	ModeCSV   Mode = "csv"
	ModeLine  Mode = "line"
)

// Modes lists supported modes
var Modes = []Mode{ModeTable, ModeJSON, ModeCSV, ModeLine}

// ParseMode returns mode by name, case-insensitive
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if strings.EqualFold(string(m), strings.TrimSpace(s)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown output mode %q", s)
}

// Formatter writes rows of a single result. SetColumns is called before the first Write,
// Close flushes buffered output.
type Formatter interface {
	SetColumns(cols []string)
	Write(row table.Row) error
	Close() error
}

// New makes formatter for the mode, unknown modes get table formatter
func New(mode Mode, w io.Writer) Formatter {
	switch mode {
	case ModeJSON:
		return NewJSONFormatter(w)
	case ModeCSV:
		return NewCSVFormatter(w)
	case ModeLine:
		return NewLineFormatter(w)
	default:
		return NewTableFormatter(w)
	}
}

// Print writes all rows with the formatter of the mode
func Print(w io.Writer, mode Mode, cols []string, rows []table.Row) error {
	f := New(mode, w)
	f.SetColumns(cols)
	for _, r := range rows {
		if err := f.Write(r); err != nil {
			return fmt.Errorf("can't write row: %w", err)
		}
	}
	return f.Close()
}

// TableFormatter renders rows as a text table, nothing is written until Close
type TableFormatter struct {
	table *tablewriter.Table
	cols  []string
}

// NewTableFormatter makes TableFormatter
func NewTableFormatter(w io.Writer) *TableFormatter {
	tbl := tablewriter.NewWriter(w)
	tbl.SetColWidth(48)
	tbl.SetRowLine(false)
	tbl.SetAutoWrapText(false)
	tbl.SetAutoFormatHeaders(false)
	return &TableFormatter{table: tbl}
}

// SetColumns sets table header
func (t *TableFormatter) SetColumns(cols []string) {
	t.cols = cols
	t.table.SetHeader(cols)
}

// Write appends row to the table
func (t *TableFormatter) Write(row table.Row) error {
	t.table.Append(values(t.cols, row))
	return nil
}

// Close renders the table
func (t *TableFormatter) Close() error {
	t.table.Render()
	return nil
}

// JSONFormatter writes rows as a json array of objects with string values
type JSONFormatter struct {
	w     io.Writer
	buf   []byte
	arena *fastjson.Arena
	cols  []string
	count int
}

// NewJSONFormatter makes JSONFormatter
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{w: w, buf: make([]byte, 0, 1024), arena: new(fastjson.Arena)}
}

// SetColumns sets object keys
func (t *JSONFormatter) SetColumns(cols []string) { t.cols = cols }

// Write writes row as json object
func (t *JSONFormatter) Write(row table.Row) error {
	obj := t.arena.NewObject()
	for i, v := range values(t.cols, row) {
		obj.Set(t.cols[i], t.arena.NewString(v))
	}
	if t.count == 0 {
		t.buf = append(t.buf, "[\n  "...)
	} else {
		t.buf = append(t.buf, ",\n  "...)
	}
	t.buf = obj.MarshalTo(t.buf)
	t.count++
	_, err := t.w.Write(t.buf)
	t.buf = t.buf[:0]
	t.arena.Reset()
	if err != nil {
		return fmt.Errorf("can't write json: %w", err)
	}
	return nil
}

// Close terminates the array, empty result is written as "[]"
func (t *JSONFormatter) Close() error {
	tail := "\n]\n"
	if t.count == 0 {
		tail = "[]\n"
	}
	if _, err := io.WriteString(t.w, tail); err != nil {
		return fmt.Errorf("can't write json: %w", err)
	}
	return nil
}

// CSVFormatter writes rows as csv with a header line
type CSVFormatter struct {
	writer *csv.Writer
	cols   []string
}

// NewCSVFormatter makes CSVFormatter
func NewCSVFormatter(w io.Writer) *CSVFormatter {
	return &CSVFormatter{writer: csv.NewWriter(w)}
}

// SetColumns writes header
func (t *CSVFormatter) SetColumns(cols []string) {
	t.cols = cols
	_ = t.writer.Write(cols)
}

// Write writes a csv record
func (t *CSVFormatter) Write(row table.Row) error {
	return t.writer.Write(values(t.cols, row))
}

// Close flushes the writer
func (t *CSVFormatter) Close() error {
	t.writer.Flush()
	return t.writer.Error()
}

// LineFormatter writes every column on its own "name = value" line, rows separated by an empty line
type LineFormatter struct {
	w     io.Writer
	cols  []string
	width int
	count int
}

// NewLineFormatter makes LineFormatter
func NewLineFormatter(w io.Writer) *LineFormatter { return &LineFormatter{w: w} }

// SetColumns sets column names and alignment width
func (t *LineFormatter) SetColumns(cols []string) {
	t.cols = cols
	t.width = 0
	for _, c := range cols {
		if len(c) > t.width {
			t.width = len(c)
		}
	}
}

// Write writes a row
func (t *LineFormatter) Write(row table.Row) error {
	var sb strings.Builder
	if t.count > 0 {
		sb.WriteString("\n")
	}
	for i, v := range values(t.cols, row) {
		sb.WriteString(fmt.Sprintf("%*s = %s\n", t.width, t.cols[i], v))
	}
	t.count++
	if _, err := io.WriteString(t.w, sb.String()); err != nil {
		return fmt.Errorf("can't write row: %w", err)
	}
	return nil
}

// Close does nothing, rows are written as they come
func (t *LineFormatter) Close() error { return nil }

// values returns row values in the order of cols. Result columns may repeat a name,
// so values are taken by position when the row has the same layout.
func values(cols []string, row table.Row) []string {
	if row.Len() == len(cols) {
		return row.Values()
	}
	res := make([]string, len(cols))
	for i, c := range cols {
		res[i] = row.Value(c)
	}
	return res
}
