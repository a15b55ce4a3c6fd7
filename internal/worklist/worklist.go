// Package worklist holds rendered instrument tables and writes them out.
package worklist

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Column describes one column of an instrument table.
type Column struct {
	Name string `json:"name"`
	// Options lists the values instrument software accepts, if restricted.
	Options []string `json:"options,omitempty"`
	// Help is the format hint shown to operators ("Format: P1-A1").
	Help string `json:"help,omitempty"`
}

// Table is one rendered worklist: a header and one row per injection.
type Table struct {
	Instrument string     `json:"instrument"`
	Columns    []Column   `json:"columns"`
	Rows       [][]string `json:"rows"`

	// PositionColumn and NameColumn name the columns used for the duplicate
	// position check. PositionColumn is empty for tables without positions.
	PositionColumn string `json:"-"`
	NameColumn     string `json:"-"`
}

// Header returns the column names in order.
func (t *Table) Header() []string {
	header := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c.Name
	}
	return header
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Cell returns the value at row and the named column, or "" when either is
// out of range.
func (t *Table) Cell(row int, column string) string {
	i := t.ColumnIndex(column)
	if i < 0 || row < 0 || row >= len(t.Rows) || i >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][i]
}

// WriteCSV writes the table as comma-separated UTF-8, one line per row. The
// header line is written only when header is true; most instrument software
// brings its own.
func WriteCSV(w io.Writer, t *Table, header bool) error {
	cw := csv.NewWriter(w)
	if header {
		if err := cw.Write(t.Header()); err != nil {
			return err
		}
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("row %d has %d cells, want %d", i+1, len(row), len(t.Columns))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Duplicate is a position shared by more than one row.
type Duplicate struct {
	Position string   `json:"position"`
	Names    []string `json:"names"`
}

// DuplicatePositions finds non-blank positions used by more than one row,
// in order of first use.
func DuplicatePositions(t *Table) []Duplicate {
	if t.PositionColumn == "" || t.ColumnIndex(t.PositionColumn) < 0 {
		return nil
	}
	nameCol := t.NameColumn
	if t.ColumnIndex(nameCol) < 0 && len(t.Columns) > 0 {
		nameCol = t.Columns[0].Name
	}

	var order []string
	names := make(map[string][]string)
	for i := range t.Rows {
		pos := strings.TrimSpace(t.Cell(i, t.PositionColumn))
		if pos == "" {
			continue
		}
		if _, seen := names[pos]; !seen {
			order = append(order, pos)
		}
		names[pos] = append(names[pos], t.Cell(i, nameCol))
	}

	var dups []Duplicate
	for _, pos := range order {
		if len(names[pos]) > 1 {
			dups = append(dups, Duplicate{Position: pos, Names: names[pos]})
		}
	}
	return dups
}

// Markdown renders the table as a GitHub-flavored Markdown table.
func Markdown(t *Table) string {
	var b strings.Builder
	writeRow := func(cells []string) {
		b.WriteString("|")
		for _, c := range cells {
			b.WriteString(" ")
			b.WriteString(escapeCell(c))
			b.WriteString(" |")
		}
		b.WriteString("\n")
	}

	writeRow(t.Header())
	b.WriteString("|")
	for range t.Columns {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")
	for _, row := range t.Rows {
		writeRow(row)
	}
	return b.String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
