package data

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"ChartService/internal/customerrors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Table is the column-oriented form of one parsed CSV upload.
// All columns hold the same number of cells.
type Table struct {
	names []string
	index map[string]int
	cols  [][]any
	rows  int
}

// NewTable builds a table from column names and equally sized columns
func NewTable(names []string, cols [][]any) (*Table, error) {
	if len(names) != len(cols) {
		return nil, fmt.Errorf("%d column names for %d columns", len(names), len(cols))
	}

	t := &Table{
		names: names,
		index: make(map[string]int, len(names)),
		cols:  cols,
	}
	for i, name := range names {
		if _, dup := t.index[name]; dup {
			return nil, customerrors.Malformed("duplicate column %q in header", name)
		}
		t.index[name] = i
		if i == 0 {
			t.rows = len(cols[i])
		} else if len(cols[i]) != t.rows {
			return nil, fmt.Errorf("column %s has %d cells, want %d", name, len(cols[i]), t.rows)
		}
	}
	return t, nil
}

// Parse reads comma-delimited text with a mandatory header row.
// Cells are kept as raw strings.
func Parse(raw []byte) (*Table, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, customerrors.Malformed("no header row")
	}
	if err != nil {
		return nil, customerrors.Malformed("failed to read CSV header: %v", err)
	}

	names := make([]string, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		names[i] = name
	}

	cols := make([][]any, len(names))
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return nil, customerrors.Malformed("line %d: %v", perr.Line, perr.Err)
			}
			return nil, customerrors.Malformed("error reading csv record: %v", err)
		}

		for i, cell := range record {
			cols[i] = append(cols[i], cell)
		}
	}

	for i := range cols {
		if cols[i] == nil {
			cols[i] = []any{}
		}
	}

	return NewTable(names, cols)
}

// Columns returns the column names in file order
func (t *Table) Columns() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Has reports whether a column with exactly this name exists
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Len returns the number of data rows
func (t *Table) Len() int {
	return t.rows
}

// Column returns the cells of the named column
func (t *Table) Column(name string) ([]any, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.cols[i], true
}

// SetColumn replaces the cells of an existing column
func (t *Table) SetColumn(name string, cells []any) error {
	i, ok := t.index[name]
	if !ok {
		return fmt.Errorf("no column %s", name)
	}
	if len(cells) != t.rows {
		return fmt.Errorf("column %s: got %d cells, want %d", name, len(cells), t.rows)
	}
	t.cols[i] = cells
	return nil
}

// Row returns the cells of row i in column order
func (t *Table) Row(i int) []any {
	out := make([]any, len(t.cols))
	for c := range t.cols {
		out[c] = t.cols[c][i]
	}
	return out
}

// Reorder returns a new table whose row k is row perm[k] of t
func (t *Table) Reorder(perm []int) (*Table, error) {
	if len(perm) != t.rows {
		return nil, fmt.Errorf("permutation has %d entries for %d rows", len(perm), t.rows)
	}

	cols := make([][]any, len(t.cols))
	for c, src := range t.cols {
		dst := make([]any, len(perm))
		for k, from := range perm {
			dst[k] = src[from]
		}
		cols[c] = dst
	}
	return NewTable(t.Columns(), cols)
}
