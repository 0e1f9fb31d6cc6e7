package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
)

// Row is one record keyed by column name. All cell values are strings; typed
// interpretation happens at the consumer.
type Row map[string]string

// Table is a row-oriented table with a stable column order. It is the
// interchange format between normalization, derivation and the persisted
// CSV boundary.
type Table struct {
	Columns []string
	Rows    []Row

	colSet map[string]struct{}
}

func New(columns ...string) *Table {
	t := &Table{colSet: make(map[string]struct{})}
	for _, c := range columns {
		t.addColumn(c)
	}
	return t
}

func (t *Table) addColumn(name string) {
	if t.colSet == nil {
		t.colSet = make(map[string]struct{})
	}
	if _, ok := t.colSet[name]; ok {
		return
	}
	t.colSet[name] = struct{}{}
	t.Columns = append(t.Columns, name)
}

// HasColumn reports whether the table carries the named column.
func (t *Table) HasColumn(name string) bool {
	if t == nil {
		return false
	}
	_, ok := t.colSet[name]
	return ok
}

// Len returns the row count. Safe on a nil table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Append adds a row. Columns unseen so far are appended to the column list
// in sorted order so output stays deterministic regardless of map iteration.
func (t *Table) Append(row Row) {
	keys := make([]string, 0, len(row))
	for k := range row {
		if !t.HasColumn(k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		t.addColumn(k)
	}
	t.Rows = append(t.Rows, row)
}

// SetColumn writes a value into every row under the named column, taking the
// value from fn applied to the row. Used by the derived-column rules.
func (t *Table) SetColumn(name string, fn func(Row) string) {
	t.addColumn(name)
	for _, row := range t.Rows {
		row[name] = fn(row)
	}
}

// DropColumns removes columns from the schema and from every row.
func (t *Table) DropColumns(names ...string) {
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}
	kept := t.Columns[:0]
	for _, c := range t.Columns {
		if _, ok := drop[c]; ok {
			delete(t.colSet, c)
			continue
		}
		kept = append(kept, c)
	}
	t.Columns = kept
	for _, row := range t.Rows {
		for n := range drop {
			delete(row, n)
		}
	}
}

// WriteCSV encodes the table with a header row.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, c := range t.Columns {
			record[i] = row[c]
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV decodes a table written by WriteCSV. An empty reader yields an
// empty table.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	t := New(header...)
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row: %w", err)
		}
		row := make(Row, len(header))
		for i, c := range header {
			if i < len(record) {
				row[c] = record[i]
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}
