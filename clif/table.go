package clif

import (
	"fmt"
	"strconv"
)

// Row is one output row, keyed by column name. Columns absent from a given
// row (rather than present-but-null) are treated as null by readers —
// callers that care about the distinction should check with Table.Columns.
type Row map[string]Value

// Table is a named, ordered-column, row-oriented table with a
// data-dependent schema — the representation design note 9 calls for: "a
// named column map with a value type that is a tagged union, and a schema
// descriptor alongside the row stream."
type Table struct {
	Name    string
	Columns []string
	Rows    []Row
}

// New creates an empty table with the given column order.
func New(name string, columns []string) *Table {
	return &Table{Name: name, Columns: append([]string{}, columns...)}
}

// HasColumn reports whether the table's schema names the given column.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// AddColumn appends a column to the schema if not already present. It does
// not touch existing rows — missing values read as null.
func (t *Table) AddColumn(name string) {
	if !t.HasColumn(name) {
		t.Columns = append(t.Columns, name)
	}
}

// RemoveColumn drops a column from the schema and from every row. Used to
// strip the internal combo_id helper column before returning a result to
// the caller.
func (t *Table) RemoveColumn(name string) {
	out := t.Columns[:0]
	for _, c := range t.Columns {
		if c != name {
			out = append(out, c)
		}
	}
	t.Columns = out
	for _, r := range t.Rows {
		delete(r, name)
	}
}

// Get returns column col of row r, or Null if either is unknown.
func (r Row) Get(col string) Value {
	if v, ok := r[col]; ok {
		return v
	}
	return Null
}

// trimFloat formats a float without a forced decimal expansion, matching
// how these values tend to print in CLIF source CSVs.
func trimFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// ColumnSet computes the union of column names across a set of tables,
// preserving first-seen order.
func ColumnSet(tables ...*Table) []string {
	seen := map[string]bool{}
	var out []string
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, c := range t.Columns {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}

// String implements fmt.Stringer for debugging/log messages.
func (t *Table) String() string {
	return fmt.Sprintf("clif.Table{%s, %d cols, %d rows}", t.Name, len(t.Columns), len(t.Rows))
}
