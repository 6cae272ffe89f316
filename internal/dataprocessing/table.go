package dataprocessing

import (
	"fmt"
	"math"
	"sort"
)

// BlendedColumnName is used for header cells that are empty.
const BlendedColumnName = "Blended"

// ColumnKind is the value type of a column, fixed for its whole length.
type ColumnKind int

const (
	ColumnFloat ColumnKind = iota
	ColumnText
)

func (k ColumnKind) String() string {
	if k == ColumnText {
		return "text"
	}
	return "float"
}

// Column is a named, typed sequence of optional values. Columns are never
// modified once they belong to a Table.
type Column struct {
	name   string
	kind   ColumnKind
	floats []*float64
	texts  []*string
}

// NewFloatColumn creates a numeric column; nil entries are missing values.
func NewFloatColumn(name string, values []*float64) *Column {
	return &Column{name: name, kind: ColumnFloat, floats: values}
}

// NewTextColumn creates a textual column; nil entries are missing values.
func NewTextColumn(name string, values []*string) *Column {
	return &Column{name: name, kind: ColumnText, texts: values}
}

func (c *Column) Name() string     { return c.name }
func (c *Column) Kind() ColumnKind { return c.kind }

func (c *Column) Len() int {
	if c.kind == ColumnText {
		return len(c.texts)
	}
	return len(c.floats)
}

// Float returns the numeric value at row i. ok is false for missing values
// and for text columns.
func (c *Column) Float(i int) (v float64, ok bool) {
	if c.kind != ColumnFloat || c.floats[i] == nil {
		return 0, false
	}
	return *c.floats[i], true
}

// Text returns the textual value at row i. ok is false for missing values
// and for numeric columns.
func (c *Column) Text(i int) (s string, ok bool) {
	if c.kind != ColumnText || c.texts[i] == nil {
		return "", false
	}
	return *c.texts[i], true
}

// IsMissing reports whether row i holds no value.
func (c *Column) IsMissing(i int) bool {
	if c.kind == ColumnText {
		return c.texts[i] == nil
	}
	return c.floats[i] == nil
}

// Format renders row i as text; missing values render as "".
func (c *Column) Format(i int) string {
	if c.kind == ColumnText {
		if s := c.texts[i]; s != nil {
			return *s
		}
		return ""
	}
	if v := c.floats[i]; v != nil {
		return formatNumber(*v)
	}
	return ""
}

func (c *Column) take(rows []int) *Column {
	out := &Column{name: c.name, kind: c.kind}
	if c.kind == ColumnText {
		out.texts = make([]*string, len(rows))
		for j, i := range rows {
			out.texts[j] = c.texts[i]
		}
		return out
	}
	out.floats = make([]*float64, len(rows))
	for j, i := range rows {
		out.floats[j] = c.floats[i]
	}
	return out
}

// DataQualityIssue describes a retained row that has gaps or values that
// could not be converted to the column type.
type DataQualityIssue struct {
	Row     int      `json:"row"`
	Columns []string `json:"columns"`
	Reason  string   `json:"reason"`
}

// Table is an ordered set of equally long columns, one row per company.
// Filtering and sorting return new tables and leave the receiver untouched.
// Column names may repeat; lookups by name return the first match.
type Table struct {
	columns []*Column
	rows    int
	issues  []DataQualityIssue
}

// NewTable assembles columns into a table. All columns must have the same length.
func NewTable(columns ...*Column) (*Table, error) {
	t := &Table{columns: columns}
	if len(columns) > 0 {
		t.rows = columns[0].Len()
	}
	for i, c := range columns {
		if c.Len() != t.rows {
			return nil, &TableAssemblyError{
				Column:   c.name,
				Position: i,
				Expected: t.rows,
				Actual:   c.Len(),
			}
		}
	}
	return t, nil
}

// EmptyTable returns a table with no columns and no rows.
func EmptyTable() *Table { return &Table{} }

func (t *Table) NumRows() int    { return t.rows }
func (t *Table) NumColumns() int { return len(t.columns) }

// Headers returns the column names in positional order, duplicates included.
func (t *Table) Headers() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.name
	}
	return names
}

// Columns returns the columns in positional order.
func (t *Table) Columns() []*Column {
	out := make([]*Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// ColumnAt returns the column at position i.
func (t *Table) ColumnAt(i int) *Column { return t.columns[i] }

// Column returns the first column named name.
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.columns {
		if c.name == name {
			return c, true
		}
	}
	return nil, false
}

// Issues returns the data-quality issues recorded while building the table.
func (t *Table) Issues() []DataQualityIssue { return t.issues }

// Take returns a new table holding the given rows in the given order.
func (t *Table) Take(rows []int) *Table {
	out := &Table{columns: make([]*Column, len(t.columns)), rows: len(rows), issues: t.issues}
	for i, c := range t.columns {
		out.columns[i] = c.take(rows)
	}
	return out
}

// Filter returns a new table holding the rows for which keep returns true.
func (t *Table) Filter(keep func(row int) bool) *Table {
	rows := make([]int, 0, t.rows)
	for i := 0; i < t.rows; i++ {
		if keep(i) {
			rows = append(rows, i)
		}
	}
	return t.Take(rows)
}

// SortDesc returns a new table ordered by the named numeric column, largest
// first. Ties keep their relative order; missing and NaN values go last.
func (t *Table) SortDesc(name string) (*Table, error) {
	col, ok := t.Column(name)
	if !ok {
		return nil, fmt.Errorf("sort by %q: column not found", name)
	}
	if col.kind != ColumnFloat {
		return nil, fmt.Errorf("sort by %q: column is %s, not float", name, col.kind)
	}
	rows := make([]int, t.rows)
	for i := range rows {
		rows[i] = i
	}
	sort.SliceStable(rows, func(a, b int) bool {
		va, oka := col.Float(rows[a])
		vb, okb := col.Float(rows[b])
		oka = oka && !math.IsNaN(va)
		okb = okb && !math.IsNaN(vb)
		switch {
		case oka && okb:
			return va > vb
		default:
			return oka && !okb
		}
	})
	return t.Take(rows), nil
}
