// Package table holds the in-memory tabular model shared by the loader,
// the merge engine and the export encoder.
//
// A Table is an ordered list of named columns of equal length. Cell values
// are restricted to nil (null), bool, int64, float64, time.Time and string.
package table

import (
	"fmt"
	"strings"
	"time"
)

// Kind is the declared type of a column.
type Kind int

const (
	KindNull Kind = iota // every value is null
	KindBool
	KindInt
	KindFloat
	KindTime
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindTime:
		return "datetime"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ParseKind is the inverse of Kind.String. Matching ignores case.
func ParseKind(s string) (Kind, error) {
	for k := KindNull; k <= KindString; k++ {
		if strings.EqualFold(s, k.String()) {
			return k, nil
		}
	}
	return KindNull, fmt.Errorf("unknown column kind %q", s)
}

func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Numeric reports whether values of the kind compare as numbers.
func (k Kind) Numeric() bool {
	return k == KindInt || k == KindFloat
}

// Widen returns the narrowest kind able to hold values of both a and b.
func Widen(a, b Kind) Kind {
	switch {
	case a == b:
		return a
	case a == KindNull:
		return b
	case b == KindNull:
		return a
	case a.Numeric() && b.Numeric():
		return KindFloat
	default:
		return KindString
	}
}

type Column struct {
	Name   string
	Kind   Kind
	Values []any
}

// Len returns the number of rows in the column.
func (c *Column) Len() int {
	return len(c.Values)
}

// Gather builds a new column by picking rows by index; -1 yields null.
func (c *Column) Gather(name string, idx []int) *Column {
	values := make([]any, len(idx))
	for i, j := range idx {
		if j >= 0 {
			values[i] = c.Values[j]
		}
	}
	return &Column{Name: name, Kind: c.Kind, Values: values}
}

type Table struct {
	Name    string
	Columns []*Column
}

// New creates an empty table labelled name.
func New(name string) *Table {
	return &Table{Name: name}
}

// AddColumn appends a column, enforcing unique names and a shared row count.
func (t *Table) AddColumn(c *Column) error {
	if t.Index(c.Name) >= 0 {
		return fmt.Errorf("duplicate column %q", c.Name)
	}
	if len(t.Columns) > 0 && c.Len() != t.NumRows() {
		return fmt.Errorf("column %q has %d rows, table has %d", c.Name, c.Len(), t.NumRows())
	}
	t.Columns = append(t.Columns, c)
	return nil
}

// Index returns the position of the named column or -1.
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Column returns the named column.
func (t *Table) Column(name string) (*Column, bool) {
	if i := t.Index(name); i >= 0 {
		return t.Columns[i], true
	}
	return nil, false
}

func (t *Table) NumRows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return t.Columns[0].Len()
}

func (t *Table) NumCols() int {
	return len(t.Columns)
}

func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Row returns the values of row i in column order.
func (t *Table) Row(i int) []any {
	row := make([]any, len(t.Columns))
	for j, c := range t.Columns {
		row[j] = c.Values[i]
	}
	return row
}

// Rows returns up to n rows (all rows when n < 0) as maps keyed by column name.
func (t *Table) Rows(n int) []map[string]any {
	total := t.NumRows()
	if n < 0 || n > total {
		n = total
	}
	rows := make([]map[string]any, n)
	for i := 0; i < n; i++ {
		row := make(map[string]any, len(t.Columns))
		for _, c := range t.Columns {
			row[c.Name] = c.Values[i]
		}
		rows[i] = row
	}
	return rows
}

// ColumnFromValues builds a column from already-typed values, normalising
// integer and float widths and deriving the column kind from its values.
// Values of mixed incompatible kinds are rendered as strings.
func ColumnFromValues(name string, values []any) *Column {
	kind := KindNull
	norm := make([]any, len(values))
	for i, v := range values {
		nv, k := normalize(v)
		norm[i] = nv
		kind = Widen(kind, k)
	}

	switch kind {
	case KindFloat:
		for i, v := range norm {
			if n, ok := v.(int64); ok {
				norm[i] = float64(n)
			}
		}
	case KindString:
		for i, v := range norm {
			if v != nil {
				norm[i] = FormatValue(v)
			}
		}
	}

	return &Column{Name: name, Kind: kind, Values: norm}
}

func normalize(v any) (any, Kind) {
	switch val := v.(type) {
	case nil:
		return nil, KindNull
	case bool:
		return val, KindBool
	case int:
		return int64(val), KindInt
	case int8:
		return int64(val), KindInt
	case int16:
		return int64(val), KindInt
	case int32:
		return int64(val), KindInt
	case int64:
		return val, KindInt
	case uint8:
		return int64(val), KindInt
	case uint16:
		return int64(val), KindInt
	case uint32:
		return int64(val), KindInt
	case uint64:
		return float64(val), KindFloat
	case float32:
		return float64(val), KindFloat
	case float64:
		return val, KindFloat
	case time.Time:
		return val, KindTime
	case string:
		return val, KindString
	case []byte:
		return string(val), KindString
	default:
		return fmt.Sprint(val), KindString
	}
}
