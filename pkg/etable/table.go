// Package etable is a minimal column-ordered table of results, which
// can be written out as CSV or into SQLite.
package etable

import(
	"errors"
	"fmt"
	"strconv"
)

var ErrNoColumn = errors.New("no such column")

// A Table has named, ordered columns. Cells are float64, int or string.
type Table struct {
	Columns []string
	Rows    [][]interface{}
}

func New(cols ...string) *Table {
	return &Table{Columns: append([]string{}, cols...)}
}

func (t *Table)String() string {
	return fmt.Sprintf("Table%v[%d rows]", t.Columns, len(t.Rows))
}

func (t *Table)Len() int { return len(t.Rows) }

// Col returns the index of the named column, or -1.
func (t *Table)Col(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

func (t *Table)HasColumn(name string) bool { return t.Col(name) >= 0 }

// Append adds a row; there must be one value per column. Rows are never
// changed once appended.
func (t *Table)Append(vals ...interface{}) error {
	if len(vals) != len(t.Columns) {
		return fmt.Errorf("append: %d values for %d columns %v", len(vals), len(t.Columns), t.Columns)
	}
	for i, v := range vals {
		switch v.(type) {
		case float64, int, string:
		default:
			return fmt.Errorf("append: column '%s' has unsupported value %v (%T)", t.Columns[i], v, v)
		}
	}
	t.Rows = append(t.Rows, append([]interface{}{}, vals...))
	return nil
}

// Floats returns the named column as numbers.
func (t *Table)Floats(name string) ([]float64, error) {
	c := t.Col(name)
	if c < 0 {
		return nil, fmt.Errorf("column '%s': %w", name, ErrNoColumn)
	}
	ret := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		switch v := row[c].(type) {
		case float64: ret[i] = v
		case int:     ret[i] = float64(v)
		default:
			return nil, fmt.Errorf("column '%s' row %d: %q is not a number", name, i, v)
		}
	}
	return ret, nil
}

// Strings returns the named column formatted as text, as it would
// appear in the CSV.
func (t *Table)Strings(name string) ([]string, error) {
	c := t.Col(name)
	if c < 0 {
		return nil, fmt.Errorf("column '%s': %w", name, ErrNoColumn)
	}
	ret := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		ret[i] = FormatCell(row[c])
	}
	return ret, nil
}

// Where returns a new table holding just the rows whose column has the
// given string value.
func (t *Table)Where(name, value string) (*Table, error) {
	vals, err := t.Strings(name)
	if err != nil {
		return nil, err
	}
	out := New(t.Columns...)
	for i, v := range vals {
		if v == value {
			out.Rows = append(out.Rows, t.Rows[i])
		}
	}
	return out, nil
}

// Without returns a copy of the table with the named columns dropped.
func (t *Table)Without(names ...string) *Table {
	drop := map[string]bool{}
	for _, n := range names {
		drop[n] = true
	}
	keep := []int{}
	out := New()
	for i, c := range t.Columns {
		if !drop[c] {
			keep = append(keep, i)
			out.Columns = append(out.Columns, c)
		}
	}
	for _, row := range t.Rows {
		newRow := make([]interface{}, len(keep))
		for j, i := range keep {
			newRow[j] = row[i]
		}
		out.Rows = append(out.Rows, newRow)
	}
	return out
}

func FormatCell(v interface{}) string {
	switch x := v.(type) {
	case float64: return strconv.FormatFloat(x, 'g', -1, 64)
	case int:     return strconv.Itoa(x)
	case string:  return x
	}
	return fmt.Sprintf("%v", v)
}
