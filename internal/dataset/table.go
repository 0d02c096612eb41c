// Package dataset holds trade records as an in-memory columnar table and
// loads them from CSV or XLSX extracts.
package dataset

import (
	"fmt"
	"math"
	"strconv"

	apperrors "tradecharts/internal/errors"
)

type column struct {
	raw []string  // cell text as read, nil for derived columns
	num []float64 // parsed values, nil when the column is not numeric
}

// Table is a columnar table. Numeric columns hold NaN for blank cells.
// A Table is not safe for concurrent mutation; concurrent reads are fine.
type Table struct {
	n     int
	order []string
	cols  map[string]*column
}

// NewTable creates an empty table with the given row count.
func NewTable(rows int) *Table {
	return &Table{n: rows, cols: make(map[string]*column)}
}

// Len returns the row count.
func (t *Table) Len() int { return t.n }

// Columns returns the column names in insertion order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Has reports whether the column exists.
func (t *Table) Has(name string) bool {
	_, ok := t.cols[name]
	return ok
}

// IsNumeric reports whether the column exists and holds numbers.
func (t *Table) IsNumeric(name string) bool {
	c, ok := t.cols[name]
	return ok && c.num != nil
}

func (t *Table) set(name string, c *column) {
	if _, ok := t.cols[name]; !ok {
		t.order = append(t.order, name)
	}
	t.cols[name] = c
}

// AddText adds or replaces a text column. Values that all parse as numbers
// also make the column numeric.
func (t *Table) AddText(name string, values []string) error {
	if len(values) != t.n {
		return fmt.Errorf("%w: %q has %d values, table has %d rows", apperrors.ErrLengthMismatch, name, len(values), t.n)
	}
	t.set(name, &column{raw: values, num: parseNumeric(values)})
	return nil
}

// AddNumber adds or replaces a numeric column.
func (t *Table) AddNumber(name string, values []float64) error {
	if len(values) != t.n {
		return fmt.Errorf("%w: %q has %d values, table has %d rows", apperrors.ErrLengthMismatch, name, len(values), t.n)
	}
	t.set(name, &column{num: values})
	return nil
}

// Text returns the column as strings. Derived numeric columns are formatted,
// NaN as the empty string.
func (t *Table) Text(name string) ([]string, error) {
	c, ok := t.cols[name]
	if !ok {
		return nil, apperrors.MissingColumn(name)
	}
	if c.raw != nil {
		return c.raw, nil
	}

	out := make([]string, len(c.num))
	for i, v := range c.num {
		if !math.IsNaN(v) {
			out[i] = strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return out, nil
}

// Number returns a numeric column.
func (t *Table) Number(name string) ([]float64, error) {
	c, ok := t.cols[name]
	if !ok {
		return nil, apperrors.MissingColumn(name)
	}
	if c.num == nil {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrNotNumeric, name)
	}
	return c.num, nil
}

// DeriveProduct adds dst = a * b row by row. NaN operands yield NaN.
func (t *Table) DeriveProduct(dst, a, b string) error {
	left, err := t.Number(a)
	if err != nil {
		return err
	}
	right, err := t.Number(b)
	if err != nil {
		return err
	}

	out := make([]float64, t.n)
	for i := range out {
		out[i] = left[i] * right[i]
	}
	return t.AddNumber(dst, out)
}

// parseNumeric returns parsed values when every non-blank cell is a number and
// at least one cell is non-blank; otherwise nil.
func parseNumeric(values []string) []float64 {
	out := make([]float64, len(values))
	seen := false
	for i, s := range values {
		s = trimCell(s)
		if s == "" {
			out[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		out[i] = v
		seen = true
	}
	if !seen {
		return nil
	}
	return out
}
