package dataset

import (
	"math"
	"strconv"

	"shoplens/domain/core"
)

// ColumnKind is the semantic type of a column
type ColumnKind string

const (
	KindNumeric     ColumnKind = "numeric"
	KindCategorical ColumnKind = "categorical"
)

// ColumnSpec names a column and its kind
type ColumnSpec struct {
	Name string     `json:"name" yaml:"name"`
	Kind ColumnKind `json:"kind" yaml:"kind"`
}

// Column is one immutable column of a Dataset. Numeric columns keep parsed
// floats, categorical columns keep strings; both track nulls explicitly.
type Column struct {
	spec ColumnSpec
	nums []float64
	strs []string
	null []bool
}

// Name returns the column name
func (c *Column) Name() string { return c.spec.Name }

// Kind returns the column kind
func (c *Column) Kind() ColumnKind { return c.spec.Kind }

// Spec returns the column spec
func (c *Column) Spec() ColumnSpec { return c.spec }

// IsNumeric reports whether the column holds numbers
func (c *Column) IsNumeric() bool { return c.spec.Kind == KindNumeric }

// IsNull reports whether the cell at dataset row is missing
func (c *Column) IsNull(row int) bool { return c.null[row] }

// Float returns the numeric value at dataset row. ok is false for nulls and
// for categorical columns.
func (c *Column) Float(row int) (float64, bool) {
	if c.spec.Kind != KindNumeric || c.null[row] {
		return 0, false
	}
	return c.nums[row], true
}

// Text returns the value at dataset row as a string. Numeric values are
// rendered in their shortest canonical form ("18", "2.5") so they can be
// treated nominally.
func (c *Column) Text(row int) (string, bool) {
	if c.null[row] {
		return "", false
	}
	if c.spec.Kind == KindNumeric {
		return FormatNumber(c.nums[row]), true
	}
	return c.strs[row], true
}

// FormatNumber renders a float in the canonical text form used for nominal
// comparisons of numeric columns.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Dataset is an immutable in-memory table. It is never mutated after Build,
// so it can be shared by any number of concurrent readers.
type Dataset struct {
	source  string
	columns []*Column
	index   map[string]int
	rows    int
}

// Source returns the identity of the source the dataset was loaded from
func (d *Dataset) Source() string { return d.source }

// Len returns the number of rows
func (d *Dataset) Len() int { return d.rows }

// Specs returns the column specs in source order
func (d *Dataset) Specs() []ColumnSpec {
	specs := make([]ColumnSpec, len(d.columns))
	for i, c := range d.columns {
		specs[i] = c.spec
	}
	return specs
}

// HasColumn reports whether the named column exists
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Column looks up a column by name
func (d *Dataset) Column(name string) (*Column, error) {
	i, ok := d.index[name]
	if !ok {
		return nil, core.NewColumnNotFoundError(name)
	}
	return d.columns[i], nil
}

// All returns a view over every row
func (d *Dataset) All() View {
	rows := make([]int, d.rows)
	for i := range rows {
		rows[i] = i
	}
	return View{ds: d, rows: rows}
}

// View is an ordered subset of a Dataset's rows. It holds indices into the
// dataset and never copies cell data.
type View struct {
	ds   *Dataset
	rows []int
}

// NewView builds a view over the given dataset row indices. The slice is
// owned by the view afterwards.
func NewView(ds *Dataset, rows []int) View {
	return View{ds: ds, rows: rows}
}

// Dataset returns the backing dataset (nil for the zero View)
func (v View) Dataset() *Dataset { return v.ds }

// Len returns the number of rows in the view
func (v View) Len() int { return len(v.rows) }

// Row maps a view position to its dataset row index
func (v View) Row(i int) int { return v.rows[i] }

// Rows returns a copy of the dataset row indices
func (v View) Rows() []int {
	out := make([]int, len(v.rows))
	copy(out, v.rows)
	return out
}

// Column looks up a column of the backing dataset
func (v View) Column(name string) (*Column, error) {
	if v.ds == nil {
		return nil, core.NewColumnNotFoundError(name)
	}
	return v.ds.Column(name)
}

// NumericColumn looks up a column and requires it to be numeric
func (v View) NumericColumn(name string) (*Column, error) {
	col, err := v.Column(name)
	if err != nil {
		return nil, err
	}
	if !col.IsNumeric() {
		return nil, core.NewColumnKindError(name, string(KindNumeric), string(col.Kind()))
	}
	return col, nil
}

// Distinct returns the non-null values of a column in first-seen order
func (v View) Distinct(name string) ([]string, error) {
	col, err := v.Column(name)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	values := []string{}
	for _, row := range v.rows {
		val, ok := col.Text(row)
		if !ok || seen[val] {
			continue
		}
		seen[val] = true
		values = append(values, val)
	}
	return values, nil
}

// NumericBounds returns the smallest and largest non-null value of a numeric
// column. ok is false when the view holds no values for it.
func (v View) NumericBounds(name string) (min, max float64, ok bool, err error) {
	col, err := v.NumericColumn(name)
	if err != nil {
		return 0, 0, false, err
	}
	min, max = math.Inf(1), math.Inf(-1)
	for _, row := range v.rows {
		f, present := col.Float(row)
		if !present {
			continue
		}
		ok = true
		if f < min {
			min = f
		}
		if f > max {
			max = f
		}
	}
	if !ok {
		return 0, 0, false, nil
	}
	return min, max, true, nil
}

// NullCount counts null cells of a column within the view
func (v View) NullCount(name string) (int, error) {
	col, err := v.Column(name)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, row := range v.rows {
		if col.IsNull(row) {
			n++
		}
	}
	return n, nil
}
