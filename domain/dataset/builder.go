package dataset

import (
	"fmt"
	"strconv"
	"strings"

	"shoplens/domain/core"
)

// nullTokens are cell contents treated as missing values
var nullTokens = map[string]bool{
	"":     true,
	"na":   true,
	"n/a":  true,
	"nan":  true,
	"null": true,
	"none": true,
}

// IsNullToken reports whether a raw cell should be read as a missing value
func IsNullToken(raw string) bool {
	return nullTokens[strings.ToLower(strings.TrimSpace(raw))]
}

// Builder accumulates rows column by column and produces an immutable Dataset.
// A Builder is not safe for concurrent use.
type Builder struct {
	source  string
	columns []*Column
	index   map[string]int
	rows    int

	// coercion failures per column (numeric cells that did not parse)
	invalid map[string]int
}

// NewBuilder creates a builder for the given column layout
func NewBuilder(source string, specs []ColumnSpec) (*Builder, error) {
	if len(specs) == 0 {
		return nil, core.NewConfigurationError("columns", "at least one column is required")
	}
	b := &Builder{
		source:  source,
		index:   make(map[string]int, len(specs)),
		invalid: make(map[string]int),
	}
	for i, spec := range specs {
		name := strings.TrimSpace(spec.Name)
		if name == "" {
			return nil, core.NewConfigurationError("columns", fmt.Sprintf("column %d has no name", i))
		}
		if _, dup := b.index[name]; dup {
			return nil, fmt.Errorf("%w: column %q", core.ErrDuplicateKey, name)
		}
		kind := spec.Kind
		if kind != KindNumeric {
			kind = KindCategorical
		}
		b.index[name] = i
		b.columns = append(b.columns, &Column{spec: ColumnSpec{Name: name, Kind: kind}})
	}
	return b, nil
}

// Append adds one row of raw cell values in column order. Short rows are
// padded with nulls; rows longer than the layout are rejected.
func (b *Builder) Append(values []string) error {
	if len(values) > len(b.columns) {
		return fmt.Errorf("row %d has %d cells, layout has %d columns", b.rows+1, len(values), len(b.columns))
	}
	for i, col := range b.columns {
		raw := ""
		if i < len(values) {
			raw = strings.TrimSpace(values[i])
		}
		b.appendCell(col, raw)
	}
	b.rows++
	return nil
}

// AppendRecord adds one row given as column name -> raw value. Unknown keys
// are ignored and absent columns become nulls.
func (b *Builder) AppendRecord(record map[string]string) {
	for _, col := range b.columns {
		b.appendCell(col, strings.TrimSpace(record[col.spec.Name]))
	}
	b.rows++
}

func (b *Builder) appendCell(col *Column, raw string) {
	if IsNullToken(raw) {
		col.null = append(col.null, true)
		col.nums = append(col.nums, 0)
		col.strs = append(col.strs, "")
		return
	}
	if col.spec.Kind == KindNumeric {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			b.invalid[col.spec.Name]++
			col.null = append(col.null, true)
			col.nums = append(col.nums, 0)
			col.strs = append(col.strs, "")
			return
		}
		col.null = append(col.null, false)
		col.nums = append(col.nums, f)
		col.strs = append(col.strs, "")
		return
	}
	col.null = append(col.null, false)
	col.nums = append(col.nums, 0)
	col.strs = append(col.strs, raw)
}

// Invalid returns how many numeric cells per column failed to parse and were
// stored as nulls
func (b *Builder) Invalid() map[string]int {
	out := make(map[string]int, len(b.invalid))
	for k, v := range b.invalid {
		out[k] = v
	}
	return out
}

// Len returns the number of rows appended so far
func (b *Builder) Len() int { return b.rows }

// Build freezes the accumulated rows into a Dataset. The builder must not be
// used afterwards.
func (b *Builder) Build() *Dataset {
	ds := &Dataset{
		source:  b.source,
		columns: b.columns,
		index:   b.index,
		rows:    b.rows,
	}
	b.columns = nil
	return ds
}

// InferSpecs derives column kinds from raw rows. Known specs win; other
// columns are numeric when every non-null cell parses as a number and at
// least one does.
func InferSpecs(headers []string, rows [][]string, known []ColumnSpec) []ColumnSpec {
	knownKinds := make(map[string]ColumnKind, len(known))
	for _, spec := range known {
		knownKinds[spec.Name] = spec.Kind
	}

	specs := make([]ColumnSpec, len(headers))
	for i, header := range headers {
		name := strings.TrimSpace(header)
		if kind, ok := knownKinds[name]; ok {
			specs[i] = ColumnSpec{Name: name, Kind: kind}
			continue
		}

		numeric, seen := true, false
		for _, row := range rows {
			if i >= len(row) || IsNullToken(row[i]) {
				continue
			}
			seen = true
			if _, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64); err != nil {
				numeric = false
				break
			}
		}
		kind := KindCategorical
		if numeric && seen {
			kind = KindNumeric
		}
		specs[i] = ColumnSpec{Name: name, Kind: kind}
	}
	return specs
}

// FromRows infers specs and builds a dataset in one step
func FromRows(source string, headers []string, rows [][]string, known []ColumnSpec) (*Dataset, map[string]int, error) {
	b, err := NewBuilder(source, InferSpecs(headers, rows, known))
	if err != nil {
		return nil, nil, err
	}
	for _, row := range rows {
		if err := b.Append(row); err != nil {
			return nil, nil, err
		}
	}
	invalid := b.Invalid()
	return b.Build(), invalid, nil
}
