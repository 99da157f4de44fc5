package filter

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"shoplens/domain/core"
	"shoplens/domain/dataset"
)

// Bounds is a slider position: an inclusive numeric interval
type Bounds struct {
	Low  float64 `json:"low" yaml:"low"`
	High float64 `json:"high" yaml:"high"`
}

// Selection is the state of the sidebar widgets for one interaction. It is
// owned by the caller (UI, API request, CLI flags) and handed to
// NewPredicateSet every cycle; the core never keeps it.
type Selection struct {
	Ranges    map[string]Bounds   `json:"ranges,omitempty" yaml:"ranges,omitempty"`
	Selected  map[string][]string `json:"selected,omitempty" yaml:"selected,omitempty"`
	AllowNull []string            `json:"allow_null,omitempty" yaml:"allow_null,omitempty"`
	// Reset discards every widget value and selects all rows
	Reset bool `json:"reset,omitempty" yaml:"reset,omitempty"`
}

// IsEmpty reports whether the selection constrains nothing
func (s Selection) IsEmpty() bool {
	if s.Reset {
		return true
	}
	if len(s.Ranges) > 0 {
		return false
	}
	for _, vals := range s.Selected {
		if len(vals) > 0 {
			return false
		}
	}
	return true
}

// NewPredicateSet turns widget state into a predicate set. When ds is not nil
// every referenced column must exist in it and ranges must target numeric
// columns. A reset selection produces the empty set.
func NewPredicateSet(sel Selection, ds *dataset.Dataset) (PredicateSet, error) {
	if sel.Reset {
		return NewSet()
	}

	allowNull := make(map[string]bool, len(sel.AllowNull))
	for _, col := range sel.AllowNull {
		allowNull[col] = true
	}

	preds := make([]Predicate, 0, len(sel.Ranges)+len(sel.Selected))

	rangeCols := make([]string, 0, len(sel.Ranges))
	for col := range sel.Ranges {
		rangeCols = append(rangeCols, col)
	}
	sort.Strings(rangeCols)
	for _, col := range rangeCols {
		b := sel.Ranges[col]
		r := Range{Col: col, Low: b.Low, High: b.High, AllowNull: allowNull[col]}
		if err := r.Validate(); err != nil {
			return PredicateSet{}, err
		}
		preds = append(preds, r)
	}

	selCols := make([]string, 0, len(sel.Selected))
	for col := range sel.Selected {
		selCols = append(selCols, col)
	}
	sort.Strings(selCols)
	for _, col := range selCols {
		preds = append(preds, Membership{Col: col, Allowed: sel.Selected[col], AllowNull: allowNull[col]})
	}

	set, err := NewSet(preds...)
	if err != nil {
		return PredicateSet{}, err
	}

	if ds != nil {
		for _, p := range preds {
			if _, err := p.compile(ds); err != nil {
				return PredicateSet{}, err
			}
		}
	}
	return set, nil
}

// ParseRange parses a "Column=low:high" flag value
func ParseRange(s string) (string, Bounds, error) {
	col, spec, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(col) == "" {
		return "", Bounds{}, core.NewConfigurationError("range", fmt.Sprintf("%q is not Column=low:high", s))
	}
	lowStr, highStr, ok := strings.Cut(spec, ":")
	if !ok {
		return "", Bounds{}, core.NewConfigurationError("range", fmt.Sprintf("%q is not Column=low:high", s))
	}
	low, err := strconv.ParseFloat(strings.TrimSpace(lowStr), 64)
	if err != nil {
		return "", Bounds{}, core.NewConfigurationError("range", fmt.Sprintf("bad low bound in %q", s))
	}
	high, err := strconv.ParseFloat(strings.TrimSpace(highStr), 64)
	if err != nil {
		return "", Bounds{}, core.NewConfigurationError("range", fmt.Sprintf("bad high bound in %q", s))
	}
	return strings.TrimSpace(col), Bounds{Low: low, High: high}, nil
}

// ParseMembership parses a "Column=a,b,c" flag value. "Column=" selects
// nothing, which places no constraint on the column.
func ParseMembership(s string) (string, []string, error) {
	col, spec, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(col) == "" {
		return "", nil, core.NewConfigurationError("select", fmt.Sprintf("%q is not Column=value,...", s))
	}
	values := []string{}
	for _, v := range strings.Split(spec, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return strings.TrimSpace(col), values, nil
}
