package filter

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"shoplens/domain/core"
	"shoplens/domain/dataset"
)

// Predicate is a single column-scoped filter condition
type Predicate interface {
	// Column returns the column the predicate constrains
	Column() string
	// Info describes the predicate for logs and API responses
	Info() PredicateInfo

	compile(ds *dataset.Dataset) (matcher, error)
}

// matcher tests one dataset row. A nil matcher means "no constraint".
type matcher func(row int) bool

// PredicateInfo is the serialisable description of a predicate
type PredicateInfo struct {
	Column    string   `json:"column"`
	Kind      string   `json:"kind"` // "range" or "membership"
	Low       *float64 `json:"low,omitempty"`
	High      *float64 `json:"high,omitempty"`
	Allowed   []string `json:"allowed,omitempty"`
	AllowNull bool     `json:"allow_null,omitempty"`
}

// Range keeps rows whose numeric value lies in [Low, High]
type Range struct {
	Col       string
	Low       float64
	High      float64
	AllowNull bool
}

// NewRange creates an inclusive range predicate
func NewRange(column string, low, high float64) Range {
	return Range{Col: column, Low: low, High: high}
}

func (r Range) Column() string { return r.Col }

func (r Range) Info() PredicateInfo {
	low, high := r.Low, r.High
	return PredicateInfo{Column: r.Col, Kind: "range", Low: &low, High: &high, AllowNull: r.AllowNull}
}

// Validate checks the bounds independent of any dataset
func (r Range) Validate() error {
	if math.IsNaN(r.Low) || math.IsNaN(r.High) {
		return fmt.Errorf("%w: %q bounds must be numbers", core.ErrInvalidRange, r.Col)
	}
	if r.Low > r.High {
		return fmt.Errorf("%w: %q low %v > high %v", core.ErrInvalidRange, r.Col, r.Low, r.High)
	}
	return nil
}

func (r Range) compile(ds *dataset.Dataset) (matcher, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	col, err := ds.Column(r.Col)
	if err != nil {
		return nil, err
	}
	if !col.IsNumeric() {
		return nil, core.NewColumnKindError(r.Col, string(dataset.KindNumeric), string(col.Kind()))
	}
	low, high, allowNull := r.Low, r.High, r.AllowNull
	return func(row int) bool {
		f, ok := col.Float(row)
		if !ok {
			return allowNull
		}
		return low <= f && f <= high
	}, nil
}

// Membership keeps rows whose value is one of Allowed. An empty Allowed set
// places no constraint on the column (the sidebar's "nothing picked" state).
type Membership struct {
	Col       string
	Allowed   []string
	AllowNull bool
}

// NewMembership creates a set-membership predicate
func NewMembership(column string, allowed ...string) Membership {
	return Membership{Col: column, Allowed: allowed}
}

func (m Membership) Column() string { return m.Col }

func (m Membership) Info() PredicateInfo {
	allowed := append([]string(nil), m.Allowed...)
	return PredicateInfo{Column: m.Col, Kind: "membership", Allowed: allowed, AllowNull: m.AllowNull}
}

// Unconstrained reports whether the predicate lets every row through
func (m Membership) Unconstrained() bool {
	return len(m.Allowed) == 0
}

func (m Membership) compile(ds *dataset.Dataset) (matcher, error) {
	col, err := ds.Column(m.Col)
	if err != nil {
		return nil, err
	}
	if m.Unconstrained() {
		return nil, nil
	}

	allowed := make(map[string]bool, len(m.Allowed))
	for _, val := range m.Allowed {
		val = strings.TrimSpace(val)
		if col.IsNumeric() {
			// "18.0" and "18" name the same number
			if f, err := strconv.ParseFloat(val, 64); err == nil {
				val = dataset.FormatNumber(f)
			}
		}
		allowed[val] = true
	}

	allowNull := m.AllowNull
	return func(row int) bool {
		val, ok := col.Text(row)
		if !ok {
			return allowNull
		}
		return allowed[val]
	}, nil
}

// PredicateSet maps column names to at most one predicate each. It is built
// fresh every cycle and never mutated afterwards.
type PredicateSet struct {
	preds map[string]Predicate
}

// NewSet builds a predicate set, rejecting two predicates on one column
func NewSet(preds ...Predicate) (PredicateSet, error) {
	set := PredicateSet{preds: make(map[string]Predicate, len(preds))}
	for _, p := range preds {
		if _, dup := set.preds[p.Column()]; dup {
			return PredicateSet{}, fmt.Errorf("%w: two predicates on column %q", core.ErrDuplicateKey, p.Column())
		}
		set.preds[p.Column()] = p
	}
	return set, nil
}

// Len returns the number of predicates
func (s PredicateSet) Len() int { return len(s.preds) }

// Get returns the predicate on a column
func (s PredicateSet) Get(column string) (Predicate, bool) {
	p, ok := s.preds[column]
	return p, ok
}

// Columns returns the constrained column names, sorted
func (s PredicateSet) Columns() []string {
	cols := make([]string, 0, len(s.preds))
	for col := range s.preds {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

// With returns a copy of the set where p replaces any predicate on its column
func (s PredicateSet) With(p Predicate) PredicateSet {
	out := PredicateSet{preds: make(map[string]Predicate, len(s.preds)+1)}
	for col, existing := range s.preds {
		out.preds[col] = existing
	}
	out.preds[p.Column()] = p
	return out
}

// Infos describes every predicate, sorted by column
func (s PredicateSet) Infos() []PredicateInfo {
	infos := make([]PredicateInfo, 0, len(s.preds))
	for _, col := range s.Columns() {
		infos = append(infos, s.preds[col].Info())
	}
	return infos
}
