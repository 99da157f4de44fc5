package views

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Score is a statistic that may be undefined. Undefined scores are NaN in Go
// and null on the wire.
type Score float64

// NaNScore is the undefined score
func NaNScore() Score { return Score(math.NaN()) }

// Valid reports whether the score is defined
func (s Score) Valid() bool { return !math.IsNaN(float64(s)) }

// MarshalJSON renders NaN as null
func (s Score) MarshalJSON() ([]byte, error) {
	f := float64(s)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(f, 'g', -1, 64)), nil
}

// UnmarshalJSON reads null back as NaN
func (s *Score) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = NaNScore()
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*s = Score(f)
	return nil
}

// ValueCount is one row of a frequency table
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// GroupMean is the mean of a numeric column for one combination of group
// values. Empty marks a combination with no rows in the view; its Mean is 0.
type GroupMean struct {
	Key   []string `json:"key"`
	Mean  float64  `json:"mean"`
	Count int      `json:"count"`
	Empty bool     `json:"empty,omitempty"`
}

// GroupedMeans holds every combination of group values in first-seen order
type GroupedMeans struct {
	ValueColumn  string      `json:"value_column"`
	GroupColumns []string    `json:"group_columns"`
	Groups       []GroupMean `json:"groups"`
}

// KeySeparator joins multi-column group keys in Means and ZeroFilled
const KeySeparator = " | "

// Means returns the mean per non-empty group keyed by the joined group values
func (g GroupedMeans) Means() map[string]float64 {
	out := make(map[string]float64, len(g.Groups))
	for _, grp := range g.Groups {
		if grp.Empty {
			continue
		}
		out[joinKey(grp.Key)] = grp.Mean
	}
	return out
}

// ZeroFilled returns the mean per group, reporting empty groups as 0
func (g GroupedMeans) ZeroFilled() map[string]float64 {
	out := make(map[string]float64, len(g.Groups))
	for _, grp := range g.Groups {
		out[joinKey(grp.Key)] = grp.Mean
	}
	return out
}

func joinKey(parts []string) string {
	return strings.Join(parts, KeySeparator)
}

// Bin is one histogram bucket covering [Low, High)
type Bin struct {
	Label string  `json:"label"`
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Value float64 `json:"value"`
}

// Histogram is a binned aggregate. Every configured bin is present in label
// order. Dropped counts rows whose value fell outside every bin.
type Histogram struct {
	Column  string `json:"column"`
	Measure string `json:"measure,omitempty"`
	Bins    []Bin  `json:"bins"`
	Dropped int    `json:"dropped"`
}

// Total sums the bin values
func (h Histogram) Total() float64 {
	total := 0.0
	for _, b := range h.Bins {
		total += b.Value
	}
	return total
}

// CrossTab is a contingency table of two categorical columns. Axes are in
// first-seen order; rows with a null in either column are skipped.
type CrossTab struct {
	RowColumn string   `json:"row_column"`
	ColColumn string   `json:"col_column"`
	RowLabels []string `json:"row_labels"`
	ColLabels []string `json:"col_labels"`
	Counts    [][]int  `json:"counts"`
	N         int      `json:"n"`
}

// RowTotals returns the marginal count per row label
func (c CrossTab) RowTotals() []int {
	totals := make([]int, len(c.RowLabels))
	for i, row := range c.Counts {
		for _, n := range row {
			totals[i] += n
		}
	}
	return totals
}

// ColTotals returns the marginal count per column label
func (c CrossTab) ColTotals() []int {
	totals := make([]int, len(c.ColLabels))
	for _, row := range c.Counts {
		for j, n := range row {
			totals[j] += n
		}
	}
	return totals
}

// Association is the strength of association between two categorical columns
type Association struct {
	ColumnA   string `json:"column_a"`
	ColumnB   string `json:"column_b"`
	CramersV  Score  `json:"cramers_v"`
	ChiSquare Score  `json:"chi_square"`
	PValue    Score  `json:"p_value"`
	DF        int    `json:"df"`
	N         int    `json:"n"`
}

// AssociationMatrix is a symmetric matrix of Cramér's V scores with a unit
// diagonal
type AssociationMatrix struct {
	Columns []string  `json:"columns"`
	Values  [][]Score `json:"values"`
}

// At returns the score for a pair of column names
func (m AssociationMatrix) At(a, b string) (Score, bool) {
	i, j := -1, -1
	for k, c := range m.Columns {
		if c == a {
			i = k
		}
		if c == b {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return NaNScore(), false
	}
	return m.Values[i][j], true
}

// FlowNode is a (column, value) pair in a flow diagram
type FlowNode struct {
	Column string `json:"column"`
	Value  string `json:"value"`
}

// FlowEdge counts rows moving from one value to the next along the chain.
// Stage is the index of the left column in the chain.
type FlowEdge struct {
	Stage       int    `json:"stage"`
	Source      string `json:"source"`
	Target      string `json:"target"`
	SourceIndex int    `json:"source_index"`
	TargetIndex int    `json:"target_index"`
	Count       int    `json:"count"`
}

// Flow is a weighted edge list over a column chain, ready for a Sankey
// diagram. Labels[i] is the display label of Nodes[i].
type Flow struct {
	Chain  []string   `json:"chain"`
	Nodes  []FlowNode `json:"nodes"`
	Labels []string   `json:"labels"`
	Edges  []FlowEdge `json:"edges"`
}

// StageTotal sums the edge counts leaving one stage
func (f Flow) StageTotal(stage int) int {
	total := 0
	for _, e := range f.Edges {
		if e.Stage == stage {
			total += e.Count
		}
	}
	return total
}

// NumericSummary is a KPI card for one numeric column
type NumericSummary struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Nulls  int     `json:"nulls"`
	Sum    float64 `json:"sum"`
	Mean   Score   `json:"mean"`
	Median Score   `json:"median"`
	Min    Score   `json:"min"`
	Max    Score   `json:"max"`
	StdDev Score   `json:"stddev"`
}
