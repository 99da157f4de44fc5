package aggregate

import (
	"fmt"
	"math"
	"sort"

	"shoplens/domain/core"
	"shoplens/domain/dataset"
	"shoplens/domain/views"
)

// HistogramSpec configures a binned aggregate. Boundaries holds K+1 strictly
// increasing edges and Labels K names; bin i covers [Boundaries[i],
// Boundaries[i+1]). Measure, when set, sums that numeric column instead of
// counting rows.
type HistogramSpec struct {
	Column     string    `json:"column" yaml:"column"`
	Boundaries []float64 `json:"boundaries" yaml:"boundaries"`
	Labels     []string  `json:"labels,omitempty" yaml:"labels,omitempty"`
	Measure    string    `json:"measure,omitempty" yaml:"measure,omitempty"`
}

// Validate checks the bin layout independent of any data
func (s HistogramSpec) Validate() error {
	if len(s.Boundaries) < 2 {
		return fmt.Errorf("%w: %q needs at least two boundaries", core.ErrInvalidBins, s.Column)
	}
	for i, edge := range s.Boundaries {
		if math.IsNaN(edge) || math.IsInf(edge, 0) {
			return fmt.Errorf("%w: %q boundary %d is not finite", core.ErrInvalidBins, s.Column, i)
		}
		if i > 0 && edge <= s.Boundaries[i-1] {
			return fmt.Errorf("%w: %q boundaries must be strictly increasing", core.ErrInvalidBins, s.Column)
		}
	}
	if len(s.Labels) != len(s.Boundaries)-1 {
		return fmt.Errorf("%w: %q has %d labels for %d bins", core.ErrInvalidBins, s.Column, len(s.Labels), len(s.Boundaries)-1)
	}
	return nil
}

// Histogram buckets a numeric column into the configured bins. Every bin is
// reported, zero when nothing falls into it. Values below the first edge or
// at or above the last edge are counted in Dropped. Null values are ignored,
// as are rows whose measure is null.
func Histogram(view dataset.View, spec HistogramSpec) (views.Histogram, error) {
	if err := spec.Validate(); err != nil {
		return views.Histogram{}, err
	}
	col, err := view.NumericColumn(spec.Column)
	if err != nil {
		return views.Histogram{}, err
	}
	var measure *dataset.Column
	if spec.Measure != "" {
		if measure, err = view.NumericColumn(spec.Measure); err != nil {
			return views.Histogram{}, err
		}
	}

	edges := spec.Boundaries
	hist := views.Histogram{
		Column:  spec.Column,
		Measure: spec.Measure,
		Bins:    make([]views.Bin, len(edges)-1),
	}
	for i := range hist.Bins {
		hist.Bins[i] = views.Bin{Label: spec.Labels[i], Low: edges[i], High: edges[i+1]}
	}

	last := edges[len(edges)-1]
	for i := 0; i < view.Len(); i++ {
		row := view.Row(i)
		v, ok := col.Float(row)
		if !ok {
			continue
		}
		if v < edges[0] || v >= last {
			hist.Dropped++
			continue
		}
		// first edge strictly greater than v closes v's bin
		bin := sort.Search(len(edges), func(k int) bool { return edges[k] > v }) - 1

		if measure == nil {
			hist.Bins[bin].Value++
			continue
		}
		if m, ok := measure.Float(row); ok {
			hist.Bins[bin].Value += m
		}
	}
	return hist, nil
}
