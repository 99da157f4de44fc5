package filter

import (
	"shoplens/domain/core"
	"shoplens/domain/dataset"
)

// Apply returns the rows of view that satisfy every predicate in set.
//
// All predicates are compiled against the backing dataset before any row is
// visited, so an unknown column or a bad range fails the whole call without
// partial results. Rows are then scanned once with a short-circuit AND. The
// input view is never modified and the result owns a fresh index slice.
// Because the view may itself be a filtered result, Apply(Apply(v, s), s)
// yields the same rows as Apply(v, s).
func Apply(view dataset.View, set PredicateSet) (dataset.View, error) {
	ds := view.Dataset()

	matchers := make([]matcher, 0, set.Len())
	for _, col := range set.Columns() {
		pred := set.preds[col]
		if ds == nil {
			return dataset.View{}, core.NewColumnNotFoundError(col)
		}
		m, err := pred.compile(ds)
		if err != nil {
			return dataset.View{}, err
		}
		if m != nil {
			matchers = append(matchers, m)
		}
	}

	n := view.Len()
	if len(matchers) == 0 {
		return dataset.NewView(ds, view.Rows()), nil
	}

	rows := make([]int, 0, n)
	for i := 0; i < n; i++ {
		row := view.Row(i)
		pass := true
		for _, m := range matchers {
			if !m(row) {
				pass = false
				break
			}
		}
		if pass {
			rows = append(rows, row)
		}
	}
	return dataset.NewView(ds, rows), nil
}
