// Package aggregate computes the dashboard's aggregate views. Every function
// is pure: it reads a filtered view and returns a fresh result without
// touching the dataset.
package aggregate

import (
	"sort"

	"shoplens/domain/dataset"
	"shoplens/domain/views"
)

// FrequencyTable counts the non-null values of a column, most frequent first.
// Ties keep the order in which values were first seen.
func FrequencyTable(view dataset.View, column string) ([]views.ValueCount, error) {
	col, err := view.Column(column)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)
	counts := []views.ValueCount{}
	for i := 0; i < view.Len(); i++ {
		val, ok := col.Text(view.Row(i))
		if !ok {
			continue
		}
		pos, seen := index[val]
		if !seen {
			pos = len(counts)
			index[val] = pos
			counts = append(counts, views.ValueCount{Value: val})
		}
		counts[pos].Count++
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	return counts, nil
}
