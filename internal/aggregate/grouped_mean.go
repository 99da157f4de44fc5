package aggregate

import (
	"fmt"
	"strings"

	"github.com/montanaflynn/stats"

	"shoplens/domain/core"
	"shoplens/domain/dataset"
	"shoplens/domain/views"
)

// GroupedMean averages a numeric column per combination of group values.
//
// Groups are the Cartesian product of each group column's distinct values in
// first-seen order, so a combination that never occurs together is still
// reported, flagged Empty with a zero mean. Rows with a null in any group
// column or in the value column do not contribute.
func GroupedMean(view dataset.View, valueColumn string, groupColumns []string) (views.GroupedMeans, error) {
	if len(groupColumns) == 0 {
		return views.GroupedMeans{}, core.NewConfigurationError("group_columns", "at least one group column is required")
	}
	valueCol, err := view.NumericColumn(valueColumn)
	if err != nil {
		return views.GroupedMeans{}, err
	}

	groupCols := make([]*dataset.Column, len(groupColumns))
	levels := make([][]string, len(groupColumns))
	seen := make(map[string]bool, len(groupColumns))
	for i, name := range groupColumns {
		if seen[name] {
			return views.GroupedMeans{}, fmt.Errorf("%w: group column %q listed twice", core.ErrDuplicateKey, name)
		}
		seen[name] = true
		if groupCols[i], err = view.Column(name); err != nil {
			return views.GroupedMeans{}, err
		}
		if levels[i], err = view.Distinct(name); err != nil {
			return views.GroupedMeans{}, err
		}
	}

	result := views.GroupedMeans{
		ValueColumn:  valueColumn,
		GroupColumns: append([]string(nil), groupColumns...),
		Groups:       []views.GroupMean{},
	}

	combos := cartesian(levels)
	if len(combos) == 0 {
		return result, nil
	}

	index := make(map[string]int, len(combos))
	for i, key := range combos {
		index[comboKey(key)] = i
	}

	samples := make([][]float64, len(combos))
	key := make([]string, len(groupCols))
	for i := 0; i < view.Len(); i++ {
		row := view.Row(i)
		v, ok := valueCol.Float(row)
		if !ok {
			continue
		}
		complete := true
		for g, col := range groupCols {
			if key[g], ok = col.Text(row); !ok {
				complete = false
				break
			}
		}
		if !complete {
			continue
		}
		pos := index[comboKey(key)]
		samples[pos] = append(samples[pos], v)
	}

	for i, combo := range combos {
		group := views.GroupMean{Key: combo, Count: len(samples[i])}
		if group.Count == 0 {
			group.Empty = true
		} else {
			mean, err := stats.Mean(samples[i])
			if err != nil {
				return views.GroupedMeans{}, fmt.Errorf("mean of %q for %v: %w", valueColumn, combo, err)
			}
			group.Mean = mean
		}
		result.Groups = append(result.Groups, group)
	}
	return result, nil
}

// cartesian enumerates every combination of levels, first column outermost
func cartesian(levels [][]string) [][]string {
	combos := [][]string{{}}
	for _, values := range levels {
		if len(values) == 0 {
			return nil
		}
		next := make([][]string, 0, len(combos)*len(values))
		for _, prefix := range combos {
			for _, v := range values {
				combo := make([]string, len(prefix), len(prefix)+1)
				copy(combo, prefix)
				next = append(next, append(combo, v))
			}
		}
		combos = next
	}
	return combos
}

// comboKey joins group values with a separator that cannot occur in a cell
func comboKey(values []string) string {
	return strings.Join(values, "\x00")
}
