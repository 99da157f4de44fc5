package aggregate

import (
	"shoplens/domain/dataset"
	"shoplens/domain/views"
)

// CrossTab builds the contingency table of two columns over the view. Rows
// with a null in either column are not counted.
func CrossTab(view dataset.View, rowColumn, colColumn string) (views.CrossTab, error) {
	rowCol, err := view.Column(rowColumn)
	if err != nil {
		return views.CrossTab{}, err
	}
	colCol, err := view.Column(colColumn)
	if err != nil {
		return views.CrossTab{}, err
	}

	ct := views.CrossTab{
		RowColumn: rowColumn,
		ColColumn: colColumn,
		RowLabels: []string{},
		ColLabels: []string{},
		Counts:    [][]int{},
	}
	rowIndex := make(map[string]int)
	colIndex := make(map[string]int)

	for i := 0; i < view.Len(); i++ {
		row := view.Row(i)
		a, okA := rowCol.Text(row)
		b, okB := colCol.Text(row)
		if !okA || !okB {
			continue
		}

		r, seen := rowIndex[a]
		if !seen {
			r = len(ct.RowLabels)
			rowIndex[a] = r
			ct.RowLabels = append(ct.RowLabels, a)
			ct.Counts = append(ct.Counts, make([]int, len(ct.ColLabels)))
		}
		c, seen := colIndex[b]
		if !seen {
			c = len(ct.ColLabels)
			colIndex[b] = c
			ct.ColLabels = append(ct.ColLabels, b)
			for k := range ct.Counts {
				ct.Counts[k] = append(ct.Counts[k], 0)
			}
		}

		ct.Counts[r][c]++
		ct.N++
	}
	return ct, nil
}
