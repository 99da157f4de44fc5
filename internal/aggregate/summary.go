package aggregate

import (
	"github.com/montanaflynn/stats"

	"shoplens/domain/dataset"
	"shoplens/domain/views"
)

// Summarize computes the KPI card of a numeric column. Statistics are NaN
// when the view holds no values for the column.
func Summarize(view dataset.View, column string) (views.NumericSummary, error) {
	col, err := view.NumericColumn(column)
	if err != nil {
		return views.NumericSummary{}, err
	}

	data := make(stats.Float64Data, 0, view.Len())
	summary := views.NumericSummary{Column: column}
	for i := 0; i < view.Len(); i++ {
		v, ok := col.Float(view.Row(i))
		if !ok {
			summary.Nulls++
			continue
		}
		data = append(data, v)
	}
	summary.Count = len(data)

	nan := views.NaNScore()
	summary.Mean, summary.Median, summary.Min, summary.Max, summary.StdDev = nan, nan, nan, nan, nan
	if len(data) == 0 {
		return summary, nil
	}

	sum, _ := stats.Sum(data)
	mean, _ := stats.Mean(data)
	median, _ := stats.Median(data)
	min, _ := stats.Min(data)
	max, _ := stats.Max(data)
	stdDev, _ := stats.StandardDeviation(data)

	summary.Sum = sum
	summary.Mean = views.Score(mean)
	summary.Median = views.Score(median)
	summary.Min = views.Score(min)
	summary.Max = views.Score(max)
	summary.StdDev = views.Score(stdDev)
	return summary, nil
}
