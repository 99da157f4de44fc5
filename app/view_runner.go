package app

import (
	"fmt"

	"shoplens/domain/core"
	"shoplens/domain/dataset"
	"shoplens/internal/aggregate"
	"shoplens/internal/config"
)

// RunView computes one configured view over an already filtered view. The
// result is one of the domain/views types, or a slice of them for frequency
// tables.
func RunView(view dataset.View, spec config.ViewSpec) (interface{}, error) {
	switch spec.Kind {
	case config.ViewFrequency:
		return aggregate.FrequencyTable(view, spec.Column)

	case config.ViewGroupedMean:
		return aggregate.GroupedMean(view, spec.ValueColumn, spec.GroupColumns)

	case config.ViewHistogram:
		return aggregate.Histogram(view, aggregate.HistogramSpec{
			Column:     spec.Column,
			Boundaries: spec.Boundaries,
			Labels:     spec.Labels,
			Measure:    spec.Measure,
		})

	case config.ViewAssociation:
		if len(spec.Columns) != 2 {
			return nil, core.NewConfigurationError(spec.Name, "association needs exactly two columns")
		}
		return aggregate.Association(view, spec.Columns[0], spec.Columns[1])

	case config.ViewAssociationMatrix:
		return aggregate.AssociationMatrix(view, spec.Columns)

	case config.ViewFlow:
		return aggregate.FlowTally(view, spec.Columns)

	case config.ViewCrossTab:
		if len(spec.Columns) != 2 {
			return nil, core.NewConfigurationError(spec.Name, "crosstab needs exactly two columns")
		}
		return aggregate.CrossTab(view, spec.Columns[0], spec.Columns[1])

	case config.ViewSummary:
		return aggregate.Summarize(view, spec.Column)
	}
	return nil, core.NewConfigurationError(spec.Name, fmt.Sprintf("unknown view kind %q", spec.Kind))
}
