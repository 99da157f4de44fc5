package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"shoplens/domain/dataset"
	"shoplens/internal/errors"
)

// View kinds understood by the dashboard service
const (
	ViewFrequency         = "frequency"
	ViewGroupedMean       = "grouped_mean"
	ViewHistogram         = "histogram"
	ViewAssociation       = "association"
	ViewAssociationMatrix = "association_matrix"
	ViewFlow              = "flow"
	ViewCrossTab          = "crosstab"
	ViewSummary           = "summary"
)

var viewKinds = map[string]bool{
	ViewFrequency:         true,
	ViewGroupedMean:       true,
	ViewHistogram:         true,
	ViewAssociation:       true,
	ViewAssociationMatrix: true,
	ViewFlow:              true,
	ViewCrossTab:          true,
	ViewSummary:           true,
}

// ViewSpec configures one aggregate view of the dashboard. Which fields are
// read depends on Kind.
type ViewSpec struct {
	Name  string `yaml:"name" json:"name"`
	Title string `yaml:"title,omitempty" json:"title,omitempty"`
	Kind  string `yaml:"kind" json:"kind"`

	// frequency, histogram, summary
	Column string `yaml:"column,omitempty" json:"column,omitempty"`
	// grouped_mean
	ValueColumn  string   `yaml:"value_column,omitempty" json:"value_column,omitempty"`
	GroupColumns []string `yaml:"group_columns,omitempty" json:"group_columns,omitempty"`
	// histogram
	Boundaries []float64 `yaml:"boundaries,omitempty" json:"boundaries,omitempty"`
	Labels     []string  `yaml:"labels,omitempty" json:"labels,omitempty"`
	Measure    string    `yaml:"measure,omitempty" json:"measure,omitempty"`
	// association, association_matrix, flow (chain order), crosstab (row, col)
	Columns []string `yaml:"columns,omitempty" json:"columns,omitempty"`
}

// Layout is the set of views the dashboard computes each cycle, in display
// order
type Layout struct {
	Title string     `yaml:"title" json:"title"`
	Views []ViewSpec `yaml:"views" json:"views"`
}

// View looks up a view by name
func (l *Layout) View(name string) (ViewSpec, bool) {
	for _, v := range l.Views {
		if v.Name == name {
			return v, true
		}
	}
	return ViewSpec{}, false
}

// Validate checks names and kinds. Column references are checked against the
// dataset when the view is computed.
func (l *Layout) Validate() error {
	if len(l.Views) == 0 {
		return errors.ConfigInvalid("layout defines no views")
	}
	seen := make(map[string]bool, len(l.Views))
	for i, v := range l.Views {
		if v.Name == "" {
			return errors.ConfigInvalid(fmt.Sprintf("view %d has no name", i))
		}
		if seen[v.Name] {
			return errors.ConfigInvalid(fmt.Sprintf("view %q defined twice", v.Name))
		}
		seen[v.Name] = true
		if !viewKinds[v.Kind] {
			return errors.ConfigInvalid(fmt.Sprintf("view %q has unknown kind %q", v.Name, v.Kind))
		}
	}
	return nil
}

// LoadLayout reads a YAML layout file. An empty path gives DefaultLayout.
func LoadLayout(path string) (*Layout, error) {
	if path == "" {
		return DefaultLayout(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read layout %s", path)
	}
	return ParseLayout(data)
}

// ParseLayout decodes and validates a YAML layout
func ParseLayout(data []byte) (*Layout, error) {
	var layout Layout
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("failed to parse layout: %w", err))
	}
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	return &layout, nil
}

// Marshal encodes the layout as YAML
func (l *Layout) Marshal() ([]byte, error) {
	return yaml.Marshal(l)
}

// DefaultLayout is the retail shopping dashboard
func DefaultLayout() *Layout {
	return &Layout{
		Title: "Customer Shopping Behaviour",
		Views: []ViewSpec{
			{Name: "amount_summary", Title: "Purchase amount", Kind: ViewSummary, Column: dataset.ColAmount},
			{Name: "rating_summary", Title: "Review rating", Kind: ViewSummary, Column: dataset.ColRating},
			{Name: "category_counts", Title: "Purchases by category", Kind: ViewFrequency, Column: dataset.ColCategory},
			{Name: "item_counts", Title: "Items purchased", Kind: ViewFrequency, Column: dataset.ColItem},
			{Name: "payment_counts", Title: "Payment methods", Kind: ViewFrequency, Column: dataset.ColPayment},
			{
				Name: "amount_by_gender", Title: "Average spend by gender", Kind: ViewGroupedMean,
				ValueColumn: dataset.ColAmount, GroupColumns: []string{dataset.ColGender},
			},
			{
				Name: "amount_by_season_category", Title: "Average spend by season and category", Kind: ViewGroupedMean,
				ValueColumn: dataset.ColAmount, GroupColumns: []string{dataset.ColSeason, dataset.ColCategory},
			},
			{
				Name: "age_groups", Title: "Customers by age group", Kind: ViewHistogram,
				Column:     dataset.ColAge,
				Boundaries: []float64{18, 25, 35, 45, 55, 65, 71},
				Labels:     []string{"18-24", "25-34", "35-44", "45-54", "55-64", "65-70"},
			},
			{
				Name: "revenue_by_age", Title: "Revenue by age group", Kind: ViewHistogram,
				Column:     dataset.ColAge,
				Boundaries: []float64{18, 25, 35, 45, 55, 65, 71},
				Labels:     []string{"18-24", "25-34", "35-44", "45-54", "55-64", "65-70"},
				Measure:    dataset.ColAmount,
			},
			{
				Name: "association", Title: "Association between customer attributes", Kind: ViewAssociationMatrix,
				Columns: []string{
					dataset.ColGender, dataset.ColCategory, dataset.ColSeason, dataset.ColSize,
					dataset.ColSubscription, dataset.ColShipping, dataset.ColDiscount,
					dataset.ColPromo, dataset.ColPayment, dataset.ColFrequency,
				},
			},
			{
				Name: "discount_promo", Title: "Discount vs promo code", Kind: ViewCrossTab,
				Columns: []string{dataset.ColDiscount, dataset.ColPromo},
			},
			{
				Name: "purchase_flow", Title: "Gender to category to payment", Kind: ViewFlow,
				Columns: []string{dataset.ColGender, dataset.ColCategory, dataset.ColPayment},
			},
		},
	}
}
