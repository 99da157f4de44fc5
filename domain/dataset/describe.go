package dataset

// ColumnInfo describes one column of a view, enough for a sidebar to build
// its widgets: option lists for categorical columns and slider bounds for
// numeric ones.
type ColumnInfo struct {
	Name     string     `json:"name"`
	Kind     ColumnKind `json:"kind"`
	Nulls    int        `json:"nulls"`
	Distinct int        `json:"distinct"`
	Options  []string   `json:"options,omitempty"`
	Min      *float64   `json:"min,omitempty"`
	Max      *float64   `json:"max,omitempty"`
}

// maxOptions caps the option list of high-cardinality columns (IDs)
const maxOptions = 100

// Describe summarises every column of the view in dataset order
func Describe(v View) []ColumnInfo {
	if v.ds == nil {
		return []ColumnInfo{}
	}
	infos := make([]ColumnInfo, 0, len(v.ds.columns))
	for _, col := range v.ds.columns {
		info := ColumnInfo{Name: col.Name(), Kind: col.Kind()}
		info.Nulls, _ = v.NullCount(col.Name())

		distinct, _ := v.Distinct(col.Name())
		info.Distinct = len(distinct)

		if col.IsNumeric() {
			if min, max, ok, _ := v.NumericBounds(col.Name()); ok {
				info.Min, info.Max = &min, &max
			}
		} else if len(distinct) <= maxOptions {
			info.Options = distinct
		}
		infos = append(infos, info)
	}
	return infos
}
