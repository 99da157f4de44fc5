package ui

import (
	"net/url"
	"strconv"
	"strings"

	"shoplens/domain/dataset"
	"shoplens/domain/filter"
)

// Form field prefixes. Column names can contain spaces, so the column is
// everything after the prefix.
const (
	fieldSelect = "sel:"
	fieldLow    = "lo:"
	fieldHigh   = "hi:"
	fieldNulls  = "nulls:"
	fieldReset  = "reset"
)

// selectionFromForm turns the sidebar form into a selection. A slider left at
// the column bounds places no constraint, so rows with a null stay visible.
func selectionFromForm(form url.Values, columns []dataset.ColumnInfo) (filter.Selection, error) {
	sel := filter.Selection{
		Ranges:   make(map[string]filter.Bounds),
		Selected: make(map[string][]string),
	}
	if form.Get(fieldReset) != "" {
		sel.Reset = true
		return sel, nil
	}

	for _, col := range columns {
		if form.Get(fieldNulls+col.Name) != "" {
			sel.AllowNull = append(sel.AllowNull, col.Name)
		}

		if col.Kind == dataset.KindNumeric {
			lowStr := strings.TrimSpace(form.Get(fieldLow + col.Name))
			highStr := strings.TrimSpace(form.Get(fieldHigh + col.Name))
			if (lowStr == "" && highStr == "") || col.Min == nil || col.Max == nil {
				continue
			}
			b := filter.Bounds{Low: *col.Min, High: *col.Max}
			var err error
			if lowStr != "" {
				if b.Low, err = strconv.ParseFloat(lowStr, 64); err != nil {
					return filter.Selection{}, err
				}
			}
			if highStr != "" {
				if b.High, err = strconv.ParseFloat(highStr, 64); err != nil {
					return filter.Selection{}, err
				}
			}
			if b.Low == *col.Min && b.High == *col.Max {
				continue
			}
			sel.Ranges[col.Name] = b
			continue
		}

		// a blank option means nothing picked, not "match empty text"
		var values []string
		for _, v := range form[fieldSelect+col.Name] {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
		if len(values) > 0 {
			sel.Selected[col.Name] = values
		}
	}
	return sel, nil
}
