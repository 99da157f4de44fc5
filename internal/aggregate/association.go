package aggregate

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"shoplens/domain/core"
	"shoplens/domain/dataset"
	"shoplens/domain/views"
)

// Association measures how strongly two categorical columns co-vary using
// the bias-corrected Cramér's V of their contingency table.
//
// The score is undefined (NaN) when either column has fewer than two distinct
// values in the view, when fewer than two rows are complete, or when the bias
// correction leaves no degrees of freedom.
func Association(view dataset.View, columnA, columnB string) (views.Association, error) {
	ct, err := CrossTab(view, columnA, columnB)
	if err != nil {
		return views.Association{}, err
	}
	return associationFromTable(ct), nil
}

func associationFromTable(ct views.CrossTab) views.Association {
	r, k, n := len(ct.RowLabels), len(ct.ColLabels), ct.N
	assoc := views.Association{
		ColumnA:   ct.RowColumn,
		ColumnB:   ct.ColColumn,
		CramersV:  views.NaNScore(),
		ChiSquare: views.NaNScore(),
		PValue:    views.NaNScore(),
		N:         n,
	}
	if r < 2 || k < 2 || n < 2 {
		return assoc
	}
	assoc.DF = (r - 1) * (k - 1)

	chi2 := chiSquare(ct)
	assoc.ChiSquare = views.Score(chi2)
	chiDist := distuv.ChiSquared{K: float64(assoc.DF)}
	assoc.PValue = views.Score(1 - chiDist.CDF(chi2))

	assoc.CramersV = views.Score(cramersV(chi2, n, r, k))
	return assoc
}

// chiSquare is the Pearson statistic without continuity correction
func chiSquare(ct views.CrossTab) float64 {
	rowTotals, colTotals := ct.RowTotals(), ct.ColTotals()
	n := float64(ct.N)

	chi2 := 0.0
	for i, row := range ct.Counts {
		for j, observed := range row {
			expected := float64(rowTotals[i]) * float64(colTotals[j]) / n
			if expected == 0 {
				continue
			}
			diff := float64(observed) - expected
			chi2 += diff * diff / expected
		}
	}
	return chi2
}

// cramersV applies the Bergsma bias correction to phi squared
func cramersV(chi2 float64, n, r, k int) float64 {
	nf, rf, kf := float64(n), float64(r), float64(k)

	phi2 := chi2 / nf
	phi2corr := math.Max(0, phi2-(kf-1)*(rf-1)/(nf-1))
	rcorr := rf - (rf-1)*(rf-1)/(nf-1)
	kcorr := kf - (kf-1)*(kf-1)/(nf-1)

	denom := math.Min(kcorr-1, rcorr-1)
	if denom <= 0 {
		return math.NaN()
	}
	v := math.Sqrt(phi2corr / denom)
	if v > 1 {
		v = 1
	}
	return v
}

// AssociationMatrix scores every pair of columns. The result is symmetric
// with a unit diagonal; each unordered pair is computed once and mirrored.
func AssociationMatrix(view dataset.View, columns []string) (views.AssociationMatrix, error) {
	seen := make(map[string]bool, len(columns))
	for _, name := range columns {
		if seen[name] {
			return views.AssociationMatrix{}, fmt.Errorf("%w: column %q listed twice", core.ErrDuplicateKey, name)
		}
		seen[name] = true
		if _, err := view.Column(name); err != nil {
			return views.AssociationMatrix{}, err
		}
	}

	m := views.AssociationMatrix{
		Columns: append([]string{}, columns...),
		Values:  make([][]views.Score, len(columns)),
	}
	for i := range m.Values {
		m.Values[i] = make([]views.Score, len(columns))
		m.Values[i][i] = 1
	}

	for i := 0; i < len(columns); i++ {
		for j := i + 1; j < len(columns); j++ {
			assoc, err := Association(view, columns[i], columns[j])
			if err != nil {
				return views.AssociationMatrix{}, err
			}
			m.Values[i][j] = assoc.CramersV
			m.Values[j][i] = assoc.CramersV
		}
	}
	return m, nil
}
