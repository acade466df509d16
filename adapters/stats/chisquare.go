package stats

import (
	"gonum.org/v1/gonum/stat/distuv"

	"tnatlas/domain/core"
)

// ChiSquareResult is the output of a Pearson chi-square independence test.
// MinExpected carries the smallest expected cell count so report layers can
// footnote the conventional validity caveat (expected counts < 5) without
// this function deciding presentation policy.
type ChiSquareResult struct {
	Statistic   float64
	PValue      float64
	Dof         int
	MinExpected float64
}

// ChiSquareIndependence runs the standard Pearson chi-square test of
// independence on an r x c table of non-negative counts (already imputed).
// Expected counts come from the row/column marginals; no continuity
// correction is applied.
//
// Fails with a domain error for tables smaller than 2x2, ragged or negative
// tables, and degenerate marginals (any zero row or column total, which
// would force an expected cell count of zero).
func ChiSquareIndependence(table [][]int) (ChiSquareResult, error) {
	r := len(table)
	if r < 2 {
		return ChiSquareResult{}, core.NewDomainError("contingency table needs at least 2 rows, got %d", r)
	}
	c := len(table[0])
	if c < 2 {
		return ChiSquareResult{}, core.NewDomainError("contingency table needs at least 2 columns, got %d", c)
	}

	rowTotals := make([]float64, r)
	colTotals := make([]float64, c)
	var total float64
	for i, row := range table {
		if len(row) != c {
			return ChiSquareResult{}, core.NewDomainError("ragged contingency table: row %d has %d cells, want %d", i, len(row), c)
		}
		for j, cell := range row {
			if cell < 0 {
				return ChiSquareResult{}, core.NewDomainError("negative cell count %d at (%d,%d)", cell, i, j)
			}
			rowTotals[i] += float64(cell)
			colTotals[j] += float64(cell)
			total += float64(cell)
		}
	}

	for i, rt := range rowTotals {
		if rt == 0 {
			return ChiSquareResult{}, core.NewDomainError("degenerate marginal: row %d sums to zero", i)
		}
	}
	for j, ct := range colTotals {
		if ct == 0 {
			return ChiSquareResult{}, core.NewDomainError("degenerate marginal: column %d sums to zero", j)
		}
	}

	var statistic float64
	minExpected := total
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			expected := rowTotals[i] * colTotals[j] / total
			if expected < minExpected {
				minExpected = expected
			}
			diff := float64(table[i][j]) - expected
			statistic += diff * diff / expected
		}
	}

	dof := (r - 1) * (c - 1)
	pValue := distuv.ChiSquared{K: float64(dof)}.Survival(statistic)

	return ChiSquareResult{
		Statistic:   statistic,
		PValue:      pValue,
		Dof:         dof,
		MinExpected: minExpected,
	}, nil
}
