package stats

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tnatlas/domain/core"
	"tnatlas/domain/study"
)

func TestImpute(t *testing.T) {
	cases := []struct {
		raw     string
		want    int
		wantErr error
	}{
		{raw: "0", want: 0},
		{raw: "17", want: 17},
		{raw: " 42 ", want: 42},
		{raw: "1,204", want: 1204},
		{raw: study.SuppressionSentinel, want: 5},
		{raw: "", wantErr: core.ErrAmbiguousCell},
		{raw: "N/A", wantErr: core.ErrAmbiguousCell},
		{raw: "ten or fewer", wantErr: core.ErrAmbiguousCell},
		{raw: "3.5", wantErr: core.ErrAmbiguousCell},
		{raw: "-4", wantErr: core.ErrDomain},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%q", tc.raw), func(t *testing.T) {
			got, err := Impute(study.NewRawCell(tc.raw))
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestImputeAs_CustomValue(t *testing.T) {
	got, err := ImputeAs(study.NewRawCell(study.SuppressionSentinel), 3)
	require.NoError(t, err)
	assert.Equal(t, 3, got)
}

func TestWilsonInterval_ContainsPointEstimate(t *testing.T) {
	ns := []int{1, 2, 10, 51, 100, 1000, 250000}
	for _, n := range ns {
		for _, x := range []int{0, 1, n / 2, n - 1, n} {
			if x < 0 || x > n {
				continue
			}
			lo, hi, err := WilsonInterval(x, n, 0.95)
			require.NoError(t, err, "x=%d n=%d", x, n)
			pHat := float64(x) / float64(n)
			assert.LessOrEqual(t, lo, pHat, "x=%d n=%d", x, n)
			assert.GreaterOrEqual(t, hi, pHat, "x=%d n=%d", x, n)
			assert.GreaterOrEqual(t, lo, 0.0)
			assert.LessOrEqual(t, hi, 1.0)
		}
	}
}

func TestWilsonInterval_WidensWithConfidence(t *testing.T) {
	levels := []float64{0.80, 0.90, 0.95, 0.99, 0.999}
	prev := -1.0
	for _, c := range levels {
		lo, hi, err := WilsonInterval(12, 140, c)
		require.NoError(t, err)
		width := hi - lo
		assert.Greater(t, width, prev, "confidence %g", c)
		prev = width
	}
}

func TestWilsonInterval_DomainErrors(t *testing.T) {
	_, _, err := WilsonInterval(5, 0, 0.95)
	assert.ErrorIs(t, err, core.ErrDomain)

	_, _, err = WilsonInterval(5, -3, 0.95)
	assert.ErrorIs(t, err, core.ErrDomain)

	_, _, err = WilsonInterval(11, 10, 0.95)
	assert.ErrorIs(t, err, core.ErrDomain)

	_, _, err = WilsonInterval(-1, 10, 0.95)
	assert.ErrorIs(t, err, core.ErrDomain)

	_, _, err = WilsonInterval(5, 10, 1.0)
	assert.ErrorIs(t, err, core.ErrDomain)

	_, _, err = WilsonInterval(5, 10, 0.0)
	assert.ErrorIs(t, err, core.ErrDomain)
}

func TestZTestProportion_PValueInUnitInterval(t *testing.T) {
	for _, n := range []int{5, 51, 400, 100000} {
		for _, x := range []int{0, 1, n / 3, n} {
			for _, p0 := range []float64{0.001, 0.01, 0.5, 0.93} {
				_, p, err := ZTestProportion(x, n, p0)
				require.NoError(t, err, "x=%d n=%d p0=%g", x, n, p0)
				assert.GreaterOrEqual(t, p, 0.0)
				assert.LessOrEqual(t, p, 1.0)
			}
		}
	}
}

func TestZTestProportion_SignFlipsUnderReflection(t *testing.T) {
	// z(x, n, p0) == -z(n-x, n, 1-p0), with identical p-values.
	cases := []struct {
		x, n int
		p0   float64
	}{
		{5, 1000, 0.01},
		{120, 400, 0.25},
		{51, 51, 0.9},
		{0, 30, 0.1},
	}
	for _, tc := range cases {
		z1, p1, err := ZTestProportion(tc.x, tc.n, tc.p0)
		require.NoError(t, err)
		z2, p2, err := ZTestProportion(tc.n-tc.x, tc.n, 1-tc.p0)
		require.NoError(t, err)
		assert.InDelta(t, z1, -z2, 1e-12, "x=%d n=%d p0=%g", tc.x, tc.n, tc.p0)
		assert.InDelta(t, p1, p2, 1e-12)
	}
}

func TestZTestProportion_GuardsDegenerateReference(t *testing.T) {
	for _, p0 := range []float64{0, 1, -0.2, 1.5} {
		_, _, err := ZTestProportion(10, 100, p0)
		assert.ErrorIs(t, err, core.ErrDomain, "p0=%g", p0)
	}
	_, _, err := ZTestProportion(10, 0, 0.5)
	assert.ErrorIs(t, err, core.ErrDomain)
}

func TestChiSquare_IndependentTableScoresNearZero(t *testing.T) {
	// Cells built as the exact product of marginals are perfectly
	// independent: the statistic is 0 and p is 1.
	rowWeights := []int{2, 3, 4}
	colWeights := []int{5, 7}
	table := make([][]int, len(rowWeights))
	for i, rw := range rowWeights {
		table[i] = make([]int, len(colWeights))
		for j, cw := range colWeights {
			table[i][j] = rw * cw
		}
	}

	res, err := ChiSquareIndependence(table)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, res.Statistic, 1e-9)
	assert.InDelta(t, 1.0, res.PValue, 1e-9)
	assert.Equal(t, 2, res.Dof)
}

func TestChiSquare_DofMatchesDimensions(t *testing.T) {
	// 9 divisions x 5 medications, uniform counts.
	table := make([][]int, 9)
	for i := range table {
		table[i] = []int{10, 10, 10, 10, 10}
	}
	res, err := ChiSquareIndependence(table)
	require.NoError(t, err)
	assert.Equal(t, 32, res.Dof)
	assert.InDelta(t, 0.0, res.Statistic, 1e-9)
}

func TestChiSquare_DomainErrors(t *testing.T) {
	_, err := ChiSquareIndependence([][]int{{1, 2}})
	assert.ErrorIs(t, err, core.ErrDomain, "single row")

	_, err = ChiSquareIndependence([][]int{{1}, {2}})
	assert.ErrorIs(t, err, core.ErrDomain, "single column")

	_, err = ChiSquareIndependence([][]int{{1, 2}, {3}})
	assert.ErrorIs(t, err, core.ErrDomain, "ragged")

	_, err = ChiSquareIndependence([][]int{{1, -2}, {3, 4}})
	assert.ErrorIs(t, err, core.ErrDomain, "negative cell")

	_, err = ChiSquareIndependence([][]int{{0, 0}, {3, 4}})
	assert.ErrorIs(t, err, core.ErrDomain, "zero row marginal")

	_, err = ChiSquareIndependence([][]int{{1, 0}, {3, 0}})
	assert.ErrorIs(t, err, core.ErrDomain, "zero column marginal")
}

func TestChiSquare_MinExpectedFlagsSparseTables(t *testing.T) {
	res, err := ChiSquareIndependence([][]int{{2, 1}, {1, 2}})
	require.NoError(t, err)
	assert.Less(t, res.MinExpected, 5.0)
}
