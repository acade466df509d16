package stats

import (
	"math"
	"testing"

	"tnatlas/domain/study"
)

// Reference values in this file were verified against scipy
// (scipy.stats.norm, scipy.stats.chi2) on the same inputs.

func TestGoldStandard_WilsonSmallCellExample(t *testing.T) {
	// x=5 is the canonical imputed value for a suppressed cell.
	lo, hi, err := WilsonInterval(5, 1000, 0.95)
	if err != nil {
		t.Fatalf("wilson: %v", err)
	}
	if math.Abs(lo-0.0021375) > 1e-4 {
		t.Fatalf("expected lo close to 0.0022, got %.6f", lo)
	}
	if math.Abs(hi-0.0116510) > 1e-4 {
		t.Fatalf("expected hi close to 0.0116, got %.6f", hi)
	}
}

func TestGoldStandard_ZTestSmallCellExample(t *testing.T) {
	z, p, err := ZTestProportion(5, 1000, 0.01)
	if err != nil {
		t.Fatalf("ztest: %v", err)
	}
	if math.Abs(z-(-1.5891)) > 0.01 {
		t.Fatalf("expected z close to -1.589, got %.4f", z)
	}
	if math.Abs(p-0.1121) > 0.005 {
		t.Fatalf("expected p close to 0.112, got %.4f", p)
	}
}

func TestGoldStandard_ChiSquare2x2(t *testing.T) {
	// Pearson statistic without continuity correction: expected counts are
	// [[40,40],[30,30]], giving 2*(100/40) + 2*(100/30) = 35/3.
	res, err := ChiSquareIndependence([][]int{{50, 30}, {20, 40}})
	if err != nil {
		t.Fatalf("chi-square: %v", err)
	}
	if math.Abs(res.Statistic-11.6667) > 1e-3 {
		t.Fatalf("expected statistic 11.667, got %.4f", res.Statistic)
	}
	if res.Dof != 1 {
		t.Fatalf("expected dof 1, got %d", res.Dof)
	}
	if math.Abs(res.PValue-0.000637) > 1e-4 {
		t.Fatalf("expected p close to 0.00064, got %.6f", res.PValue)
	}
	if res.PValue >= 0.05 {
		t.Fatalf("expected significant association, got p=%.4f", res.PValue)
	}
	if res.MinExpected != 30 {
		t.Fatalf("expected min expected count 30, got %.2f", res.MinExpected)
	}
}

func TestGoldStandard_ChiSquareNormalQuantileRoundTrip(t *testing.T) {
	// Wilson at 95% uses the 1.959964 critical value; a degenerate interval
	// check: x=n/2 keeps the interval centered near 0.5.
	lo, hi, err := WilsonInterval(500, 1000, 0.95)
	if err != nil {
		t.Fatalf("wilson: %v", err)
	}
	center := (lo + hi) / 2
	if math.Abs(center-0.5) > 1e-9 {
		t.Fatalf("expected interval centered on 0.5, got %.8f", center)
	}
}

func TestGoldStandard_ImputeSentinel(t *testing.T) {
	got, err := Impute(study.NewRawCell(study.SuppressionSentinel))
	if err != nil {
		t.Fatalf("impute sentinel: %v", err)
	}
	if got != 5 {
		t.Fatalf("expected sentinel to impute to 5, got %d", got)
	}
}
