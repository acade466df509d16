package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"tnatlas/domain/core"
)

// WilsonInterval computes the Wilson score confidence interval for a
// binomial proportion. Unlike the Wald interval it behaves sensibly near 0
// and 1, which matters here because procedure rates sit well under 2%.
//
// The interval is mathematically a subset of [0,1]; the clamp below only
// guards floating-point edge cases at extreme p-hat with small n.
func WilsonInterval(x, n int, confidence float64) (lo, hi float64, err error) {
	if n <= 0 {
		return 0, 0, core.NewDomainError("denominator must be positive, got %d", n)
	}
	if x < 0 || x > n {
		return 0, 0, core.NewDomainError("count %d outside [0, %d]", x, n)
	}
	if confidence <= 0 || confidence >= 1 {
		return 0, 0, core.NewDomainError("confidence level %g outside (0,1)", confidence)
	}

	pHat := float64(x) / float64(n)
	nf := float64(n)
	z := distuv.UnitNormal.Quantile(1 - (1-confidence)/2)
	z2 := z * z

	denom := 1 + z2/nf
	center := (pHat + z2/(2*nf)) / denom
	margin := z * math.Sqrt((pHat*(1-pHat)+z2/(4*nf))/nf) / denom

	lo = math.Max(0, center-margin)
	hi = math.Min(1, center+margin)
	return lo, hi, nil
}
