package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"tnatlas/domain/core"
)

// ZTestProportion tests an observed proportion x/n against a reference
// proportion p0 with a two-tailed one-sample z-test. Returns the z statistic
// and the two-tailed p-value.
//
// p0 must lie strictly inside (0,1): at the endpoints the standard error is
// zero and the statistic is undefined, so the guard runs before any division.
func ZTestProportion(x, n int, p0 float64) (z, pValue float64, err error) {
	if n <= 0 {
		return 0, 0, core.NewDomainError("denominator must be positive, got %d", n)
	}
	if x < 0 || x > n {
		return 0, 0, core.NewDomainError("count %d outside [0, %d]", x, n)
	}
	if p0 <= 0 || p0 >= 1 {
		return 0, 0, core.NewDomainError("reference proportion %g outside (0,1)", p0)
	}

	pHat := float64(x) / float64(n)
	se := math.Sqrt(p0 * (1 - p0) / float64(n))
	z = (pHat - p0) / se
	pValue = 2 * distuv.UnitNormal.Survival(math.Abs(z))
	return z, pValue, nil
}
