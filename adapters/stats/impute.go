// Package stats implements the statistical core of the pipeline: small-cell
// imputation, Wilson score intervals, one-proportion z-tests, and Pearson
// chi-square independence tests. Every function here is pure, holds no state
// across calls, and fails fast on violated preconditions.
package stats

import (
	"strconv"
	"strings"

	"tnatlas/domain/core"
	"tnatlas/domain/study"
)

// ImputedValue is the substitute for suppressed cells: the midpoint of the
// suppressed range 1-10, rounded down. Documented per research protocol.
const ImputedValue = 5

// Impute maps a raw extract cell to a numeric count. The suppression
// sentinel becomes ImputedValue; a plain non-negative integer passes through
// unchanged (a true 0 is 0, never treated as suppressed). Anything else is
// an ambiguous cell and is surfaced as an error rather than collapsed.
func Impute(cell study.RawCell) (int, error) {
	return ImputeAs(cell, ImputedValue)
}

// ImputeAs is Impute with a caller-chosen substitution value.
func ImputeAs(cell study.RawCell, imputed int) (int, error) {
	if cell.Suppressed {
		return imputed, nil
	}
	v := strings.ReplaceAll(strings.TrimSpace(cell.Value), ",", "")
	if v == "" {
		return 0, core.NewAmbiguousCellError(cell.Value)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, core.NewAmbiguousCellError(cell.Value)
	}
	if n < 0 {
		return 0, core.NewDomainError("count must be non-negative, got %d", n)
	}
	return n, nil
}
