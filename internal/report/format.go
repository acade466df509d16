package report

import (
	"fmt"
	"strconv"
	"strings"
)

// NA is the visible marker substituted for failed per-stratum computations.
const NA = "N/A"

// FormatPValue renders a p-value to 3 decimals, or "<0.001" below that
// resolution. This is the journal's presentation policy.
func FormatPValue(p float64) string {
	if p < 0.001 {
		return "<0.001"
	}
	return strconv.FormatFloat(p, 'f', 3, 64)
}

// FormatPercent renders a proportion as a percentage with the given number
// of decimals. Medications report 1 decimal, procedures 2 (their rates sit
// under 2%).
func FormatPercent(proportion float64, decimals int) string {
	return strconv.FormatFloat(proportion*100, 'f', decimals, 64)
}

// FormatCI renders a confidence interval as "(lo-hi)" in percent.
func FormatCI(lo, hi float64, decimals int) string {
	return fmt.Sprintf("(%s-%s)", FormatPercent(lo, decimals), FormatPercent(hi, decimals))
}

// FormatCount renders an integer with thousands separators.
func FormatCount(n int) string {
	return groupDigits(strconv.Itoa(n))
}

// FormatCount64 renders an int64 with thousands separators.
func FormatCount64(n int64) string {
	return groupDigits(strconv.FormatInt(n, 10))
}

func groupDigits(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, ch := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(ch)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// FormatRate renders a per-100k rate to 1 decimal.
func FormatRate(per100k float64) string {
	return strconv.FormatFloat(per100k, 'f', 1, 64)
}

// SignificanceLabel renders the test verdict for the chi-square table.
func SignificanceLabel(significant bool) string {
	if significant {
		return "Significant"
	}
	return "Not Significant"
}
