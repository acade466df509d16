// Package estimate holds the derived statistical results of an analysis run.
// Values here are computed once per run and never mutated; recomputation
// replaces the whole value.
package estimate

import (
	"tnatlas/domain/core"
	"tnatlas/domain/geo"
	"tnatlas/domain/study"
)

// Alpha is the two-tailed significance threshold used throughout reporting.
const Alpha = 0.05

// DefaultConfidence is the confidence level for interval estimates.
const DefaultConfidence = 0.95

// ProportionEstimate is a binomial point estimate with its Wilson score
// confidence interval. Derived from one observation; immutable once computed.
type ProportionEstimate struct {
	Category   study.Category `json:"category"`
	X          int            `json:"x"`
	N          int            `json:"n"`
	PHat       float64        `json:"p_hat"`
	Lo         float64        `json:"ci_lo"`
	Hi         float64        `json:"ci_hi"`
	Confidence float64        `json:"confidence"`
	Imputed    bool           `json:"imputed"`
}

// Direction classifies a stratum rate against the reference rate.
type Direction string

const (
	DirectionAbove        Direction = "above"
	DirectionBelow        Direction = "below"
	DirectionNotDifferent Direction = "not_different"
)

// ComparisonResult pairs a stratum proportion against a national reference
// proportion via a two-tailed one-proportion z-test.
type ComparisonResult struct {
	State       string         `json:"state"`
	Category    study.Category `json:"category"`
	Estimate    ProportionEstimate `json:"estimate"`
	Reference   float64        `json:"reference"`
	Z           float64        `json:"z"`
	PValue      float64        `json:"p_value"`
	Significant bool           `json:"significant"`
	Direction   Direction      `json:"direction"`
}

// Classify derives significance and direction from a z-test result at the
// fixed reporting alpha.
func Classify(z, pValue float64) (bool, Direction) {
	if pValue >= Alpha {
		return false, DirectionNotDifferent
	}
	if z > 0 {
		return true, DirectionAbove
	}
	return true, DirectionBelow
}

// ContingencyResult summarizes a Pearson chi-square test of independence
// between treatment category and census division.
type ContingencyResult struct {
	Label       string  `json:"label"`
	Statistic   float64 `json:"statistic"`
	PValue      float64 `json:"p_value"`
	Dof         int     `json:"dof"`
	MinExpected float64 `json:"min_expected"`
	Significant bool    `json:"significant"`
}

// LowExpectedCounts reports whether any expected cell fell below the
// conventional chi-square validity floor of 5. The test is still reported;
// tables footnote the caveat.
func (r ContingencyResult) LowExpectedCounts() bool {
	return r.MinExpected < 5
}

// PerCapitaRate is a state diagnosis rate per 100,000 population.
type PerCapitaRate struct {
	State      string  `json:"state"`
	Abbrev     string  `json:"abbrev"`
	Patients   int     `json:"patients"`
	Population int64   `json:"population"`
	Per100k    float64 `json:"per_100k"`
}

// ImputationRecord documents one sentinel substitution so the run output
// stays auditable.
type ImputationRecord struct {
	State    string         `json:"state"`
	Category study.Category `json:"category"`
	Raw      string         `json:"raw"`
	Imputed  int            `json:"imputed"`
}

// StratumFailure records a per-stratum computation that was skipped rather
// than aborting the run; tables substitute an N/A marker for it.
type StratumFailure struct {
	State    string         `json:"state"`
	Category study.Category `json:"category"`
	Reason   string         `json:"reason"`
}

// RegionalRate aggregates one census division: pooled patient count and the
// utilization rate (as a proportion) per treatment category.
type RegionalRate struct {
	Division geo.Division               `json:"division"`
	Patients int                        `json:"patients"`
	Rates    map[study.Category]float64 `json:"rates"`
}

// RateSummary is a descriptive summary over the state per capita rates.
type RateSummary struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Run is the complete, immutable output of one analysis invocation.
type Run struct {
	ID            core.RunID           `json:"id"`
	Condition     study.Condition      `json:"condition"`
	Window        study.StudyWindow    `json:"window"`
	TotalPatients int                  `json:"total_patients"`
	National      []ProportionEstimate `json:"national"`
	RegionalMeds  []RegionalRate       `json:"regional_meds"`
	RegionalProcs []RegionalRate       `json:"regional_procs"`
	Comparisons   []ComparisonResult   `json:"comparisons"`
	Contingency   []ContingencyResult  `json:"contingency"`
	PerCapita     []PerCapitaRate      `json:"per_capita"`
	RateSummary   RateSummary          `json:"rate_summary"`
	Imputations   []ImputationRecord   `json:"imputations"`
	Failures      []StratumFailure     `json:"failures"`
	MissingStates []string             `json:"missing_states,omitempty"`
	CreatedAt     core.Timestamp       `json:"created_at"`
}
