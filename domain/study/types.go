// Package study defines the vocabulary of the treatment-pattern study:
// raw extract cells, observations, strata, and the study window.
package study

import (
	"fmt"
	"time"

	"tnatlas/domain/core"
	"tnatlas/domain/geo"
)

// SuppressionSentinel is the literal value the source platform reports for
// privacy-protected cells in place of counts of 10 or fewer patients.
const SuppressionSentinel = "10 or fewer"

// RawCell is a single cell from a cleaned extract before imputation.
// Suppressed marks the cell as the privacy sentinel; Value holds the literal
// text otherwise.
type RawCell struct {
	Value      string `json:"value"`
	Suppressed bool   `json:"suppressed"`
}

// NewRawCell classifies a literal cell value. The sentinel match is exact;
// everything else is passed through for numeric parsing downstream.
func NewRawCell(value string) RawCell {
	return RawCell{
		Value:      value,
		Suppressed: value == SuppressionSentinel,
	}
}

// Observation is a count of patients meeting a treatment criterion over a
// stratum denominator. Imputed records whether Count came from the
// suppression sentinel, keeping the substitution auditable.
type Observation struct {
	Count       int  `json:"count"`
	Denominator int  `json:"denominator"`
	Imputed     bool `json:"imputed"`
}

// Validate enforces the observation invariant: 0 <= count <= n, n > 0.
func (o Observation) Validate() error {
	if o.Denominator <= 0 {
		return fmt.Errorf("%w: got %d", core.ErrZeroDenominator, o.Denominator)
	}
	if o.Count < 0 {
		return core.NewDomainError("count must be non-negative, got %d", o.Count)
	}
	if o.Count > o.Denominator {
		return fmt.Errorf("%w: %d > %d", core.ErrCountExceedsN, o.Count, o.Denominator)
	}
	return nil
}

// StudyWindow bounds the extract period.
type StudyWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// DefaultWindow is the three-year extract period of the source study.
func DefaultWindow() StudyWindow {
	return StudyWindow{
		Start: time.Date(2022, time.November, 28, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, time.November, 27, 0, 0, 0, 0, time.UTC),
	}
}

// Stratum is one geographic unit within the study window: a state with one
// observation per treatment category sharing a common denominator.
type Stratum struct {
	State        string                   `json:"state"`
	Division     geo.Division             `json:"division"`
	Window       StudyWindow              `json:"window"`
	Total        int                      `json:"total"`
	Observations map[Category]Observation `json:"observations"`
}

// Key returns a stable identifier for the stratum.
func (s Stratum) Key() core.StratumKey {
	return core.StratumKey(s.State)
}

// Validate checks the stratum geography and every observation it owns.
func (s Stratum) Validate() error {
	if _, err := geo.DivisionOf(s.State); err != nil {
		return fmt.Errorf("%w: %s", core.ErrUnknownState, s.State)
	}
	if s.Total <= 0 {
		return fmt.Errorf("%w: stratum %s total %d", core.ErrZeroDenominator, s.State, s.Total)
	}
	for cat, obs := range s.Observations {
		if err := obs.Validate(); err != nil {
			return fmt.Errorf("stratum %s, category %s: %w", s.State, cat, err)
		}
	}
	return nil
}

// Observation returns the observation for a category, if present.
func (s Stratum) Observation(cat Category) (Observation, bool) {
	obs, ok := s.Observations[cat]
	return obs, ok
}

// Condition describes the diagnosis the cohort was selected on.
type Condition struct {
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
	ICD10        string `json:"icd10"`
	DataSource   string `json:"data_source"`
}

// TrigeminalNeuralgia is the study condition of the source extracts.
var TrigeminalNeuralgia = Condition{
	Name:         "Trigeminal Neuralgia",
	Abbreviation: "TN",
	ICD10:        "G50.0",
	DataSource:   "Epic Cosmos",
}

// ExcludedStates lists states dropped from state-level comparisons because
// tiny denominators make their percentages unreliable. They stay in national
// and regional totals.
var ExcludedStates = []string{"Alaska"}

// IsExcludedState reports whether a state is held out of state-level comparisons.
func IsExcludedState(state string) bool {
	for _, s := range ExcludedStates {
		if s == state {
			return true
		}
	}
	return false
}
