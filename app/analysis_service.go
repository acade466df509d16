// Package app orchestrates the analysis pipeline: imputed datasets in,
// immutable run out, report artifacts written from the run.
package app

import (
	"context"
	"fmt"
	"sort"

	mstats "github.com/montanaflynn/stats"

	"tnatlas/adapters/csvdata"
	"tnatlas/adapters/stats"
	"tnatlas/domain/core"
	"tnatlas/domain/estimate"
	"tnatlas/domain/geo"
	"tnatlas/domain/study"
	"tnatlas/internal"
)

// AnalysisService computes one complete analysis run from parsed extracts.
// The statistical layer is pure and synchronous; this service owns the
// per-stratum failure policy: a failed computation is logged, recorded, and
// replaced by N/A downstream, never aborting the run.
type AnalysisService struct {
	confidence float64
	logger     *internal.Logger
}

// NewAnalysisService creates the service with the given confidence level
// for interval estimates.
func NewAnalysisService(confidence float64, logger *internal.Logger) *AnalysisService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &AnalysisService{confidence: confidence, logger: logger}
}

// AnalyzeRequest carries the two parsed extracts of a run.
type AnalyzeRequest struct {
	Medications *csvdata.Dataset
	Procedures  *csvdata.Dataset
}

// Analyze runs the full pipeline over the extracts.
func (s *AnalysisService) Analyze(ctx context.Context, req AnalyzeRequest) (*estimate.Run, error) {
	if req.Medications == nil || len(req.Medications.Strata) == 0 {
		return nil, core.ErrInsufficientData
	}
	if req.Procedures == nil || len(req.Procedures.Strata) == 0 {
		return nil, core.ErrInsufficientData
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	run := &estimate.Run{
		ID:        core.RunID(core.NewID()),
		Condition: study.TrigeminalNeuralgia,
		Window:    study.DefaultWindow(),
		CreatedAt: core.Now(),
	}
	run.Imputations = append(run.Imputations, req.Medications.Imputations...)
	run.Imputations = append(run.Imputations, req.Procedures.Imputations...)
	run.Failures = append(run.Failures, req.Medications.Failures...)
	run.Failures = append(run.Failures, req.Procedures.Failures...)

	// The cohort denominator is the pooled medications total; the source
	// extracts report every diagnosed patient there.
	run.TotalPatients = pooledTotal(req.Medications.Strata)
	s.logger.Info("analysis run %s: %d patients across %d strata",
		run.ID, run.TotalPatients, len(req.Medications.Strata))

	s.nationalEstimates(run, req)
	run.RegionalMeds = regionalRates(req.Medications)
	run.RegionalProcs = regionalRates(req.Procedures)
	s.stateComparisons(run, req.Medications, study.CarbamazepineOxcarbazepine)
	s.stateComparisons(run, req.Procedures, study.MVD)
	s.contingencyTests(run, req)
	s.perCapitaRates(run, req.Medications)

	present := make(map[string]bool, len(req.Medications.Strata))
	for _, st := range req.Medications.Strata {
		present[st.State] = true
	}
	run.MissingStates = geo.MissingStates(present)
	if len(run.MissingStates) > 0 {
		s.logger.Warn("extract is missing %d states: %v", len(run.MissingStates), run.MissingStates)
	}

	return run, nil
}

// nationalEstimates pools every stratum and computes a Wilson interval per
// catalog category. Both medication and procedure rates use the cohort
// denominator, matching the source study's national utilization table.
func (s *AnalysisService) nationalEstimates(run *estimate.Run, req AnalyzeRequest) {
	for _, info := range study.Medications {
		s.addNationalEstimate(run, req.Medications.Strata, info.Key)
	}
	for _, info := range study.Procedures {
		s.addNationalEstimate(run, req.Procedures.Strata, info.Key)
	}
}

func (s *AnalysisService) addNationalEstimate(run *estimate.Run, strata []study.Stratum, cat study.Category) {
	x, imputed, seen := pooledCount(strata, cat)
	if !seen {
		return
	}
	lo, hi, err := stats.WilsonInterval(x, run.TotalPatients, s.confidence)
	if err != nil {
		s.recordFailure(run, "National", cat, err)
		return
	}
	run.National = append(run.National, estimate.ProportionEstimate{
		Category:   cat,
		X:          x,
		N:          run.TotalPatients,
		PHat:       float64(x) / float64(run.TotalPatients),
		Lo:         lo,
		Hi:         hi,
		Confidence: s.confidence,
		Imputed:    imputed,
	})
}

// stateComparisons tests each state's rate for a headline category against
// the pooled national rate, excluding states held out for tiny denominators
// (the national rate is pooled over the same retained states).
func (s *AnalysisService) stateComparisons(run *estimate.Run, ds *csvdata.Dataset, cat study.Category) {
	var refX, refN int
	for _, st := range ds.Strata {
		if study.IsExcludedState(st.State) {
			continue
		}
		if obs, ok := st.Observation(cat); ok {
			refX += obs.Count
			refN += st.Total
		}
	}
	if refN == 0 || refX == 0 || refX == refN {
		s.recordFailure(run, "National", cat, core.NewDomainError("degenerate national rate %d/%d", refX, refN))
		return
	}
	reference := float64(refX) / float64(refN)

	for _, st := range ds.Strata {
		if study.IsExcludedState(st.State) {
			continue
		}
		obs, ok := st.Observation(cat)
		if !ok {
			continue
		}
		z, p, err := stats.ZTestProportion(obs.Count, st.Total, reference)
		if err != nil {
			s.recordFailure(run, st.State, cat, err)
			continue
		}
		lo, hi, err := stats.WilsonInterval(obs.Count, st.Total, s.confidence)
		if err != nil {
			s.recordFailure(run, st.State, cat, err)
			continue
		}
		significant, direction := estimate.Classify(z, p)
		run.Comparisons = append(run.Comparisons, estimate.ComparisonResult{
			State:    st.State,
			Category: cat,
			Estimate: estimate.ProportionEstimate{
				Category:   cat,
				X:          obs.Count,
				N:          st.Total,
				PHat:       float64(obs.Count) / float64(st.Total),
				Lo:         lo,
				Hi:         hi,
				Confidence: s.confidence,
				Imputed:    obs.Imputed,
			},
			Reference:   reference,
			Z:           z,
			PValue:      p,
			Significant: significant,
			Direction:   direction,
		})
	}
}

// contingencyTests cross-tabulates census division against treatment
// category and tests independence, once for medications and once for
// procedures.
func (s *AnalysisService) contingencyTests(run *estimate.Run, req AnalyzeRequest) {
	medCols := []study.Category{
		study.CarbamazepineOxcarbazepine, study.Gabapentin,
		study.Pregabalin, study.Baclofen, study.Lamotrigine,
	}
	procCols := []study.Category{study.MVD, study.SRS, study.Rhizotomy, study.BotoxInjection}

	s.addContingencyTest(run, "Medication Preferences by Region", req.Medications, medCols)
	s.addContingencyTest(run, "Surgical Preferences by Region", req.Procedures, procCols)
}

func (s *AnalysisService) addContingencyTest(run *estimate.Run, label string, ds *csvdata.Dataset, cols []study.Category) {
	table := contingencyTable(ds, cols)
	res, err := stats.ChiSquareIndependence(table)
	if err != nil {
		s.logger.Warn("%s: chi-square skipped: %v", label, err)
		run.Failures = append(run.Failures, estimate.StratumFailure{
			State:  "census divisions",
			Reason: fmt.Sprintf("%s: %v", label, err),
		})
		return
	}
	run.Contingency = append(run.Contingency, estimate.ContingencyResult{
		Label:       label,
		Statistic:   res.Statistic,
		PValue:      res.PValue,
		Dof:         res.Dof,
		MinExpected: res.MinExpected,
		Significant: res.PValue < estimate.Alpha,
	})
}

// perCapitaRates converts stratum totals into per-100k diagnosis rates and
// summarizes their distribution.
func (s *AnalysisService) perCapitaRates(run *estimate.Run, ds *csvdata.Dataset) {
	var values []float64
	for _, st := range ds.Strata {
		pop, err := geo.Population(st.State)
		if err != nil {
			s.recordFailure(run, st.State, "", err)
			continue
		}
		rate, err := geo.PerCapita(st.Total, pop)
		if err != nil {
			s.recordFailure(run, st.State, "", err)
			continue
		}
		abbrev, _ := geo.Abbrev(st.State)
		run.PerCapita = append(run.PerCapita, estimate.PerCapitaRate{
			State:      st.State,
			Abbrev:     abbrev,
			Patients:   st.Total,
			Population: pop,
			Per100k:    rate,
		})
		values = append(values, rate)
	}
	if len(values) == 0 {
		return
	}
	mean, _ := mstats.Mean(values)
	median, _ := mstats.Median(values)
	min, _ := mstats.Min(values)
	max, _ := mstats.Max(values)
	run.RateSummary = estimate.RateSummary{Mean: mean, Median: median, Min: min, Max: max}
}

func (s *AnalysisService) recordFailure(run *estimate.Run, state string, cat study.Category, err error) {
	s.logger.Warn("stratum %s, category %s: %v", state, cat, err)
	run.Failures = append(run.Failures, estimate.StratumFailure{
		State:    state,
		Category: cat,
		Reason:   err.Error(),
	})
}

// pooledTotal sums stratum denominators.
func pooledTotal(strata []study.Stratum) int {
	var total int
	for _, st := range strata {
		total += st.Total
	}
	return total
}

// pooledCount sums one category across strata; imputed is true if any
// contributing cell was imputed.
func pooledCount(strata []study.Stratum, cat study.Category) (x int, imputed, seen bool) {
	for _, st := range strata {
		if obs, ok := st.Observation(cat); ok {
			x += obs.Count
			imputed = imputed || obs.Imputed
			seen = true
		}
	}
	return x, imputed, seen
}

// regionalRates pools strata by census division.
func regionalRates(ds *csvdata.Dataset) []estimate.RegionalRate {
	totals := map[geo.Division]int{}
	counts := map[geo.Division]map[study.Category]int{}
	for _, st := range ds.Strata {
		totals[st.Division] += st.Total
		if counts[st.Division] == nil {
			counts[st.Division] = map[study.Category]int{}
		}
		for cat, obs := range st.Observations {
			counts[st.Division][cat] += obs.Count
		}
	}

	var regions []estimate.RegionalRate
	for _, div := range geo.Divisions {
		patients, ok := totals[div]
		if !ok || patients == 0 {
			continue
		}
		rates := make(map[study.Category]float64, len(counts[div]))
		for cat, count := range counts[div] {
			rates[cat] = float64(count) / float64(patients)
		}
		regions = append(regions, estimate.RegionalRate{
			Division: div,
			Patients: patients,
			Rates:    rates,
		})
	}
	return regions
}

// contingencyTable builds the division x category count table, dropping
// divisions with no data so marginals stay positive only when real counts
// exist.
func contingencyTable(ds *csvdata.Dataset, cols []study.Category) [][]int {
	byDivision := map[geo.Division][]int{}
	for _, st := range ds.Strata {
		row, ok := byDivision[st.Division]
		if !ok {
			row = make([]int, len(cols))
		}
		for j, cat := range cols {
			if obs, hasObs := st.Observation(cat); hasObs {
				row[j] += obs.Count
			}
		}
		byDivision[st.Division] = row
	}

	divisions := make([]geo.Division, 0, len(byDivision))
	for div := range byDivision {
		divisions = append(divisions, div)
	}
	sort.Slice(divisions, func(i, j int) bool { return divisions[i] < divisions[j] })

	table := make([][]int, 0, len(divisions))
	for _, div := range divisions {
		table = append(table, byDivision[div])
	}
	return table
}
