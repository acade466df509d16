package report

import (
	"fmt"
	"sort"
	"strconv"

	"tnatlas/domain/estimate"
	"tnatlas/domain/study"
)

// Assembler builds the publication tables for a run. A failed per-stratum
// computation never aborts assembly; it surfaces as an N/A cell.
type Assembler struct{}

// NewAssembler creates a table assembler.
func NewAssembler() *Assembler {
	return &Assembler{}
}

// Tables builds every publication table for the run, in journal order.
func (a *Assembler) Tables(run *estimate.Run) []Table {
	return []Table{
		a.CohortTable(run),
		a.PerCapitaTable(run),
		a.NationalUtilizationTable(run),
		a.RegionalRatesTable(run),
		a.ChiSquareTable(run),
		a.ComparisonTable(run),
		a.ImputationAuditTable(run),
	}
}

// CohortTable is Table 1: study cohort characteristics.
func (a *Assembler) CohortTable(run *estimate.Run) Table {
	t := Table{
		Name:    "table1_cohort_characteristics",
		Title:   "Study Cohort Characteristics",
		Caption: fmt.Sprintf("%s = %s", run.Condition.Abbreviation, run.Condition.Name),
		Columns: []string{"Characteristic", "N", "Percentage"},
	}

	t.AddRow(fmt.Sprintf("Total %s Patients", run.Condition.Abbreviation), FormatCount(run.TotalPatients), "100.0%")
	t.AddRow("")
	t.AddRow("Census Division")

	regions := append([]estimate.RegionalRate(nil), run.RegionalMeds...)
	sort.Slice(regions, func(i, j int) bool { return regions[i].Patients > regions[j].Patients })
	for _, reg := range regions {
		pct := NA
		if run.TotalPatients > 0 {
			pct = FormatPercent(float64(reg.Patients)/float64(run.TotalPatients), 1) + "%"
		}
		t.AddRow("  "+string(reg.Division), FormatCount(reg.Patients), pct)
	}

	t.AddRow("")
	t.AddRow("Study Period", fmt.Sprintf("%s - %s",
		run.Window.Start.Format("Jan 2, 2006"), run.Window.End.Format("Jan 2, 2006")))
	t.AddRow("Data Source", run.Condition.DataSource)
	t.AddRow("ICD-10 Code", fmt.Sprintf("%s (%s)", run.Condition.ICD10, run.Condition.Name))
	return t
}

// PerCapitaTable ranks states by diagnosis rate per 100,000 population.
func (a *Assembler) PerCapitaTable(run *estimate.Run) Table {
	t := Table{
		Name:  "table_per_capita_rates",
		Title: fmt.Sprintf("Per Capita %s Diagnosis Rates by State", run.Condition.Name),
		Caption: "Population data from 2024 US Census Bureau estimates. " +
			"Rates expressed per 100,000 population.",
		Columns: []string{"State", "Abbrev", "Patients", "Population", "Per 100,000"},
	}

	rates := append([]estimate.PerCapitaRate(nil), run.PerCapita...)
	sort.Slice(rates, func(i, j int) bool { return rates[i].Per100k > rates[j].Per100k })
	for _, r := range rates {
		t.AddRow(r.State, r.Abbrev, FormatCount(r.Patients), FormatCount64(r.Population), FormatRate(r.Per100k))
	}
	return t
}

// NationalUtilizationTable is the national treatment utilization table:
// pooled N, rate and Wilson CI per category, medications then procedures.
func (a *Assembler) NationalUtilizationTable(run *estimate.Run) Table {
	t := Table{
		Name:  "table2_national_utilization",
		Title: fmt.Sprintf("National Treatment Utilization in %s", run.Condition.Name),
		Caption: "CI = Confidence Interval; MVD = Microvascular Decompression; " +
			"SRS = Stereotactic Radiosurgery",
		Columns: []string{"Treatment", "N", "Rate (%)", "95% CI"},
	}

	byCategory := make(map[study.Category]estimate.ProportionEstimate, len(run.National))
	for _, est := range run.National {
		byCategory[est.Category] = est
	}

	t.AddRow("MEDICATIONS")
	for _, info := range study.Medications {
		a.addUtilizationRow(&t, byCategory, info, 1)
	}
	t.AddRow("")
	t.AddRow("PROCEDURES")
	for _, info := range study.Procedures {
		a.addUtilizationRow(&t, byCategory, info, 2)
	}
	return t
}

func (a *Assembler) addUtilizationRow(t *Table, byCategory map[study.Category]estimate.ProportionEstimate, info study.CategoryInfo, decimals int) {
	est, ok := byCategory[info.Key]
	if !ok {
		t.AddRow("  "+info.DisplayName, NA, NA, NA)
		return
	}
	t.AddRow(
		"  "+info.DisplayName,
		FormatCount(est.X),
		FormatPercent(est.PHat, decimals),
		FormatCI(est.Lo, est.Hi, decimals),
	)
}

// RegionalRatesTable is the treatment rates by census division table.
func (a *Assembler) RegionalRatesTable(run *estimate.Run) Table {
	medCols := []study.Category{
		study.CarbamazepineOxcarbazepine, study.Gabapentin,
		study.Pregabalin, study.Baclofen,
	}
	procCols := []study.Category{study.MVD, study.SRS, study.Rhizotomy}

	columns := []string{"Census Division", "N Patients"}
	shortNames := map[study.Category]string{
		study.CarbamazepineOxcarbazepine: "Carb/Oxcarb",
		study.Gabapentin:                 "Gabapentin",
		study.Pregabalin:                 "Pregabalin",
		study.Baclofen:                   "Baclofen",
		study.MVD:                        "MVD",
		study.SRS:                        "SRS",
		study.Rhizotomy:                  "Rhizotomy",
	}
	for _, cat := range medCols {
		columns = append(columns, shortNames[cat]+" (%)")
	}
	for _, cat := range procCols {
		columns = append(columns, shortNames[cat]+" (%)")
	}

	t := Table{
		Name:  "table3_regional_rates",
		Title: "Treatment Utilization Rates by U.S. Census Division",
		Caption: "Rates expressed as percentage of patients within each division. " +
			"Carb/Oxcarb = Carbamazepine/Oxcarbazepine; MVD = Microvascular Decompression; " +
			"SRS = Stereotactic Radiosurgery",
		Columns: columns,
	}

	procByDivision := make(map[string]estimate.RegionalRate, len(run.RegionalProcs))
	for _, reg := range run.RegionalProcs {
		procByDivision[string(reg.Division)] = reg
	}

	regions := append([]estimate.RegionalRate(nil), run.RegionalMeds...)
	sort.Slice(regions, func(i, j int) bool { return regions[i].Patients > regions[j].Patients })
	for _, reg := range regions {
		cells := []string{string(reg.Division), FormatCount(reg.Patients)}
		for _, cat := range medCols {
			cells = append(cells, rateCell(reg.Rates, cat, 1))
		}
		proc := procByDivision[string(reg.Division)]
		for _, cat := range procCols {
			cells = append(cells, rateCell(proc.Rates, cat, 2))
		}
		t.AddRow(cells...)
	}
	return t
}

func rateCell(rates map[study.Category]float64, cat study.Category, decimals int) string {
	rate, ok := rates[cat]
	if !ok {
		return NA
	}
	return FormatPercent(rate, decimals)
}

// ChiSquareTable summarizes the regional-variation independence tests.
func (a *Assembler) ChiSquareTable(run *estimate.Run) Table {
	t := Table{
		Name:  "table4_chisquare_tests",
		Title: "Chi-Square Tests for Regional Treatment Variation",
		Caption: "Chi-square tests assess whether treatment preferences vary significantly " +
			"across U.S. Census Divisions. Significance threshold: p < 0.05.",
		Columns: []string{"Test", "Chi-Square", "df", "P-value", "Result"},
	}
	var caveat bool
	for _, res := range run.Contingency {
		label := res.Label
		if res.LowExpectedCounts() {
			label += " *"
			caveat = true
		}
		t.AddRow(
			label,
			strconv.FormatFloat(res.Statistic, 'f', 1, 64),
			strconv.Itoa(res.Dof),
			FormatPValue(res.PValue),
			SignificanceLabel(res.Significant),
		)
	}
	if caveat {
		t.Caption += " * Expected cell count below 5; interpret with caution."
	}
	if len(run.Contingency) == 0 {
		t.AddRow(NA, NA, NA, NA, NA)
	}
	return t
}

// ComparisonTable lists per-state z-tests against the national rate for the
// headline categories (the data behind the original's significance-colored
// state charts).
func (a *Assembler) ComparisonTable(run *estimate.Run) Table {
	t := Table{
		Name:  "table_state_comparisons",
		Title: "State Utilization Rates vs National Average",
		Caption: "Two-tailed one-proportion z-tests against the pooled national rate. " +
			"States with unreliable denominators are excluded.",
		Columns: []string{"State", "Treatment", "Rate (%)", "National (%)", "Z", "P-value", "vs National"},
	}

	comparisons := append([]estimate.ComparisonResult(nil), run.Comparisons...)
	sort.Slice(comparisons, func(i, j int) bool {
		if comparisons[i].Category != comparisons[j].Category {
			return comparisons[i].Category < comparisons[j].Category
		}
		return comparisons[i].State < comparisons[j].State
	})
	for _, cmp := range comparisons {
		t.AddRow(
			cmp.State,
			cmp.Category.DisplayName(),
			FormatPercent(cmp.Estimate.PHat, 2),
			FormatPercent(cmp.Reference, 2),
			strconv.FormatFloat(cmp.Z, 'f', 2, 64),
			FormatPValue(cmp.PValue),
			directionLabel(cmp.Direction),
		)
	}
	for _, fail := range run.Failures {
		if fail.Category == "" {
			continue
		}
		t.AddRow(fail.State, fail.Category.DisplayName(), NA, NA, NA, NA, NA)
	}
	return t
}

func directionLabel(d estimate.Direction) string {
	switch d {
	case estimate.DirectionAbove:
		return "Above"
	case estimate.DirectionBelow:
		return "Below"
	default:
		return "Not Different"
	}
}

// ImputationAuditTable records every sentinel substitution made during the
// run, keeping the imputation policy auditable.
func (a *Assembler) ImputationAuditTable(run *estimate.Run) Table {
	t := Table{
		Name:  "table_imputation_audit",
		Title: "Small-Cell Imputation Audit",
		Caption: fmt.Sprintf("Suppressed cells (%q) imputed as the midpoint of the suppressed range.",
			study.SuppressionSentinel),
		Columns: []string{"State", "Category", "Raw Value", "Imputed Count"},
	}
	for _, rec := range run.Imputations {
		t.AddRow(rec.State, rec.Category.DisplayName(), rec.Raw, strconv.Itoa(rec.Imputed))
	}
	return t
}
