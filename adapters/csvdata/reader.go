// Package csvdata reads cleaned state-level count extracts. The cleaning
// stage upstream emits tidy CSVs: one row per state, one column per
// treatment category, a state column and a total column. Cells may still
// carry the suppression sentinel; imputation happens here, against the core
// rule, so every substitution is recorded.
package csvdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"tnatlas/adapters/stats"
	"tnatlas/domain/estimate"
	"tnatlas/domain/geo"
	"tnatlas/domain/study"
	"tnatlas/internal/errors"
)

// Dataset is one parsed extract: validated strata plus the audit trail of
// sentinel substitutions and any strata that failed to parse.
type Dataset struct {
	Kind        study.CategoryKind
	Categories  []study.Category
	Strata      []study.Stratum
	Imputations []estimate.ImputationRecord
	Failures    []estimate.StratumFailure
}

// Reader parses cleaned extract CSVs.
type Reader struct {
	imputeValue int
	window      study.StudyWindow
}

// NewReader creates a reader with the given imputation value.
func NewReader(imputeValue int) *Reader {
	return &Reader{imputeValue: imputeValue, window: study.DefaultWindow()}
}

// ReadFile opens and parses a cleaned extract file.
func (r *Reader) ReadFile(path string, kind study.CategoryKind) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.IOError(fmt.Sprintf("open extract %s", path), err)
	}
	defer f.Close()
	return r.Read(f, kind)
}

// Read parses a cleaned extract from a stream.
func (r *Reader) Read(src io.Reader, kind study.CategoryKind) (*Dataset, error) {
	cr := csv.NewReader(src)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, errors.IOError("read extract header", err)
	}

	stateCol, totalCol := -1, -1
	catCols := map[int]study.Category{}
	var categories []study.Category
	for i, col := range header {
		name := normalizeColumn(col)
		switch name {
		case "state", "state_of_residence":
			stateCol = i
		case "total":
			totalCol = i
		case "census_region", "state_abbrev", "population":
			// Derived columns the cleaning stage may carry; recomputed here.
		default:
			cat := study.Category(name)
			catCols[i] = cat
			categories = append(categories, cat)
		}
	}
	if stateCol < 0 {
		return nil, errors.IOError("extract is missing a state column", nil)
	}
	if totalCol < 0 {
		return nil, errors.IOError("extract is missing a total column", nil)
	}
	if len(catCols) == 0 {
		return nil, errors.IOError("extract has no category columns", nil)
	}

	ds := &Dataset{Kind: kind, Categories: categories}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.IOError("read extract row", err)
		}
		r.parseRow(ds, record, stateCol, totalCol, catCols)
	}
	return ds, nil
}

// parseRow converts one CSV row into a stratum. Rows that cannot be parsed
// become failure records rather than aborting the whole extract.
func (r *Reader) parseRow(ds *Dataset, record []string, stateCol, totalCol int, catCols map[int]study.Category) {
	state := strings.TrimSpace(record[stateCol])
	if state == "" {
		return
	}

	division, err := geo.DivisionOf(state)
	if err != nil {
		ds.Failures = append(ds.Failures, estimate.StratumFailure{
			State:  state,
			Reason: fmt.Sprintf("unknown state: %v", err),
		})
		return
	}

	total, imputedTotal, err := r.imputeCell(state, "total", record[totalCol], ds)
	if err != nil {
		ds.Failures = append(ds.Failures, estimate.StratumFailure{
			State:  state,
			Reason: fmt.Sprintf("total column: %v", err),
		})
		return
	}

	stratum := study.Stratum{
		State:        state,
		Division:     division,
		Window:       r.window,
		Total:        total,
		Observations: make(map[study.Category]study.Observation, len(catCols)),
	}
	for col, cat := range catCols {
		raw := record[col]
		count, imputed, err := r.imputeCell(state, cat, raw, ds)
		if err != nil {
			ds.Failures = append(ds.Failures, estimate.StratumFailure{
				State:    state,
				Category: cat,
				Reason:   err.Error(),
			})
			continue
		}
		stratum.Observations[cat] = study.Observation{
			Count:       count,
			Denominator: total,
			Imputed:     imputed || imputedTotal,
		}
	}

	if err := stratum.Validate(); err != nil {
		ds.Failures = append(ds.Failures, estimate.StratumFailure{
			State:  state,
			Reason: err.Error(),
		})
		return
	}
	ds.Strata = append(ds.Strata, stratum)
}

func (r *Reader) imputeCell(state string, cat study.Category, raw string, ds *Dataset) (int, bool, error) {
	cell := study.NewRawCell(strings.TrimSpace(raw))
	count, err := stats.ImputeAs(cell, r.imputeValue)
	if err != nil {
		return 0, false, err
	}
	if cell.Suppressed {
		ds.Imputations = append(ds.Imputations, estimate.ImputationRecord{
			State:    state,
			Category: cat,
			Raw:      cell.Value,
			Imputed:  count,
		})
	}
	return count, cell.Suppressed, nil
}

// normalizeColumn lowercases and snake_cases a header the way the upstream
// cleaning stage does, so hand-edited extracts still line up.
func normalizeColumn(col string) string {
	s := strings.ToLower(strings.TrimSpace(col))
	for _, ch := range []string{" ", "-", "/"} {
		s = strings.ReplaceAll(s, ch, "_")
	}
	for _, ch := range []string{"(", ")", ",", "."} {
		s = strings.ReplaceAll(s, ch, "")
	}
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}
	return strings.Trim(s, "_")
}
