// Package testkit generates synthetic state extracts for tests and local
// development. Counts are drawn per state in rough proportion to population
// so the synthetic data exercises the same small-cell suppression paths as
// a real extract.
package testkit

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"strconv"

	"tnatlas/domain/geo"
	"tnatlas/domain/study"
)

// ExtractConfig configures the synthetic extract generator.
type ExtractConfig struct {
	PatientsPer100k float64 `json:"patients_per_100k"`
	SuppressBelow   int     `json:"suppress_below"`
	Seed            int64   `json:"seed"`
}

// DefaultExtractConfig returns rates in the ballpark of the source study.
func DefaultExtractConfig() ExtractConfig {
	return ExtractConfig{
		PatientsPer100k: 30.0,
		SuppressBelow:   11,
		Seed:            42,
	}
}

// ExtractGenerator produces synthetic cleaned extracts.
type ExtractGenerator struct {
	config ExtractConfig
	rng    *rand.Rand
}

// NewExtractGenerator creates a generator with the given configuration.
func NewExtractGenerator(config ExtractConfig) *ExtractGenerator {
	return &ExtractGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// categoryShares approximates the national utilization mix. Shares need not
// sum to one; categories are not mutually exclusive in the source data.
var categoryShares = map[study.Category]float64{
	study.CarbamazepineOxcarbazepine: 0.37,
	study.Gabapentin:                 0.33,
	study.Pregabalin:                 0.08,
	study.Baclofen:                   0.07,
	study.Lamotrigine:                0.05,
	study.OnabotulinumtoxinA:         0.02,
	study.MVD:                        0.012,
	study.SRS:                        0.004,
	study.Rhizotomy:                  0.006,
	study.GlycerolRhizotomy:          0.001,
	study.BotoxInjection:             0.015,
}

// WriteMedicationsCSV writes a synthetic medications extract.
func (g *ExtractGenerator) WriteMedicationsCSV(w io.Writer) error {
	return g.writeExtract(w, study.CategoryKeys(study.Medications))
}

// WriteProceduresCSV writes a synthetic procedures extract.
func (g *ExtractGenerator) WriteProceduresCSV(w io.Writer) error {
	return g.writeExtract(w, study.CategoryKeys(study.Procedures))
}

func (g *ExtractGenerator) writeExtract(w io.Writer, categories []study.Category) error {
	cw := csv.NewWriter(w)

	header := []string{"state", "total"}
	for _, cat := range categories {
		header = append(header, string(cat))
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write extract header: %w", err)
	}

	for _, state := range geo.AllStates() {
		row, err := g.stateRow(state, categories)
		if err != nil {
			return err
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row for %s: %w", state, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func (g *ExtractGenerator) stateRow(state string, categories []study.Category) ([]string, error) {
	pop, err := geo.Population(state)
	if err != nil {
		return nil, err
	}
	total := g.jitteredCount(float64(pop) / 100_000.0 * g.config.PatientsPer100k)
	if total < 1 {
		total = 1
	}

	row := []string{state, strconv.Itoa(total)}
	for _, cat := range categories {
		share, ok := categoryShares[cat]
		if !ok {
			share = 0.01
		}
		count := g.jitteredCount(float64(total) * share)
		if count > total {
			count = total
		}
		row = append(row, g.renderCell(count))
	}
	return row, nil
}

// jitteredCount perturbs an expected count by up to 20 percent either way.
func (g *ExtractGenerator) jitteredCount(expected float64) int {
	jitter := 0.8 + g.rng.Float64()*0.4
	return int(expected * jitter)
}

// renderCell applies the privacy suppression rule the source platform
// applies: small counts are replaced by the sentinel.
func (g *ExtractGenerator) renderCell(count int) string {
	if count < g.config.SuppressBelow {
		return study.SuppressionSentinel
	}
	return strconv.Itoa(count)
}
