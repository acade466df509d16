package csvdata

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tnatlas/domain/geo"
	"tnatlas/domain/study"
)

const medicationsCSV = `state,carbamazepine_oxcarbazepine,gabapentin,total
California,1200,1800,4000
Wyoming,10 or fewer,40,120
Atlantis,5,5,50
Texas,not reported,900,2500
`

func TestReader_ParsesCleanExtract(t *testing.T) {
	r := NewReader(5)
	ds, err := r.Read(strings.NewReader(medicationsCSV), study.KindMedication)
	require.NoError(t, err)

	require.Len(t, ds.Strata, 3, "Atlantis row should fail, the rest parse")
	assert.Equal(t, []study.Category{"carbamazepine_oxcarbazepine", "gabapentin"}, ds.Categories)

	ca := ds.Strata[0]
	assert.Equal(t, "California", ca.State)
	assert.Equal(t, geo.Pacific, ca.Division)
	assert.Equal(t, 4000, ca.Total)
	obs, ok := ca.Observation(study.CarbamazepineOxcarbazepine)
	require.True(t, ok)
	assert.Equal(t, 1200, obs.Count)
	assert.False(t, obs.Imputed)
}

func TestReader_ImputesSentinelWithAudit(t *testing.T) {
	r := NewReader(5)
	ds, err := r.Read(strings.NewReader(medicationsCSV), study.KindMedication)
	require.NoError(t, err)

	var wy study.Stratum
	for _, s := range ds.Strata {
		if s.State == "Wyoming" {
			wy = s
		}
	}
	obs, ok := wy.Observation(study.CarbamazepineOxcarbazepine)
	require.True(t, ok)
	assert.Equal(t, 5, obs.Count)
	assert.True(t, obs.Imputed)

	require.Len(t, ds.Imputations, 1)
	assert.Equal(t, "Wyoming", ds.Imputations[0].State)
	assert.Equal(t, study.CarbamazepineOxcarbazepine, ds.Imputations[0].Category)
	assert.Equal(t, 5, ds.Imputations[0].Imputed)
}

func TestReader_RecordsPerStratumFailures(t *testing.T) {
	r := NewReader(5)
	ds, err := r.Read(strings.NewReader(medicationsCSV), study.KindMedication)
	require.NoError(t, err)

	var reasons []string
	for _, f := range ds.Failures {
		reasons = append(reasons, f.State+": "+f.Reason)
	}
	// Atlantis is not a census state; the Texas carbamazepine cell is
	// ambiguous but the rest of the Texas row survives.
	assert.Len(t, ds.Failures, 2, "failures: %v", reasons)

	var txFound bool
	for _, s := range ds.Strata {
		if s.State == "Texas" {
			txFound = true
			_, hasCarb := s.Observation(study.CarbamazepineOxcarbazepine)
			assert.False(t, hasCarb, "ambiguous cell must not produce an observation")
			obs, hasGaba := s.Observation(study.Gabapentin)
			require.True(t, hasGaba)
			assert.Equal(t, 900, obs.Count)
		}
	}
	assert.True(t, txFound)
}

func TestReader_CustomImputeValue(t *testing.T) {
	r := NewReader(3)
	ds, err := r.Read(strings.NewReader(medicationsCSV), study.KindMedication)
	require.NoError(t, err)
	require.Len(t, ds.Imputations, 1)
	assert.Equal(t, 3, ds.Imputations[0].Imputed)
}

func TestReader_MissingColumns(t *testing.T) {
	r := NewReader(5)

	_, err := r.Read(strings.NewReader("state,foo\nOhio,1\n"), study.KindMedication)
	assert.Error(t, err, "no total column")

	_, err = r.Read(strings.NewReader("foo,total\n1,2\n"), study.KindMedication)
	assert.Error(t, err, "no state column")
}

func TestNormalizeColumn(t *testing.T) {
	cases := map[string]string{
		"State of Residence":          "state_of_residence",
		"Carbamazepine/Oxcarbazepine": "carbamazepine_oxcarbazepine",
		"  Total ":                    "total",
		"MVD (61458)":                 "mvd_61458",
	}
	for in, want := range cases {
		assert.Equal(t, want, normalizeColumn(in), "input %q", in)
	}
}
