package geo

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tnatlas/domain/core"
)

func TestDivisionOf(t *testing.T) {
	tests := []struct {
		state    string
		division Division
	}{
		{"California", Pacific},
		{"Alaska", Pacific},
		{"Texas", WestSouthCentral},
		{"New York", MiddleAtlantic},
		{"District of Columbia", SouthAtlantic},
		{"Wyoming", Mountain},
	}
	for _, tt := range tests {
		div, err := DivisionOf(tt.state)
		require.NoError(t, err, tt.state)
		assert.Equal(t, tt.division, div)
	}

	_, err := DivisionOf("Atlantis")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestAllStatesCoversEveryJurisdiction(t *testing.T) {
	states := AllStates()
	assert.Len(t, states, 51)
	assert.True(t, sort.StringsAreSorted(states))

	total := 0
	for _, div := range Divisions {
		total += len(div.States())
	}
	assert.Equal(t, 51, total)
}

func TestMissingStates(t *testing.T) {
	present := map[string]bool{}
	for _, s := range AllStates() {
		present[s] = true
	}
	assert.Empty(t, MissingStates(present))

	delete(present, "Vermont")
	delete(present, "Hawaii")
	assert.ElementsMatch(t, []string{"Vermont", "Hawaii"}, MissingStates(present))
}

func TestPopulationLookup(t *testing.T) {
	pop, err := Population("California")
	require.NoError(t, err)
	assert.Greater(t, pop, int64(30_000_000))

	abbrev, err := Abbrev("District of Columbia")
	require.NoError(t, err)
	assert.Equal(t, "DC", abbrev)

	_, err = Population("Atlantis")
	assert.Error(t, err)
}

func TestPerCapita(t *testing.T) {
	rate, err := PerCapita(300, 1_000_000)
	require.NoError(t, err)
	assert.InDelta(t, 30.0, rate, 1e-9)

	_, err = PerCapita(300, 0)
	assert.Error(t, err)
}
