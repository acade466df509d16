// Package geo carries the U.S. Census geography used to pool state counts:
// the nine census divisions, state to division lookup, and 2024 population
// estimates for per capita rates.
package geo

import (
	"sort"

	"tnatlas/domain/core"
)

// Division is a Census-Bureau-defined grouping of states. Pooling counts at
// this level reduces small-cell suppression in the source extracts.
type Division string

const (
	NewEngland       Division = "New England"
	MiddleAtlantic   Division = "Middle Atlantic"
	EastNorthCentral Division = "East North Central"
	WestNorthCentral Division = "West North Central"
	SouthAtlantic    Division = "South Atlantic"
	EastSouthCentral Division = "East South Central"
	WestSouthCentral Division = "West South Central"
	Mountain         Division = "Mountain"
	Pacific          Division = "Pacific"
)

// Divisions lists all nine census divisions in census order.
var Divisions = []Division{
	NewEngland,
	MiddleAtlantic,
	EastNorthCentral,
	WestNorthCentral,
	SouthAtlantic,
	EastSouthCentral,
	WestSouthCentral,
	Mountain,
	Pacific,
}

// divisionStates maps each division to its member states.
var divisionStates = map[Division][]string{
	EastNorthCentral: {"Ohio", "Michigan", "Illinois", "Wisconsin", "Indiana"},
	WestNorthCentral: {"Minnesota", "Iowa", "Missouri", "Kansas", "Nebraska",
		"North Dakota", "South Dakota"},
	MiddleAtlantic: {"Pennsylvania", "New York", "New Jersey"},
	NewEngland: {"Massachusetts", "Connecticut", "Maine", "New Hampshire",
		"Rhode Island", "Vermont"},
	SouthAtlantic: {"Florida", "North Carolina", "Virginia", "South Carolina",
		"Georgia", "Maryland", "West Virginia", "Delaware",
		"District of Columbia"},
	EastSouthCentral: {"Kentucky", "Mississippi", "Tennessee", "Alabama"},
	WestSouthCentral: {"Texas", "Louisiana", "Arkansas", "Oklahoma"},
	Pacific:          {"California", "Oregon", "Washington", "Hawaii", "Alaska"},
	Mountain: {"Colorado", "Arizona", "Utah", "Idaho", "Nevada", "Montana",
		"New Mexico", "Wyoming"},
}

// stateToDivision is the reverse lookup, built once at init.
var stateToDivision = func() map[string]Division {
	m := make(map[string]Division)
	for div, states := range divisionStates {
		for _, s := range states {
			m[s] = div
		}
	}
	return m
}()

// DivisionOf returns the census division for a state name.
func DivisionOf(state string) (Division, error) {
	div, ok := stateToDivision[state]
	if !ok {
		return "", core.NewNotFoundError("census division for state", state)
	}
	return div, nil
}

// States returns the member states of a division, sorted alphabetically.
func (d Division) States() []string {
	states := append([]string(nil), divisionStates[d]...)
	sort.Strings(states)
	return states
}

// AllStates returns the 50 states plus the District of Columbia, sorted.
func AllStates() []string {
	states := make([]string, 0, len(stateToDivision))
	for s := range stateToDivision {
		states = append(states, s)
	}
	sort.Strings(states)
	return states
}

// MissingStates reports which states are absent from the given set.
func MissingStates(present map[string]bool) []string {
	var missing []string
	for _, s := range AllStates() {
		if !present[s] {
			missing = append(missing, s)
		}
	}
	return missing
}
