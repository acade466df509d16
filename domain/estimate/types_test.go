package estimate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		z           float64
		pValue      float64
		significant bool
		direction   Direction
	}{
		{"significant above", 3.2, 0.001, true, DirectionAbove},
		{"significant below", -2.5, 0.012, true, DirectionBelow},
		{"not significant", 1.1, 0.27, false, DirectionNotDifferent},
		{"boundary p equals alpha", 2.0, Alpha, false, DirectionNotDifferent},
		{"just under alpha", 2.0, 0.0499, true, DirectionAbove},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			significant, direction := Classify(tt.z, tt.pValue)
			assert.Equal(t, tt.significant, significant)
			assert.Equal(t, tt.direction, direction)
		})
	}
}

func TestLowExpectedCounts(t *testing.T) {
	assert.True(t, ContingencyResult{MinExpected: 4.99}.LowExpectedCounts())
	assert.False(t, ContingencyResult{MinExpected: 5.0}.LowExpectedCounts())
	assert.False(t, ContingencyResult{MinExpected: 30}.LowExpectedCounts())
}
