package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMethodsReflectsRunParameters(t *testing.T) {
	run := fixtureRun()
	methods := NewManuscript().Methods(run)

	assert.Contains(t, methods, "# METHODS")
	assert.Contains(t, methods, "## Data Acquisition")
	assert.Contains(t, methods, "## Statistical Analysis")

	assert.Contains(t, methods, "Epic Cosmos")
	assert.Contains(t, methods, "trigeminal neuralgia")
	assert.Contains(t, methods, "G50.0")
	assert.Contains(t, methods, "N = 104,955")
	assert.Contains(t, methods, "Wilson score")
	assert.Contains(t, methods, "95% level")
	assert.Contains(t, methods, "p < 0.05")

	// The run carried one imputation and one failure; the prose counts them.
	assert.Contains(t, methods, "1 such substitutions")
	assert.Contains(t, methods, "1 stratum-level computations")
	assert.Contains(t, methods, "Alaska was excluded")
}

func TestMethodsOmitsFailureNoteWhenClean(t *testing.T) {
	run := fixtureRun()
	run.Failures = nil
	methods := NewManuscript().Methods(run)
	assert.NotContains(t, methods, "stratum-level computations")
}

func TestRenderHTML(t *testing.T) {
	run := fixtureRun()
	m := NewManuscript()
	out := string(m.RenderHTML(m.Methods(run)))

	require.NotEmpty(t, out)
	assert.True(t, strings.Contains(out, "<h1") || strings.Contains(out, "<h1>"))
	assert.Contains(t, out, "Statistical Analysis")
}
