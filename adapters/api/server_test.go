package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tnatlas/domain/core"
	"tnatlas/domain/estimate"
	"tnatlas/domain/study"
	"tnatlas/internal"
	"tnatlas/internal/report"
	"tnatlas/ports"
)

type memoryRunRepo struct {
	runs map[core.RunID]*estimate.Run
}

func newMemoryRunRepo() *memoryRunRepo {
	return &memoryRunRepo{runs: map[core.RunID]*estimate.Run{}}
}

func (m *memoryRunRepo) SaveRun(_ context.Context, run *estimate.Run) error {
	m.runs[run.ID] = run
	return nil
}

func (m *memoryRunRepo) GetRun(_ context.Context, id core.RunID) (*estimate.Run, error) {
	run, ok := m.runs[id]
	if !ok {
		return nil, fmt.Errorf("%w: run %s", core.ErrRunNotFound, id)
	}
	return run, nil
}

func (m *memoryRunRepo) ListRuns(_ context.Context, limit int) ([]ports.RunSummary, error) {
	var summaries []ports.RunSummary
	for _, run := range m.runs {
		summaries = append(summaries, ports.RunSummary{
			ID:            run.ID,
			Condition:     run.Condition.Name,
			TotalPatients: run.TotalPatients,
			StrataCount:   len(run.PerCapita),
			CreatedAt:     run.CreatedAt,
		})
	}
	return summaries, nil
}

func storedRun() *estimate.Run {
	return &estimate.Run{
		ID:            core.RunID(core.NewID()),
		Condition:     study.TrigeminalNeuralgia,
		Window:        study.DefaultWindow(),
		TotalPatients: 104955,
		National: []estimate.ProportionEstimate{
			{Category: study.CarbamazepineOxcarbazepine, X: 39000, N: 104955,
				PHat: 0.3716, Lo: 0.3687, Hi: 0.3745, Confidence: 0.95},
		},
		CreatedAt: core.Now(),
	}
}

func testServer(t *testing.T) (*Server, *memoryRunRepo) {
	t.Helper()
	repo := newMemoryRunRepo()
	return NewServer(repo, internal.NewLogger(internal.LogLevelError)), repo
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := testServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestListRunsEmpty(t *testing.T) {
	srv, _ := testServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestGetRun(t *testing.T) {
	srv, repo := testServer(t)
	run := storedRun()
	require.NoError(t, repo.SaveRun(context.Background(), run))

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs/"+run.ID.String(), nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got estimate.Run
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, 104955, got.TotalPatients)
}

func TestGetRunNotFound(t *testing.T) {
	srv, _ := testServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs/"+core.NewID().String(), nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListAndGetTables(t *testing.T) {
	srv, repo := testServer(t)
	run := storedRun()
	require.NoError(t, repo.SaveRun(context.Background(), run))

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs/"+run.ID.String()+"/tables", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var names []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &names))
	require.NotEmpty(t, names)

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs/"+run.ID.String()+"/tables/"+names[0], nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var table report.Table
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &table))
	assert.Equal(t, names[0], table.Name)
	assert.NotEmpty(t, table.Columns)

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs/"+run.ID.String()+"/tables/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
