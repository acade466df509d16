// Package api exposes stored analysis runs over HTTP. The surface is
// read-only; runs are produced by the analyze pipeline, never through the
// API.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"tnatlas/domain/core"
	"tnatlas/domain/estimate"
	"tnatlas/internal"
	"tnatlas/internal/report"
	"tnatlas/ports"
)

// Server serves stored runs and their publication tables.
type Server struct {
	runs      ports.RunRepository
	assembler *report.Assembler
	logger    *internal.Logger
}

// NewServer creates the API server.
func NewServer(runs ports.RunRepository, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Server{
		runs:      runs,
		assembler: report.NewAssembler(),
		logger:    logger,
	}
}

// Router builds the route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/runs", s.handleListRuns)
		r.Route("/runs/{runID}", func(r chi.Router) {
			r.Get("/", s.handleGetRun)
			r.Get("/tables", s.handleListTables)
			r.Get("/tables/{name}", s.handleGetTable)
		})
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.runs.ListRuns(r.Context(), 50)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to list runs", err)
		return
	}
	if summaries == nil {
		summaries = []ports.RunSummary{}
	}
	s.writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	tables := s.assembler.Tables(run)
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.Name
	}
	s.writeJSON(w, http.StatusOK, names)
}

func (s *Server) handleGetTable(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	name := chi.URLParam(r, "name")
	for _, t := range s.assembler.Tables(run) {
		if t.Name == name {
			s.writeJSON(w, http.StatusOK, t)
			return
		}
	}
	s.writeError(w, http.StatusNotFound, "table not found", core.ErrTableNotFound)
}

func (s *Server) loadRun(w http.ResponseWriter, r *http.Request) (*estimate.Run, bool) {
	id, err := core.ParseRunID(chi.URLParam(r, "runID"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid run id", err)
		return nil, false
	}
	run, err := s.runs.GetRun(r.Context(), id)
	if err != nil {
		if errors.Is(err, core.ErrRunNotFound) {
			s.writeError(w, http.StatusNotFound, "run not found", err)
		} else {
			s.writeError(w, http.StatusInternalServerError, "failed to load run", err)
		}
		return nil, false
	}
	return run, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("%s: %v", message, err)
	}
	s.writeJSON(w, status, map[string]string{"error": message})
}
