// Package server exposes the job submission and observation HTTP API.
package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/store"
)

// RunFunc executes one job to a terminal state.
type RunFunc func(ctx context.Context, jobID string) error

// Server routes job API requests to the store and the pipeline runner.
type Server struct {
	store store.Store
	run   RunFunc
}

// New builds the chi router for the job API. Submitted jobs run
// asynchronously via runFn; the job record is the progress surface.
func New(st store.Store, runFn RunFunc, corsOrigins []string) http.Handler {
	s := &Server{store: st, run: runFn}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if len(corsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))
	}

	r.Get("/health", s.handleHealth)
	r.Post("/jobs", s.handleCreateJob)
	r.Get("/jobs", s.handleListJobs)
	r.Get("/jobs/{jobID}", s.handleGetJob)
	r.Get("/jobs/{jobID}/leads", s.handleListLeads)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createJobRequest struct {
	Query          string   `json:"query"`
	Location       string   `json:"location"`
	MaxResults     int      `json:"max_results"`
	SourcesEnabled []string `json:"sources_enabled"`
	Vertical       string   `json:"vertical"`
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req createJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" || req.Location == "" {
		writeError(w, http.StatusBadRequest, "query and location are required")
		return
	}

	job, err := s.store.CreateJob(r.Context(), model.JobParams{
		Query:          req.Query,
		Location:       req.Location,
		MaxResults:     req.MaxResults,
		SourcesEnabled: req.SourcesEnabled,
		Vertical:       req.Vertical,
	})
	if err != nil {
		zap.L().Error("creating job failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "creating job failed")
		return
	}

	// The request context dies with the response; the run gets its own.
	go func() {
		if err := s.run(context.Background(), job.ID); err != nil {
			zap.L().Error("job run failed",
				zap.String("job_id", job.ID), zap.Error(err))
		}
	}()

	writeJSON(w, http.StatusAccepted, job)
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	filter := store.JobFilter{
		Status: model.JobStatus(r.URL.Query().Get("status")),
	}
	jobs, err := s.store.ListJobs(r.Context(), filter)
	if err != nil {
		zap.L().Error("listing jobs failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "listing jobs failed")
		return
	}
	if jobs == nil {
		jobs = []model.Job{}
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.store.GetJob(r.Context(), chi.URLParam(r, "jobID"))
	if err != nil {
		if eris.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "job not found")
			return
		}
		zap.L().Error("loading job failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "loading job failed")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleListLeads(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	if _, err := s.store.GetJob(r.Context(), jobID); err != nil {
		if eris.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "job not found")
			return
		}
		zap.L().Error("loading job failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "loading job failed")
		return
	}

	leads, err := s.store.ListLeads(r.Context(), jobID)
	if err != nil {
		zap.L().Error("listing leads failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "listing leads failed")
		return
	}
	if leads == nil {
		leads = []model.Lead{}
	}
	writeJSON(w, http.StatusOK, leads)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("encoding response failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
