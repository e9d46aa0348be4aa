// Package store persists jobs and their lead sets behind a driver-neutral
// interface with SQLite and PostgreSQL implementations.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/config"
	"github.com/sells-group/leadgen-cli/internal/model"
)

// ErrNotFound is returned when a job does not exist.
var ErrNotFound = eris.New("store: job not found")

// JobFilter specifies criteria for listing jobs.
type JobFilter struct {
	Status model.JobStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for the lead generation pipeline.
type Store interface {
	// Jobs
	CreateJob(ctx context.Context, params model.JobParams) (*model.Job, error)
	GetJob(ctx context.Context, jobID string) (*model.Job, error)
	SaveJob(ctx context.Context, job *model.Job) error
	ListJobs(ctx context.Context, filter JobFilter) ([]model.Job, error)

	// Leads. ReplaceLeads swaps a job's entire lead set atomically.
	ReplaceLeads(ctx context.Context, jobID string, leads []model.Lead) error
	ListLeads(ctx context.Context, jobID string) ([]model.Lead, error)
	CountLeads(ctx context.Context, jobID string) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open creates the store for the configured driver and runs migrations.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Store.Driver {
	case "", "sqlite":
		s, err = NewSQLite(cfg.Store.DatabaseURL)
	case "postgres":
		s, err = NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// jobState is the mutable run state persisted as one JSON document
// alongside the indexed columns.
type jobState struct {
	CurrentSource    string `json:"current_source,omitempty"`
	TotalSources     int    `json:"total_sources"`
	CompletedSources int    `json:"completed_sources"`
	ProgressPercent  int    `json:"progress_percent"`
	StatusMessage    string `json:"status_message,omitempty"`

	TotalRaw            int `json:"total_raw"`
	TotalAfterDedup     int `json:"total_after_dedup"`
	TotalEnriched       int `json:"total_enriched"`
	TotalVerifiedEmails int `json:"total_verified_emails"`
	TotalFinal          int `json:"total_final"`

	Errors []model.JobError `json:"errors,omitempty"`
}

func stateOf(j *model.Job) jobState {
	return jobState{
		CurrentSource:       j.CurrentSource,
		TotalSources:        j.TotalSources,
		CompletedSources:    j.CompletedSources,
		ProgressPercent:     j.ProgressPercent,
		StatusMessage:       j.StatusMessage,
		TotalRaw:            j.TotalRaw,
		TotalAfterDedup:     j.TotalAfterDedup,
		TotalEnriched:       j.TotalEnriched,
		TotalVerifiedEmails: j.TotalVerifiedEmails,
		TotalFinal:          j.TotalFinal,
		Errors:              j.Errors,
	}
}

func applyState(j *model.Job, s jobState) {
	j.CurrentSource = s.CurrentSource
	j.TotalSources = s.TotalSources
	j.CompletedSources = s.CompletedSources
	j.ProgressPercent = s.ProgressPercent
	j.StatusMessage = s.StatusMessage
	j.TotalRaw = s.TotalRaw
	j.TotalAfterDedup = s.TotalAfterDedup
	j.TotalEnriched = s.TotalEnriched
	j.TotalVerifiedEmails = s.TotalVerifiedEmails
	j.TotalFinal = s.TotalFinal
	j.Errors = s.Errors
}
