package model

import (
	"time"

	"github.com/rotisserie/eris"
)

// JobStatus represents the current state of a generation job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Terminal reports whether the status is final.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// CanTransition reports whether a transition from s to next is allowed.
// pending → running | failed, running → completed | failed. Terminal states
// accept no further transitions.
func (s JobStatus) CanTransition(next JobStatus) bool {
	switch s {
	case JobStatusPending:
		return next == JobStatusRunning || next == JobStatusFailed
	case JobStatusRunning:
		return next == JobStatusCompleted || next == JobStatusFailed
	default:
		return false
	}
}

// JobParams are the frozen input parameters of a job, set at submission.
type JobParams struct {
	Query          string   `json:"query"`
	Location       string   `json:"location"`
	MaxResults     int      `json:"max_results"`
	SourcesEnabled []string `json:"sources_enabled"`
	Vertical       string   `json:"vertical,omitempty"`
}

// JobError records a recovered per-source failure during a run.
type JobError struct {
	Source  string `json:"source"`
	Message string `json:"message"`
}

// Job is a single lead generation job. The orchestrator is the sole writer
// during a run; external callers may read counters and status at any time.
type Job struct {
	ID     string    `json:"id"`
	Params JobParams `json:"params"`
	Status JobStatus `json:"status"`

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

	ErrorMessage string     `json:"error_message,omitempty"`
	Errors       []JobError `json:"errors,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// TransitionTo moves the job to next, enforcing the allowed transitions and
// stamping CompletedAt on entry to a terminal state.
func (j *Job) TransitionTo(next JobStatus, now time.Time) error {
	if !j.Status.CanTransition(next) {
		return eris.Errorf("model: illegal job transition %s → %s", j.Status, next)
	}
	j.Status = next
	if next.Terminal() {
		t := now.UTC()
		j.CompletedAt = &t
	}
	return nil
}
