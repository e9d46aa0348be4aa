// Package pipeline sequences source adapters, standardization, dedup,
// scoring, and persistence for a single lead generation job, and owns the
// job state machine.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/config"
	"github.com/sells-group/leadgen-cli/internal/dedupe"
	"github.com/sells-group/leadgen-cli/internal/enrich"
	"github.com/sells-group/leadgen-cli/internal/intent"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/scorer"
	"github.com/sells-group/leadgen-cli/internal/source"
	"github.com/sells-group/leadgen-cli/internal/standardize"
	"github.com/sells-group/leadgen-cli/internal/store"
)

// Orchestrator runs jobs end to end. It is the sole writer to a job and its
// lead set for the duration of a run; the submitting layer guarantees at
// most one active run per job id.
type Orchestrator struct {
	cfg      *config.Config
	store    store.Store
	registry *source.Registry
	enricher enrich.Enricher
	signals  intent.SignalSet
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithEnricher attaches an optional lead enricher.
func WithEnricher(e enrich.Enricher) Option {
	return func(o *Orchestrator) { o.enricher = e }
}

// WithSignals attaches external intent signals keyed by company domain.
func WithSignals(s intent.SignalSet) Option {
	return func(o *Orchestrator) { o.signals = s }
}

// New creates an orchestrator.
func New(cfg *config.Config, st store.Store, registry *source.Registry, opts ...Option) *Orchestrator {
	o := &Orchestrator{cfg: cfg, store: st, registry: registry}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// sourced pairs a surviving standardized record with the source that
// produced it.
type sourced struct {
	record model.RawRecord
	source string
}

// Run executes one job to a terminal state. The returned error mirrors the
// terminal failure for caller logging; the persisted job is the
// authoritative record of what happened.
func (o *Orchestrator) Run(ctx context.Context, jobID string) (err error) {
	job, err := o.store.GetJob(ctx, jobID)
	if err != nil {
		return eris.Wrapf(err, "pipeline: load job %s", jobID)
	}
	log := zap.L().With(zap.String("job_id", jobID))

	defer func() {
		if r := recover(); r != nil {
			log.Error("job run panicked", zap.Any("panic", r))
			err = eris.Errorf("pipeline: job panicked: %v", r)
			o.fail(ctx, job, fmt.Sprintf("internal error: %v", r))
		}
	}()

	sources := o.resolveSources(job.Params.SourcesEnabled)

	if msg := source.MissingCredentials(sources, o.cfg); msg != "" {
		log.Warn("job failed credential precondition", zap.String("reason", msg))
		o.fail(ctx, job, msg)
		return eris.New(msg)
	}

	now := time.Now().UTC()
	if err := job.TransitionTo(model.JobStatusRunning, now); err != nil {
		o.fail(ctx, job, fmt.Sprintf("starting job: %v", err))
		return eris.Wrap(err, "pipeline: start job")
	}
	job.StartedAt = &now
	job.ErrorMessage = ""
	job.Errors = nil
	job.TotalSources = len(sources)
	job.StatusMessage = "Starting"
	if err := o.store.SaveJob(ctx, job); err != nil {
		o.fail(ctx, job, fmt.Sprintf("saving job state: %v", err))
		return eris.Wrap(err, "pipeline: save running job")
	}

	collected := o.collect(ctx, job, sources, log)
	job.TotalAfterDedup = len(collected)

	leads := o.finalize(ctx, job, collected)

	if err := o.store.ReplaceLeads(ctx, jobID, leads); err != nil {
		o.fail(ctx, job, fmt.Sprintf("persisting leads: %v", err))
		return eris.Wrapf(err, "pipeline: replace leads for job %s", jobID)
	}

	job.TotalFinal = len(leads)
	job.CurrentSource = ""
	job.ProgressPercent = 100
	job.StatusMessage = fmt.Sprintf("Completed with %d leads", len(leads))
	if err := job.TransitionTo(model.JobStatusCompleted, time.Now()); err != nil {
		o.fail(ctx, job, fmt.Sprintf("completing job: %v", err))
		return eris.Wrap(err, "pipeline: complete job")
	}
	if err := o.store.SaveJob(ctx, job); err != nil {
		// The completed transition never reached the store; the persisted
		// status is still running, so roll back and drive it to failed.
		job.Status = model.JobStatusRunning
		job.CompletedAt = nil
		o.fail(ctx, job, fmt.Sprintf("saving completed job: %v", err))
		return eris.Wrap(err, "pipeline: save completed job")
	}

	log.Info("job completed",
		zap.Int("raw", job.TotalRaw),
		zap.Int("after_dedup", job.TotalAfterDedup),
		zap.Int("final", job.TotalFinal))
	return nil
}

// collect fetches every source in order, standardizing and merging results
// into one dedup set shared across the whole run. A failing source is
// recorded on the job and skipped.
func (o *Orchestrator) collect(ctx context.Context, job *model.Job, sources []string, log *zap.Logger) []sourced {
	seen := dedupe.NewSet()
	var collected []sourced

	query := source.Query{
		Text:       job.Params.Query,
		Location:   job.Params.Location,
		MaxResults: o.maxResults(job),
	}
	if job.Params.Vertical != "" {
		query.Hints = map[string]string{"vertical": job.Params.Vertical}
	}

	for _, name := range sources {
		job.CurrentSource = name
		job.StatusMessage = fmt.Sprintf("Fetching from %s", name)
		o.saveProgress(ctx, job, log)

		factory, ok := o.registry.Resolve(name)
		if !ok {
			log.Warn("unknown source, skipping", zap.String("source", name))
			o.advance(ctx, job, len(sources), log)
			continue
		}

		records, err := factory(o.cfg).Fetch(ctx, query)
		if err != nil {
			log.Warn("source fetch failed", zap.String("source", name), zap.Error(err))
			job.Errors = append(job.Errors, model.JobError{Source: name, Message: err.Error()})
			o.advance(ctx, job, len(sources), log)
			continue
		}

		job.TotalRaw += len(records)
		for _, rec := range records {
			std := standardize.Standardize(rec)
			if seen.Add(dedupe.Key(std, name)) {
				collected = append(collected, sourced{record: std, source: name})
			}
		}
		o.advance(ctx, job, len(sources), log)
	}
	return collected
}

// finalize scores, detects intent, and optionally enriches each surviving
// record, updating the job's result counters.
func (o *Orchestrator) finalize(ctx context.Context, job *model.Job, collected []sourced) []model.Lead {
	leads := make([]model.Lead, 0, len(collected))
	for _, item := range collected {
		lead := buildLead(item.record, item.source)
		lead.LeadScore = scorer.Lead(&lead)
		lead.IntentScore = intent.Detect(&lead, o.signals.For(lead.CompanyDomain))

		if o.enricher != nil {
			if err := o.enricher.Enrich(ctx, &lead); err == nil && lead.IsEnriched {
				job.TotalEnriched++
			}
		}
		if lead.EmailVerified {
			job.TotalVerifiedEmails++
		}
		leads = append(leads, lead)
	}
	return leads
}

// resolveSources canonicalizes the job's source list, falling back to the
// default when none are enabled.
func (o *Orchestrator) resolveSources(enabled []string) []string {
	if len(enabled) == 0 {
		return source.DefaultSources()
	}
	out := make([]string, len(enabled))
	for i, name := range enabled {
		out[i] = source.Canonical(name)
	}
	return out
}

func (o *Orchestrator) maxResults(job *model.Job) int {
	if job.Params.MaxResults > 0 {
		return job.Params.MaxResults
	}
	if o.cfg.Pipeline.DefaultMaxResults > 0 {
		return o.cfg.Pipeline.DefaultMaxResults
	}
	return 40
}

// advance bumps per-source progress and persists it for external observers.
func (o *Orchestrator) advance(ctx context.Context, job *model.Job, total int, log *zap.Logger) {
	job.CompletedSources++
	if total > 0 {
		job.ProgressPercent = job.CompletedSources * 100 / total
	}
	o.saveProgress(ctx, job, log)
}

func (o *Orchestrator) saveProgress(ctx context.Context, job *model.Job, log *zap.Logger) {
	if err := o.store.SaveJob(ctx, job); err != nil {
		log.Warn("saving job progress failed", zap.Error(err))
	}
}

// fail drives the job to the failed terminal state with an error message.
// In-flight state is preserved so operators can see how far the run got.
func (o *Orchestrator) fail(ctx context.Context, job *model.Job, msg string) {
	if job.Status.Terminal() {
		return
	}
	if err := job.TransitionTo(model.JobStatusFailed, time.Now()); err != nil {
		zap.L().Error("failing job", zap.String("job_id", job.ID), zap.Error(err))
		return
	}
	job.ErrorMessage = msg
	job.StatusMessage = msg
	if err := o.store.SaveJob(ctx, job); err != nil {
		zap.L().Error("saving failed job", zap.String("job_id", job.ID), zap.Error(err))
	}
}
