package pipeline

import (
	"context"
	"errors"
	"sync"

	"github.com/sells-group/leadgen-cli/internal/config"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/source"
	"github.com/sells-group/leadgen-cli/internal/store"
)

// mockStore is an in-memory Store recording calls for assertions.
type mockStore struct {
	mu    sync.Mutex
	jobs  map[string]*model.Job
	leads map[string][]model.Lead

	saveCalls    int
	replaceCalls int
	replaceErr   error

	failSaveCall   int             // 1-based save index that fails, 0 = never
	failSaveStatus model.JobStatus // saves of a job in this status fail
}

func newMockStore() *mockStore {
	return &mockStore{
		jobs:  make(map[string]*model.Job),
		leads: make(map[string][]model.Lead),
	}
}

func (m *mockStore) CreateJob(_ context.Context, params model.JobParams) (*model.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job := &model.Job{ID: "job-" + params.Query, Params: params, Status: model.JobStatusPending}
	m.jobs[job.ID] = job
	copied := *job
	return &copied, nil
}

func (m *mockStore) GetJob(_ context.Context, jobID string) (*model.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *job
	return &copied, nil
}

func (m *mockStore) SaveJob(_ context.Context, job *model.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[job.ID]; !ok {
		return store.ErrNotFound
	}
	m.saveCalls++
	if m.failSaveCall != 0 && m.saveCalls == m.failSaveCall {
		return errors.New("save rejected")
	}
	if m.failSaveStatus != "" && job.Status == m.failSaveStatus {
		return errors.New("save rejected")
	}
	copied := *job
	m.jobs[job.ID] = &copied
	return nil
}

func (m *mockStore) ListJobs(context.Context, store.JobFilter) ([]model.Job, error) {
	return nil, nil
}

func (m *mockStore) ReplaceLeads(_ context.Context, jobID string, leads []model.Lead) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replaceCalls++
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.leads[jobID] = append([]model.Lead(nil), leads...)
	return nil
}

func (m *mockStore) ListLeads(_ context.Context, jobID string) ([]model.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.leads[jobID], nil
}

func (m *mockStore) CountLeads(_ context.Context, jobID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.leads[jobID]), nil
}

func (m *mockStore) Migrate(context.Context) error { return nil }
func (m *mockStore) Close() error                  { return nil }

// stubAdapter returns canned records or a canned error, counting calls.
type stubAdapter struct {
	name    string
	records []model.RawRecord
	err     error
	calls   int
	panics  bool
}

func (s *stubAdapter) Name() string { return s.name }

func (s *stubAdapter) Fetch(context.Context, source.Query) ([]model.RawRecord, error) {
	s.calls++
	if s.panics {
		panic("adapter blew up")
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

func registryWith(adapters ...*stubAdapter) *source.Registry {
	reg := source.NewRegistry()
	for _, a := range adapters {
		adapter := a
		reg.Register(adapter.name, func(*config.Config) source.Adapter { return adapter })
	}
	return reg
}
