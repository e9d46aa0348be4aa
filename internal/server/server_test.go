package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/store"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

type memStore struct {
	mu    sync.Mutex
	jobs  map[string]*model.Job
	leads map[string][]model.Lead
}

func newMemStore() *memStore {
	return &memStore{jobs: make(map[string]*model.Job), leads: make(map[string][]model.Lead)}
}

func (m *memStore) CreateJob(_ context.Context, params model.JobParams) (*model.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job := &model.Job{ID: "job-1", Params: params, Status: model.JobStatusPending, CreatedAt: time.Now()}
	m.jobs[job.ID] = job
	return job, nil
}

func (m *memStore) GetJob(_ context.Context, jobID string) (*model.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return job, nil
}

func (m *memStore) SaveJob(_ context.Context, job *model.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.ID] = job
	return nil
}

func (m *memStore) ListJobs(context.Context, store.JobFilter) ([]model.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Job
	for _, j := range m.jobs {
		out = append(out, *j)
	}
	return out, nil
}

func (m *memStore) ReplaceLeads(_ context.Context, jobID string, leads []model.Lead) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leads[jobID] = leads
	return nil
}

func (m *memStore) ListLeads(_ context.Context, jobID string) ([]model.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.leads[jobID], nil
}

func (m *memStore) CountLeads(_ context.Context, jobID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.leads[jobID]), nil
}

func (m *memStore) Migrate(context.Context) error { return nil }
func (m *memStore) Close() error                  { return nil }

func noRun(context.Context, string) error { return nil }

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(New(newMemStore(), noRun, nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateJob_AcceptsAndRuns(t *testing.T) {
	st := newMemStore()
	ran := make(chan string, 1)
	run := func(_ context.Context, jobID string) error {
		ran <- jobID
		return nil
	}
	srv := httptest.NewServer(New(st, run, nil))
	defer srv.Close()

	body, _ := json.Marshal(map[string]any{
		"query":           "hvac contractors",
		"location":        "Austin, TX",
		"max_results":     20,
		"sources_enabled": []string{"google_maps"},
	})
	resp, err := http.Post(srv.URL+"/jobs", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	var job model.Job
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&job))
	assert.Equal(t, "job-1", job.ID)
	assert.Equal(t, model.JobStatusPending, job.Status)
	assert.Equal(t, "hvac contractors", job.Params.Query)

	select {
	case id := <-ran:
		assert.Equal(t, "job-1", id)
	case <-time.After(2 * time.Second):
		t.Fatal("runner was not invoked")
	}
}

func TestCreateJob_Validation(t *testing.T) {
	srv := httptest.NewServer(New(newMemStore(), noRun, nil))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/jobs", "application/json",
		bytes.NewReader([]byte(`{"query":"hvac"}`)))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp2, err := http.Post(srv.URL+"/jobs", "application/json",
		bytes.NewReader([]byte(`not json`)))
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp2.StatusCode)
}

func TestGetJob(t *testing.T) {
	st := newMemStore()
	job, _ := st.CreateJob(context.Background(), model.JobParams{Query: "gyms", Location: "Miami, FL"})
	srv := httptest.NewServer(New(st, noRun, nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/jobs/" + job.ID)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var got model.Job
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, job.ID, got.ID)
}

func TestGetJob_NotFound(t *testing.T) {
	srv := httptest.NewServer(New(newMemStore(), noRun, nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/jobs/missing")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListLeads(t *testing.T) {
	st := newMemStore()
	job, _ := st.CreateJob(context.Background(), model.JobParams{Query: "gyms", Location: "Miami, FL"})
	require.NoError(t, st.ReplaceLeads(context.Background(), job.ID, []model.Lead{
		{CompanyName: "Acme Gym", LeadScore: 70},
	}))
	srv := httptest.NewServer(New(st, noRun, nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/jobs/" + job.ID + "/leads")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var leads []model.Lead
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&leads))
	require.Len(t, leads, 1)
	assert.Equal(t, "Acme Gym", leads[0].CompanyName)
}

func TestListLeads_JobNotFound(t *testing.T) {
	srv := httptest.NewServer(New(newMemStore(), noRun, nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/jobs/missing/leads")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListLeads_EmptyIsArray(t *testing.T) {
	st := newMemStore()
	job, _ := st.CreateJob(context.Background(), model.JobParams{Query: "gyms", Location: "Miami, FL"})
	srv := httptest.NewServer(New(st, noRun, nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/jobs/" + job.ID + "/leads")
	require.NoError(t, err)
	defer resp.Body.Close()

	var raw json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	assert.Equal(t, "[]", string(bytes.TrimSpace(raw)))
}
