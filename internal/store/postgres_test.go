package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgres_CreateJob(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO jobs`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "pending", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	job, err := s.CreateJob(context.Background(), model.JobParams{Query: "hvac", Location: "Austin, TX"})
	require.NoError(t, err)
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, model.JobStatusPending, job.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetJob_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, params, status, state, error_message, created_at, started_at, completed_at`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetJob(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetJob_RoundTripsState(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	now := time.Now().UTC()
	params := []byte(`{"query":"gyms","location":"Miami, FL","max_results":40,"sources_enabled":["google_maps"]}`)
	state := []byte(`{"total_sources":1,"completed_sources":1,"progress_percent":100,"total_raw":12,"total_after_dedup":10,"total_final":10,"total_enriched":0,"total_verified_emails":0,"errors":[{"source":"google_maps","message":"partial page"}]}`)

	rows := pgxmock.NewRows([]string{
		"id", "params", "status", "state", "error_message", "created_at", "started_at", "completed_at",
	}).AddRow("job-1", params, model.JobStatusCompleted, state, (*string)(nil), now, &now, &now)

	mock.ExpectQuery(`SELECT id, params, status, state`).
		WithArgs("job-1").
		WillReturnRows(rows)

	job, err := s.GetJob(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, "gyms", job.Params.Query)
	assert.Equal(t, model.JobStatusCompleted, job.Status)
	assert.Equal(t, 100, job.ProgressPercent)
	assert.Equal(t, 10, job.TotalFinal)
	require.Len(t, job.Errors, 1)
	assert.Equal(t, "google_maps", job.Errors[0].Source)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_SaveJob_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE jobs SET`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.SaveJob(context.Background(), &model.Job{ID: "missing", Status: model.JobStatusRunning})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ReplaceLeads_TransactionalSwap(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "leads" WHERE "job_id" = \$1`).
		WithArgs("job-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mock.ExpectCopyFrom(pgx.Identifier{"leads"}, leadColumns).WillReturnResult(2)
	mock.ExpectCommit()

	leads := []model.Lead{
		{CompanyName: "Acme HVAC", Source: "google_maps", LeadScore: 85},
		{CompanyName: "Budget Air", Source: "google_maps", LeadScore: 40},
	}
	err := s.ReplaceLeads(context.Background(), "job-1", leads)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ReplaceLeads_EmptyClears(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "leads"`).
		WithArgs("job-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 5))
	mock.ExpectCommit()

	require.NoError(t, s.ReplaceLeads(context.Background(), "job-1", nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_CountLeads(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM leads`).
		WithArgs("job-1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(7))

	n, err := s.CountLeads(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
