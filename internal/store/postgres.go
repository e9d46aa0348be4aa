package store

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/db"
	"github.com/sells-group/leadgen-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS jobs (
	id            TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	params        JSONB NOT NULL,
	status        TEXT NOT NULL DEFAULT 'pending',
	state         JSONB NOT NULL DEFAULT '{}',
	error_message TEXT,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	started_at    TIMESTAMPTZ,
	completed_at  TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS leads (
	id           TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	job_id       TEXT NOT NULL REFERENCES jobs(id),
	company_name TEXT NOT NULL,
	source       TEXT NOT NULL,
	lead_score   INTEGER NOT NULL DEFAULT 0,
	intent_score INTEGER NOT NULL DEFAULT 0,
	data         JSONB NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);
CREATE INDEX IF NOT EXISTS idx_jobs_created ON jobs(created_at);
CREATE INDEX IF NOT EXISTS idx_leads_job_id ON leads(job_id);
CREATE INDEX IF NOT EXISTS idx_leads_job_score ON leads(job_id, lead_score DESC);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateJob(ctx context.Context, params model.JobParams) (*model.Job, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal params")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO jobs (id, params, status, state, created_at) VALUES ($1, $2, $3, '{}', $4)`,
		id, paramsJSON, string(model.JobStatusPending), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert job")
	}

	return &model.Job{
		ID:        id,
		Params:    params,
		Status:    model.JobStatusPending,
		CreatedAt: now,
	}, nil
}

func (s *PostgresStore) GetJob(ctx context.Context, jobID string) (*model.Job, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, params, status, state, error_message, created_at, started_at, completed_at
		 FROM jobs WHERE id = $1`,
		jobID,
	)
	return scanPgJob(row)
}

func (s *PostgresStore) SaveJob(ctx context.Context, job *model.Job) error {
	stateJSON, err := json.Marshal(stateOf(job))
	if err != nil {
		return eris.Wrap(err, "postgres: marshal state")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE jobs SET status = $1, state = $2, error_message = $3, started_at = $4, completed_at = $5
		 WHERE id = $6`,
		string(job.Status), stateJSON, emptyToNil(job.ErrorMessage),
		job.StartedAt, job.CompletedAt, job.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: save job %s", job.ID)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListJobs(ctx context.Context, filter JobFilter) ([]model.Job, error) {
	query := `SELECT id, params, status, state, error_message, created_at, started_at, completed_at
	          FROM jobs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += ` AND status = $1`
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += ` LIMIT $` + strconv.Itoa(len(args))

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list jobs")
	}
	defer rows.Close()

	var jobs []model.Job
	for rows.Next() {
		j, err := scanPgJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *j)
	}
	return jobs, eris.Wrap(rows.Err(), "postgres: list jobs iterate")
}

// leadColumns is the column order used by ReplaceLeads' COPY load.
var leadColumns = []string{
	"id", "job_id", "company_name", "source", "lead_score", "intent_score", "data", "created_at",
}

func (s *PostgresStore) ReplaceLeads(ctx context.Context, jobID string, leads []model.Lead) error {
	rows := make([][]any, 0, len(leads))
	for i := range leads {
		lead := &leads[i]
		if lead.ID == "" {
			lead.ID = uuid.New().String()
		}
		lead.JobID = jobID
		if lead.CreatedAt.IsZero() {
			lead.CreatedAt = time.Now().UTC()
		}

		dataJSON, err := json.Marshal(lead)
		if err != nil {
			return eris.Wrap(err, "postgres: marshal lead")
		}
		rows = append(rows, []any{
			lead.ID, jobID, lead.CompanyName, lead.Source,
			lead.LeadScore, lead.IntentScore, dataJSON, lead.CreatedAt,
		})
	}

	cfg := db.ReplaceConfig{Table: "leads", KeyCol: "job_id", Columns: leadColumns}
	_, err := db.ReplaceRows(ctx, s.pool, cfg, jobID, rows)
	return eris.Wrapf(err, "postgres: replace leads for job %s", jobID)
}

func (s *PostgresStore) ListLeads(ctx context.Context, jobID string) ([]model.Lead, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT data FROM leads WHERE job_id = $1 ORDER BY lead_score DESC, company_name`,
		jobID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list leads for job %s", jobID)
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		var dataJSON []byte
		if err := rows.Scan(&dataJSON); err != nil {
			return nil, eris.Wrap(err, "postgres: scan lead")
		}
		var lead model.Lead
		if err := json.Unmarshal(dataJSON, &lead); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal lead")
		}
		leads = append(leads, lead)
	}
	return leads, eris.Wrap(rows.Err(), "postgres: list leads iterate")
}

func (s *PostgresStore) CountLeads(ctx context.Context, jobID string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM leads WHERE job_id = $1`, jobID,
	).Scan(&n)
	return n, eris.Wrapf(err, "postgres: count leads for job %s", jobID)
}

// helpers

func scanPgJob(row pgx.Row) (*model.Job, error) {
	var (
		j          model.Job
		paramsJSON []byte
		stateJSON  []byte
		errMsg     *string
		startedAt  *time.Time
		completed  *time.Time
	)

	err := row.Scan(&j.ID, &paramsJSON, &j.Status, &stateJSON, &errMsg,
		&j.CreatedAt, &startedAt, &completed)
	if eris.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan job")
	}

	if err := json.Unmarshal(paramsJSON, &j.Params); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal params")
	}
	var state jobState
	if err := json.Unmarshal(stateJSON, &state); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal state")
	}
	applyState(&j, state)

	if errMsg != nil {
		j.ErrorMessage = *errMsg
	}
	j.StartedAt = startedAt
	j.CompletedAt = completed
	return &j, nil
}

func emptyToNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

