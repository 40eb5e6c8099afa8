package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/articflow/agentlink/internal/db"
	"github.com/articflow/agentlink/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool db.Pool
}

// preparedStatements lists queries to prepare on each new connection.
// pgx uses a prepared statement automatically when the SQL text matches.
var preparedStatements = map[string]string{
	"insert_job":        `INSERT INTO jobs (id, kind, suburb, status, request, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
	"update_job_status": `UPDATE jobs SET status = $1, updated_at = $2 WHERE id = $3`,
	"complete_job":      `UPDATE jobs SET status = $1, result = $2, error = '', updated_at = $3 WHERE id = $4`,
	"fail_job":          `UPDATE jobs SET status = $1, error = $2, updated_at = $3 WHERE id = $4`,
	"get_job":           `SELECT id, kind, suburb, status, request, result, error, created_at, updated_at FROM jobs WHERE id = $1`,
}

// NewPostgres connects to PostgreSQL and returns a store over the pool.
func NewPostgres(ctx context.Context, connString string, poolCfg db.PoolConfig) (*PostgresStore, error) {
	poolCfg.Prepared = preparedStatements
	pool, err := db.Connect(ctx, connString, poolCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS jobs (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	kind       TEXT NOT NULL,
	suburb     TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'processing',
	request    JSONB,
	result     JSONB,
	error      TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);
CREATE INDEX IF NOT EXISTS idx_jobs_updated_at ON jobs(updated_at);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateJob(ctx context.Context, kind model.JobKind, suburb string, request json.RawMessage) (*model.Job, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx, preparedStatements["insert_job"],
		id, string(kind), suburb, string(model.JobStatusProcessing), nullableBytes(request), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert job")
	}

	return &model.Job{
		ID:        id,
		Kind:      kind,
		Suburb:    suburb,
		Status:    model.JobStatusProcessing,
		Request:   request,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *PostgresStore) GetJob(ctx context.Context, id string) (*model.Job, error) {
	j, err := scanPgJob(s.pool.QueryRow(ctx, preparedStatements["get_job"], id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get job %s", id)
	}
	return j, nil
}

func (s *PostgresStore) UpdateJobStatus(ctx context.Context, id string, status model.JobStatus) error {
	tag, err := s.pool.Exec(ctx, preparedStatements["update_job_status"],
		string(status), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update job status %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "job %s", id)
	}
	return nil
}

func (s *PostgresStore) CompleteJob(ctx context.Context, id string, result json.RawMessage) error {
	tag, err := s.pool.Exec(ctx, preparedStatements["complete_job"],
		string(model.JobStatusCompleted), nullableBytes(result), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete job %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "job %s", id)
	}
	return nil
}

func (s *PostgresStore) FailJob(ctx context.Context, id string, reason string) error {
	tag, err := s.pool.Exec(ctx, preparedStatements["fail_job"],
		string(model.JobStatusFailed), reason, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: fail job %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "job %s", id)
	}
	return nil
}

func (s *PostgresStore) ListJobs(ctx context.Context, filter model.JobFilter) ([]model.Job, error) {
	query := `SELECT id, kind, suburb, status, request, result, error, created_at, updated_at FROM jobs WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, argIdx)
	args = append(args, listLimit(filter))
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list jobs")
	}
	defer rows.Close()

	jobs := []model.Job{}
	for rows.Next() {
		j, err := scanPgJob(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan job")
		}
		jobs = append(jobs, *j)
	}
	return jobs, eris.Wrap(rows.Err(), "postgres: list jobs iterate")
}

func (s *PostgresStore) DeleteJobsBefore(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM jobs WHERE status IN ($1, $2) AND updated_at < $3`,
		string(model.JobStatusCompleted), string(model.JobStatusFailed), cutoff.UTC(),
	)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: delete jobs")
	}
	return int(tag.RowsAffected()), nil
}

func scanPgJob(row pgx.Row) (*model.Job, error) {
	var j model.Job
	var kind, status string
	var request, result []byte

	if err := row.Scan(&j.ID, &kind, &j.Suburb, &status, &request, &result, &j.Error, &j.CreatedAt, &j.UpdatedAt); err != nil {
		return nil, err
	}
	j.Kind = model.JobKind(kind)
	j.Status = model.JobStatus(status)
	if len(request) > 0 {
		j.Request = json.RawMessage(request)
	}
	if len(result) > 0 {
		j.Result = json.RawMessage(result)
	}
	return &j, nil
}

func nullableBytes(b json.RawMessage) any {
	if len(b) == 0 {
		return nil
	}
	return []byte(b)
}
