package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/matchbot/internal/domain/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS pipeline_runs (
	id          TEXT PRIMARY KEY,
	message_sid TEXT NOT NULL DEFAULT '',
	sender      TEXT NOT NULL DEFAULT '',
	input_kind  TEXT NOT NULL DEFAULT '',
	input_text  TEXT NOT NULL DEFAULT '',
	job_key     TEXT NOT NULL DEFAULT '',
	candidates  INTEGER NOT NULL DEFAULT 0,
	outcome     TEXT NOT NULL DEFAULT '',
	error       TEXT NOT NULL DEFAULT '',
	started_at  TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS pipeline_runs_started_at_idx ON pipeline_runs (started_at DESC);`

const runColumns = `id, message_sid, sender, input_kind, input_text, job_key, candidates, outcome, error, started_at, finished_at`

// PostgresLog is a RunLog backed by a pgx connection pool.
type PostgresLog struct {
	pool *pgxpool.Pool
}

var _ RunLog = (*PostgresLog)(nil)

// NewPostgresPool creates and verifies a pgxpool connection pool.
func NewPostgresPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: pgxpool.New: %w", ErrStorage, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: ping: %w", ErrStorage, err)
	}
	return pool, nil
}

// NewPostgresLog ensures the schema exists and returns the log.
func NewPostgresLog(ctx context.Context, pool *pgxpool.Pool) (*PostgresLog, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("%w: migrate: %w", ErrStorage, err)
	}
	return &PostgresLog{pool: pool}, nil
}

// Record implements RunLog.
func (s *PostgresLog) Record(ctx context.Context, run model.Run) error {
	_, err := s.pool.Exec(ctx, `
INSERT INTO pipeline_runs (`+runColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (id) DO UPDATE SET
	job_key = EXCLUDED.job_key,
	candidates = EXCLUDED.candidates,
	outcome = EXCLUDED.outcome,
	error = EXCLUDED.error,
	finished_at = EXCLUDED.finished_at`,
		run.ID, run.MessageSID, run.From, string(run.InputKind), run.Text, run.JobKey,
		run.Candidates, run.Outcome, run.Error, run.StartedAt, run.FinishedAt)
	if err != nil {
		return fmt.Errorf("%w: insert run: %w", ErrStorage, err)
	}
	return nil
}

// Get implements RunLog.
func (s *PostgresLog) Get(ctx context.Context, id string) (model.Run, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+runColumns+` FROM pipeline_runs WHERE id = $1`, id)
	run, err := scanRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Run{}, ErrNotFound
	}
	if err != nil {
		return model.Run{}, fmt.Errorf("%w: get run: %w", ErrStorage, err)
	}
	return run, nil
}

// Recent implements RunLog.
func (s *PostgresLog) Recent(ctx context.Context, n int) ([]model.Run, error) {
	if n <= 0 {
		return nil, ErrInvalidLimit
	}
	rows, err := s.pool.Query(ctx, `SELECT `+runColumns+` FROM pipeline_runs ORDER BY started_at DESC LIMIT $1`, n)
	if err != nil {
		return nil, fmt.Errorf("%w: list runs: %w", ErrStorage, err)
	}
	defer rows.Close()

	var out []model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan run: %w", ErrStorage, err)
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list runs: %w", ErrStorage, err)
	}
	return out, nil
}

// Count implements RunLog.
func (s *PostgresLog) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM pipeline_runs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: count runs: %w", ErrStorage, err)
	}
	return n, nil
}

func scanRun(row pgx.Row) (model.Run, error) {
	var (
		run  model.Run
		kind string
	)
	err := row.Scan(&run.ID, &run.MessageSID, &run.From, &kind, &run.Text, &run.JobKey,
		&run.Candidates, &run.Outcome, &run.Error, &run.StartedAt, &run.FinishedAt)
	run.InputKind = model.MediaKind(kind)
	return run, err
}
