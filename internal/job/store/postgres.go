package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/wanderplan/wanderplan/internal/job"
	"github.com/wanderplan/wanderplan/internal/trip"
)

// PostgresStore persists job records so the API service and a queue-fed
// worker service can share them. Monotonicity and terminal-state guards are
// enforced in the UPDATE predicates, mirroring the optimistic-claim pattern:
// a write that would regress or touch a terminal job simply matches no rows.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore creates a Postgres-backed job store.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type jobRow struct {
	JobID       string         `db:"job_id"`
	ItineraryID string         `db:"itinerary_id"`
	Request     []byte         `db:"request"`
	Status      string         `db:"status"`
	Step        int            `db:"step"`
	Message     string         `db:"message"`
	ResultID    sql.NullString `db:"result_itinerary_id"`
	Error       sql.NullString `db:"error"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (s *PostgresStore) Create(ctx context.Context, j *job.Job) error {
	reqJSON, err := json.Marshal(j.Request)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	query := `
		INSERT INTO jobs (
			job_id, itinerary_id, request, status,
			step, message, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8
		)
	`

	_, err = s.db.ExecContext(
		ctx,
		query,
		j.ID,
		j.ItineraryID,
		reqJSON,
		string(j.Status),
		j.Progress.Step.Index(),
		j.Progress.Message,
		j.CreatedAt,
		j.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*job.Job, error) {
	var row jobRow
	query := `
		SELECT
			job_id, itinerary_id, request, status,
			step, message, result_itinerary_id, error,
			created_at, updated_at
		FROM jobs
		WHERE job_id = $1
	`

	if err := s.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, job.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	var req trip.Request
	if err := json.Unmarshal(row.Request, &req); err != nil {
		return nil, fmt.Errorf("failed to decode job request: %w", err)
	}

	j := &job.Job{
		ID:          row.JobID,
		ItineraryID: row.ItineraryID,
		Request:     req,
		Status:      job.Status(row.Status),
		Progress: job.Progress{
			Step:    job.Stage(row.Step),
			Message: row.Message,
		},
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if row.ResultID.Valid {
		j.Result = &job.Result{ItineraryID: row.ResultID.String}
	}
	if row.Error.Valid {
		j.Error = row.Error.String
	}
	return j, nil
}

func (s *PostgresStore) MarkProcessing(ctx context.Context, id string, stage job.Stage, message string) error {
	query := `
		UPDATE jobs
		SET status = $1,
		    step = $2,
		    message = $3,
		    updated_at = NOW()
		WHERE job_id = $4
		  AND status NOT IN ($5, $6)
		  AND step <= $2
	`

	res, err := s.db.ExecContext(ctx, query,
		string(job.StatusProcessing), stage.Index(), message, id,
		string(job.StatusCompleted), string(job.StatusFailed),
	)
	if err != nil {
		return fmt.Errorf("failed to update job progress: %w", err)
	}
	return s.classifyNoRows(ctx, res, id, stage)
}

func (s *PostgresStore) Complete(ctx context.Context, id string, itineraryID string) error {
	query := `
		UPDATE jobs
		SET status = $1,
		    result_itinerary_id = $2,
		    updated_at = NOW()
		WHERE job_id = $3
		  AND status NOT IN ($1, $4)
	`

	res, err := s.db.ExecContext(ctx, query,
		string(job.StatusCompleted), itineraryID, id, string(job.StatusFailed),
	)
	if err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}
	return s.classifyNoRows(ctx, res, id, job.StageCompleting)
}

func (s *PostgresStore) Fail(ctx context.Context, id string, reason string) error {
	query := `
		UPDATE jobs
		SET status = $1,
		    error = $2,
		    updated_at = NOW()
		WHERE job_id = $3
		  AND status NOT IN ($1, $4)
	`

	res, err := s.db.ExecContext(ctx, query,
		string(job.StatusFailed), reason, id, string(job.StatusCompleted),
	)
	if err != nil {
		return fmt.Errorf("failed to mark job failed: %w", err)
	}
	return s.classifyNoRows(ctx, res, id, job.StageCompleting)
}

// classifyNoRows turns a zero-row guarded UPDATE into the contract error the
// caller expects: unknown id, terminal state, or progress regression.
func (s *PostgresStore) classifyNoRows(ctx context.Context, res sql.Result, id string, stage job.Stage) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected > 0 {
		return nil
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if current.Status.Terminal() {
		return job.ErrTerminalState
	}
	if stage.Before(current.Progress.Step) {
		return job.ErrProgressRegression
	}
	return fmt.Errorf("job %s update matched no rows", id)
}

// Schema is the DDL for the jobs table, applied by deployment tooling.
const Schema = `
CREATE TABLE IF NOT EXISTS jobs (
	job_id              UUID PRIMARY KEY,
	itinerary_id        UUID NOT NULL,
	request             JSONB NOT NULL,
	status              TEXT NOT NULL,
	step                INT NOT NULL DEFAULT 0,
	message             TEXT NOT NULL DEFAULT '',
	result_itinerary_id UUID,
	error               TEXT,
	created_at          TIMESTAMPTZ NOT NULL,
	updated_at          TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_jobs_status_updated ON jobs (status, updated_at);
`
