// Package store holds job records. The contract is single-writer,
// many-readers per job id: the pipeline runner that owns a job is the only
// mutator, while status polling may read at arbitrary frequency. Terminal
// states are absorbing and progress steps never regress; implementations
// reject violating writes with job.ErrTerminalState / job.ErrProgressRegression.
package store

import (
	"context"

	"github.com/wanderplan/wanderplan/internal/job"
)

// Store is the single source of truth for job status, progress, result and
// error.
type Store interface {
	// Create inserts a new pending job record. The id must not exist yet.
	Create(ctx context.Context, j *job.Job) error

	// Get returns a copy of the job or job.ErrNotFound.
	Get(ctx context.Context, id string) (*job.Job, error)

	// MarkProcessing moves the job to processing and advances its progress
	// to the given stage.
	MarkProcessing(ctx context.Context, id string, stage job.Stage, message string) error

	// Complete moves the job to its completed terminal state with the
	// itinerary id as result.
	Complete(ctx context.Context, id string, itineraryID string) error

	// Fail moves the job to its failed terminal state with a short
	// human-readable reason.
	Fail(ctx context.Context, id string, reason string) error
}
