package job

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a job id is unknown or already evicted.
	ErrNotFound = errors.New("job not found")

	// ErrTerminalState is returned on attempts to mutate a completed or
	// failed job.
	ErrTerminalState = errors.New("job is in a terminal state")

	// ErrProgressRegression is returned when a progress update would move
	// the stage backwards.
	ErrProgressRegression = errors.New("progress step would regress")
)

// StageError names the pipeline stage whose collaborator failed. Stage
// failures are terminal for the job; the orchestrator does not retry them.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s search failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
