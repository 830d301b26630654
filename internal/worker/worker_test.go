package worker

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wanderplan/wanderplan/internal/job"
)

func TestShouldRequeue(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "unknown job id",
			err:  fmt.Errorf("failed to load job abc: %w", job.ErrNotFound),
			want: false,
		},
		{
			name: "terminal state guard",
			err:  fmt.Errorf("failed to record flights progress: %w", job.ErrTerminalState),
			want: false,
		},
		{
			name: "stage failure already recorded on the job",
			err:  &job.StageError{Stage: job.StageHotels, Err: errors.New("upstream timeout")},
			want: false,
		},
		{
			name: "transient store error",
			err:  errors.New("dial tcp: connection refused"),
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shouldRequeue(tt.err))
		})
	}
}
