package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/wanderplan/wanderplan/internal/itinerary"
	"github.com/wanderplan/wanderplan/internal/job"
)

const (
	defaultPollInterval = 2 * time.Second
	defaultStallTimeout = 3 * time.Minute
)

// ProgressUpdate is delivered to the observer after each successful poll.
// StepIndex is monotonically non-decreasing for one job; steps the client
// does not recognize leave the index where it was.
type ProgressUpdate struct {
	Status    string
	Step      string
	StepIndex int
	StepKnown bool
	Message   string
}

// ProgressObserver receives progress updates. May be nil.
type ProgressObserver func(update ProgressUpdate)

// Outcome is the terminal result of a poll loop.
type Outcome struct {
	Status    string
	Itinerary *itinerary.Itinerary
	FailedFor string
}

// Completed reports whether the job produced an itinerary.
func (o *Outcome) Completed() bool {
	return o.Status == "completed"
}

// Poller drives the status poll loop for one job. One request is in flight
// at a time: the next poll is not issued before the prior one resolves.
type Poller struct {
	client       *Client
	interval     time.Duration
	stallTimeout time.Duration
	observer     ProgressObserver
	logger       *slog.Logger
}

// PollerConfig holds poll loop settings. Interval normally comes from the
// polling_interval_seconds field of the create response.
type PollerConfig struct {
	Client       *Client
	Interval     time.Duration
	StallTimeout time.Duration
	Observer     ProgressObserver
	Logger       *slog.Logger
}

// NewPoller creates a poll loop driver.
func NewPoller(cfg *PollerConfig) *Poller {
	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	stall := cfg.StallTimeout
	if stall <= 0 {
		stall = defaultStallTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		client:       cfg.Client,
		interval:     interval,
		stallTimeout: stall,
		observer:     cfg.Observer,
		logger:       logger,
	}
}

// Poll fetches the job status on the configured interval until the job
// reaches a terminal state, the context is canceled, or no progress is seen
// within the stall timeout. A single failed poll attempt does not stop the
// loop; only terminal status, ErrNotFound, cancellation, or the stall
// timeout do.
func (p *Poller) Poll(ctx context.Context, jobID string) (*Outcome, error) {
	lastIndex := -1
	lastAdvance := time.Now()

	for {
		status, err := p.client.JobStatus(ctx, jobID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, fmt.Errorf("job %s: %w", jobID, err)
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			p.logger.Warn("Status poll failed, continuing",
				slog.String("job_id", jobID),
				slog.String("error", err.Error()),
			)
		} else {
			if idx, advanced := p.observe(status, lastIndex); advanced {
				lastIndex = idx
				lastAdvance = time.Now()
			}

			if status.Terminal() {
				return p.finish(ctx, status)
			}
		}

		if time.Since(lastAdvance) > p.stallTimeout {
			p.logger.Error("Job made no progress within the stall timeout",
				slog.String("job_id", jobID),
				slog.Duration("stall_timeout", p.stallTimeout),
			)
			return &Outcome{
				Status:    "failed",
				FailedFor: fmt.Sprintf("no progress observed within %s", p.stallTimeout),
			}, nil
		}

		if err := sleep(ctx, p.interval); err != nil {
			return nil, err
		}
	}
}

// observe maps the reported step to its pipeline index and notifies the
// observer. Unknown step names keep the previous index.
func (p *Poller) observe(status *JobStatus, lastIndex int) (int, bool) {
	index := lastIndex
	stage, err := job.ParseStage(status.Progress.Step)
	known := err == nil
	if known && stage.Index() > index {
		index = stage.Index()
	}

	if p.observer != nil {
		p.observer(ProgressUpdate{
			Status:    status.Status,
			Step:      status.Progress.Step,
			StepIndex: index,
			StepKnown: known,
			Message:   status.Progress.Message,
		})
	}

	return index, index > lastIndex || status.Terminal()
}

// finish resolves a terminal status into an outcome, fetching the itinerary
// for completed jobs.
func (p *Poller) finish(ctx context.Context, status *JobStatus) (*Outcome, error) {
	if status.Status == "failed" {
		return &Outcome{Status: status.Status, FailedFor: status.Error}, nil
	}

	if status.Result == nil {
		return nil, fmt.Errorf("completed job carried no itinerary id")
	}

	it, err := p.client.Itinerary(ctx, status.Result.ItineraryID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch itinerary %s: %w", status.Result.ItineraryID, err)
	}
	return &Outcome{Status: status.Status, Itinerary: it}, nil
}
