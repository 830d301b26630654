package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/wanderplan/wanderplan/internal/itinerary"
	"github.com/wanderplan/wanderplan/internal/job"
	"github.com/wanderplan/wanderplan/internal/job/store"
	"github.com/wanderplan/wanderplan/internal/travel"
)

// DefaultStageTimeout bounds a single collaborator call so the pipeline can
// never block indefinitely on one slow external source.
const DefaultStageTimeout = 30 * time.Second

// Runner owns the execution of one job at a time: it is the job's single
// writer from the first stage until a terminal state. Stage failures are not
// retried here; transient-failure retries belong to the collaborator clients,
// and the creation retry belongs to the client.
type Runner struct {
	jobs         store.Store
	itineraries  itinerary.Store
	assembler    *itinerary.Assembler
	collab       Collaborators
	stageTimeout time.Duration
	logger       *slog.Logger
}

// Config holds runner dependencies.
type Config struct {
	Jobs          store.Store
	Itineraries   itinerary.Store
	Collaborators Collaborators
	StageTimeout  time.Duration
	Logger        *slog.Logger
}

// NewRunner creates a pipeline runner.
func NewRunner(cfg *Config) *Runner {
	timeout := cfg.StageTimeout
	if timeout <= 0 {
		timeout = DefaultStageTimeout
	}
	return &Runner{
		jobs:         cfg.Jobs,
		itineraries:  cfg.Itineraries,
		assembler:    itinerary.NewAssembler(),
		collab:       cfg.Collaborators,
		stageTimeout: timeout,
		logger:       cfg.Logger,
	}
}

// Run executes all stages for the given job id and drives the record to
// exactly one terminal state. It is safe to call with an id that already
// reached a terminal state (e.g. a redelivered queue message): the run is
// skipped.
func (r *Runner) Run(ctx context.Context, jobID string) error {
	j, err := r.jobs.Get(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to load job %s: %w", jobID, err)
	}
	if j.Status.Terminal() {
		r.logger.Warn("Skipping job already in terminal state",
			slog.String("job_id", jobID),
			slog.String("status", string(j.Status)),
		)
		return nil
	}

	r.logger.Info("Pipeline started",
		slog.String("job_id", jobID),
		slog.String("destination", j.Request.Destination),
	)
	start := time.Now()

	outputs, err := r.runSearchStages(ctx, j)
	if err != nil {
		if r.lostOwnership(jobID, err) {
			return nil
		}
		return r.fail(ctx, jobID, err)
	}

	if err := r.complete(ctx, j, outputs); err != nil {
		if r.lostOwnership(jobID, err) {
			return nil
		}
		return r.fail(ctx, jobID, err)
	}

	r.logger.Info("Pipeline completed",
		slog.String("job_id", jobID),
		slog.String("itinerary_id", j.ItineraryID),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

// runSearchStages invokes the four data collaborators in fixed order,
// advancing progress before each call and accumulating outputs.
func (r *Runner) runSearchStages(ctx context.Context, j *job.Job) (*travel.StageOutputs, error) {
	outputs := &travel.StageOutputs{}
	query := travel.SearchQuery{Request: j.Request}

	type searchStage struct {
		stage job.Stage
		run   func(ctx context.Context) error
	}

	stages := []searchStage{
		{job.StageFlights, func(ctx context.Context) error {
			res, err := r.collab.Flights.SearchFlights(ctx, query)
			outputs.Flights = res
			return err
		}},
		{job.StageHotels, func(ctx context.Context) error {
			res, err := r.collab.Hotels.SearchHotels(ctx, query)
			outputs.Hotels = res
			return err
		}},
		{job.StageRestaurants, func(ctx context.Context) error {
			res, err := r.collab.Restaurants.SearchRestaurants(ctx, query)
			outputs.Restaurants = res
			return err
		}},
		{job.StageActivities, func(ctx context.Context) error {
			res, err := r.collab.Activities.SearchActivities(ctx, query)
			outputs.Activities = res
			return err
		}},
	}

	for _, s := range stages {
		if err := r.jobs.MarkProcessing(ctx, j.ID, s.stage, s.stage.Message()); err != nil {
			return nil, fmt.Errorf("failed to record %s progress: %w", s.stage, err)
		}

		stageCtx, cancel := context.WithTimeout(ctx, r.stageTimeout)
		err := s.run(stageCtx)
		cancel()

		if err != nil {
			return nil, &job.StageError{Stage: s.stage, Err: err}
		}

		r.logger.Debug("Stage finished",
			slog.String("job_id", j.ID),
			slog.String("stage", s.stage.String()),
		)
	}

	return outputs, nil
}

// complete runs the completing stage: assemble the itinerary, store it under
// the id provisioned at creation, and mark the job completed.
func (r *Runner) complete(ctx context.Context, j *job.Job, outputs *travel.StageOutputs) error {
	if err := r.jobs.MarkProcessing(ctx, j.ID, job.StageCompleting, job.StageCompleting.Message()); err != nil {
		return fmt.Errorf("failed to record completing progress: %w", err)
	}

	it, err := r.assembler.Assemble(j.ItineraryID, j.Request, outputs)
	if err != nil {
		return &job.StageError{Stage: job.StageCompleting, Err: err}
	}

	if err := r.itineraries.Put(ctx, it); err != nil {
		return &job.StageError{Stage: job.StageCompleting, Err: err}
	}

	if err := r.jobs.Complete(ctx, j.ID, j.ItineraryID); err != nil {
		return fmt.Errorf("failed to mark job completed: %w", err)
	}
	return nil
}

// lostOwnership reports whether a progress write was rejected because another
// run of the same job got further first, e.g. on a redelivered queue message.
// Such a run abandons the job instead of failing it.
func (r *Runner) lostOwnership(jobID string, err error) bool {
	if !errors.Is(err, job.ErrTerminalState) && !errors.Is(err, job.ErrProgressRegression) {
		return false
	}
	r.logger.Warn("Abandoning run: job is owned by a further-along writer",
		slog.String("job_id", jobID),
	)
	return true
}

// fail records the terminal failure with a short reason naming the stage.
func (r *Runner) fail(ctx context.Context, jobID string, cause error) error {
	reason := cause.Error()
	var stageErr *job.StageError
	if !errors.As(cause, &stageErr) {
		reason = "itinerary generation failed: " + reason
	}

	r.logger.Error("Pipeline failed",
		slog.String("job_id", jobID),
		slog.String("error", reason),
	)

	if err := r.jobs.Fail(ctx, jobID, reason); err != nil && !errors.Is(err, job.ErrTerminalState) {
		r.logger.Error("Failed to record job failure",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
	}
	return cause
}
