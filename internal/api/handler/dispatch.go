package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/wanderplan/wanderplan/internal/pipeline"
	"github.com/wanderplan/wanderplan/shared/rabbitmq"
)

// Dispatcher hands a freshly created job to whatever runs the pipeline.
type Dispatcher interface {
	Dispatch(ctx context.Context, jobID string) error
}

// InlineDispatcher runs the pipeline in a goroutine inside the API process.
// Suitable for single-process deployments with the in-memory store.
type InlineDispatcher struct {
	runner *pipeline.Runner
	logger *slog.Logger
}

func NewInlineDispatcher(runner *pipeline.Runner, logger *slog.Logger) *InlineDispatcher {
	return &InlineDispatcher{runner: runner, logger: logger}
}

// Dispatch starts the pipeline detached from the request context so that the
// job keeps running after the HTTP response is written.
func (d *InlineDispatcher) Dispatch(_ context.Context, jobID string) error {
	go func() {
		if err := d.runner.Run(context.Background(), jobID); err != nil {
			d.logger.Error("Pipeline run failed",
				slog.String("job_id", jobID),
				slog.String("error", err.Error()),
			)
		}
	}()
	return nil
}

// JobMessage is the queue payload exchanged between the API and the workers.
type JobMessage struct {
	JobID string `json:"job_id"`
}

// QueueDispatcher publishes the job id to RabbitMQ for the worker service.
// Requires the shared postgres store so workers see the record.
type QueueDispatcher struct {
	client *rabbitmq.Client
	logger *slog.Logger
}

func NewQueueDispatcher(client *rabbitmq.Client, logger *slog.Logger) *QueueDispatcher {
	return &QueueDispatcher{client: client, logger: logger}
}

func (d *QueueDispatcher) Dispatch(ctx context.Context, jobID string) error {
	body, err := json.Marshal(JobMessage{JobID: jobID})
	if err != nil {
		return fmt.Errorf("failed to marshal job message: %w", err)
	}

	if err := d.client.PublishWithRetry(ctx, body, "application/json"); err != nil {
		return fmt.Errorf("failed to publish job message: %w", err)
	}

	d.logger.Debug("Job published", slog.String("job_id", jobID))
	return nil
}
