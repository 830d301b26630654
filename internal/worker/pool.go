package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/wanderplan/wanderplan/internal/job"
)

// spawnPool starts the processing goroutines.
func (w *Worker) spawnPool(ctx context.Context) {
	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.workerLoop(ctx, i)
	}

	w.logger.Info("Worker pool spawned",
		slog.Int("worker_count", w.concurrency),
	)
}

// workerLoop runs the pipeline for each job message and acks or nacks the
// delivery based on the outcome.
func (w *Worker) workerLoop(ctx context.Context, workerNum int) {
	defer w.wg.Done()

	workerName := fmt.Sprintf("%s-%d", w.workerID, workerNum)
	w.logger.Info("Worker goroutine started", slog.String("worker_name", workerName))

	for {
		select {
		case <-w.stopChan:
			w.logger.Info("Worker goroutine stopping", slog.String("worker_name", workerName))
			return

		case <-ctx.Done():
			w.logger.Info("Worker goroutine stopping - context canceled",
				slog.String("worker_name", workerName),
			)
			return

		case msg, ok := <-w.jobsChan:
			if !ok {
				return
			}

			w.logger.Info("Worker received job",
				slog.String("worker_name", workerName),
				slog.String("job_id", msg.JobID),
			)

			err := w.runner.Run(ctx, msg.JobID)

			channel := w.rabbitClient.GetChannel()
			if channel == nil {
				w.logger.Error("No RabbitMQ channel for ACK/NACK",
					slog.String("job_id", msg.JobID),
				)
				continue
			}

			if err != nil {
				requeue := shouldRequeue(err)
				w.logger.Error("Job processing failed",
					slog.String("worker_name", workerName),
					slog.String("job_id", msg.JobID),
					slog.Bool("requeue", requeue),
					slog.String("error", err.Error()),
				)
				if nackErr := channel.Nack(msg.DeliveryTag, false, requeue); nackErr != nil {
					w.logger.Error("Failed to NACK message",
						slog.String("job_id", msg.JobID),
						slog.String("error", nackErr.Error()),
					)
				}
				continue
			}

			if ackErr := channel.Ack(msg.DeliveryTag, false); ackErr != nil {
				w.logger.Error("Failed to ACK message",
					slog.String("job_id", msg.JobID),
					slog.String("error", ackErr.Error()),
				)
			}
		}
	}
}

// shouldRequeue decides whether a failed delivery goes back on the queue.
// Only failures that left no terminal record are worth another attempt;
// once the job is marked failed, redelivery would be skipped anyway.
func shouldRequeue(err error) bool {
	// Unknown id: the record was never written or already swept. Retrying
	// cannot bring it back.
	if errors.Is(err, job.ErrNotFound) {
		return false
	}

	// Another worker drove the job to a terminal state.
	if errors.Is(err, job.ErrTerminalState) {
		return false
	}

	// Stage failures are recorded on the job as a terminal failure.
	var stageErr *job.StageError
	if errors.As(err, &stageErr) {
		return false
	}

	// Anything else is a store or infrastructure error before a terminal
	// write happened; the job can still be run by a redelivery.
	return true
}
