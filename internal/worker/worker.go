package worker

import (
	"context"
	"log/slog"
	"sync"

	"github.com/wanderplan/wanderplan/internal/pipeline"
	"github.com/wanderplan/wanderplan/shared/rabbitmq"
)

// Config holds worker configuration
type Config struct {
	Logger        *slog.Logger
	Runner        *pipeline.Runner
	RabbitClient  *rabbitmq.Client
	WorkerID      string
	Concurrency   int
	PrefetchCount int
}

// Worker consumes job ids from RabbitMQ and runs the itinerary pipeline for
// each. Every goroutine in the pool is the single writer of the jobs it picks
// up; the queue never delivers one message to two goroutines at once.
type Worker struct {
	logger        *slog.Logger
	runner        *pipeline.Runner
	rabbitClient  *rabbitmq.Client
	workerID      string
	concurrency   int
	prefetchCount int
	jobsChan      chan *jobMessage
	wg            sync.WaitGroup
	stopChan      chan struct{}
}

// jobMessage pairs a parsed job id with the delivery tag needed to ack it.
type jobMessage struct {
	JobID       string
	DeliveryTag uint64
}

// NewWorker creates a new worker instance
func NewWorker(cfg *Config) *Worker {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	prefetch := cfg.PrefetchCount
	if prefetch <= 0 {
		prefetch = concurrency
	}
	return &Worker{
		logger:        cfg.Logger,
		runner:        cfg.Runner,
		rabbitClient:  cfg.RabbitClient,
		workerID:      cfg.WorkerID,
		concurrency:   concurrency,
		prefetchCount: prefetch,
		jobsChan:      make(chan *jobMessage),
		stopChan:      make(chan struct{}),
	}
}

// Start consumes deliveries and processes jobs until the context is canceled.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("Starting worker",
		slog.String("worker_id", w.workerID),
		slog.Int("concurrency", w.concurrency),
	)

	deliveries, err := w.setupConsumer()
	if err != nil {
		return err
	}

	w.spawnPool(ctx)
	w.dispatchDeliveries(ctx, deliveries)

	return nil
}

// Stop waits for in-flight jobs to finish.
func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	close(w.stopChan)
	w.wg.Wait()
	w.logger.Info("Worker stopped")
}
