package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/wanderplan/wanderplan/internal/job"
)

// MemoryStore keeps job records in process memory. It is the default store:
// job state does not survive a restart, which the client's stall timeout
// covers. Terminal records are retained for a TTL so late pollers still
// observe the final state, then evicted by the sweeper. Pending and
// processing records are never evicted.
type MemoryStore struct {
	mu     sync.RWMutex
	jobs   map[string]*job.Job
	ttl    time.Duration
	logger *slog.Logger
}

// NewMemoryStore creates an in-memory store. ttl bounds how long terminal
// records are retained; zero disables eviction.
func NewMemoryStore(ttl time.Duration, logger *slog.Logger) *MemoryStore {
	return &MemoryStore{
		jobs:   make(map[string]*job.Job),
		ttl:    ttl,
		logger: logger,
	}
}

func (s *MemoryStore) Create(ctx context.Context, j *job.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[j.ID]; exists {
		return fmt.Errorf("job %s already exists", j.ID)
	}
	s.jobs[j.ID] = j.Clone()
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*job.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.jobs[id]
	if !ok {
		return nil, job.ErrNotFound
	}
	return j.Clone(), nil
}

func (s *MemoryStore) MarkProcessing(ctx context.Context, id string, stage job.Stage, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return job.ErrNotFound
	}
	if j.Status.Terminal() {
		return job.ErrTerminalState
	}
	if stage.Before(j.Progress.Step) {
		return job.ErrProgressRegression
	}

	j.Status = job.StatusProcessing
	j.Progress = job.Progress{Step: stage, Message: message}
	j.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) Complete(ctx context.Context, id string, itineraryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return job.ErrNotFound
	}
	if j.Status.Terminal() {
		return job.ErrTerminalState
	}

	j.Status = job.StatusCompleted
	j.Result = &job.Result{ItineraryID: itineraryID}
	j.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) Fail(ctx context.Context, id string, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return job.ErrNotFound
	}
	if j.Status.Terminal() {
		return job.ErrTerminalState
	}

	j.Status = job.StatusFailed
	j.Error = reason
	j.UpdatedAt = time.Now()
	return nil
}

// StartSweeper evicts expired terminal records on the given interval until
// the context is canceled. It must be started explicitly at service start.
func (s *MemoryStore) StartSweeper(ctx context.Context, interval time.Duration) {
	if s.ttl <= 0 || interval <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				evicted := s.sweep(time.Now())
				if evicted > 0 {
					s.logger.Debug("Evicted expired job records",
						slog.Int("count", evicted),
					)
				}
			}
		}
	}()
}

func (s *MemoryStore) sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, j := range s.jobs {
		if j.Status.Terminal() && now.Sub(j.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
			evicted++
		}
	}
	return evicted
}

// Len reports the number of retained records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}
