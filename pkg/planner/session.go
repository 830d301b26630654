package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/wanderplan/wanderplan/internal/trip"
)

// DefaultStalenessThreshold bounds how old a cached pending job may be and
// still be resumed. Older records are discarded silently and a new job is
// created.
const DefaultStalenessThreshold = 10 * time.Minute

// ErrCreationInFlight is returned when StartOrResume is invoked while a
// previous invocation is still creating or polling a job.
var ErrCreationInFlight = errors.New("a job is already being created or polled by this session")

// Session ties together job creation, the pending-job cache, and the poll
// loop. At most one job is driven at a time per session.
type Session struct {
	client    *Client
	cache     CacheStore
	staleness time.Duration
	observer  ProgressObserver
	stall     time.Duration
	logger    *slog.Logger

	mu     sync.Mutex
	active bool
}

// SessionConfig holds session dependencies.
type SessionConfig struct {
	Client             *Client
	Cache              CacheStore
	StalenessThreshold time.Duration
	StallTimeout       time.Duration
	Observer           ProgressObserver
	Logger             *slog.Logger
}

// NewSession creates a session.
func NewSession(cfg *SessionConfig) *Session {
	staleness := cfg.StalenessThreshold
	if staleness <= 0 {
		staleness = DefaultStalenessThreshold
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		client:    cfg.Client,
		cache:     cfg.Cache,
		staleness: staleness,
		observer:  cfg.Observer,
		stall:     cfg.StallTimeout,
		logger:    logger,
	}
}

// StartOrResume resumes the cached pending job when one exists and is fresh,
// otherwise creates a new job, then polls it to a terminal outcome. The
// cache entry is cleared once the job terminates. A second concurrent call
// returns ErrCreationInFlight rather than creating a duplicate job.
func (s *Session) StartOrResume(ctx context.Context, req *trip.Request) (*Outcome, error) {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return nil, ErrCreationInFlight
	}
	s.active = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.active = false
		s.mu.Unlock()
	}()

	jobID, interval, err := s.resolveJob(ctx, req)
	if err != nil {
		return nil, err
	}

	poller := NewPoller(&PollerConfig{
		Client:       s.client,
		Interval:     interval,
		StallTimeout: s.stall,
		Observer:     s.observer,
		Logger:       s.logger,
	})

	outcome, err := poller.Poll(ctx, jobID)
	if err != nil {
		// A vanished job id means the cached record is useless; drop it so
		// the next attempt starts clean.
		if errors.Is(err, ErrNotFound) {
			s.clearCache()
		}
		return nil, err
	}

	s.clearCache()
	return outcome, nil
}

// resolveJob returns the job to poll: the cached one when fresh, or a newly
// created one. The pending record is persisted before polling begins so a
// crash between create and first poll still leaves a resumable trail.
func (s *Session) resolveJob(ctx context.Context, req *trip.Request) (jobID string, interval time.Duration, err error) {
	rec, err := s.cache.Load()
	if err != nil {
		s.logger.Warn("Failed to load pending job cache", slog.String("error", err.Error()))
	}

	if rec != nil {
		if time.Since(rec.StartedAt) < s.staleness {
			s.logger.Info("Resuming pending job",
				slog.String("job_id", rec.JobID),
				slog.Duration("age", time.Since(rec.StartedAt)),
			)
			return rec.JobID, 0, nil
		}
		// Stale records are discarded, not resumed and not an error.
		s.logger.Info("Discarding stale pending job",
			slog.String("job_id", rec.JobID),
			slog.Duration("age", time.Since(rec.StartedAt)),
		)
		s.clearCache()
	}

	result, err := s.client.CreateJob(ctx, req)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create job: %w", err)
	}

	if saveErr := s.cache.Save(&PendingJob{
		JobID:     result.JobID,
		Request:   *req,
		StartedAt: time.Now(),
	}); saveErr != nil {
		s.logger.Warn("Failed to persist pending job",
			slog.String("job_id", result.JobID),
			slog.String("error", saveErr.Error()),
		)
	}

	return result.JobID, time.Duration(result.PollingIntervalSeconds) * time.Second, nil
}

func (s *Session) clearCache() {
	if err := s.cache.Clear(); err != nil {
		s.logger.Warn("Failed to clear pending job cache", slog.String("error", err.Error()))
	}
}
