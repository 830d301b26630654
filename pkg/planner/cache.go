package planner

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/wanderplan/wanderplan/internal/trip"
)

// PendingJob is the durable record of the most recently started job. A
// session that restarts within the staleness window resumes polling this job
// instead of creating a duplicate.
type PendingJob struct {
	JobID     string       `json:"job_id"`
	Request   trip.Request `json:"request"`
	StartedAt time.Time    `json:"started_at"`
}

// CacheStore persists at most one pending job record.
type CacheStore interface {
	// Load returns the stored record, or nil when none exists.
	Load() (*PendingJob, error)
	Save(rec *PendingJob) error
	Clear() error
}

// FileStore keeps the pending job record in a single JSON file.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed cache at the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultCachePath places the record under the user cache directory.
func DefaultCachePath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve cache directory: %w", err)
	}
	return filepath.Join(dir, "wanderplan", "pending_job.json"), nil
}

func (s *FileStore) Load() (*PendingJob, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read pending job cache: %w", err)
	}

	var rec PendingJob
	if err := json.Unmarshal(data, &rec); err != nil {
		// A corrupt cache is treated as absent; the caller will create a
		// fresh job and overwrite it.
		return nil, nil
	}
	return &rec, nil
}

func (s *FileStore) Save(rec *PendingJob) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode pending job: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write pending job cache: %w", err)
	}
	return nil
}

func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to clear pending job cache: %w", err)
	}
	return nil
}
