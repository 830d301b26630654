package job

import (
	"time"

	"github.com/wanderplan/wanderplan/internal/trip"
)

// Status is the lifecycle state of a generation job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether the status is absorbing: once a job is completed
// or failed no further mutation is allowed.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Progress records the most recently entered pipeline stage and a
// human-readable description. Step advances monotonically, never regresses.
type Progress struct {
	Step    Stage  `json:"step"`
	Message string `json:"message"`
}

// Result is present only on completed jobs and hands off the itinerary id;
// the itinerary body lives in its own store under its own lifetime.
type Result struct {
	ItineraryID string `json:"itinerary_id"`
}

// Job is the mutable record of one itinerary generation attempt. It is
// created by the controller and from then on mutated exclusively by the
// pipeline runner that owns it.
type Job struct {
	ID          string
	ItineraryID string
	Request     trip.Request
	Status      Status
	Progress    Progress
	Result      *Result
	Error       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Clone returns a copy safe to hand to readers while the owning runner keeps
// mutating the stored record.
func (j *Job) Clone() *Job {
	c := *j
	if j.Result != nil {
		r := *j.Result
		c.Result = &r
	}
	return &c
}
