package dto

import (
	"github.com/wanderplan/wanderplan/internal/job"
)

// CreateJobResponse is returned from POST /jobs. The itinerary id is
// provisioned up front so clients can fetch the result by a known id once
// the job completes.
type CreateJobResponse struct {
	JobID                  string `json:"job_id"`
	ItineraryID            string `json:"itinerary_id"`
	PollingIntervalSeconds int    `json:"polling_interval_seconds"`
}

// ProgressDTO mirrors job.Progress on the wire; the step travels by name so
// clients can tolerate stages they do not know yet.
type ProgressDTO struct {
	Step    string `json:"step"`
	Message string `json:"message"`
}

// ResultDTO carries the itinerary handoff of a completed job.
type ResultDTO struct {
	ItineraryID string `json:"itinerary_id"`
}

// JobStatusResponse is returned from GET /jobs/{job_id}/status.
type JobStatusResponse struct {
	Status   string      `json:"status"`
	Progress ProgressDTO `json:"progress"`
	Result   *ResultDTO  `json:"result,omitempty"`
	Error    string      `json:"error,omitempty"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewJobStatusResponse builds the status view of a job record.
func NewJobStatusResponse(j *job.Job) JobStatusResponse {
	resp := JobStatusResponse{
		Status: string(j.Status),
		Progress: ProgressDTO{
			Step:    j.Progress.Step.String(),
			Message: j.Progress.Message,
		},
		Error: j.Error,
	}
	if j.Result != nil {
		resp.Result = &ResultDTO{ItineraryID: j.Result.ItineraryID}
	}
	return resp
}
