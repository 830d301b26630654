package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/wanderplan/wanderplan/internal/api/dto"
	"github.com/wanderplan/wanderplan/internal/job"
	"github.com/wanderplan/wanderplan/internal/trip"
)

// CreateJob handles POST /jobs
// Validates the trip request, provisions the job and itinerary ids, inserts
// the pending record and hands it to the pipeline. Returns immediately;
// exactly one pipeline execution is started per call.
func (h *JobHandler) CreateJob(c *gin.Context) {
	var req trip.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if err := req.Validate(); err != nil {
		h.logger.Warn("Rejected trip request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	now := time.Now()
	j := &job.Job{
		ID:          uuid.New().String(),
		ItineraryID: uuid.New().String(),
		Request:     req,
		Status:      job.StatusPending,
		Progress:    job.Progress{Step: job.StageFlights, Message: "Preparing..."},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.jobs.Create(c.Request.Context(), j); err != nil {
		h.logger.Error("Failed to create job", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create job"})
		return
	}

	if err := h.dispatcher.Dispatch(c.Request.Context(), j.ID); err != nil {
		h.logger.Error("Failed to dispatch job",
			slog.String("job_id", j.ID),
			slog.String("error", err.Error()),
		)
		// The record exists but no pipeline will run it; fail it so pollers
		// converge instead of waiting forever.
		_ = h.jobs.Fail(c.Request.Context(), j.ID, "itinerary generation could not be started")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to start itinerary generation"})
		return
	}

	h.logger.Info("Job created",
		slog.String("job_id", j.ID),
		slog.String("itinerary_id", j.ItineraryID),
		slog.String("destination", req.Destination),
	)

	c.JSON(http.StatusCreated, dto.CreateJobResponse{
		JobID:                  j.ID,
		ItineraryID:            j.ItineraryID,
		PollingIntervalSeconds: h.pollingInterval,
	})
}

// GetJobStatus handles GET /jobs/:job_id/status
// Pure read; safe to call at arbitrary frequency.
func (h *JobHandler) GetJobStatus(c *gin.Context) {
	jobID := c.Param("job_id")

	if _, err := uuid.Parse(jobID); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "job_id must be a valid UUID"})
		return
	}

	j, err := h.jobs.Get(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, job.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Job not found"})
			return
		}
		h.logger.Error("Failed to get job",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to get job"})
		return
	}

	c.JSON(http.StatusOK, dto.NewJobStatusResponse(j))
}
