package handler

import (
	"log/slog"

	"github.com/wanderplan/wanderplan/internal/itinerary"
	"github.com/wanderplan/wanderplan/internal/job/store"
)

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger                 *slog.Logger
	Jobs                   store.Store
	Itineraries            itinerary.Store
	Dispatcher             Dispatcher
	PollingIntervalSeconds int
}

// JobHandler handles job-related HTTP requests
type JobHandler struct {
	logger          *slog.Logger
	jobs            store.Store
	dispatcher      Dispatcher
	pollingInterval int
}

// NewJobHandler creates a new JobHandler instance
func NewJobHandler(deps *Dependencies) *JobHandler {
	return &JobHandler{
		logger:          deps.Logger,
		jobs:            deps.Jobs,
		dispatcher:      deps.Dispatcher,
		pollingInterval: deps.PollingIntervalSeconds,
	}
}

// ItineraryHandler handles itinerary retrieval requests
type ItineraryHandler struct {
	logger      *slog.Logger
	itineraries itinerary.Store
}

// NewItineraryHandler creates a new ItineraryHandler instance
func NewItineraryHandler(deps *Dependencies) *ItineraryHandler {
	return &ItineraryHandler{
		logger:      deps.Logger,
		itineraries: deps.Itineraries,
	}
}
