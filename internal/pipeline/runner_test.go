package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanderplan/wanderplan/internal/itinerary"
	"github.com/wanderplan/wanderplan/internal/job"
	"github.com/wanderplan/wanderplan/internal/job/store"
	"github.com/wanderplan/wanderplan/internal/travel"
	"github.com/wanderplan/wanderplan/internal/trip"
	"github.com/wanderplan/wanderplan/shared/logger"
)

// fakeCollaborators lets each stage be scripted to succeed or fail and
// records the order stages were invoked in.
type fakeCollaborators struct {
	calls       []job.Stage
	flightsErr  error
	hotelsErr   error
	restoErr    error
	activityErr error
	empty       bool
}

func (f *fakeCollaborators) SearchFlights(ctx context.Context, q travel.SearchQuery) ([]travel.FlightOption, error) {
	f.calls = append(f.calls, job.StageFlights)
	if f.flightsErr != nil {
		return nil, f.flightsErr
	}
	if f.empty {
		return nil, nil
	}
	return []travel.FlightOption{
		{Airline: "Atlas", FlightNumber: "AT1", Origin: q.Request.Origin, Destination: q.Request.Destination, DepartureTime: "9:00 AM", ArrivalTime: "5:00 PM", Duration: "8h"},
		{Airline: "Atlas", FlightNumber: "AT2", Origin: q.Request.Destination, Destination: q.Request.Origin, DepartureTime: "1:00 PM", ArrivalTime: "9:00 PM", Duration: "8h", Return: true},
	}, nil
}

func (f *fakeCollaborators) SearchHotels(ctx context.Context, q travel.SearchQuery) ([]travel.HotelOption, error) {
	f.calls = append(f.calls, job.StageHotels)
	if f.hotelsErr != nil {
		return nil, f.hotelsErr
	}
	if f.empty {
		return nil, nil
	}
	return []travel.HotelOption{{Name: "The Courtyard", Area: "Riverside", CheckIn: "3:00 PM", CheckOut: "11:00 AM"}}, nil
}

func (f *fakeCollaborators) SearchRestaurants(ctx context.Context, q travel.SearchQuery) ([]travel.RestaurantOption, error) {
	f.calls = append(f.calls, job.StageRestaurants)
	if f.restoErr != nil {
		return nil, f.restoErr
	}
	if f.empty {
		return nil, nil
	}
	return []travel.RestaurantOption{{Name: "Corner Table", Cuisine: "Local", Area: "Center", Meal: "dinner", Price: "mid"}}, nil
}

func (f *fakeCollaborators) SearchActivities(ctx context.Context, q travel.SearchQuery) ([]travel.ActivityOption, error) {
	f.calls = append(f.calls, job.StageActivities)
	if f.activityErr != nil {
		return nil, f.activityErr
	}
	if f.empty {
		return nil, nil
	}
	return []travel.ActivityOption{{Name: "Old Town Walk", Description: "Guided walk.", Area: "Old Town", Duration: "2h"}}, nil
}

type runnerFixture struct {
	runner      *Runner
	jobs        *store.MemoryStore
	itineraries *itinerary.MemoryStore
	collab      *fakeCollaborators
	jobID       string
	itineraryID string
}

func newRunnerFixture(t *testing.T, collab *fakeCollaborators) *runnerFixture {
	t.Helper()

	log := logger.NewDefault().Logger
	jobs := store.NewMemoryStore(time.Hour, log)
	itineraries := itinerary.NewMemoryStore()

	jobID := uuid.New().String()
	itineraryID := uuid.New().String()
	now := time.Now()
	j := &job.Job{
		ID:          jobID,
		ItineraryID: itineraryID,
		Request: trip.Request{
			TripType:      trip.TypeRoundTrip,
			Origin:        "NYC",
			Destination:   "PAR",
			DepartureDate: trip.MustDate("2025-03-15"),
			ReturnDate:    trip.MustDate("2025-03-18"),
			Travelers:     2,
			TravelClass:   trip.ClassEconomy,
		},
		Status:    job.StatusPending,
		Progress:  job.Progress{Step: job.StageFlights, Message: "Preparing..."},
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, jobs.Create(context.Background(), j))

	runner := NewRunner(&Config{
		Jobs:          jobs,
		Itineraries:   itineraries,
		Collaborators: Collaborators{Flights: collab, Hotels: collab, Restaurants: collab, Activities: collab},
		StageTimeout:  time.Second,
		Logger:        log,
	})

	return &runnerFixture{
		runner:      runner,
		jobs:        jobs,
		itineraries: itineraries,
		collab:      collab,
		jobID:       jobID,
		itineraryID: itineraryID,
	}
}

func TestRunner_HappyPath(t *testing.T) {
	ctx := context.Background()
	fx := newRunnerFixture(t, &fakeCollaborators{})

	require.NoError(t, fx.runner.Run(ctx, fx.jobID))

	// Stages ran in the fixed order.
	assert.Equal(t, []job.Stage{job.StageFlights, job.StageHotels, job.StageRestaurants, job.StageActivities}, fx.collab.calls)

	got, err := fx.jobs.Get(ctx, fx.jobID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusCompleted, got.Status)
	require.NotNil(t, got.Result)
	assert.Equal(t, fx.itineraryID, got.Result.ItineraryID)
	assert.Empty(t, got.Error)

	// The itinerary landed in the slot provisioned at creation.
	it, err := fx.itineraries.Get(ctx, fx.itineraryID)
	require.NoError(t, err)
	assert.Equal(t, 4, it.TotalDays)
	for _, day := range it.Days {
		assert.NotEmpty(t, day.Activities)
	}
}

func TestRunner_StageFailureStopsPipeline(t *testing.T) {
	ctx := context.Background()
	fx := newRunnerFixture(t, &fakeCollaborators{hotelsErr: errors.New("upstream timeout")})

	err := fx.runner.Run(ctx, fx.jobID)
	require.Error(t, err)

	var stageErr *job.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, job.StageHotels, stageErr.Stage)

	// Later stages never ran.
	assert.Equal(t, []job.Stage{job.StageFlights, job.StageHotels}, fx.collab.calls)

	got, getErr := fx.jobs.Get(ctx, fx.jobID)
	require.NoError(t, getErr)
	assert.Equal(t, job.StatusFailed, got.Status)
	assert.Contains(t, got.Error, "hotels", "failure message names the stage")
	assert.Nil(t, got.Result)

	// No itinerary was stored.
	_, itErr := fx.itineraries.Get(ctx, fx.itineraryID)
	assert.ErrorIs(t, itErr, itinerary.ErrNotFound)
}

func TestRunner_EmptyOutputsFailAssembly(t *testing.T) {
	ctx := context.Background()
	fx := newRunnerFixture(t, &fakeCollaborators{empty: true})

	err := fx.runner.Run(ctx, fx.jobID)
	require.Error(t, err)
	assert.ErrorIs(t, err, itinerary.ErrNoUsableStageData)

	got, getErr := fx.jobs.Get(ctx, fx.jobID)
	require.NoError(t, getErr)
	assert.Equal(t, job.StatusFailed, got.Status)
	assert.Contains(t, got.Error, "completing")
}

func TestRunner_TerminalJobIsSkipped(t *testing.T) {
	ctx := context.Background()
	fx := newRunnerFixture(t, &fakeCollaborators{})
	require.NoError(t, fx.jobs.Fail(ctx, fx.jobID, "already failed"))

	// A redelivered id for a terminal job is a no-op, not an error.
	require.NoError(t, fx.runner.Run(ctx, fx.jobID))
	assert.Empty(t, fx.collab.calls)

	got, err := fx.jobs.Get(ctx, fx.jobID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusFailed, got.Status)
	assert.Equal(t, "already failed", got.Error)
}

func TestRunner_UnknownJob(t *testing.T) {
	fx := newRunnerFixture(t, &fakeCollaborators{})

	err := fx.runner.Run(context.Background(), uuid.New().String())
	assert.ErrorIs(t, err, job.ErrNotFound)
}

func TestRunner_ProgressAdvancesMonotonically(t *testing.T) {
	ctx := context.Background()
	fx := newRunnerFixture(t, &fakeCollaborators{})

	// Observe progress concurrently with the run; the step index must never
	// move backwards between consecutive reads.
	done := make(chan struct{})
	var regressions int
	go func() {
		defer close(done)
		last := -1
		for {
			got, err := fx.jobs.Get(ctx, fx.jobID)
			if err == nil {
				idx := got.Progress.Step.Index()
				if idx < last {
					regressions++
				}
				last = idx
				if got.Status.Terminal() {
					return
				}
			}
			time.Sleep(time.Millisecond)
		}
	}()

	require.NoError(t, fx.runner.Run(ctx, fx.jobID))
	<-done
	assert.Zero(t, regressions, "observed step index regressed")
}
