package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanderplan/wanderplan/internal/api/dto"
	"github.com/wanderplan/wanderplan/internal/itinerary"
	"github.com/wanderplan/wanderplan/internal/job"
	"github.com/wanderplan/wanderplan/internal/job/store"
	"github.com/wanderplan/wanderplan/shared/logger"
)

type recordingDispatcher struct {
	jobIDs []string
	err    error
}

func (d *recordingDispatcher) Dispatch(_ context.Context, jobID string) error {
	if d.err != nil {
		return d.err
	}
	d.jobIDs = append(d.jobIDs, jobID)
	return nil
}

type handlerFixture struct {
	jobs        *store.MemoryStore
	itineraries *itinerary.MemoryStore
	dispatcher  *recordingDispatcher
	engine      *gin.Engine
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.NewDefault().Logger
	f := &handlerFixture{
		jobs:        store.NewMemoryStore(time.Hour, log),
		itineraries: itinerary.NewMemoryStore(),
		dispatcher:  &recordingDispatcher{},
	}

	deps := &Dependencies{
		Logger:                 log,
		Jobs:                   f.jobs,
		Itineraries:            f.itineraries,
		Dispatcher:             f.dispatcher,
		PollingIntervalSeconds: 2,
	}

	engine := gin.New()
	jobHandler := NewJobHandler(deps)
	itineraryHandler := NewItineraryHandler(deps)
	engine.POST("/jobs", jobHandler.CreateJob)
	engine.GET("/jobs/:job_id/status", jobHandler.GetJobStatus)
	engine.GET("/itineraries/:itinerary_id", itineraryHandler.GetItinerary)
	f.engine = engine

	return f
}

func validRequestBody() map[string]any {
	return map[string]any{
		"trip_type":      "round_trip",
		"origin":         "London",
		"destination":    "Paris",
		"departure_date": "2026-09-15",
		"return_date":    "2026-09-18",
		"travelers":      2,
		"travel_class":   "economy",
		"interests":      "art, food",
		"price_range":    "mid",
	}
}

func (f *handlerFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func TestCreateJob(t *testing.T) {
	f := newHandlerFixture(t)

	w := f.do(t, http.MethodPost, "/jobs", validRequestBody())
	require.Equal(t, http.StatusCreated, w.Code)

	var resp dto.CreateJobResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	_, err := uuid.Parse(resp.JobID)
	assert.NoError(t, err, "job_id should be a UUID")
	_, err = uuid.Parse(resp.ItineraryID)
	assert.NoError(t, err, "itinerary_id should be a UUID")
	assert.Equal(t, 2, resp.PollingIntervalSeconds)

	require.Len(t, f.dispatcher.jobIDs, 1, "exactly one pipeline execution per create")
	assert.Equal(t, resp.JobID, f.dispatcher.jobIDs[0])

	j, err := f.jobs.Get(t.Context(), resp.JobID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusPending, j.Status)
	assert.Equal(t, resp.ItineraryID, j.ItineraryID)
	assert.Equal(t, job.StageFlights, j.Progress.Step)
}

func TestCreateJobValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(body map[string]any)
	}{
		{
			name:   "missing destination",
			mutate: func(body map[string]any) { delete(body, "destination") },
		},
		{
			name:   "return before departure",
			mutate: func(body map[string]any) { body["return_date"] = "2026-09-10" },
		},
		{
			name:   "round trip without return date",
			mutate: func(body map[string]any) { delete(body, "return_date") },
		},
		{
			name:   "zero travelers",
			mutate: func(body map[string]any) { body["travelers"] = 0 },
		},
		{
			name:   "unknown travel class",
			mutate: func(body map[string]any) { body["travel_class"] = "steerage" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newHandlerFixture(t)
			body := validRequestBody()
			tt.mutate(body)

			w := f.do(t, http.MethodPost, "/jobs", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)

			assert.Empty(t, f.dispatcher.jobIDs, "rejected request must not start a pipeline")
			assert.Equal(t, 0, f.jobs.Len(), "rejected request must not leave a record")
		})
	}
}

func TestCreateJobDispatchFailure(t *testing.T) {
	f := newHandlerFixture(t)
	f.dispatcher.err = assert.AnError

	w := f.do(t, http.MethodPost, "/jobs", validRequestBody())
	require.Equal(t, http.StatusInternalServerError, w.Code)

	// The single record created by the request is marked failed so pollers
	// that somehow learned the id still converge.
	require.Equal(t, 1, f.jobs.Len())
}

func TestGetJobStatus(t *testing.T) {
	f := newHandlerFixture(t)

	w := f.do(t, http.MethodPost, "/jobs", validRequestBody())
	require.Equal(t, http.StatusCreated, w.Code)
	var created dto.CreateJobResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = f.do(t, http.MethodGet, "/jobs/"+created.JobID+"/status", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var status dto.JobStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, "pending", status.Status)
	assert.Equal(t, "flights", status.Progress.Step)
	assert.Nil(t, status.Result)
	assert.Empty(t, status.Error)
}

func TestGetJobStatusCompleted(t *testing.T) {
	f := newHandlerFixture(t)

	w := f.do(t, http.MethodPost, "/jobs", validRequestBody())
	require.Equal(t, http.StatusCreated, w.Code)
	var created dto.CreateJobResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	ctx := t.Context()
	require.NoError(t, f.jobs.MarkProcessing(ctx, created.JobID, job.StageCompleting, job.StageCompleting.Message()))
	require.NoError(t, f.jobs.Complete(ctx, created.JobID, created.ItineraryID))

	w = f.do(t, http.MethodGet, "/jobs/"+created.JobID+"/status", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var status dto.JobStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, "completed", status.Status)
	require.NotNil(t, status.Result)
	assert.Equal(t, created.ItineraryID, status.Result.ItineraryID)
}

func TestGetJobStatusNotFound(t *testing.T) {
	f := newHandlerFixture(t)

	w := f.do(t, http.MethodGet, "/jobs/"+uuid.New().String()+"/status", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetJobStatusInvalidID(t *testing.T) {
	f := newHandlerFixture(t)

	w := f.do(t, http.MethodGet, "/jobs/not-a-uuid/status", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetItinerary(t *testing.T) {
	f := newHandlerFixture(t)

	id := uuid.New().String()
	doc := &itinerary.Itinerary{
		ID:        id,
		Title:     "4-Day Trip to Paris",
		TotalDays: 1,
		Days: []itinerary.Day{
			{Number: 1, Date: "September 15", Year: 2026},
		},
	}
	require.NoError(t, f.itineraries.Put(t.Context(), doc))

	w := f.do(t, http.MethodGet, "/itineraries/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got itinerary.Itinerary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "4-Day Trip to Paris", got.Title)
	require.Len(t, got.Days, 1)
}

func TestGetItineraryNotFound(t *testing.T) {
	f := newHandlerFixture(t)

	w := f.do(t, http.MethodGet, "/itineraries/"+uuid.New().String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
