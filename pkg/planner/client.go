// Package planner is the client side of the itinerary job protocol: job
// creation with bounded retry, status polling, and a durable pending-job
// cache that lets an interrupted session resume instead of submitting a
// duplicate job.
package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/wanderplan/wanderplan/internal/itinerary"
	"github.com/wanderplan/wanderplan/internal/trip"
)

const (
	defaultRetryAttempts = 3
	defaultRetryDelay    = 2 * time.Second
)

// ErrNotFound is returned for job or itinerary ids the server does not know.
// Not retryable for that id.
var ErrNotFound = errors.New("not found")

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Transient reports whether the failure is worth retrying. Client errors are
// deterministic and never retried.
func (e *APIError) Transient() bool {
	return e.StatusCode >= 500
}

// Config holds client configuration.
type Config struct {
	BaseURL       string
	HTTPClient    *http.Client
	RetryAttempts int
	RetryDelay    time.Duration
	Logger        *slog.Logger
}

// Client talks to the itinerary job API.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	retryAttempts int
	retryDelay    time.Duration
	logger        *slog.Logger
}

// CreateJobResult is the server's response to a successful job creation.
type CreateJobResult struct {
	JobID                  string `json:"job_id"`
	ItineraryID            string `json:"itinerary_id"`
	PollingIntervalSeconds int    `json:"polling_interval_seconds"`
}

// Progress is the stage position reported by a status poll.
type Progress struct {
	Step    string `json:"step"`
	Message string `json:"message"`
}

// JobStatus is one observed snapshot of a job.
type JobStatus struct {
	Status   string   `json:"status"`
	Progress Progress `json:"progress"`
	Result   *struct {
		ItineraryID string `json:"itinerary_id"`
	} `json:"result,omitempty"`
	Error string `json:"error,omitempty"`
}

// Terminal reports whether the job reached an absorbing state.
func (s *JobStatus) Terminal() bool {
	return s.Status == "completed" || s.Status == "failed"
}

// NewClient creates a client for the given API base URL.
func NewClient(cfg *Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	attempts := cfg.RetryAttempts
	if attempts <= 0 {
		attempts = defaultRetryAttempts
	}
	delay := cfg.RetryDelay
	if delay <= 0 {
		delay = defaultRetryDelay
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:    httpClient,
		retryAttempts: attempts,
		retryDelay:    delay,
		logger:        logger,
	}
}

// CreateJob submits a trip request. Transient failures (network errors and
// 5xx responses) are retried up to the configured bound with a fixed delay;
// validation rejections are returned on the first attempt.
func (c *Client) CreateJob(ctx context.Context, req *trip.Request) (*CreateJobResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode trip request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= c.retryAttempts; attempt++ {
		var result CreateJobResult
		err := c.do(ctx, http.MethodPost, "/jobs", body, http.StatusCreated, &result)
		if err == nil {
			return &result, nil
		}

		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.Transient() {
			return nil, err
		}
		lastErr = err

		if attempt < c.retryAttempts {
			c.logger.Warn("Job creation failed, retrying",
				slog.Int("attempt", attempt),
				slog.Int("max_attempts", c.retryAttempts),
				slog.String("error", err.Error()),
			)
			if err := sleep(ctx, c.retryDelay); err != nil {
				return nil, err
			}
		}
	}

	return nil, fmt.Errorf("job creation failed after %d attempts: %w", c.retryAttempts, lastErr)
}

// JobStatus fetches the current snapshot of a job.
func (c *Client) JobStatus(ctx context.Context, jobID string) (*JobStatus, error) {
	var status JobStatus
	if err := c.do(ctx, http.MethodGet, "/jobs/"+jobID+"/status", nil, http.StatusOK, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Itinerary fetches an assembled itinerary by its id.
func (c *Client) Itinerary(ctx context.Context, itineraryID string) (*itinerary.Itinerary, error) {
	var it itinerary.Itinerary
	if err := c.do(ctx, http.MethodGet, "/itineraries/"+itineraryID, nil, http.StatusOK, &it); err != nil {
		return nil, err
	}
	return &it, nil
}

// do performs one request and decodes the body into out on the wanted status.
func (c *Client) do(ctx context.Context, method, path string, body []byte, wantStatus int, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != wantStatus {
		var errBody struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		if errBody.Error == "" {
			errBody.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: errBody.Error}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// sleep waits for d or until the context is canceled.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
