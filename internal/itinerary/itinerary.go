package itinerary

import (
	"context"
	"errors"
)

// Activity type tags. The set is fixed; clients render each tag differently.
const (
	TypeFlight    = "flight"
	TypeHotel     = "hotel"
	TypeMeal      = "meal"
	TypeActivity  = "activity"
	TypeTransport = "transport"
)

var (
	// ErrNotFound is returned for itinerary ids that are unknown or not
	// yet assembled.
	ErrNotFound = errors.New("itinerary not found")

	// ErrNoUsableStageData is returned when every structural component is
	// absent and no itinerary can be assembled at all.
	ErrNoUsableStageData = errors.New("no usable stage data to assemble an itinerary")
)

// Activity is one entry in a day's plan. Time is a display label, not a
// sortable timestamp; the order of activities within a day is established at
// assembly time and preserved thereafter.
type Activity struct {
	Time        string `json:"time"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location,omitempty"`
	Duration    string `json:"duration,omitempty"`
	Type        string `json:"type"`
}

// Day is one day of the itinerary. Numbers are 1-based and contiguous.
type Day struct {
	Number     int        `json:"day"`
	Date       string     `json:"date"`
	Year       int        `json:"year"`
	Activities []Activity `json:"activities"`
}

// Itinerary is the assembled day-by-day plan. It is addressed by its own id,
// independent of the job that produced it, so it may outlive the job record.
type Itinerary struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Personalization string `json:"personalization"`
	TotalDays       int    `json:"total_days"`
	Days            []Day  `json:"days"`
}

// Store holds assembled itineraries keyed by their id.
type Store interface {
	Put(ctx context.Context, it *Itinerary) error
	Get(ctx context.Context, id string) (*Itinerary, error)
}
