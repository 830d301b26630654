package trip

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Trip type constants
const (
	TypeRoundTrip = "round_trip"
	TypeOneWay    = "one_way"
)

// Travel class constants
const (
	ClassEconomy  = "economy"
	ClassPremium  = "premium_economy"
	ClassBusiness = "business"
	ClassFirst    = "first"
)

// Price range tiers
const (
	PriceBudget   = "budget"
	PriceMid      = "mid"
	PriceLuxury   = "luxury"
	PriceAnything = "any"
)

// DateLayout is the wire format for trip dates.
const DateLayout = "2006-01-02"

// Date is a calendar date without a time component. It marshals as YYYY-MM-DD.
type Date struct {
	time.Time
}

// ParseDate parses a YYYY-MM-DD string into a Date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return Date{Time: t}, nil
}

// MustDate parses s and panics on error. Intended for tests and static data.
func MustDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d.Time.IsZero()
}

// AddDays returns the date n days later.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.AddDate(0, 0, n)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(d.Format(DateLayout))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Request captures the immutable input of one itinerary generation attempt.
type Request struct {
	TripType      string `json:"trip_type"`
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureDate Date   `json:"departure_date"`
	ReturnDate    Date   `json:"return_date,omitempty"`
	Travelers     int    `json:"travelers"`
	TravelClass   string `json:"travel_class"`
	Interests     string `json:"interests,omitempty"`
	PriceRange    string `json:"price_range,omitempty"`
}

// ValidationError describes a rejected request field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %s: %s", e.Field, e.Reason)
}

// Validate checks the request invariants. A nil return means the request may
// enter the pipeline.
func (r *Request) Validate() error {
	switch r.TripType {
	case TypeRoundTrip, TypeOneWay:
	default:
		return &ValidationError{Field: "trip_type", Reason: fmt.Sprintf("must be %q or %q", TypeRoundTrip, TypeOneWay)}
	}

	if strings.TrimSpace(r.Origin) == "" {
		return &ValidationError{Field: "origin", Reason: "must not be empty"}
	}
	if strings.TrimSpace(r.Destination) == "" {
		return &ValidationError{Field: "destination", Reason: "must not be empty"}
	}

	if r.DepartureDate.IsZero() {
		return &ValidationError{Field: "departure_date", Reason: "is required"}
	}

	if r.TripType == TypeRoundTrip {
		if r.ReturnDate.IsZero() {
			return &ValidationError{Field: "return_date", Reason: "is required for round trips"}
		}
		if !r.ReturnDate.After(r.DepartureDate.Time) {
			return &ValidationError{Field: "return_date", Reason: "must be after departure_date"}
		}
	} else if !r.ReturnDate.IsZero() {
		return &ValidationError{Field: "return_date", Reason: "must not be set for one-way trips"}
	}

	if r.Travelers < 1 {
		return &ValidationError{Field: "travelers", Reason: "must be at least 1"}
	}

	switch r.TravelClass {
	case ClassEconomy, ClassPremium, ClassBusiness, ClassFirst:
	default:
		return &ValidationError{Field: "travel_class", Reason: "unknown travel class"}
	}

	switch r.PriceRange {
	case "", PriceBudget, PriceMid, PriceLuxury, PriceAnything:
	default:
		return &ValidationError{Field: "price_range", Reason: "unknown price range"}
	}

	return nil
}

// Days returns the number of calendar days the trip spans, departure through
// return inclusive. One-way trips span a single day.
func (r *Request) Days() int {
	if r.ReturnDate.IsZero() {
		return 1
	}
	return int(r.ReturnDate.Sub(r.DepartureDate.Time).Hours()/24) + 1
}

// Nights returns the number of hotel nights the trip requires.
func (r *Request) Nights() int {
	days := r.Days()
	if days <= 1 {
		return 0
	}
	return days - 1
}
