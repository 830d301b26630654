// Package travel holds the per-stage search results the pipeline accumulates
// and the assembler merges. The concrete search providers live behind the
// pipeline's collaborator interfaces; these types are their common currency.
package travel

import "github.com/wanderplan/wanderplan/internal/trip"

// FlightOption is one bookable flight returned by the flight collaborator.
type FlightOption struct {
	Airline       string  `json:"airline"`
	FlightNumber  string  `json:"flight_number"`
	Origin        string  `json:"origin"`
	Destination   string  `json:"destination"`
	DepartureTime string  `json:"departure_time"`
	ArrivalTime   string  `json:"arrival_time"`
	Duration      string  `json:"duration"`
	Price         float64 `json:"price"`
	Return        bool    `json:"return"`
}

// HotelOption is one candidate stay returned by the hotel collaborator.
type HotelOption struct {
	Name         string  `json:"name"`
	Area         string  `json:"area"`
	Rating       float64 `json:"rating"`
	PricePerNite float64 `json:"price_per_night"`
	CheckIn      string  `json:"check_in"`
	CheckOut     string  `json:"check_out"`
}

// RestaurantOption is one dining suggestion returned by the restaurant
// collaborator.
type RestaurantOption struct {
	Name     string `json:"name"`
	Cuisine  string `json:"cuisine"`
	Area     string `json:"area"`
	Meal     string `json:"meal"` // breakfast | lunch | dinner
	Price    string `json:"price"`
	Specials string `json:"specials,omitempty"`
}

// ActivityOption is one thing to do returned by the activity collaborator.
type ActivityOption struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Area        string `json:"area"`
	Duration    string `json:"duration"`
	Category    string `json:"category"`
}

// SearchQuery carries the request fields the collaborators need.
type SearchQuery struct {
	Request trip.Request
}

// StageOutputs accumulates what each stage produced, keyed by stage. It is
// owned by a single pipeline run and never shared across jobs.
type StageOutputs struct {
	Flights     []FlightOption
	Hotels      []HotelOption
	Restaurants []RestaurantOption
	Activities  []ActivityOption
}

// Empty reports whether no stage produced any usable data.
func (o *StageOutputs) Empty() bool {
	return len(o.Flights) == 0 &&
		len(o.Hotels) == 0 &&
		len(o.Restaurants) == 0 &&
		len(o.Activities) == 0
}
