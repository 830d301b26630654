// Package pipeline executes the ordered generation stages for one job:
// flights, hotels, restaurants, activities, then completing. Stages within a
// job are strictly sequential; jobs run concurrently because each owns a
// disjoint store entry.
package pipeline

import (
	"context"

	"github.com/wanderplan/wanderplan/internal/travel"
)

// FlightSearcher finds flight options for the trip.
type FlightSearcher interface {
	SearchFlights(ctx context.Context, q travel.SearchQuery) ([]travel.FlightOption, error)
}

// HotelSearcher finds candidate stays at the destination.
type HotelSearcher interface {
	SearchHotels(ctx context.Context, q travel.SearchQuery) ([]travel.HotelOption, error)
}

// RestaurantSearcher finds dining suggestions matching the trip's interests.
type RestaurantSearcher interface {
	SearchRestaurants(ctx context.Context, q travel.SearchQuery) ([]travel.RestaurantOption, error)
}

// ActivitySearcher finds things to do matching the trip's interests.
type ActivitySearcher interface {
	SearchActivities(ctx context.Context, q travel.SearchQuery) ([]travel.ActivityOption, error)
}

// Collaborators bundles the external search dependencies one stage each.
type Collaborators struct {
	Flights     FlightSearcher
	Hotels      HotelSearcher
	Restaurants RestaurantSearcher
	Activities  ActivitySearcher
}
