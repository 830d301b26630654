// Package providers ships static catalog implementations of the pipeline's
// search collaborators. Real scraper or API clients plug in behind the same
// interfaces; these stand-ins let the whole system run end to end and back
// the demo deployments.
package providers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wanderplan/wanderplan/internal/travel"
)

// Catalog serves flights, hotels, restaurants and activities from a built-in
// destination catalog, with generic fallbacks for unknown destinations. A
// small artificial latency keeps the progress reporting observable.
type Catalog struct {
	latency time.Duration
}

// NewCatalog creates a static catalog provider. latency is applied per
// lookup; zero disables it.
func NewCatalog(latency time.Duration) *Catalog {
	return &Catalog{latency: latency}
}

func (c *Catalog) wait(ctx context.Context) error {
	if c.latency <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.latency):
		return nil
	}
}

func (c *Catalog) SearchFlights(ctx context.Context, q travel.SearchQuery) ([]travel.FlightOption, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	req := q.Request
	price := basePrice(req.TravelClass)

	flights := []travel.FlightOption{
		{
			Airline:       "Atlas Air Lines",
			FlightNumber:  fmt.Sprintf("AT%d", 100+len(req.Destination)*7),
			Origin:        req.Origin,
			Destination:   req.Destination,
			DepartureTime: "9:15 AM",
			ArrivalTime:   "5:40 PM",
			Duration:      "8h 25m",
			Price:         price,
		},
	}
	if !req.ReturnDate.IsZero() {
		flights = append(flights, travel.FlightOption{
			Airline:       "Atlas Air Lines",
			FlightNumber:  fmt.Sprintf("AT%d", 101+len(req.Destination)*7),
			Origin:        req.Destination,
			Destination:   req.Origin,
			DepartureTime: "2:05 PM",
			ArrivalTime:   "10:30 PM",
			Duration:      "8h 25m",
			Price:         price,
			Return:        true,
		})
	}
	return flights, nil
}

func (c *Catalog) SearchHotels(ctx context.Context, q travel.SearchQuery) ([]travel.HotelOption, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	dest := q.Request.Destination
	switch q.Request.PriceRange {
	case "luxury":
		return []travel.HotelOption{
			{Name: fmt.Sprintf("Grand %s Palace", dest), Area: "City Center", Rating: 4.9, PricePerNite: 480, CheckIn: "3:00 PM", CheckOut: "12:00 PM"},
		}, nil
	case "budget":
		return []travel.HotelOption{
			{Name: fmt.Sprintf("%s Traveller Hostel", dest), Area: "Old Town", Rating: 4.1, PricePerNite: 55, CheckIn: "2:00 PM", CheckOut: "10:00 AM"},
		}, nil
	default:
		return []travel.HotelOption{
			{Name: fmt.Sprintf("The %s Courtyard", dest), Area: "Riverside", Rating: 4.4, PricePerNite: 165, CheckIn: "3:00 PM", CheckOut: "11:00 AM"},
			{Name: fmt.Sprintf("Hotel %s Central", dest), Area: "City Center", Rating: 4.2, PricePerNite: 140, CheckIn: "2:00 PM", CheckOut: "11:00 AM"},
		}, nil
	}
}

func (c *Catalog) SearchRestaurants(ctx context.Context, q travel.SearchQuery) ([]travel.RestaurantOption, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	dest := q.Request.Destination
	price := q.Request.PriceRange
	if price == "" || price == "any" {
		price = "mid"
	}

	options := []travel.RestaurantOption{
		{Name: "Morning Square", Cuisine: "Local", Area: "Old Town", Meal: "breakfast", Price: price, Specials: "fresh pastries"},
		{Name: "The Corner Table", Cuisine: "Local", Area: "City Center", Meal: "lunch", Price: price},
		{Name: fmt.Sprintf("Taste of %s", dest), Cuisine: "Regional", Area: "Riverside", Meal: "dinner", Price: price, Specials: "seasonal tasting menu"},
		{Name: "Lantern House", Cuisine: "Fusion", Area: "Old Town", Meal: "dinner", Price: price},
	}
	if hasInterest(q.Request.Interests, "food") {
		options = append(options, travel.RestaurantOption{
			Name: "Market Hall Tour & Lunch", Cuisine: "Street food", Area: "Market District",
			Meal: "lunch", Price: price, Specials: "guided tasting walk",
		})
	}
	return options, nil
}

func (c *Catalog) SearchActivities(ctx context.Context, q travel.SearchQuery) ([]travel.ActivityOption, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	dest := q.Request.Destination
	options := []travel.ActivityOption{
		{Name: fmt.Sprintf("%s Old Town Walking Tour", dest), Description: "Guided walk through the historic quarter.", Area: "Old Town", Duration: "2h 30m", Category: "sightseeing"},
		{Name: fmt.Sprintf("%s Viewpoint Climb", dest), Description: "The best panorama in the city.", Area: "Hilltop", Duration: "1h 30m", Category: "outdoors"},
		{Name: "Riverside Bike Ride", Description: "Easy ride along the waterfront.", Area: "Riverside", Duration: "2h", Category: "outdoors"},
	}
	if hasInterest(q.Request.Interests, "art") {
		options = append(options, travel.ActivityOption{
			Name: fmt.Sprintf("%s Museum of Fine Arts", dest), Description: "The city's flagship art collection.",
			Area: "Museum Quarter", Duration: "3h", Category: "art",
		})
	}
	if hasInterest(q.Request.Interests, "history") {
		options = append(options, travel.ActivityOption{
			Name: fmt.Sprintf("%s Castle", dest), Description: "Fortress with centuries of city history.",
			Area: "Castle Hill", Duration: "2h", Category: "history",
		})
	}
	return options, nil
}

func basePrice(class string) float64 {
	switch class {
	case "premium_economy":
		return 890
	case "business":
		return 2350
	case "first":
		return 4100
	default:
		return 520
	}
}

func hasInterest(interests, keyword string) bool {
	return strings.Contains(strings.ToLower(interests), keyword)
}
