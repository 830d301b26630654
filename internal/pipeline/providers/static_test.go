package providers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanderplan/wanderplan/internal/travel"
	"github.com/wanderplan/wanderplan/internal/trip"
)

func query(interests string) travel.SearchQuery {
	return travel.SearchQuery{Request: trip.Request{
		TripType:      trip.TypeRoundTrip,
		Origin:        "NYC",
		Destination:   "PAR",
		DepartureDate: trip.MustDate("2025-03-15"),
		ReturnDate:    trip.MustDate("2025-03-18"),
		Travelers:     2,
		TravelClass:   trip.ClassEconomy,
		Interests:     interests,
		PriceRange:    trip.PriceMid,
	}}
}

func TestCatalog_SearchFlights(t *testing.T) {
	c := NewCatalog(0)

	flights, err := c.SearchFlights(context.Background(), query(""))
	require.NoError(t, err)
	require.Len(t, flights, 2, "round trip yields outbound and return legs")
	assert.False(t, flights[0].Return)
	assert.True(t, flights[1].Return)
	assert.Equal(t, "NYC", flights[0].Origin)
	assert.Equal(t, "PAR", flights[1].Origin)

	q := query("")
	q.Request.TripType = trip.TypeOneWay
	q.Request.ReturnDate = trip.Date{}
	flights, err = c.SearchFlights(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, flights, 1, "one way yields a single leg")
}

func TestCatalog_InterestsShapeResults(t *testing.T) {
	c := NewCatalog(0)
	ctx := context.Background()

	plain, err := c.SearchActivities(ctx, query(""))
	require.NoError(t, err)
	tuned, err := c.SearchActivities(ctx, query("art and history"))
	require.NoError(t, err)
	assert.Greater(t, len(tuned), len(plain))

	meals, err := c.SearchRestaurants(ctx, query("street food"))
	require.NoError(t, err)
	var foundTour bool
	for _, m := range meals {
		if m.Name == "Market Hall Tour & Lunch" {
			foundTour = true
		}
	}
	assert.True(t, foundTour)
}

func TestCatalog_HonorsContext(t *testing.T) {
	c := NewCatalog(time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.SearchHotels(ctx, query(""))
	assert.ErrorIs(t, err, context.Canceled)
}
