package trip

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() Request {
	return Request{
		TripType:      TypeRoundTrip,
		Origin:        "NYC",
		Destination:   "PAR",
		DepartureDate: MustDate("2025-03-15"),
		ReturnDate:    MustDate("2025-03-18"),
		Travelers:     2,
		TravelClass:   ClassEconomy,
		Interests:     "art, food",
		PriceRange:    PriceMid,
	}
}

func TestRequest_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(r *Request)
		wantField string
	}{
		{
			name:   "valid round trip",
			mutate: func(r *Request) {},
		},
		{
			name: "valid one way",
			mutate: func(r *Request) {
				r.TripType = TypeOneWay
				r.ReturnDate = Date{}
			},
		},
		{
			name:      "unknown trip type",
			mutate:    func(r *Request) { r.TripType = "multi_city" },
			wantField: "trip_type",
		},
		{
			name:      "empty origin",
			mutate:    func(r *Request) { r.Origin = "  " },
			wantField: "origin",
		},
		{
			name:      "empty destination",
			mutate:    func(r *Request) { r.Destination = "" },
			wantField: "destination",
		},
		{
			name:      "missing departure date",
			mutate:    func(r *Request) { r.DepartureDate = Date{} },
			wantField: "departure_date",
		},
		{
			name:      "round trip without return date",
			mutate:    func(r *Request) { r.ReturnDate = Date{} },
			wantField: "return_date",
		},
		{
			name: "return date before departure",
			mutate: func(r *Request) {
				r.ReturnDate = MustDate("2025-03-10")
			},
			wantField: "return_date",
		},
		{
			name: "return date equal to departure",
			mutate: func(r *Request) {
				r.ReturnDate = MustDate("2025-03-15")
			},
			wantField: "return_date",
		},
		{
			name: "one way with return date",
			mutate: func(r *Request) {
				r.TripType = TypeOneWay
			},
			wantField: "return_date",
		},
		{
			name:      "zero travelers",
			mutate:    func(r *Request) { r.Travelers = 0 },
			wantField: "travelers",
		},
		{
			name:      "negative travelers",
			mutate:    func(r *Request) { r.Travelers = -3 },
			wantField: "travelers",
		},
		{
			name:      "unknown travel class",
			mutate:    func(r *Request) { r.TravelClass = "cargo" },
			wantField: "travel_class",
		},
		{
			name:      "unknown price range",
			mutate:    func(r *Request) { r.PriceRange = "free" },
			wantField: "price_range",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)

			err := req.Validate()
			if tt.wantField == "" {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestRequest_Days(t *testing.T) {
	req := validRequest()
	assert.Equal(t, 4, req.Days(), "Mar 15 through Mar 18 inclusive is 4 days")
	assert.Equal(t, 3, req.Nights())

	oneWay := validRequest()
	oneWay.TripType = TypeOneWay
	oneWay.ReturnDate = Date{}
	assert.Equal(t, 1, oneWay.Days())
	assert.Equal(t, 0, oneWay.Nights())
}

func TestDate_JSONRoundTrip(t *testing.T) {
	d := MustDate("2025-03-15")
	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2025-03-15"`, string(data))

	var parsed Date
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Equal(t, d, parsed)

	var empty Date
	require.NoError(t, json.Unmarshal([]byte(`""`), &empty))
	assert.True(t, empty.IsZero())

	err = json.Unmarshal([]byte(`"15/03/2025"`), &parsed)
	require.Error(t, err)
}
