package itinerary

import (
	"fmt"
	"strings"

	"github.com/wanderplan/wanderplan/internal/travel"
	"github.com/wanderplan/wanderplan/internal/trip"
)

// Assembler merges per-stage search outputs into a contiguous day-by-day
// itinerary. Ordering within a day is a design policy, not a sort of the
// display-only time labels: arrival-day flights come first, hotel check-in
// sits mid-day, meals bracket the daytime activities, and the departure-day
// flight is always last.
type Assembler struct{}

// NewAssembler creates an Assembler.
func NewAssembler() *Assembler {
	return &Assembler{}
}

// Assemble builds the itinerary for the trip from the accumulated stage
// outputs. It fails only when every structural component is entirely absent;
// missing personalization never fails the job.
func (a *Assembler) Assemble(id string, req trip.Request, outputs *travel.StageOutputs) (*Itinerary, error) {
	if outputs == nil || outputs.Empty() {
		return nil, ErrNoUsableStageData
	}

	totalDays := req.Days()
	it := &Itinerary{
		ID:              id,
		Title:           fmt.Sprintf("%d-Day Trip to %s", totalDays, req.Destination),
		Personalization: personalization(req),
		TotalDays:       totalDays,
		Days:            make([]Day, 0, totalDays),
	}
	if totalDays == 1 {
		it.Title = fmt.Sprintf("A Day in %s", req.Destination)
	}

	b := &dayBuilder{req: req, outputs: outputs}
	for n := 1; n <= totalDays; n++ {
		date := req.DepartureDate.AddDays(n - 1)
		day := Day{
			Number: n,
			Date:   date.Format("Monday, January 2"),
			Year:   date.Year(),
		}

		switch {
		case n == 1:
			day.Activities = b.arrivalDay()
		case n == totalDays:
			day.Activities = b.departureDay()
		default:
			day.Activities = b.fullDay()
		}

		// No day is left empty; an itinerary with a blank page reads as
		// broken even when some collaborators returned nothing.
		if len(day.Activities) == 0 {
			day.Activities = []Activity{b.freeTime()}
		}

		it.Days = append(it.Days, day)
	}

	return it, nil
}

// personalization produces the display summary for the submitted interests,
// degrading to a generic line rather than ever failing.
func personalization(req trip.Request) string {
	interests := splitInterests(req.Interests)
	if len(interests) == 0 {
		return fmt.Sprintf("A balanced mix of sightseeing, food and local culture in %s.", req.Destination)
	}
	return fmt.Sprintf("Built around your interests in %s, with time left to wander %s.",
		strings.Join(interests, ", "), req.Destination)
}

func splitInterests(raw string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';'
	}) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// dayBuilder walks the stage outputs, handing out restaurants and activities
// in rotation so consecutive days do not repeat.
type dayBuilder struct {
	req         trip.Request
	outputs     *travel.StageOutputs
	activityIdx int
	mealIdx     map[string]int
}

func (b *dayBuilder) arrivalDay() []Activity {
	var acts []Activity

	if f := b.outboundFlight(); f != nil {
		acts = append(acts, Activity{
			Time:        f.DepartureTime,
			Title:       fmt.Sprintf("Flight %s %s to %s", f.Airline, f.FlightNumber, f.Destination),
			Description: fmt.Sprintf("Departs %s, arrives %s. Flight time %s.", f.Origin, f.ArrivalTime, f.Duration),
			Location:    fmt.Sprintf("%s Airport", f.Origin),
			Duration:    f.Duration,
			Type:        TypeFlight,
		})
		acts = append(acts, Activity{
			Time:        f.ArrivalTime,
			Title:       "Transfer to accommodation",
			Description: fmt.Sprintf("Make your way from the airport into %s.", b.req.Destination),
			Type:        TypeTransport,
		})
	}

	if h := b.hotel(); h != nil {
		acts = append(acts, Activity{
			Time:        h.CheckIn,
			Title:       fmt.Sprintf("Check in at %s", h.Name),
			Description: fmt.Sprintf("Settle in and drop your bags in %s.", h.Area),
			Location:    h.Area,
			Type:        TypeHotel,
		})
	}

	if act, ok := b.nextActivity(); ok {
		acts = append(acts, activityEntry("4:00 PM", act))
	}
	if meal, ok := b.nextMeal("dinner"); ok {
		acts = append(acts, mealEntry("7:30 PM", "Dinner", meal))
	}

	return acts
}

func (b *dayBuilder) fullDay() []Activity {
	var acts []Activity

	if meal, ok := b.nextMeal("breakfast"); ok {
		acts = append(acts, mealEntry("8:30 AM", "Breakfast", meal))
	}
	if act, ok := b.nextActivity(); ok {
		acts = append(acts, activityEntry("10:00 AM", act))
	}
	if meal, ok := b.nextMeal("lunch"); ok {
		acts = append(acts, mealEntry("1:00 PM", "Lunch", meal))
	}
	if act, ok := b.nextActivity(); ok {
		acts = append(acts, activityEntry("3:00 PM", act))
	}
	if meal, ok := b.nextMeal("dinner"); ok {
		acts = append(acts, mealEntry("7:30 PM", "Dinner", meal))
	}

	return acts
}

func (b *dayBuilder) departureDay() []Activity {
	var acts []Activity

	if meal, ok := b.nextMeal("breakfast"); ok {
		acts = append(acts, mealEntry("8:30 AM", "Breakfast", meal))
	}

	if h := b.hotel(); h != nil {
		acts = append(acts, Activity{
			Time:        h.CheckOut,
			Title:       fmt.Sprintf("Check out of %s", h.Name),
			Description: "Leave your luggage with the concierge if you have time to spare.",
			Location:    h.Area,
			Type:        TypeHotel,
		})
	}

	// The return flight always closes the trip.
	if f := b.returnFlight(); f != nil {
		acts = append(acts, Activity{
			Time:        f.DepartureTime,
			Title:       fmt.Sprintf("Flight %s %s home to %s", f.Airline, f.FlightNumber, f.Destination),
			Description: fmt.Sprintf("Departs %s, arrives %s. Flight time %s.", f.Origin, f.ArrivalTime, f.Duration),
			Location:    fmt.Sprintf("%s Airport", f.Origin),
			Duration:    f.Duration,
			Type:        TypeFlight,
		})
	} else if act, ok := b.nextActivity(); ok {
		acts = append(acts, activityEntry("11:00 AM", act))
	}

	return acts
}

func (b *dayBuilder) freeTime() Activity {
	return Activity{
		Time:        "All day",
		Title:       fmt.Sprintf("Explore %s at your own pace", b.req.Destination),
		Description: "Unstructured time to wander, shop or revisit a favourite spot.",
		Type:        TypeActivity,
	}
}

func (b *dayBuilder) outboundFlight() *travel.FlightOption {
	for i := range b.outputs.Flights {
		if !b.outputs.Flights[i].Return {
			return &b.outputs.Flights[i]
		}
	}
	return nil
}

func (b *dayBuilder) returnFlight() *travel.FlightOption {
	for i := range b.outputs.Flights {
		if b.outputs.Flights[i].Return {
			return &b.outputs.Flights[i]
		}
	}
	return nil
}

func (b *dayBuilder) hotel() *travel.HotelOption {
	if len(b.outputs.Hotels) == 0 {
		return nil
	}
	return &b.outputs.Hotels[0]
}

func (b *dayBuilder) nextActivity() (travel.ActivityOption, bool) {
	if len(b.outputs.Activities) == 0 {
		return travel.ActivityOption{}, false
	}
	act := b.outputs.Activities[b.activityIdx%len(b.outputs.Activities)]
	b.activityIdx++
	return act, true
}

func (b *dayBuilder) nextMeal(meal string) (travel.RestaurantOption, bool) {
	if len(b.outputs.Restaurants) == 0 {
		return travel.RestaurantOption{}, false
	}
	if b.mealIdx == nil {
		b.mealIdx = make(map[string]int)
	}

	var matches []travel.RestaurantOption
	for _, r := range b.outputs.Restaurants {
		if r.Meal == meal || r.Meal == "" {
			matches = append(matches, r)
		}
	}
	if len(matches) == 0 {
		matches = b.outputs.Restaurants
	}

	pick := matches[b.mealIdx[meal]%len(matches)]
	b.mealIdx[meal]++
	return pick, true
}

func activityEntry(timeLabel string, act travel.ActivityOption) Activity {
	return Activity{
		Time:        timeLabel,
		Title:       act.Name,
		Description: act.Description,
		Location:    act.Area,
		Duration:    act.Duration,
		Type:        TypeActivity,
	}
}

func mealEntry(timeLabel, slot string, r travel.RestaurantOption) Activity {
	desc := fmt.Sprintf("%s cuisine in %s (%s).", r.Cuisine, r.Area, r.Price)
	if r.Specials != "" {
		desc = fmt.Sprintf("%s cuisine in %s. Known for %s.", r.Cuisine, r.Area, r.Specials)
	}
	return Activity{
		Time:        timeLabel,
		Title:       fmt.Sprintf("%s at %s", slot, r.Name),
		Description: desc,
		Location:    r.Area,
		Type:        TypeMeal,
	}
}
