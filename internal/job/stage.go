package job

import (
	"fmt"
	"strings"
)

// Stage is one named step of the generation pipeline. Stages carry a total
// order: whether one stage precedes another is a property of the enumeration,
// not of any lookup table.
type Stage int

const (
	StageFlights Stage = iota
	StageHotels
	StageRestaurants
	StageActivities
	StageCompleting
)

var stageNames = [...]string{
	StageFlights:     "flights",
	StageHotels:      "hotels",
	StageRestaurants: "restaurants",
	StageActivities:  "activities",
	StageCompleting:  "completing",
}

// Stages returns the fixed pipeline order.
func Stages() []Stage {
	return []Stage{StageFlights, StageHotels, StageRestaurants, StageActivities, StageCompleting}
}

// ParseStage maps a stage name to its Stage. Unknown names return an error so
// callers can tolerate future stage names explicitly.
func ParseStage(name string) (Stage, error) {
	for s, n := range stageNames {
		if n == name {
			return Stage(s), nil
		}
	}
	return 0, fmt.Errorf("unknown stage %q", name)
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}

// MarshalJSON encodes the stage by name.
func (s Stage) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON decodes a stage from its name.
func (s *Stage) UnmarshalJSON(data []byte) error {
	name := strings.Trim(string(data), `"`)
	parsed, err := ParseStage(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Index returns the zero-based position of the stage in pipeline order.
func (s Stage) Index() int {
	return int(s)
}

// Before reports whether s runs before other in pipeline order.
func (s Stage) Before(other Stage) bool {
	return s < other
}

// Message returns the in-progress description shown to clients while the
// stage's collaborator is being invoked.
func (s Stage) Message() string {
	switch s {
	case StageFlights:
		return "Searching flights..."
	case StageHotels:
		return "Finding hotels..."
	case StageRestaurants:
		return "Picking restaurants..."
	case StageActivities:
		return "Curating activities..."
	case StageCompleting:
		return "Assembling your itinerary..."
	default:
		return "Working..."
	}
}
