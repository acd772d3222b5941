package dialogue

// Stage is the position of a session in the trip-planning conversation.
type Stage string

const (
	StageIdle              Stage = "idle"
	StageAwaitTime         Stage = "await_time"
	StageAwaitWeather      Stage = "await_weather"
	StageAwaitBreaks       Stage = "await_breaks"
	StageAwaitConfirmation Stage = "await_confirmation"
	StageNavigating        Stage = "navigating"
)

// Stages lists every stage in conversation order.
var Stages = []Stage{
	StageIdle,
	StageAwaitTime,
	StageAwaitWeather,
	StageAwaitBreaks,
	StageAwaitConfirmation,
	StageNavigating,
}

// Valid reports whether s is one of the defined stages.
func (s Stage) Valid() bool {
	for _, st := range Stages {
		if s == st {
			return true
		}
	}
	return false
}

// WeatherPreference records how the route should account for conditions.
type WeatherPreference string

const (
	WeatherAny             WeatherPreference = "any"
	WeatherClearVisibility WeatherPreference = "clear_visibility"
)

// DrivingPreferences are the slots filled during planning.
// An empty ArrivalTime means no arrival time was requested.
type DrivingPreferences struct {
	AvoidHighways       bool              `json:"avoid_highways"`
	PreferWellLit       bool              `json:"prefer_well_lit"`
	NeedsFrequentBreaks bool              `json:"needs_frequent_breaks"`
	ArrivalTime         string            `json:"arrival_time,omitempty"`
	WeatherPreference   WeatherPreference `json:"weather_preference"`
}

func defaultPreferences() DrivingPreferences {
	return DrivingPreferences{WeatherPreference: WeatherAny}
}

// Context is the conversation state of one trip. TripMinutes is zero until
// a duration has been sampled.
type Context struct {
	IsPlanning  bool   `json:"is_planning"`
	Destination string `json:"destination,omitempty"`
	TripMinutes int    `json:"trip_minutes,omitempty"`
	Stage       Stage  `json:"stage"`
}
