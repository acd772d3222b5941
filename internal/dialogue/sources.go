package dialogue

import "math/rand"

// DurationSource supplies the trip length once the route preferences are
// known. A routing backend can replace the random default.
type DurationSource interface {
	TripMinutes() int
}

// UniformDuration draws a whole number of minutes from [Min, Max).
type UniformDuration struct {
	Min int
	Max int
}

// DefaultDuration matches the placeholder range used before real routing.
var DefaultDuration = UniformDuration{Min: 30, Max: 90}

func (u UniformDuration) TripMinutes() int {
	if u.Max <= u.Min {
		return u.Min
	}
	return u.Min + rand.Intn(u.Max-u.Min)
}

// FixedDuration always returns the same trip length.
type FixedDuration int

func (f FixedDuration) TripMinutes() int { return int(f) }

// WeatherSource reports the current condition, e.g. "raining".
type WeatherSource interface {
	Condition() string
}

// StaticWeather is a WeatherSource that never changes.
type StaticWeather string

func (w StaticWeather) Condition() string { return string(w) }
