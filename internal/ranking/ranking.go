package ranking

import (
	"errors"
	"sort"
)

// TravelBufferMinutes is added to every stop when packing an itinerary.
const TravelBufferMinutes = 30

// minUsefulMinutes stops the packing scan once less time than this remains.
const minUsefulMinutes = 60

// ErrEmptyResultSet is returned when a filter or catalog query yields nothing.
var ErrEmptyResultSet = errors.New("empty result set")

// Rank returns a new slice ordered by rating descending, then by busyness
// for the period ascending. Equal keys keep their input order.
func Rank(places []Place, period Period) []Place {
	out := clone(places)
	sort.SliceStable(out, func(i, j int) bool {
		return isPlaceBetter(out[i], out[j], period)
	})
	return out
}

// ByRating returns a new slice ordered by rating descending only.
func ByRating(places []Place) []Place {
	out := clone(places)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Rating > out[j].Rating
	})
	return out
}

// isPlaceBetter returns true if a should be listed before b.
// Priority: rating > lower busyness for the period.
func isPlaceBetter(a, b Place, period Period) bool {
	if a.Rating != b.Rating {
		return a.Rating > b.Rating
	}
	return a.BusynessAt(period) < b.BusynessAt(period)
}

// FilterByPreference keeps restaurants whose cuisine is preferred and whose
// price level does not exceed the user's maximum.
func FilterByPreference(restaurants []Place, prefs UserPreferences) []Place {
	var out []Place
	for _, r := range restaurants {
		if prefs.likes(r.Cuisine) && r.PriceLevel <= prefs.MaxPriceLevel {
			out = append(out, r)
		}
	}
	return out
}

// PackByTimeBudget greedily walks attractions in the given order and keeps
// each one whose visit plus travel buffer still fits the remaining minutes.
// The scan stops once less than an hour remains. This is a greedy pass, not
// an optimal packing: a lower-rated short stop is never traded for a better
// combination later in the list.
func PackByTimeBudget(attractions []Place, totalMinutes int) []Place {
	var schedule []Place
	remaining := totalMinutes
	for _, p := range attractions {
		cost := p.TimeNeeded + TravelBufferMinutes
		if remaining >= cost {
			schedule = append(schedule, p)
			remaining -= cost
		}
		if remaining < minUsefulMinutes {
			break
		}
	}
	return schedule
}

// ScheduledMinutes sums the visit time plus travel buffer of a schedule.
func ScheduledMinutes(schedule []Place) int {
	total := 0
	for _, p := range schedule {
		total += p.TimeNeeded + TravelBufferMinutes
	}
	return total
}

// Top returns at most n leading entries.
func Top(places []Place, n int) []Place {
	if len(places) <= n {
		return places
	}
	return places[:n]
}

func clone(places []Place) []Place {
	out := make([]Place, len(places))
	copy(out, places)
	return out
}
