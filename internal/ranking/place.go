package ranking

import "strings"

// Period is a coarse time-of-day bucket used to look up busyness.
type Period string

const (
	Morning   Period = "morning"
	Afternoon Period = "afternoon"
	Evening   Period = "evening"
)

// PeriodForHour maps an hour of the day (0-23) to its busyness period.
func PeriodForHour(hour int) Period {
	switch {
	case hour < 12:
		return Morning
	case hour < 17:
		return Afternoon
	default:
		return Evening
	}
}

// ParsePeriod accepts "morning", "afternoon" or "evening" in any case.
func ParsePeriod(s string) (Period, bool) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case Morning, Afternoon, Evening:
		return p, true
	}
	return "", false
}

// Category values seen in the catalog. Not exhaustive.
const (
	CategoryPark       = "park"
	CategoryMuseum     = "museum"
	CategoryShopping   = "shopping"
	CategoryNature     = "nature"
	CategoryRestaurant = "restaurant"
)

type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Place is a read-only catalog entry. Attractions carry TimeNeeded,
// restaurants carry AvgMealTime, Cuisine and PriceLevel.
type Place struct {
	Name        string         `json:"name"`
	Category    string         `json:"category"`
	Rating      float64        `json:"rating"`
	Busyness    map[Period]int `json:"busyness"`
	TimeNeeded  int            `json:"time_needed,omitempty"`
	AvgMealTime int            `json:"avg_meal_time,omitempty"`
	Cuisine     string         `json:"cuisine,omitempty"`
	PriceLevel  int            `json:"price_level,omitempty"`
	Location    Location       `json:"location"`
}

// IsRestaurant reports whether the place belongs to the restaurant list.
func (p Place) IsRestaurant() bool {
	return p.Category == CategoryRestaurant
}

// BusynessAt returns the congestion score for a period, 0 when unknown.
func (p Place) BusynessAt(period Period) int {
	return p.Busyness[period]
}

// UserPreferences is external input describing what the user likes.
// MaxDistance and Home are informational and not used for ranking.
type UserPreferences struct {
	Cuisines      []string `json:"cuisines"`
	MaxPriceLevel int      `json:"max_price_level"`
	MaxDistance   int      `json:"max_distance"`
	Home          Location `json:"home"`
}

func (u UserPreferences) likes(cuisine string) bool {
	for _, c := range u.Cuisines {
		if strings.EqualFold(c, cuisine) {
			return true
		}
	}
	return false
}
