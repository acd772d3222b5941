// Package compose renders the assistant's spoken replies. Every function is
// pure: it reads the values it is given and returns the literal text.
package compose

import (
	"fmt"
	"strings"

	"github.com/MikeSquared-Agency/wayfarer/internal/ranking"
)

// Tag names a dialogue reply template.
type Tag string

const (
	TagInitialPlanning   Tag = "initial_planning"
	TagWeatherCheck      Tag = "weather_check"
	TagBreakSuggestion   Tag = "break_suggestion"
	TagRouteConfirmation Tag = "route_confirmation"
	TagFinalConfirmation Tag = "final_confirmation"
	TagHelp              Tag = "help"
)

// Snapshot is the read-only view of a trip a template may draw from.
type Snapshot struct {
	Destination      string
	WeatherCondition string
	DurationMinutes  int
	AvoidHighways    bool
}

// Render fills the template named by tag. Unknown tags render the help text.
func Render(tag Tag, s Snapshot) string {
	switch tag {
	case TagInitialPlanning:
		return InitialPlanning(s.Destination)
	case TagWeatherCheck:
		return WeatherCheck(s.WeatherCondition)
	case TagBreakSuggestion:
		return BreakSuggestion(s.DurationMinutes)
	case TagRouteConfirmation:
		return RouteConfirmation(s.DurationMinutes, s.AvoidHighways)
	case TagFinalConfirmation:
		return FinalConfirmation
	default:
		return Help
	}
}

func InitialPlanning(destination string) string {
	return fmt.Sprintf("I'll help you get to %s. Would you like to arrive by a specific time?", destination)
}

func WeatherCheck(condition string) string {
	return fmt.Sprintf("I notice it's %s. Would you prefer a route with good visibility and well-lit roads?", condition)
}

func BreakSuggestion(minutes int) string {
	return fmt.Sprintf("This will be a %d minute trip. Would you like me to plan any breaks along the way?", minutes)
}

func RouteConfirmation(minutes int, avoidHighways bool) string {
	clause := ""
	if avoidHighways {
		clause = " avoiding highways"
	}
	return fmt.Sprintf("I've found a route that matches your preferences. It will take about %d minutes%s. Would you like to hear about potential stops?", minutes, clause)
}

const FinalConfirmation = "Great! I'll start navigation now. I'll notify you about breaks and conditions along the way."

// Help is the reply to anything the assistant cannot place.
const Help = "I'm sorry, I didn't understand that command. You can ask me to navigate somewhere, plan your day, find a place to eat, or help you explore for a specific number of hours."

const (
	NoRestaurants = "I couldn't find any restaurants matching your preferences at this time."
	NoDayPlan     = "I couldn't find any places to plan your day around right now."
)

// NoItinerary is the reply when nothing fits the exploration budget.
func NoItinerary(hours int) string {
	return fmt.Sprintf("I couldn't plan a suitable itinerary for %d hours.", hours)
}

// RestaurantRecommendation lists up to three picks, omitting entries that
// are not there.
func RestaurantRecommendation(picks []ranking.Place) string {
	if len(picks) == 0 {
		return NoRestaurants
	}
	var b strings.Builder
	fmt.Fprintf(&b, "I recommend these restaurants: 1. %s, known for excellent %s cuisine.", picks[0].Name, picks[0].Cuisine)
	switch {
	case len(picks) >= 3:
		fmt.Fprintf(&b, " 2. %s, and 3. %s.", picks[1].Name, picks[2].Name)
	case len(picks) == 2:
		fmt.Fprintf(&b, " 2. %s.", picks[1].Name)
	}
	b.WriteString(" These are selected based on your preferences and current availability.")
	return b.String()
}

// DayPlan describes up to three stops in order.
func DayPlan(stops []ranking.Place) string {
	if len(stops) == 0 {
		return NoDayPlan
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Here's your plan: Start with %s which is perfect for this time.", stops[0].Name)
	switch {
	case len(stops) >= 3:
		fmt.Fprintf(&b, " Then head to %s, and finish your day at %s.", stops[1].Name, stops[2].Name)
	case len(stops) == 2:
		fmt.Fprintf(&b, " Then head to %s.", stops[1].Name)
	}
	b.WriteString(" Each place has been chosen based on current crowds and ratings.")
	return b.String()
}

// Exploration describes a packed schedule; the second and third stops are
// mentioned only when present.
func Exploration(hours int, schedule []ranking.Place) string {
	if len(schedule) == 0 {
		return NoItinerary(hours)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "For your %d-hour exploration, I suggest: Start at %s (%d minutes)", hours, schedule[0].Name, schedule[0].TimeNeeded)
	if len(schedule) > 1 {
		fmt.Fprintf(&b, ", then visit %s (%d minutes)", schedule[1].Name, schedule[1].TimeNeeded)
	}
	if len(schedule) > 2 {
		fmt.Fprintf(&b, ", and if time permits, check out %s", schedule[2].Name)
	}
	b.WriteString(". This plan includes travel time between locations.")
	return b.String()
}
