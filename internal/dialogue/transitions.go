package dialogue

import (
	"github.com/MikeSquared-Agency/wayfarer/internal/compose"
	"github.com/MikeSquared-Agency/wayfarer/internal/intent"
)

// stageRules is the rule set consulted in each stage. Navigating has none:
// the trip is underway and only a reset starts a new one.
var stageRules = map[Stage]intent.RuleSet{
	StageIdle:              intent.Navigation,
	StageAwaitTime:         intent.ArrivalTime,
	StageAwaitWeather:      intent.WellLit,
	StageAwaitBreaks:       intent.Breaks,
	StageAwaitConfirmation: intent.Confirmation,
}

// acceptsRouteModifiers reports whether "avoid highways" style remarks are
// recorded in this stage.
func acceptsRouteModifiers(s Stage) bool {
	switch s {
	case StageAwaitWeather, StageAwaitBreaks, StageAwaitConfirmation:
		return true
	}
	return false
}

type transition struct {
	from   Stage
	intent intent.Kind
	apply  func(*Session, intent.Result) error
	to     Stage
	reply  compose.Tag
}

var transitions = []transition{
	{StageIdle, intent.KindNavigation, startTrip, StageAwaitTime, compose.TagInitialPlanning},
	{StageAwaitTime, intent.KindExplicitTime, setArrivalTime, StageAwaitWeather, compose.TagWeatherCheck},
	{StageAwaitTime, intent.KindNegativeTime, nil, StageAwaitWeather, compose.TagWeatherCheck},
	{StageAwaitWeather, intent.KindAffirmative, setWellLit(true), StageAwaitBreaks, compose.TagBreakSuggestion},
	{StageAwaitWeather, intent.KindNegative, setWellLit(false), StageAwaitBreaks, compose.TagBreakSuggestion},
	{StageAwaitBreaks, intent.KindAffirmative, setBreaks(true), StageAwaitConfirmation, compose.TagRouteConfirmation},
	{StageAwaitBreaks, intent.KindNegative, setBreaks(false), StageAwaitConfirmation, compose.TagRouteConfirmation},
	{StageAwaitConfirmation, intent.KindAffirmative, startNavigation, StageNavigating, compose.TagFinalConfirmation},
}

func lookup(from Stage, kind intent.Kind) (transition, bool) {
	for _, t := range transitions {
		if t.from == from && t.intent == kind {
			return t, true
		}
	}
	return transition{}, false
}

func startTrip(s *Session, res intent.Result) error {
	dest, err := intent.Destination(res)
	if err != nil {
		return err
	}
	s.Reset()
	s.ctx.IsPlanning = true
	s.ctx.Destination = dest
	return nil
}

func setArrivalTime(s *Session, res intent.Result) error {
	s.prefs.ArrivalTime = res.Group(0)
	return nil
}

func setWellLit(v bool) func(*Session, intent.Result) error {
	return func(s *Session, _ intent.Result) error {
		s.prefs.PreferWellLit = v
		if v {
			s.prefs.WeatherPreference = WeatherClearVisibility
		} else {
			s.prefs.WeatherPreference = WeatherAny
		}
		if s.ctx.TripMinutes == 0 {
			s.ctx.TripMinutes = s.durations.TripMinutes()
		}
		return nil
	}
}

func setBreaks(v bool) func(*Session, intent.Result) error {
	return func(s *Session, _ intent.Result) error {
		s.prefs.NeedsFrequentBreaks = v
		return nil
	}
}

func startNavigation(s *Session, _ intent.Result) error {
	s.ctx.IsPlanning = false
	return nil
}
