// Package dialogue runs the trip-planning conversation for one user. Each
// Session is a small state machine driven by an explicit transition table;
// it is not safe for concurrent use and callers serialize utterances.
package dialogue

import (
	"errors"

	"github.com/MikeSquared-Agency/wayfarer/internal/compose"
	"github.com/MikeSquared-Agency/wayfarer/internal/intent"
)

// Reply is the outcome of one utterance.
// Err carries a recovered classification failure and is informational:
// Text already holds the reply to speak.
type Reply struct {
	Text   string      `json:"response"`
	Tag    compose.Tag `json:"tag,omitempty"`
	Intent intent.Kind `json:"intent,omitempty"`
	From   Stage       `json:"from"`
	To     Stage       `json:"stage"`
	Err    error       `json:"-"`
}

// Advanced reports whether the utterance moved the conversation forward.
func (r Reply) Advanced() bool {
	return r.Err == nil && r.From != r.To
}

type Session struct {
	id        string
	ctx       Context
	prefs     DrivingPreferences
	durations DurationSource
	weather   WeatherSource
}

// Option configures a Session.
type Option func(*Session)

func WithDurationSource(d DurationSource) Option {
	return func(s *Session) { s.durations = d }
}

func WithWeatherSource(w WeatherSource) Option {
	return func(s *Session) { s.weather = w }
}

// New creates an idle session.
func New(id string, opts ...Option) *Session {
	s := &Session{
		id:        id,
		durations: DefaultDuration,
		weather:   StaticWeather("raining"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Reset()
	return s
}

func (s *Session) ID() string                      { return s.id }
func (s *Session) Stage() Stage                    { return s.ctx.Stage }
func (s *Session) Context() Context                { return s.ctx }
func (s *Session) Preferences() DrivingPreferences { return s.prefs }

// Reset returns the session to idle and forgets the current trip.
func (s *Session) Reset() {
	s.ctx = Context{Stage: StageIdle}
	s.prefs = defaultPreferences()
}

// Handle classifies one utterance against the rules valid for the current
// stage, applies the matching transition and renders the reply. Unrecognized
// input leaves the stage untouched and returns the stage's re-prompt.
func (s *Session) Handle(utterance string) Reply {
	from := s.ctx.Stage
	normalized := intent.Normalize(utterance)

	if acceptsRouteModifiers(from) {
		if intent.AvoidHighways.Classify(normalized).Matched {
			s.prefs.AvoidHighways = true
		}
	}

	rules, ok := stageRules[from]
	if !ok {
		return s.reprompt(from, intent.ErrNoRecognizedIntent)
	}

	res := rules.Classify(normalized)
	if !res.Matched {
		return s.reprompt(from, intent.ErrNoRecognizedIntent)
	}

	t, ok := lookup(from, res.Kind)
	if !ok {
		return s.reprompt(from, intent.ErrNoRecognizedIntent)
	}
	if t.apply != nil {
		if err := t.apply(s, res); err != nil {
			return s.reprompt(from, err)
		}
	}
	s.ctx.Stage = t.to

	return Reply{
		Text:   compose.Render(t.reply, s.snapshot()),
		Tag:    t.reply,
		Intent: res.Kind,
		From:   from,
		To:     t.to,
	}
}

func (s *Session) reprompt(stage Stage, err error) Reply {
	return Reply{
		Text: Reprompt(stage),
		From: stage,
		To:   stage,
		Err:  err,
	}
}

// Reprompt is the clarification spoken when an utterance does not fit stage.
func Reprompt(stage Stage) string {
	switch stage {
	case StageAwaitTime:
		return compose.RepromptTime
	case StageAwaitWeather:
		return compose.RepromptWeather
	case StageAwaitBreaks:
		return compose.RepromptBreaks
	case StageAwaitConfirmation:
		return compose.RepromptConfirmation
	case StageNavigating:
		return compose.RepromptNavigating
	default:
		return compose.Help
	}
}

func (s *Session) snapshot() compose.Snapshot {
	return compose.Snapshot{
		Destination:      s.ctx.Destination,
		WeatherCondition: s.weather.Condition(),
		DurationMinutes:  s.ctx.TripMinutes,
		AvoidHighways:    s.prefs.AvoidHighways,
	}
}

// IsUnrecognized reports whether a reply came from input the session could
// not place, including navigation requests with nothing to navigate to.
func IsUnrecognized(r Reply) bool {
	return errors.Is(r.Err, intent.ErrNoRecognizedIntent) || errors.Is(r.Err, intent.ErrInvalidDestination)
}
