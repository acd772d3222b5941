package processor

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/wayfarer/internal/assistant"
	"github.com/MikeSquared-Agency/wayfarer/internal/compose"
	"github.com/MikeSquared-Agency/wayfarer/internal/dialogue"
	"github.com/MikeSquared-Agency/wayfarer/internal/hermes"
	"github.com/MikeSquared-Agency/wayfarer/internal/intent"
	"github.com/MikeSquared-Agency/wayfarer/internal/ranking"
	"github.com/MikeSquared-Agency/wayfarer/internal/speaker"
	"github.com/MikeSquared-Agency/wayfarer/internal/store"
)

// ErrEmptyUtterance is returned for transcripts with no text.
var ErrEmptyUtterance = errors.New("empty utterance")

// Sessions gives serialized access to dialogue sessions by id.
type Sessions interface {
	Do(ctx context.Context, id string, fn func(*dialogue.Session)) error
	DoExisting(ctx context.Context, id string, fn func(*dialogue.Session)) error
}

// Answerer handles place commands spoken outside a trip plan.
type Answerer interface {
	Answer(ctx context.Context, utterance string) (assistant.Plan, bool, error)
}

type TripStore interface {
	SaveTrip(ctx context.Context, t store.Trip) (store.Trip, error)
}

type Publisher interface {
	Publish(subject string, data any) error
}

// Outcome summarizes what one utterance did to its session.
type Outcome string

const (
	OutcomeAdvanced Outcome = "advanced"
	OutcomeReprompt Outcome = "reprompt"
	OutcomePlace    Outcome = "place"
	OutcomeHelp     Outcome = "help"
)

// Result is the outcome of one transcript cycle.
type Result struct {
	SessionID   string          `json:"session_id"`
	Transcript  string          `json:"transcript"`
	Response    string          `json:"response"`
	From        dialogue.Stage  `json:"from_stage"`
	Stage       dialogue.Stage  `json:"stage"`
	Intent      intent.Kind     `json:"intent,omitempty"`
	Outcome     Outcome         `json:"outcome"`
	UtteranceID string          `json:"utterance_id,omitempty"`
	Places      []ranking.Place `json:"places,omitempty"`
	TripID      string          `json:"trip_id,omitempty"`
}

// Processor runs one classify/transition/respond cycle per transcript.
// Trips and publisher are optional.
type Processor struct {
	sessions Sessions
	planner  Answerer
	speaker  speaker.Speaker
	trips    TripStore
	pub      Publisher
	logger   *slog.Logger
}

func New(sessions Sessions, planner Answerer, sp speaker.Speaker, trips TripStore, pub Publisher, logger *slog.Logger) *Processor {
	return &Processor{
		sessions: sessions,
		planner:  planner,
		speaker:  sp,
		trips:    trips,
		pub:      pub,
		logger:   logger,
	}
}

// HandleTranscript is the NATS handler for voice.transcript.recognized.
// Unknown session ids start a new session.
func (p *Processor) HandleTranscript(subject string, data []byte) {
	var evt hermes.TranscriptEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		p.logger.Error("failed to parse transcript event", "subject", subject, "error", err)
		return
	}
	if evt.SessionID == "" {
		p.logger.Warn("transcript event without session id", "subject", subject)
		return
	}

	if _, err := p.Process(context.Background(), evt.SessionID, evt.Text); err != nil && !errors.Is(err, ErrEmptyUtterance) {
		p.logger.Error("transcript processing failed", "session_id", evt.SessionID, "error", err)
	}
}

// HandleRecognitionError is the NATS handler for voice.transcript.error.
func (p *Processor) HandleRecognitionError(subject string, data []byte) {
	var evt hermes.RecognitionErrorEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		p.logger.Error("failed to parse recognition error", "subject", subject, "error", err)
		return
	}
	p.surface(evt.SessionID, "recognition", compose.RecognitionError(evt.Code), evt.Code)
}

// OnSpeakerEvent receives playback signals. Only errors are acted on.
func (p *Processor) OnSpeakerEvent(evt speaker.Event) {
	switch evt.Kind {
	case speaker.EventError:
		p.surface(evt.SessionID, "speaker", compose.SpeakFailed, evt.Reason)
	case speaker.EventEnded:
		p.logger.Debug("utterance ended",
			"session_id", evt.SessionID,
			"utterance_id", evt.UtteranceID,
			"interrupted", evt.Interrupted,
		)
	}
}

// Process handles an utterance for a session, creating the session if needed.
func (p *Processor) Process(ctx context.Context, sessionID, text string) (Result, error) {
	return p.process(ctx, p.sessions.Do, sessionID, text)
}

// ProcessExisting is Process for sessions that must already exist; it
// returns the registry's not-found error otherwise.
func (p *Processor) ProcessExisting(ctx context.Context, sessionID, text string) (Result, error) {
	return p.process(ctx, p.sessions.DoExisting, sessionID, text)
}

type doFunc func(ctx context.Context, id string, fn func(*dialogue.Session)) error

func (p *Processor) process(ctx context.Context, do doFunc, sessionID, text string) (Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{}, ErrEmptyUtterance
	}

	var (
		res  Result
		trip *store.Trip
	)
	err := do(ctx, sessionID, func(s *dialogue.Session) {
		res = p.respond(ctx, s, text)

		if res.From != dialogue.StageNavigating && res.Stage == dialogue.StageNavigating {
			t := tripFromSession(s)
			trip = &t
		}

		// Speak while the session is held so replies leave in utterance order.
		id, err := p.speaker.Speak(ctx, sessionID, res.Response)
		if err != nil {
			p.surface(sessionID, "speaker", compose.SpeakFailed, err.Error())
			return
		}
		res.UtteranceID = id
	})
	if err != nil {
		return Result{}, err
	}

	p.logger.Info("utterance processed",
		"session_id", sessionID,
		"from", res.From,
		"stage", res.Stage,
		"intent", res.Intent,
		"outcome", res.Outcome,
	)

	if trip != nil {
		res.TripID = p.confirmTrip(ctx, *trip)
	}
	p.publish(hermes.SubjectResponseRendered, hermes.ResponseRendered{
		SessionID:   sessionID,
		UtteranceID: res.UtteranceID,
		Transcript:  text,
		Response:    res.Response,
		FromStage:   string(res.From),
		Stage:       string(res.Stage),
		Intent:      string(res.Intent),
	})
	return res, nil
}

// respond advances the dialogue, falling back to place commands when an
// idle session hears something other than a navigation request.
func (p *Processor) respond(ctx context.Context, s *dialogue.Session, text string) Result {
	reply := s.Handle(text)
	res := Result{
		SessionID:  s.ID(),
		Transcript: text,
		Response:   reply.Text,
		From:       reply.From,
		Stage:      reply.To,
		Intent:     reply.Intent,
		Outcome:    OutcomeAdvanced,
	}
	if !dialogue.IsUnrecognized(reply) {
		return res
	}

	res.Outcome = OutcomeReprompt
	if reply.From != dialogue.StageIdle {
		return res
	}

	res.Outcome = OutcomeHelp
	if p.planner == nil {
		return res
	}
	plan, ok, err := p.planner.Answer(ctx, text)
	if !ok {
		return res
	}
	if err != nil {
		p.logger.Error("place command failed", "session_id", s.ID(), "kind", plan.Kind, "error", err)
		return res
	}
	if errors.Is(plan.Err, ranking.ErrEmptyResultSet) {
		p.logger.Info("place command found nothing", "session_id", s.ID(), "kind", plan.Kind)
	}
	res.Response = plan.Response
	res.Intent = plan.Kind
	res.Places = plan.Places
	res.Outcome = OutcomePlace
	return res
}

func tripFromSession(s *dialogue.Session) store.Trip {
	c, prefs := s.Context(), s.Preferences()
	return store.Trip{
		SessionID:     s.ID(),
		Destination:   c.Destination,
		ArrivalTime:   prefs.ArrivalTime,
		TripMinutes:   c.TripMinutes,
		AvoidHighways: prefs.AvoidHighways,
		PreferWellLit: prefs.PreferWellLit,
		NeedsBreaks:   prefs.NeedsFrequentBreaks,
		Weather:       string(prefs.WeatherPreference),
		ConfirmedAt:   time.Now().UTC(),
	}
}

// confirmTrip persists and announces a finished plan. Failures are logged;
// navigation has already started for the user.
func (p *Processor) confirmTrip(ctx context.Context, t store.Trip) string {
	if p.trips != nil {
		saved, err := p.trips.SaveTrip(ctx, t)
		if err != nil {
			p.logger.Error("failed to store trip", "session_id", t.SessionID, "error", err)
		} else {
			t = saved
		}
	}

	var tripID string
	if t.ID != uuid.Nil {
		tripID = t.ID.String()
	}

	p.publish(hermes.SubjectTripConfirmed, hermes.TripConfirmed{
		TripID:        tripID,
		SessionID:     t.SessionID,
		Destination:   t.Destination,
		ArrivalTime:   t.ArrivalTime,
		TripMinutes:   t.TripMinutes,
		AvoidHighways: t.AvoidHighways,
		PreferWellLit: t.PreferWellLit,
		NeedsBreaks:   t.NeedsBreaks,
		ConfirmedAt:   t.ConfirmedAt,
	})
	p.logger.Info("trip confirmed", "session_id", t.SessionID, "trip_id", tripID, "destination", t.Destination)
	return tripID
}

func (p *Processor) surface(sessionID, source, message, detail string) {
	p.logger.Error("session error",
		"session_id", sessionID,
		"source", source,
		"message", message,
		"detail", detail,
	)
	p.publish(hermes.SubjectSessionError, hermes.SessionError{
		SessionID: sessionID,
		Source:    source,
		Message:   message,
		Detail:    detail,
	})
}

func (p *Processor) publish(subject string, data any) {
	if p.pub == nil {
		return
	}
	if err := p.pub.Publish(subject, data); err != nil {
		p.logger.Warn("failed to publish", "subject", subject, "error", err)
	}
}
