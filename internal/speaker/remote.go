package speaker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/wayfarer/internal/hermes"
)

// Publisher is the subset of the hermes client the remote speaker needs.
type Publisher interface {
	Publish(subject string, data any) error
}

// Remote hands replies to an external text-to-speech client over NATS. It
// remembers the last utterance sent to each session and cancels it when a
// newer one arrives, until the client reports it ended.
type Remote struct {
	pub     Publisher
	onEvent func(Event)
	logger  *slog.Logger

	mu     sync.Mutex
	active map[string]string // session id -> utterance id
}

func NewRemote(pub Publisher, onEvent func(Event), logger *slog.Logger) *Remote {
	if onEvent == nil {
		onEvent = func(Event) {}
	}
	return &Remote{
		pub:     pub,
		onEvent: onEvent,
		logger:  logger,
		active:  make(map[string]string),
	}
}

func (r *Remote) Speak(_ context.Context, sessionID, text string) (string, error) {
	id := uuid.NewString()

	r.mu.Lock()
	prev := r.active[sessionID]
	r.active[sessionID] = id
	r.mu.Unlock()

	if prev != "" {
		if err := r.pub.Publish(hermes.SubjectResponseCancel, hermes.CancelRequest{
			SessionID:   sessionID,
			UtteranceID: prev,
		}); err != nil {
			r.logger.Warn("failed to publish cancel", "session_id", sessionID, "utterance_id", prev, "error", err)
		}
	}

	err := r.pub.Publish(hermes.SubjectResponseSpeak, hermes.SpeakRequest{
		SessionID:   sessionID,
		UtteranceID: id,
		Text:        text,
		IssuedAt:    time.Now().UTC(),
	})
	if err != nil {
		r.clear(sessionID, id)
		return "", fmt.Errorf("publish speak: %w", err)
	}
	return id, nil
}

// Active returns the utterance currently assigned to a session, if any.
func (r *Remote) Active(sessionID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.active[sessionID]
	return id, ok
}

// HandleEvent is the NATS handler for voice.speaker.* playback signals.
func (r *Remote) HandleEvent(subject string, data []byte) {
	var evt Event
	if err := json.Unmarshal(data, &evt); err != nil {
		r.logger.Error("failed to parse speaker event", "subject", subject, "error", err)
		return
	}
	if evt.Kind == "" {
		evt.Kind = kindFromSubject(subject)
	}
	if evt.Kind == "" {
		r.logger.Warn("speaker event without kind", "subject", subject)
		return
	}

	if evt.Kind == EventEnded || evt.Kind == EventError {
		r.clear(evt.SessionID, evt.UtteranceID)
	}
	r.onEvent(evt)
}

func (r *Remote) clear(sessionID, utteranceID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active[sessionID] == utteranceID {
		delete(r.active, sessionID)
	}
}
