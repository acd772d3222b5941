// Package speaker delivers replies to whatever renders them as audio. Every
// implementation keeps a single slot per listener: a new reply interrupts
// the one that is playing and replaces any that has not started yet.
package speaker

import (
	"context"
	"strings"
)

// Speaker accepts a reply for a session and returns the utterance id.
type Speaker interface {
	Speak(ctx context.Context, sessionID, text string) (string, error)
}

type EventKind string

const (
	EventStarted EventKind = "started"
	EventEnded   EventKind = "ended"
	EventError   EventKind = "error"
)

// Event is a playback signal. Events are informational and never feed back
// into the dialogue.
type Event struct {
	Kind        EventKind `json:"kind"`
	SessionID   string    `json:"session_id"`
	UtteranceID string    `json:"utterance_id"`
	Text        string    `json:"text,omitempty"`
	Interrupted bool      `json:"interrupted,omitempty"`
	Reason      string    `json:"reason,omitempty"`
}

// Utterance is one reply queued for playback.
type Utterance struct {
	ID        string `json:"utterance_id"`
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

// kindFromSubject reads the event kind from the last subject token, e.g.
// "voice.speaker.ended".
func kindFromSubject(subject string) EventKind {
	if i := strings.LastIndexByte(subject, '.'); i >= 0 {
		subject = subject[i+1:]
	}
	switch k := EventKind(subject); k {
	case EventStarted, EventEnded, EventError:
		return k
	}
	return ""
}
