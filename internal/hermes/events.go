package hermes

import "time"

// Subjects consumed and produced by wayfarer.
const (
	SubjectTranscriptRecognized = "voice.transcript.recognized"
	SubjectTranscriptError      = "voice.transcript.error"
	SubjectResponseSpeak        = "voice.response.speak"
	SubjectResponseCancel       = "voice.response.cancel"
	SubjectSpeakerEvents        = "voice.speaker.>"
	SubjectResponseRendered     = "voice.response.rendered"
	SubjectTripConfirmed        = "voice.trip.confirmed"
	SubjectSessionError         = "voice.session.error"
	SubjectRegistered           = "swarm.agent.wayfarer.registered"
)

// TranscriptEvent is one recognition result from the speech-to-text client.
type TranscriptEvent struct {
	SessionID  string    `json:"session_id"`
	Text       string    `json:"text"`
	Confidence float64   `json:"confidence,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// RecognitionErrorEvent reports a failure on the speech-to-text side,
// e.g. code "not-allowed" when the microphone is blocked.
type RecognitionErrorEvent struct {
	SessionID string `json:"session_id"`
	Code      string `json:"code"`
}

// SpeakRequest asks the text-to-speech client to say Text.
type SpeakRequest struct {
	SessionID   string    `json:"session_id"`
	UtteranceID string    `json:"utterance_id"`
	Text        string    `json:"text"`
	IssuedAt    time.Time `json:"issued_at"`
}

// CancelRequest stops an utterance that has been superseded.
type CancelRequest struct {
	SessionID   string `json:"session_id"`
	UtteranceID string `json:"utterance_id"`
}

// ResponseRendered records what the assistant said in reply to what.
type ResponseRendered struct {
	SessionID   string `json:"session_id"`
	UtteranceID string `json:"utterance_id,omitempty"`
	Transcript  string `json:"transcript"`
	Response    string `json:"response"`
	FromStage   string `json:"from_stage,omitempty"`
	Stage       string `json:"stage,omitempty"`
	Intent      string `json:"intent,omitempty"`
}

// TripConfirmed is announced when a plan reaches navigation.
type TripConfirmed struct {
	TripID        string    `json:"trip_id"`
	SessionID     string    `json:"session_id"`
	Destination   string    `json:"destination"`
	ArrivalTime   string    `json:"arrival_time,omitempty"`
	TripMinutes   int       `json:"trip_minutes"`
	AvoidHighways bool      `json:"avoid_highways"`
	PreferWellLit bool      `json:"prefer_well_lit"`
	NeedsBreaks   bool      `json:"needs_breaks"`
	ConfirmedAt   time.Time `json:"confirmed_at"`
}

// SessionError surfaces a collaborator failure to the client.
type SessionError struct {
	SessionID string `json:"session_id"`
	Source    string `json:"source"`
	Message   string `json:"message"`
	Detail    string `json:"detail,omitempty"`
}
