package speaker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Synthesizer plays one utterance. Say blocks until playback finishes or ctx
// is cancelled.
type Synthesizer interface {
	Say(ctx context.Context, u Utterance) error
}

// Mailbox is an in-process Speaker backed by a blocking Synthesizer.
// Run must be running for anything to be played.
type Mailbox struct {
	synth   Synthesizer
	onEvent func(Event)
	logger  *slog.Logger
	timeout time.Duration

	mu      sync.Mutex
	pending *Utterance
	cancel  context.CancelFunc
	wake    chan struct{}
}

func NewMailbox(synth Synthesizer, onEvent func(Event), logger *slog.Logger) *Mailbox {
	if onEvent == nil {
		onEvent = func(Event) {}
	}
	return &Mailbox{
		synth:   synth,
		onEvent: onEvent,
		logger:  logger,
		wake:    make(chan struct{}, 1),
	}
}

// SetTimeout bounds each playback. A playback that runs past d is reported
// as an error. Call before Run.
func (m *Mailbox) SetTimeout(d time.Duration) {
	m.timeout = d
}

// Speak interrupts the utterance being played, drops any utterance still
// waiting, and queues text in its place.
func (m *Mailbox) Speak(_ context.Context, sessionID, text string) (string, error) {
	u := &Utterance{ID: uuid.NewString(), SessionID: sessionID, Text: text}

	m.mu.Lock()
	if m.cancel != nil {
		m.cancel()
	}
	if m.pending != nil {
		m.logger.Debug("utterance superseded before playback", "utterance_id", m.pending.ID)
	}
	m.pending = u
	m.mu.Unlock()

	select {
	case m.wake <- struct{}{}:
	default:
	}
	return u.ID, nil
}

// Run plays queued utterances until ctx is done.
func (m *Mailbox) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.wake:
		}

		m.mu.Lock()
		u := m.pending
		m.pending = nil
		if u == nil {
			m.mu.Unlock()
			continue
		}
		playCtx, cancel := context.WithCancel(ctx)
		if m.timeout > 0 {
			var stop context.CancelFunc
			playCtx, stop = context.WithTimeout(playCtx, m.timeout)
			inner := cancel
			cancel = func() { stop(); inner() }
		}
		m.cancel = cancel
		m.mu.Unlock()

		m.play(playCtx, *u)

		cancel()
		m.mu.Lock()
		m.cancel = nil
		m.mu.Unlock()
	}
}

func (m *Mailbox) play(ctx context.Context, u Utterance) {
	m.onEvent(Event{Kind: EventStarted, SessionID: u.SessionID, UtteranceID: u.ID, Text: u.Text})

	err := m.synth.Say(ctx, u)
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = fmt.Errorf("playback timed out after %s", m.timeout)
	}
	interrupted := ctx.Err() != nil && !errors.Is(ctx.Err(), context.DeadlineExceeded)

	if err != nil && !interrupted {
		m.logger.Error("speech synthesis failed", "utterance_id", u.ID, "error", err)
		m.onEvent(Event{Kind: EventError, SessionID: u.SessionID, UtteranceID: u.ID, Reason: err.Error()})
		return
	}
	m.onEvent(Event{Kind: EventEnded, SessionID: u.SessionID, UtteranceID: u.ID, Interrupted: interrupted})
}

// WriterSynthesizer "speaks" by writing the text to w, one line per reply.
type WriterSynthesizer struct {
	W      io.Writer
	Prefix string
}

func (w WriterSynthesizer) Say(ctx context.Context, u Utterance) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w.W, "%s%s\n", w.Prefix, u.Text); err != nil {
		return fmt.Errorf("write reply: %w", err)
	}
	return nil
}
