// Package session keeps live dialogue sessions keyed by id. Sessions that
// see no traffic for the configured TTL are dropped from memory; when a
// snapshot store is configured they can be revived from it.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/MikeSquared-Agency/wayfarer/internal/dialogue"
)

// ErrNotFound is returned for ids the registry has never seen or has expired.
var ErrNotFound = errors.New("session not found")

// Snapshots persists session state outside the process.
type Snapshots interface {
	Save(ctx context.Context, st dialogue.State) error
	Load(ctx context.Context, id string) (dialogue.State, bool, error)
	Delete(ctx context.Context, id string) error
}

type entry struct {
	mu      sync.Mutex
	session *dialogue.Session
	deleted bool // guarded by mu
}

type Registry struct {
	mu        sync.Mutex
	live      *cache.Cache
	snapshots Snapshots
	options   []dialogue.Option
	logger    *slog.Logger
}

// NewRegistry creates a registry. snapshots may be nil.
func NewRegistry(ttl time.Duration, snapshots Snapshots, logger *slog.Logger, opts ...dialogue.Option) *Registry {
	cleanup := ttl / 2
	if cleanup < time.Second {
		cleanup = time.Second
	}
	live := cache.New(ttl, cleanup)
	live.OnEvicted(func(id string, _ interface{}) {
		logger.Debug("session evicted", "session_id", id)
	})
	return &Registry{
		live:      live,
		snapshots: snapshots,
		options:   opts,
		logger:    logger,
	}
}

// Create starts a new idle session and returns its id.
func (r *Registry) Create(ctx context.Context) string {
	id := uuid.NewString()
	e := &entry{session: dialogue.New(id, r.options...)}

	r.mu.Lock()
	r.live.SetDefault(id, e)
	r.mu.Unlock()

	r.save(ctx, e.session)
	r.logger.Info("session created", "session_id", id)
	return id
}

// Do runs fn with exclusive access to the session, creating it when the id
// is unknown. The session state is snapshotted after fn returns.
func (r *Registry) Do(ctx context.Context, id string, fn func(*dialogue.Session)) error {
	return r.do(ctx, id, true, fn)
}

// DoExisting is like Do but fails with ErrNotFound for unknown ids.
func (r *Registry) DoExisting(ctx context.Context, id string, fn func(*dialogue.Session)) error {
	return r.do(ctx, id, false, fn)
}

// do looks the entry up again when it was deleted while waiting for its lock.
func (r *Registry) do(ctx context.Context, id string, create bool, fn func(*dialogue.Session)) error {
	for {
		e, err := r.entry(ctx, id, create)
		if err != nil {
			return err
		}
		if r.run(ctx, id, e, fn) {
			return nil
		}
		if !create {
			return ErrNotFound
		}
	}
}

// Get returns a copy of the session state.
func (r *Registry) Get(ctx context.Context, id string) (dialogue.State, error) {
	var st dialogue.State
	err := r.DoExisting(ctx, id, func(s *dialogue.Session) { st = s.State() })
	return st, err
}

// Reset returns the session to idle.
func (r *Registry) Reset(ctx context.Context, id string) error {
	return r.DoExisting(ctx, id, func(s *dialogue.Session) { s.Reset() })
}

// Delete forgets the session entirely. It waits for an utterance in flight
// on the session to finish.
func (r *Registry) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	v, ok := r.live.Get(id)
	r.mu.Unlock()
	if ok {
		e := v.(*entry)
		e.mu.Lock()
		defer e.mu.Unlock()
		e.deleted = true
	}

	r.mu.Lock()
	r.live.Delete(id)
	r.mu.Unlock()
	if r.snapshots == nil {
		return nil
	}
	return r.snapshots.Delete(ctx, id)
}

// Count returns the number of sessions held in memory.
func (r *Registry) Count() int {
	return r.live.ItemCount()
}

// run reports false, without calling fn, when e was deleted.
func (r *Registry) run(ctx context.Context, id string, e *entry, fn func(*dialogue.Session)) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return false
	}

	fn(e.session)

	// Refresh the TTL unless the id now belongs to a newer entry.
	r.mu.Lock()
	if v, ok := r.live.Get(id); !ok || v.(*entry) == e {
		r.live.SetDefault(id, e)
	}
	r.mu.Unlock()

	r.save(ctx, e.session)
	return true
}

// entry finds or builds the entry for id. The snapshot store is consulted
// without holding the registry lock.
func (r *Registry) entry(ctx context.Context, id string, create bool) (*entry, error) {
	r.mu.Lock()
	v, ok := r.live.Get(id)
	r.mu.Unlock()
	if ok {
		return v.(*entry), nil
	}

	var restored *dialogue.Session
	if r.snapshots != nil {
		st, ok, err := r.snapshots.Load(ctx, id)
		if err != nil {
			r.logger.Warn("session snapshot load failed", "session_id", id, "error", err)
		} else if ok {
			restored = dialogue.Restore(st, r.options...)
		}
	}
	if restored == nil && !create {
		return nil, ErrNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.live.Get(id); ok {
		return v.(*entry), nil
	}

	e := &entry{session: restored}
	if restored != nil {
		r.logger.Info("session restored", "session_id", id, "stage", restored.Stage())
	} else {
		e.session = dialogue.New(id, r.options...)
		r.logger.Info("session created", "session_id", id)
	}
	r.live.SetDefault(id, e)
	return e, nil
}

// save is best effort; failures are logged and the session stays live.
func (r *Registry) save(ctx context.Context, s *dialogue.Session) {
	if r.snapshots == nil {
		return
	}
	if err := r.snapshots.Save(ctx, s.State()); err != nil {
		r.logger.Warn("session snapshot save failed", "session_id", s.ID(), "error", err)
	}
}
