package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/MikeSquared-Agency/wayfarer/internal/dialogue"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type memorySnapshots struct {
	mu     sync.Mutex
	states map[string]dialogue.State
	saves  int
}

func newMemorySnapshots() *memorySnapshots {
	return &memorySnapshots{states: make(map[string]dialogue.State)}
}

func (m *memorySnapshots) Save(_ context.Context, st dialogue.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[st.ID] = st
	m.saves++
	return nil
}

func (m *memorySnapshots) Load(_ context.Context, id string) (dialogue.State, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[id]
	return st, ok, nil
}

func (m *memorySnapshots) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, id)
	return nil
}

func TestCreateAndDo(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(time.Minute, nil, discardLogger(), dialogue.WithDurationSource(dialogue.FixedDuration(40)))

	id := reg.Create(ctx)
	if id == "" {
		t.Fatal("empty id")
	}

	var reply dialogue.Reply
	if err := reg.DoExisting(ctx, id, func(s *dialogue.Session) {
		reply = s.Handle("take me to the zoo")
	}); err != nil {
		t.Fatalf("DoExisting: %v", err)
	}
	if reply.To != dialogue.StageAwaitTime {
		t.Errorf("stage = %s", reply.To)
	}

	st, err := reg.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if st.Context.Destination != "the zoo" {
		t.Errorf("destination = %q", st.Context.Destination)
	}
	if reg.Count() != 1 {
		t.Errorf("count = %d", reg.Count())
	}
}

func TestDoCreatesUnknownSession(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(time.Minute, nil, discardLogger())

	if err := reg.Do(ctx, "client-42", func(s *dialogue.Session) {
		if s.ID() != "client-42" {
			t.Errorf("id = %q", s.ID())
		}
	}); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if _, err := reg.Get(ctx, "client-42"); err != nil {
		t.Fatalf("Get: %v", err)
	}
}

func TestUnknownSession(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(time.Minute, nil, discardLogger())

	if _, err := reg.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get err = %v", err)
	}
	if err := reg.Reset(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Reset err = %v", err)
	}
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(time.Minute, nil, discardLogger())
	id := reg.Create(ctx)

	_ = reg.DoExisting(ctx, id, func(s *dialogue.Session) { s.Handle("drive to work") })
	if err := reg.Reset(ctx, id); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	st, _ := reg.Get(ctx, id)
	if st.Context.Stage != dialogue.StageIdle || st.Context.Destination != "" {
		t.Errorf("state = %+v", st.Context)
	}
}

func TestSnapshotRestore(t *testing.T) {
	ctx := context.Background()
	snaps := newMemorySnapshots()
	first := NewRegistry(time.Minute, snaps, discardLogger())
	id := first.Create(ctx)
	_ = first.DoExisting(ctx, id, func(s *dialogue.Session) { s.Handle("navigate to the harbor") })

	second := NewRegistry(time.Minute, snaps, discardLogger())
	st, err := second.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get after restart: %v", err)
	}
	if st.Context.Stage != dialogue.StageAwaitTime || st.Context.Destination != "the harbor" {
		t.Errorf("restored = %+v", st.Context)
	}

	if err := second.Delete(ctx, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := snaps.Load(ctx, id); ok {
		t.Error("snapshot survived delete")
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(time.Minute, nil, discardLogger())

	var wg sync.WaitGroup
	ids := []string{"a", "b", "c", "d"}
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_ = reg.Do(ctx, id, func(s *dialogue.Session) { s.Handle("take me to " + id) })
		}(id)
	}
	wg.Wait()

	for _, id := range ids {
		st, err := reg.Get(ctx, id)
		if err != nil {
			t.Fatalf("Get(%s): %v", id, err)
		}
		if st.Context.Destination != id {
			t.Errorf("session %s destination = %q", id, st.Context.Destination)
		}
	}
}

func TestExpiry(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(20*time.Millisecond, nil, discardLogger())
	id := reg.Create(ctx)

	time.Sleep(50 * time.Millisecond)
	if _, err := reg.Get(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteDuringUtterance(t *testing.T) {
	ctx := context.Background()
	snaps := newMemorySnapshots()
	reg := NewRegistry(time.Minute, snaps, discardLogger())
	id := reg.Create(ctx)

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- reg.DoExisting(ctx, id, func(s *dialogue.Session) {
			close(started)
			<-release
			s.Handle("take me to the museum")
		})
	}()
	<-started

	deleted := make(chan error, 1)
	go func() { deleted <- reg.Delete(ctx, id) }()
	time.Sleep(20 * time.Millisecond)
	close(release)

	if err := <-done; err != nil {
		t.Fatalf("DoExisting: %v", err)
	}
	if err := <-deleted; err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if reg.Count() != 0 {
		t.Errorf("count = %d, want 0", reg.Count())
	}
	if _, err := reg.Get(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get err = %v, want ErrNotFound", err)
	}
	if _, ok, _ := snaps.Load(ctx, id); ok {
		t.Error("snapshot written after delete")
	}
	if err := reg.DoExisting(ctx, id, func(*dialogue.Session) {}); !errors.Is(err, ErrNotFound) {
		t.Errorf("DoExisting after delete err = %v", err)
	}
}

// slowSnapshots blocks Load for one id until released.
type slowSnapshots struct {
	*memorySnapshots
	slowID  string
	loading chan struct{}
	release chan struct{}
}

func (s *slowSnapshots) Load(ctx context.Context, id string) (dialogue.State, bool, error) {
	if id == s.slowID {
		close(s.loading)
		<-s.release
	}
	return s.memorySnapshots.Load(ctx, id)
}

func TestSnapshotLoadDoesNotBlockLiveSessions(t *testing.T) {
	ctx := context.Background()
	snaps := &slowSnapshots{
		memorySnapshots: newMemorySnapshots(),
		slowID:          "cold",
		loading:         make(chan struct{}),
		release:         make(chan struct{}),
	}
	reg := NewRegistry(time.Minute, snaps, discardLogger())
	if err := reg.Do(ctx, "warm", func(*dialogue.Session) {}); err != nil {
		t.Fatalf("Do warm: %v", err)
	}

	go func() { _, _ = reg.Get(ctx, "cold") }()
	<-snaps.loading

	done := make(chan error, 1)
	go func() {
		done <- reg.DoExisting(ctx, "warm", func(s *dialogue.Session) { s.Handle("drive to the office") })
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("DoExisting warm: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("live session blocked behind a snapshot load")
	}
	close(snaps.release)
}
