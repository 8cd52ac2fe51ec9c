package session

import (
	"context"
	"sync"
	"testing"
	"testing/synctest"
	"time"
)

// countingSource records when it was asked for the session.
type countingSource struct {
	reg   *Registry
	mu    sync.Mutex
	calls []time.Duration
	start time.Time
}

func (s *countingSource) Current() *Session {
	s.mu.Lock()
	s.calls = append(s.calls, time.Since(s.start))
	s.mu.Unlock()
	return s.reg.Current()
}

func TestCoordinator_SessionReady(t *testing.T) {
	reg := NewRegistry()
	reg.Set(&Session{UserID: "u1"})
	c := NewCoordinator(reg)

	if got := c.SignedIn(context.Background()); got != RootMain {
		t.Errorf("SignedIn() = %v, want main", got)
	}
}

func TestCoordinator_SessionLate(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		src := &countingSource{reg: NewRegistry(), start: time.Now()}
		go func() {
			time.Sleep(250 * time.Millisecond)
			src.reg.Set(&Session{UserID: "u1"})
		}()

		got := NewCoordinator(src).SignedIn(context.Background())
		if got != RootMain {
			t.Errorf("SignedIn() = %v, want main", got)
		}
		if elapsed := time.Since(src.start); elapsed != 600*time.Millisecond {
			t.Errorf("SignedIn() took %v, want 600ms", elapsed)
		}
	})
}

func TestCoordinator_FallsBackAfterRetries(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		src := &countingSource{reg: NewRegistry(), start: time.Now()}

		got := NewCoordinator(src).SignedIn(context.Background())
		if got != RootSelectUser {
			t.Errorf("SignedIn() = %v, want selectUser", got)
		}

		want := []time.Duration{0, 100, 300, 600, 1000, 1500}
		if len(src.calls) != len(want) {
			t.Fatalf("session checked %d times, want %d", len(src.calls), len(want))
		}
		for i, ms := range want {
			if src.calls[i] != ms*time.Millisecond {
				t.Errorf("check %d at %v, want %v", i, src.calls[i], ms*time.Millisecond)
			}
		}
	})
}

func TestCoordinator_Canceled(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(50 * time.Millisecond)
			cancel()
		}()

		start := time.Now()
		if got := NewCoordinator(NewRegistry()).SignedIn(ctx); got != RootSelectUser {
			t.Errorf("SignedIn() = %v, want selectUser", got)
		}
		if elapsed := time.Since(start); elapsed != 50*time.Millisecond {
			t.Errorf("SignedIn() took %v, want 50ms", elapsed)
		}
	})
}

func TestRegistry_Changed(t *testing.T) {
	reg := NewRegistry()
	reg.Set(&Session{UserID: "u1"})
	reg.Clear()

	select {
	case <-reg.Changed():
	default:
		t.Fatal("Changed() did not fire")
	}
	if reg.Current() != nil {
		t.Errorf("Current() = %+v after Clear, want nil", reg.Current())
	}
}
