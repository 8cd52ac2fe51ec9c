// Package audioroute tracks whether the process holds the audio output and
// relays interruptions (system sleep) to playback.
package audioroute

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// InterruptionKind tells whether an interruption starts or ends.
type InterruptionKind int

const (
	InterruptionBegan InterruptionKind = iota
	InterruptionEnded
)

func (k InterruptionKind) String() string {
	if k == InterruptionBegan {
		return "began"
	}
	return "ended"
}

// Interruption is delivered to every watcher.
type Interruption struct {
	Kind InterruptionKind
	// ShouldResume is set on an ended interruption when playback may
	// continue by itself.
	ShouldResume bool
}

// Backend acquires and releases the audio output.
type Backend interface {
	Activate() error
	Deactivate() error
}

// Service serialises activation of the audio route.
type Service struct {
	mu      sync.Mutex
	backend Backend
	active  bool

	watchMu  sync.Mutex
	watchers map[int]chan Interruption
	nextID   int

	log *logrus.Entry
}

// New creates a service over backend. A nil backend only tracks state.
func New(backend Backend) *Service {
	return &Service{
		backend:  backend,
		watchers: make(map[int]chan Interruption),
		log:      logrus.WithField("component", "audioroute"),
	}
}

// Configure activates the route for playback.
func (s *Service) Configure() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.backend != nil {
		if err := s.backend.Activate(); err != nil {
			s.active = false
			s.log.WithError(err).Error("failed to activate audio route")
			return err
		}
	}
	s.active = true
	s.log.Trace("audio route activated")
	return nil
}

// EnsureActive activates the route unless it already is.
func (s *Service) EnsureActive() bool {
	if s.IsActive() {
		return true
	}
	return s.Configure() == nil
}

// Deactivate releases the route. Does nothing when inactive.
func (s *Service) Deactivate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		s.log.Trace("audio route already inactive")
		return nil
	}
	if s.backend != nil {
		if err := s.backend.Deactivate(); err != nil {
			s.log.WithError(err).Error("failed to deactivate audio route")
			return err
		}
	}
	s.active = false
	s.log.Trace("audio route deactivated")
	return nil
}

// IsActive reports whether the route is held.
func (s *Service) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Watch returns a channel of interruptions and a function that stops the
// watch.
func (s *Service) Watch() (<-chan Interruption, func()) {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan Interruption, 4)
	s.watchers[id] = ch

	return ch, func() {
		s.watchMu.Lock()
		defer s.watchMu.Unlock()
		if c, ok := s.watchers[id]; ok {
			delete(s.watchers, id)
			close(c)
		}
	}
}

// Interrupt delivers i to every watcher without blocking.
func (s *Service) Interrupt(i Interruption) {
	s.log.WithField("kind", i.Kind).Debug("audio interruption")

	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	for _, ch := range s.watchers {
		select {
		case ch <- i:
		default:
		}
	}
}
