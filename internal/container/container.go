// Package container tracks overlay, supplement and scrub state of the
// player screen and gates the manager's play/pause intent while scrubbing.
package container

import (
	"sync"
	"time"

	"github.com/llehouerou/jellywaves/internal/playback"
)

// HideDelay is how long the overlay stays up after the last poke.
const HideDelay = 5 * time.Second

// Overlay is the visibility of the playback controls.
type Overlay int

const (
	OverlayHidden Overlay = iota
	OverlayVisible
	OverlayLocked // input locked, controls hidden
)

func (o Overlay) String() string {
	switch o {
	case OverlayHidden:
		return "hidden"
	case OverlayVisible:
		return "visible"
	case OverlayLocked:
		return "locked"
	}
	return "unknown"
}

// Supplement is the state of the side panel (chapters, queue, info).
type Supplement int

const (
	SupplementClosed Supplement = iota
	SupplementOpen
)

// Scrub is the state of the seek bar.
type Scrub int

const (
	ScrubIdle Scrub = iota
	ScrubScrubbing
)

// Controller is the part of the manager the container drives.
type Controller interface {
	RequestStatus() playback.RequestStatus
	SetPlaybackRequestStatus(status playback.RequestStatus)
	Seconds() time.Duration
	Seek(pos time.Duration)
}

var _ Controller = (*playback.Manager)(nil)

// State is the container state machine. All methods are safe for
// concurrent use.
type State struct {
	hideDelay time.Duration

	mu           sync.Mutex
	manager      Controller
	overlay      Overlay
	supplement   Supplement
	supplementID string
	scrub        Scrub
	scrubbed     time.Duration
	resumeStatus playback.RequestStatus
	timer        *time.Timer
	changed      chan struct{}
}

// New creates a container with the overlay hidden.
func New() *State {
	return &State{
		hideDelay: HideDelay,
		changed:   make(chan struct{}, 1),
	}
}

// SetManager binds the container to a manager. A scrub in progress is
// dropped without seeking.
func (s *State) SetManager(c Controller) {
	s.mu.Lock()
	s.manager = c
	s.scrub = ScrubIdle
	s.mu.Unlock()
	s.notify()
}

// Changed fires after any state change. Only one pending signal is kept.
func (s *State) Changed() <-chan struct{} {
	return s.changed
}

// Overlay returns the overlay visibility.
func (s *State) Overlay() Overlay {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overlay
}

// Supplement returns the supplement state and the id of the open one.
func (s *State) Supplement() (Supplement, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.supplement, s.supplementID
}

// Scrub returns the scrub state.
func (s *State) Scrub() Scrub {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scrub
}

// ScrubbedSeconds is the position to display: the scrub target while
// scrubbing, the manager position otherwise.
func (s *State) ScrubbedSeconds() time.Duration {
	s.mu.Lock()
	if s.scrub == ScrubScrubbing || s.manager == nil {
		defer s.mu.Unlock()
		return s.scrubbed
	}
	m := s.manager
	s.mu.Unlock()
	return m.Seconds()
}

// ShowOverlay shows the controls and arms the hide timer. Ignored while
// locked.
func (s *State) ShowOverlay() {
	s.mu.Lock()
	if s.overlay == OverlayLocked {
		s.mu.Unlock()
		return
	}
	s.overlay = OverlayVisible
	s.pokeLocked()
	s.mu.Unlock()
	s.notify()
}

// HideOverlay hides the controls. Ignored while locked.
func (s *State) HideOverlay() {
	s.mu.Lock()
	if s.overlay == OverlayLocked {
		s.mu.Unlock()
		return
	}
	s.overlay = OverlayHidden
	s.stopTimerLocked()
	s.mu.Unlock()
	s.notify()
}

// ToggleOverlay shows hidden controls and hides visible ones.
func (s *State) ToggleOverlay() {
	if s.Overlay() == OverlayVisible {
		s.HideOverlay()
		return
	}
	s.ShowOverlay()
}

// SetLocked locks or unlocks input. Locking hides the controls.
func (s *State) SetLocked(locked bool) {
	s.mu.Lock()
	s.stopTimerLocked()
	if locked {
		s.overlay = OverlayLocked
	} else if s.overlay == OverlayLocked {
		s.overlay = OverlayHidden
	}
	s.mu.Unlock()
	s.notify()
}

// Poke restarts the hide timer on user activity.
func (s *State) Poke() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pokeLocked()
}

// SelectSupplement opens the supplement id, or closes it when it is the one
// already open. An empty id closes any supplement.
func (s *State) SelectSupplement(id string) {
	s.mu.Lock()
	if id == "" || id == s.supplementID {
		s.supplement = SupplementClosed
		s.supplementID = ""
		s.pokeLocked()
	} else {
		s.supplement = SupplementOpen
		s.supplementID = id
		s.stopTimerLocked()
	}
	s.mu.Unlock()
	s.notify()
}

// BeginScrub pauses the manager and starts following the scrub position.
func (s *State) BeginScrub() {
	s.mu.Lock()
	m := s.manager
	if m == nil || s.scrub == ScrubScrubbing {
		s.mu.Unlock()
		return
	}
	s.scrub = ScrubScrubbing
	s.stopTimerLocked()
	s.mu.Unlock()

	status := m.RequestStatus()
	pos := m.Seconds()
	m.SetPlaybackRequestStatus(playback.RequestPaused)

	s.mu.Lock()
	s.resumeStatus = status
	s.scrubbed = pos
	s.mu.Unlock()
	s.notify()
}

// ScrubTo moves the scrub position without touching the manager.
func (s *State) ScrubTo(pos time.Duration) {
	s.mu.Lock()
	if s.scrub != ScrubScrubbing {
		s.mu.Unlock()
		return
	}
	s.scrubbed = max(pos, 0)
	s.mu.Unlock()
	s.notify()
}

// EndScrub seeks the manager once to the scrub position and restores the
// request status it had before the scrub.
func (s *State) EndScrub() {
	s.mu.Lock()
	m := s.manager
	if m == nil || s.scrub != ScrubScrubbing {
		s.mu.Unlock()
		return
	}
	s.scrub = ScrubIdle
	pos, status := s.scrubbed, s.resumeStatus
	s.pokeLocked()
	s.mu.Unlock()

	m.Seek(pos)
	m.SetPlaybackRequestStatus(status)
	s.notify()
}

func (s *State) pokeLocked() {
	if s.overlay != OverlayVisible || s.supplement == SupplementOpen || s.scrub == ScrubScrubbing {
		return
	}
	s.stopTimerLocked()
	s.timer = time.AfterFunc(s.hideDelay, s.autoHide)
}

func (s *State) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *State) autoHide() {
	s.mu.Lock()
	m := s.manager
	if s.overlay != OverlayVisible || s.supplement == SupplementOpen || s.scrub == ScrubScrubbing {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	if m != nil && m.RequestStatus() == playback.RequestPaused {
		return
	}

	s.mu.Lock()
	if s.overlay != OverlayVisible {
		s.mu.Unlock()
		return
	}
	s.overlay = OverlayHidden
	s.timer = nil
	s.mu.Unlock()
	s.notify()
}

func (s *State) notify() {
	select {
	case s.changed <- struct{}{}:
	default:
	}
}
