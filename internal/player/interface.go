// internal/player/interface.go
package player

import "time"

// Config describes what a backend should load.
type Config struct {
	URL            string
	Title          string
	Start          time.Duration
	AudioTrack     int // 1-based among audio tracks, 0 for backend default
	SubtitleTrack  int // 1-based among subtitle tracks, 0 for none
	Rate           float64
	NetworkCaching time.Duration
}

// EventKind tells which field of an Event is meaningful.
type EventKind int

const (
	EventState EventKind = iota
	EventPosition
	EventVideoSize
)

// Event is a raw report from a backend.
type Event struct {
	Kind     EventKind
	State    State
	Position time.Duration
	Width    int
	Height   int
	Err      error // set with StateError
}

// Interface is the contract every playback backend implements.
type Interface interface {
	Load(cfg Config) error
	Play() error
	Pause() error
	Stop() error
	Seek(pos time.Duration) error
	SetRate(rate float64) error
	SetAudioTrack(track int) error
	SetSubtitleTrack(track int) error
	State() State
	Position() time.Duration
	VideoSize() (width, height int)
	Events() <-chan Event
	Close() error
}

// Verify backends implement Interface at compile time.
var (
	_ Interface = (*Audio)(nil)
	_ Interface = (*MPV)(nil)
	_ Interface = (*Mock)(nil)
)

const eventBufferSize = 64

// emit sends e without blocking. Position and size events are dropped when
// the buffer is full; state events wait for room by discarding the oldest.
func emit(ch chan Event, e Event) {
	select {
	case ch <- e:
		return
	default:
	}
	if e.Kind != EventState {
		return
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- e:
	default:
	}
}
