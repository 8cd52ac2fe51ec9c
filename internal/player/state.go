// internal/player/state.go
package player

// State is what a backend reports about its current media.
//
//	┌──────┐  load   ┌─────────┐         ┌───────────┐
//	│ Idle │ ──────▶ │ Opening │ ──────▶ │ Buffering │
//	└──────┘         └─────────┘         └───────────┘
//	    ▲                                   │     ▲
//	    │ stop                    ready     │     │ cache underrun
//	    │                                   ▼     │
//	    │           ┌────────┐  pause  ┌─────────┐
//	    └────────── │ Paused │ ◀─────▶ │ Playing │
//	                └────────┘  play   └─────────┘
//	                                        │
//	                                        ▼
//	                               Ended or Error
//
// Ended and Error stay until the next Load or Stop.
type State int

const (
	StateIdle State = iota
	StateOpening
	StateBuffering
	StatePlaying
	StatePaused
	StateEnded
	StateError
)

// String returns the state name for debugging.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateOpening:
		return "Opening"
	case StateBuffering:
		return "Buffering"
	case StatePlaying:
		return "Playing"
	case StatePaused:
		return "Paused"
	case StateEnded:
		return "Ended"
	case StateError:
		return "Error"
	default:
		return "Unknown"
	}
}

// IsActive returns true if media is loaded and not finished.
func (s State) IsActive() bool {
	switch s {
	case StateOpening, StateBuffering, StatePlaying, StatePaused:
		return true
	default:
		return false
	}
}

// IsLoading returns true while the backend waits for data.
func (s State) IsLoading() bool {
	return s == StateOpening || s == StateBuffering
}

// CanPause returns true if the state allows pausing.
func (s State) CanPause() bool {
	return s == StatePlaying || s == StateBuffering
}

// CanResume returns true if the state allows resuming.
func (s State) CanResume() bool {
	return s == StatePaused
}
