// internal/playback/state.go
package playback

// State is the manager's lifecycle state.
//
//	initial ──start──▶ loadingItem ──build ok──▶ playback
//	                       ▲                        │
//	                       └──── playNewItem/skip ──┘
//
//	any ──error──▶ error        any ──stop──▶ stopped (terminal)
//
// Pausing is a request status, not a state.
type State int

const (
	StateInitial State = iota
	StateLoadingItem
	StatePlayback
	StateError
	StateStopped
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateInitial:
		return "Initial"
	case StateLoadingItem:
		return "LoadingItem"
	case StatePlayback:
		return "Playback"
	case StateError:
		return "Error"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// IsActive returns true while an item is loading or playing.
func (s State) IsActive() bool {
	return s == StateLoadingItem || s == StatePlayback
}

// RequestStatus is the user or engine intent, independent of State.
type RequestStatus int

const (
	RequestPlaying RequestStatus = iota
	RequestPaused
)

// String returns the status name.
func (r RequestStatus) String() string {
	switch r {
	case RequestPlaying:
		return "Playing"
	case RequestPaused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// RepeatMode defines the repeat behavior.
type RepeatMode int

const (
	RepeatOff RepeatMode = iota
	RepeatAll
	RepeatOne
)

// String returns the repeat mode name.
func (m RepeatMode) String() string {
	switch m {
	case RepeatOff:
		return "Off"
	case RepeatAll:
		return "All"
	case RepeatOne:
		return "One"
	default:
		return "Unknown"
	}
}

// Next returns the mode that follows m in the off, all, one cycle.
func (m RepeatMode) Next() RepeatMode {
	switch m {
	case RepeatOff:
		return RepeatAll
	case RepeatAll:
		return RepeatOne
	default:
		return RepeatOff
	}
}
