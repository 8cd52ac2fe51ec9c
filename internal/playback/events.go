package playback

import (
	"time"

	"github.com/llehouerou/jellywaves/internal/media"
)

// StateChange is emitted when the manager state changes.
type StateChange struct {
	Previous State
	Current  State
}

// ItemChange is emitted when the catalog item changes.
//
// Emitted by:
//   - PlayNewItem/SkipNext/SkipPrevious/Start: as soon as the target is known,
//     before the playback item is built
//   - a completed build, when the built item differs from the requested one
type ItemChange struct {
	Previous media.Item
	Current  media.Item
}

// PlaybackItemChange is emitted when the playback item is assigned or
// cleared. Item is nil when cleared.
type PlaybackItemChange struct {
	Item *Item
}

// PositionChange carries the latest known position.
type PositionChange struct {
	Position time.Duration
}

// RequestStatusChange is emitted when the playing/paused intent changes.
type RequestStatusChange struct {
	Status RequestStatus
}

// RateChange is emitted when the playback rate changes.
type RateChange struct {
	Rate float64
}

// ModeChange is emitted when repeat or shuffle mode changes.
type ModeChange struct {
	RepeatMode RepeatMode
	Shuffle    bool
}

// SegmentChange is emitted when the active media segment changes identity.
// Segment is nil when the position left every segment.
type SegmentChange struct {
	Segment *media.Segment
}

// Action names a manager operation on the action stream.
type Action int

const (
	ActionStart Action = iota
	ActionPlayNewItem
	ActionSkipNext
	ActionSkipPrevious
	ActionEnded
	ActionError
	ActionStop
	ActionSetPlaybackRequestStatus
	ActionSetRate
	ActionToggleShuffle
	ActionCycleRepeatMode
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case ActionStart:
		return "start"
	case ActionPlayNewItem:
		return "playNewItem"
	case ActionSkipNext:
		return "skipNext"
	case ActionSkipPrevious:
		return "skipPrevious"
	case ActionEnded:
		return "ended"
	case ActionError:
		return "error"
	case ActionStop:
		return "stop"
	case ActionSetPlaybackRequestStatus:
		return "setPlaybackRequestStatus"
	case ActionSetRate:
		return "setRate"
	case ActionToggleShuffle:
		return "toggleShuffle"
	case ActionCycleRepeatMode:
		return "cycleRepeatMode"
	default:
		return "unknown"
	}
}

// ActionEvent is emitted for every accepted action.
type ActionEvent struct {
	Action Action
	ItemID string
	Err    error // set for ActionError
}

// ErrorEvent is emitted when playback fails.
type ErrorEvent struct {
	Operation string // e.g. "load", "engine"
	ItemID    string
	Err       error
}
