package playback

import (
	"time"

	"github.com/llehouerou/jellywaves/internal/media"
)

// EngineProxy is the transport the manager drives. Implementations must not
// call back into the manager synchronously from these methods.
type EngineProxy interface {
	Load(item *Item) error
	Play() error
	Pause() error
	Stop() error
	JumpForward(d time.Duration) error
	JumpBackward(d time.Duration) error
	SetRate(rate float64) error
	SetSeconds(pos time.Duration) error
	SetAudioStream(index int) error
	SetSubtitleStream(index int) error
	IsBuffering() bool
	VideoSize() (width, height int)
}

// Observer reacts to a manager's state without taking part in it.
// Attach is called once when the manager is built or the observer is added;
// Detach is called once when the manager stops.
type Observer interface {
	Attach(m *Manager)
	Detach()
}

// Adjacency reports which neighbours the queue can currently resolve.
type Adjacency struct {
	HasNext     bool
	HasPrevious bool
}

// Queue resolves next/previous items relative to the manager's current item.
// The manager calls the hook methods synchronously, outside its lock.
type Queue interface {
	Attach(m *Manager)
	ItemDidChange(item media.Item)
	ModeDidChange(shuffle bool, repeat RepeatMode)

	NextItem() *Provider
	PreviousItem() *Provider
	HasNextItem() bool
	HasPreviousItem() bool

	// Watch returns adjacency updates, starting with the current value,
	// and a function that releases the watch.
	Watch() (<-chan Adjacency, func())
}
