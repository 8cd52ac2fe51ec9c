// Package nowplaying publishes the active item to system media controls and
// routes their commands back to the playback manager.
package nowplaying

import (
	"errors"
	"maps"
	"sync"
	"time"

	"github.com/llehouerou/jellywaves/internal/media"
	"github.com/llehouerou/jellywaves/internal/playback"
)

var (
	ErrNoHandler       = errors.New("no playback session")
	ErrCommandDisabled = errors.New("command disabled")
)

// Command is a remote control request.
type Command int

const (
	CommandPlay Command = iota
	CommandPause
	CommandToggle
	CommandStop
	CommandSkipForward
	CommandSkipBackward
	CommandChangePosition
	CommandChangeRate
	CommandNext
	CommandPrevious
	CommandSetRepeat
	CommandSetShuffle
)

func (c Command) String() string {
	switch c {
	case CommandPlay:
		return "play"
	case CommandPause:
		return "pause"
	case CommandToggle:
		return "toggle"
	case CommandStop:
		return "stop"
	case CommandSkipForward:
		return "skipForward"
	case CommandSkipBackward:
		return "skipBackward"
	case CommandChangePosition:
		return "changePosition"
	case CommandChangeRate:
		return "changeRate"
	case CommandNext:
		return "next"
	case CommandPrevious:
		return "previous"
	case CommandSetRepeat:
		return "setRepeat"
	case CommandSetShuffle:
		return "setShuffle"
	default:
		return "unknown"
	}
}

// CommandEvent carries a command and its argument, if any.
type CommandEvent struct {
	Command  Command
	Position time.Duration       // CommandChangePosition
	Rate     float64             // CommandChangeRate
	Repeat   playback.RepeatMode // CommandSetRepeat
	Shuffle  bool                // CommandSetShuffle
}

// Handler executes a command.
type Handler func(CommandEvent) error

// StaticInfo describes the item. It changes only when the item does.
type StaticInfo struct {
	ItemID     string
	Title      string
	Artist     string
	Album      string
	Type       media.ItemType
	Duration   time.Duration
	IsLive     bool
	ArtworkURL string
}

// DynamicInfo describes where playback is.
type DynamicInfo struct {
	Elapsed  time.Duration
	Duration time.Duration
	Rate     float64
	Playing  bool
	Repeat   playback.RepeatMode
	Shuffle  bool
}

// Surface is a now-playing display. Registering replaces the previous
// owner; calls through a superseded Registration are ignored.
type Surface interface {
	Register(h Handler) Registration
}

// Registration is one owner's view of a Surface.
type Registration interface {
	EnableCommand(c Command, enabled bool)
	SetStatic(info StaticInfo)
	SetDynamic(info DynamicInfo)
	// Release unregisters the handler and clears the surface.
	Release()
}

// Snapshot is a copy of a Board's contents.
type Snapshot struct {
	Registered bool
	Static     *StaticInfo
	Dynamic    DynamicInfo
	Enabled    map[Command]bool
}

// CanSend reports whether c would be accepted.
func (s Snapshot) CanSend(c Command) bool {
	return s.Registered && s.Enabled[c]
}

// Board is an in-process Surface. Display front ends (MPRIS, the TUI) read
// it and send commands through it.
type Board struct {
	mu      sync.Mutex
	gen     uint64
	handler Handler
	enabled map[Command]bool
	static  *StaticInfo
	dynamic DynamicInfo
	changed chan struct{}
}

var _ Surface = (*Board)(nil)

// NewBoard creates an empty board.
func NewBoard() *Board {
	return &Board{
		enabled: make(map[Command]bool),
		dynamic: DynamicInfo{Rate: 1.0},
		changed: make(chan struct{}, 1),
	}
}

// Register makes h the command handler and resets the board.
func (b *Board) Register(h Handler) Registration {
	b.mu.Lock()
	b.gen++
	gen := b.gen
	b.handler = h
	b.resetLocked()
	b.mu.Unlock()

	b.notify()
	return &registration{board: b, gen: gen}
}

func (b *Board) resetLocked() {
	b.enabled = make(map[Command]bool)
	b.static = nil
	b.dynamic = DynamicInfo{Rate: 1.0}
}

// Snapshot returns the current contents.
func (b *Board) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := Snapshot{
		Registered: b.handler != nil,
		Dynamic:    b.dynamic,
		Enabled:    maps.Clone(b.enabled),
	}
	if b.static != nil {
		static := *b.static
		s.Static = &static
	}
	return s
}

// Changed fires after the contents change.
func (b *Board) Changed() <-chan struct{} {
	return b.changed
}

// Send dispatches e to the registered handler.
func (b *Board) Send(e CommandEvent) error {
	b.mu.Lock()
	h := b.handler
	enabled := b.enabled[e.Command]
	b.mu.Unlock()

	if h == nil {
		return ErrNoHandler
	}
	if !enabled {
		return ErrCommandDisabled
	}
	return h(e)
}

func (b *Board) notify() {
	select {
	case b.changed <- struct{}{}:
	default:
	}
}

// update runs fn when gen is still the owner.
func (b *Board) update(gen uint64, fn func()) {
	b.mu.Lock()
	if gen != b.gen {
		b.mu.Unlock()
		return
	}
	fn()
	b.mu.Unlock()
	b.notify()
}

type registration struct {
	board *Board
	gen   uint64
}

func (r *registration) EnableCommand(c Command, enabled bool) {
	r.board.update(r.gen, func() { r.board.enabled[c] = enabled })
}

func (r *registration) SetStatic(info StaticInfo) {
	r.board.update(r.gen, func() { r.board.static = &info })
}

func (r *registration) SetDynamic(info DynamicInfo) {
	r.board.update(r.gen, func() { r.board.dynamic = info })
}

func (r *registration) Release() {
	r.board.update(r.gen, func() {
		r.board.handler = nil
		r.board.resetLocked()
		r.board.gen++
	})
}
