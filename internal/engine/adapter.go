// Package engine adapts a playback backend to the playback manager.
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/jellywaves/internal/errmsg"
	"github.com/llehouerou/jellywaves/internal/media"
	"github.com/llehouerou/jellywaves/internal/playback"
	"github.com/llehouerou/jellywaves/internal/player"
)

// DefaultDebounce is how long a backend state must hold before it is acted on.
const DefaultDebounce = 300 * time.Millisecond

// ErrPlaybackFailed is reported when the backend fails without a cause.
var ErrPlaybackFailed = errors.New("player is unable to perform playback")

var (
	_ playback.EngineProxy = (*Adapter)(nil)
	_ playback.Observer    = (*Adapter)(nil)
)

// Options tunes an Adapter.
type Options struct {
	ResumeOffset   time.Duration // rewind applied to resume positions
	NetworkCaching time.Duration
	Debounce       time.Duration
}

// Adapter drives a player backend for a playback manager and feeds the
// backend's reports back into the manager.
type Adapter struct {
	backend player.Interface
	opts    Options

	mu        sync.Mutex
	manager   *playback.Manager
	item      *playback.Item
	buffering bool
	lastState player.State
	hasLast   bool
	stall     *StallDetector
	cancel    context.CancelFunc
	done      chan struct{}

	debounce *Debouncer
	now      func() time.Time
	log      *logrus.Entry
}

// NewAdapter creates an adapter over backend.
func NewAdapter(backend player.Interface, opts Options) *Adapter {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	return &Adapter{
		backend:  backend,
		opts:     opts,
		stall:    NewStallDetector(),
		debounce: NewDebouncer(opts.Debounce),
		now:      time.Now,
		log:      logrus.WithField("component", "engine"),
	}
}

// Attach starts forwarding backend events to m.
func (a *Adapter) Attach(m *playback.Manager) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	a.mu.Lock()
	a.manager = m
	a.cancel = cancel
	a.done = done
	a.mu.Unlock()

	go a.run(ctx, done)
}

// Detach stops forwarding events and drops any pending state report.
func (a *Adapter) Detach() {
	a.debounce.Cancel()

	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.cancel = nil
	a.manager = nil
	a.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

func (a *Adapter) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	events := a.backend.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			a.handle(e)
		}
	}
}

func (a *Adapter) handle(e player.Event) {
	switch e.Kind {
	case player.EventPosition:
		if m := a.currentManager(); m != nil {
			m.ReportSeconds(e.Position)
		}
	case player.EventState:
		a.debounce.Call(func() { a.applyState(e.State, e.Err) })
	case player.EventVideoSize:
	}
}

func (a *Adapter) currentManager() *playback.Manager {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.manager
}

// applyState acts on a debounced backend state.
func (a *Adapter) applyState(s player.State, cause error) {
	a.mu.Lock()
	m, item := a.manager, a.item
	if m == nil || item == nil {
		a.mu.Unlock()
		return
	}
	if a.stall.Observe(s, a.now()) {
		a.mu.Unlock()
		a.reload(m, item)
		return
	}
	if a.hasLast && s == a.lastState {
		a.mu.Unlock()
		a.log.WithField("state", s.String()).Trace("skipping duplicate backend state")
		return
	}
	a.lastState = s
	a.hasLast = true
	a.buffering = s.IsLoading()
	a.mu.Unlock()

	switch s {
	case player.StateEnded:
		if item.BaseItem().IsLive {
			return
		}
		if pos := a.backend.Position(); pos > 0 {
			m.ReportSeconds(pos)
		}
		m.Ended(item.BaseItem().ID)
	case player.StateError:
		if cause == nil {
			cause = ErrPlaybackFailed
		}
		m.Error(errmsg.NewMediaError(errmsg.KindStreamEnded, cause).WithItem(item.BaseItem().ID))
	case player.StatePlaying:
		m.SetPlaybackRequestStatus(playback.RequestPlaying)
	case player.StatePaused:
		m.SetPlaybackRequestStatus(playback.RequestPaused)
	case player.StateIdle, player.StateOpening, player.StateBuffering:
	}
}

// reload restarts the current item at the manager's position.
func (a *Adapter) reload(m *playback.Manager, item *playback.Item) {
	pos := m.Seconds()
	a.log.WithFields(logrus.Fields{
		"itemID":   item.BaseItem().ID,
		"position": pos,
	}).Warn("detected decode stall, reloading")

	a.mu.Lock()
	a.hasLast = false
	a.buffering = true
	a.mu.Unlock()

	cfg := a.config(item, pos)
	cfg.Rate = m.Rate()
	if err := a.backend.Load(cfg); err != nil {
		m.Error(errmsg.NewMediaError(errmsg.KindLoadFailed, err).WithItem(item.BaseItem().ID))
	}
}

// config builds the backend configuration for item starting at start.
func (a *Adapter) config(item *playback.Item, start time.Duration) player.Config {
	base := item.BaseItem()
	cfg := player.Config{
		URL:            item.URL(),
		Title:          base.DisplayTitle(),
		NetworkCaching: a.opts.NetworkCaching,
		Rate:           1,
	}
	if base.IsLive {
		return cfg
	}
	cfg.Start = max(start, 0)
	cfg.AudioTrack = trackNumber(item.Source().AudioStreams(), item.AudioStreamIndex())
	cfg.SubtitleTrack = trackNumber(embedded(item.Source().SubtitleStreams()), item.SubtitleStreamIndex())
	return cfg
}

// trackNumber maps a server stream index to the backend's 1-based track
// number within streams, or 0 when absent.
func trackNumber(streams []media.Stream, index int) int {
	if index < 0 {
		return 0
	}
	_, pos, ok := lo.FindIndexOf(streams, func(s media.Stream) bool { return s.Index == index })
	if !ok {
		return 0
	}
	return pos + 1
}

func embedded(streams []media.Stream) []media.Stream {
	return lo.Reject(streams, func(s media.Stream, _ int) bool { return s.IsExternal })
}

// Load configures the backend for item. The resume point is rewound by the
// configured offset.
func (a *Adapter) Load(item *playback.Item) error {
	a.debounce.Cancel()

	a.mu.Lock()
	a.item = item
	a.hasLast = false
	a.buffering = true
	a.stall.Reset()
	a.mu.Unlock()

	start := item.BaseItem().StartPosition - a.opts.ResumeOffset
	return a.backend.Load(a.config(item, start))
}

func (a *Adapter) Play() error {
	a.debounce.Cancel()
	return a.backend.Play()
}

func (a *Adapter) Pause() error {
	a.debounce.Cancel()
	return a.backend.Pause()
}

func (a *Adapter) Stop() error {
	a.debounce.Cancel()
	a.mu.Lock()
	a.item = nil
	a.hasLast = false
	a.buffering = false
	a.mu.Unlock()
	return a.backend.Stop()
}

func (a *Adapter) JumpForward(d time.Duration) error {
	a.debounce.Cancel()
	return a.backend.Seek(a.backend.Position() + d)
}

func (a *Adapter) JumpBackward(d time.Duration) error {
	a.debounce.Cancel()
	return a.backend.Seek(max(a.backend.Position()-d, 0))
}

func (a *Adapter) SetRate(rate float64) error {
	return a.backend.SetRate(rate)
}

func (a *Adapter) SetSeconds(pos time.Duration) error {
	a.debounce.Cancel()
	return a.backend.Seek(pos)
}

func (a *Adapter) SetAudioStream(index int) error {
	a.mu.Lock()
	item := a.item
	a.mu.Unlock()
	if item == nil {
		return nil
	}
	return a.backend.SetAudioTrack(trackNumber(item.Source().AudioStreams(), index))
}

func (a *Adapter) SetSubtitleStream(index int) error {
	a.mu.Lock()
	item := a.item
	a.mu.Unlock()
	if item == nil {
		return nil
	}
	return a.backend.SetSubtitleTrack(trackNumber(embedded(item.Source().SubtitleStreams()), index))
}

// IsBuffering reports whether the backend is opening or waiting for data.
func (a *Adapter) IsBuffering() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.buffering
}

func (a *Adapter) VideoSize() (int, int) {
	return a.backend.VideoSize()
}
