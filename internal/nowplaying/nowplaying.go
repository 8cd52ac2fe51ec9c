package nowplaying

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/jellywaves/internal/audioroute"
	"github.com/llehouerou/jellywaves/internal/media"
	"github.com/llehouerou/jellywaves/internal/playback"
)

const (
	// positionInterval throttles elapsed time updates.
	positionInterval = 500 * time.Millisecond
	// deactivateDelay gives a following session time to take the route.
	deactivateDelay = 300 * time.Millisecond

	artworkTimeout = 10 * time.Second
)

// fixedCommands are enabled for every item.
var fixedCommands = []Command{
	CommandPlay,
	CommandPause,
	CommandToggle,
	CommandStop,
	CommandSkipForward,
	CommandSkipBackward,
	CommandChangePosition,
	CommandChangeRate,
	CommandSetRepeat,
	CommandSetShuffle,
}

// ArtworkFunc resolves an artwork URL for an item, or "".
type ArtworkFunc func(ctx context.Context, item media.Item) string

// SessionChecker reports whether another playback session is running.
type SessionChecker interface {
	HasActiveSession() bool
}

// Options tunes an Observer.
type Options struct {
	JumpForward  time.Duration
	JumpBackward time.Duration
	Artwork      ArtworkFunc
}

// Observer mirrors a playback manager onto a Surface.
type Observer struct {
	surface  Surface
	route    *audioroute.Service
	sessions SessionChecker
	opts     Options
	log      *logrus.Entry

	mu          sync.Mutex
	manager     *playback.Manager
	reg         Registration
	item        *playback.Item
	seconds     time.Duration
	rate        float64
	status      playback.RequestStatus
	repeat      playback.RepeatMode
	shuffle     bool
	lastPush    time.Time
	trailing    *time.Timer
	interrupted bool
	resumeTo    playback.RequestStatus

	ctx     context.Context
	cancel  context.CancelFunc
	release []func()
	finish  sync.Once
}

var _ playback.Observer = (*Observer)(nil)

// New creates an observer. route and sessions may be nil.
func New(surface Surface, route *audioroute.Service, sessions SessionChecker, opts Options) *Observer {
	if opts.JumpForward <= 0 {
		opts.JumpForward = 30 * time.Second
	}
	if opts.JumpBackward <= 0 {
		opts.JumpBackward = 10 * time.Second
	}
	return &Observer{
		surface:  surface,
		route:    route,
		sessions: sessions,
		opts:     opts,
		log:      logrus.WithField("component", "nowplaying"),
	}
}

// Attach registers on the surface and starts following m.
func (o *Observer) Attach(m *playback.Manager) {
	ctx, cancel := context.WithCancel(context.Background())
	reg := o.surface.Register(o.handle)
	for _, c := range fixedCommands {
		reg.EnableCommand(c, true)
	}

	sub := m.Subscribe()
	release := []func(){func() { m.Unsubscribe(sub) }}

	var interruptions <-chan audioroute.Interruption
	if o.route != nil {
		ch, stop := o.route.Watch()
		interruptions = ch
		release = append(release, stop)
	}
	var adjacency <-chan playback.Adjacency
	if q := m.Queue(); q != nil {
		ch, stop := q.Watch()
		adjacency = ch
		release = append(release, stop)
	}

	o.mu.Lock()
	o.manager = m
	o.reg = reg
	o.ctx = ctx
	o.cancel = cancel
	o.release = release
	o.seconds = m.Seconds()
	o.rate = m.Rate()
	o.status = m.RequestStatus()
	o.repeat = m.RepeatMode()
	o.shuffle = m.Shuffle()
	o.mu.Unlock()

	if it := m.PlaybackItem(); it != nil {
		o.itemChanged(it)
	}
	go o.run(ctx, sub, interruptions, adjacency)
}

// Detach unregisters from the surface.
func (o *Observer) Detach() {
	o.stop()
}

func (o *Observer) run(
	ctx context.Context,
	sub *playback.Subscription,
	interruptions <-chan audioroute.Interruption,
	adjacency <-chan playback.Adjacency,
) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.Done:
			o.stop()
			return
		case e := <-sub.PlaybackItemChanged:
			o.itemChanged(e.Item)
		case e := <-sub.PositionChanged:
			o.positionChanged(e.Position)
		case e := <-sub.RateChanged:
			o.set(func() { o.rate = e.Rate })
		case e := <-sub.RequestStatusChanged:
			o.set(func() { o.status = e.Status })
		case e := <-sub.ModeChanged:
			o.set(func() { o.repeat, o.shuffle = e.RepeatMode, e.Shuffle })
		case e := <-sub.Actions:
			if e.Action == playback.ActionStop || e.Action == playback.ActionError {
				o.stop()
				return
			}
		case i, ok := <-interruptions:
			if !ok {
				interruptions = nil
				continue
			}
			o.interruption(i)
		case a := <-adjacency:
			o.adjacencyChanged(a)
		}
	}
}

func (o *Observer) stop() {
	o.finish.Do(func() {
		o.mu.Lock()
		cancel, reg, release := o.cancel, o.reg, o.release
		o.manager = nil
		o.item = nil
		if o.trailing != nil {
			o.trailing.Stop()
			o.trailing = nil
		}
		o.mu.Unlock()

		if cancel != nil {
			cancel()
		}
		if reg != nil {
			reg.Release()
		}
		for _, fn := range release {
			fn()
		}
		if o.route != nil {
			time.AfterFunc(deactivateDelay, o.deactivateRoute)
		}
	})
}

func (o *Observer) deactivateRoute() {
	if o.sessions != nil && o.sessions.HasActiveSession() {
		o.log.Trace("keeping audio route for active session")
		return
	}
	_ = o.route.Deactivate()
}

func (o *Observer) itemChanged(it *playback.Item) {
	if it == nil {
		return
	}
	if o.route != nil {
		o.route.EnsureActive()
	}

	o.mu.Lock()
	o.item = it
	o.seconds = it.BaseItem().StartPosition
	reg, ctx := o.reg, o.ctx
	o.mu.Unlock()

	info := staticInfo(it.BaseItem())
	reg.SetStatic(info)
	o.push()

	if o.opts.Artwork != nil {
		go o.resolveArtwork(ctx, it, info)
	}
}

func (o *Observer) resolveArtwork(ctx context.Context, it *playback.Item, info StaticInfo) {
	ctx, cancel := context.WithTimeout(ctx, artworkTimeout)
	defer cancel()

	url := o.opts.Artwork(ctx, it.BaseItem())
	if url == "" {
		return
	}

	o.mu.Lock()
	current := o.item == it
	reg := o.reg
	o.mu.Unlock()
	if !current {
		return
	}
	info.ArtworkURL = url
	reg.SetStatic(info)
}

func staticInfo(item media.Item) StaticInfo {
	info := StaticInfo{
		ItemID:   item.ID,
		Title:    item.Name,
		Artist:   item.PrimaryArtist(),
		Album:    item.Album,
		Type:     item.Type,
		Duration: item.Runtime,
		IsLive:   item.IsLive,
	}
	if item.Type == media.TypeEpisode {
		info.Album = item.SeriesName
	}
	return info
}

// positionChanged pushes at most once per positionInterval. A throttled
// position is pushed when the interval ends so the surface settles on the
// latest value.
func (o *Observer) positionChanged(pos time.Duration) {
	o.mu.Lock()
	o.seconds = pos
	wait := positionInterval - time.Since(o.lastPush)
	if wait > 0 {
		if o.trailing == nil {
			o.trailing = time.AfterFunc(wait, o.flushPosition)
		}
		o.mu.Unlock()
		return
	}
	o.mu.Unlock()
	o.push()
}

// flushPosition does not restart the throttle window.
func (o *Observer) flushPosition() {
	o.mu.Lock()
	o.trailing = nil
	o.mu.Unlock()
	o.publish(false)
}

// set applies fn and pushes the dynamic info.
func (o *Observer) set(fn func()) {
	o.mu.Lock()
	fn()
	o.mu.Unlock()
	o.push()
}

func (o *Observer) push() {
	o.publish(true)
}

func (o *Observer) publish(stamp bool) {
	o.mu.Lock()
	if o.item == nil || o.reg == nil {
		o.mu.Unlock()
		return
	}
	info := DynamicInfo{
		Elapsed:  o.seconds,
		Duration: o.item.BaseItem().Runtime,
		Rate:     o.rate,
		Playing:  o.status == playback.RequestPlaying,
		Repeat:   o.repeat,
		Shuffle:  o.shuffle,
	}
	if stamp {
		o.lastPush = time.Now()
	}
	reg := o.reg
	o.mu.Unlock()

	reg.SetDynamic(info)
}

func (o *Observer) adjacencyChanged(a playback.Adjacency) {
	o.mu.Lock()
	reg := o.reg
	o.mu.Unlock()

	reg.EnableCommand(CommandNext, a.HasNext)
	reg.EnableCommand(CommandPrevious, a.HasPrevious)
}

func (o *Observer) interruption(i audioroute.Interruption) {
	o.mu.Lock()
	m := o.manager
	o.mu.Unlock()
	if m == nil {
		return
	}

	o.log.WithFields(logrus.Fields{
		"kind":         i.Kind.String(),
		"shouldResume": i.ShouldResume,
	}).Debug("handling interruption")

	switch i.Kind {
	case audioroute.InterruptionBegan:
		o.mu.Lock()
		o.interrupted = true
		o.resumeTo = m.RequestStatus()
		o.mu.Unlock()
		m.SetPlaybackRequestStatus(playback.RequestPaused)

	case audioroute.InterruptionEnded:
		o.mu.Lock()
		wasPlaying := o.interrupted && o.resumeTo == playback.RequestPlaying
		o.interrupted = false
		o.mu.Unlock()

		if o.route != nil {
			if err := o.route.Configure(); err != nil {
				o.log.WithError(err).Error("failed to reactivate audio route, stopping")
				m.Stop()
				return
			}
		}
		if wasPlaying && i.ShouldResume {
			m.SetPlaybackRequestStatus(playback.RequestPlaying)
			return
		}
		m.SetPlaybackRequestStatus(playback.RequestPaused)
	}
}

// handle executes a surface command on the manager.
func (o *Observer) handle(e CommandEvent) error {
	o.mu.Lock()
	m := o.manager
	o.mu.Unlock()
	if m == nil {
		return ErrNoHandler
	}

	o.log.WithField("command", e.Command.String()).Debug("remote command")

	switch e.Command {
	case CommandPlay:
		m.SetPlaybackRequestStatus(playback.RequestPlaying)
	case CommandPause:
		m.SetPlaybackRequestStatus(playback.RequestPaused)
	case CommandToggle:
		m.TogglePlayPause()
	case CommandStop:
		m.Stop()
	case CommandSkipForward:
		m.JumpForward(o.opts.JumpForward)
	case CommandSkipBackward:
		m.JumpBackward(o.opts.JumpBackward)
	case CommandChangePosition:
		m.Seek(e.Position)
	case CommandChangeRate:
		m.SetRate(e.Rate)
	case CommandNext:
		m.SkipNext()
	case CommandPrevious:
		m.SkipPrevious()
	case CommandSetRepeat:
		m.SetRepeatMode(e.Repeat)
	case CommandSetShuffle:
		m.SetShuffle(e.Shuffle)
	}
	return nil
}
