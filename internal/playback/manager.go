// internal/playback/manager.go
package playback

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/jellywaves/internal/errmsg"
	"github.com/llehouerou/jellywaves/internal/media"
)

// nearEndTolerance is how close to the runtime an ended report must be to
// count as a natural end of stream.
const nearEndTolerance = time.Second

// Manager owns one playback session: the current item, its lifecycle state
// and the engine proxy driving it.
type Manager struct {
	mu sync.RWMutex

	state        State
	item         media.Item
	playbackItem *Item
	seconds      time.Duration
	rate         float64
	status       RequestStatus
	shuffle      bool
	repeat       RepeatMode
	segment      *media.Segment
	err          error
	pending      *Provider
	endedID      string

	buildVersion uint64
	cancelBuild  context.CancelFunc

	queue     Queue
	proxy     EngineProxy
	observers []Observer
	autoplay  bool
	recycle   func(*Manager)
	log       *logrus.Entry

	// proxyMu orders commands sent to the engine.
	proxyMu sync.Mutex

	subs   []*Subscription
	subsMu sync.RWMutex
}

// Option configures a Manager.
type Option func(*Manager)

// WithQueue sets the queue used for next/previous resolution.
func WithQueue(q Queue) Option {
	return func(m *Manager) { m.queue = q }
}

// WithProxy sets the engine proxy. A proxy that is also an Observer is
// attached before any other observer.
func WithProxy(p EngineProxy) Option {
	return func(m *Manager) { m.proxy = p }
}

// WithObservers registers observers in attach order.
func WithObservers(obs ...Observer) Option {
	return func(m *Manager) { m.observers = append(m.observers, obs...) }
}

// WithAutoplay controls whether a natural end advances the queue.
func WithAutoplay(enabled bool) Option {
	return func(m *Manager) { m.autoplay = enabled }
}

// WithModes sets the initial shuffle and repeat modes.
func WithModes(shuffle bool, repeat RepeatMode) Option {
	return func(m *Manager) {
		m.shuffle = shuffle
		m.repeat = repeat
	}
}

// WithLogger sets the logger entry.
func WithLogger(l *logrus.Entry) Option {
	return func(m *Manager) { m.log = l }
}

// New creates a manager in the initial state that will play the item
// resolved by provider on Start.
func New(provider *Provider, opts ...Option) *Manager {
	m := newManager(opts...)
	m.state = StateInitial
	m.pending = provider
	if provider != nil {
		m.item = provider.Item()
	}
	m.attach()
	return m
}

// Placeholder returns an idle manager with no item, already stopped.
func Placeholder() *Manager {
	m := newManager()
	m.state = StateStopped
	return m
}

func newManager(opts ...Option) *Manager {
	m := &Manager{
		rate:     1.0,
		autoplay: true,
		log:      logrus.WithField("component", "playback"),
	}
	for _, opt := range opts {
		opt(m)
	}
	if o, ok := m.proxy.(Observer); ok {
		m.observers = append([]Observer{o}, m.observers...)
	}
	return m
}

// attach wires the queue and observers. Runs before the manager is shared.
func (m *Manager) attach() {
	if m.queue != nil {
		m.queue.Attach(m)
	}
	for _, o := range m.observers {
		o.Attach(m)
	}
}

// AddObserver attaches o to a running manager. Ignored once stopped.
func (m *Manager) AddObserver(o Observer) {
	m.mu.Lock()
	if m.state == StateStopped {
		m.mu.Unlock()
		return
	}
	m.observers = append(m.observers, o)
	m.mu.Unlock()
	o.Attach(m)
}

// Subscribe creates a new event subscription.
func (m *Manager) Subscribe() *Subscription {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	sub := newSubscription()
	if m.State() == StateStopped {
		sub.close()
		return sub
	}
	m.subs = append(m.subs, sub)
	return sub
}

// Unsubscribe removes sub and closes its Done channel.
func (m *Manager) Unsubscribe(sub *Subscription) {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	for i, s := range m.subs {
		if s == sub {
			m.subs = append(m.subs[:i], m.subs[i+1:]...)
			break
		}
	}
	sub.close()
}

func (m *Manager) publish(fn func(*Subscription)) {
	m.subsMu.RLock()
	defer m.subsMu.RUnlock()
	for _, sub := range m.subs {
		fn(sub)
	}
}

func (m *Manager) closeSubscriptions() {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	for _, sub := range m.subs {
		sub.close()
	}
	m.subs = nil
}

// drive runs fn against the proxy, serialised with other engine commands.
func (m *Manager) drive(op string, fn func(EngineProxy) error) {
	m.proxyMu.Lock()
	defer m.proxyMu.Unlock()
	m.mu.RLock()
	proxy := m.proxy
	m.mu.RUnlock()
	if proxy == nil {
		return
	}
	if err := fn(proxy); err != nil {
		m.log.WithError(err).WithField("op", op).Warn("engine command failed")
	}
}

// Start resolves the provider given to New. Without one the manager stops.
func (m *Manager) Start() {
	m.mu.Lock()
	if m.state == StateStopped {
		m.mu.Unlock()
		return
	}
	p := m.pending
	m.pending = nil
	m.mu.Unlock()

	m.publish(func(s *Subscription) { s.sendAction(ActionEvent{Action: ActionStart}) })
	if p == nil {
		m.log.Warn("start without a pending provider")
		m.Stop()
		return
	}
	m.load(p)
}

// PlayNewItem replaces the current item with the one resolved by p.
func (m *Manager) PlayNewItem(p *Provider) {
	if m.State() == StateStopped {
		return
	}
	if p == nil {
		m.Stop()
		return
	}
	m.publish(func(s *Subscription) {
		s.sendAction(ActionEvent{Action: ActionPlayNewItem, ItemID: p.Item().ID})
	})
	m.load(p)
}

// SkipNext plays the queue's next item, or stops when there is none.
func (m *Manager) SkipNext() {
	m.skip(ActionSkipNext, func(q Queue) *Provider { return q.NextItem() })
}

// SkipPrevious plays the queue's previous item, or stops when there is none.
func (m *Manager) SkipPrevious() {
	m.skip(ActionSkipPrevious, func(q Queue) *Provider { return q.PreviousItem() })
}

func (m *Manager) skip(action Action, resolve func(Queue) *Provider) {
	m.mu.RLock()
	stopped := m.state == StateStopped
	q := m.queue
	m.mu.RUnlock()
	if stopped {
		return
	}

	var p *Provider
	if q != nil {
		p = resolve(q)
	}
	if p == nil {
		m.log.WithField("action", action.String()).Debug("no adjacent item, stopping")
		m.Stop()
		return
	}
	m.publish(func(s *Subscription) {
		s.sendAction(ActionEvent{Action: action, ItemID: p.Item().ID})
	})
	m.load(p)
}

// load moves to loadingItem and builds p in the background. A newer load,
// an error or a stop supersedes the build and its result is discarded.
func (m *Manager) load(p *Provider) {
	m.mu.Lock()
	if m.state == StateStopped {
		m.mu.Unlock()
		return
	}
	prevState := m.state
	prevItem := m.item
	hadItem := m.playbackItem != nil
	hadSegment := m.segment != nil

	m.item = p.Item()
	m.playbackItem = nil
	m.segment = nil
	m.err = nil
	m.endedID = ""
	m.state = StateLoadingItem
	m.buildVersion++
	version := m.buildVersion
	if m.cancelBuild != nil {
		m.cancelBuild()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelBuild = cancel
	q := m.queue
	m.mu.Unlock()

	m.publish(func(s *Subscription) {
		s.sendItem(ItemChange{Previous: prevItem, Current: p.Item()})
		if hadItem {
			s.sendPlaybackItem(PlaybackItemChange{})
		}
		if hadSegment {
			s.sendSegment(SegmentChange{})
		}
		if prevState != StateLoadingItem {
			s.sendState(StateChange{Previous: prevState, Current: StateLoadingItem})
		}
	})
	if q != nil {
		q.ItemDidChange(p.Item())
	}
	m.drive("stop", func(e EngineProxy) error { return e.Stop() })

	go m.build(ctx, version, p)
}

func (m *Manager) build(ctx context.Context, version uint64, p *Provider) {
	item, err := p.Build(ctx)
	if err == nil && item == nil {
		err = ErrNoProvider
	}

	m.proxyMu.Lock()
	m.mu.Lock()
	if version != m.buildVersion || m.state != StateLoadingItem {
		m.mu.Unlock()
		m.proxyMu.Unlock()
		m.log.WithField("item", p.Item().ID).Debug("discarding superseded item build")
		return
	}
	if err != nil {
		m.mu.Unlock()
		m.proxyMu.Unlock()
		m.fail("load", loadError(p.Item().ID, err), version)
		return
	}

	prevItem := m.item
	m.playbackItem = item
	m.item = item.BaseItem()
	m.seconds = item.BaseItem().StartPosition
	m.segment = media.SegmentAt(item.Segments(), m.seconds)
	m.state = StatePlayback
	seconds := m.seconds
	segment := m.segment
	status := m.status
	rate := m.rate
	proxy := m.proxy
	m.mu.Unlock()

	m.log.WithFields(logrus.Fields{
		"itemID":    item.BaseItem().ID,
		"itemTitle": item.BaseItem().DisplayTitle(),
		"url":       item.URL(),
	}).Info("playing new item")

	if t := item.Thumbnailer(); t != nil {
		go func() { _, _ = t.Thumbnail(ctx, seconds) }()
	}

	if proxy != nil {
		if err := proxy.Load(item); err != nil {
			m.proxyMu.Unlock()
			m.fail("engine", errmsg.NewMediaError(errmsg.KindLoadFailed, err).WithItem(item.BaseItem().ID), version)
			return
		}
		if rate != 1.0 {
			_ = proxy.SetRate(rate)
		}
		if status == RequestPaused {
			_ = proxy.Pause()
		}
	}

	m.publish(func(s *Subscription) {
		if prevItem.ID != item.BaseItem().ID {
			s.sendItem(ItemChange{Previous: prevItem, Current: item.BaseItem()})
		}
		s.sendPlaybackItem(PlaybackItemChange{Item: item})
		s.sendPosition(PositionChange{Position: seconds})
		if segment != nil {
			s.sendSegment(SegmentChange{Segment: segment})
		}
		s.sendState(StateChange{Previous: StateLoadingItem, Current: StatePlayback})
	})
	m.proxyMu.Unlock()
}

func loadError(itemID string, err error) error {
	var me *errmsg.MediaError
	if errors.As(err, &me) {
		return err
	}
	return errmsg.NewMediaError(errmsg.KindLoadFailed, err).WithItem(itemID)
}

// Ended handles an engine report that itemID reached its end. Stale reports,
// duplicates and reports more than a second before the runtime are ignored.
func (m *Manager) Ended(itemID string) {
	m.mu.Lock()
	if m.state == StateStopped || m.playbackItem == nil {
		m.mu.Unlock()
		return
	}
	currentID := m.playbackItem.BaseItem().ID
	if currentID != itemID || m.endedID == itemID {
		m.mu.Unlock()
		m.log.WithFields(logrus.Fields{
			"expectedID": itemID,
			"currentID":  currentID,
		}).Trace("ignoring ended event")
		return
	}

	runtime := m.item.Runtime
	if runtime > 0 && runtime-m.seconds > nearEndTolerance {
		m.mu.Unlock()
		return
	}
	m.endedID = itemID
	q := m.queue
	autoplay := m.autoplay
	m.mu.Unlock()

	m.publish(func(s *Subscription) {
		s.sendAction(ActionEvent{Action: ActionEnded, ItemID: itemID})
	})

	if runtime <= 0 {
		m.Stop()
		return
	}

	var next *Provider
	if q != nil {
		next = q.NextItem()
	}
	if next != nil && autoplay {
		m.PlayNewItem(next)
		return
	}
	m.Stop()
}

// Error exposes err, stops the transport and hands the manager back to its
// holder for recycling.
func (m *Manager) Error(err error) {
	m.fail("engine", err, 0)
}

// fail applies an error. A non-zero version limits it to the build that
// produced it.
func (m *Manager) fail(op string, err error, version uint64) {
	m.mu.Lock()
	if m.state == StateStopped || (version != 0 && version != m.buildVersion) {
		m.mu.Unlock()
		return
	}
	prevState := m.state
	hadItem := m.playbackItem != nil
	m.err = err
	m.state = StateError
	m.playbackItem = nil
	m.segment = nil
	m.buildVersion++
	if m.cancelBuild != nil {
		m.cancelBuild()
		m.cancelBuild = nil
	}
	item := m.item
	recycle := m.recycle
	m.mu.Unlock()

	m.log.WithError(err).WithFields(logrus.Fields{
		"op":        op,
		"itemID":    item.ID,
		"itemTitle": item.DisplayTitle(),
	}).Error("error while playing item")

	m.drive("stop", func(e EngineProxy) error { return e.Stop() })

	m.publish(func(s *Subscription) {
		s.sendError(ErrorEvent{Operation: op, ItemID: item.ID, Err: err})
		if hadItem {
			s.sendPlaybackItem(PlaybackItemChange{})
		}
		if prevState != StateError {
			s.sendState(StateChange{Previous: prevState, Current: StateError})
		}
		s.sendAction(ActionEvent{Action: ActionError, ItemID: item.ID, Err: err})
	})

	if recycle != nil {
		recycle(m)
	}
}

// Stop ends the session. Observers are detached in reverse order and every
// subscription is closed.
func (m *Manager) Stop() {
	m.mu.Lock()
	if m.state == StateStopped {
		m.mu.Unlock()
		return
	}
	prevState := m.state
	hadItem := m.playbackItem != nil
	m.state = StateStopped
	m.playbackItem = nil
	m.segment = nil
	m.pending = nil
	m.buildVersion++
	if m.cancelBuild != nil {
		m.cancelBuild()
		m.cancelBuild = nil
	}
	item := m.item
	observers := m.observers
	m.observers = nil
	recycle := m.recycle
	m.mu.Unlock()

	m.drive("stop", func(e EngineProxy) error { return e.Stop() })

	m.publish(func(s *Subscription) {
		if hadItem {
			s.sendPlaybackItem(PlaybackItemChange{})
		}
		s.sendState(StateChange{Previous: prevState, Current: StateStopped})
		s.sendAction(ActionEvent{Action: ActionStop, ItemID: item.ID})
	})

	for i := len(observers) - 1; i >= 0; i-- {
		observers[i].Detach()
	}
	m.closeSubscriptions()

	if recycle != nil {
		recycle(m)
	}
}

// SetPlaybackRequestStatus records the playing/paused intent and drives the
// engine. Setting the current status again does nothing.
func (m *Manager) SetPlaybackRequestStatus(status RequestStatus) {
	m.mu.Lock()
	if m.state == StateStopped || m.status == status {
		m.mu.Unlock()
		return
	}
	m.status = status
	m.mu.Unlock()

	m.publish(func(s *Subscription) {
		s.sendRequestStatus(RequestStatusChange{Status: status})
		s.sendAction(ActionEvent{Action: ActionSetPlaybackRequestStatus})
	})

	switch status {
	case RequestPaused:
		m.drive("pause", func(e EngineProxy) error { return e.Pause() })
	case RequestPlaying:
		m.drive("play", func(e EngineProxy) error { return e.Play() })
	}
}

// TogglePlayPause flips the request status.
func (m *Manager) TogglePlayPause() {
	if m.RequestStatus() == RequestPlaying {
		m.SetPlaybackRequestStatus(RequestPaused)
		return
	}
	m.SetPlaybackRequestStatus(RequestPlaying)
}

// SetRate changes the playback rate.
func (m *Manager) SetRate(rate float64) {
	m.mu.Lock()
	if m.state == StateStopped || m.rate == rate || rate <= 0 {
		m.mu.Unlock()
		return
	}
	m.rate = rate
	m.mu.Unlock()

	m.publish(func(s *Subscription) {
		s.sendRate(RateChange{Rate: rate})
		s.sendAction(ActionEvent{Action: ActionSetRate})
	})
	m.drive("rate", func(e EngineProxy) error { return e.SetRate(rate) })
}

// ToggleShuffle flips shuffle.
func (m *Manager) ToggleShuffle() {
	m.setModes(ActionToggleShuffle, func(shuffle bool, repeat RepeatMode) (bool, RepeatMode) {
		return !shuffle, repeat
	})
}

// SetShuffle enables or disables shuffle.
func (m *Manager) SetShuffle(enabled bool) {
	if m.Shuffle() == enabled {
		return
	}
	m.ToggleShuffle()
}

// CycleRepeatMode moves to the next repeat mode: off, all, one.
func (m *Manager) CycleRepeatMode() {
	m.setModes(ActionCycleRepeatMode, func(shuffle bool, repeat RepeatMode) (bool, RepeatMode) {
		return shuffle, repeat.Next()
	})
}

// SetRepeatMode sets the repeat mode directly.
func (m *Manager) SetRepeatMode(mode RepeatMode) {
	if m.RepeatMode() == mode {
		return
	}
	m.setModes(ActionCycleRepeatMode, func(shuffle bool, _ RepeatMode) (bool, RepeatMode) {
		return shuffle, mode
	})
}

func (m *Manager) setModes(action Action, fn func(bool, RepeatMode) (bool, RepeatMode)) {
	m.mu.Lock()
	if m.state == StateStopped {
		m.mu.Unlock()
		return
	}
	m.shuffle, m.repeat = fn(m.shuffle, m.repeat)
	shuffle, repeat := m.shuffle, m.repeat
	q := m.queue
	m.mu.Unlock()

	if q != nil {
		q.ModeDidChange(shuffle, repeat)
	}
	m.publish(func(s *Subscription) {
		s.sendMode(ModeChange{RepeatMode: repeat, Shuffle: shuffle})
		s.sendAction(ActionEvent{Action: action})
	})
}

// ReportSeconds records the engine-reported position and republishes the
// active segment when it changes.
func (m *Manager) ReportSeconds(pos time.Duration) {
	m.mu.Lock()
	if m.playbackItem == nil {
		m.mu.Unlock()
		return
	}
	segment, changed := m.setSecondsLocked(pos)
	m.mu.Unlock()

	m.publish(func(s *Subscription) {
		s.sendPosition(PositionChange{Position: pos})
		if changed {
			s.sendSegment(SegmentChange{Segment: segment})
		}
	})
}

func (m *Manager) setSecondsLocked(pos time.Duration) (*media.Segment, bool) {
	m.seconds = pos
	segment := media.SegmentAt(m.playbackItem.Segments(), pos)
	if segment == m.segment {
		return segment, false
	}
	m.segment = segment
	return segment, true
}

// Seek moves playback to pos.
func (m *Manager) Seek(pos time.Duration) {
	pos = max(pos, 0)
	m.ReportSeconds(pos)
	if m.PlaybackItem() == nil {
		return
	}
	m.drive("seek", func(e EngineProxy) error { return e.SetSeconds(pos) })
}

// JumpForward skips ahead by d.
func (m *Manager) JumpForward(d time.Duration) {
	if m.PlaybackItem() == nil {
		return
	}
	m.drive("jumpForward", func(e EngineProxy) error { return e.JumpForward(d) })
}

// JumpBackward skips back by d.
func (m *Manager) JumpBackward(d time.Duration) {
	if m.PlaybackItem() == nil {
		return
	}
	m.drive("jumpBackward", func(e EngineProxy) error { return e.JumpBackward(d) })
}

// SetAudioStream selects an audio stream on the current item and the engine.
func (m *Manager) SetAudioStream(index int) {
	item := m.PlaybackItem()
	if item == nil {
		return
	}
	item.SetAudioStreamIndex(index)
	m.drive("audioStream", func(e EngineProxy) error { return e.SetAudioStream(index) })
}

// SetSubtitleStream selects a subtitle stream on the current item and the engine.
func (m *Manager) SetSubtitleStream(index int) {
	item := m.PlaybackItem()
	if item == nil {
		return
	}
	item.SetSubtitleStreamIndex(index)
	m.drive("subtitleStream", func(e EngineProxy) error { return e.SetSubtitleStream(index) })
}

// SkipSegment seeks to the end of seg.
func (m *Manager) SkipSegment(seg media.Segment) {
	m.Seek(seg.End)
}

// SkipCurrentSegment skips the active segment, if any.
func (m *Manager) SkipCurrentSegment() {
	seg := m.CurrentSegment()
	if seg == nil {
		return
	}
	m.SkipSegment(*seg)
}

// State returns the current state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Item returns the current catalog item.
func (m *Manager) Item() media.Item {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.item
}

// PlaybackItem returns the resolved item, or nil while loading or idle.
func (m *Manager) PlaybackItem() *Item {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.playbackItem
}

// Seconds returns the current position.
func (m *Manager) Seconds() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.seconds
}

// Rate returns the playback rate.
func (m *Manager) Rate() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rate
}

// RequestStatus returns the playing/paused intent.
func (m *Manager) RequestStatus() RequestStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Shuffle returns whether shuffle is enabled.
func (m *Manager) Shuffle() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.shuffle
}

// RepeatMode returns the current repeat mode.
func (m *Manager) RepeatMode() RepeatMode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.repeat
}

// CurrentSegment returns the segment containing the current position, or nil.
func (m *Manager) CurrentSegment() *media.Segment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.segment
}

// Err returns the error that moved the manager to the error state.
func (m *Manager) Err() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.err
}

// Queue returns the attached queue, or nil.
func (m *Manager) Queue() Queue {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.queue
}

// Proxy returns the attached engine proxy, or nil.
func (m *Manager) Proxy() EngineProxy {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.proxy
}

// HasActiveSession reports whether an item is loading or playing.
func (m *Manager) HasActiveSession() bool {
	return m.State().IsActive()
}

// IsAudioPlaybackActive reports whether an audio item holds the session,
// paused or not.
func (m *Manager) IsAudioPlaybackActive() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	switch m.state {
	case StateStopped, StateError, StateInitial:
		return false
	case StateLoadingItem, StatePlayback:
		return m.item.IsAudio()
	}
	return false
}

func (m *Manager) setRecycler(fn func(*Manager)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recycle = fn
}
