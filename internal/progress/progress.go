// Package progress reports playback start, progress and stop to the server.
package progress

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/jellywaves/internal/jellyfin"
	"github.com/llehouerou/jellywaves/internal/media"
	"github.com/llehouerou/jellywaves/internal/playback"
	"github.com/llehouerou/jellywaves/internal/state"
)

const (
	DefaultInterval  = 10 * time.Second
	DefaultThreshold = 0.9

	requestTimeout = 15 * time.Second
)

// Reporter sends playback reports to the server.
type Reporter interface {
	ReportStart(ctx context.Context, r jellyfin.PlaybackReport) error
	ReportProgress(ctx context.Context, r jellyfin.PlaybackReport) error
	ReportStopped(ctx context.Context, r jellyfin.PlaybackReport) error
	MarkPlayed(ctx context.Context, itemID string) error
}

var _ Reporter = (*jellyfin.Client)(nil)

// Options tunes an Observer.
type Options struct {
	Interval  time.Duration // between progress reports
	Threshold float64       // played fraction that marks an item as played
}

// Observer follows a playback manager and keeps the server informed of
// what is playing. Start, stop and played reports that fail are queued in
// the outbox when one is given.
type Observer struct {
	reporter Reporter
	outbox   state.ReportOutbox
	opts     Options
	log      *logrus.Entry

	mu        sync.Mutex
	sub       *playback.Subscription
	manager   *playback.Manager
	item      *playback.Item
	seconds   time.Duration
	status    playback.RequestStatus
	sentStart bool
	marked    bool
	timer     *time.Timer
	done      chan struct{}
	finish    sync.Once
}

var _ playback.Observer = (*Observer)(nil)

// New creates an observer. outbox may be nil.
func New(reporter Reporter, outbox state.ReportOutbox, opts Options) *Observer {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Threshold <= 0 || opts.Threshold > 1 {
		opts.Threshold = DefaultThreshold
	}
	return &Observer{
		reporter: reporter,
		outbox:   outbox,
		opts:     opts,
		log:      logrus.WithField("component", "progress"),
	}
}

// Attach starts reporting for m.
func (o *Observer) Attach(m *playback.Manager) {
	sub := m.Subscribe()
	done := make(chan struct{})

	o.mu.Lock()
	o.manager = m
	o.sub = sub
	o.done = done
	o.status = m.RequestStatus()
	o.timer = time.AfterFunc(o.opts.Interval, o.tick)
	o.mu.Unlock()

	if it := m.PlaybackItem(); it != nil {
		o.itemChanged(it)
	}
	go o.run(sub, done)
}

// Detach sends the final report and stops the timer.
func (o *Observer) Detach() {
	o.stop()
}

func (o *Observer) run(sub *playback.Subscription, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-sub.Done:
			o.drainItems(sub)
			o.stop()
			return
		case e := <-sub.PlaybackItemChanged:
			o.itemChanged(e.Item)
		case e := <-sub.PositionChanged:
			// Item changes are published before the positions that follow
			// them, so apply those first.
			o.drainItems(sub)
			o.setSeconds(e.Position)
		case e := <-sub.RequestStatusChanged:
			o.statusChanged(e.Status)
		case e := <-sub.Actions:
			if e.Action == playback.ActionStop {
				o.stop()
				return
			}
		}
	}
}

func (o *Observer) drainItems(sub *playback.Subscription) {
	for {
		select {
		case e := <-sub.PlaybackItemChanged:
			o.itemChanged(e.Item)
		default:
			return
		}
	}
}

func (o *Observer) stop() {
	o.finish.Do(func() {
		o.mu.Lock()
		if o.timer != nil {
			o.timer.Stop()
		}
		m, sub, done := o.manager, o.sub, o.done
		o.mu.Unlock()

		o.closeItem()
		if done != nil {
			close(done)
		}
		if m != nil && sub != nil {
			m.Unsubscribe(sub)
		}
	})
}

func (o *Observer) tick() {
	o.checkPlayed()
	o.sendReport()
	o.poke()
}

// poke restarts the report timer.
func (o *Observer) poke() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.timer == nil || o.isFinished() {
		return
	}
	o.timer.Reset(o.opts.Interval)
}

// isFinished reports whether stop ran. Callers hold o.mu.
func (o *Observer) isFinished() bool {
	if o.done == nil {
		return false
	}
	select {
	case <-o.done:
		return true
	default:
		return false
	}
}

func (o *Observer) itemChanged(it *playback.Item) {
	o.mu.Lock()
	same := it != nil && o.item == it
	o.mu.Unlock()
	if same {
		return
	}

	o.closeItem()
	if it == nil {
		return
	}

	o.mu.Lock()
	o.item = it
	o.seconds = it.BaseItem().StartPosition
	o.sentStart = false
	o.marked = false
	o.mu.Unlock()

	o.sendReport()
	o.poke()
}

func (o *Observer) setSeconds(pos time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.item != nil {
		o.seconds = pos
	}
}

func (o *Observer) statusChanged(s playback.RequestStatus) {
	o.mu.Lock()
	changed := o.status != s
	o.status = s
	hasItem := o.item != nil
	o.mu.Unlock()

	if changed && hasItem {
		o.sendReport()
		o.poke()
	}
}

// sendReport sends the start report for the current item, or a progress
// report once the start went out.
func (o *Observer) sendReport() {
	o.mu.Lock()
	if o.item == nil || o.isFinished() {
		o.mu.Unlock()
		return
	}
	kind := kindProgress
	if !o.sentStart {
		o.sentStart = true
		kind = kindStart
	}
	r := o.reportLocked()
	o.mu.Unlock()

	o.dispatch(kind, r)
}

// checkPlayed marks the current item as played once it crosses the
// threshold. Seeking back does not undo it.
func (o *Observer) checkPlayed() {
	o.mu.Lock()
	item := o.item
	mark := item != nil && !o.marked && reachedThreshold(item.BaseItem(), o.seconds, o.opts.Threshold)
	if mark {
		o.marked = true
	}
	o.mu.Unlock()

	if mark {
		o.dispatch(kindPlayed, jellyfin.PlaybackReport{ItemID: item.BaseItem().ID})
	}
}

// closeItem runs the played check and sends the final stop report for the
// outgoing item.
func (o *Observer) closeItem() {
	o.checkPlayed()

	o.mu.Lock()
	if o.item == nil {
		o.mu.Unlock()
		return
	}
	r := o.reportLocked()
	o.item = nil
	o.sentStart = false
	o.marked = false
	o.mu.Unlock()

	o.dispatch(kindStop, r)
}

func (o *Observer) reportLocked() jellyfin.PlaybackReport {
	return buildReport(o.item, o.seconds, o.status == playback.RequestPaused)
}

func buildReport(it *playback.Item, pos time.Duration, paused bool) jellyfin.PlaybackReport {
	audio := it.AudioStreamIndex()
	subtitle := it.SubtitleStreamIndex()
	r := jellyfin.PlaybackReport{
		ItemID:        it.BaseItem().ID,
		MediaSourceID: it.Source().ID,
		PlaySessionID: it.PlaySessionID(),
		PositionTicks: media.Ticks(pos),
		IsPaused:      paused,
	}
	if audio >= 0 {
		r.AudioStreamIndex = &audio
	}
	if subtitle >= 0 {
		r.SubtitleStreamIndex = &subtitle
	}
	return r
}

func reachedThreshold(item media.Item, pos time.Duration, threshold float64) bool {
	if !item.HasRuntime() {
		return false
	}
	return float64(pos)/float64(item.Runtime) >= threshold
}

type reportKind int

const (
	kindStart reportKind = iota
	kindProgress
	kindStop
	kindPlayed
)

func (k reportKind) String() string {
	switch k {
	case kindStart:
		return state.ReportStart
	case kindProgress:
		return "progress"
	case kindStop:
		return state.ReportStop
	case kindPlayed:
		return state.ReportPlayed
	default:
		return "unknown"
	}
}

// dispatch sends r in the background.
func (o *Observer) dispatch(kind reportKind, r jellyfin.PlaybackReport) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		err := send(ctx, o.reporter, kind, r)
		if err == nil {
			return
		}

		entry := o.log.WithError(err).WithFields(logrus.Fields{
			"report": kind.String(),
			"itemID": r.ItemID,
		})
		if kind == kindProgress {
			entry.Warn("failed to send progress report")
			return
		}
		entry.Error("failed to send playback report")
		o.enqueue(kind, r, err)
	}()
}

func send(ctx context.Context, rep Reporter, kind reportKind, r jellyfin.PlaybackReport) error {
	switch kind {
	case kindStart:
		return rep.ReportStart(ctx, r)
	case kindProgress:
		return rep.ReportProgress(ctx, r)
	case kindStop:
		return rep.ReportStopped(ctx, r)
	case kindPlayed:
		return rep.MarkPlayed(ctx, r.ItemID)
	}
	return nil
}

func (o *Observer) enqueue(kind reportKind, r jellyfin.PlaybackReport, cause error) {
	if o.outbox == nil {
		return
	}
	err := o.outbox.AddPendingReport(state.PendingReport{
		Kind:                kind.String(),
		ItemID:              r.ItemID,
		MediaSourceID:       r.MediaSourceID,
		PlaySessionID:       r.PlaySessionID,
		AudioStreamIndex:    r.AudioStreamIndex,
		SubtitleStreamIndex: r.SubtitleStreamIndex,
		PositionTicks:       r.PositionTicks,
		IsPaused:            r.IsPaused,
		LastError:           cause.Error(),
	})
	if err != nil {
		o.log.WithError(err).Error("failed to queue playback report")
	}
}
