package notify

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/jellywaves/internal/media"
	"github.com/llehouerou/jellywaves/internal/playback"
)

const (
	trackExpire = 5 * time.Second
	iconTimeout = 10 * time.Second
)

// IconFunc returns a local image path for an item, or "".
type IconFunc func(ctx context.Context, item media.Item) string

// TrackNotifier shows a notification whenever a new item starts playing.
// Each notification replaces the previous one, and the last one is
// dismissed when the manager lets go of the notifier.
type TrackNotifier struct {
	notifier Notifier
	icon     IconFunc
	log      *logrus.Entry

	mu     sync.Mutex
	lastID uint32
	itemID string
	cancel context.CancelFunc
	done   chan struct{}
}

var _ playback.Observer = (*TrackNotifier)(nil)

// NewTrackNotifier creates an observer. icon may be nil.
func NewTrackNotifier(n Notifier, icon IconFunc) *TrackNotifier {
	return &TrackNotifier{
		notifier: n,
		icon:     icon,
		log:      logrus.WithField("component", "notify"),
	}
}

// Attach starts following m.
func (t *TrackNotifier) Attach(m *playback.Manager) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	sub := m.Subscribe()

	t.mu.Lock()
	t.cancel = cancel
	t.done = done
	t.mu.Unlock()

	go t.run(ctx, m, sub, done)
}

// Detach stops following the manager and withdraws the notification.
func (t *TrackNotifier) Detach() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel = nil
	t.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done

	t.mu.Lock()
	id := t.lastID
	t.lastID = 0
	t.itemID = ""
	t.mu.Unlock()
	if err := t.notifier.Dismiss(id); err != nil {
		t.log.WithError(err).Debug("failed to dismiss notification")
	}
}

func (t *TrackNotifier) run(ctx context.Context, m *playback.Manager, sub *playback.Subscription, done chan struct{}) {
	defer close(done)
	defer m.Unsubscribe(sub)

	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.Done:
			return
		case e := <-sub.PlaybackItemChanged:
			if e.Item != nil {
				t.show(ctx, e.Item.BaseItem())
			}
		}
	}
}

func (t *TrackNotifier) show(ctx context.Context, item media.Item) {
	t.mu.Lock()
	if t.itemID == item.ID {
		t.mu.Unlock()
		return
	}
	t.itemID = item.ID
	replaces := t.lastID
	t.mu.Unlock()

	n := Notification{
		Summary:   item.DisplayTitle(),
		Body:      body(item),
		Expire:    trackExpire,
		Replaces:  replaces,
		Transient: true,
	}
	if t.icon != nil {
		iconCtx, cancel := context.WithTimeout(ctx, iconTimeout)
		n.Icon = t.icon(iconCtx, item)
		cancel()
	}

	id, err := t.notifier.Notify(n)
	if err != nil {
		t.log.WithError(err).Debug("failed to send notification")
		return
	}

	t.mu.Lock()
	t.lastID = id
	t.mu.Unlock()
}

// body returns the second line: artist and album for music, the item kind
// otherwise.
func body(item media.Item) string {
	switch item.Type {
	case media.TypeAudio, media.TypeMusicVideo:
		return strings.Join(lo.Compact([]string{item.PrimaryArtist(), item.Album}), " - ")
	case media.TypeEpisode:
		return "Episode"
	case media.TypeTVChannel, media.TypeProgram:
		return "Live TV"
	default:
		return string(item.Type)
	}
}
