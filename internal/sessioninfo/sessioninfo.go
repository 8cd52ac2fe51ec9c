// Package sessioninfo polls the server for how the active item is being
// delivered (direct play or transcode).
package sessioninfo

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/jellywaves/internal/jellyfin"
	"github.com/llehouerou/jellywaves/internal/playback"
)

// PollInterval is the delay between session queries.
const PollInterval = 5 * time.Second

// Fetcher lists the server sessions of this device.
type Fetcher interface {
	GetSessions(ctx context.Context) ([]jellyfin.Session, error)
}

var _ Fetcher = (*jellyfin.Client)(nil)

// Info is the delivery state of the active item.
type Info struct {
	ItemID        string
	PlayMethod    string // DirectPlay, DirectStream or Transcode
	IsTranscoding bool
	Reasons       []string
	Bitrate       int // bits per second, zero when unknown
	VideoCodec    string
	AudioCodec    string
	Container     string
}

// Summary returns a one-line description, e.g. "Transcode h264/aac 4.0 MB/s".
func (i Info) Summary() string {
	if i.PlayMethod == "" {
		return ""
	}
	parts := []string{i.PlayMethod}
	codecs := lo.Compact([]string{i.VideoCodec, i.AudioCodec})
	if len(codecs) > 0 {
		parts = append(parts, strings.Join(codecs, "/"))
	}
	if i.Bitrate > 0 {
		parts = append(parts, humanize.Bytes(uint64(i.Bitrate/8))+"/s")
	}
	return strings.Join(parts, " ")
}

// Observer polls while attached to a manager with an item.
type Observer struct {
	fetcher  Fetcher
	interval time.Duration
	log      *logrus.Entry

	mu      sync.Mutex
	info    Info
	updates chan Info
	cancel  context.CancelFunc
	done    chan struct{}
}

var _ playback.Observer = (*Observer)(nil)

// New creates an observer polling every PollInterval.
func New(fetcher Fetcher) *Observer {
	return &Observer{
		fetcher:  fetcher,
		interval: PollInterval,
		log:      logrus.WithField("component", "sessioninfo"),
		updates:  make(chan Info, 1),
	}
}

// Attach starts polling for m.
func (o *Observer) Attach(m *playback.Manager) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	o.mu.Lock()
	o.cancel = cancel
	o.done = done
	o.mu.Unlock()

	go o.run(ctx, m, done)
}

// Detach stops polling and waits for an in-flight query to end.
func (o *Observer) Detach() {
	o.mu.Lock()
	cancel, done := o.cancel, o.done
	o.cancel = nil
	o.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// Info returns the latest delivery state.
func (o *Observer) Info() Info {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.info
}

// Updates delivers each new Info. Only the latest unread value is kept.
func (o *Observer) Updates() <-chan Info {
	return o.updates
}

func (o *Observer) run(ctx context.Context, m *playback.Manager, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.poll(ctx, m)
		}
	}
}

func (o *Observer) poll(ctx context.Context, m *playback.Manager) {
	it := m.PlaybackItem()
	if it == nil {
		return
	}
	itemID := it.BaseItem().ID

	sessions, err := o.fetcher.GetSessions(ctx)
	if err != nil {
		if ctx.Err() == nil {
			o.log.WithError(err).Warn("failed to fetch sessions")
		}
		return
	}

	s, ok := lo.Find(sessions, func(s jellyfin.Session) bool {
		return s.NowPlayingItemID == itemID
	})
	if !ok {
		o.log.WithField("itemID", itemID).Trace("no session playing the item")
		return
	}
	o.publish(toInfo(itemID, s))
}

func toInfo(itemID string, s jellyfin.Session) Info {
	info := Info{
		ItemID:        itemID,
		PlayMethod:    s.PlayMethod,
		IsTranscoding: s.PlayMethod == "Transcode",
	}
	if t := s.Transcoding; t != nil {
		info.Reasons = t.Reasons
		info.Bitrate = t.Bitrate
		info.VideoCodec = t.VideoCodec
		info.AudioCodec = t.AudioCodec
		info.Container = t.Container
	}
	return info
}

func (i Info) equal(j Info) bool {
	return i.ItemID == j.ItemID &&
		i.PlayMethod == j.PlayMethod &&
		i.IsTranscoding == j.IsTranscoding &&
		slices.Equal(i.Reasons, j.Reasons) &&
		i.Bitrate == j.Bitrate &&
		i.VideoCodec == j.VideoCodec &&
		i.AudioCodec == j.AudioCodec &&
		i.Container == j.Container
}

func (o *Observer) publish(info Info) {
	o.mu.Lock()
	changed := !o.info.equal(info)
	o.info = info
	o.mu.Unlock()

	if !changed {
		return
	}
	select {
	case <-o.updates:
	default:
	}
	select {
	case o.updates <- info:
	default:
	}
}
