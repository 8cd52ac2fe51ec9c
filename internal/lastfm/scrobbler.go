package lastfm

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/jellywaves/internal/media"
	"github.com/llehouerou/jellywaves/internal/playback"
	"github.com/llehouerou/jellywaves/internal/state"
)

// Submitter sends plays to Last.fm.
type Submitter interface {
	IsAuthenticated() bool
	UpdateNowPlaying(track ScrobbleTrack) error
	Scrobble(track ScrobbleTrack) error
}

var _ Submitter = (*Client)(nil)

// Scrobbler follows a playback manager and scrobbles audio items.
// Failed scrobbles go to the outbox for RetryPendingCmd.
type Scrobbler struct {
	client Submitter
	outbox state.ScrobbleOutbox
	log    *logrus.Entry

	mu     sync.Mutex
	state  *ScrobbleState
	item   media.Item
	cancel context.CancelFunc
	done   chan struct{}
}

var _ playback.Observer = (*Scrobbler)(nil)

// NewScrobbler creates a scrobbler. outbox may be nil.
func NewScrobbler(client Submitter, outbox state.ScrobbleOutbox) *Scrobbler {
	return &Scrobbler{
		client: client,
		outbox: outbox,
		log:    logrus.WithField("component", "lastfm"),
	}
}

// Attach starts following m.
func (s *Scrobbler) Attach(m *playback.Manager) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	sub := m.Subscribe()

	s.mu.Lock()
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	if it := m.PlaybackItem(); it != nil {
		s.itemStarted(it.BaseItem())
	}
	go s.run(ctx, m, sub, done)
}

// Detach stops following the manager. Submissions already started finish
// in the background.
func (s *Scrobbler) Detach() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

func (s *Scrobbler) run(ctx context.Context, m *playback.Manager, sub *playback.Subscription, done chan struct{}) {
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
				s.itemStarted(e.Item.BaseItem())
			}
		case e := <-sub.PositionChanged:
			s.checkThreshold(e.Position)
		}
	}
}

// itemStarted resets the scrobble state and sends now playing.
func (s *Scrobbler) itemStarted(item media.Item) {
	s.mu.Lock()
	if s.state != nil && s.state.ItemID == item.ID {
		s.mu.Unlock()
		return
	}
	if !item.IsAudio() || !s.client.IsAuthenticated() {
		s.state = nil
		s.mu.Unlock()
		return
	}
	s.item = item
	s.state = &ScrobbleState{
		ItemID:         item.ID,
		StartedAt:      time.Now(),
		NowPlayingSent: true,
	}
	track := s.trackLocked()
	s.mu.Unlock()

	go func() {
		// Now playing is best-effort.
		if err := s.client.UpdateNowPlaying(track); err != nil {
			s.log.WithError(err).Debug("failed to update now playing")
		}
	}()
}

// checkThreshold scrobbles the current track once it played long enough.
// Last.fm rules: scrobble after 50% of duration OR 4 minutes, whichever comes first.
// Track must be at least 30 seconds long.
func (s *Scrobbler) checkThreshold(position time.Duration) {
	s.mu.Lock()
	if s.state == nil || s.state.Scrobbled || position < scrobbleThreshold(s.item.Runtime) {
		s.mu.Unlock()
		return
	}
	s.state.Scrobbled = true
	track := s.trackLocked()
	s.mu.Unlock()

	go func() {
		if err := s.client.Scrobble(track); err != nil {
			s.log.WithError(err).WithField("itemID", track.ItemID).Warn("scrobble failed, queueing")
			s.queue(track, err)
		}
	}()
}

// scrobbleThreshold returns the position that triggers a scrobble, or a
// position never reached when the track is too short.
func scrobbleThreshold(duration time.Duration) time.Duration {
	if duration < 30*time.Second {
		return time.Duration(math.MaxInt64)
	}
	return min(duration/2, 4*time.Minute)
}

func (s *Scrobbler) trackLocked() ScrobbleTrack {
	return TrackFromItem(s.item, s.state.StartedAt)
}

func (s *Scrobbler) queue(track ScrobbleTrack, cause error) {
	if s.outbox == nil {
		return
	}
	if err := s.outbox.AddPendingScrobble(track.pending(cause)); err != nil {
		s.log.WithError(err).Error("failed to queue scrobble")
	}
}
