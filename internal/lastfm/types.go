package lastfm

import (
	"time"

	"github.com/shkh/lastfm-go/lastfm"

	"github.com/llehouerou/jellywaves/internal/media"
	"github.com/llehouerou/jellywaves/internal/state"
)

// ScrobbleTrack is one play as Last.fm sees it. ItemID is the server item
// it came from and is never sent.
type ScrobbleTrack struct {
	ItemID    string
	Artist    string
	Track     string
	Album     string
	Duration  time.Duration
	Timestamp time.Time // playback start
}

// TrackFromItem describes a play of item started at startedAt.
func TrackFromItem(item media.Item, startedAt time.Time) ScrobbleTrack {
	return ScrobbleTrack{
		ItemID:    item.ID,
		Artist:    item.PrimaryArtist(),
		Track:     item.Name,
		Album:     item.Album,
		Duration:  item.Runtime,
		Timestamp: startedAt,
	}
}

// TrackFromPending restores a queued play.
func TrackFromPending(p state.PendingScrobble) ScrobbleTrack {
	return ScrobbleTrack{
		ItemID:    p.ItemID,
		Artist:    p.Artist,
		Track:     p.Track,
		Album:     p.Album,
		Duration:  time.Duration(p.DurationSecs) * time.Second,
		Timestamp: p.Timestamp,
	}
}

// pending converts the track for the outbox.
func (t ScrobbleTrack) pending(cause error) state.PendingScrobble {
	return state.PendingScrobble{
		Artist:       t.Artist,
		Track:        t.Track,
		Album:        t.Album,
		DurationSecs: int(t.Duration.Seconds()),
		Timestamp:    t.Timestamp,
		ItemID:       t.ItemID,
		LastError:    cause.Error(),
	}
}

// params returns the fields shared by now playing and scrobble calls.
func (t ScrobbleTrack) params() lastfm.P {
	p := lastfm.P{
		"artist": t.Artist,
		"track":  t.Track,
	}
	if t.Album != "" {
		p["album"] = t.Album
	}
	if t.Duration > 0 {
		p["duration"] = int(t.Duration.Seconds())
	}
	return p
}

// ScrobbleState tracks the current item of a scrobbler.
type ScrobbleState struct {
	ItemID         string
	StartedAt      time.Time
	Scrobbled      bool
	NowPlayingSent bool
}
