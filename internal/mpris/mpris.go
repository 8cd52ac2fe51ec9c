//go:build linux

package mpris

import (
	"fmt"
	"hash/fnv"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/llehouerou/jellywaves/internal/nowplaying"
	"github.com/llehouerou/jellywaves/internal/playback"
)

// Adapter exposes a now-playing board over MPRIS on the session bus.
type Adapter struct {
	board  *nowplaying.Board
	server *server.Server
}

// New creates and starts a new MPRIS adapter.
func New(board *nowplaying.Board) (*Adapter, error) {
	a := &Adapter{board: board}

	rootAdapter := &rootAdapter{}
	playerAdapter := &playerAdapter{board: board}

	a.server = server.NewServer("jellywaves", rootAdapter, playerAdapter)

	// Start the server in background
	go func() {
		_ = a.server.Listen()
	}()

	return a, nil
}

// Close stops the adapter and releases D-Bus resources.
func (a *Adapter) Close() error {
	return a.server.Stop()
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error {
	return nil // Not supported
}

func (r *rootAdapter) Quit() error {
	return nil // Not supported - app manages its own lifecycle
}

func (r *rootAdapter) CanQuit() (bool, error) {
	return false, nil
}

func (r *rootAdapter) CanRaise() (bool, error) {
	return false, nil
}

func (r *rootAdapter) HasTrackList() (bool, error) {
	return false, nil
}

func (r *rootAdapter) Identity() (string, error) {
	return "Jellywaves", nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"http", "https"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"audio/mpeg", "audio/flac", "audio/wav", "video/mp4", "video/x-matroska"}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter over the board.
type playerAdapter struct {
	board *nowplaying.Board
}

func (p *playerAdapter) send(c nowplaying.Command) error {
	return p.board.Send(nowplaying.CommandEvent{Command: c})
}

func (p *playerAdapter) Next() error {
	return p.send(nowplaying.CommandNext)
}

func (p *playerAdapter) Previous() error {
	return p.send(nowplaying.CommandPrevious)
}

func (p *playerAdapter) Pause() error {
	return p.send(nowplaying.CommandPause)
}

func (p *playerAdapter) PlayPause() error {
	return p.send(nowplaying.CommandToggle)
}

func (p *playerAdapter) Stop() error {
	return p.send(nowplaying.CommandStop)
}

func (p *playerAdapter) Play() error {
	return p.send(nowplaying.CommandPlay)
}

// Seek moves relative to the current position.
func (p *playerAdapter) Seek(offset types.Microseconds) error {
	pos := p.board.Snapshot().Dynamic.Elapsed + time.Duration(offset)*time.Microsecond
	return p.board.Send(nowplaying.CommandEvent{
		Command:  nowplaying.CommandChangePosition,
		Position: max(pos, 0),
	})
}

func (p *playerAdapter) SetPosition(_ string, position types.Microseconds) error {
	return p.board.Send(nowplaying.CommandEvent{
		Command:  nowplaying.CommandChangePosition,
		Position: time.Duration(position) * time.Microsecond,
	})
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(_ string) error {
	return nil // Not supported
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	return playbackStatus(p.board.Snapshot()), nil
}

func playbackStatus(s nowplaying.Snapshot) types.PlaybackStatus {
	switch {
	case !s.Registered || s.Static == nil:
		return types.PlaybackStatusStopped
	case s.Dynamic.Playing:
		return types.PlaybackStatusPlaying
	default:
		return types.PlaybackStatusPaused
	}
}

func (p *playerAdapter) Rate() (float64, error) {
	return p.board.Snapshot().Dynamic.Rate, nil
}

func (p *playerAdapter) SetRate(rate float64) error {
	return p.board.Send(nowplaying.CommandEvent{Command: nowplaying.CommandChangeRate, Rate: rate})
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	return metadata(p.board.Snapshot()), nil
}

func metadata(s nowplaying.Snapshot) types.Metadata {
	if s.Static == nil {
		return types.Metadata{}
	}
	info := s.Static

	meta := types.Metadata{
		TrackId: dbus.ObjectPath(formatTrackID(info.ItemID)),
		Length:  types.Microseconds(info.Duration.Microseconds()),
		Title:   info.Title,
		Album:   info.Album,
		ArtUrl:  info.ArtworkURL,
	}
	if info.Artist != "" {
		meta.Artist = []string{info.Artist}
	}
	return meta
}

func (p *playerAdapter) Volume() (float64, error) {
	return 1.0, nil // Volume control not exposed via the board
}

func (p *playerAdapter) SetVolume(_ float64) error {
	return nil // Not supported
}

func (p *playerAdapter) Position() (int64, error) {
	return p.board.Snapshot().Dynamic.Elapsed.Microseconds(), nil
}

func (p *playerAdapter) MinimumRate() (float64, error) {
	return 0.5, nil
}

func (p *playerAdapter) MaximumRate() (float64, error) {
	return 2.0, nil
}

func (p *playerAdapter) CanGoNext() (bool, error) {
	return p.board.Snapshot().CanSend(nowplaying.CommandNext), nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	return p.board.Snapshot().CanSend(nowplaying.CommandPrevious), nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	return p.board.Snapshot().CanSend(nowplaying.CommandPlay), nil
}

func (p *playerAdapter) CanPause() (bool, error) {
	return p.board.Snapshot().CanSend(nowplaying.CommandPause), nil
}

func (p *playerAdapter) CanSeek() (bool, error) {
	s := p.board.Snapshot()
	return s.CanSend(nowplaying.CommandChangePosition) && s.Static != nil && !s.Static.IsLive, nil
}

func (p *playerAdapter) CanControl() (bool, error) {
	return true, nil
}

// LoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
func (p *playerAdapter) LoopStatus() (types.LoopStatus, error) {
	switch p.board.Snapshot().Dynamic.Repeat {
	case playback.RepeatOne:
		return types.LoopStatusTrack, nil
	case playback.RepeatAll:
		return types.LoopStatusPlaylist, nil
	case playback.RepeatOff:
		return types.LoopStatusNone, nil
	}
	return types.LoopStatusNone, nil
}

// SetLoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
func (p *playerAdapter) SetLoopStatus(status types.LoopStatus) error {
	e := nowplaying.CommandEvent{Command: nowplaying.CommandSetRepeat}
	switch status {
	case types.LoopStatusNone:
		e.Repeat = playback.RepeatOff
	case types.LoopStatusTrack:
		e.Repeat = playback.RepeatOne
	case types.LoopStatusPlaylist:
		e.Repeat = playback.RepeatAll
	}
	return p.board.Send(e)
}

// Shuffle implements OrgMprisMediaPlayer2PlayerAdapterShuffle.
func (p *playerAdapter) Shuffle() (bool, error) {
	return p.board.Snapshot().Dynamic.Shuffle, nil
}

// SetShuffle implements OrgMprisMediaPlayer2PlayerAdapterShuffle.
func (p *playerAdapter) SetShuffle(shuffle bool) error {
	return p.board.Send(nowplaying.CommandEvent{Command: nowplaying.CommandSetShuffle, Shuffle: shuffle})
}

func formatTrackID(itemID string) string {
	h := fnv.New64a()
	h.Write([]byte(itemID))
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}
