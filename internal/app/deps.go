package app

import (
	"context"

	"github.com/llehouerou/jellywaves/internal/audioroute"
	"github.com/llehouerou/jellywaves/internal/config"
	"github.com/llehouerou/jellywaves/internal/jellyfin"
	"github.com/llehouerou/jellywaves/internal/lastfm"
	"github.com/llehouerou/jellywaves/internal/media"
	"github.com/llehouerou/jellywaves/internal/notify"
	"github.com/llehouerou/jellywaves/internal/nowplaying"
	"github.com/llehouerou/jellywaves/internal/playback"
	"github.com/llehouerou/jellywaves/internal/player"
	"github.com/llehouerou/jellywaves/internal/progress"
	"github.com/llehouerou/jellywaves/internal/session"
	"github.com/llehouerou/jellywaves/internal/sessioninfo"
	"github.com/llehouerou/jellywaves/internal/state"
)

// Server is the part of the Jellyfin client the app talks to.
type Server interface {
	progress.Reporter
	sessioninfo.Fetcher
	session.Authenticator
	session.Installer
	CurrentUser(ctx context.Context) (id, name string, err error)
	GetItems(ctx context.Context, ids []string) ([]media.Item, error)
	BaseURL() string
}

var _ Server = (*jellyfin.Client)(nil)

// volumeControl is implemented by backends with software volume.
type volumeControl interface {
	SetVolume(level float64)
	Volume() float64
	SetMuted(muted bool)
	Muted() bool
}

var _ volumeControl = (*player.Audio)(nil)

// Deps are the long-lived services the app is built from.
type Deps struct {
	Config  *config.Config
	Server  Server
	Build   playback.BuildFunc
	State   state.Interface
	Backend player.Interface
	Route   *audioroute.Service
	Board   *nowplaying.Board
	Store   session.Store

	Lastfm   *lastfm.Client         // nil when scrobbling is not configured
	Notifier notify.Notifier        // nil disables track notifications
	Artwork  nowplaying.ArtworkFunc // optional
	Icon     notify.IconFunc        // optional

	// ItemIDs are played once signed in instead of the saved queue.
	ItemIDs []string
}
