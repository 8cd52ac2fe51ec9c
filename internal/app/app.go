// Package app is the terminal front end: sign-in, the player bar and the key
// bindings that drive the playback manager.
package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/jellywaves/internal/config"
	"github.com/llehouerou/jellywaves/internal/container"
	"github.com/llehouerou/jellywaves/internal/lastfm"
	"github.com/llehouerou/jellywaves/internal/playback"
	"github.com/llehouerou/jellywaves/internal/playlist"
	"github.com/llehouerou/jellywaves/internal/session"
	"github.com/llehouerou/jellywaves/internal/sessioninfo"
	"github.com/llehouerou/jellywaves/internal/ui/signin"
)

type screen int

const (
	screenConnecting screen = iota
	screenSignIn
	screenMain
)

const (
	tickInterval       = 250 * time.Millisecond
	resumeSaveInterval = 30 * time.Second
	requestTimeout     = 15 * time.Second
	scrubStep          = 5 * time.Second
	rateStep           = 0.25
	minRate            = 0.5
	maxRate            = 2.0
	volumeStep         = 0.05
	queueSupplement    = "queue"
)

// Model is the root application model.
type Model struct {
	deps     Deps
	settings config.PlaybackSettings
	log      *logrus.Entry

	holder    *playback.Holder
	container *container.State
	registry  *session.Registry
	coord     *session.Coordinator
	refresher *session.Refresher

	screen  screen
	signIn  signin.Model
	started bool

	// Set by play for the manager it created last.
	current  *playback.Manager
	queue    *playlist.PlayingQueue
	delivery *sessioninfo.Observer

	lastfmToken    string
	lastfmRetrying bool

	status string
	width  int
	height int
}

// New creates the application model. Nothing talks to the server until the
// program runs Init.
func New(d Deps) Model {
	reg := session.NewRegistry()
	m := Model{
		deps:      d,
		settings:  d.Config.GetPlaybackConfig(),
		log:       logrus.WithField("component", "app"),
		holder:    playback.NewHolder(),
		container: container.New(),
		registry:  reg,
		coord:     session.NewCoordinator(reg),
		refresher: session.NewRefresher(d.Server, d.Store),
		screen:    screenConnecting,
		signIn:    signin.New(d.Server.BaseURL(), d.Config.Server.Username),
	}
	m.lastfmRetrying = m.lastfmLinked()
	return m
}

// Holder returns the holder of the active playback session.
func (m Model) Holder() *playback.Holder {
	return m.holder
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.connectCmd(),
		tickCmd(),
		resumeSaveTickCmd(),
		waitForSignal(m.holder.Changed(), holderChangedMsg{}),
		waitForSignal(m.container.Changed(), containerChangedMsg{}),
		waitForSignal(m.deps.Board.Changed(), boardChangedMsg{}),
	}
	if m.lastfmRetrying {
		cmds = append(cmds, lastfm.RetryTickCmd())
	}
	return tea.Batch(cmds...)
}

func (m Model) lastfmLinked() bool {
	return m.deps.Lastfm != nil && m.deps.Lastfm.IsAuthenticated()
}
