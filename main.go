package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/jellywaves/internal/app"
	"github.com/llehouerou/jellywaves/internal/artwork"
	"github.com/llehouerou/jellywaves/internal/audioroute"
	"github.com/llehouerou/jellywaves/internal/config"
	"github.com/llehouerou/jellywaves/internal/errmsg"
	"github.com/llehouerou/jellywaves/internal/jellyfin"
	"github.com/llehouerou/jellywaves/internal/lastfm"
	"github.com/llehouerou/jellywaves/internal/log"
	"github.com/llehouerou/jellywaves/internal/media"
	"github.com/llehouerou/jellywaves/internal/mpris"
	"github.com/llehouerou/jellywaves/internal/notify"
	"github.com/llehouerou/jellywaves/internal/nowplaying"
	"github.com/llehouerou/jellywaves/internal/player"
	"github.com/llehouerou/jellywaves/internal/session"
	"github.com/llehouerou/jellywaves/internal/state"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, errmsg.Format(errmsg.OpInitialize, err))
		os.Exit(1)
	}
}

func run(itemIDs []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if !cfg.HasServerConfig() {
		return errors.New("no server configured: set [server] url and username in ~/.config/jellywaves/config.toml")
	}

	logFile, err := log.Setup(cfg.GetLogConfig())
	if err != nil {
		return err
	}
	defer logFile.Close()
	entry := logrus.WithField("component", "main")

	capture, err := log.CaptureStderr(logrus.WithField("component", "stderr"))
	if err != nil {
		entry.WithError(err).Warn("failed to capture stderr")
	} else {
		defer capture.Stop()
	}

	stateMgr, err := state.Open()
	if err != nil {
		return fmt.Errorf("open state: %w", err)
	}
	defer stateMgr.Close()

	deviceID, err := loadDeviceID()
	if err != nil {
		entry.WithError(err).Warn("failed to load device id, using a temporary one")
	}
	client := jellyfin.NewClient(cfg.Server.URL, cfg.DeviceName(), deviceID)

	engineCfg := cfg.GetEngineConfig()
	buildOpts := jellyfin.BuildOptions{AudioLanguage: cfg.GetPlaybackConfig().AudioLanguage}
	var (
		backend player.Interface
		route   *audioroute.Service
	)
	switch engineCfg.Backend {
	case config.BackendAudio:
		audio := player.NewAudio(client.HTTPClient())
		restoreVolume(audio, stateMgr, entry)
		backend = audio
		route = audioroute.New(audioroute.Speaker{})
		buildOpts.AudioContainers = []string{"mp3", "flac", "wav"}
	default:
		backend = player.NewMPV(engineCfg.MPVPath, engineCfg.MPVArgs...)
		route = audioroute.New(nil)
	}
	defer backend.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := route.WatchSleep(ctx); err != nil {
			entry.WithError(err).Debug("sleep notifications unavailable")
		}
	}()

	board := nowplaying.NewBoard()
	if adapter, err := mpris.New(board); err != nil {
		entry.WithError(err).Warn("failed to start MPRIS")
	} else {
		defer adapter.Close()
	}

	deps := app.Deps{
		Config:  cfg,
		Server:  client,
		Build:   client.Builder(buildOpts),
		State:   stateMgr,
		Backend: backend,
		Route:   route,
		Board:   board,
		Store:   session.KeyringStore{},
		ItemIDs: itemIDs,
	}

	if cache, err := artwork.NewCache(client); err != nil {
		entry.WithError(err).Warn("artwork cache unavailable")
	} else {
		deps.Icon = func(ctx context.Context, item media.Item) string {
			path, err := cache.Path(ctx, item)
			if err != nil {
				entry.WithError(err).Debug("failed to fetch artwork")
			}
			return path
		}
		deps.Artwork = func(ctx context.Context, item media.Item) string {
			if path := deps.Icon(ctx, item); path != "" {
				return "file://" + path
			}
			return ""
		}
	}

	if n, err := notify.New(); err != nil {
		entry.WithError(err).Warn("notifications unavailable")
	} else {
		deps.Notifier = n
	}

	if cfg.HasLastfmConfig() {
		deps.Lastfm = lastfm.New(cfg.Lastfm.APIKey, cfg.Lastfm.APISecret)
		if s, err := stateMgr.GetLastfmSession(); err != nil {
			entry.WithError(err).Warn("failed to load Last.fm session")
		} else if s != nil {
			deps.Lastfm.SetSessionKey(s.SessionKey)
		}
	}

	p := tea.NewProgram(app.New(deps), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// loadDeviceID returns the id this install reports to the server, creating
// it on first run so the server sees one device across restarts.
func loadDeviceID() (string, error) {
	path, err := xdg.DataFile(filepath.Join("jellywaves", "device_id"))
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id, nil
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}

	id := uuid.NewString()
	if err := os.WriteFile(path, []byte(id+"\n"), 0o600); err != nil {
		return id, err
	}
	return id, nil
}

func restoreVolume(a *player.Audio, st state.Interface, entry *logrus.Entry) {
	v, err := st.GetVolume()
	if err != nil {
		entry.WithError(err).Warn("failed to load volume")
		return
	}
	a.SetVolume(v.Volume)
	a.SetMuted(v.Muted)
}
