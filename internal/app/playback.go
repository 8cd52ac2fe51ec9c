package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"

	"github.com/llehouerou/jellywaves/internal/engine"
	"github.com/llehouerou/jellywaves/internal/errmsg"
	"github.com/llehouerou/jellywaves/internal/lastfm"
	"github.com/llehouerou/jellywaves/internal/media"
	"github.com/llehouerou/jellywaves/internal/notify"
	"github.com/llehouerou/jellywaves/internal/nowplaying"
	"github.com/llehouerou/jellywaves/internal/playback"
	"github.com/llehouerou/jellywaves/internal/playlist"
	"github.com/llehouerou/jellywaves/internal/progress"
	"github.com/llehouerou/jellywaves/internal/sessioninfo"
)

type playOptions struct {
	start   time.Duration
	paused  bool
	shuffle bool
	repeat  playback.RepeatMode
}

// play starts a new playback session over items at index. The new manager
// is installed before it starts so the previous one stops first.
func (m *Model) play(items []media.Item, index int, opts playOptions) {
	if index < 0 || index >= len(items) {
		return
	}
	item := items[index]
	if opts.start > 0 {
		item = item.WithStartPosition(opts.start)
	}

	q := playlist.NewQueue(m.deps.Build, items...)
	mgr, delivery := m.newManager(playback.NewProvider(item, m.deps.Build), q, opts)

	m.current = mgr
	m.queue = q
	m.delivery = delivery
	m.status = ""

	m.holder.Replace(mgr)
	m.container.SetManager(mgr)
	if opts.paused {
		mgr.SetPlaybackRequestStatus(playback.RequestPaused)
	}
	mgr.Start()
}

// newManager builds a manager with its own set of observers. Observers are
// never shared: the next session attaches before the previous one detaches.
func (m *Model) newManager(p *playback.Provider, q *playlist.PlayingQueue, opts playOptions) (*playback.Manager, *sessioninfo.Observer) {
	s := m.settings
	delivery := sessioninfo.New(m.deps.Server)

	observers := []playback.Observer{
		progress.New(m.deps.Server, m.deps.State, progress.Options{
			Interval:  s.ReportInterval,
			Threshold: s.MarkPlayedThreshold,
		}),
		nowplaying.New(m.deps.Board, m.deps.Route, m.holder, nowplaying.Options{
			JumpForward:  s.JumpForward,
			JumpBackward: s.JumpBackward,
			Artwork:      m.deps.Artwork,
		}),
		delivery,
	}
	if m.deps.Lastfm != nil {
		observers = append(observers, lastfm.NewScrobbler(m.deps.Lastfm, m.deps.State))
	}
	if m.deps.Notifier != nil {
		observers = append(observers, notify.NewTrackNotifier(m.deps.Notifier, m.deps.Icon))
	}

	proxy := engine.NewAdapter(m.deps.Backend, engine.Options{
		ResumeOffset:   s.ResumeOffset,
		NetworkCaching: s.NetworkCaching,
	})
	mgr := playback.New(p,
		playback.WithQueue(q),
		playback.WithProxy(proxy),
		playback.WithObservers(observers...),
		playback.WithAutoplay(s.Autoplay),
		playback.WithModes(opts.shuffle, opts.repeat),
	)
	return mgr, delivery
}

// startupCmd loads what to play once signed in: the items given on the
// command line, or else the saved queue.
func (m Model) startupCmd() tea.Cmd {
	if len(m.deps.ItemIDs) > 0 {
		return m.loadItemsCmd(m.deps.ItemIDs)
	}
	return m.restoreResumeCmd()
}

func (m Model) loadItemsCmd(ids []string) tea.Cmd {
	srv := m.deps.Server
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		items, err := srv.GetItems(ctx, ids)
		return queueLoadedMsg{items: items, err: err}
	}
}

// restoreResumeCmd reloads the saved queue paused at the saved position.
// Saved items the server no longer has are dropped.
func (m Model) restoreResumeCmd() tea.Cmd {
	srv, st := m.deps.Server, m.deps.State
	return func() tea.Msg {
		saved, err := st.GetResume()
		if err != nil {
			return queueLoadedMsg{err: err}
		}
		if saved == nil || len(saved.ItemIDs) == 0 {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		items, err := srv.GetItems(ctx, saved.ItemIDs)
		if err != nil {
			return queueLoadedMsg{err: err}
		}

		msg := queueLoadedMsg{
			items:   items,
			paused:  true,
			shuffle: saved.Shuffle,
			repeat:  playback.RepeatMode(saved.RepeatMode),
		}
		id := saved.CurrentItemID()
		if _, i, ok := lo.FindIndexOf(items, func(it media.Item) bool { return it.ID == id }); ok {
			msg.index = i
			msg.position = saved.Position
		}
		return msg
	}
}

func (m Model) handleQueueLoaded(msg queueLoadedMsg) (Model, tea.Cmd) {
	if msg.err != nil {
		m.log.WithError(msg.err).Error("failed to load queue")
		m.status = errmsg.Format(errmsg.OpItemLoad, msg.err)
		return m, nil
	}
	if len(msg.items) == 0 {
		m.status = "Nothing to play"
		return m, nil
	}
	m.play(msg.items, msg.index, playOptions{
		start:   msg.position,
		paused:  msg.paused,
		shuffle: msg.shuffle,
		repeat:  msg.repeat,
	})
	return m, nil
}

// nextStream returns the stream index after current, wrapping around. With
// allowNone, -1 (no stream) is part of the cycle.
func nextStream(streams []media.Stream, current int, allowNone bool) (int, bool) {
	indices := lo.Map(streams, func(s media.Stream, _ int) int { return s.Index })
	if allowNone {
		indices = append([]int{-1}, indices...)
	}
	if len(indices) == 0 {
		return current, false
	}
	pos := lo.IndexOf(indices, current)
	next := indices[(pos+1)%len(indices)]
	return next, next != current
}
