package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/jellywaves/internal/app/handler"
	"github.com/llehouerou/jellywaves/internal/errmsg"
	"github.com/llehouerou/jellywaves/internal/lastfm"
)

// handleLastfmKeys runs the desktop auth flow on F: the first press opens
// the authorization page, the second exchanges the token for a session.
// F on a linked account unlinks it.
func (m *Model) handleLastfmKeys(key string) handler.Result {
	if key != "F" || m.deps.Lastfm == nil {
		return handler.NotHandled
	}

	switch {
	case m.deps.Lastfm.IsAuthenticated():
		if err := m.deps.State.DeleteLastfmSession(); err != nil {
			m.log.WithError(err).Warn("failed to delete Last.fm session")
		}
		m.deps.Lastfm.SetSessionKey("")
		m.status = "Last.fm unlinked"
		return handler.Consumed
	case m.lastfmToken != "":
		token := m.lastfmToken
		m.lastfmToken = ""
		m.status = "Linking Last.fm…"
		return handler.Handled(lastfm.GetSessionCmd(m.deps.Lastfm, token))
	default:
		m.status = "Requesting Last.fm authorization…"
		return handler.Handled(lastfm.GetTokenCmd(m.deps.Lastfm))
	}
}

func (m Model) handleLastfmMsg(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case lastfm.TokenResultMsg:
		if msg.Err != nil {
			m.status = errmsg.Format(errmsg.OpLastfmAuth, msg.Err)
			return m, nil
		}
		m.lastfmToken = msg.Token
		m.status = "Authorize jellywaves in the browser, then press F"
		if err := lastfm.OpenBrowser(msg.AuthURL); err != nil {
			m.status = "Open " + msg.AuthURL + " to authorize, then press F"
		}
		return m, nil

	case lastfm.SessionResultMsg:
		if msg.Err != nil {
			m.status = errmsg.Format(errmsg.OpLastfmAuth, msg.Err)
			return m, nil
		}
		if err := m.deps.State.SaveLastfmSession(msg.Username, msg.SessionKey); err != nil {
			m.status = errmsg.Format(errmsg.OpLastfmAuth, err)
			return m, nil
		}
		m.deps.Lastfm.SetSessionKey(msg.SessionKey)
		m.status = "Last.fm linked as " + msg.Username
		if m.lastfmRetrying {
			return m, nil
		}
		m.lastfmRetrying = true
		return m, lastfm.RetryTickCmd()

	case lastfm.RetryPendingMsg:
		if !m.lastfmLinked() {
			m.lastfmRetrying = false
			return m, nil
		}
		return m, lastfm.RetryPendingCmd(lastfm.RetryPendingParams{
			Client: m.deps.Lastfm,
			Outbox: m.deps.State,
		})

	case lastfm.RetryResultMsg:
		if msg.Err != nil {
			m.log.WithError(msg.Err).Warn("failed to retry pending scrobbles")
		}
		return m, lastfm.RetryTickCmd()
	}
	return m, nil
}
