package app

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/jellywaves/internal/errmsg"
	"github.com/llehouerou/jellywaves/internal/jellyfin"
	"github.com/llehouerou/jellywaves/internal/session"
	"github.com/llehouerou/jellywaves/internal/ui/signin"
)

// connectCmd restores the stored session and checks it against the server.
// An expired token is renewed with the stored password.
func (m Model) connectCmd() tea.Cmd {
	srv, store, refresher := m.deps.Server, m.deps.Store, m.refresher
	url, username := m.deps.Config.Server.URL, m.deps.Config.Server.Username
	return func() tea.Msg {
		s, err := session.Restore(store, url, username)
		if errors.Is(err, session.ErrNotFound) {
			return signInFailedMsg{}
		}
		if err != nil {
			return signInFailedMsg{err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		s.Install(srv)
		if _, _, err := srv.CurrentUser(ctx); err != nil {
			if !jellyfin.IsUnauthorized(err) {
				return signInFailedMsg{err: err}
			}
			if s, err = refresher.Refresh(ctx, s); err != nil {
				return signInFailedMsg{err: err}
			}
		}
		return signedInMsg{session: s}
	}
}

func (m Model) signInCmd(username, password string) tea.Cmd {
	srv, store, url := m.deps.Server, m.deps.Store, m.deps.Config.Server.URL
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		s, err := session.SignIn(ctx, srv, store, url, username, password)
		if err != nil {
			return signInFailedMsg{err: err}
		}
		return signedInMsg{session: s}
	}
}

// installCmd puts s on the client and publishes it. It runs alongside
// coordinateCmd, which waits for it.
func (m Model) installCmd(s *session.Session) tea.Cmd {
	srv, reg := m.deps.Server, m.registry
	return func() tea.Msg {
		s.Install(srv)
		reg.Set(s)
		return nil
	}
}

func (m Model) coordinateCmd() tea.Cmd {
	coord := m.coord
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return rootMsg{root: coord.SignedIn(ctx)}
	}
}

func (m Model) handleSessionMsg(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case signin.SubmitMsg:
		return m, m.signInCmd(msg.Username, msg.Password)

	case signedInMsg:
		m.log.WithField("user", msg.session.UserName).Info("signed in")
		m.screen = screenConnecting
		return m, tea.Batch(m.installCmd(msg.session), m.coordinateCmd())

	case signInFailedMsg:
		if msg.err != nil {
			m.log.WithError(msg.err).Warn("sign-in failed")
		}
		m.registry.Clear()
		m.screen = screenSignIn
		m.signIn.SetError(errmsg.Format(errmsg.OpSignIn, msg.err))
		return m, nil

	case rootMsg:
		if msg.root == session.RootSelectUser {
			m.screen = screenSignIn
			m.signIn.SetError("Session was not ready, please sign in again")
			return m, nil
		}
		m.screen = screenMain
		if m.started {
			return m, nil
		}
		m.started = true
		return m, tea.Batch(m.startupCmd(), m.reportRetryCmd())
	}
	return m, nil
}
