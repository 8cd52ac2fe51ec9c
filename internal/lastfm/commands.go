package lastfm

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/jellywaves/internal/state"
)

// Message types for Last.fm operations.

// TokenResultMsg contains the result of requesting an auth token.
type TokenResultMsg struct {
	Token   string
	AuthURL string
	Err     error
}

// SessionResultMsg contains the result of exchanging token for session.
type SessionResultMsg struct {
	Username   string
	SessionKey string
	Err        error
}

// RetryPendingMsg triggers retry of pending scrobbles.
type RetryPendingMsg struct{}

// RetryResultMsg contains the result of retrying pending scrobbles.
type RetryResultMsg struct {
	Succeeded int
	Failed    int
	Err       error
}

// GetTokenCmd requests an authentication token from Last.fm.
func GetTokenCmd(client *Client) tea.Cmd {
	return func() tea.Msg {
		token, err := client.GetToken()
		if err != nil {
			return TokenResultMsg{Err: err}
		}
		authURL := client.GetAuthURL(token)
		return TokenResultMsg{Token: token, AuthURL: authURL}
	}
}

// GetSessionCmd exchanges the authorized token for a session key.
func GetSessionCmd(client *Client, token string) tea.Cmd {
	return func() tea.Msg {
		username, sessionKey, err := client.GetSession(token)
		return SessionResultMsg{
			Username:   username,
			SessionKey: sessionKey,
			Err:        err,
		}
	}
}

// RetryPendingParams contains parameters for retrying pending scrobbles.
type RetryPendingParams struct {
	Client Submitter
	Outbox state.ScrobbleOutbox
}

// RetryPendingCmd retries pending scrobbles from the queue.
func RetryPendingCmd(params RetryPendingParams) tea.Cmd {
	return func() tea.Msg {
		_ = params.Outbox.DeleteOldPendingScrobbles(14 * 24 * time.Hour)

		pending, err := params.Outbox.GetPendingScrobbles()
		if err != nil {
			return RetryResultMsg{Err: err}
		}

		if len(pending) == 0 {
			return RetryResultMsg{}
		}

		var succeeded, failed int
		const maxAttempts = 10

		for i := range pending {
			p := &pending[i]
			// Skip if too many attempts
			if p.Attempts >= maxAttempts {
				continue
			}

			err := params.Client.Scrobble(TrackFromPending(*p))
			if err != nil {
				failed++
				_ = params.Outbox.UpdatePendingScrobbleAttempt(p.ID, err.Error())
			} else {
				succeeded++
				_ = params.Outbox.DeletePendingScrobble(p.ID)
			}
		}

		return RetryResultMsg{Succeeded: succeeded, Failed: failed}
	}
}

// RetryTickCmd returns a command that triggers pending retry after a delay.
func RetryTickCmd() tea.Cmd {
	return tea.Tick(5*time.Minute, func(_ time.Time) tea.Msg {
		return RetryPendingMsg{}
	})
}
