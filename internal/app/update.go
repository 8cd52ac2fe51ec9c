package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/jellywaves/internal/lastfm"
	"github.com/llehouerou/jellywaves/internal/ui/signin"
)

// Update handles messages and returns the updated model and commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case TickMsg:
		return m, tickCmd()

	case ResumeSaveTickMsg:
		m.saveResume()
		return m, resumeSaveTickCmd()

	case ReportRetryMsg:
		return m, m.reportRetryCmd()

	case ReportRetryResultMsg:
		m.logReportRetry(msg)
		return m, reportRetryTickCmd()

	case holderChangedMsg:
		m.container.SetManager(m.holder.Current())
		return m, waitForSignal(m.holder.Changed(), holderChangedMsg{})

	case containerChangedMsg:
		return m, waitForSignal(m.container.Changed(), containerChangedMsg{})

	case boardChangedMsg:
		return m, waitForSignal(m.deps.Board.Changed(), boardChangedMsg{})

	case signin.SubmitMsg, signedInMsg, signInFailedMsg, rootMsg:
		return m.handleSessionMsg(msg)

	case queueLoadedMsg:
		return m.handleQueueLoaded(msg)

	case lastfm.TokenResultMsg, lastfm.SessionResultMsg, lastfm.RetryPendingMsg, lastfm.RetryResultMsg:
		return m.handleLastfmMsg(msg)
	}

	// Cursor blinks and other input messages.
	if m.screen == screenSignIn {
		var cmd tea.Cmd
		m.signIn, cmd = m.signIn.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) logReportRetry(msg ReportRetryResultMsg) {
	if msg.Err != nil {
		m.log.WithError(msg.Err).Warn("failed to read pending reports")
		return
	}
	if msg.Result.Succeeded > 0 || msg.Result.Failed > 0 {
		m.log.WithField("succeeded", msg.Result.Succeeded).
			WithField("failed", msg.Result.Failed).
			Info("retried pending reports")
	}
}
