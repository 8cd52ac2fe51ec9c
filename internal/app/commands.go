package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/jellywaves/internal/progress"
)

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func resumeSaveTickCmd() tea.Cmd {
	return tea.Tick(resumeSaveInterval, func(_ time.Time) tea.Msg {
		return ResumeSaveTickMsg{}
	})
}

func reportRetryTickCmd() tea.Cmd {
	return tea.Tick(progress.RetryInterval, func(_ time.Time) tea.Msg {
		return ReportRetryMsg{}
	})
}

// waitForSignal returns msg once ch fires.
func waitForSignal(ch <-chan struct{}, msg tea.Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		<-ch
		return msg
	}
}

// reportRetryCmd resends playback reports that failed earlier.
func (m Model) reportRetryCmd() tea.Cmd {
	srv, outbox := m.deps.Server, m.deps.State
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		res, err := progress.RetryPending(ctx, srv, outbox)
		return ReportRetryResultMsg{Result: res, Err: err}
	}
}
