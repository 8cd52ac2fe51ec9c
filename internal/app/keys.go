package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/jellywaves/internal/app/handler"
	"github.com/llehouerou/jellywaves/internal/container"
)

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, m.quit()
	}

	switch m.screen {
	case screenSignIn:
		var cmd tea.Cmd
		m.signIn, cmd = m.signIn.Update(msg)
		return m, cmd
	case screenConnecting:
		if key == "q" {
			return m, m.quit()
		}
		return m, nil
	case screenMain:
	}

	if m.container.Overlay() == container.OverlayLocked && key != "L" {
		return m, nil
	}
	m.container.Poke()
	r := handler.Chain(key,
		m.handleAppKeys,
		m.handleTransportKeys,
		m.handleScrubKeys,
		m.handleModeKeys,
		m.handleStreamKeys,
		m.handleContainerKeys,
		m.handleVolumeKeys,
		m.handleLastfmKeys,
	)
	return m, r.Cmd
}

// quit saves the queue and stops playback so the server gets a final report.
func (m *Model) quit() tea.Cmd {
	m.saveResume()
	m.holder.Reset()
	return tea.Quit
}

func (m *Model) handleAppKeys(key string) handler.Result {
	if key == "q" {
		return handler.Handled(m.quit())
	}
	return handler.NotHandled
}

func (m *Model) handleTransportKeys(key string) handler.Result {
	mgr := m.holder.Current()
	switch key {
	case " ":
		mgr.TogglePlayPause()
	case "n":
		mgr.SkipNext()
	case "p":
		mgr.SkipPrevious()
	case "right":
		mgr.JumpForward(m.settings.JumpForward)
	case "left":
		mgr.JumpBackward(m.settings.JumpBackward)
	case "x":
		m.saveResume()
		m.holder.Reset()
	default:
		return handler.NotHandled
	}
	return handler.Consumed
}

// handleScrubKeys moves a scrub position without seeking; enter commits it.
func (m *Model) handleScrubKeys(key string) handler.Result {
	switch key {
	case ",", ".":
		if !m.holder.Current().HasActiveSession() {
			return handler.Consumed
		}
		if m.container.Scrub() == container.ScrubIdle {
			m.container.BeginScrub()
		}
		step := scrubStep
		if key == "," {
			step = -step
		}
		m.container.ScrubTo(m.container.ScrubbedSeconds() + step)
		return handler.Consumed
	case "enter":
		if m.container.Scrub() != container.ScrubScrubbing {
			return handler.NotHandled
		}
		m.container.EndScrub()
		return handler.Consumed
	}
	return handler.NotHandled
}

func (m *Model) handleModeKeys(key string) handler.Result {
	mgr := m.holder.Current()
	switch key {
	case "[":
		mgr.SetRate(max(mgr.Rate()-rateStep, minRate))
	case "]":
		mgr.SetRate(min(mgr.Rate()+rateStep, maxRate))
	case "s":
		mgr.ToggleShuffle()
	case "r":
		mgr.CycleRepeatMode()
	default:
		return handler.NotHandled
	}
	return handler.Consumed
}

func (m *Model) handleStreamKeys(key string) handler.Result {
	mgr := m.holder.Current()
	it := mgr.PlaybackItem()
	switch key {
	case "a":
		if it == nil {
			return handler.Consumed
		}
		if next, ok := nextStream(it.Source().AudioStreams(), it.AudioStreamIndex(), false); ok {
			mgr.SetAudioStream(next)
		}
	case "t":
		if it == nil {
			return handler.Consumed
		}
		if next, ok := nextStream(it.Source().SubtitleStreams(), it.SubtitleStreamIndex(), true); ok {
			mgr.SetSubtitleStream(next)
		}
	case "i":
		mgr.SkipCurrentSegment()
	default:
		return handler.NotHandled
	}
	return handler.Consumed
}

func (m *Model) handleContainerKeys(key string) handler.Result {
	switch key {
	case "o":
		m.container.ToggleOverlay()
	case "L":
		m.container.SetLocked(m.container.Overlay() != container.OverlayLocked)
	case "Q":
		m.container.SelectSupplement(queueSupplement)
	default:
		return handler.NotHandled
	}
	return handler.Consumed
}

func (m *Model) handleVolumeKeys(key string) handler.Result {
	var ok bool
	switch key {
	case "+", "=":
		ok = m.adjustVolume(volumeStep)
	case "-":
		ok = m.adjustVolume(-volumeStep)
	case "m":
		ok = m.toggleMute()
	default:
		return handler.NotHandled
	}
	if !ok {
		m.status = "Volume is set in the player"
	}
	return handler.Consumed
}
