package app

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/jellywaves/internal/container"
	"github.com/llehouerou/jellywaves/internal/errmsg"
	"github.com/llehouerou/jellywaves/internal/ui/playerbar"
	"github.com/llehouerou/jellywaves/internal/ui/queuepanel"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("110"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	bigStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
)

const keyHelp = "space play/pause · n/p next/prev · ←/→ jump · ,/. scrub · o controls · Q queue · q quit"

// View renders the application UI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	switch m.screen {
	case screenConnecting:
		msg := dimStyle.Render("Connecting to " + m.deps.Server.BaseURL() + "…")
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, msg)
	case screenSignIn:
		return m.signIn.View(m.width, m.height)
	case screenMain:
	}

	header := m.renderHeader()
	bar := m.renderPlayerBar()
	status := m.renderStatus()

	bodyHeight := m.height - 2 - lipgloss.Height(bar)
	if bar == "" {
		bodyHeight = m.height - 2
	}
	body := m.renderBody(max(bodyHeight, 0))

	parts := []string{header, body}
	if bar != "" {
		parts = append(parts, bar)
	}
	parts = append(parts, status)
	return strings.Join(parts, "\n")
}

func (m Model) renderHeader() string {
	left := headerStyle.Render("jellywaves")
	if s := m.registry.Current(); s != nil {
		left += dimStyle.Render("  " + s.UserName + " @ " + s.ServerURL)
	}
	right := ""
	if m.lastfmLinked() {
		right = dimStyle.Render("last.fm")
	}
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) renderPlayerBar() string {
	delivery := ""
	if m.delivery != nil {
		delivery = m.delivery.Info().Summary()
	}
	return playerbar.Render(playerbar.NewState(m.holder.Current(), m.container, delivery), m.width)
}

func (m Model) showQueue() bool {
	if m.queue == nil {
		return false
	}
	if supp, id := m.container.Supplement(); supp == container.SupplementOpen && id == queueSupplement {
		return true
	}
	return m.container.Overlay() == container.OverlayVisible
}

func (m Model) renderBody(height int) string {
	if height == 0 {
		return ""
	}
	if m.showQueue() {
		return queuepanel.Render(m.queue.Items(), m.queue.CurrentIndex(), m.width, height)
	}

	mgr := m.holder.Current()
	content := dimStyle.Render("Nothing playing")
	if mgr.HasActiveSession() {
		content = bigStyle.Render(mgr.Item().DisplayTitle())
	}
	return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, content)
}

func (m Model) renderStatus() string {
	if m.current != nil && m.holder.Current() != m.current {
		if err := m.current.Err(); err != nil {
			return errorStyle.Render(errmsg.Describe(err))
		}
	}
	if m.status != "" {
		return dimStyle.Render(m.status)
	}
	if m.container.Overlay() == container.OverlayLocked {
		return dimStyle.Render("locked · L unlock")
	}
	return dimStyle.Render(keyHelp)
}
