package playerbar

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const (
	filledBlock = "━"
	emptyBlock  = "─"
)

// RenderProgressBar renders the status symbol, times and a bar filling the
// remaining width. Live items show no duration.
// Format: ▶  1:23  ━━━━━─────  4:56
func RenderProgressBar(s State, width int) string {
	status := statusSymbol(s)
	posStr := FormatDuration(s.Position)
	if s.Live || s.Duration <= 0 {
		return status + "  " + posStr
	}
	durStr := FormatDuration(s.Duration)

	fixedWidth := lipgloss.Width(status) + 2 + lipgloss.Width(posStr) + 2 + 2 + lipgloss.Width(durStr)
	barWidth := width - fixedWidth
	if barWidth < 3 {
		return status + "  " + posStr + " / " + durStr
	}

	ratio := float64(s.Position) / float64(s.Duration)
	filled := min(max(int(float64(barWidth)*ratio), 0), barWidth)

	bar := filledStyle.Render(strings.Repeat(filledBlock, filled)) +
		emptyStyle.Render(strings.Repeat(emptyBlock, barWidth-filled))
	if s.Scrubbing {
		posStr = scrubStyle.Render(posStr)
	}
	return status + "  " + posStr + "  " + bar + "  " + durStr
}

func statusSymbol(s State) string {
	switch {
	case s.Loading:
		return "…"
	case s.Paused:
		return "⏸"
	default:
		return "▶"
	}
}

// FormatDuration renders d as m:ss, or h:mm:ss from one hour.
func FormatDuration(d time.Duration) string {
	d = max(d, 0).Truncate(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
