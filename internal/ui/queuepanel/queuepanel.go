// Package queuepanel renders the playing queue as a side panel.
package queuepanel

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/llehouerou/jellywaves/internal/media"
	"github.com/llehouerou/jellywaves/internal/ui/playerbar"
)

var (
	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	currentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("110")).Bold(true)
	itemStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	timeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
)

// Render draws items in a bordered panel of width x height, scrolled so the
// current item stays visible. current is -1 when nothing plays.
func Render(items []media.Item, current, width, height int) string {
	inner := max(width-2, 10)
	rows := max(height-4, 1) // border, header and separator

	header := fmt.Sprintf("Queue (%d/%d)", current+1, len(items))
	if current < 0 {
		header = fmt.Sprintf("Queue (%d)", len(items))
	}

	lines := []string{
		headerStyle.Render(runewidth.FillRight(runewidth.Truncate(header, inner, "…"), inner)),
		strings.Repeat("─", inner),
	}

	first := scrollOffset(len(items), current, rows)
	for i := first; i < min(first+rows, len(items)); i++ {
		lines = append(lines, row(items[i], i == current, inner))
	}
	return panelStyle.Width(inner).Render(strings.Join(lines, "\n"))
}

// scrollOffset returns the first visible index that keeps current centred
// when the list is longer than rows.
func scrollOffset(n, current, rows int) int {
	if n <= rows || current < 0 {
		return 0
	}
	return min(max(current-rows/2, 0), n-rows)
}

func row(item media.Item, current bool, width int) string {
	marker := "  "
	style := itemStyle
	if current {
		marker = "▶ "
		style = currentStyle
	}

	dur := ""
	if item.Runtime > 0 {
		dur = playerbar.FormatDuration(item.Runtime)
	}
	titleWidth := max(width-runewidth.StringWidth(marker)-runewidth.StringWidth(dur)-1, 1)
	title := runewidth.FillRight(runewidth.Truncate(item.DisplayTitle(), titleWidth, "…"), titleWidth)

	return style.Render(marker+title) + " " + timeStyle.Render(dur)
}
