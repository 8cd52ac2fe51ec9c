// Package playerbar renders the now-playing bar.
package playerbar

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
	"github.com/samber/lo"

	"github.com/llehouerou/jellywaves/internal/container"
	"github.com/llehouerou/jellywaves/internal/media"
	"github.com/llehouerou/jellywaves/internal/playback"
)

// Height is the rendered height: two content rows and the border.
const Height = 4

// State holds everything needed to render the bar.
type State struct {
	Active    bool
	Loading   bool
	Paused    bool
	Live      bool
	Scrubbing bool
	Title     string
	Subtitle  string
	Position  time.Duration
	Duration  time.Duration
	Rate      float64
	Shuffle   bool
	Repeat    playback.RepeatMode
	Segment   string // type of the segment being played, "" outside segments
	Delivery  string // e.g. "DirectPlay" or "Transcode h264/aac 1.0 MB/s"
}

// NewState reads the bar state from a manager. The position comes from the
// container so a scrub in progress is shown instead of the playing position.
func NewState(m *playback.Manager, c *container.State, delivery string) State {
	if !m.HasActiveSession() {
		return State{}
	}
	item := m.Item()
	s := State{
		Active:    true,
		Loading:   m.State() == playback.StateLoadingItem,
		Paused:    m.RequestStatus() == playback.RequestPaused,
		Live:      item.IsLive,
		Scrubbing: c.Scrub() == container.ScrubScrubbing,
		Title:     item.DisplayTitle(),
		Subtitle:  subtitle(item),
		Position:  c.ScrubbedSeconds(),
		Duration:  item.Runtime,
		Rate:      m.Rate(),
		Shuffle:   m.Shuffle(),
		Repeat:    m.RepeatMode(),
		Delivery:  delivery,
	}
	if seg := m.CurrentSegment(); seg != nil {
		s.Segment = string(seg.Type)
	}
	return s
}

func subtitle(item media.Item) string {
	if !item.IsAudio() {
		return ""
	}
	return strings.Join(lo.Compact([]string{item.PrimaryArtist(), item.Album}), " · ")
}

// Render returns the bar for the given width, or "" when nothing plays.
func Render(s State, width int) string {
	if !s.Active {
		return ""
	}
	inner := max(width-4, 10) // border and padding

	modes := modeLine(s)
	headWidth := inner - runewidth.StringWidth(modes) - 1
	head := titleStyle.Render(runewidth.Truncate(s.Title, headWidth, "…"))
	if s.Subtitle != "" {
		rest := headWidth - runewidth.StringWidth(s.Title) - 3
		if rest > 5 {
			head += "   " + subtitleStyle.Render(runewidth.Truncate(s.Subtitle, rest, "…"))
		}
	}
	gap := max(inner-ansi.StringWidth(head)-runewidth.StringWidth(modes), 1)
	first := head + strings.Repeat(" ", gap) + metaStyle.Render(modes)

	second := RenderProgressBar(s, inner)
	if s.Segment != "" {
		second = ansi.Truncate(second, inner-len(s.Segment)-12, "") + "  " +
			segmentStyle.Render("["+s.Segment+": i skip]")
	}

	return barStyle.Width(width - 2).Render(first + "\n" + second)
}

// modeLine lists rate, shuffle, repeat and delivery, e.g. "1.5x shuffle repeat all".
func modeLine(s State) string {
	var parts []string
	if s.Rate != 0 && s.Rate != 1 {
		parts = append(parts, fmt.Sprintf("%.2gx", s.Rate))
	}
	if s.Shuffle {
		parts = append(parts, "shuffle")
	}
	if s.Repeat != playback.RepeatOff {
		parts = append(parts, "repeat "+strings.ToLower(s.Repeat.String()))
	}
	if s.Delivery != "" {
		parts = append(parts, s.Delivery)
	}
	return strings.Join(parts, " ")
}
