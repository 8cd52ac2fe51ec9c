package engine

import (
	"time"

	"github.com/llehouerou/jellywaves/internal/player"
)

const (
	defaultStallThreshold = 5
	defaultStallWindow    = 10 * time.Second
)

// StallDetector recognises a decode stall: repeated buffering while the
// backend was last confirmed playing. Each confirmation of playing starts a
// new count, and any other state disarms the detector until playing is seen
// again. It is fed only states and timestamps.
type StallDetector struct {
	Threshold int
	Window    time.Duration

	lastPlaying time.Time
	armed       bool
	buffering   []time.Time
}

// NewStallDetector creates a detector firing on 5 buffering events within 10s.
func NewStallDetector() *StallDetector {
	return &StallDetector{
		Threshold: defaultStallThreshold,
		Window:    defaultStallWindow,
	}
}

// Observe records a state seen at the given time and reports whether the
// backend should be reloaded. After firing the detector starts over.
func (d *StallDetector) Observe(s player.State, at time.Time) bool {
	switch s {
	case player.StatePlaying:
		d.lastPlaying = at
		d.armed = true
		d.buffering = d.buffering[:0]
		return false
	case player.StateBuffering:
	default:
		d.armed = false
		d.buffering = d.buffering[:0]
		return false
	}

	if !d.armed || at.Sub(d.lastPlaying) > d.Window {
		d.buffering = d.buffering[:0]
		return false
	}
	d.buffering = append(d.buffering, at)

	if len(d.buffering) < d.Threshold {
		return false
	}
	d.Reset()
	return true
}

// Count returns the buffering events currently inside the window.
func (d *StallDetector) Count() int {
	return len(d.buffering)
}

// Reset forgets all observations.
func (d *StallDetector) Reset() {
	d.buffering = d.buffering[:0]
	d.armed = false
	d.lastPlaying = time.Time{}
}
