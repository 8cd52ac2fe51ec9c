package player

import (
	"math"

	"github.com/gopxl/beep/v2/speaker"
)

// SetVolume sets the volume level (0.0 to 1.0).
// If muted, only stores the level without applying it.
func (a *Audio) SetVolume(level float64) {
	level = min(max(level, 0), 1)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.volumeLevel = level
	if !a.muted && a.volume != nil {
		speaker.Lock()
		a.volume.Volume = levelToVolume(level)
		speaker.Unlock()
	}
}

// Volume returns the current volume level (0.0 to 1.0).
func (a *Audio) Volume() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.volumeLevel
}

// SetMuted sets the muted state.
// When unmuted, restores the previous volume level.
func (a *Audio) SetMuted(muted bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.muted = muted
	if a.volume != nil {
		speaker.Lock()
		a.volume.Silent = muted
		speaker.Unlock()
	}
}

// Muted returns true if audio is muted.
func (a *Audio) Muted() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.muted
}

// levelToVolume converts a 0.0-1.0 level to beep's Volume value.
// beep uses a logarithmic scale where Volume is in "decibels" with base 2.
// Volume = 0 means no change, -1 = half volume, -2 = quarter, etc.
// We map: 1.0 -> 0, 0.5 -> -1, 0.25 -> -2, 0 -> -10 (essentially silent)
func levelToVolume(level float64) float64 {
	if level <= 0 {
		return -10
	}
	if level >= 1 {
		return 0
	}
	return math.Log2(level)
}
