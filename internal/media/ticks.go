package media

import "time"

// ticksPerSecond is the server's time unit: 100ns ticks.
const ticksPerSecond = 10_000_000

// Ticks converts a duration to server ticks.
func Ticks(d time.Duration) int64 {
	return int64(d / 100)
}

// FromTicks converts server ticks to a duration.
func FromTicks(t int64) time.Duration {
	return time.Duration(t) * 100
}

// Seconds converts server ticks to fractional seconds.
func Seconds(t int64) float64 {
	return float64(t) / ticksPerSecond
}
