// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Playback operations
	OpPlaybackStart Op = "start playback"
	OpPlaybackSeek  Op = "seek"
	OpPlaybackLoad  Op = "load media"
	OpEngineStart   Op = "start playback engine"

	// Server reporting
	OpReportStart    Op = "report playback start"
	OpReportProgress Op = "report playback progress"
	OpReportStop     Op = "report playback stop"
	OpMarkPlayed     Op = "mark item as played"
	OpReportRetry    Op = "retry pending reports"

	// Server session
	OpSignIn       Op = "sign in"
	OpTokenRefresh Op = "refresh access token"
	OpSessionsLoad Op = "load sessions"
	OpItemLoad     Op = "load item"

	// Audio output
	OpAudioConfigure  Op = "configure audio output"
	OpAudioDeactivate Op = "release audio output"

	// Last.fm
	OpLastfmScrobble   Op = "scrobble to Last.fm"
	OpLastfmNowPlaying Op = "update Last.fm now playing"
	OpLastfmAuth       Op = "link Last.fm account"

	// Initialization
	OpInitialize Op = "initialize application"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
