//nolint:goconst // test cases intentionally repeat strings for readability
package errmsg

import (
	"errors"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpPlaybackLoad,
			err:      nil,
			expected: "",
		},
		{
			name:     "formats error with operation",
			op:       OpPlaybackLoad,
			err:      errors.New("file not found"),
			expected: "Failed to load media: file not found",
		},
		{
			name:     "report operation",
			op:       OpReportStop,
			err:      errors.New("permission denied"),
			expected: "Failed to report playback stop: permission denied",
		},
		{
			name:     "sign in operation",
			op:       OpSignIn,
			err:      errors.New("network error"),
			expected: "Failed to sign in: network error",
		},
		{
			name:     "audio operation",
			op:       OpAudioConfigure,
			err:      errors.New("device busy"),
			expected: "Failed to configure audio output: device busy",
		},
		{
			name:     "playback operation",
			op:       OpPlaybackStart,
			err:      errors.New("no audio device"),
			expected: "Failed to start playback: no audio device",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.op, tt.err)
			if result != tt.expected {
				t.Errorf("Format(%q, %v) = %q, want %q", tt.op, tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatWith(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		context  string
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpItemLoad,
			context:  "Heat",
			err:      nil,
			expected: "",
		},
		{
			name:     "formats error with context",
			op:       OpItemLoad,
			context:  "Heat",
			err:      errors.New("permission denied"),
			expected: "Failed to load item 'Heat': permission denied",
		},
		{
			name:     "empty context falls back to Format",
			op:       OpItemLoad,
			context:  "",
			err:      errors.New("permission denied"),
			expected: "Failed to load item: permission denied",
		},
		{
			name:     "mark played with context",
			op:       OpMarkPlayed,
			context:  "Pilot",
			err:      errors.New("unauthorized"),
			expected: "Failed to mark item as played 'Pilot': unauthorized",
		},
		{
			name:     "sign in with server context",
			op:       OpSignIn,
			context:  "https://media.example.com",
			err:      errors.New("bad credentials"),
			expected: "Failed to sign in 'https://media.example.com': bad credentials",
		},
		{
			name:     "scrobble with track context",
			op:       OpLastfmScrobble,
			context:  "Teardrop",
			err:      errors.New("rate limited"),
			expected: "Failed to scrobble to Last.fm 'Teardrop': rate limited",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatWith(tt.op, tt.context, tt.err)
			if result != tt.expected {
				t.Errorf("FormatWith(%q, %q, %v) = %q, want %q", tt.op, tt.context, tt.err, result, tt.expected)
			}
		})
	}
}

func TestOpConstants(t *testing.T) {
	// Verify that Op constants are non-empty and produce valid messages
	ops := []Op{
		OpPlaybackStart, OpPlaybackSeek, OpPlaybackLoad, OpEngineStart,
		OpReportStart, OpReportProgress, OpReportStop, OpMarkPlayed, OpReportRetry,
		OpSignIn, OpTokenRefresh, OpSessionsLoad, OpItemLoad,
		OpAudioConfigure, OpAudioDeactivate,
		OpLastfmScrobble, OpLastfmNowPlaying,
		OpInitialize,
	}

	testErr := errors.New("test error")

	for _, op := range ops {
		t.Run(string(op), func(t *testing.T) {
			if op == "" {
				t.Error("Op constant should not be empty")
			}

			result := Format(op, testErr)
			if result == "" {
				t.Error("Format should return non-empty string for non-nil error")
			}

			// Verify the format includes the operation
			expected := "Failed to " + string(op) + ": test error"
			if result != expected {
				t.Errorf("Format = %q, want %q", result, expected)
			}
		})
	}
}
