//nolint:goconst // test cases intentionally repeat strings for readability
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("Could not get home dir: %v", err)
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "tilde expands to home",
			input:    "~/bin/mpv",
			expected: filepath.Join(home, "bin", "mpv"),
		},
		{
			name:     "absolute path unchanged",
			input:    "/usr/bin/mpv",
			expected: "/usr/bin/mpv",
		},
		{
			name:     "relative path unchanged",
			input:    "logs/jellywaves.log",
			expected: "logs/jellywaves.log",
		},
		{
			name:     "empty string unchanged",
			input:    "",
			expected: "",
		},
		{
			name:     "tilde only",
			input:    "~",
			expected: home,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandPath(tt.input)
			if result != tt.expected {
				t.Errorf("expandPath(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestGetConfigPaths(t *testing.T) {
	paths := getConfigPaths()

	if len(paths) == 0 {
		t.Fatal("getConfigPaths() returned empty slice")
	}

	// Last path should be local config.toml
	lastPath := paths[len(paths)-1]
	if lastPath != "config.toml" {
		t.Errorf("last config path = %q, want %q", lastPath, "config.toml")
	}

	if home, err := os.UserHomeDir(); err == nil {
		expectedFirst := filepath.Join(home, ".config", "jellywaves", "config.toml")
		if paths[0] != expectedFirst {
			t.Errorf("first config path = %q, want %q", paths[0], expectedFirst)
		}
	}
}

func TestHasServerConfig(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		expected bool
	}{
		{
			name: "URL and username set",
			config: Config{
				Server: ServerConfig{URL: "http://localhost:8096", Username: "alice"},
			},
			expected: true,
		},
		{
			name:     "only URL set",
			config:   Config{Server: ServerConfig{URL: "http://localhost:8096"}},
			expected: false,
		},
		{
			name:     "only username set",
			config:   Config{Server: ServerConfig{Username: "alice"}},
			expected: false,
		},
		{
			name:     "neither set",
			config:   Config{},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.config.HasServerConfig(); got != tt.expected {
				t.Errorf("HasServerConfig() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestHasLastfmConfig(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		expected bool
	}{
		{
			name:     "both key and secret set",
			config:   Config{Lastfm: LastfmConfig{APIKey: "key", APISecret: "secret"}},
			expected: true,
		},
		{
			name:     "only key set",
			config:   Config{Lastfm: LastfmConfig{APIKey: "key"}},
			expected: false,
		},
		{
			name:     "only secret set",
			config:   Config{Lastfm: LastfmConfig{APISecret: "secret"}},
			expected: false,
		},
		{
			name:     "neither set",
			config:   Config{},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.config.HasLastfmConfig(); got != tt.expected {
				t.Errorf("HasLastfmConfig() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestDeviceName(t *testing.T) {
	cfg := Config{Server: ServerConfig{DeviceName: "living-room"}}
	if got := cfg.DeviceName(); got != "living-room" {
		t.Errorf("DeviceName() = %q, want %q", got, "living-room")
	}

	empty := Config{}
	if got := empty.DeviceName(); got == "" {
		t.Error("DeviceName() with no config returned empty string")
	}
}

func TestGetPlaybackConfig_Defaults(t *testing.T) {
	cfg := Config{}
	got := cfg.GetPlaybackConfig()

	if !got.Autoplay {
		t.Error("Autoplay = false, want true")
	}
	if got.MarkPlayedThreshold != 0.9 {
		t.Errorf("MarkPlayedThreshold = %v, want 0.9", got.MarkPlayedThreshold)
	}
	if got.ResumeOffset != 0 {
		t.Errorf("ResumeOffset = %v, want 0", got.ResumeOffset)
	}
	if got.ReportInterval != 10*time.Second {
		t.Errorf("ReportInterval = %v, want 10s", got.ReportInterval)
	}
	if got.NetworkCaching != time.Second {
		t.Errorf("NetworkCaching = %v, want 1s", got.NetworkCaching)
	}
	if got.JumpForward != 30*time.Second {
		t.Errorf("JumpForward = %v, want 30s", got.JumpForward)
	}
	if got.JumpBackward != 10*time.Second {
		t.Errorf("JumpBackward = %v, want 10s", got.JumpBackward)
	}
}

func TestGetPlaybackConfig_CustomValues(t *testing.T) {
	autoplay := false
	cfg := Config{
		Playback: PlaybackConfig{
			Autoplay:            &autoplay,
			MarkPlayedThreshold: 0.75,
			ResumeOffset:        5,
			ReportInterval:      20,
			NetworkCaching:      3000,
			JumpForward:         15,
			JumpBackward:        5,
			AudioLanguage:       "jpn",
		},
	}
	got := cfg.GetPlaybackConfig()

	want := PlaybackSettings{
		Autoplay:            false,
		MarkPlayedThreshold: 0.75,
		ResumeOffset:        5 * time.Second,
		ReportInterval:      20 * time.Second,
		NetworkCaching:      3 * time.Second,
		JumpForward:         15 * time.Second,
		JumpBackward:        5 * time.Second,
		AudioLanguage:       "jpn",
	}
	if got != want {
		t.Errorf("GetPlaybackConfig() = %+v, want %+v", got, want)
	}
}

func TestGetPlaybackConfig_InvalidThreshold(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
	}{
		{"negative", -0.5},
		{"above one", 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Playback: PlaybackConfig{MarkPlayedThreshold: tt.threshold}}
			if got := cfg.GetPlaybackConfig().MarkPlayedThreshold; got != 0.9 {
				t.Errorf("MarkPlayedThreshold = %v, want 0.9", got)
			}
		})
	}
}

func TestGetEngineConfig(t *testing.T) {
	tests := []struct {
		name        string
		engine      EngineConfig
		wantBackend string
		wantPath    string
	}{
		{"defaults", EngineConfig{}, BackendMPV, "mpv"},
		{"audio backend", EngineConfig{Backend: "audio"}, BackendAudio, "mpv"},
		{"case insensitive", EngineConfig{Backend: "AUDIO"}, BackendAudio, "mpv"},
		{"unknown falls back to mpv", EngineConfig{Backend: "vlc"}, BackendMPV, "mpv"},
		{"custom mpv path", EngineConfig{MPVPath: "/opt/mpv"}, BackendMPV, "/opt/mpv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Engine: tt.engine}
			got := cfg.GetEngineConfig()
			if got.Backend != tt.wantBackend {
				t.Errorf("Backend = %q, want %q", got.Backend, tt.wantBackend)
			}
			if got.MPVPath != tt.wantPath {
				t.Errorf("MPVPath = %q, want %q", got.MPVPath, tt.wantPath)
			}
		})
	}
}

func TestGetLogConfig(t *testing.T) {
	cfg := Config{}
	got := cfg.GetLogConfig()
	if got.Level != "info" {
		t.Errorf("Level = %q, want %q", got.Level, "info")
	}
	if got.Format != "text" {
		t.Errorf("Format = %q, want %q", got.Format, "text")
	}

	cfg = Config{Log: LogConfig{Level: "debug", Format: "json"}}
	got = cfg.GetLogConfig()
	if got.Level != "debug" || got.Format != "json" {
		t.Errorf("GetLogConfig() = %+v, want debug/json", got)
	}
}

func chdirTemp(t *testing.T) {
	t.Helper()
	tmpDir := t.TempDir()
	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("could not get working directory: %v", err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("could not change to temp directory: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(originalWd)
	})
}

func TestLoad_EmptyConfig(t *testing.T) {
	chdirTemp(t)

	if err := os.WriteFile("config.toml", []byte(""), 0o600); err != nil {
		t.Fatalf("could not write config file: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg == nil {
		t.Fatal("Load() returned nil config")
	}

	// Values may be inherited from ~/.config/jellywaves/config.toml if it exists
}

func TestLoad_BasicConfig(t *testing.T) {
	chdirTemp(t)

	configContent := `
[server]
url = "http://localhost:8096/"
username = "alice"
device_name = "desk"

[playback]
autoplay = false
report_interval = 15

[engine]
backend = "audio"
mpv_path = "~/bin/mpv"
`
	if err := os.WriteFile("config.toml", []byte(configContent), 0o600); err != nil {
		t.Fatalf("could not write config file: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Trailing slash is removed
	if cfg.Server.URL != "http://localhost:8096" {
		t.Errorf("Server.URL = %q, want %q", cfg.Server.URL, "http://localhost:8096")
	}
	if cfg.Server.Username != "alice" {
		t.Errorf("Server.Username = %q, want %q", cfg.Server.Username, "alice")
	}
	if cfg.DeviceName() != "desk" {
		t.Errorf("DeviceName() = %q, want %q", cfg.DeviceName(), "desk")
	}

	playback := cfg.GetPlaybackConfig()
	if playback.Autoplay {
		t.Error("Autoplay = true, want false")
	}
	if playback.ReportInterval != 15*time.Second {
		t.Errorf("ReportInterval = %v, want 15s", playback.ReportInterval)
	}

	if cfg.GetEngineConfig().Backend != BackendAudio {
		t.Errorf("Engine.Backend = %q, want %q", cfg.GetEngineConfig().Backend, BackendAudio)
	}

	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, "bin", "mpv")
	if cfg.Engine.MPVPath != expected {
		t.Errorf("Engine.MPVPath = %q, want %q", cfg.Engine.MPVPath, expected)
	}
}

func TestLoad_InvalidToml(t *testing.T) {
	chdirTemp(t)

	if err := os.WriteFile("config.toml", []byte("invalid = [[["), 0o600); err != nil {
		t.Fatalf("could not write config file: %v", err)
	}

	if _, err := Load(); err == nil {
		t.Error("Load() expected error for invalid TOML, got nil")
	}
}

func TestLoad_LogFileExpansion(t *testing.T) {
	chdirTemp(t)

	configContent := `
[log]
file = "~/logs/jellywaves.log"
`
	if err := os.WriteFile("config.toml", []byte(configContent), 0o600); err != nil {
		t.Fatalf("could not write config file: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, "logs", "jellywaves.log")
	if cfg.Log.File != expected {
		t.Errorf("Log.File = %q, want %q", cfg.Log.File, expected)
	}
}
