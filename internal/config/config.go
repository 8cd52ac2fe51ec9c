package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	// Jellyfin server connection
	Server ServerConfig `koanf:"server"`

	// Playback behaviour (autoplay, progress reporting, resume)
	Playback PlaybackConfig `koanf:"playback"`

	// Engine backend selection
	Engine EngineConfig `koanf:"engine"`

	// Last.fm scrobbling (enables scrobbling when configured)
	Lastfm LastfmConfig `koanf:"lastfm"`

	// Log output
	Log LogConfig `koanf:"log"`
}

// ServerConfig holds the Jellyfin server connection settings.
type ServerConfig struct {
	URL        string `koanf:"url"`         // e.g., "http://localhost:8096"
	Username   string `koanf:"username"`    // user to sign in as
	DeviceName string `koanf:"device_name"` // reported to the server (default: hostname)
}

// PlaybackConfig holds playback settings as written in the config file.
// Use GetPlaybackConfig for values with defaults applied.
type PlaybackConfig struct {
	Autoplay            *bool   `koanf:"autoplay"`              // advance to the next item on end (default: true)
	MarkPlayedThreshold float64 `koanf:"mark_played_threshold"` // fraction of runtime (0.0-1.0, default: 0.9)
	ResumeOffset        int     `koanf:"resume_offset"`         // seconds rewound when resuming (default: 0)
	ReportInterval      int     `koanf:"report_interval"`       // seconds between progress reports (default: 10)
	NetworkCaching      int     `koanf:"network_caching"`       // milliseconds of network cache (default: 1000)
	JumpForward         int     `koanf:"jump_forward"`          // seconds (default: 30)
	JumpBackward        int     `koanf:"jump_backward"`         // seconds (default: 10)
	AudioLanguage       string  `koanf:"audio_language"`        // preferred audio language, e.g. "eng"
}

// PlaybackSettings are the resolved playback settings.
type PlaybackSettings struct {
	Autoplay            bool
	MarkPlayedThreshold float64
	ResumeOffset        time.Duration
	ReportInterval      time.Duration
	NetworkCaching      time.Duration
	JumpForward         time.Duration
	JumpBackward        time.Duration
	AudioLanguage       string
}

// EngineConfig selects and configures the playback backend.
type EngineConfig struct {
	Backend string   `koanf:"backend"`  // "mpv" or "audio" (default: "mpv")
	MPVPath string   `koanf:"mpv_path"` // mpv binary (default: "mpv")
	MPVArgs []string `koanf:"mpv_args"` // extra arguments passed to mpv
}

// Engine backends.
const (
	BackendMPV   = "mpv"
	BackendAudio = "audio"
)

// LastfmConfig holds Last.fm scrobbling configuration.
type LastfmConfig struct {
	APIKey    string `koanf:"api_key"`
	APISecret string `koanf:"api_secret"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `koanf:"level"`  // logrus level name (default: "info")
	Format string `koanf:"format"` // "text" or "json" (default: "text")
	File   string `koanf:"file"`   // log file (default: $XDG_STATE_HOME/jellywaves/jellywaves.log)
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	configPaths := getConfigPaths()

	for _, path := range configPaths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	// Normalize server URL (remove trailing slash)
	cfg.Server.URL = strings.TrimSuffix(cfg.Server.URL, "/")

	if cfg.Engine.MPVPath != "" {
		cfg.Engine.MPVPath = expandPath(cfg.Engine.MPVPath)
	}
	if cfg.Log.File != "" {
		cfg.Log.File = expandPath(cfg.Log.File)
	}

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/jellywaves/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "jellywaves", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// HasServerConfig returns true if a server and user are configured.
func (c *Config) HasServerConfig() bool {
	return c.Server.URL != "" && c.Server.Username != ""
}

// HasLastfmConfig returns true if Last.fm scrobbling is configured.
func (c *Config) HasLastfmConfig() bool {
	return c.Lastfm.APIKey != "" && c.Lastfm.APISecret != ""
}

// DeviceName returns the configured device name, falling back to the hostname.
func (c *Config) DeviceName() string {
	if c.Server.DeviceName != "" {
		return c.Server.DeviceName
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "jellywaves"
}

// GetPlaybackConfig returns the playback configuration with defaults applied.
func (c *Config) GetPlaybackConfig() PlaybackSettings {
	p := c.Playback

	s := PlaybackSettings{
		Autoplay:            true,
		MarkPlayedThreshold: p.MarkPlayedThreshold,
		ResumeOffset:        seconds(p.ResumeOffset, 0),
		ReportInterval:      seconds(p.ReportInterval, 10),
		NetworkCaching:      time.Duration(p.NetworkCaching) * time.Millisecond,
		JumpForward:         seconds(p.JumpForward, 30),
		JumpBackward:        seconds(p.JumpBackward, 10),
		AudioLanguage:       p.AudioLanguage,
	}
	if p.Autoplay != nil {
		s.Autoplay = *p.Autoplay
	}
	if s.MarkPlayedThreshold <= 0 || s.MarkPlayedThreshold > 1 {
		s.MarkPlayedThreshold = 0.9
	}
	if p.NetworkCaching <= 0 {
		s.NetworkCaching = time.Second
	}

	return s
}

func seconds(v, def int) time.Duration {
	if v <= 0 {
		v = def
	}
	return time.Duration(v) * time.Second
}

// GetEngineConfig returns the engine configuration with defaults applied.
func (c *Config) GetEngineConfig() EngineConfig {
	cfg := c.Engine

	switch strings.ToLower(cfg.Backend) {
	case BackendAudio:
		cfg.Backend = BackendAudio
	default:
		cfg.Backend = BackendMPV
	}
	if cfg.MPVPath == "" {
		cfg.MPVPath = "mpv"
	}

	return cfg
}

// GetLogConfig returns the log configuration with defaults applied.
// An empty File is left for the caller to resolve.
func (c *Config) GetLogConfig() LogConfig {
	cfg := c.Log

	if cfg.Level == "" {
		cfg.Level = "info"
	}
	if cfg.Format != "json" {
		cfg.Format = "text"
	}

	return cfg
}
