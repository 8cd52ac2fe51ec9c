// Package log configures the process-wide logrus logger.
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/jellywaves/internal/config"
)

// DefaultPath returns the log file used when none is configured.
func DefaultPath() (string, error) {
	return xdg.StateFile(filepath.Join("jellywaves", "jellywaves.log"))
}

// Setup points logrus at the configured file with the configured level and
// formatter. The returned closer releases the file.
func Setup(cfg config.LogConfig) (io.Closer, error) {
	path := cfg.File
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("resolve log path: %w", err)
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	Configure(logrus.StandardLogger(), f, cfg)
	return f, nil
}

// Configure applies cfg to l, writing to w. Unknown levels fall back to info.
func Configure(l *logrus.Logger, w io.Writer, cfg config.LogConfig) {
	l.SetOutput(w)

	if cfg.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
}
