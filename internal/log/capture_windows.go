//go:build windows

package log

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Capture is a no-op on Windows; its audio stack does not write to stderr.
type Capture struct{}

// CaptureStderr returns a no-op capture.
func CaptureStderr(*logrus.Entry) (*Capture, error) {
	return &Capture{}, nil
}

// WriteOriginal writes to stderr.
func (c *Capture) WriteOriginal(msg string) {
	_, _ = os.Stderr.WriteString(msg)
}

// Stop is a no-op on Windows.
func (c *Capture) Stop() {}
