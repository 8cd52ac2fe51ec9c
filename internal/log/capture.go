//go:build !windows

package log

import (
	"bufio"
	"os"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
)

// Capture redirects file descriptor 2 into the logger. Audio libraries
// write straight to it and would otherwise corrupt the terminal UI.
type Capture struct {
	orig  int
	read  *os.File
	write *os.File
	done  chan struct{}
}

// CaptureStderr starts forwarding stderr lines to l at warn level.
// Must be called before the speaker is initialised.
func CaptureStderr(l *logrus.Entry) (*Capture, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}

	orig, err := syscall.Dup(int(os.Stderr.Fd()))
	if err != nil {
		r.Close()
		w.Close()
		return nil, err
	}

	if err := syscall.Dup2(int(w.Fd()), int(os.Stderr.Fd())); err != nil {
		syscall.Close(orig)
		r.Close()
		w.Close()
		return nil, err
	}

	c := &Capture{orig: orig, read: r, write: w, done: make(chan struct{})}
	go c.forward(l)
	return c, nil
}

func (c *Capture) forward(l *logrus.Entry) {
	defer close(c.done)
	scanner := bufio.NewScanner(c.read)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			l.Warn(line)
		}
	}
}

// WriteOriginal writes directly to the terminal's stderr.
func (c *Capture) WriteOriginal(msg string) {
	_, _ = syscall.Write(c.orig, []byte(msg))
}

// Stop restores the original stderr.
func (c *Capture) Stop() {
	_ = syscall.Dup2(c.orig, int(os.Stderr.Fd()))
	_ = syscall.Close(c.orig)
	c.write.Close()
	<-c.done
	c.read.Close()
}
