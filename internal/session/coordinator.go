package session

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	maxSignInRetries = 5
	retryStep        = 100 * time.Millisecond
)

// Root is the screen shown after a sign-in event.
type Root int

const (
	RootSelectUser Root = iota
	RootMain
)

func (r Root) String() string {
	switch r {
	case RootSelectUser:
		return "selectUser"
	case RootMain:
		return "main"
	}
	return "unknown"
}

// Source returns the current session, or nil while it is being built.
type Source interface {
	Current() *Session
}

var _ Source = (*Registry)(nil)

// Coordinator picks the root screen once a sign-in event fires. The event
// can arrive before the session is ready, so it retries with a linear
// backoff before falling back to user selection.
type Coordinator struct {
	source Source
	log    *logrus.Entry
}

// NewCoordinator creates a coordinator reading sessions from source.
func NewCoordinator(source Source) *Coordinator {
	return &Coordinator{
		source: source,
		log:    logrus.WithField("component", "session"),
	}
}

// SignedIn waits for the session and returns the root to show.
func (c *Coordinator) SignedIn(ctx context.Context) Root {
	for attempt := 0; ; attempt++ {
		if c.source.Current() != nil {
			c.log.Info("signed in")
			return RootMain
		}
		if attempt >= maxSignInRetries {
			c.log.WithField("retries", maxSignInRetries).
				Error("session not ready, falling back to user selection")
			return RootSelectUser
		}

		delay := retryStep * time.Duration(attempt+1)
		c.log.WithFields(logrus.Fields{
			"retry": attempt + 1,
			"delay": delay,
		}).Warn("session not ready yet")

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return RootSelectUser
		case <-t.C:
		}
	}
}

// SignedOut returns the root shown after sign-out.
func (c *Coordinator) SignedOut() Root {
	c.log.Info("signed out")
	return RootSelectUser
}
