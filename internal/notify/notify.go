// Package notify announces playback changes as desktop notifications.
package notify

import "time"

// Notification is one desktop notification.
type Notification struct {
	Summary   string
	Body      string
	Icon      string        // local image path or icon name
	Expire    time.Duration // zero uses the server default
	Replaces  uint32        // id of a notification to update in place
	Transient bool          // keep it out of the notification history
}

// Notifier sends desktop notifications.
type Notifier interface {
	// Notify shows n and returns its id, zero when notifications are
	// unavailable.
	Notify(n Notification) (uint32, error)
	// Dismiss withdraws a notification shown earlier. Zero is ignored.
	Dismiss(id uint32) error
}

// nop drops every notification.
type nop struct{}

func (nop) Notify(Notification) (uint32, error) { return 0, nil }
func (nop) Dismiss(uint32) error                { return nil }
