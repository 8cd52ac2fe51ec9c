//go:build linux

package notify

import (
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/sirupsen/logrus"
)

const (
	busName    = "org.freedesktop.Notifications"
	objectPath = dbus.ObjectPath("/org/freedesktop/Notifications")
	appName    = "jellywaves"
	urgencyLow = byte(0)
)

type busNotifier struct {
	obj dbus.BusObject
}

// New connects to the notification service on the session bus. Without a
// session bus it returns a notifier that drops everything.
func New() (Notifier, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		logrus.WithField("component", "notify").
			WithError(err).
			Debug("no session bus, notifications disabled")
		return nop{}, nil
	}
	return &busNotifier{obj: conn.Object(busName, objectPath)}, nil
}

func (b *busNotifier) Notify(n Notification) (uint32, error) {
	hints := map[string]dbus.Variant{
		"urgency":       dbus.MakeVariant(urgencyLow),
		"desktop-entry": dbus.MakeVariant(appName),
		"category":      dbus.MakeVariant("x-jellywaves.playback"),
	}
	if n.Transient {
		hints["transient"] = dbus.MakeVariant(true)
	}

	var id uint32
	err := b.obj.Call(busName+".Notify", 0,
		appName,
		n.Replaces,
		n.Icon,
		n.Summary,
		n.Body,
		[]string{},
		hints,
		expireMillis(n.Expire),
	).Store(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (b *busNotifier) Dismiss(id uint32) error {
	if id == 0 {
		return nil
	}
	return b.obj.Call(busName+".CloseNotification", 0, id).Err
}

// expireMillis converts an expiry to the notification timeout, where -1
// asks the server for its default.
func expireMillis(d time.Duration) int32 {
	if d <= 0 {
		return -1
	}
	return int32(d.Milliseconds())
}
