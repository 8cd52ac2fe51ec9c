//go:build linux

package audioroute

import (
	"context"

	"github.com/godbus/dbus/v5"
)

const (
	logindInterface = "org.freedesktop.login1.Manager"
	logindSleep     = "PrepareForSleep"
)

// WatchSleep turns logind sleep notifications into interruptions until ctx
// is done. It returns an error only when the system bus is unreachable.
func (s *Service) WatchSleep(ctx context.Context) error {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return err
	}

	if err := conn.AddMatchSignal(
		dbus.WithMatchInterface(logindInterface),
		dbus.WithMatchMember(logindSleep),
	); err != nil {
		conn.Close()
		return err
	}

	signals := make(chan *dbus.Signal, 4)
	conn.Signal(signals)

	go func() {
		defer conn.Close()
		defer conn.RemoveSignal(signals)
		for {
			select {
			case <-ctx.Done():
				return
			case sig, ok := <-signals:
				if !ok {
					return
				}
				if i, ok := sleepInterruption(sig); ok {
					s.Interrupt(i)
				}
			}
		}
	}()
	return nil
}

// sleepInterruption maps PrepareForSleep(true) to a began interruption and
// PrepareForSleep(false) to an ended one that may resume.
func sleepInterruption(sig *dbus.Signal) (Interruption, bool) {
	if sig == nil || sig.Name != logindInterface+"."+logindSleep || len(sig.Body) != 1 {
		return Interruption{}, false
	}
	sleeping, ok := sig.Body[0].(bool)
	if !ok {
		return Interruption{}, false
	}
	if sleeping {
		return Interruption{Kind: InterruptionBegan}, true
	}
	return Interruption{Kind: InterruptionEnded, ShouldResume: true}, true
}
