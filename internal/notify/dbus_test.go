//go:build linux

package notify

import (
	"os"
	"testing"
	"time"
)

func TestExpireMillis(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want int32
	}{
		{0, -1},
		{-time.Second, -1},
		{5 * time.Second, 5000},
		{1500 * time.Millisecond, 1500},
	}
	for _, tt := range tests {
		if got := expireMillis(tt.in); got != tt.want {
			t.Errorf("expireMillis(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestBusNotifier_ReplaceAndDismiss(t *testing.T) {
	if os.Getenv("DBUS_SESSION_BUS_ADDRESS") == "" {
		t.Skip("no session bus")
	}

	n, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, ok := n.(*busNotifier); !ok {
		t.Skip("session bus unreachable")
	}

	first, err := n.Notify(Notification{Summary: "Episode 1", Body: "Episode", Expire: 2 * time.Second, Transient: true})
	if err != nil {
		t.Skipf("notification service unavailable: %v", err)
	}
	second, err := n.Notify(Notification{Summary: "Episode 2", Body: "Episode", Replaces: first, Transient: true})
	if err != nil {
		t.Fatalf("Notify() replacing error = %v", err)
	}
	if second != first {
		t.Errorf("Notify() replacing id = %d, want %d", second, first)
	}
	if err := n.Dismiss(second); err != nil {
		t.Errorf("Dismiss() error = %v", err)
	}
}
