package notify

import "testing"

func TestNop(t *testing.T) {
	var n Notifier = nop{}
	id, err := n.Notify(Notification{Summary: "Song"})
	if id != 0 || err != nil {
		t.Errorf("Notify() = %d, %v, want 0, nil", id, err)
	}
	if err := n.Dismiss(7); err != nil {
		t.Errorf("Dismiss() error = %v", err)
	}
}
