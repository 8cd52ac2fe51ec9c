package nowplaying

import (
	"errors"
	"testing"
)

func TestBoard_SendWithoutHandler(t *testing.T) {
	b := NewBoard()
	if err := b.Send(CommandEvent{Command: CommandPlay}); !errors.Is(err, ErrNoHandler) {
		t.Errorf("Send() error = %v, want ErrNoHandler", err)
	}
}

func TestBoard_SendDisabled(t *testing.T) {
	b := NewBoard()
	b.Register(func(CommandEvent) error { return nil })

	if err := b.Send(CommandEvent{Command: CommandNext}); !errors.Is(err, ErrCommandDisabled) {
		t.Errorf("Send() error = %v, want ErrCommandDisabled", err)
	}
}

func TestBoard_SendDispatches(t *testing.T) {
	b := NewBoard()
	var got []Command
	reg := b.Register(func(e CommandEvent) error {
		got = append(got, e.Command)
		return nil
	})
	reg.EnableCommand(CommandToggle, true)

	if err := b.Send(CommandEvent{Command: CommandToggle}); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if len(got) != 1 || got[0] != CommandToggle {
		t.Errorf("handler got %v, want [toggle]", got)
	}
}

func TestBoard_SupersededRegistrationIgnored(t *testing.T) {
	b := NewBoard()
	old := b.Register(func(CommandEvent) error { return nil })
	old.SetStatic(StaticInfo{ItemID: "old"})

	current := b.Register(func(CommandEvent) error { return nil })
	if s := b.Snapshot(); s.Static != nil {
		t.Fatalf("Register() kept static %+v, want reset", s.Static)
	}
	current.SetStatic(StaticInfo{ItemID: "new"})

	old.SetStatic(StaticInfo{ItemID: "stale"})
	old.Release()

	s := b.Snapshot()
	if !s.Registered {
		t.Error("Registered = false after stale Release, want true")
	}
	if s.Static == nil || s.Static.ItemID != "new" {
		t.Errorf("Static = %+v, want item new", s.Static)
	}
}

func TestBoard_ReleaseClears(t *testing.T) {
	b := NewBoard()
	reg := b.Register(func(CommandEvent) error { return nil })
	reg.EnableCommand(CommandPlay, true)
	reg.SetStatic(StaticInfo{ItemID: "a"})
	reg.SetDynamic(DynamicInfo{Rate: 2, Playing: true})

	reg.Release()
	reg.SetStatic(StaticInfo{ItemID: "after"})

	s := b.Snapshot()
	if s.Registered {
		t.Error("Registered = true, want false")
	}
	if s.Static != nil {
		t.Errorf("Static = %+v, want nil", s.Static)
	}
	if s.CanSend(CommandPlay) {
		t.Error("CanSend(play) = true, want false")
	}
	if s.Dynamic.Rate != 1.0 {
		t.Errorf("Dynamic.Rate = %v, want 1", s.Dynamic.Rate)
	}
}

func TestBoard_ChangedFires(t *testing.T) {
	b := NewBoard()
	reg := b.Register(func(CommandEvent) error { return nil })
	<-b.Changed()

	reg.SetDynamic(DynamicInfo{Playing: true})
	select {
	case <-b.Changed():
	default:
		t.Error("Changed() did not fire after SetDynamic")
	}
}

func TestCommand_String(t *testing.T) {
	tests := []struct {
		c    Command
		want string
	}{
		{CommandPlay, "play"},
		{CommandChangePosition, "changePosition"},
		{CommandPrevious, "previous"},
		{Command(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.c.String(); got != tt.want {
			t.Errorf("Command(%d).String() = %q, want %q", tt.c, got, tt.want)
		}
	}
}
