package handler

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func only(want string, r Result) Func {
	return func(key string) Result {
		if key != want {
			return NotHandled
		}
		return r
	}
}

func TestChain_FirstClaimWins(t *testing.T) {
	var calls []string
	record := func(name string, r Result) Func {
		return func(string) Result {
			calls = append(calls, name)
			return r
		}
	}

	r := Chain("x", record("a", NotHandled), record("b", Consumed), record("c", Consumed))
	if !r.Handled {
		t.Error("Chain().Handled = false, want true")
	}
	if len(calls) != 2 || calls[1] != "b" {
		t.Errorf("handlers called = %v, want [a b]", calls)
	}
}

func TestChain_NobodyClaims(t *testing.T) {
	r := Chain("z", only("a", Consumed), only("b", Consumed))
	if r.Handled || r.Cmd != nil {
		t.Errorf("Chain() = %+v, want NotHandled", r)
	}
}

func TestChain_ReturnsCommand(t *testing.T) {
	cmd := func() tea.Msg { return "done" }
	r := Chain("q", only("q", Handled(cmd)))
	if !r.Handled || r.Cmd == nil {
		t.Fatalf("Chain() = %+v, want handled with command", r)
	}
	if got := r.Cmd(); got != "done" {
		t.Errorf("Cmd() = %v, want done", got)
	}
}

func TestChain_Empty(t *testing.T) {
	if r := Chain("a"); r.Handled {
		t.Error("Chain() with no handlers claimed the key")
	}
}
