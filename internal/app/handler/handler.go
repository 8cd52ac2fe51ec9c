// Package handler chains key handlers that each claim a subset of keys.
package handler

import tea "github.com/charmbracelet/bubbletea"

// Result is what a handler did with a key.
type Result struct {
	Handled bool
	Cmd     tea.Cmd
}

// NotHandled passes the key on to the next handler.
var NotHandled = Result{}

// Consumed claims the key without a command.
var Consumed = Result{Handled: true}

// Handled claims the key and runs cmd.
func Handled(cmd tea.Cmd) Result {
	return Result{Handled: true, Cmd: cmd}
}

// Func handles one key.
type Func func(key string) Result

// Chain offers key to each handler in turn and stops at the first that
// claims it.
func Chain(key string, handlers ...Func) Result {
	for _, h := range handlers {
		if r := h(key); r.Handled {
			return r
		}
	}
	return NotHandled
}
