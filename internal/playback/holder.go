package playback

import "sync"

// Holder keeps the manager of the active playback session. It never returns
// nil: after a stop or an error the held manager is swapped for a
// placeholder.
type Holder struct {
	mu      sync.RWMutex
	current *Manager
	changed chan struct{}
}

// NewHolder creates a holder with a placeholder manager.
func NewHolder() *Holder {
	return &Holder{
		current: Placeholder(),
		changed: make(chan struct{}, 1),
	}
}

// Current returns the held manager.
func (h *Holder) Current() *Manager {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Changed fires after the held manager is replaced.
func (h *Holder) Changed() <-chan struct{} {
	return h.changed
}

// Replace installs m as the active manager and stops the previous one.
func (h *Holder) Replace(m *Manager) {
	m.setRecycler(h.recycle)

	h.mu.Lock()
	prev := h.current
	h.current = m
	h.mu.Unlock()

	h.notify()
	if prev != m {
		prev.Stop()
	}
}

// Reset stops the active manager and installs a placeholder.
func (h *Holder) Reset() {
	h.mu.Lock()
	prev := h.current
	h.current = Placeholder()
	h.mu.Unlock()

	h.notify()
	prev.Stop()
}

// HasActiveSession reports whether the held manager is loading or playing.
func (h *Holder) HasActiveSession() bool {
	return h.Current().HasActiveSession()
}

// recycle runs when a held manager stops or fails.
func (h *Holder) recycle(m *Manager) {
	h.mu.Lock()
	swapped := h.current == m
	if swapped {
		h.current = Placeholder()
	}
	h.mu.Unlock()

	if swapped {
		h.notify()
	}
	if m.State() == StateError {
		m.Stop()
	}
}

func (h *Holder) notify() {
	select {
	case h.changed <- struct{}{}:
	default:
	}
}
