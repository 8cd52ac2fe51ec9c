// Package session holds the signed-in user, persists credentials in the OS
// keyring and refreshes expired tokens.
package session

import "sync"

// Session is a signed-in user on a server.
type Session struct {
	ServerURL string
	UserID    string
	UserName  string
	Token     string
}

// Installer accepts a session token, e.g. *jellyfin.Client.
type Installer interface {
	SetSession(token, userID string)
}

// Install puts the session's token on c.
func (s *Session) Install(c Installer) {
	c.SetSession(s.Token, s.UserID)
}

// Registry holds the current session. It is nil until sign-in completes.
type Registry struct {
	mu      sync.RWMutex
	current *Session
	changed chan struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{changed: make(chan struct{}, 1)}
}

// Current returns the session, or nil when none is ready.
func (r *Registry) Current() *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Set installs s as the current session.
func (r *Registry) Set(s *Session) {
	r.mu.Lock()
	r.current = s
	r.mu.Unlock()
	r.notify()
}

// Clear drops the current session.
func (r *Registry) Clear() {
	r.Set(nil)
}

// Changed fires after Set or Clear. Only one pending signal is kept.
func (r *Registry) Changed() <-chan struct{} {
	return r.changed
}

func (r *Registry) notify() {
	select {
	case r.changed <- struct{}{}:
	default:
	}
}
