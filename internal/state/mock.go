package state

import (
	"database/sql"
	"slices"
	"sync"
	"time"
)

// Mock is an in-memory test double for Manager.
type Mock struct {
	mu        sync.Mutex
	resume    *ResumeState
	volume    VolumeState
	reports   []PendingReport
	scrobbles []PendingScrobble
	session   *LastfmSession
	nextID    int64
	closed    bool
	reportErr error
}

// NewMock creates a new mock state manager for testing.
func NewMock() *Mock {
	return &Mock{volume: VolumeState{Volume: 1.0}}
}

func (m *Mock) DB() *sql.DB { return nil }

func (m *Mock) SaveResume(s ResumeState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ItemIDs = slices.Clone(s.ItemIDs)
	m.resume = &s
}

func (m *Mock) GetResume() (*ResumeState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resume, nil
}

func (m *Mock) GetVolume() (*VolumeState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := m.volume
	return &v, nil
}

func (m *Mock) SaveVolume(volume float64, muted bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volume = VolumeState{Volume: volume, Muted: muted}
	return nil
}

func (m *Mock) AddPendingReport(r PendingReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.reportErr != nil {
		return m.reportErr
	}
	m.nextID++
	r.ID = m.nextID
	r.CreatedAt = time.Now()
	m.reports = append(m.reports, r)
	return nil
}

func (m *Mock) GetPendingReports() ([]PendingReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.reports), nil
}

func (m *Mock) DeletePendingReport(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports = slices.DeleteFunc(m.reports, func(r PendingReport) bool { return r.ID == id })
	return nil
}

func (m *Mock) UpdatePendingReportAttempt(id int64, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.reports {
		if m.reports[i].ID == id {
			m.reports[i].Attempts++
			m.reports[i].LastError = errMsg
		}
	}
	return nil
}

func (m *Mock) DeleteOldPendingReports(maxAge time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := time.Now().Add(-maxAge)
	m.reports = slices.DeleteFunc(m.reports, func(r PendingReport) bool { return r.CreatedAt.Before(cutoff) })
	return nil
}

func (m *Mock) AddPendingScrobble(s PendingScrobble) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	s.ID = m.nextID
	s.CreatedAt = time.Now()
	m.scrobbles = append(m.scrobbles, s)
	return nil
}

func (m *Mock) GetPendingScrobbles() ([]PendingScrobble, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.scrobbles), nil
}

func (m *Mock) DeletePendingScrobble(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scrobbles = slices.DeleteFunc(m.scrobbles, func(s PendingScrobble) bool { return s.ID == id })
	return nil
}

func (m *Mock) UpdatePendingScrobbleAttempt(id int64, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.scrobbles {
		if m.scrobbles[i].ID == id {
			m.scrobbles[i].Attempts++
			m.scrobbles[i].LastError = errMsg
		}
	}
	return nil
}

func (m *Mock) DeleteOldPendingScrobbles(maxAge time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := time.Now().Add(-maxAge)
	m.scrobbles = slices.DeleteFunc(m.scrobbles, func(s PendingScrobble) bool { return s.CreatedAt.Before(cutoff) })
	return nil
}

func (m *Mock) GetLastfmSession() (*LastfmSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session, nil
}

func (m *Mock) SaveLastfmSession(username, sessionKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = &LastfmSession{Username: username, SessionKey: sessionKey, LinkedAt: time.Now()}
	return nil
}

func (m *Mock) DeleteLastfmSession() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	return nil
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Test helpers

func (m *Mock) SetReportError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reportErr = err
}

func (m *Mock) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
