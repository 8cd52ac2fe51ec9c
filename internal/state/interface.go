package state

import (
	"database/sql"
	"time"
)

// Interface defines the state manager contract for dependency injection and testing.
type Interface interface {
	DB() *sql.DB
	SaveResume(s ResumeState)
	GetResume() (*ResumeState, error)
	GetVolume() (*VolumeState, error)
	SaveVolume(volume float64, muted bool) error
	ReportOutbox
	ScrobbleOutbox
	GetLastfmSession() (*LastfmSession, error)
	SaveLastfmSession(username, sessionKey string) error
	DeleteLastfmSession() error
	Close() error
}

// ReportOutbox stores server playback reports that failed to send.
type ReportOutbox interface {
	AddPendingReport(r PendingReport) error
	GetPendingReports() ([]PendingReport, error)
	DeletePendingReport(id int64) error
	UpdatePendingReportAttempt(id int64, errMsg string) error
	DeleteOldPendingReports(maxAge time.Duration) error
}

// ScrobbleOutbox stores scrobbles that failed to submit.
type ScrobbleOutbox interface {
	AddPendingScrobble(s PendingScrobble) error
	GetPendingScrobbles() ([]PendingScrobble, error)
	DeletePendingScrobble(id int64) error
	UpdatePendingScrobbleAttempt(id int64, errMsg string) error
	DeleteOldPendingScrobbles(maxAge time.Duration) error
}

// Verify Manager implements Interface at compile time.
var _ Interface = (*Manager)(nil)
