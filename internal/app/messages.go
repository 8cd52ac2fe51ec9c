package app

import (
	"time"

	"github.com/llehouerou/jellywaves/internal/media"
	"github.com/llehouerou/jellywaves/internal/playback"
	"github.com/llehouerou/jellywaves/internal/progress"
	"github.com/llehouerou/jellywaves/internal/session"
)

// TickMsg refreshes the player bar.
type TickMsg time.Time

// ResumeSaveTickMsg triggers a periodic save of the queue and position.
type ResumeSaveTickMsg struct{}

// ReportRetryMsg triggers a flush of queued playback reports.
type ReportRetryMsg struct{}

// ReportRetryResultMsg is the outcome of a report flush.
type ReportRetryResultMsg struct {
	Result progress.RetryResult
	Err    error
}

// signedInMsg carries a session that still has to be installed.
type signedInMsg struct {
	session *session.Session
}

// signInFailedMsg sends the user back to the sign-in form.
type signInFailedMsg struct {
	err error
}

// rootMsg is the coordinator's decision on which screen to show.
type rootMsg struct {
	root session.Root
}

// queueLoadedMsg starts playback of items fetched from the server.
type queueLoadedMsg struct {
	items    []media.Item
	index    int
	position time.Duration
	paused   bool
	shuffle  bool
	repeat   playback.RepeatMode
	err      error
}

type (
	holderChangedMsg    struct{}
	containerChangedMsg struct{}
	boardChangedMsg     struct{}
)
