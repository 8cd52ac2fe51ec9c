package state

import (
	"database/sql"
	"time"

	dbutil "github.com/llehouerou/jellywaves/internal/db"
)

// Report kinds kept in the outbox. Periodic progress reports are never
// queued; the next one supersedes them.
const (
	ReportStart  = "start"
	ReportStop   = "stop"
	ReportPlayed = "played"
)

// PendingReport is a server playback report queued for retry. Stream
// indices are nil when no stream was selected.
type PendingReport struct {
	ID                  int64
	Kind                string
	ItemID              string
	MediaSourceID       string
	PlaySessionID       string
	AudioStreamIndex    *int
	SubtitleStreamIndex *int
	PositionTicks       int64
	IsPaused            bool
	Attempts            int
	LastError           string
	CreatedAt           time.Time
}

// AddPendingReport queues a report for later submission.
func (m *Manager) AddPendingReport(r PendingReport) error {
	_, err := m.db.Exec(`
		INSERT INTO pending_reports
		(kind, item_id, media_source_id, play_session_id, audio_stream_index, subtitle_stream_index,
		 position_ticks, is_paused, attempts, last_error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)
	`, r.Kind, r.ItemID, dbutil.NullString(r.MediaSourceID), dbutil.NullString(r.PlaySessionID),
		dbutil.NullInt(r.AudioStreamIndex), dbutil.NullInt(r.SubtitleStreamIndex),
		r.PositionTicks, r.IsPaused, dbutil.NullString(r.LastError), time.Now().Unix())
	return err
}

// GetPendingReports returns queued reports oldest first.
func (m *Manager) GetPendingReports() ([]PendingReport, error) {
	rows, err := m.db.Query(`
		SELECT id, kind, item_id, media_source_id, play_session_id, audio_stream_index, subtitle_stream_index,
		       position_ticks, is_paused, attempts, last_error, created_at
		FROM pending_reports
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []PendingReport
	for rows.Next() {
		var r PendingReport
		var source, session, lastError sql.NullString
		var audio, subtitle sql.NullInt64
		var createdAt int64

		err := rows.Scan(
			&r.ID, &r.Kind, &r.ItemID, &source, &session, &audio, &subtitle,
			&r.PositionTicks, &r.IsPaused, &r.Attempts, &lastError, &createdAt,
		)
		if err != nil {
			return nil, err
		}

		r.MediaSourceID = dbutil.NullStringValue(source)
		r.PlaySessionID = dbutil.NullStringValue(session)
		r.AudioStreamIndex = dbutil.NullIntValue(audio)
		r.SubtitleStreamIndex = dbutil.NullIntValue(subtitle)
		r.LastError = dbutil.NullStringValue(lastError)
		r.CreatedAt = time.Unix(createdAt, 0)
		reports = append(reports, r)
	}

	return reports, rows.Err()
}

// DeletePendingReport removes a report once delivered.
func (m *Manager) DeletePendingReport(id int64) error {
	return m.deleteOutboxEntry(reportsTable, id)
}

// UpdatePendingReportAttempt increments the attempt count and records errMsg.
func (m *Manager) UpdatePendingReportAttempt(id int64, errMsg string) error {
	return m.bumpOutboxAttempt(reportsTable, id, errMsg)
}

// DeleteOldPendingReports drops reports queued longer than maxAge ago.
func (m *Manager) DeleteOldPendingReports(maxAge time.Duration) error {
	return m.expireOutbox(reportsTable, maxAge)
}
