package state

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Outbox tables share the attempts, last_error and created_at columns.
const (
	reportsTable   = "pending_reports"
	scrobblesTable  = "lastfm_pending_scrobbles"
)

func (m *Manager) deleteOutboxEntry(table string, id int64) error {
	_, err := m.db.Exec(`DELETE FROM `+table+` WHERE id = ?`, id)
	return err
}

func (m *Manager) bumpOutboxAttempt(table string, id int64, errMsg string) error {
	_, err := m.db.Exec(`
		UPDATE `+table+`
		SET attempts = attempts + 1, last_error = ?
		WHERE id = ?
	`, errMsg, id)
	return err
}

func (m *Manager) expireOutbox(table string, maxAge time.Duration) error {
	cutoff := time.Now().Add(-maxAge).Unix()
	res, err := m.db.Exec(`DELETE FROM `+table+` WHERE created_at < ?`, cutoff)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		logrus.WithFields(logrus.Fields{"component": "state", "table": table, "count": n}).
			Info("dropped expired outbox entries")
	}
	return nil
}
