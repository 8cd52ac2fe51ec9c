package state

import (
	"database/sql"
	"errors"
	"time"

	dbutil "github.com/llehouerou/jellywaves/internal/db"
)

// LastfmSession is the linked Last.fm account.
type LastfmSession struct {
	Username   string
	SessionKey string
	LinkedAt   time.Time
}

// PendingScrobble is a scrobble queued for retry. ItemID is the server
// item it was played from.
type PendingScrobble struct {
	ID           int64
	Artist       string
	Track        string
	Album        string
	DurationSecs int
	Timestamp    time.Time
	ItemID       string
	Attempts     int
	LastError    string
	CreatedAt    time.Time
}

// GetLastfmSession returns the linked account, or nil when none is linked.
func (m *Manager) GetLastfmSession() (*LastfmSession, error) {
	var s LastfmSession
	var linkedAt int64
	err := m.db.QueryRow(`SELECT username, session_key, linked_at FROM lastfm_session WHERE id = 1`).
		Scan(&s.Username, &s.SessionKey, &linkedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // not linked
	}
	if err != nil {
		return nil, err
	}
	s.LinkedAt = dbutil.UnixTime(linkedAt)
	return &s, nil
}

// SaveLastfmSession links an account, replacing any previous one.
func (m *Manager) SaveLastfmSession(username, sessionKey string) error {
	_, err := m.db.Exec(`
		INSERT INTO lastfm_session (id, username, session_key, linked_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			username = excluded.username,
			session_key = excluded.session_key,
			linked_at = excluded.linked_at
	`, username, sessionKey, time.Now().Unix())
	return err
}

// DeleteLastfmSession unlinks the account. Queued scrobbles are kept for
// the next account linked.
func (m *Manager) DeleteLastfmSession() error {
	_, err := m.db.Exec(`DELETE FROM lastfm_session WHERE id = 1`)
	return err
}

// AddPendingScrobble queues a scrobble. LastError records why the first
// submission failed.
func (m *Manager) AddPendingScrobble(s PendingScrobble) error {
	_, err := m.db.Exec(`
		INSERT INTO lastfm_pending_scrobbles
		(artist, track, album, duration_seconds, timestamp, item_id, attempts, last_error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?)
	`, s.Artist, s.Track, dbutil.NullString(s.Album), s.DurationSecs, s.Timestamp.Unix(),
		dbutil.NullString(s.ItemID), dbutil.NullString(s.LastError), time.Now().Unix())
	return err
}

// GetPendingScrobbles returns queued scrobbles oldest first.
func (m *Manager) GetPendingScrobbles() ([]PendingScrobble, error) {
	rows, err := m.db.Query(`
		SELECT id, artist, track, album, duration_seconds, timestamp, item_id, attempts, last_error, created_at
		FROM lastfm_pending_scrobbles
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scrobbles []PendingScrobble
	for rows.Next() {
		var s PendingScrobble
		var album, itemID, lastError sql.NullString
		var playedAt, createdAt int64

		if err := rows.Scan(
			&s.ID, &s.Artist, &s.Track, &album, &s.DurationSecs,
			&playedAt, &itemID, &s.Attempts, &lastError, &createdAt,
		); err != nil {
			return nil, err
		}

		s.Album = dbutil.NullStringValue(album)
		s.ItemID = dbutil.NullStringValue(itemID)
		s.LastError = dbutil.NullStringValue(lastError)
		s.Timestamp = time.Unix(playedAt, 0)
		s.CreatedAt = time.Unix(createdAt, 0)
		scrobbles = append(scrobbles, s)
	}
	return scrobbles, rows.Err()
}

// DeletePendingScrobble removes a scrobble once submitted.
func (m *Manager) DeletePendingScrobble(id int64) error {
	return m.deleteOutboxEntry(scrobblesTable, id)
}

// UpdatePendingScrobbleAttempt increments the attempt count and records errMsg.
func (m *Manager) UpdatePendingScrobbleAttempt(id int64, errMsg string) error {
	return m.bumpOutboxAttempt(scrobblesTable, id, errMsg)
}

// DeleteOldPendingScrobbles drops scrobbles queued longer than maxAge ago.
// Last.fm rejects plays older than two weeks anyway.
func (m *Manager) DeleteOldPendingScrobbles(maxAge time.Duration) error {
	return m.expireOutbox(scrobblesTable, maxAge)
}
