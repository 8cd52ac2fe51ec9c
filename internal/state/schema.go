package state

import (
	"database/sql"
)

const currentSchemaVersion = 3

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS resume_state (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			current_index INTEGER NOT NULL DEFAULT -1,
			position_ticks INTEGER NOT NULL DEFAULT 0,
			repeat_mode INTEGER NOT NULL DEFAULT 0,
			shuffle INTEGER NOT NULL DEFAULT 0,
			saved_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS resume_items (
			position INTEGER PRIMARY KEY,
			item_id TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS playback_settings (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			volume REAL NOT NULL DEFAULT 1.0,
			muted INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS pending_reports (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL,
			item_id TEXT NOT NULL,
			media_source_id TEXT,
			play_session_id TEXT,
			audio_stream_index INTEGER,
			subtitle_stream_index INTEGER,
			position_ticks INTEGER NOT NULL DEFAULT 0,
			is_paused INTEGER NOT NULL DEFAULT 0,
			attempts INTEGER NOT NULL DEFAULT 0,
			last_error TEXT,
			created_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_pending_reports_created ON pending_reports(created_at);

		CREATE TABLE IF NOT EXISTS lastfm_session (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			username TEXT NOT NULL,
			session_key TEXT NOT NULL,
			linked_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS lastfm_pending_scrobbles (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			artist TEXT NOT NULL,
			track TEXT NOT NULL,
			album TEXT,
			duration_seconds INTEGER NOT NULL,
			timestamp INTEGER NOT NULL,
			item_id TEXT,
			attempts INTEGER NOT NULL DEFAULT 0,
			last_error TEXT,
			created_at INTEGER NOT NULL
		);
	`)
	if err != nil {
		return err
	}

	// Set initial version if not exists
	_, err = db.Exec(`
		INSERT OR IGNORE INTO schema_version (version) VALUES (?)
	`, currentSchemaVersion)
	if err != nil {
		return err
	}

	// Migration: version 1 had no paused flag on reports
	_, _ = db.Exec(`ALTER TABLE pending_reports ADD COLUMN is_paused INTEGER NOT NULL DEFAULT 0`)
	// Migration: version 2 dropped the media source and stream selection
	for _, col := range []string{
		"media_source_id TEXT",
		"audio_stream_index INTEGER",
		"subtitle_stream_index INTEGER",
	} {
		_, _ = db.Exec(`ALTER TABLE pending_reports ADD COLUMN ` + col)
	}

	return nil
}
