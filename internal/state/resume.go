package state

import (
	"context"
	"database/sql"
	"errors"
	"time"

	dbutil "github.com/llehouerou/jellywaves/internal/db"
	"github.com/llehouerou/jellywaves/internal/media"
)

// ResumeState is the queue and position saved between runs.
type ResumeState struct {
	ItemIDs      []string
	CurrentIndex int
	Position     time.Duration
	RepeatMode   int
	Shuffle      bool
	SavedAt      time.Time
}

// CurrentItemID returns the id at CurrentIndex, or "".
func (s ResumeState) CurrentItemID() string {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.ItemIDs) {
		return ""
	}
	return s.ItemIDs[s.CurrentIndex]
}

func getResume(db *sql.DB) (*ResumeState, error) {
	var s ResumeState
	var ticks, savedAt int64
	row := db.QueryRow(`
		SELECT current_index, position_ticks, repeat_mode, shuffle, saved_at
		FROM resume_state WHERE id = 1
	`)
	err := row.Scan(&s.CurrentIndex, &ticks, &s.RepeatMode, &s.Shuffle, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // nothing saved yet
	}
	if err != nil {
		return nil, err
	}
	s.Position = media.FromTicks(ticks)
	s.SavedAt = dbutil.UnixTime(savedAt)

	rows, err := db.Query(`SELECT item_id FROM resume_items ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		s.ItemIDs = append(s.ItemIDs, id)
	}

	return &s, rows.Err()
}

func saveResume(ctx context.Context, sqlDB *sql.DB, s ResumeState) error {
	return dbutil.WithTx(ctx, sqlDB, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM resume_items`); err != nil {
			return err
		}

		_, err := tx.Exec(`
			INSERT INTO resume_state (id, current_index, position_ticks, repeat_mode, shuffle, saved_at)
			VALUES (1, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				current_index = excluded.current_index,
				position_ticks = excluded.position_ticks,
				repeat_mode = excluded.repeat_mode,
				shuffle = excluded.shuffle,
				saved_at = excluded.saved_at
		`, s.CurrentIndex, media.Ticks(s.Position), s.RepeatMode, s.Shuffle, time.Now().Unix())
		if err != nil {
			return err
		}

		stmt, err := tx.Prepare(`INSERT INTO resume_items (position, item_id) VALUES (?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, id := range s.ItemIDs {
			if _, err := stmt.Exec(i, id); err != nil {
				return err
			}
		}
		return nil
	})
}
