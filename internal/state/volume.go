package state

import (
	"database/sql"
	"errors"
)

// VolumeState is the output level of the audio backend. Volume is linear
// in [0, 1].
type VolumeState struct {
	Volume float64
	Muted  bool
}

var defaultVolume = VolumeState{Volume: 1.0}

// GetVolume returns the saved level, full volume when nothing is saved.
// Out-of-range values from older rows are clamped.
func (m *Manager) GetVolume() (*VolumeState, error) {
	v := defaultVolume
	err := m.db.QueryRow(`SELECT volume, muted FROM playback_settings WHERE id = 1`).
		Scan(&v.Volume, &v.Muted)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	v.Volume = clampVolume(v.Volume)
	return &v, nil
}

// SaveVolume stores the level, clamped to [0, 1].
func (m *Manager) SaveVolume(volume float64, muted bool) error {
	_, err := m.db.Exec(`
		INSERT INTO playback_settings (id, volume, muted) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET volume = excluded.volume, muted = excluded.muted
	`, clampVolume(volume), muted)
	return err
}

func clampVolume(v float64) float64 {
	return min(max(v, 0), 1)
}
