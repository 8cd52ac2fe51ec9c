package state

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	appName      = "jellywaves"
	dbFileName   = "jellywaves.db"
	saveDebounce = 500 * time.Millisecond
)

type Manager struct {
	db        *sql.DB
	log       *logrus.Entry
	saveMu    sync.Mutex
	saveTimer *time.Timer
	pending   *ResumeState
}

func Open() (*Manager, error) {
	dbPath, err := getDBPath()
	if err != nil {
		return nil, err
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}

	return OpenPath(dbPath)
}

// OpenPath opens the database at path, creating the schema if needed.
func OpenPath(path string) (*Manager, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Observers write from their own goroutines.
	db.SetMaxOpenConns(1)

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Manager{
		db:  db,
		log: logrus.WithField("component", "state"),
	}, nil
}

func (m *Manager) Close() error {
	m.saveMu.Lock()
	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}
	pending := m.pending
	m.pending = nil
	m.saveMu.Unlock()

	// Flush pending state
	if pending != nil {
		if err := saveResume(context.Background(), m.db, *pending); err != nil {
			m.log.WithError(err).Warn("flush resume state")
		}
	}

	return m.db.Close()
}

func (m *Manager) DB() *sql.DB {
	return m.db
}

func (m *Manager) GetResume() (*ResumeState, error) {
	return getResume(m.db)
}

// SaveResume stores s after a short debounce; only the latest call is written.
func (m *Manager) SaveResume(s ResumeState) {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	m.pending = &s

	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}

	m.saveTimer = time.AfterFunc(saveDebounce, func() {
		m.saveMu.Lock()
		pending := m.pending
		m.pending = nil
		m.saveMu.Unlock()

		if pending != nil {
			if err := saveResume(context.Background(), m.db, *pending); err != nil {
				m.log.WithError(err).Warn("save resume state")
			}
		}
	})
}

func getDBPath() (string, error) {
	return xdg.DataFile(filepath.Join(appName, dbFileName))
}
