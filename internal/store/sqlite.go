package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultSlotName is the slot the dashboard persists under.
const DefaultSlotName = "decisions"

// SQLiteSlot is a Slot backed by one row of a SQLite key-value table.
type SQLiteSlot struct {
	db   *sql.DB
	name string

	// DBPath is the resolved database file path.
	DBPath string
}

// OpenSQLite opens or creates the slot database and binds to the named
// slot. An empty name binds to DefaultSlotName.
func OpenSQLite(path, name string) (*SQLiteSlot, error) {
	if name == "" {
		name = DefaultSlotName
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve slot db path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return nil, fmt.Errorf("ensure slot db dir: %w", err)
	}

	db, err := sql.Open("sqlite", absPath)
	if err != nil {
		return nil, fmt.Errorf("open slot db: %w", err)
	}

	s := &SQLiteSlot{db: db, name: name, DBPath: absPath}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLiteSlot) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteSlot) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS slots (
	name TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at TEXT NOT NULL
)`)
	if err != nil {
		return fmt.Errorf("create slot schema: %w", err)
	}
	return nil
}

func (s *SQLiteSlot) Read() (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM slots WHERE name = ?`, s.name).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read slot %s: %w", s.name, err)
	}
	return value, true, nil
}

func (s *SQLiteSlot) Write(value string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(`
INSERT INTO slots (name, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		s.name, value, now)
	if err != nil {
		return fmt.Errorf("write slot %s: %w", s.name, err)
	}
	return nil
}

func (s *SQLiteSlot) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM slots WHERE name = ?`, s.name); err != nil {
		return fmt.Errorf("clear slot %s: %w", s.name, err)
	}
	return nil
}
