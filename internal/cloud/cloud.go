// Package cloud is the synced backend: a SQLite database holding one
// project row per owner and an append-only ledger of signed word-count
// deltas. The schema is consumed, not owned: an existing database created
// by an older deployment is used as-is, even when it predates the
// baseline_words column. Change notifications fan out through an
// in-process bus, plus a file watcher for edits made by other processes.
package cloud

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const currentVersion = 2

type Store struct {
	db   *sql.DB
	path string
	bus  *Bus

	supportsBaseline bool
}

// New opens (or creates) the cloud database at dbPath. A fresh database is
// created at the current schema version; an existing one keeps whatever
// version it has.
func New(dbPath string) (*Store, error) {
	return open(dbPath, currentVersion)
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func open(dbPath string, maxVersion int) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, path: dbPath, bus: NewBus()}
	if err := s.migrate(maxVersion); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if err := s.detectBaselineColumn(); err != nil {
		db.Close()
		return nil, fmt.Errorf("inspect schema: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path, ":memory:" for in-memory stores.
func (s *Store) Path() string {
	return s.path
}

// SupportsBaseline reports whether the projects table carries the
// baseline_words column.
func (s *Store) SupportsBaseline() bool {
	return s.supportsBaseline
}

// Bus returns the change-notification bus for this store.
func (s *Store) Bus() *Bus {
	return s.bus
}

// migrate brings a fresh database up to maxVersion. A database that
// already has a version is left alone: the schema belongs to the
// deployment, and upgrading it is the operator's call.
func (s *Store) migrate(maxVersion int) error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version > 0 {
		return nil
	}

	if err := s.migrateV1(); err != nil {
		return err
	}
	version = 1
	if maxVersion >= 2 {
		if err := s.migrateV2(); err != nil {
			return err
		}
		version = 2
	}

	_, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", version))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS projects (
		id          TEXT PRIMARY KEY,
		owner       TEXT NOT NULL,
		name        TEXT NOT NULL,
		goal_words  INTEGER NOT NULL DEFAULT 0,
		start_date  TEXT NOT NULL,
		end_date    TEXT NOT NULL,
		created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE INDEX IF NOT EXISTS idx_projects_owner ON projects(owner);

	CREATE TABLE IF NOT EXISTS word_events (
		id          TEXT PRIMARY KEY,
		project_id  TEXT NOT NULL REFERENCES projects(id),
		user_id     TEXT NOT NULL,
		ymd         TEXT NOT NULL,
		delta       INTEGER NOT NULL,
		created_at  TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_project ON word_events(project_id);
	CREATE INDEX IF NOT EXISTS idx_events_day     ON word_events(project_id, ymd);
	`
	_, err := s.db.Exec(ddl)
	return err
}

func (s *Store) migrateV2() error {
	_, err := s.db.Exec(`ALTER TABLE projects ADD COLUMN baseline_words INTEGER NOT NULL DEFAULT 0`)
	return err
}

func (s *Store) detectBaselineColumn() error {
	rows, err := s.db.Query(`PRAGMA table_info(projects)`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultVal, &pk); err != nil {
			return err
		}
		if name == "baseline_words" {
			s.supportsBaseline = true
		}
	}
	return rows.Err()
}

// DefaultDBPath returns ~/.config/wordsprint/cloud.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "wordsprint", "cloud.db"), nil
}
