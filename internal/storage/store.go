// Package storage persists tasks, timer sessions, context switches, and
// settings in a single SQLite database file.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/valter-silva-au/context-timer/pkg/models"
)

// timestampLayout is the fixed ISO-8601 layout used for every stored
// timestamp. All values are UTC, so the offset is always +00:00 and string
// comparison in SQL orders them chronologically.
const timestampLayout = "2006-01-02T15:04:05.000000-07:00"

// schema matches the layout of databases written by earlier releases, so
// existing timers.db files open without migration.
const schema = `
	CREATE TABLE IF NOT EXISTS tasks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		color TEXT,
		created_at TEXT NOT NULL,
		is_active INTEGER DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS timer_sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		task_id INTEGER NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT,
		duration_seconds INTEGER,
		FOREIGN KEY (task_id) REFERENCES tasks (id)
	);

	CREATE TABLE IF NOT EXISTS context_switches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		from_task_id INTEGER,
		to_task_id INTEGER NOT NULL,
		timestamp TEXT NOT NULL,
		FOREIGN KEY (from_task_id) REFERENCES tasks (id),
		FOREIGN KEY (to_task_id) REFERENCES tasks (id)
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_task_start
		ON timer_sessions(task_id, start_time);

	CREATE INDEX IF NOT EXISTS idx_sessions_start_time
		ON timer_sessions(start_time);

	CREATE INDEX IF NOT EXISTS idx_switches_timestamp
		ON context_switches(timestamp);
`

// Store is the SQLite-backed persistent store. It is owned by a single
// process; every write is committed before the call returns.
type Store struct {
	path string

	mu     sync.Mutex
	db     *sql.DB
	closed bool
}

// DefaultDBPath returns the default database location under the XDG data
// directory.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}
	return filepath.Join(home, ".local", "share", "context-timer", "timers.db")
}

// Open opens (creating if needed) the database at path and ensures the schema
// exists. Opening an existing database leaves its tables untouched.
func Open(path string) (*Store, error) {
	if path == "" {
		path = DefaultDBPath()
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite3: %w", err)
	}
	// One connection serializes all statements and keeps :memory: databases
	// alive across calls.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{path: path, db: db}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close releases the underlying connection. Further calls fail with
// models.ErrStoreClosed. Closing twice is a no-op.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}

// conn returns the live database handle or ErrStoreClosed.
func (s *Store) conn() (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, models.ErrStoreClosed
	}
	return s.db, nil
}

// FormatTimestamp renders t in the stored layout (UTC).
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// ParseTimestamp parses a stored timestamp. Besides the canonical layout it
// accepts any RFC 3339 value and offset-less ISO values, which are taken as
// UTC.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.ParseInLocation("2006-01-02T15:04:05.999999999", s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// nullableString converts an optional string to a SQL parameter.
func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// nullableInt converts an optional int64 to a SQL parameter.
func nullableInt(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}
