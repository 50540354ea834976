// Package sqlite implements the repository interfaces on top of SQLite.
//
// WHY modernc.org/sqlite?
// It is a pure Go translation of SQLite, so the server builds and
// cross-compiles without a C toolchain. It registers itself with
// database/sql under the driver name "sqlite".
//
// LAYOUT:
// One *DB owns the connection pool and the schema. Each table is reached
// through a small accessor type that shares the pool:
//
//	db.Projects() -> *ProjectDB  (repository.ProjectRepository)
//	db.Snippets() -> *SnippetDB  (repository.SnippetRepository)
//	db.Files()    -> *FileDB     (repository.FileRepository)
//
// TIMESTAMPS:
// Times are stored as TEXT in a fixed-width UTC layout so that ORDER BY on
// the raw column sorts chronologically. RFC3339Nano would not: it drops
// trailing zeros, and ".1Z" sorts after ".12Z".
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	driver "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sakif/ide-server/internal/repository"
)

// timeLayout is RFC3339 with a fixed nine-digit fraction. Values are always
// converted to UTC first, so the zone renders as "Z".
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// DB wraps the sql.DB connection pool. It is safe for concurrent use.
type DB struct {
	conn *sql.DB
}

// New opens (creating if needed) the database at path and applies the schema.
//
// path examples:
//   - "ide_server.db"          → file in the working directory
//   - "/var/lib/ide/ide.db"    → parent directory is created if missing
//   - ":memory:"               → throwaway database, pinned to one connection
//
// Either every table is ready when New returns, or it returns an error and
// the pool is closed.
func New(path string) (*DB, error) {
	memory := isMemory(path)

	if !memory {
		if dir := filepath.Dir(path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("sqlite: creating database directory %s: %w", dir, err)
			}
		}
	}

	conn, err := sql.Open("sqlite", withPragmas(path))
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Every pooled connection to ":memory:" would get its own empty database.
	if memory {
		conn.SetMaxOpenConns(1)
	}

	// sql.Open is lazy; Ping surfaces a bad path or permissions right away.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// journal_mode is stored in the database file, so setting it once is enough.
	if !memory {
		if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
			conn.Close()
			return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
		}
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) Projects() *ProjectDB { return &ProjectDB{conn: db.conn} }
func (db *DB) Snippets() *SnippetDB { return &SnippetDB{conn: db.conn} }
func (db *DB) Files() *FileDB       { return &FileDB{conn: db.conn} }

// migrate creates the schema. Every statement is idempotent, so running it
// on every startup against an existing database is safe.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS projects (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			description TEXT,
			path        TEXT NOT NULL,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_projects_updated_at ON projects(updated_at);
	`)
	if err != nil {
		return fmt.Errorf("creating projects table: %w", err)
	}

	// Tags live in their own table, one row per tag, ordered by position.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS snippets (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL,
			language    TEXT NOT NULL,
			code        TEXT NOT NULL DEFAULT '',
			description TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_snippets_updated_at ON snippets(updated_at);

		CREATE TABLE IF NOT EXISTS snippet_tags (
			snippet_id TEXT NOT NULL REFERENCES snippets(id) ON DELETE CASCADE,
			position   INTEGER NOT NULL,
			tag        TEXT NOT NULL,
			PRIMARY KEY (snippet_id, position)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating snippets tables: %w", err)
	}

	// project_id is deliberately not a foreign key: nothing links files to
	// projects yet and the column is always NULL.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS files (
			id         TEXT PRIMARY KEY,
			filename   TEXT NOT NULL,
			filepath   TEXT NOT NULL,
			size       INTEGER NOT NULL,
			mime_type  TEXT NOT NULL,
			project_id TEXT,
			created_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_files_created_at ON files(created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating files table: %w", err)
	}

	return nil
}

func isMemory(path string) bool {
	return path == ":memory:" || strings.Contains(path, "mode=memory")
}

// withPragmas appends per-connection pragmas understood by modernc's DSN
// parser. foreign_keys and busy_timeout are connection settings, so they must
// be applied to every connection the pool opens, not just the first one.
func withPragmas(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// insertError wraps a failed INSERT. A primary key violation is reported as
// repository.ErrDuplicateID so callers can tell it apart from I/O failures.
func insertError(what, id string, err error) error {
	var sqliteErr *driver.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY {
		return fmt.Errorf("sqlite: creating %s %s: %w", what, id, repository.ErrDuplicateID)
	}
	return fmt.Errorf("sqlite: creating %s %s: %w", what, id, err)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}

// nullString maps an optional string to a nullable column value.
func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
