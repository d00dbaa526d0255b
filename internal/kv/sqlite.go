package kv

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// SQLiteFile is the database filename created inside the data directory.
const SQLiteFile = "neuraldesk.db"

// SQLite is the durable Store backed by a single SQLite table.
type SQLite struct {
	db    *sql.DB
	hooks sqliteHooks
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// sqliteHooks lets tests inject failures into writes.
type sqliteHooks struct {
	exec func(db execer, query string, args ...any) (sql.Result, error)
}

func (s *SQLite) execHook(query string, args ...any) (sql.Result, error) {
	if s.hooks.exec != nil {
		return s.hooks.exec(s.db, query, args...)
	}
	return s.db.Exec(query, args...)
}

// OpenSQLite creates the data directory if needed, opens SQLite with WAL
// mode and runs migrations.
func OpenSQLite(dir string) (*SQLite, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("kv: create data dir: %w", err)
	}

	db, err := openDB("sqlite", filepath.Join(dir, SQLiteFile))
	if err != nil {
		return nil, fmt.Errorf("kv: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("kv: pragma %q: %w", p, err)
		}
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("kv: migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS kv (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Get implements Store.
func (s *SQLite) Get(key string) ([]byte, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("kv: get %q: %w", key, err)
	}
	return []byte(value), nil
}

// Set implements Store.
func (s *SQLite) Set(key string, value []byte) error {
	_, err := s.execHook(
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(value), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("kv: set %q: %w", key, err)
	}
	return nil
}

// Delete implements Store.
func (s *SQLite) Delete(key string) error {
	if _, err := s.execHook(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("kv: delete %q: %w", key, err)
	}
	return nil
}

// Keys implements Store.
func (s *SQLite) Keys(prefix string) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT key FROM kv WHERE substr(key, 1, ?) = ? ORDER BY key`,
		utf8.RuneCountInString(prefix), prefix,
	)
	if err != nil {
		return nil, fmt.Errorf("kv: keys %q: %w", prefix, err)
	}
	defer func() { _ = rows.Close() }()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
