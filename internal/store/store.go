// Package store persists the user profile and conversion history in a local
// SQLite key/value table.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/jwulff/fileforge/internal/domain"

	_ "modernc.org/sqlite"
)

// Record keys.
const (
	KeyUser    = "user"
	KeyHistory = "history"
)

const schema = `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updatedAt REAL NOT NULL
	);
`

// Store provides read-write access to the fileforge SQLite database.
type Store struct {
	db *sql.DB
}

// DefaultDBPath returns the default database path.
func DefaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir, _ = os.UserHomeDir()
	}
	return filepath.Join(dir, "fileforge", "fileforge.sqlite")
}

// Open opens (creating if needed) the database with WAL.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create database dir: %w", err)
	}

	dsn, err := dataSourceName(path)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// dataSourceName builds a SQLite URI for path. The path is percent-encoded so
// that '?', '#' and '%' in file names reach SQLite literally.
func dataSourceName(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve database path: %w", err)
	}
	u := url.URL{
		Scheme:   "file",
		Path:     filepath.ToSlash(abs),
		RawQuery: "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)",
	}
	return u.String(), nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// LoadUser returns the persisted user, or nil when the record is missing,
// unreadable or names an unknown subscription.
func (s *Store) LoadUser() *domain.User {
	raw, ok := s.get(KeyUser)
	if !ok {
		return nil
	}
	var u domain.User
	if err := json.Unmarshal(raw, &u); err != nil || u.Name == "" || !u.Subscription.Valid() {
		return nil
	}
	return &u
}

// LoadHistory returns the persisted log newest-first. Missing or malformed
// data yields an empty log.
func (s *Store) LoadHistory() []domain.HistoryEntry {
	raw, ok := s.get(KeyHistory)
	if !ok {
		return nil
	}
	var entries []domain.HistoryEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil
	}
	return entries
}

// SaveUser writes the user record. A nil user deletes it; only account
// deletion does that.
func (s *Store) SaveUser(u *domain.User) error {
	if u == nil {
		if _, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, KeyUser); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	}
	return s.put(KeyUser, u)
}

// SaveHistory overwrites the whole history log.
func (s *Store) SaveHistory(entries []domain.HistoryEntry) error {
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}
	return s.put(KeyHistory, entries)
}

func (s *Store) get(key string) ([]byte, bool) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return nil, false
	}
	return []byte(value), true
}

func (s *Store) put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	_, err = s.db.Exec(`
		INSERT INTO kv (key, value, updatedAt) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = excluded.updatedAt
	`, key, string(data), unixFromTime(time.Now()))
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// UpdatedAt returns when a record was last written.
func (s *Store) UpdatedAt(key string) (time.Time, error) {
	var ts float64
	err := s.db.QueryRow(`SELECT updatedAt FROM kv WHERE key = ?`, key).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("query updatedAt: %w", err)
	}
	return timeFromUnix(ts), nil
}

func unixFromTime(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

func timeFromUnix(ts float64) time.Time {
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}
