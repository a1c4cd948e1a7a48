// Package kv provides an ordered byte-to-byte map backed by SQLite.
//
// It is deliberately narrow: Put, Get, and Scan over raw []byte keys and
// values. SQLite's default BLOB collation (memcmp) is what makes key
// iteration in Scan byte-lexicographic, which is all the ordering the
// coordinator ever asks of it.
package kv

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store is a single table, keyed and valued by raw bytes.
type Store struct {
	db   *sql.DB
	mu   sync.RWMutex
	name string
}

// Config holds the location of one store's SQLite file.
type Config struct {
	// DataDir is the directory the store's database file lives in. It is
	// created if missing.
	DataDir string
	// FileName is the SQLite file name, e.g. "tokens.db".
	FileName string
}

// Open creates or opens a single-table ordered byte store.
func Open(cfg Config) (*Store, error) {
	dataDir := expandPath(cfg.DataDir)
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, cfg.FileName)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db, name: "entries"}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS entries (
		k BLOB PRIMARY KEY,
		v BLOB NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put writes key -> value, overwriting any prior value at key.
func (s *Store) Put(key, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`INSERT INTO entries (k, v) VALUES (?, ?)
		ON CONFLICT(k) DO UPDATE SET v = excluded.v`, key, value)
	if err != nil {
		return fmt.Errorf("put: %w", err)
	}
	return nil
}

// Get reads the value at key. It returns ok=false, not an error, when the
// key is absent.
func (s *Store) Get(key []byte) (value []byte, ok bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row := s.db.QueryRow(`SELECT v FROM entries WHERE k = ?`, key)
	var v []byte
	if err := row.Scan(&v); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get: %w", err)
	}
	return v, true, nil
}

// Entry is one key/value pair returned by Scan.
type Entry struct {
	Key   []byte
	Value []byte
}

// Scan returns every entry in the store, ordered by key byte-lexicographically.
func (s *Store) Scan() ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.Query(`SELECT k, v FROM entries ORDER BY k ASC`)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Key, &e.Value); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan rows: %w", err)
	}
	return out, nil
}

func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[1:])
	}
	return path
}
