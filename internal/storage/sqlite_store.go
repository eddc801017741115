package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS offline_records (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at INTEGER NOT NULL
);`

// sqliteStore implements a Store backed by a single SQLite table.
type sqliteStore struct {
	db *sql.DB
}

func openSQLite(path string) (Store, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// modernc sqlite serializes writers; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}
	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqliteStore) Read(key string) (string, bool, error) {
	if s == nil || s.db == nil {
		return "", false, nil
	}

	var raw []byte
	err := s.db.QueryRow(`SELECT value FROM offline_records WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read offline record: %w", err)
	}
	return string(raw), true, nil
}

func (s *sqliteStore) Write(key, value string) error {
	if s == nil || s.db == nil {
		return nil
	}

	_, err := s.db.Exec(`
INSERT INTO offline_records (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, []byte(value), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("write offline record: %w", err)
	}
	return nil
}
