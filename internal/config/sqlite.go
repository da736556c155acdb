package config

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

const settingsSchema = `
CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

// Store is a persistent settings backend.
type Store interface {
	GetString(key, def string) string
	SetString(key, value string) error
	Keys() []string
	Clear() error
}

// compile-time checks
var (
	_ Store = (*Config)(nil)
	_ Store = (*SQLiteStore)(nil)
)

// SQLiteStore keeps settings in a SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings database: %w", err)
	}
	if _, err := db.Exec(settingsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create settings table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// GetString returns the value of key, or def if it is unset or unreadable.
func (s *SQLiteStore) GetString(key, def string) string {
	var value string
	err := s.db.Get(&value, `SELECT value FROM settings WHERE key = ?`, key)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Warn().Err(err).Str("key", key).Msg("failed to read setting")
		}
		return def
	}
	return value
}

// SetString validates and stores value. An empty value deletes key.
func (s *SQLiteStore) SetString(key, value string) error {
	value = strings.TrimSpace(value)
	if err := Validate(key, value); err != nil {
		return err
	}

	var err error
	if value == "" {
		_, err = s.db.Exec(`DELETE FROM settings WHERE key = ?`, key)
	} else {
		_, err = s.db.Exec(
			`INSERT INTO settings (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			key, value,
		)
	}
	if err != nil {
		return fmt.Errorf("failed to write setting %s: %w", key, err)
	}
	return nil
}

// Keys returns the keys that are set, sorted.
func (s *SQLiteStore) Keys() []string {
	var keys []string
	if err := s.db.Select(&keys, `SELECT key FROM settings ORDER BY key`); err != nil {
		log.Warn().Err(err).Msg("failed to list settings")
		return nil
	}
	return keys
}

// Clear deletes every setting.
func (s *SQLiteStore) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM settings`); err != nil {
		return fmt.Errorf("failed to clear settings: %w", err)
	}
	return nil
}
