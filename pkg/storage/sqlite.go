package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists values in a single-file SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the store database under dataDir.
func OpenSQLite(dataDir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "storage.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening storage database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating storage database: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS values_store (
		namespace TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		kind TEXT NOT NULL,
		PRIMARY KEY (namespace, key)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// GetString implements Store.
func (s *SQLiteStore) GetString(ctx context.Context, namespace, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM values_store WHERE namespace = ? AND key = ? AND kind = 'string'`,
		namespace, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading %s/%s: %w", namespace, key, err)
	}
	return value, nil
}

// GetBool implements Store.
func (s *SQLiteStore) GetBool(ctx context.Context, namespace, key string) (bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM values_store WHERE namespace = ? AND key = ? AND kind = 'bool'`,
		namespace, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("reading %s/%s: %w", namespace, key, err)
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("reading %s/%s: %w", namespace, key, err)
	}
	return b, nil
}

// SetString implements Store.
func (s *SQLiteStore) SetString(ctx context.Context, namespace, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO values_store (namespace, key, value, kind) VALUES (?, ?, ?, 'string')
		 ON CONFLICT (namespace, key) DO UPDATE SET value = excluded.value, kind = 'string'`,
		namespace, key, value)
	if err != nil {
		return fmt.Errorf("writing %s/%s: %w", namespace, key, err)
	}
	return nil
}

// SetBool implements Store.
func (s *SQLiteStore) SetBool(ctx context.Context, namespace, key string, value bool) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO values_store (namespace, key, value, kind) VALUES (?, ?, ?, 'bool')
		 ON CONFLICT (namespace, key) DO UPDATE SET value = excluded.value, kind = 'bool'`,
		namespace, key, strconv.FormatBool(value))
	if err != nil {
		return fmt.Errorf("writing %s/%s: %w", namespace, key, err)
	}
	return nil
}
