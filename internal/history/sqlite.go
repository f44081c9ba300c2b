package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const createKVTable = `
CREATE TABLE IF NOT EXISTS kv (
	key TEXT PRIMARY KEY,
	value BLOB NOT NULL,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);`

// SQLiteBackend keeps values in a single key/value table of a local SQLite file.
type SQLiteBackend struct {
	DB *sql.DB
}

// OpenSQLite opens (and creates when missing) the database at path and prepares the kv table.
func OpenSQLite(ctx context.Context, path string) (*SQLiteBackend, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("history: create directory %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, createKVTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: create kv table: %w", err)
	}
	return &SQLiteBackend{DB: db}, nil
}

// Get implements Backend.
func (s *SQLiteBackend) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.DB.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("history: select %s: %w", key, err)
	}
	return value, nil
}

// Put implements Backend.
func (s *SQLiteBackend) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`, key, value)
	if err != nil {
		return fmt.Errorf("history: upsert %s: %w", key, err)
	}
	return nil
}

// Delete implements Backend.
func (s *SQLiteBackend) Delete(ctx context.Context, key string) error {
	if _, err := s.DB.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("history: delete %s: %w", key, err)
	}
	return nil
}

// Ping implements Pinger.
func (s *SQLiteBackend) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

// Close releases the underlying database handle.
func (s *SQLiteBackend) Close() error {
	return s.DB.Close()
}
