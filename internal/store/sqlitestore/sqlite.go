// Package sqlitestore provides a SQLite-backed tier.
//
// Blobs live in a single table keyed by the hashed cache key, so one
// database file can hold an arbitrary number of entries without the
// directory growth of the file tier.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/captionart/hoard/internal/store"
)

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

const createBlobsTable = `
CREATE TABLE IF NOT EXISTS blobs (
	key_hash TEXT PRIMARY KEY,
	body BLOB NOT NULL,
	stored_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Store is a SQLite-backed blob tier.
type Store struct {
	db *sql.DB
}

// New opens (creating if necessary) the database at path and prepares the
// blobs table.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open blob db: %w", err)
	}

	if _, err := db.Exec(createBlobsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate blob db: %w", err)
	}

	return &Store{db: db}, nil
}

// Exists reports whether a blob is present for the key.
func (s *Store) Exists(ctx context.Context, key string) bool {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM blobs WHERE key_hash = ?`,
		store.HashKey(key),
	).Scan(&one)
	return err == nil
}

// Read returns the blob stored for the key.
func (s *Store) Read(ctx context.Context, key string) ([]byte, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM blobs WHERE key_hash = ?`,
		store.HashKey(key),
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read blob: %w", err)
	}
	return body, nil
}

// Write stores the blob for the key, replacing any previous version.
func (s *Store) Write(ctx context.Context, key string, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO blobs (key_hash, body, stored_at) VALUES (?, ?, ?)`,
		store.HashKey(key), data, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("write blob: %w", err)
	}
	return nil
}

// Delete removes the blob for the key. Deleting a missing key is a no-op.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM blobs WHERE key_hash = ?`,
		store.HashKey(key),
	)
	if err != nil {
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}

// Clear removes every blob.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM blobs`); err != nil {
		return fmt.Errorf("clear blobs: %w", err)
	}
	return nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
