// Package store defines the backing-tier interface for persisted cache
// entries.
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// ErrNotFound is returned when no blob exists for a key.
var ErrNotFound = errors.New("store: entry not found")

// Ext is the extension blobs are stored under, before any codec suffix.
// Blob bodies are serialized entries in JSON form.
const Ext = ".json"

// Store is the persistence tier behind the in-memory cache table. A blob is
// the serialized form of a single cache entry; implementations address blobs
// by a digest of the raw cache key and handle storage details internally.
type Store interface {
	// Exists reports whether a blob is present for the key.
	Exists(ctx context.Context, key string) bool

	// Read returns the blob stored for the key.
	// Returns ErrNotFound if no blob exists.
	Read(ctx context.Context, key string) ([]byte, error)

	// Write stores the blob for the key, replacing any previous one.
	Write(ctx context.Context, key string, data []byte) error

	// Delete removes the blob for the key. Deleting a key that has no
	// blob is a no-op, not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes every blob held by the store.
	Clear(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}

// HashKey maps a raw cache key to its storage name: the lowercase hex SHA-256
// digest of the key. Every Store implementation addresses blobs by this digest
// so the tiers stay interchangeable.
func HashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
