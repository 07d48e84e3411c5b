// Package filestore implements the file-system backing tier: one blob file
// per cache key inside a dedicated directory.
package filestore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/captionart/hoard/internal/codec"
	"github.com/captionart/hoard/internal/store"
)

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// Store persists one file per key under a dedicated directory. The file name
// is the hex digest of the key plus store.Ext, with the codec extension after
// it when compression is on (e.g. "<digest>.json.zst"). If the directory
// cannot be created the store degrades to a disabled mode in which every read
// misses and every write is dropped, so the cache keeps working memory-only.
type Store struct {
	dir      string
	codec    codec.Codec
	logger   *zap.Logger
	disabled bool
}

// New creates a file store rooted at dir, creating the directory (and any
// missing parents) if needed. Creation failure is tolerated: the returned
// store is disabled rather than nil, and the failure is logged.
func New(dir string, c codec.Codec, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		dir:    dir,
		codec:  c,
		logger: logger,
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.disabled = true
		logger.Warn("cache directory unavailable, file tier disabled",
			zap.String("dir", dir),
			zap.Error(err),
		)
	}
	return s
}

// Dir returns the directory the store persists into.
func (s *Store) Dir() string {
	return s.dir
}

// Disabled reports whether the store is running in the degraded mode entered
// when the cache directory could not be created.
func (s *Store) Disabled() bool {
	return s.disabled
}

// Exists reports whether a blob file is present for the key.
func (s *Store) Exists(_ context.Context, key string) bool {
	if s.disabled {
		return false
	}
	info, err := os.Stat(s.blobPath(key))
	return err == nil && !info.IsDir()
}

// Read returns the serialized entry for the key.
func (s *Store) Read(ctx context.Context, key string) ([]byte, error) {
	if s.disabled {
		return nil, store.ErrNotFound
	}

	// Check for cancellation before starting I/O.
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	raw, err := os.ReadFile(s.blobPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("reading entry: %w", err)
	}

	reader, err := s.codec.Reader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("creating decompressor: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("decompressing entry: %w", err)
	}

	return data, nil
}

// Write stores the serialized entry for the key. The blob is written to a
// temporary file first and renamed into place so readers never observe a
// partial entry.
func (s *Store) Write(ctx context.Context, key string, data []byte) error {
	if s.disabled {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	var buf bytes.Buffer
	writer, err := s.codec.Writer(&buf)
	if err != nil {
		return fmt.Errorf("creating compressor: %w", err)
	}
	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return fmt.Errorf("compressing entry: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("compressing entry: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "blob-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing entry: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.blobPath(key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing entry: %w", err)
	}
	return nil
}

// Delete removes the blob file for the key. A missing file is a no-op.
func (s *Store) Delete(_ context.Context, key string) error {
	if s.disabled {
		return nil
	}
	if err := os.Remove(s.blobPath(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting entry: %w", err)
	}
	return nil
}

// Clear removes every file in the cache directory.
func (s *Store) Clear(_ context.Context) error {
	if s.disabled {
		return nil
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("reading cache directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("clearing cache directory: %w", err)
		}
	}
	return nil
}

// Close releases any resources held by the store.
func (s *Store) Close() error {
	return nil
}

// blobPath returns the file path for a key.
func (s *Store) blobPath(key string) string {
	name := store.HashKey(key) + store.Ext
	if ext := s.codec.Extension(); ext != "" {
		name += "." + ext
	}
	return filepath.Join(s.dir, name)
}
