// Package gcsstore implements a Google Cloud Storage backing tier.
package gcsstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/captionart/hoard/internal/codec"
	"github.com/captionart/hoard/internal/store"
)

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// Store is a Google Cloud Storage backing tier.
type Store struct {
	client *storage.Client
	bucket *storage.BucketHandle
	prefix string
	codec  codec.Codec
}

// New creates a new GCS store.
// The bucket must already exist.
// The codec handles compression/decompression.
func New(ctx context.Context, bucketName string, c codec.Codec, opts ...Option) (*Store, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating GCS client: %w", err)
	}

	s := &Store{
		client: client,
		bucket: client.Bucket(bucketName),
		codec:  c,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix sets a key prefix for all operations.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = strings.TrimSuffix(prefix, "/")
		if s.prefix != "" {
			s.prefix += "/"
		}
	}
}

// Exists reports whether a blob is present for the key.
func (s *Store) Exists(ctx context.Context, key string) bool {
	_, err := s.bucket.Object(s.objectKey(key)).Attrs(ctx)
	return err == nil
}

// Read reads and decompresses the blob stored for the key.
func (s *Store) Read(ctx context.Context, key string) ([]byte, error) {
	// Check for cancellation before starting.
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	obj := s.bucket.Object(s.objectKey(key))

	reader, err := obj.NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("creating reader: %w", err)
	}
	defer reader.Close()

	// Decompress using codec.
	decompressor, err := s.codec.Reader(reader)
	if err != nil {
		return nil, fmt.Errorf("creating decompressor: %w", err)
	}
	defer decompressor.Close()

	data, err := io.ReadAll(decompressor)
	if err != nil {
		return nil, fmt.Errorf("decompressing blob: %w", err)
	}

	return data, nil
}

// Write compresses and uploads the blob for the key. The object becomes
// visible only once the upload commits on Close.
func (s *Store) Write(ctx context.Context, key string, data []byte) error {
	// Check for cancellation before starting.
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	writer := s.bucket.Object(s.objectKey(key)).NewWriter(ctx)

	compressor, err := s.codec.Writer(writer)
	if err != nil {
		writer.Close()
		return fmt.Errorf("creating compressor: %w", err)
	}
	if _, err := compressor.Write(data); err != nil {
		compressor.Close()
		writer.Close()
		return fmt.Errorf("compressing blob: %w", err)
	}
	if err := compressor.Close(); err != nil {
		writer.Close()
		return fmt.Errorf("flushing compressor: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("writing blob: %w", err)
	}
	return nil
}

// Delete removes the blob for the key. Deleting a missing key is a no-op.
func (s *Store) Delete(ctx context.Context, key string) error {
	err := s.bucket.Object(s.objectKey(key)).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("deleting blob: %w", err)
	}
	return nil
}

// Clear removes every blob under the store's prefix.
func (s *Store) Clear(ctx context.Context) error {
	it := s.bucket.Objects(ctx, &storage.Query{Prefix: s.prefix + "blobs/"})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("listing blobs: %w", err)
		}
		if err := s.bucket.Object(attrs.Name).Delete(ctx); err != nil {
			return fmt.Errorf("deleting blob %s: %w", attrs.Name, err)
		}
	}
}

// Close releases resources.
func (s *Store) Close() error {
	return s.client.Close()
}

// objectKey returns the full object key for a cache key.
func (s *Store) objectKey(key string) string {
	name := store.HashKey(key) + store.Ext
	if ext := s.codec.Extension(); ext != "" {
		name += "." + ext
	}
	return s.prefix + "blobs/" + name
}
