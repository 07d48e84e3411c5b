package hoard

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// View is a typed window onto a Cache: keys are namespaced under a fixed
// prefix and values marshal to and from T. The storage layer stays uniform
// while each artifact kind gets a statically typed contract.
type View[T any] struct {
	cache  *Cache
	prefix string
}

// NewView creates a typed view over cache. The prefix names the artifact
// kind and becomes the key namespace, e.g. "caption" keys as "caption:<id>".
func NewView[T any](cache *Cache, prefix string) View[T] {
	return View[T]{cache: cache, prefix: prefix}
}

// Key returns the namespaced cache key for id.
func (v View[T]) Key(id string) string {
	return v.prefix + ":" + id
}

// Get returns the value cached under id.
func (v View[T]) Get(ctx context.Context, id string) (T, bool) {
	var zero T
	raw, ok := v.cache.Get(ctx, v.Key(id))
	if !ok {
		return zero, false
	}
	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		v.cache.logger.Warn("discarding undecodable value",
			zap.String("key", v.Key(id)),
			zap.Error(err),
		)
		return zero, false
	}
	return value, true
}

// Set caches value under id. A non-positive ttl selects the cache's
// default TTL.
func (v View[T]) Set(ctx context.Context, id string, value T, ttl time.Duration) {
	v.cache.Set(ctx, v.Key(id), value, ttl)
}

// Delete removes id from both tiers.
func (v View[T]) Delete(ctx context.Context, id string) {
	v.cache.Delete(ctx, v.Key(id))
}

// Has reports whether a live entry exists for id.
func (v View[T]) Has(ctx context.Context, id string) bool {
	return v.cache.Has(ctx, v.Key(id))
}

// BinaryView stores binary payloads through a base64 text representation,
// keeping the serialized tier text-safe.
type BinaryView struct {
	view View[string]
}

// NewBinaryView creates a binary view over cache under the given prefix.
func NewBinaryView(cache *Cache, prefix string) BinaryView {
	return BinaryView{view: NewView[string](cache, prefix)}
}

// Key returns the namespaced cache key for id.
func (b BinaryView) Key(id string) string {
	return b.view.Key(id)
}

// Get returns the decoded binary payload cached under id.
func (b BinaryView) Get(ctx context.Context, id string) ([]byte, bool) {
	encoded, ok := b.view.Get(ctx, id)
	if !ok {
		return nil, false
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		b.view.cache.logger.Warn("discarding undecodable binary value",
			zap.String("key", b.view.Key(id)),
			zap.Error(err),
		)
		return nil, false
	}
	return data, true
}

// Set caches the binary payload under id.
func (b BinaryView) Set(ctx context.Context, id string, data []byte, ttl time.Duration) {
	b.view.Set(ctx, id, base64.StdEncoding.EncodeToString(data), ttl)
}

// Delete removes id from both tiers.
func (b BinaryView) Delete(ctx context.Context, id string) {
	b.view.Delete(ctx, id)
}

// Has reports whether a live entry exists for id.
func (b BinaryView) Has(ctx context.Context, id string) bool {
	return b.view.Has(ctx, id)
}
