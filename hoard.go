// Package hoard caches expensive-to-recompute creative artifacts such as
// generated captions, rendered images and image masks in a two-tier store: a
// bounded in-memory entry table in front of an optional persistent blob tier.
//
// Example usage:
//
//	cache, err := hoard.New(
//	    hoard.WithDir("hoard-cache"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cache.Close()
//
//	cache.SetCaption(ctx, "summer-sale", "Golden hour, golden deals.", 0)
//	if caption, ok := cache.GetCaption(ctx, "summer-sale"); ok {
//	    fmt.Println(caption)
//	}
//
// Entries expire lazily: a stale entry is only detected and removed when a
// read or existence check touches it. When the table grows past its entry or
// size ceiling, the oldest-created entries are evicted from memory; blobs on
// the backing tier stay put and can be promoted back in by a later read.
package hoard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/captionart/hoard/internal/evict"
	"github.com/captionart/hoard/internal/stats"
	"github.com/captionart/hoard/internal/store"
)

// ErrClosed indicates the cache has been closed.
var ErrClosed = errors.New("hoard: cache closed")

// Cache is a two-tier artifact cache. A Cache is safe for concurrent use by
// multiple goroutines; operations on the same key race under "last write
// wins" rather than strict per-key ordering.
type Cache struct {
	mu     sync.Mutex
	table  map[string]*Entry
	bytes  int64
	policy evict.Policy

	store     store.Store
	logger    *zap.Logger
	collector stats.Collector

	maxEntries   int
	maxBytes     int64
	defaultTTL   time.Duration
	autoEvict    bool
	writeThrough bool

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
	closed    atomic.Bool
}

// Stats is a point-in-time snapshot of the cache counters.
type Stats struct {
	Hits        int64
	Misses      int64
	Entries     int
	MemoryBytes int64
	Evictions   int64
}

// HitRate returns the fraction of reads served from the cache. With no
// reads recorded it returns 0 rather than dividing by zero.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// New creates a new Cache with the given options.
// If no options are provided, the cache is memory-only with the default
// ceilings; WithDir or WithStore attaches a backing tier.
func New(opts ...Option) (*Cache, error) {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	if cfg.maxEntries < 0 || cfg.maxBytes < 0 {
		return nil, fmt.Errorf("hoard: negative capacity ceiling (maxEntries=%d, maxBytes=%d)",
			cfg.maxEntries, cfg.maxBytes)
	}

	st := cfg.store
	if st == nil && cfg.dir != "" {
		st = cfg.newFileStore()
	}

	c := &Cache{
		table:        make(map[string]*Entry),
		policy:       cfg.policy,
		store:        st,
		logger:       cfg.logger,
		collector:    cfg.stats,
		maxEntries:   cfg.maxEntries,
		maxBytes:     cfg.maxBytes,
		defaultTTL:   cfg.defaultTTL,
		autoEvict:    cfg.autoEvict,
		writeThrough: cfg.writeThrough,
	}

	c.logger.Debug("cache initialized",
		zap.Int("maxEntries", c.maxEntries),
		zap.Int64("maxBytes", c.maxBytes),
		zap.Duration("defaultTTL", c.defaultTTL),
		zap.Bool("autoEvict", c.autoEvict),
		zap.Bool("writeThrough", c.writeThrough),
		zap.String("policy", c.policy.Name()),
		zap.Bool("persistent", c.store != nil),
	)

	return c, nil
}

// Get returns the value cached under key. The in-memory table is consulted
// first; on a table miss the backing tier is read and a live entry found
// there is promoted back into memory, so the next read of the same key is
// served from the table. An expired entry found on either tier is removed
// from both and reported as a miss. The returned bytes are a copy the
// caller may keep or modify.
func (c *Cache) Get(ctx context.Context, key string) (json.RawMessage, bool) {
	if c.closed.Load() {
		return nil, false
	}
	start := time.Now()
	defer func() {
		c.collector.ObserveHistogram(stats.MetricGetSeconds, time.Since(start).Seconds())
	}()

	c.mu.Lock()
	if e, ok := c.table[key]; ok {
		if e.Expired() {
			c.dropLocked(key, e)
			c.mu.Unlock()
			c.collector.IncCounter(stats.MetricExpirations, 1)
			c.deleteBlob(ctx, key)
			c.recordMiss()
			return nil, false
		}
		e.Hits++
		c.policy.Touch(key)
		data := bytes.Clone(e.Data)
		c.mu.Unlock()
		c.recordHit()
		return data, true
	}
	c.mu.Unlock()

	e, ok := c.loadBlob(ctx, key)
	if !ok {
		c.recordMiss()
		return nil, false
	}

	c.mu.Lock()
	if resident, ok := c.table[key]; ok {
		// A concurrent write landed while the blob was loading; the
		// table wins.
		resident.Hits++
		c.policy.Touch(key)
		data := bytes.Clone(resident.Data)
		c.mu.Unlock()
		c.recordHit()
		return data, true
	}
	c.table[key] = e
	c.bytes += e.Size
	c.policy.Record(key, e.Timestamp)
	c.updateGaugesLocked()
	data := bytes.Clone(e.Data)
	c.mu.Unlock()

	c.collector.IncCounter(stats.MetricPromotions, 1)
	c.recordHit()
	return data, true
}

// Set stores value under key. A non-positive ttl selects the configured
// default TTL. The value is serialized up front; a value that cannot be
// serialized is logged and dropped rather than surfaced, keeping the cache
// out of the caller's failure path. Writes land in memory; the backing tier
// is written only when write-through is enabled. With auto-eviction on, the
// capacity ceilings are enforced before Set returns.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	if c.closed.Load() {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("dropping unserializable value",
			zap.String("key", key),
			zap.Error(err),
		)
		return
	}
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	e := &Entry{
		Data:      data,
		Timestamp: time.Now(),
		TTL:       ttl,
		Size:      int64(len(data)),
	}

	// Serialize before the entry is shared; afterwards a concurrent Get
	// may be bumping its hit counter.
	var blob []byte
	if c.writeThrough && c.store != nil {
		if blob, err = json.Marshal(e); err != nil {
			c.logger.Warn("skipping write-through, entry not serializable",
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}

	c.mu.Lock()
	if old, ok := c.table[key]; ok {
		c.bytes -= old.Size
	}
	c.table[key] = e
	c.bytes += e.Size
	c.policy.Record(key, e.Timestamp)
	if c.autoEvict {
		c.evictLocked()
	}
	c.updateGaugesLocked()
	c.mu.Unlock()

	if blob != nil {
		if err := c.store.Write(ctx, key, blob); err != nil {
			c.logger.Warn("backing tier write failed",
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}
}

// Delete removes key from both tiers. Deleting an absent key is a no-op.
func (c *Cache) Delete(ctx context.Context, key string) {
	if c.closed.Load() {
		return
	}
	c.mu.Lock()
	if e, ok := c.table[key]; ok {
		c.dropLocked(key, e)
	}
	c.mu.Unlock()
	c.deleteBlob(ctx, key)
}

// Has reports whether a live entry exists for key on either tier. Like Get
// it removes expired entries from both tiers as a side effect, but it does
// not promote, does not bump entry hit counters, and moves neither the hit
// nor the miss statistic.
func (c *Cache) Has(ctx context.Context, key string) bool {
	if c.closed.Load() {
		return false
	}
	c.mu.Lock()
	if e, ok := c.table[key]; ok {
		if !e.Expired() {
			c.mu.Unlock()
			return true
		}
		c.dropLocked(key, e)
		c.mu.Unlock()
		c.collector.IncCounter(stats.MetricExpirations, 1)
		c.deleteBlob(ctx, key)
		return false
	}
	c.mu.Unlock()

	_, ok := c.loadBlob(ctx, key)
	return ok
}

// Clear empties the in-memory table, zeroes every statistic, and removes
// all blobs from the backing tier.
func (c *Cache) Clear(ctx context.Context) {
	if c.closed.Load() {
		return
	}
	c.mu.Lock()
	c.table = make(map[string]*Entry)
	c.bytes = 0
	c.policy.Reset()
	c.updateGaugesLocked()
	c.mu.Unlock()

	c.hits.Store(0)
	c.misses.Store(0)
	c.evictions.Store(0)

	if c.store != nil {
		if err := c.store.Clear(ctx); err != nil {
			c.logger.Warn("backing tier clear failed", zap.Error(err))
		}
	}
}

// Stats returns an immutable snapshot of the current counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	entries := len(c.table)
	memBytes := c.bytes
	c.mu.Unlock()

	return Stats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Entries:     entries,
		MemoryBytes: memBytes,
		Evictions:   c.evictions.Load(),
	}
}

// Close closes the backing tier. After Close the cache serves nothing:
// reads miss and writes are dropped. A second Close returns ErrClosed.
func (c *Cache) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}

	if c.store != nil {
		if err := c.store.Close(); err != nil {
			return fmt.Errorf("closing store: %w", err)
		}
	}

	return nil
}

// Store returns the backing tier, or nil for a memory-only cache.
func (c *Cache) Store() store.Store {
	return c.store
}

// loadBlob reads and validates the backing blob for key. An expired blob is
// deleted; an unreadable one is logged and reported absent, left in place.
func (c *Cache) loadBlob(ctx context.Context, key string) (*Entry, bool) {
	if c.store == nil {
		return nil, false
	}
	raw, err := c.store.Read(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			c.logger.Warn("backing tier read failed",
				zap.String("key", key),
				zap.Error(err),
			)
		}
		return nil, false
	}
	e, err := decodeEntry(raw)
	if err != nil {
		c.logger.Warn("discarding unreadable blob",
			zap.String("key", key),
			zap.Error(err),
		)
		return nil, false
	}
	if e.Expired() {
		c.collector.IncCounter(stats.MetricExpirations, 1)
		c.deleteBlob(ctx, key)
		return nil, false
	}
	return e, true
}

// evictLocked enforces the capacity ceilings: first the entry-count bound,
// then the aggregate-size bound. The non-empty check terminates the size
// loop even when the remaining entries cannot satisfy the bound.
// Eviction removes entries from memory only; their blobs stay on the
// backing tier for later promotion. Caller holds c.mu.
func (c *Cache) evictLocked() {
	for c.maxEntries > 0 && len(c.table) > c.maxEntries {
		if !c.evictOneLocked() {
			return
		}
	}
	for c.maxBytes > 0 && c.bytes > c.maxBytes && len(c.table) > 0 {
		if !c.evictOneLocked() {
			return
		}
	}
}

// evictOneLocked removes the policy's current victim from the table and
// reports whether an eviction happened; false means the policy has no keys
// left. Caller holds c.mu.
func (c *Cache) evictOneLocked() bool {
	key, ok := c.policy.Victim()
	if !ok {
		return false
	}
	e, ok := c.table[key]
	if !ok {
		// Stale policy registration: drop it and report progress so
		// the ceiling loops can continue.
		c.policy.Forget(key)
		return true
	}
	delete(c.table, key)
	c.bytes -= e.Size
	c.policy.Forget(key)
	c.evictions.Add(1)
	c.collector.IncCounter(stats.MetricEvictions, 1)
	c.logger.Debug("evicted entry",
		zap.String("key", key),
		zap.Int64("size", e.Size),
		zap.Time("created", e.Timestamp),
	)
	return true
}

// dropLocked removes a resident entry and its policy registration.
// Caller holds c.mu.
func (c *Cache) dropLocked(key string, e *Entry) {
	delete(c.table, key)
	c.bytes -= e.Size
	c.policy.Forget(key)
	c.updateGaugesLocked()
}

// deleteBlob removes the backing blob for key, logging failures.
func (c *Cache) deleteBlob(ctx context.Context, key string) {
	if c.store == nil {
		return
	}
	if err := c.store.Delete(ctx, key); err != nil {
		c.logger.Warn("backing tier delete failed",
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

func (c *Cache) updateGaugesLocked() {
	c.collector.SetGauge(stats.MetricEntries, int64(len(c.table)))
	c.collector.SetGauge(stats.MetricMemoryBytes, c.bytes)
}

func (c *Cache) recordHit() {
	c.hits.Add(1)
	c.collector.IncCounter(stats.MetricHits, 1)
}

func (c *Cache) recordMiss() {
	c.misses.Add(1)
	c.collector.IncCounter(stats.MetricMisses, 1)
}
