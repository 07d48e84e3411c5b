package hoard

import (
	"time"

	"go.uber.org/zap"

	"github.com/captionart/hoard/internal/codec/noopcodec"
	"github.com/captionart/hoard/internal/evict"
	"github.com/captionart/hoard/internal/evict/creation"
	"github.com/captionart/hoard/internal/stats"
	"github.com/captionart/hoard/internal/store"
	"github.com/captionart/hoard/internal/store/filestore"
)

// Option configures a Cache.
type Option interface {
	apply(*options)
}

// options holds the cache configuration.
type options struct {
	store        store.Store
	dir          string
	maxEntries   int
	maxBytes     int64
	defaultTTL   time.Duration
	autoEvict    bool
	writeThrough bool
	policy       evict.Policy
	stats        stats.Collector
	logger       *zap.Logger
}

// defaultOptions returns the default configuration: memory-only, 1000
// entries, 50 MiB, one-hour TTL, oldest-created-first eviction.
func defaultOptions() options {
	return options{
		maxEntries: 1000,
		maxBytes:   50 << 20,
		defaultTTL: time.Hour,
		autoEvict:  true,
		policy:     creation.New(),
		stats:      stats.NewNoop(),
		logger:     zap.NewNop(),
	}
}

// newFileStore builds the file tier for WithDir. Deferred to New so it sees
// the logger no matter the option order.
func (o *options) newFileStore() store.Store {
	return filestore.New(o.dir, noopcodec.New(), o.logger)
}

// optionFunc wraps a function to implement Option.
type optionFunc func(*options)

// Compile-time check that optionFunc implements Option.
var _ Option = optionFunc(nil)

func (f optionFunc) apply(o *options) { f(o) }

// WithStore sets the backing tier. It takes precedence over WithDir.
func WithStore(s store.Store) Option {
	return optionFunc(func(o *options) {
		o.store = s
	})
}

// WithDir attaches a file-system backing tier rooted at dir. The directory
// is created (recursively) if missing; when creation fails the failure is
// logged and the cache runs memory-only.
func WithDir(dir string) Option {
	return optionFunc(func(o *options) {
		o.dir = dir
	})
}

// WithMaxEntries sets the in-memory entry-count ceiling.
// Zero disables the bound. Default is 1000.
func WithMaxEntries(n int) Option {
	return optionFunc(func(o *options) {
		o.maxEntries = n
	})
}

// WithMaxBytes sets the aggregate in-memory size ceiling in bytes.
// Zero disables the bound. Default is 50 MiB.
func WithMaxBytes(n int64) Option {
	return optionFunc(func(o *options) {
		o.maxBytes = n
	})
}

// WithDefaultTTL sets the TTL applied when Set is called without one.
// Zero or negative means such entries never expire. Default is one hour.
func WithDefaultTTL(ttl time.Duration) Option {
	return optionFunc(func(o *options) {
		o.defaultTTL = ttl
	})
}

// WithoutAutoEvict disables the eviction pass after each Set; the capacity
// ceilings are then not enforced.
func WithoutAutoEvict() Option {
	return optionFunc(func(o *options) {
		o.autoEvict = false
	})
}

// WithEvictionPolicy replaces the default oldest-created-first policy.
func WithEvictionPolicy(p evict.Policy) Option {
	return optionFunc(func(o *options) {
		o.policy = p
	})
}

// WithWriteThrough persists every Set to the backing tier as well. By
// default writes stay memory-only and the backing tier only serves reads,
// so entries become durable solely through whoever populates the tier out
// of band; write-through makes the cache itself populate it.
func WithWriteThrough() Option {
	return optionFunc(func(o *options) {
		o.writeThrough = true
	})
}

// WithStats sets the stats collector.
// If not set, a no-op collector is used.
func WithStats(c stats.Collector) Option {
	return optionFunc(func(o *options) {
		o.stats = c
	})
}

// WithLogger sets the logger.
// If not set, a no-op logger is used.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(o *options) {
		o.logger = l
	})
}
