// Package config loads cache configuration from YAML files and bridges it
// to cache options.
//
// Values omitted from the file keep their defaults, and ${VAR} references
// are expanded from the environment before parsing, so one file can serve
// several deployments:
//
//	dir: ${HOARD_CACHE_DIR}
//	max_entries: 500
//	max_size: 25MiB
//	default_ttl: 30m
//	policy: lru
//	compression: zstd
//	write_through: true
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/captionart/hoard"
	"github.com/captionart/hoard/internal/codec"
	"github.com/captionart/hoard/internal/codec/gzipcodec"
	"github.com/captionart/hoard/internal/codec/noopcodec"
	"github.com/captionart/hoard/internal/codec/zstdcodec"
	"github.com/captionart/hoard/internal/evict"
	"github.com/captionart/hoard/internal/evict/creation"
	"github.com/captionart/hoard/internal/evict/lru"
	"github.com/captionart/hoard/internal/store"
	"github.com/captionart/hoard/internal/store/filestore"
	"github.com/captionart/hoard/internal/store/sqlitestore"
)

// Config holds the cache configuration.
type Config struct {
	// Dir is the backing-tier directory for the file store.
	Dir string `yaml:"dir"`

	// Store selects the backing tier: "file", "sqlite" or "memory"
	// (memory means no backing tier at all).
	Store string `yaml:"store"`

	// SQLitePath is the database file used when Store is "sqlite".
	SQLitePath string `yaml:"sqlite_path"`

	// MaxEntries is the in-memory entry-count ceiling. Zero disables it.
	MaxEntries int `yaml:"max_entries"`

	// MaxSize is the aggregate in-memory size ceiling as a humanized byte
	// count ("50MiB", "1GB"). "0" disables it.
	MaxSize string `yaml:"max_size"`

	// DefaultTTL applies to writes that carry no explicit TTL.
	DefaultTTL time.Duration `yaml:"default_ttl"`

	// AutoEvict controls the eviction pass after each write.
	AutoEvict bool `yaml:"auto_evict"`

	// WriteThrough persists every write to the backing tier.
	WriteThrough bool `yaml:"write_through"`

	// Policy selects the eviction policy: "creation" or "lru". The lru
	// index is sized to MaxEntries, or 1024 when the entry ceiling is
	// disabled.
	Policy string `yaml:"policy"`

	// Compression selects the blob codec: "none", "gzip" or "zstd".
	Compression string `yaml:"compression"`
}

// Default returns a Config matching the cache's built-in defaults: a file
// tier under ./hoard-cache, 1000 entries, 50 MiB, one-hour TTL,
// oldest-created-first eviction, uncompressed blobs.
func Default() *Config {
	return &Config{
		Dir:         "hoard-cache",
		Store:       "file",
		SQLitePath:  "hoard.db",
		MaxEntries:  1000,
		MaxSize:     "50MiB",
		DefaultTTL:  time.Hour,
		AutoEvict:   true,
		Policy:      "creation",
		Compression: "none",
	}
}

// Load reads a YAML config file and expands environment variables.
// Fields absent from the file keep their Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

// Options translates the configuration into cache options. The logger is
// threaded into the cache and its backing tier; pass zap.NewNop() to run
// quiet.
func (c *Config) Options(logger *zap.Logger) ([]hoard.Option, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	maxBytes, err := parseSize(c.MaxSize)
	if err != nil {
		return nil, err
	}

	cdc, err := c.codec()
	if err != nil {
		return nil, err
	}

	st, err := c.store(cdc, logger)
	if err != nil {
		return nil, err
	}

	policy, err := c.policy()
	if err != nil {
		return nil, err
	}

	opts := []hoard.Option{
		hoard.WithMaxEntries(c.MaxEntries),
		hoard.WithMaxBytes(maxBytes),
		hoard.WithDefaultTTL(c.DefaultTTL),
		hoard.WithEvictionPolicy(policy),
		hoard.WithLogger(logger),
	}
	if st != nil {
		opts = append(opts, hoard.WithStore(st))
	}
	if !c.AutoEvict {
		opts = append(opts, hoard.WithoutAutoEvict())
	}
	if c.WriteThrough {
		opts = append(opts, hoard.WithWriteThrough())
	}
	return opts, nil
}

func parseSize(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("parse max_size %q: %w", s, err)
	}
	return int64(n), nil
}

func (c *Config) codec() (codec.Codec, error) {
	switch c.Compression {
	case "", "none":
		return noopcodec.New(), nil
	case "gzip":
		return gzipcodec.New(), nil
	case "zstd":
		return zstdcodec.New(), nil
	default:
		return nil, fmt.Errorf("unknown compression %q", c.Compression)
	}
}

func (c *Config) store(cdc codec.Codec, logger *zap.Logger) (store.Store, error) {
	switch c.Store {
	case "", "file":
		return filestore.New(c.Dir, cdc, logger.Named("store")), nil
	case "sqlite":
		st, err := sqlitestore.New(c.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return st, nil
	case "memory":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown store %q", c.Store)
	}
}

func (c *Config) policy() (evict.Policy, error) {
	switch c.Policy {
	case "", "creation":
		return creation.New(), nil
	case "lru":
		capacity := c.MaxEntries
		if capacity <= 0 {
			capacity = 1024
		}
		return lru.New(capacity)
	default:
		return nil, fmt.Errorf("unknown policy %q", c.Policy)
	}
}
