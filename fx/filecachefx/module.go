// Package filecachefx provides an fx module for a file-backed artifact cache.
package filecachefx

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/captionart/hoard"
	"github.com/captionart/hoard/internal/codec/noopcodec"
	"github.com/captionart/hoard/internal/stats"
	"github.com/captionart/hoard/internal/stats/logger"
	"github.com/captionart/hoard/internal/store/filestore"
)

// Config holds configuration for the file-backed cache.
type Config struct {
	// Dir is the backing-tier directory. If it cannot be created the
	// cache runs memory-only.
	Dir string

	// MaxEntries is the in-memory entry ceiling. Zero keeps the cache
	// default.
	MaxEntries int

	// MaxBytes is the in-memory size ceiling. Zero keeps the cache
	// default.
	MaxBytes int64

	// DefaultTTL applies to writes without an explicit TTL. Zero keeps
	// the cache default.
	DefaultTTL time.Duration

	// WriteThrough persists every write to the file tier.
	WriteThrough bool
}

// Module provides a file-backed *hoard.Cache.
// Requires a Config and a *zap.Logger to be provided.
var Module = fx.Module("filecache",
	fx.Provide(
		newStatsCollector,
		newCache,
	),
)

func newStatsCollector(log *zap.Logger) stats.Collector {
	return logger.New(log.Named("hoard.stats"))
}

// Params holds dependencies for creating the cache.
type Params struct {
	fx.In

	Config    Config
	Logger    *zap.Logger
	Collector stats.Collector
	Lifecycle fx.Lifecycle
}

// Result holds the provided cache.
type Result struct {
	fx.Out

	Cache *hoard.Cache
}

func newCache(p Params) (Result, error) {
	log := p.Logger.Named("hoard")
	st := filestore.New(p.Config.Dir, noopcodec.New(), log.Named("store"))

	opts := []hoard.Option{
		hoard.WithStore(st),
		hoard.WithStats(p.Collector),
		hoard.WithLogger(log),
	}
	if p.Config.MaxEntries > 0 {
		opts = append(opts, hoard.WithMaxEntries(p.Config.MaxEntries))
	}
	if p.Config.MaxBytes > 0 {
		opts = append(opts, hoard.WithMaxBytes(p.Config.MaxBytes))
	}
	if p.Config.DefaultTTL > 0 {
		opts = append(opts, hoard.WithDefaultTTL(p.Config.DefaultTTL))
	}
	if p.Config.WriteThrough {
		opts = append(opts, hoard.WithWriteThrough())
	}

	cache, err := hoard.New(opts...)
	if err != nil {
		return Result{}, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return cache.Close()
		},
	})

	return Result{Cache: cache}, nil
}
