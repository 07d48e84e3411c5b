// Package memcachefx provides an fx module for an in-memory artifact cache.
// Useful for testing.
package memcachefx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/captionart/hoard"
	"github.com/captionart/hoard/internal/stats"
	"github.com/captionart/hoard/internal/stats/logger"
	"github.com/captionart/hoard/internal/store/memstore"
)

// Module provides an in-memory *hoard.Cache for testing. The backing tier
// is an in-memory blob store so promotion and write-through paths stay
// exercisable without touching disk.
// Requires a *zap.Logger to be provided.
var Module = fx.Module("memcache",
	fx.Provide(
		newStatsCollector,
		newMemStore,
		newCache,
	),
)

func newStatsCollector(log *zap.Logger) stats.Collector {
	return logger.New(log.Named("hoard.stats"))
}

func newMemStore() *memstore.Store {
	return memstore.New()
}

// Params holds dependencies for creating the cache. The *memstore.Store is
// also in the fx graph directly, so tests can fx.Populate it to seed blobs.
type Params struct {
	fx.In

	Logger    *zap.Logger
	Collector stats.Collector
	Store     *memstore.Store
	Lifecycle fx.Lifecycle
}

// Result holds the provided cache.
type Result struct {
	fx.Out

	Cache *hoard.Cache
}

func newCache(p Params) (Result, error) {
	cache, err := hoard.New(
		hoard.WithStore(p.Store),
		hoard.WithStats(p.Collector),
		hoard.WithLogger(p.Logger.Named("hoard")),
	)
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
