package oracle

import (
	"context"
	"sync"

	"github.com/gabriellangon/narrando-backend/internal/geo"
	"github.com/gabriellangon/narrando-backend/internal/metrics"
	"github.com/gabriellangon/narrando-backend/internal/model"
)

// DistanceCache stores resolved walking distances keyed by directed
// rounded coordinate pairs.
type DistanceCache interface {
	GetDistance(ctx context.Context, key string) (float64, bool)
	SetDistance(ctx context.Context, key string, meters float64)
}

// PathCache stores resolved walking-path geometry keyed the same way.
type PathCache interface {
	GetPath(ctx context.Context, key string) ([]model.Location, bool)
	SetPath(ctx context.Context, key string, path []model.Location)
}

// MapCache is the default process-lifetime cache. Append-only and safe for
// read-mostly sharing across concurrent runs. Growth is unbounded; a
// long-lived service should prefer the Redis cache.
type MapCache struct {
	distances sync.Map // string -> float64
	paths     sync.Map // string -> []model.Location
}

func NewMapCache() *MapCache { return &MapCache{} }

func (c *MapCache) GetDistance(_ context.Context, key string) (float64, bool) {
	v, ok := c.distances.Load(key)
	if !ok {
		return 0, false
	}
	return v.(float64), true
}

func (c *MapCache) SetDistance(_ context.Context, key string, meters float64) {
	c.distances.Store(key, meters)
}

func (c *MapCache) GetPath(_ context.Context, key string) ([]model.Location, bool) {
	v, ok := c.paths.Load(key)
	if !ok {
		return nil, false
	}
	return v.([]model.Location), true
}

func (c *MapCache) SetPath(_ context.Context, key string, path []model.Location) {
	c.paths.Store(key, path)
}

// CachingDistance memoizes a DistanceOracle. The cache is probed in both
// directions so repeated queries for the same physical pair hit regardless
// of call order; entries stay directional, values are symmetric.
type CachingDistance struct {
	next  DistanceOracle
	cache DistanceCache
}

func NewCachingDistance(next DistanceOracle, cache DistanceCache) *CachingDistance {
	if cache == nil {
		cache = NewMapCache()
	}
	return &CachingDistance{next: next, cache: cache}
}

func (c *CachingDistance) WalkingDistance(ctx context.Context, origin, dest model.Location) (float64, bool) {
	if m, ok := c.cache.GetDistance(ctx, geo.PairKey(origin, dest)); ok {
		metrics.CacheLookups.WithLabelValues("distance", "hit").Inc()
		return m, true
	}
	if m, ok := c.cache.GetDistance(ctx, geo.PairKey(dest, origin)); ok {
		metrics.CacheLookups.WithLabelValues("distance", "hit").Inc()
		return m, true
	}
	metrics.CacheLookups.WithLabelValues("distance", "miss").Inc()
	if c.next == nil {
		return 0, false
	}
	m, ok := c.next.WalkingDistance(ctx, origin, dest)
	if !ok {
		return 0, false
	}
	c.cache.SetDistance(ctx, geo.PairKey(origin, dest), m)
	return m, true
}
