package oracle

import (
	"context"
	"math"

	"github.com/gabriellangon/narrando-backend/internal/geo"
	"github.com/gabriellangon/narrando-backend/internal/metrics"
	"github.com/gabriellangon/narrando-backend/internal/model"
)

// endpointTolerance decides when two path coordinates count as the same
// point when collapsing duplicates after forcing endpoints.
const endpointTolerance = 1e-9

// PathAdapter wraps a PathOracle with memoization and endpoint
// normalization. Downstream map rendering depends on every path starting
// and ending exactly at a stop, so whatever the provider returns is forced
// onto the stop coordinates.
type PathAdapter struct {
	next  PathOracle
	cache PathCache
}

func NewPathAdapter(next PathOracle, cache PathCache) *PathAdapter {
	if cache == nil {
		cache = NewMapCache()
	}
	return &PathAdapter{next: next, cache: cache}
}

// Materialize returns walking-path geometry whose first coordinate equals
// origin and last equals dest, exactly. A missing or malformed provider
// path degrades to a straight two-point segment.
func (a *PathAdapter) Materialize(ctx context.Context, origin, dest model.Location) []model.Location {
	key := geo.PairKey(origin, dest)
	if path, ok := a.cache.GetPath(ctx, key); ok {
		metrics.CacheLookups.WithLabelValues("path", "hit").Inc()
		return path
	}
	metrics.CacheLookups.WithLabelValues("path", "miss").Inc()

	var raw []model.Location
	if a.next != nil {
		raw = a.next.WalkingPath(ctx, origin, dest)
	}
	path := EnsureEndpoints(raw, origin, dest)
	a.cache.SetPath(ctx, key, path)
	return path
}

// EnsureEndpoints normalizes a provider polyline: drops non-finite
// coordinates, forces the first and last points onto the exact stop
// locations, and collapses consecutive duplicates. An empty or fully
// malformed path becomes the straight origin→dest segment.
func EnsureEndpoints(path []model.Location, origin, dest model.Location) []model.Location {
	coords := make([]model.Location, 0, len(path))
	for _, p := range path {
		if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lng, 0) {
			continue
		}
		coords = append(coords, p)
	}

	if len(coords) == 0 {
		return []model.Location{origin, dest}
	}

	// The provider's path may start or end a few meters off due to
	// road snapping.
	coords[0] = origin
	if len(coords) == 1 {
		coords = append(coords, dest)
	} else {
		coords[len(coords)-1] = dest
	}

	deduped := coords[:1]
	for _, p := range coords[1:] {
		last := deduped[len(deduped)-1]
		if math.Abs(last.Lat-p.Lat) <= endpointTolerance && math.Abs(last.Lng-p.Lng) <= endpointTolerance {
			continue
		}
		deduped = append(deduped, p)
	}
	return deduped
}
