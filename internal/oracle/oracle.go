// Package oracle wraps the injected external providers the planner depends
// on: walking distances, detailed walking paths, and optional waypoint
// reordering. Every wrapper degrades instead of failing; only the caller
// decides what a miss means.
package oracle

import (
	"context"

	"github.com/gabriellangon/narrando-backend/internal/geo"
	"github.com/gabriellangon/narrando-backend/internal/model"
)

// DistanceOracle resolves the walking distance in meters between two
// coordinates. ok is false when the provider cannot answer; callers
// substitute a geometric fallback. Implementations must be idempotent and
// safe to call redundantly.
type DistanceOracle interface {
	WalkingDistance(ctx context.Context, origin, dest model.Location) (meters float64, ok bool)
}

// PathOracle resolves detailed walking-path geometry between two
// coordinates. An empty result means the provider has no path; the adapter
// falls back to a straight segment.
type PathOracle interface {
	WalkingPath(ctx context.Context, origin, dest model.Location) []model.Location
}

// WaypointReorderer reorders the interior waypoints of a tour, anchored at
// the current first and last points. ok is false when the provider declined
// or failed; the caller keeps its ordering.
type WaypointReorderer interface {
	Reorder(ctx context.Context, points []model.Point) ([]model.Point, bool)
}

// DistanceFunc adapts a plain function to a DistanceOracle.
type DistanceFunc func(ctx context.Context, origin, dest model.Location) (float64, bool)

func (f DistanceFunc) WalkingDistance(ctx context.Context, origin, dest model.Location) (float64, bool) {
	return f(ctx, origin, dest)
}

// PathFunc adapts a plain function to a PathOracle.
type PathFunc func(ctx context.Context, origin, dest model.Location) []model.Location

func (f PathFunc) WalkingPath(ctx context.Context, origin, dest model.Location) []model.Location {
	return f(ctx, origin, dest)
}

// DistanceOrFallback resolves a walking distance, substituting the planar
// approximation when the oracle cannot answer. Never fails.
func DistanceOrFallback(ctx context.Context, d DistanceOracle, origin, dest model.Location) float64 {
	if d != nil {
		if m, ok := d.WalkingDistance(ctx, origin, dest); ok {
			return m
		}
	}
	return geo.PlanarMeters(origin, dest)
}
