// Package tour orders the points of one cluster into a walkable visiting
// sequence: elongation-aware start selection, nearest-neighbor
// construction, and bounded 2-opt local search, with an optional external
// waypoint-reorder refinement for mid-sized tours.
package tour

import (
	"context"

	"go.uber.org/zap"

	"github.com/gabriellangon/narrando-backend/internal/cluster"
	"github.com/gabriellangon/narrando-backend/internal/geo"
	"github.com/gabriellangon/narrando-backend/internal/model"
	"github.com/gabriellangon/narrando-backend/internal/oracle"
)

const (
	// TwoOptMaxIterations bounds the full local-search pass.
	TwoOptMaxIterations = 50

	// Refinement is attempted only for tours of this size range; smaller
	// tours gain nothing, larger ones exceed the provider's waypoint cap.
	RefineMinPoints = 11
	RefineMaxPoints = 25
)

// Build orders one cluster into tour stops. The reorderer is optional and
// best-effort: a declined or invalid refinement keeps the local ordering.
func Build(ctx context.Context, points []model.Point, d oracle.DistanceOracle, reorder oracle.WaypointReorderer, log *zap.Logger) []model.TourPoint {
	if log == nil {
		log = zap.NewNop()
	}
	if len(points) == 0 {
		return nil
	}
	if len(points) == 1 {
		return Annotate(ctx, points, d)
	}

	dist := cluster.Matrix(ctx, points, d)
	start := StartIndex(points, dist)
	order := NearestNeighborOrder(dist, start)
	order = TwoOpt(order, dist, TwoOptMaxIterations)

	ordered := make([]model.Point, len(order))
	for i, idx := range order {
		ordered[i] = points[idx]
	}

	if reorder != nil && len(ordered) >= RefineMinPoints && len(ordered) <= RefineMaxPoints {
		if refined, ok := reorder.Reorder(ctx, ordered); ok && ValidRefinement(ordered, refined) {
			log.Debug("adopted external waypoint reordering", zap.Int("points", len(refined)))
			ordered = refined
		}
	}

	return Annotate(ctx, ordered, d)
}

// Reorder runs nearest-neighbor plus 2-opt over an already-flattened point
// list, starting from its first point. Used when re-optimizing fused or
// trimmed tours.
func Reorder(ctx context.Context, points []model.Point, d oracle.DistanceOracle) []model.Point {
	if len(points) <= 2 {
		return points
	}
	dist := cluster.Matrix(ctx, points, d)
	order := NearestNeighborOrder(dist, 0)
	order = TwoOpt(order, dist, TwoOptMaxIterations)
	out := make([]model.Point, len(order))
	for i, idx := range order {
		out[i] = points[idx]
	}
	return out
}

// Annotate turns an ordered point sequence into tour stops carrying
// distance and walking time from each immediate predecessor. The first
// stop always carries zero. Global positions are assigned later, once the
// whole result is known.
func Annotate(ctx context.Context, ordered []model.Point, d oracle.DistanceOracle) []model.TourPoint {
	stops := make([]model.TourPoint, len(ordered))
	for i, p := range ordered {
		tp := model.TourPoint{Point: p, Position: i}
		if i > 0 {
			dist := oracle.DistanceOrFallback(ctx, d, ordered[i-1].Location, p.Location)
			tp.DistFromPrevM = dist
			tp.TimeFromPrevMin = geo.WalkingMinutes(dist)
		}
		stops[i] = tp
	}
	return stops
}

// ValidRefinement accepts a refinement only when it is a permutation of
// the input with both anchors intact.
func ValidRefinement(orig, refined []model.Point) bool {
	if len(refined) != len(orig) || len(orig) == 0 {
		return false
	}
	if refined[0].ID != orig[0].ID || refined[len(refined)-1].ID != orig[len(orig)-1].ID {
		return false
	}
	seen := make(map[string]int, len(orig))
	for _, p := range orig {
		seen[p.ID]++
	}
	for _, p := range refined {
		seen[p.ID]--
		if seen[p.ID] < 0 {
			return false
		}
	}
	return true
}
