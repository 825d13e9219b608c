// Package merge repairs fragmentation left by independent per-cluster tour
// building. Tours whose closest stops are within a relaxed walking budget
// are fused greedily, best pair first, until no candidate qualifies.
package merge

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/gabriellangon/narrando-backend/internal/cluster"
	"github.com/gabriellangon/narrando-backend/internal/geo"
	"github.com/gabriellangon/narrando-backend/internal/metrics"
	"github.com/gabriellangon/narrando-backend/internal/model"
	"github.com/gabriellangon/narrando-backend/internal/oracle"
	"github.com/gabriellangon/narrando-backend/internal/tour"
)

// DefaultBudgetMinutes is the per-hop walking budget for fusing two tours.
// Intentionally looser than the clustering threshold to catch near-misses
// the clustering step split apart.
const DefaultBudgetMinutes = 18

// quickTwoOptIterations bounds the re-optimization pass over a fused
// sequence; the full budget is unnecessary right after a splice.
const quickTwoOptIterations = 10

// Topology names how two tours stitch together at their best connection.
type Topology string

const (
	EndToStart         Topology = "end_to_start"
	EndToStartReversed Topology = "end_to_start_reversed"
	StartToStart       Topology = "start_to_start"
	EndToEnd           Topology = "end_to_end"
	Middle             Topology = "middle"
)

// connection is one point-to-point link between two tours.
type connection struct {
	aIdx, bIdx     int
	distanceM      float64
	walkingMinutes int
	topology       Topology
}

type candidate struct {
	a, b int // tour indices
	conn connection
}

// Run fuses tours iteratively. Each iteration scans every unordered tour
// pair, keeps each pair's minimum-time connection, and merges the single
// globally best candidate within budget. Greedy, not globally optimal;
// terminates because every accepted merge reduces the tour count.
func Run(ctx context.Context, tours []model.Tour, d oracle.DistanceOracle, reorder oracle.WaypointReorderer, budgetMinutes int, log *zap.Logger) []model.Tour {
	if log == nil {
		log = zap.NewNop()
	}
	if budgetMinutes <= 0 {
		budgetMinutes = DefaultBudgetMinutes
	}
	current := append([]model.Tour(nil), tours...)

	for len(current) > 1 {
		best := bestCandidate(ctx, current, d, budgetMinutes)
		if best == nil {
			break
		}
		merged := fuse(ctx, current[best.a], current[best.b], best.conn, d, reorder)
		metrics.ToursMerged.WithLabelValues(string(best.conn.topology)).Inc()
		log.Debug("merged tours",
			zap.String("topology", string(best.conn.topology)),
			zap.Int("walking_minutes", best.conn.walkingMinutes),
			zap.Int("remaining", len(current)-1))

		next := current[:0:0]
		for idx, t := range current {
			if idx != best.a && idx != best.b {
				next = append(next, t)
			}
		}
		current = append(next, merged)
	}
	return current
}

func bestCandidate(ctx context.Context, tours []model.Tour, d oracle.DistanceOracle, budgetMinutes int) *candidate {
	var best *candidate
	for i := 0; i < len(tours); i++ {
		for j := i + 1; j < len(tours); j++ {
			conn, ok := bestConnection(ctx, tours[i], tours[j], d)
			if !ok || conn.walkingMinutes > budgetMinutes {
				continue
			}
			if best == nil || conn.walkingMinutes < best.conn.walkingMinutes {
				best = &candidate{a: i, b: j, conn: conn}
			}
		}
	}
	return best
}

// bestConnection enumerates every stop of a against every stop of b and
// keeps the minimum-time link.
func bestConnection(ctx context.Context, a, b model.Tour, d oracle.DistanceOracle) (connection, bool) {
	if len(a.Points) == 0 || len(b.Points) == 0 {
		return connection{}, false
	}
	var best connection
	found := false
	for i, pa := range a.Points {
		for j, pb := range b.Points {
			dist := oracle.DistanceOrFallback(ctx, d, pa.Point.Location, pb.Point.Location)
			if !found || dist < best.distanceM {
				best = connection{
					aIdx:           i,
					bIdx:           j,
					distanceM:      dist,
					walkingMinutes: geo.WalkingMinutes(dist),
					topology:       classify(i, j, len(a.Points), len(b.Points)),
				}
				found = true
			}
		}
	}
	return best, found
}

func classify(aIdx, bIdx, aLen, bLen int) Topology {
	aStart, aEnd := aIdx == 0, aIdx == aLen-1
	bStart, bEnd := bIdx == 0, bIdx == bLen-1
	switch {
	case aEnd && bStart:
		return EndToStart
	case bEnd && aStart:
		return EndToStartReversed
	case aStart && bStart:
		return StartToStart
	case aEnd && bEnd:
		return EndToEnd
	default:
		return Middle
	}
}

// fuse concatenates the two point sequences per the connection's topology,
// recomputes hop distances, and re-optimizes the spliced sequence.
func fuse(ctx context.Context, a, b model.Tour, conn connection, d oracle.DistanceOracle, reorder oracle.WaypointReorderer) model.Tour {
	pa := flatten(a.Points)
	pb := flatten(b.Points)

	var merged []model.Point
	switch conn.topology {
	case EndToStart:
		merged = append(pa, pb...)
	case EndToStartReversed:
		merged = append(pb, pa...)
	case StartToStart:
		merged = append(reversed(pa), pb...)
	case EndToEnd:
		merged = append(pa, reversed(pb)...)
	default: // Middle: splice b in right after a's connection point
		merged = make([]model.Point, 0, len(pa)+len(pb))
		merged = append(merged, pa[:conn.aIdx+1]...)
		merged = append(merged, pb...)
		merged = append(merged, pa[conn.aIdx+1:]...)
	}

	if len(merged) > 3 {
		dist := cluster.Matrix(ctx, merged, d)
		order := make([]int, len(merged))
		for i := range order {
			order[i] = i
		}
		order = tour.TwoOpt(order, dist, quickTwoOptIterations)
		reordered := make([]model.Point, len(order))
		for i, idx := range order {
			reordered[i] = merged[idx]
		}
		merged = reordered
	}

	if reorder != nil && len(merged) >= tour.RefineMinPoints && len(merged) <= tour.RefineMaxPoints {
		if refined, ok := reorder.Reorder(ctx, merged); ok && tour.ValidRefinement(merged, refined) {
			merged = refined
		}
	}

	out := model.Tour{
		ID:     a.ID,
		Name:   mergedName(a.Name, b.Name),
		Points: tour.Annotate(ctx, merged, d),
	}
	out.RecomputeStats()
	return out
}

func flatten(stops []model.TourPoint) []model.Point {
	out := make([]model.Point, len(stops))
	for i, s := range stops {
		out[i] = s.Point
	}
	return out
}

func reversed(points []model.Point) []model.Point {
	out := make([]model.Point, len(points))
	for i, p := range points {
		out[len(points)-1-i] = p
	}
	return out
}

func mergedName(a, b string) string {
	return "Tour " + strings.TrimPrefix(a, "Tour ") + "+" + strings.TrimPrefix(b, "Tour ")
}
