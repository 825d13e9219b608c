package engine

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/gabriellangon/narrando-backend/internal/geo"
	"github.com/gabriellangon/narrando-backend/internal/model"
	"github.com/gabriellangon/narrando-backend/internal/tour"
)

// InvariantError reports a duplicate identifier or coincident coordinates
// surviving into the final result. It signals malformed input, not an
// engine bug, and aborts the run.
type InvariantError struct {
	PlaceID string
	Tours   []string
	Detail  string
}

func (e *InvariantError) Error() string {
	if e.PlaceID != "" {
		return fmt.Sprintf("planning invariant violated for %s (%v): %s", e.PlaceID, e.Tours, e.Detail)
	}
	return "planning invariant violated: " + e.Detail
}

// Deduplicate removes cross-tour duplicate points. Tours with more stops
// win: they are scanned first, and the first occurrence of each identifier
// is kept. A tour trimmed to nothing is dropped; a tour trimmed to
// multiple stops is re-ordered and its statistics recomputed.
func (e *Engine) Deduplicate(ctx context.Context, tours []model.Tour) []model.Tour {
	if len(tours) == 0 {
		return tours
	}

	order := make([]int, len(tours))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return len(tours[order[a]].Points) > len(tours[order[b]].Points)
	})

	seen := make(map[string]bool)
	removed := 0
	for _, idx := range order {
		t := &tours[idx]
		kept := t.Points[:0:0]
		for _, p := range t.Points {
			if p.Point.ID != "" && seen[p.Point.ID] {
				removed++
				continue
			}
			if p.Point.ID != "" {
				seen[p.Point.ID] = true
			}
			kept = append(kept, p)
		}
		if len(kept) == len(t.Points) {
			continue
		}
		if len(kept) > 1 {
			reordered := tour.Reorder(ctx, flattenStops(kept), e.distance)
			t.Points = tour.Annotate(ctx, reordered, e.distance)
		} else {
			// Re-annotate so a surviving lone stop no longer carries the
			// hop from its removed predecessor.
			t.Points = tour.Annotate(ctx, flattenStops(kept), e.distance)
		}
		t.RecomputeStats()
	}

	out := tours[:0:0]
	for _, t := range tours {
		if len(t.Points) > 0 {
			out = append(out, t)
		}
	}
	if removed > 0 || len(out) != len(tours) {
		e.log.Info("cross-tour duplicates removed",
			zap.Int("points_removed", removed),
			zap.Int("tours_dropped", len(tours)-len(out)))
	}
	return out
}

// CheckInvariants asserts global uniqueness over the final result: every
// stop has an identifier, no identifier appears in two tours, and no two
// stops anywhere share coordinates at 7-decimal precision.
func CheckInvariants(tours []model.Tour) error {
	seenIDs := make(map[string]string)    // place id -> tour name
	seenCoords := make(map[string]string) // coord key -> "name (tour)"

	for _, t := range tours {
		label := t.Name
		if label == "" {
			label = t.ID
		}
		for _, p := range t.Points {
			if p.Point.ID == "" {
				return &InvariantError{Tours: []string{label}, Detail: fmt.Sprintf("stop %q has no identifier", p.Point.Name)}
			}
			if other, dup := seenIDs[p.Point.ID]; dup {
				return &InvariantError{
					PlaceID: p.Point.ID,
					Tours:   []string{other, label},
					Detail:  fmt.Sprintf("stop %q appears in more than one tour", p.Point.Name),
				}
			}
			seenIDs[p.Point.ID] = label

			key := geo.CoordKey(p.Point.Location)
			if other, dup := seenCoords[key]; dup {
				return &InvariantError{
					PlaceID: p.Point.ID,
					Tours:   []string{label},
					Detail:  fmt.Sprintf("stop %q shares coordinates %s with %s", p.Point.Name, key, other),
				}
			}
			seenCoords[key] = fmt.Sprintf("%s (%s)", p.Point.Name, label)
		}
	}
	return nil
}

func flattenStops(stops []model.TourPoint) []model.Point {
	out := make([]model.Point, len(stops))
	for i, s := range stops {
		out[i] = s.Point
	}
	return out
}
