package tour

import (
	"math"
	"sort"

	"github.com/gabriellangon/narrando-backend/internal/geo"
	"github.com/gabriellangon/narrando-backend/internal/model"
)

const (
	// elongationRatio classifies a cluster as elongated when its bounding
	// box is this much wider than tall (or vice versa is not considered;
	// the ratio is width over height as walked east-west).
	elongationRatio = 1.6

	// isolationThresholdM excludes points whose nearest in-cluster
	// neighbor is farther than this from start candidacy.
	isolationThresholdM = 3000.0

	// elongatedSliceShare is the share of most centroid-distant candidates
	// considered when anchoring an elongated cluster near one end.
	elongatedSliceShare = 0.2
)

// StartIndex picks the tour's starting point within a cluster.
//
// Elongated clusters anchor in the top slice of centroid-distant points,
// but at the least extreme of that slice so the walk does not begin at a
// far-flung outlier. Compact clusters start at the most central point.
// Isolated points are excluded unless every point is isolated, in which
// case the point farthest from the centroid wins.
func StartIndex(points []model.Point, dist [][]float64) int {
	if len(points) <= 2 {
		return 0
	}

	bound := geo.BoundOf(points)
	width, height := bound.WidthHeightM()
	elongated := width/height >= elongationRatio

	centroid := geo.Centroid(points)
	cosLat := bound.CosMidLat()
	centroidDist := func(i int) float64 {
		return geo.ScaledMeters(points[i].Location, centroid, cosLat)
	}

	var candidates []int
	for i := range points {
		nearest := math.Inf(1)
		for j := range points {
			if i != j && dist[i][j] < nearest {
				nearest = dist[i][j]
			}
		}
		if nearest <= isolationThresholdM {
			candidates = append(candidates, i)
		}
	}

	if len(candidates) == 0 {
		// Everything is isolated; fall back to the most eccentric point.
		best, bestDist := 0, -1.0
		for i := range points {
			if d := centroidDist(i); d > bestDist {
				best, bestDist = i, d
			}
		}
		return best
	}

	if elongated {
		sort.Slice(candidates, func(a, b int) bool {
			return centroidDist(candidates[a]) > centroidDist(candidates[b])
		})
		topK := int(math.Ceil(float64(len(candidates)) * elongatedSliceShare))
		if topK < 1 {
			topK = 1
		}
		slice := candidates[:topK]
		best, bestDist := slice[0], math.Inf(1)
		for _, i := range slice {
			if d := centroidDist(i); d < bestDist {
				best, bestDist = i, d
			}
		}
		return best
	}

	best, bestDist := candidates[0], math.Inf(1)
	for _, i := range candidates {
		if d := centroidDist(i); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
