package cluster

import (
	"math"
	"math/rand"

	"github.com/gabriellangon/narrando-backend/internal/model"
)

const (
	kmeansSeed          = 42
	kmeansMaxIterations = 10
	kmeansMaxSubgroups  = 3
)

// Split subdivides an oversized cluster by coordinate k-means (k ≤ 3,
// Lloyd's loop, deterministic seed). Clusters at or under maxSize are
// returned unchanged, as are clusters too small to yield two subgroups of
// five. Not invoked by the primary pipeline; callers opt in through the
// engine's SplitOversized flag.
func Split(points []model.Point, maxSize int) [][]model.Point {
	if maxSize <= 0 || len(points) <= maxSize {
		return [][]model.Point{points}
	}
	k := len(points) / 5
	if k > kmeansMaxSubgroups {
		k = kmeansMaxSubgroups
	}
	if k < 2 {
		return [][]model.Point{points}
	}
	return kmeans(points, k)
}

func kmeans(points []model.Point, k int) [][]model.Point {
	if k >= len(points) {
		out := make([][]model.Point, 0, len(points))
		for _, p := range points {
			out = append(out, []model.Point{p})
		}
		return out
	}

	rng := rand.New(rand.NewSource(kmeansSeed))
	centroids := make([]model.Location, 0, k)
	for _, idx := range rng.Perm(len(points))[:k] {
		centroids = append(centroids, points[idx].Location)
	}

	assignments := make([]int, len(points))
	for iter := 0; iter < kmeansMaxIterations; iter++ {
		for i, p := range points {
			best, bestDist := 0, math.Inf(1)
			for c, centroid := range centroids {
				d := sqDegrees(p.Location, centroid)
				if d < bestDist {
					bestDist = d
					best = c
				}
			}
			assignments[i] = best
		}

		converged := true
		for c := range centroids {
			var lat, lng float64
			var count int
			for i, a := range assignments {
				if a == c {
					lat += points[i].Location.Lat
					lng += points[i].Location.Lng
					count++
				}
			}
			if count == 0 {
				continue // keep the old centroid when nothing was assigned
			}
			next := model.Location{Lat: lat / float64(count), Lng: lng / float64(count)}
			if math.Sqrt(sqDegrees(centroids[c], next)) > 1e-4 {
				converged = false
			}
			centroids[c] = next
		}
		if converged {
			break
		}
	}

	groups := make([][]model.Point, k)
	for i, a := range assignments {
		groups[a] = append(groups[a], points[i])
	}
	out := groups[:0]
	for _, g := range groups {
		if len(g) > 0 {
			out = append(out, g)
		}
	}
	return out
}

func sqDegrees(a, b model.Location) float64 {
	dLat := a.Lat - b.Lat
	dLng := a.Lng - b.Lng
	return dLat*dLat + dLng*dLng
}
