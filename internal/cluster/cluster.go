// Package cluster groups points of interest into walkable groups: a
// thresholded adjacency relation over oracle walking distances, with
// connected components as the initial clusters.
package cluster

import (
	"context"

	"go.uber.org/zap"

	"github.com/gabriellangon/narrando-backend/internal/model"
	"github.com/gabriellangon/narrando-backend/internal/oracle"
)

// Matrix computes the symmetric pairwise walking-distance matrix for a
// point set, substituting the planar fallback on oracle misses.
func Matrix(ctx context.Context, points []model.Point, d oracle.DistanceOracle) [][]float64 {
	n := len(points)
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dist := oracle.DistanceOrFallback(ctx, d, points[i].Location, points[j].Location)
			m[i][j] = dist
			m[j][i] = dist
		}
	}
	return m
}

// Components extracts connected components under the maxDistM threshold.
// Two points or fewer always form one cluster: orphaned pairs must survive
// until the merge stage has a chance to act, and a lone point is its own
// trivial tour.
func Components(ctx context.Context, points []model.Point, d oracle.DistanceOracle, maxDistM float64, log *zap.Logger) [][]model.Point {
	if log == nil {
		log = zap.NewNop()
	}
	n := len(points)
	if n == 0 {
		return nil
	}
	if n <= 2 {
		return [][]model.Point{points}
	}

	dist := Matrix(ctx, points, d)

	adj := make([][]bool, n)
	for i := range adj {
		adj[i] = make([]bool, n)
		for j := range adj[i] {
			adj[i][j] = i == j || dist[i][j] <= maxDistM
		}
	}

	visited := make([]bool, n)
	var clusters [][]model.Point
	for i := 0; i < n; i++ {
		if visited[i] {
			continue
		}
		var idxs []int
		stack := []int{i}
		visited[i] = true
		for len(stack) > 0 {
			node := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			idxs = append(idxs, node)
			for nb := 0; nb < n; nb++ {
				if adj[node][nb] && !visited[nb] {
					visited[nb] = true
					stack = append(stack, nb)
				}
			}
		}
		group := make([]model.Point, len(idxs))
		for k, idx := range idxs {
			group[k] = points[idx]
		}
		clusters = append(clusters, group)
	}

	log.Debug("clustering done",
		zap.Int("points", n),
		zap.Int("clusters", len(clusters)),
		zap.Float64("max_distance_m", maxDistM))
	return clusters
}
