package tour

// Nearest-neighbor construction and 2-opt local search over a pairwise
// distance matrix.

// NearestNeighborOrder walks greedily from start, always visiting the
// closest unvisited point.
func NearestNeighborOrder(dist [][]float64, start int) []int {
	n := len(dist)
	order := make([]int, 0, n)
	visited := make([]bool, n)
	current := start
	order = append(order, current)
	visited[current] = true

	for len(order) < n {
		next, best := -1, 0.0
		for j := 0; j < n; j++ {
			if visited[j] {
				continue
			}
			if next == -1 || dist[current][j] < best {
				next = j
				best = dist[current][j]
			}
		}
		order = append(order, next)
		visited[next] = true
		current = next
	}
	return order
}

// TwoOpt repeatedly reverses sub-segments and keeps a reversal when it
// strictly shortens the path. Bounded by maxIterations so pathological
// inputs terminate. The result is never longer than the input order.
func TwoOpt(order []int, dist [][]float64, maxIterations int) []int {
	if maxIterations <= 0 {
		maxIterations = 1
	}
	best := append([]int(nil), order...)
	bestDist := PathDistance(best, dist)

	improved := true
	for it := 0; improved && it < maxIterations; it++ {
		improved = false
		for i := 1; i < len(best)-2; i++ {
			for j := i + 1; j < len(best); j++ {
				if j-i == 1 {
					continue
				}
				cand := twoOptSwap(best, i, j)
				if d := PathDistance(cand, dist); d < bestDist {
					best = cand
					bestDist = d
					improved = true
				}
			}
		}
	}
	return best
}

// twoOptSwap reverses order[i:j] into a fresh slice.
func twoOptSwap(order []int, i, j int) []int {
	out := make([]int, len(order))
	copy(out, order[:i])
	pos := i
	for k := j - 1; k >= i; k-- {
		out[pos] = order[k]
		pos++
	}
	copy(out[pos:], order[j:])
	return out
}

// PathDistance sums consecutive hop distances for an open path.
func PathDistance(order []int, dist [][]float64) float64 {
	total := 0.0
	for i := 0; i < len(order)-1; i++ {
		total += dist[order[i]][order[i+1]]
	}
	return total
}
