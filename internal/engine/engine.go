// Package engine orchestrates one planning run: clustering, per-cluster
// tour building, cross-tour merging, deduplication, and result assembly.
// An Engine owns its caches explicitly; there is no module-level state.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gabriellangon/narrando-backend/internal/cluster"
	"github.com/gabriellangon/narrando-backend/internal/geo"
	"github.com/gabriellangon/narrando-backend/internal/merge"
	"github.com/gabriellangon/narrando-backend/internal/metrics"
	"github.com/gabriellangon/narrando-backend/internal/model"
	"github.com/gabriellangon/narrando-backend/internal/oracle"
	"github.com/gabriellangon/narrando-backend/internal/tour"
)

// Config tunes one Engine. Zero values fall back to defaults.
type Config struct {
	// MaxWalkingMinutes is the per-hop threshold for clustering.
	MaxWalkingMinutes int
	// MergeBudgetMinutes is the looser per-hop limit used only while
	// merging tours.
	MergeBudgetMinutes int
	// SplitOversized enables k-means subdivision of clusters larger than
	// OversizeThreshold before tour building. Off by default; the merge
	// engine and 2-opt keep tours manageable on their own.
	SplitOversized bool
	// OversizeThreshold is the cluster size above which subdivision kicks
	// in when SplitOversized is set.
	OversizeThreshold int
}

const (
	defaultMaxWalkingMinutes = 15
	defaultOversizeThreshold = 8
)

func (c Config) withDefaults() Config {
	if c.MaxWalkingMinutes <= 0 {
		c.MaxWalkingMinutes = defaultMaxWalkingMinutes
	}
	if c.MergeBudgetMinutes <= 0 {
		c.MergeBudgetMinutes = merge.DefaultBudgetMinutes
	}
	if c.OversizeThreshold <= 0 {
		c.OversizeThreshold = defaultOversizeThreshold
	}
	return c
}

// Cache is the shared storage behind the distance and path wrappers.
type Cache interface {
	oracle.DistanceCache
	oracle.PathCache
}

// Deps are the injected collaborators. All of them are optional: a nil
// distance provider degrades every lookup to the planar fallback, a nil
// path provider yields straight segments, a nil reorderer skips
// refinement.
type Deps struct {
	Distance oracle.DistanceOracle
	Path     oracle.PathOracle
	Reorder  oracle.WaypointReorderer
	Cache    Cache
	Logger   *zap.Logger
}

// Engine plans walking tours. Construct one per service instance; it is
// safe for concurrent runs, which share only the append-only caches.
type Engine struct {
	cfg      Config
	distance *oracle.CachingDistance
	paths    *oracle.PathAdapter
	reorder  oracle.WaypointReorderer
	log      *zap.Logger
}

func New(cfg Config, deps Deps) *Engine {
	cache := deps.Cache
	if cache == nil {
		cache = oracle.NewMapCache()
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		cfg:      cfg.withDefaults(),
		distance: oracle.NewCachingDistance(deps.Distance, cache),
		paths:    oracle.NewPathAdapter(deps.Path, cache),
		reorder:  deps.Reorder,
		log:      log,
	}
}

// Plan groups the points into coherent tours and orders each tour's stops.
// maxWalkingMinutes overrides the configured clustering threshold when
// positive. The only error a caller can see is an invariant violation,
// which signals malformed input; everything else degrades gracefully.
func (e *Engine) Plan(ctx context.Context, points []model.Point, maxWalkingMinutes int) (*model.PlanningResult, error) {
	started := time.Now()
	if maxWalkingMinutes <= 0 {
		maxWalkingMinutes = e.cfg.MaxWalkingMinutes
	}
	metrics.PlanPoints.Observe(float64(len(points)))

	if len(points) == 0 {
		return &model.PlanningResult{MaxWalkingMinutes: maxWalkingMinutes}, nil
	}

	e.log.Info("planning run started",
		zap.Int("points", len(points)),
		zap.Int("max_walking_minutes", maxWalkingMinutes))

	maxDistM := geo.WalkingDistanceM(maxWalkingMinutes)
	clusters := cluster.Components(ctx, points, e.distance, maxDistM, e.log)
	if e.cfg.SplitOversized {
		var split [][]model.Point
		for _, c := range clusters {
			split = append(split, cluster.Split(c, e.cfg.OversizeThreshold)...)
		}
		clusters = split
	}
	e.log.Info("clustering complete", zap.Int("clusters", len(clusters)))

	tours := make([]model.Tour, 0, len(clusters))
	for i, c := range clusters {
		t := model.Tour{
			ID:     uuid.New().String(),
			Name:   fmt.Sprintf("Tour %d", i+1),
			Points: tour.Build(ctx, c, e.distance, e.reorder, e.log),
		}
		t.RecomputeStats()
		tours = append(tours, t)
	}
	initialCount := len(tours)

	tours = merge.Run(ctx, tours, e.distance, e.reorder, e.cfg.MergeBudgetMinutes, e.log)
	e.log.Info("merge complete",
		zap.Int("initial_tours", initialCount),
		zap.Int("final_tours", len(tours)))

	tours = e.Deduplicate(ctx, tours)
	if err := CheckInvariants(tours); err != nil {
		return nil, err
	}

	result := e.assemble(ctx, tours, len(clusters), initialCount, maxWalkingMinutes)
	result.ProcessingSeconds = time.Since(started).Seconds()
	metrics.PlanDuration.Observe(result.ProcessingSeconds)

	e.log.Info("planning run finished",
		zap.Int("tours", len(result.Tours)),
		zap.Float64("total_distance_m", result.TotalDistanceM),
		zap.Int("total_time_min", result.TotalTimeMin),
		zap.Float64("seconds", result.ProcessingSeconds))
	return result, nil
}

// MaterializePaths fills in walking-path geometry for every consecutive
// stop pair of the tour.
func (e *Engine) MaterializePaths(ctx context.Context, t *model.Tour) {
	if len(t.Points) < 2 {
		t.Paths = nil
		return
	}
	t.Paths = make([]model.PathSegment, 0, len(t.Points)-1)
	for i := 1; i < len(t.Points); i++ {
		from := t.Points[i-1].Point
		to := t.Points[i].Point
		t.Paths = append(t.Paths, model.PathSegment{
			From:        from.ID,
			To:          to.ID,
			Coordinates: e.paths.Materialize(ctx, from.Location, to.Location),
		})
	}
}

// assemble assigns dense global positions, materializes path geometry,
// computes run-level aggregates, and derives the tour variants.
func (e *Engine) assemble(ctx context.Context, tours []model.Tour, clusters, initial, maxWalkingMinutes int) *model.PlanningResult {
	result := &model.PlanningResult{
		Tours:             tours,
		ClustersCount:     clusters,
		InitialToursCount: initial,
		FinalToursCount:   len(tours),
		MaxWalkingMinutes: maxWalkingMinutes,
	}

	global := 0
	for ti := range result.Tours {
		t := &result.Tours[ti]
		for pi := range t.Points {
			t.Points[pi].Position = pi
			t.Points[pi].GlobalPosition = global
			global++
		}
		t.RecomputeStats()
		e.MaterializePaths(ctx, t)
		result.TotalDistanceM += t.Stats.TotalDistanceM
		result.TotalTimeMin += t.Stats.TotalTimeMin
		result.PointCount += t.Stats.PointCount
	}
	result.Variants = BuildVariants(result.Tours)
	return result
}
