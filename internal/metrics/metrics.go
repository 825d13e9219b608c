package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the planner.
	Registry = prometheus.NewRegistry()

	// OracleCalls counts external provider calls by kind and outcome.
	OracleCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "oracle_calls_total", Help: "External oracle calls by kind and outcome."},
		[]string{"kind", "outcome"},
	)
	// CacheLookups counts distance/path cache lookups by result.
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "oracle_cache_lookups_total", Help: "Oracle cache lookups by kind and result."},
		[]string{"kind", "result"},
	)
	// ToursMerged counts accepted tour merges by topology.
	ToursMerged = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "tours_merged_total", Help: "Accepted tour merges by connection topology."},
		[]string{"topology"},
	)
	// PlanDuration records full planning-run durations in seconds.
	PlanDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "plan_duration_seconds", Help: "Planning run duration in seconds.", Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}},
	)
	// PlanPoints records input sizes per planning run.
	PlanPoints = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "plan_input_points", Help: "Points per planning run.", Buckets: []float64{1, 5, 10, 20, 40, 80, 160}},
	)
)

// RegisterDefault registers collectors to the planner registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(OracleCalls)
		Registry.MustRegister(CacheLookups)
		Registry.MustRegister(ToursMerged)
		Registry.MustRegister(PlanDuration)
		Registry.MustRegister(PlanPoints)
		// Go/process collectors on our registry
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once
