package metrics

import "github.com/prometheus/client_golang/prometheus"

// Target solver Prometheus metrics.
var (
	TargetComputationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hoverpoint",
			Name:      "target_computations_total",
			Help:      "Total number of hover target computations",
		},
		[]string{"status"}, // "ok" / "error"
	)

	TargetComputationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "hoverpoint",
			Name:      "target_computation_duration_seconds",
			Help:      "Hover target computation duration in seconds",
			Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		},
	)

	TargetErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hoverpoint",
			Name:      "target_errors_total",
			Help:      "Total hover target errors by kind",
		},
		[]string{"kind"},
	)

	TargetCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hoverpoint",
			Name:      "target_cache_total",
			Help:      "Target solution cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss" / "error"
	)

	MissionArchivesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hoverpoint",
			Name:      "mission_archives_total",
			Help:      "Total number of rendered KMZ mission archives",
		},
		[]string{"status"},
	)
)

var targetMetricsRegistered bool

// RegisterTargetMetrics registers Prometheus solver, cache and mission metrics. Must be called once from main.
func RegisterTargetMetrics() {
	if targetMetricsRegistered {
		return
	}
	prometheus.MustRegister(TargetComputationsTotal)
	prometheus.MustRegister(TargetComputationDuration)
	prometheus.MustRegister(TargetErrorsTotal)
	prometheus.MustRegister(TargetCacheTotal)
	prometheus.MustRegister(MissionArchivesTotal)
	targetMetricsRegistered = true
}
