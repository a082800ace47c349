package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search Prometheus metrics.
var (
	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "logsift",
			Name:      "searches_total",
			Help:      "Total number of search operations",
		},
		[]string{"kind", "status"},
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "logsift",
			Name:      "search_duration_seconds",
			Help:      "Search operation duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"kind"},
	)

	SearchMatchedDiagnostics = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "logsift",
			Name:      "search_matched_diagnostics_total",
			Help:      "Total diagnostics that produced at least one matched line",
		},
	)

	SearchMatchedLines = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "logsift",
			Name:      "search_matched_lines_total",
			Help:      "Total matched lines returned by searches",
		},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchesTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(SearchMatchedDiagnostics)
	prometheus.MustRegister(SearchMatchedLines)
	searchMetricsRegistered = true
}
