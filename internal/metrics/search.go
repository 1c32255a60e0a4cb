package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search and import Prometheus metrics.
var (
	SearchRecomputationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "search_recomputations_total",
			Help:      "Result set recomputations applied to sessions",
		},
		[]string{"screen"},
	)

	SearchDebounceSupersededTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "search_debounce_superseded_total",
			Help:      "Pending recomputations replaced by a newer input before firing",
		},
		[]string{"screen"},
	)

	SearchResultSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "search_result_size",
			Help:      "Number of records in a computed result set",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"screen"},
	)

	SearchSessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "search_sessions_active",
			Help:      "Mounted search sessions",
		},
	)

	ImportRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "import_records_total",
			Help:      "Imported records by outcome",
		},
		[]string{"status"}, // "ok" / "invalid" / "error"
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers search and import metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRecomputationsTotal)
	prometheus.MustRegister(SearchDebounceSupersededTotal)
	prometheus.MustRegister(SearchResultSize)
	prometheus.MustRegister(SearchSessionsActive)
	prometheus.MustRegister(ImportRecordsTotal)
	searchMetricsRegistered = true
}

// Search feeds session, one-shot search and import events into the
// package-level collectors.
type Search struct{}

// Recomputed records a result set applied to a session.
func (Search) Recomputed(screenName string, size int) {
	SearchRecomputationsTotal.WithLabelValues(screenName).Inc()
	SearchResultSize.WithLabelValues(screenName).Observe(float64(size))
}

// Superseded records a pending recomputation replaced before firing.
func (Search) Superseded(screenName string) {
	SearchDebounceSupersededTotal.WithLabelValues(screenName).Inc()
}

// SessionsActive sets the mounted session gauge.
func (Search) SessionsActive(n int) {
	SearchSessionsActive.Set(float64(n))
}

// ObserveResult records the size of a one-shot search result.
func (Search) ObserveResult(screenName string, size int) {
	SearchResultSize.WithLabelValues(screenName).Observe(float64(size))
}

// Imported adds n records to the given outcome.
func (Search) Imported(status string, n int) {
	if n > 0 {
		ImportRecordsTotal.WithLabelValues(status).Add(float64(n))
	}
}
