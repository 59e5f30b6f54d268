package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// AnalysesTotal counts hybrid analyses by outcome.
	AnalysesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "billboard",
		Subsystem: "analyzer",
		Name:      "analyses_total",
		Help:      "Total number of hybrid analyses, labeled by result.",
	}, []string{"result"})

	// AnalyzerFailuresTotal counts sub-analyzer failures by analyzer name.
	AnalyzerFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "billboard",
		Subsystem: "analyzer",
		Name:      "failures_total",
		Help:      "Total number of sub-analyzer failures, labeled by analyzer.",
	}, []string{"analyzer"})

	// AnalysisDurationSeconds is the end-to-end time of a successful
	// hybrid analysis including persistence.
	AnalysisDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "billboard",
		Subsystem: "analyzer",
		Name:      "analysis_duration_seconds",
		Help:      "End-to-end time to run a hybrid analysis and persist the report.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 60, 120},
	})
)

// Register registers analyzer metrics with the default Prometheus
// registry. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			AnalysesTotal,
			AnalyzerFailuresTotal,
			AnalysisDurationSeconds,
		)
	})
}
