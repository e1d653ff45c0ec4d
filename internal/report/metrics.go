package report

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts report builds and exports.
type Metrics struct {
	builds   *prometheus.CounterVec
	exports  *prometheus.CounterVec
	duration prometheus.Histogram
	degraded prometheus.Counter
}

// NewMetrics registers report collectors. A nil registerer yields nil, which
// every method tolerates.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		return nil
	}
	builds := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "budgetdesk_report_builds_total",
		Help: "Project report builds partitioned by outcome.",
	}, []string{"outcome"})
	exports := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "budgetdesk_report_exports_total",
		Help: "Rendered report artifacts partitioned by format and outcome.",
	}, []string{"format", "outcome"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "budgetdesk_report_build_duration_seconds",
		Help:    "Time spent loading and composing a project report.",
		Buckets: prometheus.DefBuckets,
	})
	degraded := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "budgetdesk_report_degraded_total",
		Help: "Reports built with at least one soft warning.",
	})
	registerer.MustRegister(builds, exports, duration, degraded)
	return &Metrics{builds: builds, exports: exports, duration: duration, degraded: degraded}
}

func (m *Metrics) observeBuild(start time.Time, warnings int, err error) {
	if m == nil {
		return
	}
	m.builds.WithLabelValues(outcome(err)).Inc()
	m.duration.Observe(time.Since(start).Seconds())
	if err == nil && warnings > 0 {
		m.degraded.Inc()
	}
}

func (m *Metrics) observeExport(format Format, err error) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(string(format), outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
