package jobmetrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors for background jobs.
type Metrics struct {
	runs           *prometheus.CounterVec
	failures       *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	overdueCount   *prometheus.GaugeVec
	overdueAmount  *prometheus.GaugeVec
	overdueScanned prometheus.Gauge
	lastSuccess    prometheus.Gauge
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// NewMetrics registers the job metrics against the provided registerer. When the
// registerer is nil the default Prometheus registerer is used.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		defaultOnce.Do(func() {
			defaultMetrics = buildMetrics(prometheus.DefaultRegisterer)
		})
		return defaultMetrics
	}
	return buildMetrics(registerer)
}

// Tracker provides lifecycle instrumentation helpers for a single job run.
type Tracker struct {
	metrics *Metrics
	job     string
	start   time.Time
}

// Track spawns a tracker for the given job name.
func (m *Metrics) Track(job string) *Tracker {
	if m == nil {
		return &Tracker{job: job, start: time.Now()}
	}
	return &Tracker{metrics: m, job: job, start: time.Now()}
}

// End finalises the tracker, recording duration, success/failure counts and
// returning the provided error untouched.
func (t *Tracker) End(err error) error {
	if t == nil || t.metrics == nil || t.job == "" {
		return err
	}
	status := "success"
	if err != nil {
		status = "failure"
		t.metrics.failures.WithLabelValues(t.job).Inc()
	}
	t.metrics.runs.WithLabelValues(t.job, status).Inc()
	t.metrics.duration.WithLabelValues(t.job).Observe(time.Since(t.start).Seconds())
	return err
}

// OverdueSample is the overdue state of one project at scan time.
type OverdueSample struct {
	ProjectID string
	Count     int
	Amount    float64
}

// RecordOverdueScan replaces the per-project overdue gauges with samples.
// Projects absent from samples are dropped from the series.
func (m *Metrics) RecordOverdueScan(samples []OverdueSample, at time.Time) {
	if m == nil {
		return
	}
	m.overdueCount.Reset()
	m.overdueAmount.Reset()
	for _, s := range samples {
		m.overdueCount.WithLabelValues(s.ProjectID).Set(float64(s.Count))
		m.overdueAmount.WithLabelValues(s.ProjectID).Set(s.Amount)
	}
	m.overdueScanned.Set(float64(len(samples)))
	m.lastSuccess.Set(float64(at.Unix()))
}

func buildMetrics(registerer prometheus.Registerer) *Metrics {
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "budgetdesk_jobs_total",
		Help: "Total job executions partitioned by job name and status.",
	}, []string{"job", "status"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "budgetdesk_jobs_failures_total",
		Help: "Total failures observed for background jobs.",
	}, []string{"job"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "budgetdesk_job_duration_seconds",
		Help:    "Duration in seconds of background job executions.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
	overdueCount := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "budgetdesk_overdue_invoices",
		Help: "Overdue invoices per project as of the last scan.",
	}, []string{"project"})
	overdueAmount := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "budgetdesk_overdue_invoice_amount",
		Help: "Sum of overdue invoice amounts per project as of the last scan.",
	}, []string{"project"})
	scanned := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "budgetdesk_overdue_scan_projects",
		Help: "Projects covered by the last overdue scan.",
	})
	lastSuccess := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "budgetdesk_overdue_scan_last_success_timestamp_seconds",
		Help: "Unix time of the last successful overdue scan.",
	})
	registerer.MustRegister(runs, failures, duration, overdueCount, overdueAmount, scanned, lastSuccess)
	return &Metrics{
		runs:           runs,
		failures:       failures,
		duration:       duration,
		overdueCount:   overdueCount,
		overdueAmount:  overdueAmount,
		overdueScanned: scanned,
		lastSuccess:    lastSuccess,
	}
}
