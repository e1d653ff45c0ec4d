package jobmetrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func gather(t *testing.T, reg *prometheus.Registry) map[string]*dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	out := make(map[string]*dto.MetricFamily, len(families))
	for _, f := range families {
		out[f.GetName()] = f
	}
	return out
}

func TestTrackerRecordsOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	require.NoError(t, m.Track("invoices:overdue-scan").End(nil))
	boom := errors.New("boom")
	require.ErrorIs(t, m.Track("invoices:overdue-scan").End(boom), boom)

	families := gather(t, reg)
	require.Len(t, families["budgetdesk_jobs_total"].GetMetric(), 2)
	require.Equal(t, float64(1), families["budgetdesk_jobs_failures_total"].GetMetric()[0].GetCounter().GetValue())
}

func TestRecordOverdueScanReplacesSeries(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	at := time.Date(2024, 6, 15, 6, 0, 0, 0, time.UTC)

	m.RecordOverdueScan([]OverdueSample{{ProjectID: "p1", Count: 2, Amount: 1500}, {ProjectID: "p2", Count: 1, Amount: 10}}, at)
	m.RecordOverdueScan([]OverdueSample{{ProjectID: "p1", Count: 1, Amount: 500}}, at)

	families := gather(t, reg)
	series := families["budgetdesk_overdue_invoices"].GetMetric()
	require.Len(t, series, 1)
	require.Equal(t, float64(1), series[0].GetGauge().GetValue())
	require.Equal(t, float64(at.Unix()), families["budgetdesk_overdue_scan_last_success_timestamp_seconds"].GetMetric()[0].GetGauge().GetValue())
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	require.NoError(t, m.Track("x").End(nil))
	m.RecordOverdueScan([]OverdueSample{{ProjectID: "p"}}, time.Now())
}
