package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/budgetdesk/budgetdesk/internal/jobs"
	"github.com/budgetdesk/budgetdesk/internal/projects"
)

var scanNow = time.Date(2024, 6, 15, 6, 0, 0, 0, time.UTC)

type stubSource struct {
	ids      []string
	listErr  error
	invoices map[string][]projects.Invoice
	failing  map[string]error
}

func (s *stubSource) ListActiveProjectIDs(ctx context.Context) ([]string, error) {
	return s.ids, s.listErr
}

func (s *stubSource) ListInvoicesByProject(ctx context.Context, projectID string) ([]projects.Invoice, error) {
	if err := s.failing[projectID]; err != nil {
		return nil, err
	}
	return s.invoices[projectID], nil
}

func due(offset int) *time.Time {
	t := scanNow.AddDate(0, 0, offset)
	return &t
}

func amount(v int64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromInt(v))
}

func newTestJob(source InvoiceSource) *OverdueScanJob {
	job := NewOverdueScanJob(source, slog.New(slog.NewTextHandler(io.Discard, nil)), jobmetrics.NewMetrics(prometheus.NewRegistry()))
	job.clock = func() time.Time { return scanNow }
	return job
}

func scanSource() *stubSource {
	return &stubSource{
		ids: []string{"p2", "p1"},
		invoices: map[string][]projects.Invoice{
			"p1": {
				{ID: "a", Amount: amount(100), Status: projects.InvoicePendingPayment, DueDate: due(-1)},
				{ID: "b", Amount: amount(200), Status: projects.InvoiceOverdue},
				{ID: "c", Amount: amount(300), Status: projects.InvoicePaid, DueDate: due(-5)},
				{ID: "d", Amount: amount(400), Status: projects.InvoicePendingPayment, DueDate: due(3)},
			},
			"p2": {
				{ID: "e", Amount: amount(50), Status: projects.InvoiceCancelled, DueDate: due(-9)},
			},
		},
	}
}

func TestOverdueScanClassifiesActiveProjects(t *testing.T) {
	samples, err := newTestJob(scanSource()).Run(context.Background(), OverdueScanPayload{})
	require.NoError(t, err)
	require.Equal(t, []jobmetrics.OverdueSample{
		{ProjectID: "p1", Count: 2, Amount: 300},
		{ProjectID: "p2", Count: 0, Amount: 0},
	}, samples)
}

func TestOverdueScanHonoursPayloadProjects(t *testing.T) {
	samples, err := newTestJob(scanSource()).Run(context.Background(), OverdueScanPayload{ProjectIDs: []string{"p2"}})
	require.NoError(t, err)
	require.Len(t, samples, 1)
	require.Equal(t, "p2", samples[0].ProjectID)
}

func TestOverdueScanReportsPartialFailure(t *testing.T) {
	source := scanSource()
	source.failing = map[string]error{"p2": errors.New("db timeout")}
	samples, err := newTestJob(source).Run(context.Background(), OverdueScanPayload{})
	require.ErrorContains(t, err, "project p2")
	require.Len(t, samples, 1)
}

func TestOverdueScanListFailure(t *testing.T) {
	source := &stubSource{listErr: errors.New("db down")}
	_, err := newTestJob(source).Run(context.Background(), OverdueScanPayload{})
	require.ErrorContains(t, err, "db down")
}

func TestOverdueScanHandleSkipsRetryOnBadPayload(t *testing.T) {
	err := newTestJob(scanSource()).Handle(context.Background(), asynq.NewTask(TaskOverdueScan, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestOverdueScanHandleDecodesTask(t *testing.T) {
	task, err := NewOverdueScanTask(OverdueScanPayload{ProjectIDs: []string{"p1"}})
	require.NoError(t, err)
	require.Equal(t, TaskOverdueScan, task.Type())
	require.NoError(t, newTestJob(scanSource()).Handle(context.Background(), task))
}

func TestOverdueScanRequiresSource(t *testing.T) {
	var job *OverdueScanJob
	require.Error(t, job.Handle(context.Background(), asynq.NewTask(TaskOverdueScan, nil)))
}
