package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/budgetdesk/budgetdesk/internal/finance"
	jobmetrics "github.com/budgetdesk/budgetdesk/internal/jobs"
	"github.com/budgetdesk/budgetdesk/internal/projects"
)

// InvoiceSource lists what the overdue scan reads.
type InvoiceSource interface {
	ListActiveProjectIDs(ctx context.Context) ([]string, error)
	ListInvoicesByProject(ctx context.Context, projectID string) ([]projects.Invoice, error)
}

// OverdueScanJob refreshes the overdue invoice gauges.
type OverdueScanJob struct {
	Source      InvoiceSource
	Logger      *slog.Logger
	Metrics     *jobmetrics.Metrics
	Concurrency int
	clock       func() time.Time
}

// NewOverdueScanJob initialises the overdue scan handler.
func NewOverdueScanJob(source InvoiceSource, logger *slog.Logger, metrics *jobmetrics.Metrics) *OverdueScanJob {
	return &OverdueScanJob{
		Source:      source,
		Logger:      logger,
		Metrics:     metrics,
		Concurrency: 4,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the overdue scan.
func (j *OverdueScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Source == nil {
		return errors.New("overdue scan: handler not configured")
	}
	var payload OverdueScanPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("overdue scan: decode payload: %v: %w", err, asynq.SkipRetry)
		}
	}
	_, err := j.Run(ctx, payload)
	return err
}

// Run scans the requested projects and returns one sample per project.
func (j *OverdueScanJob) Run(ctx context.Context, payload OverdueScanPayload) (samples []jobmetrics.OverdueSample, err error) {
	tracker := j.Metrics.Track(TaskOverdueScan)
	defer func() { err = tracker.End(err) }()

	now := j.now()
	logger := j.logger()
	ids := payload.ProjectIDs
	if len(ids) == 0 {
		ids, err = j.Source.ListActiveProjectIDs(ctx)
		if err != nil {
			logger.Error("overdue scan: list projects", slog.Any("error", err))
			return nil, err
		}
	}
	logger.Info("starting overdue scan", slog.Int("projects", len(ids)))

	var (
		mu   sync.Mutex
		errs []error
	)
	g, gctx := errgroup.WithContext(ctx)
	limit := j.Concurrency
	if limit <= 0 {
		limit = 1
	}
	g.SetLimit(limit)
	for _, id := range ids {
		g.Go(func() error {
			invoices, err := j.Source.ListInvoicesByProject(gctx, id)
			if err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("project %s: %w", id, err))
				mu.Unlock()
				return nil
			}
			sample := classify(id, invoices, now)
			if sample.Count > 0 {
				logger.Warn("project has overdue invoices",
					slog.String("project_id", id),
					slog.Int("overdue", sample.Count),
					slog.Float64("amount", sample.Amount),
				)
			}
			mu.Lock()
			samples = append(samples, sample)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(samples, func(a, b int) bool { return samples[a].ProjectID < samples[b].ProjectID })
	if len(errs) > 0 {
		err = errors.Join(errs...)
		logger.Error("overdue scan incomplete", slog.Int("failed", len(errs)), slog.Any("error", err))
		return samples, err
	}
	j.Metrics.RecordOverdueScan(samples, now)
	logger.Info("completed overdue scan", slog.Int("projects", len(samples)))
	return samples, nil
}

func classify(projectID string, invoices []projects.Invoice, now time.Time) jobmetrics.OverdueSample {
	sample := jobmetrics.OverdueSample{ProjectID: projectID}
	for _, inv := range invoices {
		if !finance.IsOverdue(inv, now) {
			continue
		}
		sample.Count++
		sample.Amount += finance.OrZero(inv.Amount).InexactFloat64()
	}
	return sample
}

func (j *OverdueScanJob) now() time.Time {
	if j.clock == nil {
		return time.Now().UTC()
	}
	return j.clock()
}

func (j *OverdueScanJob) logger() *slog.Logger {
	if j.Logger == nil {
		return slog.Default()
	}
	return j.Logger.With(slog.String("job", TaskOverdueScan))
}
