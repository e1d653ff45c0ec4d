package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/budgetdesk/budgetdesk/internal/app"
	jobmetrics "github.com/budgetdesk/budgetdesk/internal/jobs"
	"github.com/budgetdesk/budgetdesk/internal/observability"
	"github.com/budgetdesk/budgetdesk/internal/projects"
	"github.com/budgetdesk/budgetdesk/jobs"
)

func newWorkerCommand() *cobra.Command {
	var concurrency int
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run background jobs and the overdue invoice schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := runtimeFrom(cmd)
			if err != nil {
				return err
			}
			if app.InTestMode() {
				rt.logger.Info("test mode detected, skipping worker startup")
				return nil
			}
			return rt.work(cmd.Context(), concurrency)
		},
	}
	cmd.Flags().IntVar(&concurrency, "concurrency", 5, "number of tasks processed in parallel")
	return cmd
}

func (rt *runtime) work(ctx context.Context, concurrency int) error {
	logger := rt.logger
	pool, err := rt.openPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	registry := observability.NewMetrics()
	overdue := jobs.NewOverdueScanJob(projects.NewRepository(pool), logger, jobmetrics.NewMetrics(registry.Registerer()))

	scanTask, err := jobs.NewOverdueScanTask(jobs.OverdueScanPayload{})
	if err != nil {
		return err
	}
	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   asynq.RedisClientOpt{Addr: rt.cfg.RedisAddr},
		Logger:      logger,
		Queue:       rt.cfg.WorkerQueue,
		Concurrency: concurrency,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskOverdueScan, Handler: overdue.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: rt.cfg.OverdueScanCron, Task: scanTask},
		},
	})
	if err != nil {
		return err
	}
	logger.Info("overdue scan scheduled", slog.String("cron", rt.cfg.OverdueScanCron))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := worker.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	if rt.cfg.WorkerMetricsAddr != "" {
		r := chi.NewRouter()
		r.Method(http.MethodGet, "/metrics", registry.Handler())
		srv := &http.Server{Addr: rt.cfg.WorkerMetricsAddr, Handler: r, ReadHeaderTimeout: 5 * time.Second}
		g.Go(func() error {
			return app.Serve(gctx, srv, logger, 5*time.Second)
		})
	}
	return g.Wait()
}
