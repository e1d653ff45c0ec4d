package cli

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/budgetdesk/budgetdesk/internal/app"
	"github.com/budgetdesk/budgetdesk/internal/observability"
	"github.com/budgetdesk/budgetdesk/internal/platform/pdf"
	reporthttp "github.com/budgetdesk/budgetdesk/internal/report/http"
	"github.com/budgetdesk/budgetdesk/jobs"
)

func newServeCommand() *cobra.Command {
	var migrateFirst bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Example: `  budgetdesk serve
  budgetdesk serve --migrate`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := runtimeFrom(cmd)
			if err != nil {
				return err
			}
			if app.InTestMode() {
				rt.logger.Info("test mode detected, skipping runtime startup")
				return nil
			}
			return rt.serve(cmd.Context(), migrateFirst)
		},
	}
	cmd.Flags().BoolVar(&migrateFirst, "migrate", false, "apply pending migrations before serving")
	return cmd
}

func (rt *runtime) serve(ctx context.Context, migrateFirst bool) error {
	logger := rt.logger
	if migrateFirst {
		if err := rt.migrateUp(); err != nil {
			return err
		}
	}

	metrics := observability.NewMetrics()
	svc, err := rt.buildServices(ctx, true, metrics.Registerer())
	if err != nil {
		return err
	}
	defer svc.close(logger)

	redisOpts := asynq.RedisClientOpt{Addr: rt.cfg.RedisAddr}
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("asynq inspector close", slog.Any("error", err))
		}
	}()
	jobsClient := jobs.NewClient(redisOpts, rt.cfg.WorkerQueue)
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("asynq client close", slog.Any("error", err))
		}
	}()

	readiness := map[string]app.ReadinessCheck{
		"postgres": svc.pool.Ping,
		"redis":    func(ctx context.Context) error { return svc.redis.Ping(ctx).Err() },
	}
	if rt.cfg.GotenbergURL != "" {
		readiness["gotenberg"] = pdf.NewClient(rt.cfg.GotenbergURL).Ping
	}

	router := app.NewRouter(app.RouterParams{
		Logger:        logger,
		Config:        rt.cfg,
		ReportHandler: reporthttp.NewHandler(logger, svc.reports),
		JobHandler:    jobs.NewHandler(inspector, jobsClient, rt.cfg.WorkerQueue, logger),
		Metrics:       metrics,
		Readiness:     readiness,
	})
	return app.Serve(ctx, app.NewServer(rt.cfg, router), logger, 15*time.Second)
}
