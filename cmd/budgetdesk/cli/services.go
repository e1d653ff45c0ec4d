package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/budgetdesk/budgetdesk/internal/platform/cache"
	"github.com/budgetdesk/budgetdesk/internal/platform/db"
	"github.com/budgetdesk/budgetdesk/internal/platform/pdf"
	"github.com/budgetdesk/budgetdesk/internal/projects"
	"github.com/budgetdesk/budgetdesk/internal/report"
)

// services bundles the connections and domain services shared by commands.
type services struct {
	pool    *pgxpool.Pool
	redis   *redis.Client
	repo    *projects.Repository
	reports *report.Service
}

func (rt *runtime) openPool(ctx context.Context) (*pgxpool.Pool, error) {
	pool, err := db.New(ctx, db.PoolConfig{DSN: rt.cfg.PGDSN, MaxConns: rt.cfg.PGMaxConns})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return pool, nil
}

// buildServices connects to Postgres and, when withRedis is set, Redis.
func (rt *runtime) buildServices(ctx context.Context, withRedis bool, registerer prometheus.Registerer) (*services, error) {
	pool, err := rt.openPool(ctx)
	if err != nil {
		return nil, err
	}
	svc := &services{pool: pool, repo: projects.NewRepository(pool)}

	var shares report.Sharer
	if withRedis {
		client, err := cache.New(ctx, rt.cfg.RedisAddr)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		svc.redis = client
		shares = report.NewShareStore(client, rt.cfg.ReportShareTTL)
	}

	builder := report.NewBuilder(rt.logger)
	renderer, err := report.NewRenderer(report.NewFormatter(rt.cfg.ReportLocale))
	if err != nil {
		svc.close(rt.logger)
		return nil, err
	}
	var pdfClient report.PDFClient
	if rt.cfg.GotenbergURL != "" {
		pdfClient = pdf.NewClient(rt.cfg.GotenbergURL)
	}
	svc.reports = report.NewService(
		projects.NewLoader(svc.repo, rt.logger, rt.cfg.SupplierBatchSize),
		builder,
		renderer,
		report.Options{
			Departments: svc.repo,
			Records:     svc.repo,
			PDF:         pdfClient,
			Shares:      shares,
			Metrics:     report.NewMetrics(registerer),
			Logger:      rt.logger,
		},
	)
	return svc, nil
}

func (s *services) close(logger *slog.Logger) {
	if s == nil {
		return
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}
	if s.pool != nil {
		s.pool.Close()
	}
}
