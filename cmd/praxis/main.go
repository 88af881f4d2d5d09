package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/praxis-pm/praxis/internal/app"
	"github.com/praxis-pm/praxis/internal/billing"
	"github.com/praxis-pm/praxis/internal/ledger"
	ledgerhttp "github.com/praxis-pm/praxis/internal/ledger/http"
	"github.com/praxis-pm/praxis/internal/observability"
	"github.com/praxis-pm/praxis/internal/patient"
	"github.com/praxis-pm/praxis/internal/platform/db"
	"github.com/praxis-pm/praxis/internal/schedule"
	"github.com/praxis-pm/praxis/internal/stats"
	statshttp "github.com/praxis-pm/praxis/internal/stats/http"
	"github.com/praxis-pm/praxis/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	scheduleRepo := schedule.NewRepository(dbpool)
	sessionLoader := schedule.NewLoader(scheduleRepo, logger)
	billingRepo := billing.NewRepository(dbpool)
	patientRepo := patient.NewRepository(dbpool)

	ledgerService := ledger.NewService(sessionLoader, billingRepo, logger)
	ledgerHandler := ledgerhttp.NewHandler(logger, ledgerService)

	statsCache := stats.NewCache(redisClient, cfg.StatsCacheTTL)
	if err := statsCache.ListenForInvalidation(ctx, ""); err != nil {
		logger.Warn("stats cache invalidation listener", slog.Any("error", err))
	}
	statsService := stats.NewService(sessionLoader, billingRepo, patientRepo, statsCache, logger)
	dashboardHandler := statshttp.NewHandler(logger, statsService)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		LedgerHandler:    ledgerHandler,
		DashboardHandler: dashboardHandler,
		JobHandler:       jobHandler,
		Pool:             dbpool,
		Redis:            redisClient,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
