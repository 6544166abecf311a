package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	"github.com/KasumiMercury/nightscout-daily-dose/internal/config"
	"github.com/KasumiMercury/nightscout-daily-dose/internal/domain"
	"github.com/KasumiMercury/nightscout-daily-dose/internal/handler"
	"github.com/KasumiMercury/nightscout-daily-dose/internal/health"
	"github.com/KasumiMercury/nightscout-daily-dose/internal/infra/doserecorder"
	"github.com/KasumiMercury/nightscout-daily-dose/internal/infra/history"
	"github.com/KasumiMercury/nightscout-daily-dose/internal/infra/nightscout"
	"github.com/KasumiMercury/nightscout-daily-dose/internal/infra/repository"
	"github.com/KasumiMercury/nightscout-daily-dose/internal/observability/logging"
	"github.com/KasumiMercury/nightscout-daily-dose/internal/observability/metrics"
	"github.com/KasumiMercury/nightscout-daily-dose/internal/observability/middleware"
	"github.com/KasumiMercury/nightscout-daily-dose/internal/service/aggregate"
	"github.com/KasumiMercury/nightscout-daily-dose/internal/service/dailydose"
)

// Version is set via ldflags at build time
var Version = "dev"

const serviceModule = logging.Module("daily-dose")

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		return 1
	}

	obs, err := initObservability(ctx, cfg.LogLevel)
	if err != nil {
		slog.Error("failed to initialize observability", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := obs.Shutdown(shutdownCtx); err != nil {
			slog.Warn("observability shutdown error", slog.String("error", err.Error()))
		}
	}()

	slog.SetDefault(obs.Logger())

	if err := config.ValidateForRun(cfg); err != nil {
		slog.Error("configuration validation error", slog.String("error", err.Error()))
		return 1
	}

	httpMetrics, err := metrics.NewHTTPMetrics()
	if err != nil {
		slog.Error("failed to initialize HTTP metrics", slog.String("error", err.Error()))
		return 1
	}

	doseMetrics, err := metrics.NewDoseMetrics()
	if err != nil {
		slog.Error("failed to initialize dose metrics", slog.String("error", err.Error()))
		return 1
	}

	// InfluxDB for local, BigQuery for gcloud
	recorder, err := doserecorder.NewRecorder(ctx, doserecorder.LoadConfig())
	if err != nil {
		slog.Error("failed to initialize dose result recorder", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		if err := recorder.Close(); err != nil {
			slog.Warn("failed to close dose result recorder", slog.String("error", err.Error()))
		}
	}()

	redisClient := redis.NewClient(cfg.Redis.ClientOptions())

	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		slog.Error("failed to instrument redis tracing",
			slog.String("event", "redis.otel.tracing.fail"),
			slog.String("error", err.Error()),
		)
		return 1
	}

	if err := redisotel.InstrumentMetrics(redisClient); err != nil {
		slog.Error("failed to instrument redis metrics",
			slog.String("event", "redis.otel.metrics.fail"),
			slog.String("error", err.Error()),
		)
		return 1
	}

	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.Error("failed to connect redis",
			slog.String("event", "redis.connect.fail"),
			slog.String("error", err.Error()),
		)
		return 1
	}

	defer func() {
		if err := redisClient.Close(); err != nil {
			slog.Warn("failed to close redis client", slog.String("error", err.Error()))
		}
	}()

	slog.Info("redis connected",
		slog.String("addr", cfg.Redis.Addr),
	)

	var (
		historyRepo   domain.DoseHistoryRepository
		historyPinger health.Pinger
	)
	if cfg.History.Enabled() {
		repo, err := history.Open(cfg.History.DSN)
		if err != nil {
			slog.Error("failed to open dose history database", slog.String("error", err.Error()))
			return 1
		}
		defer func() {
			if err := repo.Close(); err != nil {
				slog.Warn("failed to close dose history database", slog.String("error", err.Error()))
			}
		}()
		historyRepo, historyPinger = repo, repo
		slog.Info("dose history enabled")
	} else {
		slog.Warn("HISTORY_DATABASE_DSN not set, dose history disabled")
	}

	nsClient := nightscout.NewClient(nightscout.Config{
		URL:           cfg.Nightscout.URL,
		Token:         cfg.Nightscout.Token,
		Timeout:       cfg.Nightscout.Timeout,
		RetryAttempts: cfg.Nightscout.RetryAttempts,
		PageLimit:     cfg.Nightscout.PageLimit,
	}, nightscout.WithMetrics(doseMetrics))
	source := nightscout.NewCachedRepository(nsClient, cfg.Dose.ProfileCacheTTL)

	aggregator := aggregate.NewAggregator(aggregate.WithScheduleName(cfg.Dose.ScheduleName))
	doseCache := repository.NewDailyDoseRepository(redisClient, aggregator.ScheduleName(), cfg.Dose.CacheTTL)

	doseService := dailydose.NewService(
		source,
		doseCache,
		historyRepo,
		recorder,
		aggregator,
		doseMetrics,
		dailydose.Config{
			MaxRangeDays: cfg.Dose.RangeMaxDays,
			Concurrency:  cfg.Dose.RangeConcurrency,
		},
	)
	doseHandler := handler.NewDoseHandler(doseService)

	// Setup router with observability middleware
	r := gin.New()
	r.Use(middleware.Gin(middleware.GinConfig{
		SkipPaths:   []string{"/health", "/health/live", "/health/ready", "/metrics"},
		Module:      serviceModule,
		TracerName:  "github.com/KasumiMercury/nightscout-daily-dose/internal/observability/middleware",
		HTTPMetrics: httpMetrics,
	}))
	r.Use(middleware.PanicRecoveryGin())

	healthChecker := health.NewChecker(redisClient, historyPinger, Version)
	r.GET("/health/live", healthChecker.LiveHandler())
	r.GET("/health/ready", healthChecker.ReadyHandler())
	r.GET("/health", healthChecker.ReadyHandler())

	doseHandler.Register(r.Group("/api/v1"))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Port),
			slog.String("nightscout_url", cfg.Nightscout.URL),
			slog.String("schedule", aggregator.ScheduleName()),
			slog.Int("range_max_days", cfg.Dose.RangeMaxDays),
		)
		serverErr <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shutdown server", slog.String("error", err.Error()))
			return 1
		}

		if err := recorder.Flush(shutdownCtx); err != nil {
			slog.Warn("failed to flush dose result recorder", slog.String("error", err.Error()))
		}

		slog.Info("server exited properly")
		return 0

	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return 0
		}
		slog.Error("server exited with error", slog.String("error", err.Error()))
		return 1
	}
}
