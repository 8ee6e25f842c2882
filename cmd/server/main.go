// Package main is the entrypoint for the credscan API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"credscan/internal/api"
	"credscan/internal/api/handler"
	mw "credscan/internal/api/middleware"
	"credscan/internal/cache"
	"credscan/internal/config"
	"credscan/internal/fetch"
	"credscan/internal/mlservice"
	"credscan/internal/monitoring"
	"credscan/internal/pipeline"
	"credscan/internal/queue"
	"credscan/internal/store"
	"credscan/internal/telemetry"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config — fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "env", cfg.Server.Env, "ml_service", cfg.MLService.BaseURL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to database
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	// 3. Run migrations
	if err := store.RunMigrations(cfg.Database.URL, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	// 4. Create Redis cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	// 5. Assemble the analysis pipeline
	pgStore := store.NewPostgresStore(pool)
	mlClient := mlservice.NewHTTPClient(cfg.MLService.BaseURL, cfg.MLService.Timeout)
	fetcher := fetch.NewHTTPFetcher(cfg.Fetch)
	jobQueue := queue.New()
	runner := pipeline.New(jobQueue, mlClient, fetcher, pgStore, redisCache, cfg.Analysis.ResultCacheTTL)

	// 6. Build router with dependencies
	production := cfg.Server.IsProduction()
	sink := monitoring.LogSink{}
	errorHandler := mw.NewErrorHandler(production, sink)
	rateLimit := mw.NewRateLimit(redisCache, cfg.Analysis.RequestsPerMinute)

	router := api.NewRouter(api.Dependencies{
		Production: production,
		Sink:       sink,
		RateLimit:  rateLimit,

		HealthHandler:  handler.NewHealthHandler(pgStore, redisCache, mlClient),
		MetricsHandler: telemetry.Handler(),

		AnalyzeHandler: errorHandler.Wrap(handler.NewAnalyzeHandler(jobQueue, runner, cfg.Analysis.MaxTextLength)),
		PollJobHandler: errorHandler.Wrap(handler.NewPollJobHandler(jobQueue)),
		ResultHandler:  errorHandler.Wrap(handler.NewResultHandler(jobQueue, pgStore)),
		HistoryHandler: errorHandler.Wrap(handler.NewHistoryHandler(pgStore)),
	})

	// 7. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
