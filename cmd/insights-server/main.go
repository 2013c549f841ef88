package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radiusdt/vector-insights/internal/config"
	"github.com/radiusdt/vector-insights/internal/database"
	"github.com/radiusdt/vector-insights/internal/httpserver"
	"github.com/radiusdt/vector-insights/internal/metrics"
	"github.com/radiusdt/vector-insights/internal/middleware"
	"github.com/radiusdt/vector-insights/internal/source"
	"github.com/radiusdt/vector-insights/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := middleware.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting vector-insights",
		zap.String("env", cfg.Server.Env),
		zap.String("addr", cfg.Server.Addr),
		zap.String("source", cfg.Source.Mode),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.NewMetrics(cfg.Metrics.Namespace, prometheus.DefaultRegisterer)
	}

	// Campaign catalog
	db, err := database.NewPostgresDB(ctx, cfg.Database, logger)
	switch {
	case errors.Is(err, database.ErrDisabled):
		logger.Info("PostgreSQL disabled, serving demo campaign catalog")
	case err != nil:
		logger.Warn("PostgreSQL not available, serving demo campaign catalog", zap.Error(err))
		db = nil
	default:
		defer db.Close()
		if err := prepareCatalog(ctx, cfg, db); err != nil {
			logger.Fatal("failed to prepare campaign catalog", zap.Error(err))
		}
	}

	// KPI cache
	redis, err := database.NewRedisDB(ctx, cfg.Redis, logger)
	switch {
	case errors.Is(err, database.ErrDisabled):
		logger.Info("Redis disabled, KPI caching off")
	case err != nil:
		logger.Warn("Redis not available, KPI caching off", zap.Error(err))
		redis = nil
	default:
		defer redis.Close()
	}

	src, checkers, closeSource, err := buildSource(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize metrics source", zap.Error(err))
	}
	defer closeSource()

	handler := httpserver.NewServer(&httpserver.Dependencies{
		DB:       db,
		Redis:    redis,
		Source:   src,
		Config:   cfg,
		Logger:   logger,
		Metrics:  m,
		Checkers: checkers,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.Source.Timeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

// prepareCatalog creates the campaigns table and, outside production, seeds
// the demo campaigns.
func prepareCatalog(ctx context.Context, cfg *config.Config, db *database.PostgresDB) error {
	repo := storage.NewPostgresCampaignRepo(db.Pool)
	if err := repo.Migrate(ctx); err != nil {
		return err
	}
	if cfg.IsProduction() {
		return nil
	}
	return repo.Seed(ctx, storage.DemoCampaigns())
}

// buildSource selects the MetricsSource for cfg.Source.Mode. A warehouse that
// cannot be reached falls back to mock data except in production.
func buildSource(ctx context.Context, cfg *config.Config, logger *zap.Logger) (source.MetricsSource, []database.Checker, func(), error) {
	noop := func() {}

	switch cfg.Source.Mode {
	case config.SourceModeLive:
		logger.Info("using Google Ads metrics source", zap.String("endpoint", cfg.Source.LiveEndpoint))
		return source.NewLiveSource(context.Background(), source.LiveConfig{
			Endpoint:        cfg.Source.LiveEndpoint,
			DeveloperToken:  cfg.Source.DeveloperToken,
			LoginCustomerID: cfg.Source.LoginCustomerID,
			ClientID:        cfg.Source.ClientID,
			ClientSecret:    cfg.Source.ClientSecret,
			RefreshToken:    cfg.Source.RefreshToken,
			AccessToken:     cfg.Source.AccessToken,
			Timeout:         cfg.Source.Timeout,
		}), nil, noop, nil

	case config.SourceModeClickHouse:
		ch, err := database.NewClickHouseDB(ctx, cfg.ClickHouse, logger)
		if err != nil {
			if cfg.IsProduction() {
				return nil, nil, noop, err
			}
			logger.Warn("ClickHouse not available, falling back to mock metrics", zap.Error(err))
			break
		}
		src, err := source.NewClickHouseSource(ch.Conn, cfg.ClickHouse.Table)
		if err != nil {
			_ = ch.Close()
			return nil, nil, noop, err
		}
		if err := src.EnsureSchema(ctx); err != nil {
			_ = ch.Close()
			return nil, nil, noop, err
		}
		return src, []database.Checker{ch}, func() { _ = ch.Close() }, nil
	}

	logger.Info("using mock metrics source", zap.Duration("latency", cfg.Source.MockLatency))
	return source.NewMockSource(cfg.Source.MockLatency), nil, noop, nil
}
