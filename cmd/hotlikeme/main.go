package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/MikeSquared-Agency/hotlikeme/internal/api"
	"github.com/MikeSquared-Agency/hotlikeme/internal/config"
	"github.com/MikeSquared-Agency/hotlikeme/internal/engine"
	"github.com/MikeSquared-Agency/hotlikeme/internal/hermes"
	"github.com/MikeSquared-Agency/hotlikeme/internal/metrics"
	"github.com/MikeSquared-Agency/hotlikeme/internal/rating"
	"github.com/MikeSquared-Agency/hotlikeme/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger = newLogger(cfg.Logging)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	db, err := openStore(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("failed to open store", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Hermes (optional)
	var hermesClient hermes.Client
	if cfg.Hermes.URL != "" {
		hc, err := hermes.NewNATSClient(ctx, cfg.Hermes.URL, logger)
		if err != nil {
			logger.Warn("failed to connect to hermes, running without events", "error", err)
		} else {
			hermesClient = hc
			defer hc.Close()
			logger.Info("connected to hermes")
		}
	}

	// Rating model
	model, err := rating.NewModel(rating.Environment{
		Mu:              cfg.Rating.Mu,
		Sigma:           cfg.Rating.Sigma,
		Beta:            cfg.Rating.Beta,
		DrawProbability: cfg.Rating.DrawProbability,
		MinSigma:        cfg.Rating.MinSigma,
	})
	if err != nil {
		logger.Error("invalid rating config", "error", err)
		os.Exit(1)
	}

	m := metrics.New()
	opts := []engine.Option{
		engine.WithMaxTarget(cfg.Supplier.MaxTarget),
		engine.WithMetrics(m),
	}
	if cfg.Supplier.Seed != 0 {
		opts = append(opts, engine.WithSeed(cfg.Supplier.Seed))
	}
	e := engine.New(db, model, hermesClient, logger, opts...)

	// API server
	router := api.NewRouter(e, m, api.RouterConfig{
		AdminToken:    cfg.Server.AdminToken,
		DefaultTarget: cfg.Supplier.DefaultTarget,
	}, logger)
	apiServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Metrics server
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler: api.NewMetricsRouter(),
	}

	go func() {
		logger.Info("API server starting", "port", cfg.Server.Port)
		if err := apiServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("API server error", "error", err)
		}
	}()

	go func() {
		logger.Info("metrics server starting", "port", cfg.Server.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = apiServer.Shutdown(shutdownCtx)
	_ = metricsServer.Shutdown(shutdownCtx)

	logger.Info("shutdown complete")
}

func openStore(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (store.Store, error) {
	if cfg.Driver == "memory" {
		logger.Warn("using in-memory store, data will not survive a restart")
		return store.NewMemoryStore(), nil
	}
	db, err := store.NewPostgresStore(ctx, cfg.URL)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	logger.Info("connected to database")
	return db, nil
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
