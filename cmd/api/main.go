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

	"github.com/tenpin/leaguebook/internal/app"
	"github.com/tenpin/leaguebook/internal/auth"
	"github.com/tenpin/leaguebook/internal/infra"
	"github.com/tenpin/leaguebook/internal/provider"
	"github.com/tenpin/leaguebook/internal/repository"
	"github.com/tenpin/leaguebook/internal/service"
	"golang.org/x/sync/errgroup"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Storage
	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	var metrics *infra.Metrics
	if cfg.MetricsEnabled {
		metrics = infra.NewMetrics()
	}

	var extractor service.Extractor
	if cfg.ExtractionEnabled() {
		extractor = provider.NewExtractionClient(cfg.ExtractionBaseURL, cfg.ExtractionAPIKey, cfg.ExtractionModel, logger)
		logger.Info("photo extraction enabled", "model", cfg.ExtractionModel)
	}

	router := app.NewRouter(app.RouterDeps{
		Store:               store,
		JWTMgr:              auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAdminExpiry),
		Logger:              logger,
		Metrics:             metrics,
		Extractor:           extractor,
		ExtractionRateLimit: cfg.ExtractionRateLimit,
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
	})

	addr := fmt.Sprintf(":%d", cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // extraction calls wait on the model
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("api server starting", "addr", addr, "storage", cfg.StorageDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	if cfg.RelayInProcess() {
		producer := infra.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaEnabled, logger)
		defer producer.Close()
		relay := infra.NewOutboxRelay(store.Outbox(), producer, metrics, cfg, logger)
		g.Go(func() error { return relay.Run(gctx) })
	}

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped gracefully")
	return nil
}

// openStore connects the configured storage driver. The returned func
// releases it.
func openStore(ctx context.Context, cfg *infra.Config, logger *slog.Logger) (repository.Store, func(), error) {
	if cfg.StorageDriver == infra.StorageMemory {
		logger.Warn("using in-memory storage; data is lost on restart")
		return repository.NewMemoryStore(), func() {}, nil
	}

	if err := infra.RunMigrations(cfg.DSN(), logger); err != nil {
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}
	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	logger.Info("connected to postgres")
	return repository.NewPgStore(pool), pool.Close, nil
}
