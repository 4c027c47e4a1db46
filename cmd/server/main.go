// Package main runs the trade journal statistics HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"trade-journal/internal/api"
	"trade-journal/internal/bootstrap"
	"trade-journal/internal/config"
	"trade-journal/internal/logging"
	"trade-journal/internal/metrics"
	"trade-journal/internal/pipeline"
	"trade-journal/internal/realtime"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	cfg.RegisterFlags(flag.CommandLine)
	seedDemo := flag.Bool("seed-demo", false, "Load the demo journal (user \"demo\") into storage on startup")
	flag.Parse()

	logger := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	defer logger.Sync() //nolint:errcheck

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	if err := run(cfg, *seedDemo, logger); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

func run(cfg *config.Config, seedDemo bool, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, closeStores, err := bootstrap.OpenStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStores()

	if seedDemo {
		if err := pipeline.LoadFixtures(ctx, stores.Trades, stores.Strategies); err != nil {
			return fmt.Errorf("load demo journal: %w", err)
		}
		logger.Info("demo journal loaded", zap.String("user_id", pipeline.FixtureUserID))
	}

	statsCache, closeCache, err := bootstrap.OpenStatsCache(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	aggOpts := []metrics.Option{metrics.WithLogger(logger)}
	if statsCache != nil {
		aggOpts = append(aggOpts, metrics.WithCache(statsCache))
	}
	aggregator := metrics.NewAggregator(stores.Trades, stores.Strategies, stores.Snapshots, aggOpts...)

	hub := realtime.NewHub(logger)
	go hub.Run(ctx)

	router := api.SetupRoutes(api.Dependencies{
		Aggregator:     aggregator,
		TradeStore:     stores.Trades,
		StrategyStore:  stores.Strategies,
		Hub:            hub,
		Logger:         logger,
		InitialBalance: cfg.InitialBalance,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
