// Package bootstrap wires stores and caches from configuration for the commands.
package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"trade-journal/internal/cache"
	"trade-journal/internal/config"
	"trade-journal/internal/metrics"
	"trade-journal/internal/storage"
	chstore "trade-journal/internal/storage/clickhouse"
	"trade-journal/internal/storage/memory"
	"trade-journal/internal/storage/migrations"
	pgstore "trade-journal/internal/storage/postgres"
)

// Stores groups the storage implementations used by the commands.
type Stores struct {
	Trades     storage.TradeStore
	Strategies storage.StrategyStore
	Snapshots  storage.SnapshotStore
}

// OpenStores returns in-memory stores when cfg.UseMemory is set, otherwise
// Postgres trade/strategy stores and a ClickHouse snapshot store with
// migrations applied. The cleanup function closes all connections.
func OpenStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Stores, func(), error) {
	if cfg.UseMemory {
		logger.Info("using in-memory storage")
		return &Stores{
			Trades:     memory.NewTradeStore(),
			Strategies: memory.NewStrategyStore(),
			Snapshots:  memory.NewSnapshotStore(),
		}, func() {}, nil
	}

	pool, err := OpenPostgres(ctx, cfg.PostgresDSN, logger)
	if err != nil {
		return nil, nil, err
	}

	chConn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN, logger)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
	}
	logger.Info("clickhouse ready")

	cleanup := func() {
		pool.Close()
		if err := chConn.Close(); err != nil {
			logger.Warn("close clickhouse", zap.Error(err))
		}
	}
	return &Stores{
		Trades:     pgstore.NewTradeStore(pool),
		Strategies: pgstore.NewStrategyStore(pool),
		Snapshots:  chstore.NewSnapshotStore(chConn),
	}, cleanup, nil
}

// OpenPostgres connects to Postgres and applies migrations.
func OpenPostgres(ctx context.Context, dsn string, logger *zap.Logger) (*pgstore.Pool, error) {
	pool, err := pgstore.NewPool(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	applied, err := migrations.RunPostgresMigrations(ctx, pool, logger)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres migrations: %w", err)
	}
	logger.Info("postgres ready", zap.Int("migrations_applied", len(applied)))
	return pool, nil
}

// OpenStatsCache returns a Redis-backed stats cache when cfg.RedisAddr is set
// and an in-process one otherwise. A CacheTTL of zero disables caching.
func OpenStatsCache(ctx context.Context, cfg *config.Config, logger *zap.Logger) (metrics.StatsCache, func(), error) {
	if cfg.CacheTTL == 0 {
		return nil, func() {}, nil
	}
	if cfg.RedisAddr == "" {
		logger.Info("using in-process stats cache", zap.Duration("ttl", cfg.CacheTTL))
		return cache.NewStatsCache(cache.NewMemoryStore(), cfg.CacheTTL), func() {}, nil
	}

	client, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("using redis stats cache", zap.String("addr", cfg.RedisAddr), zap.Duration("ttl", cfg.CacheTTL))
	cleanup := func() {
		if err := client.Close(); err != nil {
			logger.Warn("close redis", zap.Error(err))
		}
	}
	return cache.NewStatsCache(client, cfg.CacheTTL), cleanup, nil
}
