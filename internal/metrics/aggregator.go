package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"trade-journal/internal/domain"
	"trade-journal/internal/observability"
	"trade-journal/internal/storage"
)

// StatsCache stores computed stats by content key.
// Implementations must be safe for concurrent use.
type StatsCache interface {
	// GetStats returns the cached stats and whether the key was present.
	GetStats(ctx context.Context, key string) (domain.TradingStats, bool, error)
	// SetStats stores stats under key.
	SetStats(ctx context.Context, key string, stats domain.TradingStats) error
}

// Aggregator loads a user's trades from storage and runs the analytics over them.
// Store reads are the only blocking work; every computation is pure.
type Aggregator struct {
	tradeStore    storage.TradeStore
	strategyStore storage.StrategyStore
	snapshotStore storage.SnapshotStore

	cache  StatsCache
	logger *zap.Logger
	now    func() time.Time
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithCache enables content-keyed caching of TradingStats.
func WithCache(c StatsCache) Option {
	return func(a *Aggregator) { a.cache = c }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *Aggregator) { a.logger = l }
}

// WithClock overrides the snapshot timestamp source.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// NewAggregator creates a new aggregator. snapshotStore may be nil when
// snapshots are not persisted.
func NewAggregator(tradeStore storage.TradeStore, strategyStore storage.StrategyStore, snapshotStore storage.SnapshotStore, opts ...Option) *Aggregator {
	a := &Aggregator{
		tradeStore:    tradeStore,
		strategyStore: strategyStore,
		snapshotStore: snapshotStore,
		logger:        zap.NewNop(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.Named("aggregator")
	return a
}

// Trades returns the user's trades matching filter, ordered by trade date.
func (a *Aggregator) Trades(ctx context.Context, userID string, filter storage.TradeFilter) ([]*domain.TradeRecord, error) {
	trades, err := a.tradeStore.GetByUser(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("load trades for %s: %w", userID, err)
	}
	return trades, nil
}

// Stats computes TradingStats for the user's filtered trades.
// With a cache configured, identical trade content is computed once.
func (a *Aggregator) Stats(ctx context.Context, userID string, filter storage.TradeFilter, initialBalance float64) (domain.TradingStats, error) {
	start := time.Now()

	trades, err := a.Trades(ctx, userID, filter)
	if err != nil {
		return domain.TradingStats{}, err
	}

	stats := a.statsFor(ctx, trades, initialBalance)
	observability.RecordComputation("stats", len(trades), time.Since(start).Seconds())
	return stats, nil
}

// statsFor consults the cache around CalculateTradingStats.
// Cache failures degrade to recomputation.
func (a *Aggregator) statsFor(ctx context.Context, trades []*domain.TradeRecord, initialBalance float64) domain.TradingStats {
	if a.cache == nil {
		return CalculateTradingStats(trades, initialBalance)
	}

	key := ContentKey(trades, initialBalance)
	cached, ok, err := a.cache.GetStats(ctx, key)
	if err != nil {
		observability.RecordCacheError()
		a.logger.Warn("stats cache read failed", zap.String("key", key), zap.Error(err))
	}
	if ok {
		observability.RecordCacheLookup(true)
		return cached
	}
	observability.RecordCacheLookup(false)

	stats := CalculateTradingStats(trades, initialBalance)
	if err := a.cache.SetStats(ctx, key, stats); err != nil {
		observability.RecordCacheError()
		a.logger.Warn("stats cache write failed", zap.String("key", key), zap.Error(err))
	}
	return stats
}

// EquityCurve computes the cumulative P&L curve for the user's filtered trades.
func (a *Aggregator) EquityCurve(ctx context.Context, userID string, filter storage.TradeFilter) ([]domain.EquityCurvePoint, error) {
	start := time.Now()

	trades, err := a.Trades(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	curve := GenerateEquityCurve(trades)
	observability.RecordComputation("equity_curve", len(trades), time.Since(start).Seconds())
	return curve, nil
}

// StrategyPerformance computes the per-strategy breakdown for the user's filtered trades.
func (a *Aggregator) StrategyPerformance(ctx context.Context, userID string, filter storage.TradeFilter) ([]domain.StrategyPerformance, error) {
	start := time.Now()

	trades, err := a.Trades(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	strategies, err := a.Strategies(ctx, userID, trades)
	if err != nil {
		return nil, err
	}

	perf := CalculateStrategyPerformance(trades, strategies)
	observability.RecordComputation("strategy_performance", len(trades), time.Since(start).Seconds())
	return perf, nil
}

// Strategies returns the user's defined strategies followed by any strategy
// tagged on trades but not defined, in first-seen order.
func (a *Aggregator) Strategies(ctx context.Context, userID string, trades []*domain.TradeRecord) ([]*domain.Strategy, error) {
	var defined []*domain.Strategy
	if a.strategyStore != nil {
		var err error
		defined, err = a.strategyStore.GetByUser(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("load strategies for %s: %w", userID, err)
		}
	}

	known := make(map[string]struct{}, len(defined))
	for _, s := range defined {
		known[s.ID] = struct{}{}
	}

	result := defined
	for _, t := range trades {
		for _, tag := range t.Strategies {
			if _, ok := known[tag.ID]; ok {
				continue
			}
			known[tag.ID] = struct{}{}
			result = append(result, &domain.Strategy{ID: tag.ID, UserID: userID, Name: tag.Name})
			a.logger.Debug("strategy tagged but not defined",
				zap.String("user_id", userID), zap.String("strategy_id", tag.ID))
		}
	}
	return result, nil
}

// Streaks runs the streak analysis over the user's filtered trades.
func (a *Aggregator) Streaks(ctx context.Context, userID string, filter storage.TradeFilter) (domain.StreakAnalysis, error) {
	start := time.Now()

	trades, err := a.Trades(ctx, userID, filter)
	if err != nil {
		return domain.StreakAnalysis{}, err
	}

	analysis := AnalyzeStreaks(trades)
	observability.RecordComputation("streaks", len(trades), time.Since(start).Seconds())
	return analysis, nil
}

// HoldingTime computes holding-time statistics over the user's filtered trades.
func (a *Aggregator) HoldingTime(ctx context.Context, userID string, filter storage.TradeFilter) (domain.HoldingTimeStats, error) {
	start := time.Now()

	trades, err := a.Trades(ctx, userID, filter)
	if err != nil {
		return domain.HoldingTimeStats{}, err
	}

	hold := CalculateHoldingTime(trades)
	observability.RecordComputation("holding_time", len(trades), time.Since(start).Seconds())
	return hold, nil
}

// ComputeSnapshot computes stats over all of the user's trades without persisting.
func (a *Aggregator) ComputeSnapshot(ctx context.Context, userID string, initialBalance float64) (*domain.StatsSnapshot, error) {
	trades, err := a.Trades(ctx, userID, storage.TradeFilter{})
	if err != nil {
		return nil, err
	}

	return &domain.StatsSnapshot{
		SnapshotID:     uuid.NewString(),
		UserID:         userID,
		ComputedAt:     a.now().UTC(),
		ContentKey:     ContentKey(trades, initialBalance),
		InitialBalance: initialBalance,
		Stats:          a.statsFor(ctx, trades, initialBalance),
	}, nil
}

// ComputeAndStore computes and persists a stats snapshot (append-only).
func (a *Aggregator) ComputeAndStore(ctx context.Context, userID string, initialBalance float64) (*domain.StatsSnapshot, error) {
	if a.snapshotStore == nil {
		return nil, fmt.Errorf("snapshot store not configured")
	}

	snap, err := a.ComputeSnapshot(ctx, userID, initialBalance)
	if err != nil {
		return nil, err
	}

	if err := a.snapshotStore.Insert(ctx, snap); err != nil {
		return nil, fmt.Errorf("store snapshot: %w", err)
	}
	observability.RecordSnapshotStored()

	a.logger.Info("stats snapshot stored",
		zap.String("user_id", userID),
		zap.String("snapshot_id", snap.SnapshotID),
		zap.Int("total_trades", snap.Stats.TotalTrades))
	return snap, nil
}

// LatestSnapshot returns the most recent stored snapshot of the user.
func (a *Aggregator) LatestSnapshot(ctx context.Context, userID string) (*domain.StatsSnapshot, error) {
	if a.snapshotStore == nil {
		return nil, storage.ErrNotFound
	}
	return a.snapshotStore.GetLatest(ctx, userID)
}

// Snapshots returns the user's stored snapshots ordered by computed_at ASC.
// Without a snapshot store the history is empty.
func (a *Aggregator) Snapshots(ctx context.Context, userID string) ([]*domain.StatsSnapshot, error) {
	if a.snapshotStore == nil {
		return nil, nil
	}
	return a.snapshotStore.GetByUser(ctx, userID)
}
