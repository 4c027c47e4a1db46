package pipeline

import (
	"context"
	"testing"

	"trade-journal/internal/metrics"
	"trade-journal/internal/storage"
	"trade-journal/internal/storage/memory"
)

func TestLoadFixtures(t *testing.T) {
	ctx := context.Background()
	tradeStore := memory.NewTradeStore()
	strategyStore := memory.NewStrategyStore()

	if err := LoadFixtures(ctx, tradeStore, strategyStore); err != nil {
		t.Fatalf("LoadFixtures failed: %v", err)
	}

	trades, err := tradeStore.GetByUser(ctx, FixtureUserID, storage.TradeFilter{})
	if err != nil {
		t.Fatalf("GetByUser failed: %v", err)
	}
	if len(trades) != 16 {
		t.Fatalf("expected 16 trades, got %d", len(trades))
	}

	stats := metrics.CalculateTradingStats(trades, 10000)
	if stats.WinningTrades != 9 || stats.LosingTrades != 5 || stats.BreakevenTrades != 1 {
		t.Errorf("outcomes = %d/%d/%d, want 9/5/1", stats.WinningTrades, stats.LosingTrades, stats.BreakevenTrades)
	}
	if stats.TotalPnl != 298 {
		t.Errorf("TotalPnl = %f, want 298", stats.TotalPnl)
	}

	strategies, err := strategyStore.GetByUser(ctx, FixtureUserID)
	if err != nil {
		t.Fatalf("GetByUser strategies failed: %v", err)
	}
	if len(strategies) != 3 {
		t.Errorf("expected 3 strategies, got %d", len(strategies))
	}
}

func TestLoadFixtures_Twice(t *testing.T) {
	ctx := context.Background()
	tradeStore := memory.NewTradeStore()
	strategyStore := memory.NewStrategyStore()

	if err := LoadFixtures(ctx, tradeStore, strategyStore); err != nil {
		t.Fatalf("first load failed: %v", err)
	}
	if err := LoadFixtures(ctx, tradeStore, strategyStore); err == nil {
		t.Error("expected duplicate error on second load")
	}
}
