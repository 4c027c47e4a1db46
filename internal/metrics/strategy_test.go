package metrics

import (
	"testing"

	"trade-journal/internal/domain"
)

func tag(ids ...string) []domain.StrategyTag {
	tags := make([]domain.StrategyTag, len(ids))
	for i, id := range ids {
		tags[i] = domain.StrategyTag{ID: id, Name: id}
	}
	return tags
}

func TestCalculateStrategyPerformance(t *testing.T) {
	trades := sequence("WLWL", 30, -10, 20, -5)
	trades[0].Strategies = tag("breakout")
	trades[1].Strategies = tag("breakout", "news")
	trades[2].Strategies = tag("reversal")
	trades[3].Strategies = tag("news")

	strategies := []*domain.Strategy{
		{ID: "news", Name: "News"},
		{ID: "breakout", Name: "Breakout"},
		{ID: "idle", Name: "Idle"},
		{ID: "reversal", Name: "Reversal"},
	}

	perf := CalculateStrategyPerformance(trades, strategies)

	if len(perf) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(perf))
	}

	// breakout 20, reversal 20, idle 0, news -15; ties keep input order
	wantOrder := []string{"breakout", "reversal", "idle", "news"}
	for i, id := range wantOrder {
		if perf[i].StrategyID != id {
			t.Errorf("position %d: got %s, want %s", i, perf[i].StrategyID, id)
		}
	}

	// portfolio total = 35
	if !approx(perf[0].Contribution, 20.0/35.0*100) {
		t.Errorf("breakout contribution = %f", perf[0].Contribution)
	}
	if perf[3].Contribution >= 0 {
		t.Errorf("news contribution = %f, want negative", perf[3].Contribution)
	}
	if perf[0].StrategyName != "Breakout" || perf[0].Stats.TotalTrades != 2 {
		t.Errorf("breakout = %+v", perf[0])
	}
}

func TestCalculateStrategyPerformance_ZeroTradeStrategyPresent(t *testing.T) {
	perf := CalculateStrategyPerformance(sequence("W", 10), []*domain.Strategy{{ID: "unused", Name: "Unused"}})

	if len(perf) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(perf))
	}
	if perf[0].Stats.TotalTrades != 0 || perf[0].Stats.ProfitFactor != 0 || perf[0].Contribution != 0 {
		t.Errorf("expected zeroed entry, got %+v", perf[0])
	}
}

func TestCalculateStrategyPerformance_LosingPortfolio(t *testing.T) {
	trades := sequence("LL", -30, -10)
	trades[0].Strategies = tag("a")
	trades[1].Strategies = tag("b")

	perf := CalculateStrategyPerformance(trades, []*domain.Strategy{{ID: "a"}, {ID: "b"}})

	// |total| = 40; sign follows strategy P&L
	if !approx(perf[0].Contribution, -25) || !approx(perf[1].Contribution, -75) {
		t.Errorf("contributions = %f, %f, want -25, -75", perf[0].Contribution, perf[1].Contribution)
	}
}

func TestCalculateStrategyPerformance_FlatPortfolio(t *testing.T) {
	trades := sequence("WL", 10, -10)
	trades[0].Strategies = tag("a")

	perf := CalculateStrategyPerformance(trades, []*domain.Strategy{{ID: "a"}})
	if perf[0].Contribution != 0 {
		t.Errorf("contribution = %f, want 0", perf[0].Contribution)
	}
}
