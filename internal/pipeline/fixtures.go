package pipeline

import (
	"context"
	"time"

	"trade-journal/internal/domain"
	"trade-journal/internal/storage"
)

// FixtureUserID owns the demo journal.
const FixtureUserID = "demo"

// LoadFixtures populates stores with a small demo journal: three strategies,
// one of them never traded, and a month of FX trades with a mix of outcomes.
func LoadFixtures(ctx context.Context, tradeStore storage.TradeStore, strategyStore storage.StrategyStore) error {
	for _, s := range fixtureStrategies() {
		if err := strategyStore.Insert(ctx, s); err != nil {
			return err
		}
	}
	return tradeStore.InsertBulk(ctx, FixtureTrades())
}

func fixtureStrategies() []*domain.Strategy {
	return []*domain.Strategy{
		{ID: "strat_breakout", UserID: FixtureUserID, Name: "London Breakout", Description: "Range break at the London open"},
		{ID: "strat_pullback", UserID: FixtureUserID, Name: "Trend Pullback", Description: "Buy dips to the 20 EMA in trend"},
		{ID: "strat_news", UserID: FixtureUserID, Name: "News Fade"},
	}
}

var (
	breakout = domain.StrategyTag{ID: "strat_breakout", Name: "London Breakout"}
	pullback = domain.StrategyTag{ID: "strat_pullback", Name: "Trend Pullback"}
)

type fixtureTrade struct {
	id        string
	day       int // days after 2024-01-01
	pair      string
	direction domain.Direction
	entry     float64
	exit      float64
	stop      float64
	qty       float64
	pnl       float64
	result    domain.Result
	hold      time.Duration // zero when entry/exit times are unknown
	tags      []domain.StrategyTag
	manual    bool // P&L recorded in the manual column only
}

// FixtureTrades returns the demo journal in insertion order.
func FixtureTrades() []*domain.TradeRecord {
	rows := []fixtureTrade{
		{"trade_001", 0, "EURUSD", domain.DirectionLong, 1.1000, 1.1040, 1.0980, 10000, 40, domain.ResultWin, 3 * time.Hour, []domain.StrategyTag{breakout}, false},
		{"trade_002", 1, "GBPUSD", domain.DirectionShort, 1.2700, 1.2730, 1.2720, 10000, -30, domain.ResultLoss, 90 * time.Minute, []domain.StrategyTag{breakout}, false},
		{"trade_003", 2, "EURUSD", domain.DirectionLong, 1.0950, 1.1010, 1.0920, 10000, 60, domain.ResultWin, 5 * time.Hour, []domain.StrategyTag{pullback}, false},
		{"trade_004", 3, "USDJPY", domain.DirectionLong, 144.00, 144.60, 143.70, 1000, 42, domain.ResultWin, 26 * time.Hour, []domain.StrategyTag{pullback}, false},
		{"trade_005", 4, "EURUSD", domain.DirectionShort, 1.0990, 1.0990, 1.1010, 10000, 0, domain.ResultBreakeven, 45 * time.Minute, nil, false},
		{"trade_006", 7, "GBPUSD", domain.DirectionLong, 1.2650, 1.2625, 1.2625, 10000, -25, domain.ResultLoss, 2 * time.Hour, []domain.StrategyTag{breakout}, false},
		{"trade_007", 8, "USDJPY", domain.DirectionShort, 145.20, 145.55, 145.50, 1000, -24, domain.ResultLoss, 4 * time.Hour, []domain.StrategyTag{pullback}, false},
		{"trade_008", 9, "EURUSD", domain.DirectionLong, 1.0900, 1.0880, 1.0880, 10000, -20, domain.ResultLoss, 0, nil, true},
		{"trade_009", 10, "EURUSD", domain.DirectionLong, 1.0870, 1.0950, 1.0840, 10000, 80, domain.ResultWin, 7 * time.Hour, []domain.StrategyTag{breakout, pullback}, false},
		{"trade_010", 11, "GBPUSD", domain.DirectionShort, 1.2750, 1.2700, 1.2770, 10000, 50, domain.ResultWin, 3 * time.Hour, []domain.StrategyTag{breakout}, false},
		{"trade_011", 14, "USDJPY", domain.DirectionLong, 146.10, 146.40, 145.90, 1000, 20, domain.ResultWin, 0, []domain.StrategyTag{pullback}, true},
		{"trade_012", 15, "EURUSD", domain.DirectionShort, 1.0920, 1.0945, 1.0945, 10000, -25, domain.ResultLoss, 75 * time.Minute, []domain.StrategyTag{breakout}, false},
		{"trade_013", 16, "GBPUSD", domain.DirectionLong, 1.2680, 1.2740, 1.2650, 10000, 60, domain.ResultWin, 6 * time.Hour, []domain.StrategyTag{pullback}, false},
		{"trade_014", 17, "EURUSD", domain.DirectionLong, 1.0880, 1.0930, 1.0855, 10000, 50, domain.ResultWin, 4 * time.Hour, nil, false},
		{"trade_015", 18, "USDJPY", domain.DirectionShort, 147.00, 146.70, 147.20, 1000, 20, domain.ResultWin, 2 * time.Hour, []domain.StrategyTag{breakout}, false},
	}

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	trades := make([]*domain.TradeRecord, 0, len(rows)+1)
	for _, r := range rows {
		entry, exit, stop, pnl := r.entry, r.exit, r.stop, r.pnl
		t := &domain.TradeRecord{
			ID:         r.id,
			UserID:     FixtureUserID,
			Pair:       r.pair,
			Direction:  r.direction,
			EntryPrice: &entry,
			ExitPrice:  &exit,
			StopLoss:   &stop,
			Quantity:   r.qty,
			Result:     r.result,
			Status:     domain.StatusClosed,
			TradeDate:  base.AddDate(0, 0, r.day),
			Strategies: r.tags,
		}
		if r.manual {
			t.Pnl = &pnl
		} else {
			t.RealizedPnl = &pnl
		}
		if r.hold > 0 {
			in := t.TradeDate.Add(8 * time.Hour)
			out := in.Add(r.hold)
			t.EntryTime = &in
			t.ExitTime = &out
		}
		trades = append(trades, t)
	}

	// Still running: no result, contributes nothing to outcome counts.
	openEntry := 1.0860
	trades = append(trades, &domain.TradeRecord{
		ID:         "trade_016",
		UserID:     FixtureUserID,
		Pair:       "EURUSD",
		Direction:  domain.DirectionLong,
		EntryPrice: &openEntry,
		Quantity:   10000,
		Status:     domain.StatusOpen,
		TradeDate:  base.AddDate(0, 0, 21),
		Strategies: []domain.StrategyTag{breakout},
	})
	return trades
}
