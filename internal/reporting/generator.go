package reporting

import (
	"context"
	"sort"
	"time"

	"trade-journal/internal/domain"
	"trade-journal/internal/metrics"
	"trade-journal/internal/storage"
)

// Generator produces reports from stored trades.
type Generator struct {
	aggregator *metrics.Aggregator
	now        func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(aggregator *metrics.Aggregator) *Generator {
	return &Generator{
		aggregator: aggregator,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate loads the user's filtered trades and strategies and builds a report.
func (g *Generator) Generate(ctx context.Context, userID string, filter storage.TradeFilter, initialBalance float64) (*Report, error) {
	trades, err := g.aggregator.Trades(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	strategies, err := g.aggregator.Strategies(ctx, userID, trades)
	if err != nil {
		return nil, err
	}

	r := Build(userID, trades, strategies, initialBalance)
	r.GeneratedAt = g.now()
	return r, nil
}

// Build computes a report from an in-memory trade collection. GeneratedAt is
// left zero for the caller to set.
func Build(userID string, trades []*domain.TradeRecord, strategies []*domain.Strategy, initialBalance float64) *Report {
	return &Report{
		UserID:         userID,
		InitialBalance: initialBalance,
		DataSummary:    summarize(trades),
		Stats:          metrics.CalculateTradingStats(trades, initialBalance),
		EquityCurve:    metrics.GenerateEquityCurve(trades),
		Strategies:     metrics.CalculateStrategyPerformance(trades, strategies),
		Streaks:        metrics.AnalyzeStreaks(trades),
		HoldingTime:    metrics.CalculateHoldingTime(trades),
	}
}

func summarize(trades []*domain.TradeRecord) DataSummary {
	s := DataSummary{TotalTrades: len(trades)}

	pairs := make(map[string]struct{})
	for i, t := range trades {
		switch t.Status {
		case domain.StatusOpen:
			s.OpenTrades++
		case domain.StatusClosed:
			s.ClosedTrades++
		}
		pairs[t.Pair] = struct{}{}

		if i == 0 || t.TradeDate.Before(s.DateRangeStart) {
			s.DateRangeStart = t.TradeDate
		}
		if i == 0 || t.TradeDate.After(s.DateRangeEnd) {
			s.DateRangeEnd = t.TradeDate
		}
	}

	s.Pairs = make([]string, 0, len(pairs))
	for p := range pairs {
		s.Pairs = append(s.Pairs, p)
	}
	sort.Strings(s.Pairs)
	return s
}
