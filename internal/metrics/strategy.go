package metrics

import (
	"math"
	"sort"

	"trade-journal/internal/domain"
)

// CalculateStrategyPerformance computes one StrategyPerformance per requested
// strategy, sorted by strategy total P&L DESC (stable on ties).
// Strategies without trades are present with zeroed stats.
func CalculateStrategyPerformance(trades []*domain.TradeRecord, strategies []*domain.Strategy) []domain.StrategyPerformance {
	portfolioPnl := 0.0
	for _, t := range trades {
		portfolioPnl += NetPnl(t)
	}

	result := make([]domain.StrategyPerformance, 0, len(strategies))
	for _, s := range strategies {
		var tagged []*domain.TradeRecord
		for _, t := range trades {
			if t.HasStrategy(s.ID) {
				tagged = append(tagged, t)
			}
		}

		stats := CalculateTradingStats(tagged, 0)
		result = append(result, domain.StrategyPerformance{
			StrategyID:   s.ID,
			StrategyName: s.Name,
			Stats:        stats,
			Contribution: computeContribution(stats.TotalPnl, portfolioPnl),
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Stats.TotalPnl > result[j].Stats.TotalPnl
	})
	return result
}

// computeContribution: strategyPnl / |portfolioPnl| * 100, 0 when portfolio is 0.
func computeContribution(strategyPnl, portfolioPnl float64) float64 {
	if portfolioPnl == 0 {
		return 0
	}
	return strategyPnl / math.Abs(portfolioPnl) * 100
}
