package metrics

import (
	"math"

	"trade-journal/internal/domain"
)

// tradingDaysPerYear annualizes the per-trade Sharpe approximation.
const tradingDaysPerYear = 252

// CalculateTradingStats folds a trade collection into TradingStats.
//
// Trades without a result count toward TotalTrades and P&L sums only.
// Order-dependent metrics (drawdown, consecutive streaks) are computed over a
// copy sorted by TradeDate ASC. initialBalance only affects MaxDrawdownPercent.
func CalculateTradingStats(trades []*domain.TradeRecord, initialBalance float64) domain.TradingStats {
	n := len(trades)
	if n == 0 {
		return domain.TradingStats{}
	}

	var wins, losses, breakevens []*domain.TradeRecord
	pnls := make([]float64, n)
	totalPnl := 0.0
	for i, t := range trades {
		switch t.Result {
		case domain.ResultWin:
			wins = append(wins, t)
		case domain.ResultLoss:
			losses = append(losses, t)
		case domain.ResultBreakeven:
			breakevens = append(breakevens, t)
		}
		pnls[i] = NetPnl(t)
		totalPnl += pnls[i]
	}

	grossProfit := sumPnl(wins)
	grossLoss := math.Abs(sumPnl(losses))
	winRate := computeWinRate(len(wins), n)
	avgWin := safeDiv(grossProfit, len(wins))
	avgLoss := safeDiv(grossLoss, len(losses))

	sorted := sortedByDate(trades)
	maxDD, maxDDPct := computeMaxDrawdown(sorted, initialBalance)
	consecutiveWins, consecutiveLosses := computeConsecutiveStreaks(sorted)

	return domain.TradingStats{
		TotalTrades:     n,
		WinningTrades:   len(wins),
		LosingTrades:    len(losses),
		BreakevenTrades: len(breakevens),
		WinRate:         winRate,

		TotalPnl:    totalPnl,
		AvgPnl:      totalPnl / float64(n),
		GrossProfit: grossProfit,
		GrossLoss:   grossLoss,
		LargestWin:  largestWin(wins),
		LargestLoss: largestLoss(losses),
		AvgWin:      avgWin,
		AvgLoss:     avgLoss,

		AvgRR:        computeAvgRR(trades),
		ProfitFactor: computeProfitFactor(grossProfit, grossLoss),
		Expectancy:   winRate/100*avgWin - (1-winRate/100)*avgLoss,
		SharpeRatio:  computeSharpe(pnls),

		MaxDrawdown:        maxDD,
		MaxDrawdownPercent: maxDDPct,

		ConsecutiveWins:   consecutiveWins,
		ConsecutiveLosses: consecutiveLosses,
	}
}

// computeWinRate calculates win rate as wins / total * 100.
func computeWinRate(wins, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(wins) / float64(total) * 100
}

// computeProfitFactor: finite ratio, +Inf with profit and no loss, else 0.
func computeProfitFactor(grossProfit, grossLoss float64) float64 {
	if grossLoss > 0 {
		return grossProfit / grossLoss
	}
	if grossProfit > 0 {
		return math.Inf(1)
	}
	return 0
}

// computeAvgRR averages |rr| over trades whose rr is not exactly 0.
// A zero rr means "not applicable" (no stop, no entry, zero risk).
func computeAvgRR(trades []*domain.TradeRecord) float64 {
	sum := 0.0
	count := 0
	for _, t := range trades {
		rr := CalculateRR(t)
		if rr == 0 {
			continue
		}
		sum += math.Abs(rr)
		count++
	}
	return safeDiv(sum, count)
}

// computeMaxDrawdown calculates worst peak-to-trough on cumulative net P&L.
// max_drawdown = MAX(peak_cumulative - cumulative), peak starts at 0.
// Percent is relative to initialBalance + final peak, capped at 100.
// Trades must be in chronological order.
func computeMaxDrawdown(sorted []*domain.TradeRecord, initialBalance float64) (float64, float64) {
	cumulative := 0.0
	peak := 0.0
	maxDrawdown := 0.0

	for _, t := range sorted {
		cumulative += NetPnl(t)
		if cumulative > peak {
			peak = cumulative
		}
		if dd := peak - cumulative; dd > maxDrawdown {
			maxDrawdown = dd
		}
	}

	denom := initialBalance + peak
	if denom <= 0 {
		return maxDrawdown, 0
	}
	return maxDrawdown, math.Min(maxDrawdown/denom*100, 100)
}

// computeSharpe returns mean/stddev*sqrt(252) using population variance.
// This treats each trade as one daily return; it is an approximation.
func computeSharpe(pnls []float64) float64 {
	n := len(pnls)
	if n == 0 {
		return 0
	}
	mean := computeMean(pnls)
	variance := 0.0
	for _, p := range pnls {
		d := p - mean
		variance += d * d
	}
	variance /= float64(n)

	stdDev := math.Sqrt(variance)
	if stdDev == 0 {
		return 0
	}
	return mean / stdDev * math.Sqrt(tradingDaysPerYear)
}

// computeConsecutiveStreaks finds the longest win and loss runs.
// Breakeven and result-less trades reset both counters.
// Trades must be in chronological order.
func computeConsecutiveStreaks(sorted []*domain.TradeRecord) (int, int) {
	maxWins, maxLosses := 0, 0
	curWins, curLosses := 0, 0

	for _, t := range sorted {
		switch t.Result {
		case domain.ResultWin:
			curWins++
			curLosses = 0
			if curWins > maxWins {
				maxWins = curWins
			}
		case domain.ResultLoss:
			curLosses++
			curWins = 0
			if curLosses > maxLosses {
				maxLosses = curLosses
			}
		default:
			curWins = 0
			curLosses = 0
		}
	}
	return maxWins, maxLosses
}

// computeMean calculates arithmetic mean.
func computeMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func sumPnl(trades []*domain.TradeRecord) float64 {
	sum := 0.0
	for _, t := range trades {
		sum += NetPnl(t)
	}
	return sum
}

func largestWin(wins []*domain.TradeRecord) float64 {
	if len(wins) == 0 {
		return 0
	}
	best := NetPnl(wins[0])
	for _, t := range wins[1:] {
		best = math.Max(best, NetPnl(t))
	}
	return best
}

func largestLoss(losses []*domain.TradeRecord) float64 {
	if len(losses) == 0 {
		return 0
	}
	worst := NetPnl(losses[0])
	for _, t := range losses[1:] {
		worst = math.Min(worst, NetPnl(t))
	}
	return math.Abs(worst)
}

func safeDiv(sum float64, count int) float64 {
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}
