package metrics

import (
	"time"

	"trade-journal/internal/domain"
)

// CalculateHoldingTime summarizes holding durations of trades that carry both
// an entry and an exit timestamp. Other trades are ignored.
func CalculateHoldingTime(trades []*domain.TradeRecord) domain.HoldingTimeStats {
	var stats domain.HoldingTimeStats
	var all, winners, losers, longest, shortest time.Duration

	for _, t := range trades {
		if t.EntryTime == nil || t.ExitTime == nil {
			continue
		}
		d := t.ExitTime.Sub(*t.EntryTime)
		if d < 0 {
			continue
		}

		if stats.Trades == 0 || d > longest {
			longest = d
		}
		if stats.Trades == 0 || d < shortest {
			shortest = d
		}
		stats.Trades++
		all += d

		switch t.Result {
		case domain.ResultWin:
			winners += d
			stats.WinnersMeasured++
		case domain.ResultLoss:
			losers += d
			stats.LosersMeasured++
		}
	}

	stats.AvgHold = avgDuration(all, stats.Trades)
	stats.AvgHoldWinners = avgDuration(winners, stats.WinnersMeasured)
	stats.AvgHoldLosers = avgDuration(losers, stats.LosersMeasured)
	stats.LongestHold = longest
	stats.ShortestHold = shortest
	return stats
}

func avgDuration(total time.Duration, n int) time.Duration {
	if n == 0 {
		return 0
	}
	return total / time.Duration(n)
}
