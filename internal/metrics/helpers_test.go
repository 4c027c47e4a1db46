package metrics

import (
	"time"

	"trade-journal/internal/domain"
)

func fp(v float64) *float64 { return &v }

func day(d int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, d)
}

// mkTrade builds a closed EURUSD trade on day d with realized P&L.
func mkTrade(id string, d int, result domain.Result, pnl float64) *domain.TradeRecord {
	return &domain.TradeRecord{
		ID:          id,
		UserID:      "u1",
		Pair:        "EURUSD",
		Direction:   domain.DirectionLong,
		Quantity:    1,
		RealizedPnl: fp(pnl),
		Result:      result,
		Status:      domain.StatusClosed,
		TradeDate:   day(d),
	}
}

// sequence builds trades on consecutive days from a result pattern
// ('W', 'L', 'B', '-') and matching P&L values.
func sequence(pattern string, pnls ...float64) []*domain.TradeRecord {
	trades := make([]*domain.TradeRecord, len(pattern))
	for i, c := range pattern {
		var r domain.Result
		switch c {
		case 'W':
			r = domain.ResultWin
		case 'L':
			r = domain.ResultLoss
		case 'B':
			r = domain.ResultBreakeven
		}
		trades[i] = mkTrade(string(rune('a'+i)), i, r, pnls[i])
	}
	return trades
}
