package metrics

import (
	"math"

	"trade-journal/internal/domain"
)

// NetPnl resolves the single P&L figure of a trade: realized, else manual, else 0.
// Every calculation in this package reads P&L through this function.
func NetPnl(t *domain.TradeRecord) float64 {
	if t.RealizedPnl != nil {
		return *t.RealizedPnl
	}
	if t.Pnl != nil {
		return *t.Pnl
	}
	return 0
}

// CalculateRR returns the R-multiple of a trade.
//
// Magnitude is |exit-entry| / |entry-stop|. The sign follows the categorical
// result, not price movement: a win is >= 0, anything else is <= 0.
// Direction is not consulted; both distances are absolute.
// Returns 0 when stop or entry is missing or the risk distance is zero.
func CalculateRR(t *domain.TradeRecord) float64 {
	if t.StopLoss == nil || t.EntryPrice == nil {
		return 0
	}

	risk := math.Abs(*t.EntryPrice - *t.StopLoss)
	if risk == 0 {
		return 0
	}

	reward := 0.0
	if t.ExitPrice != nil {
		reward = math.Abs(*t.ExitPrice - *t.EntryPrice)
	}

	rr := reward / risk
	if t.Result != domain.ResultWin {
		return -rr
	}
	return rr
}
