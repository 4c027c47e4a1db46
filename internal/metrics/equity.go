package metrics

import "trade-journal/internal/domain"

// GenerateEquityCurve returns one point per trade in TradeDate ASC order
// (stable on ties) with the running sum of net P&L.
func GenerateEquityCurve(trades []*domain.TradeRecord) []domain.EquityCurvePoint {
	sorted := sortedByDate(trades)
	curve := make([]domain.EquityCurvePoint, len(sorted))

	cumulative := 0.0
	for i, t := range sorted {
		pnl := NetPnl(t)
		cumulative += pnl
		curve[i] = domain.EquityCurvePoint{
			TradeID:       t.ID,
			Date:          t.TradeDate,
			Pnl:           pnl,
			CumulativePnl: cumulative,
			Pair:          t.Pair,
			Direction:     t.Direction,
		}
	}
	return curve
}
