package reporting

import (
	"fmt"
	"strings"
	"time"

	"trade-journal/internal/domain"
)

// RenderEquityCurveCSV renders equity curve points as CSV string.
func RenderEquityCurveCSV(points []domain.EquityCurvePoint) string {
	var sb strings.Builder

	// Header
	sb.WriteString("trade_id,date,pair,direction,pnl,cumulative_pnl\n")

	// Rows
	for _, p := range points {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s,%s,%s\n",
			csvField(p.TradeID),
			p.Date.UTC().Format(time.RFC3339),
			csvField(p.Pair),
			p.Direction,
			formatMoney(p.Pnl),
			formatMoney(p.CumulativePnl),
		))
	}

	return sb.String()
}

// RenderStrategyCSV renders strategy performance rows as CSV string.
func RenderStrategyCSV(rows []domain.StrategyPerformance) string {
	var sb strings.Builder

	// Header
	sb.WriteString("strategy_id,strategy_name,total_trades,winning_trades,losing_trades,win_rate,")
	sb.WriteString("total_pnl,avg_pnl,profit_factor,expectancy,max_drawdown,contribution_pct\n")

	// Rows
	for _, r := range rows {
		s := r.Stats
		sb.WriteString(fmt.Sprintf("%s,%s,%d,%d,%d,%.6f,%s,%s,%s,%s,%s,%.6f\n",
			csvField(r.StrategyID),
			csvField(r.StrategyName),
			s.TotalTrades,
			s.WinningTrades,
			s.LosingTrades,
			s.WinRate,
			formatMoney(s.TotalPnl),
			formatMoney(s.AvgPnl),
			formatCSVFloat(s.ProfitFactor),
			formatMoney(s.Expectancy),
			formatMoney(s.MaxDrawdown),
			r.Contribution,
		))
	}

	return sb.String()
}

// csvField quotes values containing separators, quotes or newlines.
func csvField(s string) string {
	if !strings.ContainsAny(s, ",\"\r\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
