package reporting

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"trade-journal/internal/domain"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Trading Statistics\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("User: %s | Initial balance: %.2f\n\n", r.UserID, r.InitialBalance))

	// Data Summary
	d := r.DataSummary
	sb.WriteString("## Data Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Total Trades | %d |\n", d.TotalTrades))
	sb.WriteString(fmt.Sprintf("| Closed / Open | %d / %d |\n", d.ClosedTrades, d.OpenTrades))
	sb.WriteString(fmt.Sprintf("| Pairs | %s |\n", strings.Join(d.Pairs, ", ")))
	sb.WriteString(fmt.Sprintf("| Date Range | %s .. %s |\n", formatDate(d.DateRangeStart), formatDate(d.DateRangeEnd)))
	sb.WriteString("\n")

	if d.TotalTrades == 0 {
		sb.WriteString("No trades in range.\n")
		return sb.String()
	}

	writeStats(&sb, r.Stats)
	writeStrategies(&sb, r.Strategies)
	writeStreaks(&sb, r.Streaks)
	writeHoldingTime(&sb, r.HoldingTime)

	return sb.String()
}

func writeStats(sb *strings.Builder, s domain.TradingStats) {
	sb.WriteString("## Performance\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Wins / Losses / Breakeven | %d / %d / %d |\n",
		s.WinningTrades, s.LosingTrades, s.BreakevenTrades))
	sb.WriteString(fmt.Sprintf("| Win Rate | %.2f%% |\n", s.WinRate))
	sb.WriteString(fmt.Sprintf("| Total P&L | %.2f |\n", s.TotalPnl))
	sb.WriteString(fmt.Sprintf("| Avg P&L | %.2f |\n", s.AvgPnl))
	sb.WriteString(fmt.Sprintf("| Gross Profit / Loss | %.2f / %.2f |\n", s.GrossProfit, s.GrossLoss))
	sb.WriteString(fmt.Sprintf("| Avg Win / Loss | %.2f / %.2f |\n", s.AvgWin, s.AvgLoss))
	sb.WriteString(fmt.Sprintf("| Largest Win / Loss | %.2f / %.2f |\n", s.LargestWin, s.LargestLoss))
	sb.WriteString(fmt.Sprintf("| Profit Factor | %s |\n", FormatProfitFactor(s.ProfitFactor)))
	sb.WriteString(fmt.Sprintf("| Expectancy | %.2f |\n", s.Expectancy))
	sb.WriteString(fmt.Sprintf("| Avg R:R | %.2f |\n", s.AvgRR))
	sb.WriteString(fmt.Sprintf("| Sharpe Ratio | %.2f |\n", s.SharpeRatio))
	sb.WriteString(fmt.Sprintf("| Max Drawdown | %.2f (%.2f%%) |\n", s.MaxDrawdown, s.MaxDrawdownPercent))
	sb.WriteString(fmt.Sprintf("| Max Consecutive Wins / Losses | %d / %d |\n", s.ConsecutiveWins, s.ConsecutiveLosses))
	sb.WriteString("\n")
}

func writeStrategies(sb *strings.Builder, rows []domain.StrategyPerformance) {
	sb.WriteString("## Strategy Performance\n\n")
	if len(rows) == 0 {
		sb.WriteString("No strategies defined.\n\n")
		return
	}
	sb.WriteString("| Strategy | Trades | WinRate | P&L | Profit Factor | Contribution |\n")
	sb.WriteString("|----------|--------|---------|-----|---------------|--------------|\n")
	for _, p := range rows {
		name := p.StrategyName
		if name == "" {
			name = p.StrategyID
		}
		sb.WriteString(fmt.Sprintf("| %s | %d | %.2f%% | %.2f | %s | %.2f%% |\n",
			name, p.Stats.TotalTrades, p.Stats.WinRate, p.Stats.TotalPnl,
			FormatProfitFactor(p.Stats.ProfitFactor), p.Contribution))
	}
	sb.WriteString("\n")
}

func writeStreaks(sb *strings.Builder, a domain.StreakAnalysis) {
	sb.WriteString("## Streaks\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Current | %s |\n", describeStreak(a.CurrentStreak)))
	sb.WriteString(fmt.Sprintf("| Longest Win | %s |\n", describeStreak(a.LongestWinStreak)))
	sb.WriteString(fmt.Sprintf("| Longest Loss | %s |\n", describeStreak(a.LongestLossStreak)))
	sb.WriteString(fmt.Sprintf("| Avg Win / Loss Streak | %.2f / %.2f |\n", a.AvgWinStreakLength, a.AvgLossStreakLength))
	sb.WriteString(fmt.Sprintf("| Avg P&L in Win / Loss Streaks | %.2f / %.2f |\n", a.AvgPnlDuringWinStreaks, a.AvgPnlDuringLossStreaks))
	sb.WriteString(fmt.Sprintf("| Avg P&L Isolated | %.2f |\n", a.AvgPnlBaseline))
	sb.WriteString(fmt.Sprintf("| Avg Recovery (trades) | %.2f over %d |\n", a.AvgRecoveryTrades, a.RecoveredStreaks))
	sb.WriteString("\n")

	if len(a.WinStreakDistribution)+len(a.LossStreakDistribution) > 0 {
		sb.WriteString("| Length | Win Runs | Loss Runs |\n")
		sb.WriteString("|--------|----------|-----------|\n")
		for _, l := range distributionLengths(a) {
			sb.WriteString(fmt.Sprintf("| %d | %d | %d |\n", l, a.WinStreakDistribution[l], a.LossStreakDistribution[l]))
		}
		sb.WriteString("\n")
	}
}

func describeStreak(s *domain.StreakRecord) string {
	if s == nil {
		return "-"
	}
	return fmt.Sprintf("%d %s (%s .. %s, %.2f)", s.Length, s.Type, formatDate(s.StartDate), formatDate(s.EndDate), s.TotalPnl)
}

func distributionLengths(a domain.StreakAnalysis) []int {
	seen := make(map[int]struct{})
	for l := range a.WinStreakDistribution {
		seen[l] = struct{}{}
	}
	for l := range a.LossStreakDistribution {
		seen[l] = struct{}{}
	}
	lengths := make([]int, 0, len(seen))
	for l := range seen {
		lengths = append(lengths, l)
	}
	sort.Ints(lengths)
	return lengths
}

func writeHoldingTime(sb *strings.Builder, h domain.HoldingTimeStats) {
	sb.WriteString("## Holding Time\n\n")
	if h.Trades == 0 {
		sb.WriteString("No trades with entry and exit times.\n\n")
		return
	}
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Trades Measured | %d |\n", h.Trades))
	sb.WriteString(fmt.Sprintf("| Avg Hold | %s |\n", formatDuration(h.AvgHold)))
	sb.WriteString(fmt.Sprintf("| Avg Hold Winners | %s |\n", formatDuration(h.AvgHoldWinners)))
	sb.WriteString(fmt.Sprintf("| Avg Hold Losers | %s |\n", formatDuration(h.AvgHoldLosers)))
	sb.WriteString(fmt.Sprintf("| Longest / Shortest | %s / %s |\n", formatDuration(h.LongestHold), formatDuration(h.ShortestHold)))
	sb.WriteString("\n")
}
