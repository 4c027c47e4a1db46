package reporting

import (
	"time"

	"trade-journal/internal/domain"
)

// Report is the full analytics report of one user's journal.
type Report struct {
	// Metadata
	GeneratedAt    time.Time
	UserID         string
	InitialBalance float64

	// Data Summary
	DataSummary DataSummary

	Stats       domain.TradingStats
	EquityCurve []domain.EquityCurvePoint
	// Sorted by total P&L DESC
	Strategies  []domain.StrategyPerformance
	Streaks     domain.StreakAnalysis
	HoldingTime domain.HoldingTimeStats
}

// DataSummary describes the trade collection a report was built from.
type DataSummary struct {
	TotalTrades    int
	OpenTrades     int
	ClosedTrades   int
	Pairs          []string // distinct, sorted
	DateRangeStart time.Time
	DateRangeEnd   time.Time
}
