package domain

import (
	"math"
	"time"
)

// TradingStats is the aggregate performance of a trade collection.
// Always recomputed from scratch; never partially updated.
type TradingStats struct {
	// Counts
	TotalTrades     int
	WinningTrades   int
	LosingTrades    int
	BreakevenTrades int
	WinRate         float64 // percent, 0..100

	// P&L
	TotalPnl    float64
	AvgPnl      float64
	GrossProfit float64 // sum over winners
	GrossLoss   float64 // |sum over losers|, never negative
	LargestWin  float64
	LargestLoss float64 // absolute value
	AvgWin      float64
	AvgLoss     float64 // absolute value

	// Ratios
	AvgRR        float64
	ProfitFactor float64 // +Inf when there is profit and no loss
	Expectancy   float64
	SharpeRatio  float64 // per-trade returns annualized as if daily

	// Drawdown
	MaxDrawdown        float64
	MaxDrawdownPercent float64 // capped at 100

	// Streaks
	ConsecutiveWins   int
	ConsecutiveLosses int
}

// ProfitFactorUnbounded reports whether the profit factor is +Inf.
func (s TradingStats) ProfitFactorUnbounded() bool {
	return math.IsInf(s.ProfitFactor, 1)
}

// EquityCurvePoint is one step of the cumulative P&L sequence.
type EquityCurvePoint struct {
	TradeID       string
	Date          time.Time
	Pnl           float64 // net P&L of this trade
	CumulativePnl float64
	Pair          string
	Direction     Direction
}

// HoldingTimeStats summarizes how long trades were held.
// Only trades with both entry and exit timestamps are counted.
type HoldingTimeStats struct {
	Trades          int
	AvgHold         time.Duration
	AvgHoldWinners  time.Duration
	AvgHoldLosers   time.Duration
	LongestHold     time.Duration
	ShortestHold    time.Duration
	WinnersMeasured int
	LosersMeasured  int
}

// StatsSnapshot is a persisted copy of TradingStats for one user at a point in time.
// Corresponds to stats_snapshots table (ClickHouse).
type StatsSnapshot struct {
	SnapshotID     string
	UserID         string
	ComputedAt     time.Time
	ContentKey     string // hash of the trade collection the stats were computed from
	InitialBalance float64
	Stats          TradingStats
}
