package domain

import "time"

// StreakType classifies a run of trades.
type StreakType string

// StreakType constants
const (
	StreakWin  StreakType = "win"
	StreakLoss StreakType = "loss"
)

// StreakRecord is a maximal run of consecutive same-outcome trades in date order.
type StreakRecord struct {
	Type      StreakType
	Length    int
	StartDate time.Time
	EndDate   time.Time
	TotalPnl  float64
	Pairs     []string // distinct, in first-seen order
}

// StreakAnalysis aggregates all runs of a trade collection.
type StreakAnalysis struct {
	// CurrentStreak is the run containing the most recent trade, nil when that
	// trade is breakeven or has no result.
	CurrentStreak     *StreakRecord
	LongestWinStreak  *StreakRecord
	LongestLossStreak *StreakRecord

	// Length -> number of runs with that length.
	WinStreakDistribution  map[int]int
	LossStreakDistribution map[int]int

	AvgWinStreakLength  float64
	AvgLossStreakLength float64

	// Per-trade averages over trades in runs of length >= 2.
	AvgPnlDuringWinStreaks  float64
	AvgPnlDuringLossStreaks float64
	// Per-trade average over isolated (length-1) trades of either type.
	AvgPnlBaseline float64

	// Mean number of trades after a loss streak until cumulative P&L returns to
	// its level at the start of the streak. Unrecovered streaks are excluded.
	AvgRecoveryTrades float64
	RecoveredStreaks  int

	// Streaks lists every run in date order.
	Streaks []StreakRecord
}
