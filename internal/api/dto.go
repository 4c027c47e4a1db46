package api

import (
	"fmt"
	"time"

	"trade-journal/internal/domain"
	"trade-journal/internal/journal"
)

// StatsResponse is the JSON form of domain.TradingStats.
// JSON has no infinity: an unbounded profit factor is reported as
// profit_factor null with profit_factor_unbounded true.
type StatsResponse struct {
	TotalTrades     int     `json:"total_trades"`
	WinningTrades   int     `json:"winning_trades"`
	LosingTrades    int     `json:"losing_trades"`
	BreakevenTrades int     `json:"breakeven_trades"`
	WinRate         float64 `json:"win_rate"`

	TotalPnl    float64 `json:"total_pnl"`
	AvgPnl      float64 `json:"avg_pnl"`
	GrossProfit float64 `json:"gross_profit"`
	GrossLoss   float64 `json:"gross_loss"`
	LargestWin  float64 `json:"largest_win"`
	LargestLoss float64 `json:"largest_loss"`
	AvgWin      float64 `json:"avg_win"`
	AvgLoss     float64 `json:"avg_loss"`

	AvgRR                 float64  `json:"avg_rr"`
	ProfitFactor          *float64 `json:"profit_factor"`
	ProfitFactorUnbounded bool     `json:"profit_factor_unbounded"`
	Expectancy            float64  `json:"expectancy"`
	SharpeRatio           float64  `json:"sharpe_ratio"`

	MaxDrawdown        float64 `json:"max_drawdown"`
	MaxDrawdownPercent float64 `json:"max_drawdown_percent"`

	ConsecutiveWins   int `json:"consecutive_wins"`
	ConsecutiveLosses int `json:"consecutive_losses"`
}

func newStatsResponse(s domain.TradingStats) StatsResponse {
	resp := StatsResponse{
		TotalTrades:        s.TotalTrades,
		WinningTrades:      s.WinningTrades,
		LosingTrades:       s.LosingTrades,
		BreakevenTrades:    s.BreakevenTrades,
		WinRate:            s.WinRate,
		TotalPnl:           s.TotalPnl,
		AvgPnl:             s.AvgPnl,
		GrossProfit:        s.GrossProfit,
		GrossLoss:          s.GrossLoss,
		LargestWin:         s.LargestWin,
		LargestLoss:        s.LargestLoss,
		AvgWin:             s.AvgWin,
		AvgLoss:            s.AvgLoss,
		AvgRR:              s.AvgRR,
		Expectancy:         s.Expectancy,
		SharpeRatio:        s.SharpeRatio,
		MaxDrawdown:        s.MaxDrawdown,
		MaxDrawdownPercent: s.MaxDrawdownPercent,
		ConsecutiveWins:    s.ConsecutiveWins,
		ConsecutiveLosses:  s.ConsecutiveLosses,
	}
	if s.ProfitFactorUnbounded() {
		resp.ProfitFactorUnbounded = true
	} else {
		pf := s.ProfitFactor
		resp.ProfitFactor = &pf
	}
	return resp
}

// EquityPointResponse is one equity curve point.
type EquityPointResponse struct {
	TradeID       string    `json:"trade_id"`
	Date          time.Time `json:"date"`
	Pnl           float64   `json:"pnl"`
	CumulativePnl float64   `json:"cumulative_pnl"`
	Pair          string    `json:"pair"`
	Direction     string    `json:"direction"`
}

func newEquityCurveResponse(points []domain.EquityCurvePoint) []EquityPointResponse {
	resp := make([]EquityPointResponse, len(points))
	for i, p := range points {
		resp[i] = EquityPointResponse{
			TradeID:       p.TradeID,
			Date:          p.Date,
			Pnl:           p.Pnl,
			CumulativePnl: p.CumulativePnl,
			Pair:          p.Pair,
			Direction:     string(p.Direction),
		}
	}
	return resp
}

// StrategyPerformanceResponse is one row of the per-strategy breakdown.
type StrategyPerformanceResponse struct {
	StrategyID   string        `json:"strategy_id"`
	StrategyName string        `json:"strategy_name"`
	Stats        StatsResponse `json:"stats"`
	Contribution float64       `json:"contribution"`
}

func newStrategyPerformanceResponse(rows []domain.StrategyPerformance) []StrategyPerformanceResponse {
	resp := make([]StrategyPerformanceResponse, len(rows))
	for i, r := range rows {
		resp[i] = StrategyPerformanceResponse{
			StrategyID:   r.StrategyID,
			StrategyName: r.StrategyName,
			Stats:        newStatsResponse(r.Stats),
			Contribution: r.Contribution,
		}
	}
	return resp
}

// StreakResponse is one run of same-outcome trades.
type StreakResponse struct {
	Type      string    `json:"type"`
	Length    int       `json:"length"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	TotalPnl  float64   `json:"total_pnl"`
	Pairs     []string  `json:"pairs"`
}

// StreakAnalysisResponse is the JSON form of domain.StreakAnalysis.
// Histogram keys are run lengths.
type StreakAnalysisResponse struct {
	CurrentStreak           *StreakResponse  `json:"current_streak"`
	LongestWinStreak        *StreakResponse  `json:"longest_win_streak"`
	LongestLossStreak       *StreakResponse  `json:"longest_loss_streak"`
	WinStreakDistribution   map[int]int      `json:"win_streak_distribution"`
	LossStreakDistribution  map[int]int      `json:"loss_streak_distribution"`
	AvgWinStreakLength      float64          `json:"avg_win_streak_length"`
	AvgLossStreakLength     float64          `json:"avg_loss_streak_length"`
	AvgPnlDuringWinStreaks  float64          `json:"avg_pnl_during_win_streaks"`
	AvgPnlDuringLossStreaks float64          `json:"avg_pnl_during_loss_streaks"`
	AvgPnlBaseline          float64          `json:"avg_pnl_baseline"`
	AvgRecoveryTrades       float64          `json:"avg_recovery_trades"`
	RecoveredStreaks        int              `json:"recovered_streaks"`
	Streaks                 []StreakResponse `json:"streaks"`
}

func newStreakResponse(s *domain.StreakRecord) *StreakResponse {
	if s == nil {
		return nil
	}
	pairs := s.Pairs
	if pairs == nil {
		pairs = []string{}
	}
	return &StreakResponse{
		Type:      string(s.Type),
		Length:    s.Length,
		StartDate: s.StartDate,
		EndDate:   s.EndDate,
		TotalPnl:  s.TotalPnl,
		Pairs:     pairs,
	}
}

func newStreakAnalysisResponse(a domain.StreakAnalysis) StreakAnalysisResponse {
	resp := StreakAnalysisResponse{
		CurrentStreak:           newStreakResponse(a.CurrentStreak),
		LongestWinStreak:        newStreakResponse(a.LongestWinStreak),
		LongestLossStreak:       newStreakResponse(a.LongestLossStreak),
		WinStreakDistribution:   a.WinStreakDistribution,
		LossStreakDistribution:  a.LossStreakDistribution,
		AvgWinStreakLength:      a.AvgWinStreakLength,
		AvgLossStreakLength:     a.AvgLossStreakLength,
		AvgPnlDuringWinStreaks:  a.AvgPnlDuringWinStreaks,
		AvgPnlDuringLossStreaks: a.AvgPnlDuringLossStreaks,
		AvgPnlBaseline:          a.AvgPnlBaseline,
		AvgRecoveryTrades:       a.AvgRecoveryTrades,
		RecoveredStreaks:        a.RecoveredStreaks,
		Streaks:                 make([]StreakResponse, len(a.Streaks)),
	}
	for i := range a.Streaks {
		resp.Streaks[i] = *newStreakResponse(&a.Streaks[i])
	}
	return resp
}

// HoldingTimeResponse reports durations in seconds.
type HoldingTimeResponse struct {
	Trades                int     `json:"trades"`
	AvgHoldSeconds        float64 `json:"avg_hold_seconds"`
	AvgHoldWinnersSeconds float64 `json:"avg_hold_winners_seconds"`
	AvgHoldLosersSeconds  float64 `json:"avg_hold_losers_seconds"`
	LongestHoldSeconds    float64 `json:"longest_hold_seconds"`
	ShortestHoldSeconds   float64 `json:"shortest_hold_seconds"`
	WinnersMeasured       int     `json:"winners_measured"`
	LosersMeasured        int     `json:"losers_measured"`
}

func newHoldingTimeResponse(h domain.HoldingTimeStats) HoldingTimeResponse {
	return HoldingTimeResponse{
		Trades:                h.Trades,
		AvgHoldSeconds:        h.AvgHold.Seconds(),
		AvgHoldWinnersSeconds: h.AvgHoldWinners.Seconds(),
		AvgHoldLosersSeconds:  h.AvgHoldLosers.Seconds(),
		LongestHoldSeconds:    h.LongestHold.Seconds(),
		ShortestHoldSeconds:   h.ShortestHold.Seconds(),
		WinnersMeasured:       h.WinnersMeasured,
		LosersMeasured:        h.LosersMeasured,
	}
}

// SnapshotResponse is a persisted stats snapshot.
type SnapshotResponse struct {
	SnapshotID     string        `json:"snapshot_id"`
	UserID         string        `json:"user_id"`
	ComputedAt     time.Time     `json:"computed_at"`
	ContentKey     string        `json:"content_key"`
	InitialBalance float64       `json:"initial_balance"`
	Stats          StatsResponse `json:"stats"`
}

func newSnapshotResponse(s *domain.StatsSnapshot) SnapshotResponse {
	return SnapshotResponse{
		SnapshotID:     s.SnapshotID,
		UserID:         s.UserID,
		ComputedAt:     s.ComputedAt,
		ContentKey:     s.ContentKey,
		InitialBalance: s.InitialBalance,
		Stats:          newStatsResponse(s.Stats),
	}
}

// StrategyTagDTO tags a trade with a strategy.
type StrategyTagDTO struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// TradeDTO is the JSON form of a trade, used for both requests and responses.
// Dates accept date-only or RFC 3339 values.
type TradeDTO struct {
	ID              string           `json:"id"`
	UserID          string           `json:"user_id"`
	Pair            string           `json:"pair"`
	Direction       string           `json:"direction"`
	EntryPrice      *float64         `json:"entry_price,omitempty"`
	ExitPrice       *float64         `json:"exit_price,omitempty"`
	StopLoss        *float64         `json:"stop_loss,omitempty"`
	TakeProfit      *float64         `json:"take_profit,omitempty"`
	Quantity        float64          `json:"quantity"`
	RealizedPnl     *float64         `json:"realized_pnl,omitempty"`
	Pnl             *float64         `json:"pnl,omitempty"`
	Result          string           `json:"result,omitempty"`
	Status          string           `json:"status"`
	TradeDate       string           `json:"trade_date"`
	EntryTime       string           `json:"entry_time,omitempty"`
	ExitTime        string           `json:"exit_time,omitempty"`
	Strategies      []StrategyTagDTO `json:"strategies,omitempty"`
	ConfluenceScore *float64         `json:"confluence_score,omitempty"`
	AIQualityScore  *float64         `json:"ai_quality_score,omitempty"`
	Notes           string           `json:"notes,omitempty"`
}

func newTradeDTO(t *domain.TradeRecord) TradeDTO {
	dto := TradeDTO{
		ID:              t.ID,
		UserID:          t.UserID,
		Pair:            t.Pair,
		Direction:       string(t.Direction),
		EntryPrice:      t.EntryPrice,
		ExitPrice:       t.ExitPrice,
		StopLoss:        t.StopLoss,
		TakeProfit:      t.TakeProfit,
		Quantity:        t.Quantity,
		RealizedPnl:     t.RealizedPnl,
		Pnl:             t.Pnl,
		Result:          string(t.Result),
		Status:          string(t.Status),
		TradeDate:       t.TradeDate.UTC().Format(time.RFC3339),
		ConfluenceScore: t.ConfluenceScore,
		AIQualityScore:  t.AIQualityScore,
		Notes:           t.Notes,
	}
	if t.EntryTime != nil {
		dto.EntryTime = t.EntryTime.UTC().Format(time.RFC3339)
	}
	if t.ExitTime != nil {
		dto.ExitTime = t.ExitTime.UTC().Format(time.RFC3339)
	}
	for _, s := range t.Strategies {
		dto.Strategies = append(dto.Strategies, StrategyTagDTO{ID: s.ID, Name: s.Name})
	}
	return dto
}

// toDomain converts the request into a record owned by userID. It parses
// enumerations and dates; range checks are left to TradeRecord.Validate.
func (d TradeDTO) toDomain(userID string) (*domain.TradeRecord, error) {
	if d.UserID != "" && d.UserID != userID {
		return nil, fmt.Errorf("field user_id %q does not match path user %q", d.UserID, userID)
	}

	t := &domain.TradeRecord{
		ID:              d.ID,
		UserID:          userID,
		Pair:            d.Pair,
		EntryPrice:      d.EntryPrice,
		ExitPrice:       d.ExitPrice,
		StopLoss:        d.StopLoss,
		TakeProfit:      d.TakeProfit,
		Quantity:        d.Quantity,
		RealizedPnl:     d.RealizedPnl,
		Pnl:             d.Pnl,
		ConfluenceScore: d.ConfluenceScore,
		AIQualityScore:  d.AIQualityScore,
		Notes:           d.Notes,
	}

	var err error
	if t.Direction, err = domain.ParseDirection(d.Direction); err != nil {
		return nil, fmt.Errorf("field direction: %w", err)
	}
	if t.Result, err = domain.ParseResult(d.Result); err != nil {
		return nil, fmt.Errorf("field result: %w", err)
	}
	if t.Status, err = domain.ParseStatus(d.Status); err != nil {
		return nil, fmt.Errorf("field status: %w", err)
	}
	if t.TradeDate, err = domain.ParseTradeDate(d.TradeDate); err != nil {
		return nil, fmt.Errorf("field trade_date: %w", err)
	}
	if d.EntryTime != "" {
		v, err := domain.ParseTradeDate(d.EntryTime)
		if err != nil {
			return nil, fmt.Errorf("field entry_time: %w", err)
		}
		t.EntryTime = &v
	}
	if d.ExitTime != "" {
		v, err := domain.ParseTradeDate(d.ExitTime)
		if err != nil {
			return nil, fmt.Errorf("field exit_time: %w", err)
		}
		t.ExitTime = &v
	}
	for _, s := range d.Strategies {
		if s.ID == "" {
			return nil, fmt.Errorf("field strategies: empty strategy id")
		}
		name := s.Name
		if name == "" {
			name = s.ID
		}
		t.Strategies = append(t.Strategies, domain.StrategyTag{ID: s.ID, Name: name})
	}
	return t, nil
}

// StrategyDTO is a user-defined strategy.
type StrategyDTO struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func newStrategyDTO(s *domain.Strategy) StrategyDTO {
	return StrategyDTO{ID: s.ID, UserID: s.UserID, Name: s.Name, Description: s.Description}
}

// RowErrorDTO is a rejected import row.
type RowErrorDTO struct {
	Row   int    `json:"row,omitempty"`
	Field string `json:"field,omitempty"`
	Error string `json:"error"`
}

// ImportResponse summarizes a CSV import.
type ImportResponse struct {
	Imported int           `json:"imported"`
	DryRun   bool          `json:"dry_run"`
	Rejected []RowErrorDTO `json:"rejected"`
}

func newRowErrors(errs []*journal.RowError) []RowErrorDTO {
	out := make([]RowErrorDTO, len(errs))
	for i, e := range errs {
		out[i] = RowErrorDTO{Row: e.Row, Field: e.Field, Error: e.Err.Error()}
	}
	return out
}
