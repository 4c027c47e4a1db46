package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// TradeRecord represents one journal entry as supplied by the persistence layer.
// Corresponds to trades table (see migrations/postgres).
// Analytics code treats it as read-only.
type TradeRecord struct {
	ID     string // opaque identifier
	UserID string // owning user

	// Instrument
	Pair      string
	Direction Direction

	// Prices
	EntryPrice *float64 // required once the trade exists; nil tolerated by analytics
	ExitPrice  *float64
	StopLoss   *float64
	TakeProfit *float64
	Quantity   float64

	// Outcome. Two independent P&L sources: live/realized and manual/planned.
	RealizedPnl *float64
	Pnl         *float64
	Result      Result
	Status      Status

	// Time
	TradeDate time.Time  // date-only or date-time
	EntryTime *time.Time // holding-time analytics only
	ExitTime  *time.Time // holding-time analytics only

	// Associations
	Strategies      []StrategyTag
	ConfluenceScore *float64
	AIQualityScore  *float64
	Notes           string
}

// HasStrategy reports whether the trade is tagged with strategyID.
func (t *TradeRecord) HasStrategy(strategyID string) bool {
	for _, s := range t.Strategies {
		if s.ID == strategyID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of t.
func (t *TradeRecord) Clone() *TradeRecord {
	c := *t
	c.EntryPrice = cloneFloat(t.EntryPrice)
	c.ExitPrice = cloneFloat(t.ExitPrice)
	c.StopLoss = cloneFloat(t.StopLoss)
	c.TakeProfit = cloneFloat(t.TakeProfit)
	c.RealizedPnl = cloneFloat(t.RealizedPnl)
	c.Pnl = cloneFloat(t.Pnl)
	c.ConfluenceScore = cloneFloat(t.ConfluenceScore)
	c.AIQualityScore = cloneFloat(t.AIQualityScore)
	c.EntryTime = cloneTime(t.EntryTime)
	c.ExitTime = cloneTime(t.ExitTime)
	if t.Strategies != nil {
		c.Strategies = append([]StrategyTag(nil), t.Strategies...)
	}
	return &c
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// Validate checks boundary invariants and names the first offending field.
// Analytics functions never call it; importers and stores do.
func (t *TradeRecord) Validate() error {
	if t == nil {
		return fmt.Errorf("trade: nil record")
	}
	if t.ID == "" {
		return fmt.Errorf("trade: field id is empty")
	}
	if t.UserID == "" {
		return fmt.Errorf("trade %s: field user_id is empty", t.ID)
	}
	if t.Pair == "" {
		return fmt.Errorf("trade %s: field pair is empty", t.ID)
	}
	if !t.Direction.Valid() {
		return fmt.Errorf("trade %s: field direction has invalid value %q", t.ID, t.Direction)
	}
	if !t.Result.Valid() {
		return fmt.Errorf("trade %s: field result has invalid value %q", t.ID, t.Result)
	}
	if !t.Status.Valid() {
		return fmt.Errorf("trade %s: field status has invalid value %q", t.ID, t.Status)
	}
	if t.TradeDate.IsZero() {
		return fmt.Errorf("trade %s: field trade_date is empty", t.ID)
	}
	if t.Quantity < 0 || !isFinite(t.Quantity) {
		return fmt.Errorf("trade %s: field quantity must be a non-negative number, got %v", t.ID, t.Quantity)
	}

	optional := []struct {
		name string
		v    *float64
	}{
		{"entry_price", t.EntryPrice},
		{"exit_price", t.ExitPrice},
		{"stop_loss", t.StopLoss},
		{"take_profit", t.TakeProfit},
		{"realized_pnl", t.RealizedPnl},
		{"pnl", t.Pnl},
		{"confluence_score", t.ConfluenceScore},
		{"ai_quality_score", t.AIQualityScore},
	}
	for _, f := range optional {
		if f.v != nil && !isFinite(*f.v) {
			return fmt.Errorf("trade %s: field %s is not a finite number", t.ID, f.name)
		}
	}

	if t.EntryTime != nil && t.ExitTime != nil && t.ExitTime.Before(*t.EntryTime) {
		return fmt.Errorf("trade %s: field exit_time is before entry_time", t.ID)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Direction is the side of a trade.
type Direction string

// Direction constants
const (
	DirectionLong  Direction = "LONG"
	DirectionShort Direction = "SHORT"
)

// ParseDirection parses a direction case-insensitively.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToUpper(strings.TrimSpace(s))) {
	case DirectionLong:
		return DirectionLong, nil
	case DirectionShort:
		return DirectionShort, nil
	default:
		return "", fmt.Errorf("unknown direction %q", s)
	}
}

// Valid reports whether d is LONG or SHORT (case-insensitive).
func (d Direction) Valid() bool {
	_, err := ParseDirection(string(d))
	return err == nil
}

// Result is the categorical outcome of a trade. Empty means unset.
type Result string

// Result constants
const (
	ResultNone      Result = ""
	ResultWin       Result = "win"
	ResultLoss      Result = "loss"
	ResultBreakeven Result = "breakeven"
)

// ParseResult parses a result; empty input yields ResultNone.
func ParseResult(s string) (Result, error) {
	switch r := Result(strings.ToLower(strings.TrimSpace(s))); r {
	case ResultNone, ResultWin, ResultLoss, ResultBreakeven:
		return r, nil
	default:
		return "", fmt.Errorf("unknown result %q", s)
	}
}

// Valid reports whether r is a known result value.
func (r Result) Valid() bool {
	switch r {
	case ResultNone, ResultWin, ResultLoss, ResultBreakeven:
		return true
	}
	return false
}

// Status is the lifecycle state of a trade.
type Status string

// Status constants
const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// ParseStatus parses a status; empty input defaults to closed.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case "":
		return StatusClosed, nil
	case StatusOpen, StatusClosed:
		return st, nil
	default:
		return "", fmt.Errorf("unknown status %q", s)
	}
}

// Valid reports whether s is open or closed.
func (s Status) Valid() bool {
	return s == StatusOpen || s == StatusClosed
}

// Trade date layouts accepted by ParseTradeDate, tried in order.
var tradeDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.DateOnly,
}

// ParseTradeDate parses a date-only or date-time string. Values without a zone are UTC.
func ParseTradeDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty trade date")
	}
	for _, layout := range tradeDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable trade date %q", s)
}
