package storage

import (
	"strings"
	"time"

	"trade-journal/internal/domain"
)

// TradeFilter narrows a trade query. Zero-valued fields do not filter.
type TradeFilter struct {
	From       *time.Time // inclusive
	To         *time.Time // inclusive
	Pair       string     // case-insensitive
	Direction  domain.Direction
	StrategyID string
	Status     domain.Status
}

// IsZero reports whether the filter matches everything.
func (f TradeFilter) IsZero() bool {
	return f.From == nil && f.To == nil && f.Pair == "" && f.Direction == "" &&
		f.StrategyID == "" && f.Status == ""
}

// Match reports whether t passes the filter.
func (f TradeFilter) Match(t *domain.TradeRecord) bool {
	if f.From != nil && t.TradeDate.Before(*f.From) {
		return false
	}
	if f.To != nil && t.TradeDate.After(*f.To) {
		return false
	}
	if f.Pair != "" && !strings.EqualFold(f.Pair, t.Pair) {
		return false
	}
	if f.Direction != "" && !strings.EqualFold(string(f.Direction), string(t.Direction)) {
		return false
	}
	if f.StrategyID != "" && !t.HasStrategy(f.StrategyID) {
		return false
	}
	if f.Status != "" && f.Status != t.Status {
		return false
	}
	return true
}

// Apply returns the trades that pass the filter, preserving order.
func (f TradeFilter) Apply(trades []*domain.TradeRecord) []*domain.TradeRecord {
	if f.IsZero() {
		return trades
	}
	var out []*domain.TradeRecord
	for _, t := range trades {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}
