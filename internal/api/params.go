package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"trade-journal/internal/domain"
	"trade-journal/internal/storage"
)

// parseFilter reads from, to, pair, direction, strategy_id and status query
// parameters. A date-only "to" includes the whole day.
func parseFilter(r *http.Request) (storage.TradeFilter, error) {
	q := r.URL.Query()
	var f storage.TradeFilter

	if s := q.Get("from"); s != "" {
		from, err := domain.ParseTradeDate(s)
		if err != nil {
			return f, fmt.Errorf("from: %w", err)
		}
		f.From = &from
	}
	if s := strings.TrimSpace(q.Get("to")); s != "" {
		to, err := domain.ParseTradeDate(s)
		if err != nil {
			return f, fmt.Errorf("to: %w", err)
		}
		if len(s) == len(time.DateOnly) {
			to = to.Add(24*time.Hour - time.Nanosecond)
		}
		f.To = &to
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return f, fmt.Errorf("to is before from")
	}

	f.Pair = strings.TrimSpace(q.Get("pair"))
	if s := q.Get("direction"); s != "" {
		d, err := domain.ParseDirection(s)
		if err != nil {
			return f, fmt.Errorf("direction: %w", err)
		}
		f.Direction = d
	}
	f.StrategyID = strings.TrimSpace(q.Get("strategy_id"))
	if s := q.Get("status"); s != "" {
		st, err := domain.ParseStatus(s)
		if err != nil {
			return f, fmt.Errorf("status: %w", err)
		}
		f.Status = st
	}
	return f, nil
}

// parseInitialBalance reads initial_balance, falling back to def.
func parseInitialBalance(r *http.Request, def float64) (float64, error) {
	s := r.URL.Query().Get("initial_balance")
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("initial_balance: must be a non-negative number, got %q", s)
	}
	return v, nil
}

func parseBool(r *http.Request, name string) (bool, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%s: invalid bool %q", name, s)
	}
	return b, nil
}
