package reporting

import (
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Unbounded is the rendering of a +Inf profit factor.
const Unbounded = "∞"

// FormatProfitFactor renders a profit factor with 2 decimals, or Unbounded.
func FormatProfitFactor(pf float64) string {
	if math.IsInf(pf, 1) {
		return Unbounded
	}
	return strconv.FormatFloat(pf, 'f', 2, 64)
}

// formatCSVFloat renders v for CSV cells; +Inf becomes "inf".
func formatCSVFloat(v float64) string {
	if math.IsInf(v, 1) {
		return "inf"
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// formatMoney renders a currency amount with 6 decimals, rounding half away
// from zero. Non-finite values fall back to formatCSVFloat.
func formatMoney(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return formatCSVFloat(v)
	}
	return decimal.NewFromFloat(v).StringFixed(6)
}

// formatDuration renders d rounded to the minute, e.g. "2h30m".
func formatDuration(d time.Duration) string {
	if d == 0 {
		return "-"
	}
	d = d.Round(time.Minute)
	if d == 0 {
		return "<1m"
	}
	s := d.String()
	// Drop the trailing zero seconds of time.Duration.String
	if len(s) > 2 && s[len(s)-2:] == "0s" {
		s = s[:len(s)-2]
	}
	return s
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.DateOnly)
}
