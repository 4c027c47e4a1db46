package journal

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"trade-journal/internal/domain"
)

// WriteTrades writes trades as journal CSV in Columns order. The output is
// accepted by Importer.Read.
func WriteTrades(w io.Writer, trades []*domain.TradeRecord) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, t := range trades {
		if err := cw.Write(tradeRow(t)); err != nil {
			return fmt.Errorf("write trade %s: %w", t.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func tradeRow(t *domain.TradeRecord) []string {
	return []string{
		t.ID,
		t.UserID,
		t.Pair,
		string(t.Direction),
		formatOptFloat(t.EntryPrice),
		formatOptFloat(t.ExitPrice),
		formatOptFloat(t.StopLoss),
		formatOptFloat(t.TakeProfit),
		FormatDecimal(t.Quantity),
		formatOptFloat(t.RealizedPnl),
		formatOptFloat(t.Pnl),
		string(t.Result),
		string(t.Status),
		t.TradeDate.UTC().Format(time.RFC3339Nano),
		formatOptTime(t.EntryTime),
		formatOptTime(t.ExitTime),
		formatStrategies(t.Strategies),
		formatOptFloat(t.ConfluenceScore),
		formatOptFloat(t.AIQualityScore),
		t.Notes,
	}
}

// FormatDecimal renders v in the shortest decimal form that parses back to v.
func FormatDecimal(v float64) string {
	return decimal.NewFromFloat(v).String()
}

func formatOptFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return FormatDecimal(*v)
}

func formatOptTime(v *time.Time) string {
	if v == nil {
		return ""
	}
	return v.UTC().Format(time.RFC3339Nano)
}

func formatStrategies(tags []domain.StrategyTag) string {
	parts := make([]string, len(tags))
	for i, tag := range tags {
		if tag.Name == "" || tag.Name == tag.ID {
			parts[i] = tag.ID
			continue
		}
		parts[i] = tag.ID + strategyNameSep + tag.Name
	}
	return strings.Join(parts, strategySep)
}
