package journal

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trade-journal/internal/domain"
)

func fp(v float64) *float64 { return &v }

func TestWriteTrades_ReadBack(t *testing.T) {
	entry := time.Date(2024, 3, 4, 9, 15, 0, 0, time.UTC)
	exit := entry.Add(45 * time.Minute)
	trades := []*domain.TradeRecord{
		{
			ID: "t1", UserID: "u1", Pair: "EURUSD", Direction: domain.DirectionLong,
			EntryPrice: fp(1.0845), ExitPrice: fp(1.0871), StopLoss: fp(1.08),
			Quantity: 0.5, RealizedPnl: fp(0), Result: domain.ResultBreakeven,
			Status: domain.StatusClosed, TradeDate: entry, EntryTime: &entry, ExitTime: &exit,
			Strategies:      []domain.StrategyTag{{ID: "s1", Name: "London open"}, {ID: "s2", Name: "s2"}},
			ConfluenceScore: fp(7),
			Notes:           "moved stop, then \"flat\"",
		},
		{
			ID: "t2", UserID: "u1", Pair: "XAUUSD", Direction: domain.DirectionShort,
			Quantity: 1, Pnl: fp(-12.25), Result: domain.ResultLoss,
			Status: domain.StatusOpen, TradeDate: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTrades(&buf, trades))

	header := strings.SplitN(buf.String(), "\n", 2)[0]
	assert.Equal(t, strings.Join(Columns, ","), header)

	res, err := NewImporter("other").Read(&buf)
	require.NoError(t, err)
	require.Empty(t, res.Errors)
	assert.Equal(t, trades, res.Trades)
}

func TestFormatDecimal(t *testing.T) {
	assert.Equal(t, "0.1", FormatDecimal(0.1))
	assert.Equal(t, "-1250", FormatDecimal(-1250))
	assert.Equal(t, "1.0845", FormatDecimal(1.0845))
}
