package cache

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trade-journal/internal/domain"
)

func sampleStats() domain.TradingStats {
	return domain.TradingStats{
		TotalTrades:        3,
		WinningTrades:      3,
		WinRate:            100,
		TotalPnl:           42.5,
		GrossProfit:        42.5,
		ProfitFactor:       math.Inf(1),
		SharpeRatio:        3.14,
		MaxDrawdownPercent: 0,
		ConsecutiveWins:    3,
	}
}

func TestStatsCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewStatsCache(NewMemoryStore(), 0)

	_, ok, err := c.GetStats(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.SetStats(ctx, "abc", sampleStats()))

	got, ok, err := c.GetStats(ctx, "abc")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sampleStats(), got)
	assert.True(t, got.ProfitFactorUnbounded())
}

func TestStatsCache_KeysArePrefixed(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	c := NewStatsCache(store, 0)

	require.NoError(t, c.SetStats(ctx, "abc", sampleStats()))

	_, ok, _ := store.Get(ctx, "abc")
	assert.False(t, ok)
	_, ok, _ = store.Get(ctx, keyPrefix+"abc")
	assert.True(t, ok)
}

func TestStatsCache_CorruptValue(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	c := NewStatsCache(store, 0)

	require.NoError(t, store.Set(ctx, keyPrefix+"bad", []byte("not gob"), 0))

	_, ok, err := c.GetStats(ctx, "bad")
	assert.Error(t, err)
	assert.False(t, ok)

	// The undecodable entry is evicted
	_, ok, err = store.Get(ctx, keyPrefix+"bad")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = c.GetStats(ctx, "bad")
	assert.NoError(t, err)
	assert.False(t, ok)
}
