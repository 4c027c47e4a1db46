package cache

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"time"

	"trade-journal/internal/domain"
	"trade-journal/internal/metrics"
)

// keyPrefix namespaces stats entries in a shared keyspace.
const keyPrefix = "trade-journal:stats:"

// Store is a byte-valued key/value store with expiry.
type Store interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, key string) error
}

// StatsCache caches TradingStats by content key on top of a Store.
// Values are gob-encoded; gob keeps +Inf profit factors intact.
type StatsCache struct {
	store Store
	ttl   time.Duration
}

// NewStatsCache creates a stats cache. ttl <= 0 keeps entries without expiry.
func NewStatsCache(store Store, ttl time.Duration) *StatsCache {
	if ttl < 0 {
		ttl = 0
	}
	return &StatsCache{store: store, ttl: ttl}
}

// GetStats returns the stats cached under key. An entry that fails to decode
// is evicted so the next lookup misses and recomputes.
func (c *StatsCache) GetStats(ctx context.Context, key string) (domain.TradingStats, bool, error) {
	raw, ok, err := c.store.Get(ctx, keyPrefix+key)
	if err != nil || !ok {
		return domain.TradingStats{}, false, err
	}

	var stats domain.TradingStats
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&stats); err != nil {
		decodeErr := fmt.Errorf("decode cached stats %s: %w", key, err)
		if delErr := c.store.Delete(ctx, keyPrefix+key); delErr != nil {
			return domain.TradingStats{}, false, errors.Join(decodeErr, fmt.Errorf("evict: %w", delErr))
		}
		return domain.TradingStats{}, false, decodeErr
	}
	return stats, true, nil
}

// SetStats stores stats under key.
func (c *StatsCache) SetStats(ctx context.Context, key string, stats domain.TradingStats) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(stats); err != nil {
		return fmt.Errorf("encode stats %s: %w", key, err)
	}
	return c.store.Set(ctx, keyPrefix+key, buf.Bytes(), c.ttl)
}

var _ metrics.StatsCache = (*StatsCache)(nil)
