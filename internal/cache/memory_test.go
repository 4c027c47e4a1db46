package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SetGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Set(ctx, "k", []byte("v"), 0))

	got, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	_, ok, err = s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "k", []byte("v"), time.Minute))

	now = now.Add(59 * time.Second)
	_, ok, _ := s.Get(ctx, "k")
	assert.True(t, ok, "key expired early")

	now = now.Add(time.Second)
	_, ok, _ = s.Get(ctx, "k")
	assert.False(t, ok, "key outlived its ttl")
	assert.Equal(t, 0, s.Len())
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	in := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", in, 0))
	in[0] = 'x'

	got, _, _ := s.Get(ctx, "k")
	got[1] = 'y'

	again, _, _ := s.Get(ctx, "k")
	assert.Equal(t, []byte("abc"), again)
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Set(ctx, "k", []byte("v"), 0))
	require.NoError(t, s.Delete(ctx, "k"))

	_, ok, _ := s.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemoryStore_SetSweepsExpiredEntries(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	for i := 0; i < 1000; i++ {
		require.NoError(t, s.Set(ctx, fmt.Sprintf("old-%d", i), []byte("v"), time.Minute))
	}
	require.NoError(t, s.Set(ctx, "forever", []byte("v"), 0))
	require.Equal(t, 1001, s.Len())

	now = now.Add(time.Hour)
	for i := 0; i < 10; i++ {
		require.NoError(t, s.Set(ctx, fmt.Sprintf("new-%d", i), []byte("v"), time.Minute))
	}

	assert.Equal(t, 11, s.Len())
	_, ok, _ := s.Get(ctx, "forever")
	assert.True(t, ok, "entry without ttl was swept")
}

func TestMemoryStore_SweepIsRateLimited(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "a", []byte("v"), time.Second))

	now = now.Add(2 * time.Second)
	require.NoError(t, s.Set(ctx, "b", []byte("v"), 0))
	assert.Equal(t, 2, s.Len(), "swept before the interval elapsed")

	now = now.Add(sweepInterval)
	require.NoError(t, s.Set(ctx, "c", []byte("v"), 0))
	assert.Equal(t, 2, s.Len())
}

func TestMemoryStore_ExpiredGetKeepsReplacedEntry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "k", []byte("old"), time.Minute))
	now = now.Add(2 * time.Minute)

	// Read the stale entry, then replace it before the write lock is taken.
	s.mu.RLock()
	stale := s.entries["k"]
	s.mu.RUnlock()
	require.True(t, stale.expired(now))
	s.entries["k"] = memoryEntry{value: []byte("fresh")}

	_, ok, _ := s.Get(ctx, "k")
	assert.True(t, ok, "fresh entry was deleted by an expired read")
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k-%d", i%20)
				_ = s.Set(ctx, key, []byte{byte(g)}, time.Millisecond)
				_, _, _ = s.Get(ctx, key)
			}
		}(g)
	}
	wg.Wait()
}
