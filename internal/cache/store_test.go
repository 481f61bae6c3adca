package cache

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() zerolog.Logger {
	return zerolog.New(nil).Level(zerolog.Disabled)
}

func TestDeriveKeyStringPayload(t *testing.T) {
	key1 := DeriveKey("orchestrator", "NVIDIA stock price")
	key2 := DeriveKey("orchestrator", "NVIDIA stock price")

	assert.Equal(t, key1, key2)
	assert.Contains(t, key1, "orchestrator:")
	assert.Len(t, key1, len("orchestrator:")+32) // hex md5 digest
}

func TestDeriveKeyDifferentNamespaces(t *testing.T) {
	assert.NotEqual(t,
		DeriveKey("stock_data", "NVDA"),
		DeriveKey("fundamentals", "NVDA"),
	)
}

func TestDeriveKeyStructuredPayloadOrderInsensitive(t *testing.T) {
	// Structurally equal maps built in different insertion orders must hash
	// identically.
	a := map[string]any{"ticker": "NVDA", "limit": 5, "region": "us"}
	b := map[string]any{}
	b["region"] = "us"
	b["limit"] = 5
	b["ticker"] = "NVDA"

	assert.Equal(t, DeriveKey("company_news", a), DeriveKey("company_news", b))
}

func TestDeriveKeyStructVsEquivalentMap(t *testing.T) {
	type payload struct {
		Ticker string `json:"ticker"`
		Limit  int    `json:"limit"`
	}

	fromStruct := DeriveKey("company_news", payload{Ticker: "NVDA", Limit: 5})
	fromMap := DeriveKey("company_news", map[string]any{"limit": 5, "ticker": "NVDA"})

	assert.Equal(t, fromStruct, fromMap)
}

func TestStoreRoundTrip(t *testing.T) {
	store := NewWithBackend(NewMemoryBackend(), testLogger())
	ctx := context.Background()

	key := DeriveKey("stock_data", "NVDA")
	store.Set(ctx, key, "cached response", 5*time.Minute)

	var got string
	require.True(t, store.Get(ctx, key, &got))
	assert.Equal(t, "cached response", got)
}

func TestStoreRoundTripStructValue(t *testing.T) {
	type quote struct {
		Ticker string
		Price  float64
	}

	store := NewWithBackend(NewMemoryBackend(), testLogger())
	ctx := context.Background()

	key := DeriveKey("stock_data", "NVDA")
	store.Set(ctx, key, quote{Ticker: "NVDA", Price: 180.93}, time.Minute)

	var got quote
	require.True(t, store.Get(ctx, key, &got))
	assert.Equal(t, "NVDA", got.Ticker)
	assert.Equal(t, 180.93, got.Price)
}

func TestStoreExpiry(t *testing.T) {
	backend := NewMemoryBackend()
	now := time.Now()
	backend.now = func() time.Time { return now }

	store := NewWithBackend(backend, testLogger())
	ctx := context.Background()

	key := DeriveKey("web_search", "tesla news")
	store.Set(ctx, key, "results", 5*time.Minute)

	var got string
	require.True(t, store.Get(ctx, key, &got))

	// Advance the simulated clock past the TTL.
	now = now.Add(5*time.Minute + time.Second)
	assert.False(t, store.Get(ctx, key, &got))

	// The expired entry was removed on read.
	assert.Equal(t, 0, backend.Len())
}

func TestStoreClearPrefix(t *testing.T) {
	store := NewWithBackend(NewMemoryBackend(), testLogger())
	ctx := context.Background()

	store.Set(ctx, DeriveKey("stock_data", "NVDA"), "a", time.Minute)
	store.Set(ctx, DeriveKey("stock_data", "TSLA"), "b", time.Minute)
	store.Set(ctx, DeriveKey("web_search", "news"), "c", time.Minute)

	store.Clear(ctx, "stock_data")

	var got string
	assert.False(t, store.Get(ctx, DeriveKey("stock_data", "NVDA"), &got))
	assert.False(t, store.Get(ctx, DeriveKey("stock_data", "TSLA"), &got))
	assert.True(t, store.Get(ctx, DeriveKey("web_search", "news"), &got))
}

func TestStoreClearAll(t *testing.T) {
	backend := NewMemoryBackend()
	store := NewWithBackend(backend, testLogger())
	ctx := context.Background()

	store.Set(ctx, DeriveKey("stock_data", "NVDA"), "a", time.Minute)
	store.Set(ctx, DeriveKey("web_search", "news"), "b", time.Minute)

	store.Clear(ctx, "")
	assert.Equal(t, 0, backend.Len())
}

func TestStoreFallsBackWhenRedisUnavailable(t *testing.T) {
	// Nothing listens on this port; construction must fall back to the
	// in-memory backend and all operations must keep working.
	store := New(Options{
		RedisAddr:      "127.0.0.1:1",
		ConnectTimeout: 100 * time.Millisecond,
	}, testLogger())

	assert.Equal(t, "memory", store.BackendName())

	ctx := context.Background()
	key := DeriveKey("orchestrator", "query")
	store.Set(ctx, key, "value", time.Minute)

	var got string
	require.True(t, store.Get(ctx, key, &got))
	assert.Equal(t, "value", got)

	store.Clear(ctx, "")
	assert.False(t, store.Get(ctx, key, &got))
}

func TestSweepExpired(t *testing.T) {
	backend := NewMemoryBackend()
	now := time.Now()
	backend.now = func() time.Time { return now }

	store := NewWithBackend(backend, testLogger())
	ctx := context.Background()

	store.Set(ctx, DeriveKey("stock_data", "NVDA"), "a", time.Minute)
	store.Set(ctx, DeriveKey("stock_data", "TSLA"), "b", time.Hour)

	now = now.Add(30 * time.Minute)
	assert.Equal(t, 1, store.Sweep())
	assert.Equal(t, 1, backend.Len())
}
