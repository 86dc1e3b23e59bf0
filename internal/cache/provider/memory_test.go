package provider

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGetSet(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	got, err := m.Get(ctx, "pivotal:1:user:9")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, m.Set(ctx, "pivotal:1:user:9", []byte(`{"id":9}`), time.Minute))

	got, err = m.Get(ctx, "pivotal:1:user:9")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"id":9}`), got)

	metrics := m.Metrics()
	assert.Equal(t, int64(1), metrics.Hits)
	assert.Equal(t, int64(1), metrics.Misses)
	assert.Equal(t, int64(1), metrics.Sets)
}

func TestMemoryLazyExpiry(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	now := time.Now()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "k", []byte("v"), 10*time.Second))

	ok, err := m.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	ttl, err := m.TTL(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, ttl)

	// Advance past expiry; the entry is evicted on the next read.
	now = now.Add(11 * time.Second)

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, got)

	ok, err = m.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	ttl, err = m.TTL(ctx, "k")
	require.NoError(t, err)
	assert.Negative(t, ttl)
}

func TestMemoryNoExpiryTTL(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", []byte("v"), 0))
	ttl, err := m.TTL(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, -1*time.Second, ttl)
}

func TestMemoryDeletePattern(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "pivotal:1:role:5", []byte("a"), 0))
	require.NoError(t, m.Set(ctx, "pivotal:1:role:5:permissions", []byte("b"), 0))
	require.NoError(t, m.Set(ctx, "pivotal:1:user:9", []byte("c"), 0))
	require.NoError(t, m.Set(ctx, "pivotal:2:role:5", []byte("d"), 0))

	removed, err := m.DeletePattern(ctx, "pivotal:1:role:")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	ok, _ := m.Exists(ctx, "pivotal:1:user:9")
	assert.True(t, ok)
	ok, _ = m.Exists(ctx, "pivotal:2:role:5")
	assert.True(t, ok)
	ok, _ = m.Exists(ctx, "pivotal:1:role:5")
	assert.False(t, ok)

	assert.Equal(t, int64(2), m.Metrics().Busts)
}

func TestMemoryResetMetrics(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", []byte("v"), 0))
	_, _ = m.Get(ctx, "k")
	m.ResetMetrics()
	assert.Equal(t, int64(0), m.Metrics().Hits)
	assert.Equal(t, int64(0), m.Metrics().Sets)
}
