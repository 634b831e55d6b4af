// api/cache/ttl_cache_test.go
package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestCache returns a cache whose clock the test controls.
func newTestCache(defaultTTL time.Duration) (*TTLCache, *time.Time) {
	c := NewTTLCache(defaultTTL)
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestTTLCache_RoundTrip(t *testing.T) {
	c, now := newTestCache(0)

	c.Set("analytics:overview:all", 42, 5*time.Second)

	value, ok := c.Get("analytics:overview:all")
	require.True(t, ok)
	assert.Equal(t, 42, value)

	// Advance past the TTL: the entry is a miss and is evicted eagerly.
	*now = now.Add(5 * time.Second)
	_, ok = c.Get("analytics:overview:all")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())

	// Repeated miss stays a miss.
	_, ok = c.Get("analytics:overview:all")
	assert.False(t, ok)
}

func TestTTLCache_DefaultTTL(t *testing.T) {
	c, now := newTestCache(10 * time.Second)

	c.Set("k", "v", 0)

	*now = now.Add(9 * time.Second)
	_, ok := c.Get("k")
	assert.True(t, ok)

	*now = now.Add(1 * time.Second)
	_, ok = c.Get("k")
	assert.False(t, ok)
}

func TestTTLCache_SetOverwrites(t *testing.T) {
	c, _ := newTestCache(0)

	c.Set("k", "first", time.Minute)
	c.Set("k", "second", time.Minute)

	value, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "second", value)
}

func TestTTLCache_DeletePattern(t *testing.T) {
	c, _ := newTestCache(0)

	c.Set("analytics:overview:all", 1, time.Minute)
	c.Set("analytics:mandal:Kuppam:all", 2, time.Minute)
	c.Set("resident:abc", 3, time.Minute)

	removed, err := c.DeletePattern("^analytics:")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	_, ok := c.Get("analytics:overview:all")
	assert.False(t, ok)
	_, ok = c.Get("analytics:mandal:Kuppam:all")
	assert.False(t, ok)

	// Unrelated keys persist.
	value, ok := c.Get("resident:abc")
	require.True(t, ok)
	assert.Equal(t, 3, value)
}

func TestTTLCache_DeletePattern_BadRegex(t *testing.T) {
	c, _ := newTestCache(0)
	c.Set("k", "v", time.Minute)

	_, err := c.DeletePattern("([")
	assert.Error(t, err)

	_, ok := c.Get("k")
	assert.True(t, ok)
}

func TestTTLCache_Sweep(t *testing.T) {
	c, now := newTestCache(0)

	c.Set("short", 1, time.Second)
	c.Set("long", 2, time.Hour)

	*now = now.Add(2 * time.Second)

	assert.Equal(t, 1, c.Sweep())
	assert.Equal(t, 1, c.Len())

	// Idempotent.
	assert.Equal(t, 0, c.Sweep())

	_, ok := c.Get("long")
	assert.True(t, ok)
}

func TestTTLCache_Clear(t *testing.T) {
	c, _ := newTestCache(0)

	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)
	c.Clear()

	assert.Equal(t, 0, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok)
}
