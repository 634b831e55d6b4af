// api/cache/ttl_cache.go
package cache

import (
	"context"
	"regexp"
	"sync"
	"time"

	"go.uber.org/zap"

	logger "github.com/chittoorhealth/api/logging"
)

// DefaultTTL is applied when a caller passes a non-positive TTL.
const DefaultTTL = 300 * time.Second

// DefaultSweepInterval is how often StartSweeper prunes expired entries.
const DefaultSweepInterval = 5 * time.Minute

type entry struct {
	value     interface{}
	expiresAt time.Time
}

// TTLCache is a process-wide in-memory key/value store with per-entry expiry
// and regex bulk invalidation. Keys follow a "namespace:qualifier" convention
// so a whole namespace can be dropped with one DeletePattern call. Entries
// expire lazily on read; Sweep only bounds memory and is never required for
// correctness. Last writer wins; there is no per-key ownership.
type TTLCache struct {
	mu         sync.Mutex
	entries    map[string]entry
	defaultTTL time.Duration

	// now is swappable so tests can simulate the passage of time.
	now func() time.Time
}

func NewTTLCache(defaultTTL time.Duration) *TTLCache {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	return &TTLCache{
		entries:    make(map[string]entry),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

// Get returns the value for key, or ok=false on a miss. An expired entry is a
// miss and is removed eagerly.
func (c *TTLCache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// Set stores value under key, overwriting any existing entry. A non-positive
// ttl falls back to the cache default.
func (c *TTLCache) Set(key string, value interface{}, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, expiresAt: c.now().Add(ttl)}
}

func (c *TTLCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// DeletePattern removes every entry whose key matches the regex. Write paths
// that mutate underlying data use this to drop a whole namespace (e.g.
// "^analytics:") rather than chasing individual keys.
func (c *TTLCache) DeletePattern(pattern string) (int, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for key := range c.entries {
		if re.MatchString(key) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed, nil
}

func (c *TTLCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Sweep removes all currently expired entries. Idempotent.
func (c *TTLCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	removed := 0
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len reports the current entry count, expired entries included.
func (c *TTLCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// StartSweeper runs Sweep on the given interval until ctx is cancelled. Owned
// by the composition root, not by request handling.
func (c *TTLCache) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if removed := c.Sweep(); removed > 0 {
					logger.Debug("Cache sweep removed expired entries", zap.Int("removed", removed))
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
