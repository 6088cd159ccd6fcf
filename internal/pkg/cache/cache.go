// Package cache provides bounded-time memoization for read-heavy lookups.
// Entries are stored without a hard expiry so a stale value can still be
// served when a refresh fails.
package cache

import (
	"context"
	"regexp"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/ecoehub/ecoe-backend/internal/pkg/logger"
)

// FetchFn produces the value for a cache key when no fresh entry exists.
type FetchFn func(ctx context.Context) (interface{}, error)

// Options control a single GetOrFetch call.
type Options struct {
	// TTL overrides the cache default when positive.
	TTL time.Duration
	// ForceRefresh bypasses a fresh entry and always invokes the fetch.
	ForceRefresh bool
}

type entry struct {
	value    interface{}
	cachedAt time.Time
}

// Cache memoizes fetch results keyed by string. Single-process only.
type Cache struct {
	store      *gocache.Cache
	defaultTTL time.Duration
}

// New creates a cache with the given default TTL. The backing store keeps
// entries indefinitely; freshness is checked against the per-entry timestamp.
func New(defaultTTL time.Duration) *Cache {
	return &Cache{
		store:      gocache.New(gocache.NoExpiration, 0),
		defaultTTL: defaultTTL,
	}
}

// GetOrFetch returns the cached value when it is fresh, otherwise invokes
// fetch. A successful fetch replaces the entry; nil results are not stored.
// When fetch fails and a previous entry exists (fresh or stale), that entry
// is returned as a degraded fallback instead of the error.
func (c *Cache) GetOrFetch(ctx context.Context, key string, fetch FetchFn, opts Options) (interface{}, error) {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	var previous *entry
	if raw, found := c.store.Get(key); found {
		e := raw.(entry)
		if !opts.ForceRefresh && time.Since(e.cachedAt) < ttl {
			return e.value, nil
		}
		previous = &e
	}

	value, err := fetch(ctx)
	if err != nil {
		if previous != nil {
			logger.Warn().Err(err).Str("key", key).Msg("Cache refresh failed, serving previous entry")
			return previous.value, nil
		}
		return nil, err
	}

	if value != nil {
		c.store.Set(key, entry{value: value, cachedAt: time.Now()}, gocache.NoExpiration)
	}

	return value, nil
}

// Invalidate removes a single entry.
func (c *Cache) Invalidate(key string) {
	c.store.Delete(key)
}

// InvalidatePattern removes all entries whose key matches the pattern.
func (c *Cache) InvalidatePattern(pattern *regexp.Regexp) {
	for key := range c.store.Items() {
		if pattern.MatchString(key) {
			c.store.Delete(key)
		}
	}
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.store.Flush()
}
