// Package cache provides a TTL cache for handle resolutions.
package cache

import (
	"strings"
	"sync"
	"time"
)

// DefaultTTL is how long a resolution stays fresh when no TTL is configured.
const DefaultTTL = 10 * time.Minute

// Cache defines the operations the handle resolver needs from a resolution cache.
type Cache interface {
	// Get returns a fresh entry for key. Expired entries are reported as missing.
	Get(key string) (Entry, bool)

	// Set stores an entry, stamping its update time.
	Set(entry Entry)

	// Delete removes a cache entry.
	Delete(key string)

	// Clear removes all cache entries.
	Clear()

	// Size returns the number of cache entries, fresh or not.
	Size() int

	// Prune removes expired entries and returns how many were removed.
	Prune() int
}

// Compile-time interface check
var _ Cache = (*ResolutionCache)(nil)

// Entry is one cached handle lookup. Found is false for a negative result,
// so repeated lookups of an unknown handle are not sent upstream.
type Entry struct {
	Key       string    `json:"key"`
	Address   string    `json:"address,omitempty"`
	Found     bool      `json:"found"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ResolutionCache stores handle resolutions in memory.
type ResolutionCache struct {
	mu      sync.RWMutex     `json:"-"`
	ttl     time.Duration    `json:"-"`
	now     func() time.Time `json:"-"`
	Entries map[string]Entry `json:"entries"`
}

// NewResolutionCache creates an empty cache. A non-positive ttl selects DefaultTTL.
func NewResolutionCache(ttl time.Duration) *ResolutionCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ResolutionCache{
		ttl:     ttl,
		now:     time.Now,
		Entries: make(map[string]Entry),
	}
}

// Key builds a cache key from a resolver namespace and a handle.
func Key(namespace, handle string) string {
	return namespace + "|" + strings.TrimSpace(handle)
}

// TTL returns the freshness window of the cache.
func (c *ResolutionCache) TTL() time.Duration {
	return c.ttl
}

// Get returns a fresh entry for key.
func (c *ResolutionCache) Get(key string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.Entries[key]
	if !exists || c.expired(entry) {
		return Entry{}, false
	}
	return entry, true
}

// Set stores an entry in the cache.
func (c *ResolutionCache) Set(entry Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry.UpdatedAt = c.now()
	c.Entries[entry.Key] = entry
}

// Delete removes a cache entry.
func (c *ResolutionCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.Entries, key)
}

// Clear removes all cache entries.
func (c *ResolutionCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Entries = make(map[string]Entry)
}

// Size returns the number of cache entries.
func (c *ResolutionCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.Entries)
}

// Prune removes entries older than the TTL.
func (c *ResolutionCache) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, entry := range c.Entries {
		if c.expired(entry) {
			delete(c.Entries, key)
			removed++
		}
	}
	return removed
}

// expired must be called with c.mu held.
func (c *ResolutionCache) expired(entry Entry) bool {
	return c.now().Sub(entry.UpdatedAt) > c.ttl
}
