package client

import (
	"sync"
	"time"

	"github.com/everaidhq/everaid/internal/pack"
)

// DefaultCacheTTL is how long a fetched pack list stays fresh.
const DefaultCacheTTL = 5 * time.Minute

// Cache holds the merged pack list between fetches. Reads within the TTL
// are served without touching the network; any local mutation invalidates
// immediately so the next read reflects it.
type Cache struct {
	mu        sync.Mutex
	packs     []pack.Pack
	fetchedAt time.Time
	ttl       time.Duration
}

// NewCache creates a cache. ttl <= 0 uses DefaultCacheTTL.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{ttl: ttl}
}

// Get returns the cached list if it is still fresh at the given instant.
// The returned slice is a copy.
func (c *Cache) Get(now time.Time) ([]pack.Pack, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.packs == nil || now.Sub(c.fetchedAt) >= c.ttl {
		return nil, false
	}
	return append([]pack.Pack{}, c.packs...), true
}

// Stale returns whatever the cache holds regardless of age. Used when a
// refresh fails and old data beats no data.
func (c *Cache) Stale() ([]pack.Pack, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.packs == nil {
		return nil, false
	}
	return append([]pack.Pack{}, c.packs...), true
}

// Put replaces the cached list and resets its age.
func (c *Cache) Put(packs []pack.Pack, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.packs = append([]pack.Pack{}, packs...)
	c.fetchedAt = now
}

// Invalidate drops the cached list.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.packs = nil
	c.fetchedAt = time.Time{}
}
