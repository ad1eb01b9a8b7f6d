package mart

import (
	"sync"
	"time"
)

// Clock supplies the current time. Injected so TTL expiry is deterministic
// under test.
type Clock func() time.Time

// Entry is one cached mart build result. Mart is nil for a negative entry
// (the requested date had no snapshot); negatives are cached too so repeated
// misses do not re-walk the snapshot series.
type Entry struct {
	Mart     *Mart
	StoredAt time.Time
}

// Cache is the mart cache abstraction. Implementations must be safe for
// concurrent use; redundant rebuilds on concurrent misses are acceptable
// because mart building is deterministic and idempotent.
type Cache interface {
	Get(key string, now time.Time) (Entry, bool)
	Put(key string, e Entry)
	Invalidate(key string)
}

// TTLCache implements Cache with fixed time-based expiration.
type TTLCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]Entry
}

// NewTTLCache creates a cache whose entries expire ttl after Put.
func NewTTLCache(ttl time.Duration) *TTLCache {
	return &TTLCache{
		ttl:     ttl,
		entries: make(map[string]Entry),
	}
}

// Get returns the entry for key if it was stored within the TTL window.
func (c *TTLCache) Get(key string, now time.Time) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok {
		return Entry{}, false
	}
	if now.Sub(e.StoredAt) > c.ttl {
		return Entry{}, false
	}
	return e, true
}

// Put stores an entry. The entry's StoredAt is the caller's clock reading so
// expiry math stays on the injected clock.
func (c *TTLCache) Put(key string, e Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = e
}

// Invalidate drops a key. The engine never calls this on its own; it exists
// so an upstream data correction can evict a stale mart within the TTL window.
func (c *TTLCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}
