package content

import (
	"sync"
	"time"
)

// ttlCache is a single-value, time-expiring cache. Read-mostly data
// (company details, slider list) changes through the CMS with no
// invalidation signal back to this process, so a stale read for up to
// one TTL window is accepted behavior.
type ttlCache[T any] struct {
	mu      sync.Mutex
	val     T
	ok      bool
	expires time.Time
	ttl     time.Duration
	now     func() time.Time
}

func newTTLCache[T any](ttl time.Duration) *ttlCache[T] {
	return &ttlCache[T]{ttl: ttl, now: time.Now}
}

// get returns the cached value if it is still fresh, otherwise calls
// load and caches the result. Only one load runs at a time; concurrent
// readers wait rather than stampede the repository.
func (c *ttlCache[T]) get(load func() (T, error)) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ok && c.now().Before(c.expires) {
		return c.val, nil
	}

	val, err := load()
	if err != nil {
		var zero T
		return zero, err
	}

	c.val = val
	c.ok = true
	c.expires = c.now().Add(c.ttl)
	return val, nil
}
