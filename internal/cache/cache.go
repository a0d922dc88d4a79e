// Package cache implements the single generic cache slot that every family
// in the dispatcher is built from: a flat key/value map with one absolute
// expiration for the whole slot. It carries no locking of its own — callers
// hold whatever mutex guards the slot (see internal/dispatcher) so that the
// locking discipline lives in one place and matches the documented lock
// hierarchy exactly.
package cache

import "time"

// Cache is a flat key/value map with a single expiration time for the whole
// slot. A slot is fresh iff now is before the expiry; once expired, every
// key in it is considered stale and must be repopulated as a unit.
type Cache[K comparable, V any] struct {
	inner  map[K]V
	expiry time.Time
}

// New returns an empty, already-expired cache.
func New[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{inner: make(map[K]V)}
}

// Get returns the value for k, but only if the whole slot is still fresh.
func (c *Cache[K, V]) Get(k K) (V, bool) {
	var zero V
	if time.Now().After(c.expiry) {
		return zero, false
	}
	v, ok := c.inner[k]
	return v, ok
}

// GetForced looks up k regardless of freshness — used immediately after a
// refill, where the slot's freshness was just established by the caller.
func (c *Cache[K, V]) GetForced(k K) (V, bool) {
	v, ok := c.inner[k]
	return v, ok
}

// Insert adds or overwrites one entry.
func (c *Cache[K, V]) Insert(k K, v V) {
	c.inner[k] = v
}

// ClearAndSetExpiry discards every entry and sets a new expiration. Callers
// invoke this once, at the start of a refill, before repopulating the slot.
func (c *Cache[K, V]) ClearAndSetExpiry(expiry time.Time) {
	c.inner = make(map[K]V)
	c.expiry = expiry
}

// Expired reports whether the slot's expiry has passed.
func (c *Cache[K, V]) Expired() bool {
	return time.Now().After(c.expiry)
}

// Len returns the number of entries currently held, for logging/diagnostics.
func (c *Cache[K, V]) Len() int {
	return len(c.inner)
}
