package cache

import "time"

// TTLMap is a timestamped map. Entries older than the TTL are invisible to
// Get and are removed by Sweep once older than twice the TTL.
//
// It is not safe for concurrent use; the monitoring engine is single-writer.
type TTLMap[T any] struct {
	ttl   time.Duration
	items map[string]entry[T]
}

type entry[T any] struct {
	data T
	at   time.Time
}

// NewTTLMap creates an empty map with the given TTL.
func NewTTLMap[T any](ttl time.Duration) *TTLMap[T] {
	return &TTLMap[T]{ttl: ttl, items: make(map[string]entry[T])}
}

// TTL returns the configured time to live.
func (c *TTLMap[T]) TTL() time.Duration { return c.ttl }

func (c *TTLMap[T]) Get(key string, now time.Time) (T, bool) {
	var zero T
	e, ok := c.items[key]
	if !ok || now.Sub(e.at) > c.ttl {
		return zero, false
	}
	return e.data, true
}

// Stamp returns when key was last set, regardless of expiry.
func (c *TTLMap[T]) Stamp(key string) (time.Time, bool) {
	e, ok := c.items[key]
	return e.at, ok
}

func (c *TTLMap[T]) Set(key string, data T, now time.Time) {
	c.items[key] = entry[T]{data: data, at: now}
}

func (c *TTLMap[T]) Delete(key string) {
	delete(c.items, key)
}

func (c *TTLMap[T]) Size() int {
	return len(c.items)
}

// Sweep removes entries older than twice the TTL and returns how many.
func (c *TTLMap[T]) Sweep(now time.Time) int {
	removed := 0
	for k, e := range c.items {
		if now.Sub(e.at) > 2*c.ttl {
			delete(c.items, k)
			removed++
		}
	}
	return removed
}

var _ Cache[int] = (*TTLMap[int])(nil)
