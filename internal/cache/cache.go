package cache

import "time"

// Cache defines a generic cache interface
type Cache[T any] interface {
	// Get retrieves a value cached at or after now-TTL
	Get(key string, now time.Time) (T, bool)

	// Set stores a value stamped with now
	Set(key string, data T, now time.Time)

	// Delete removes a key from the cache
	Delete(key string)

	// Size returns the current number of items in the cache
	Size() int
}

// Sweeper is implemented by caches that can evict stale entries.
type Sweeper interface {
	Sweep(now time.Time) int
}

// Manager tracks caches that the host sweeps periodically. It does not run
// a goroutine of its own; the host calls SweepAll from its event loop so
// that sweeps never race with evaluations.
type Manager struct {
	caches []Sweeper
}

// NewManager creates a new cache manager
func NewManager() *Manager {
	return &Manager{caches: make([]Sweeper, 0)}
}

// Register adds a cache to the manager for cleanup
func (m *Manager) Register(c Sweeper) {
	m.caches = append(m.caches, c)
}

// SweepAll sweeps every registered cache and returns the number of
// evicted entries.
func (m *Manager) SweepAll(now time.Time) int {
	total := 0
	for _, c := range m.caches {
		total += c.Sweep(now)
	}
	return total
}
