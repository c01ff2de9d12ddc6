package notify

import (
	"context"
	"sort"
	"sync"
	"time"

	"fincore/internal/core"
	"fincore/internal/log"
)

// MemoryStore keeps notifications in memory. It is the fallback store when
// no database is configured.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]core.Notification
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]core.Notification)}
}

// InsertIfAbsent implements Store.
func (s *MemoryStore) InsertIfAbsent(_ context.Context, n core.Notification) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[n.ID]; ok {
		return false, nil
	}
	s.items[n.ID] = n
	return true, nil
}

// List returns notifications newest first.
func (s *MemoryStore) List(_ context.Context) ([]core.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedLocked(), nil
}

// MarkRead flags a notification as read.
func (s *MemoryStore) MarkRead(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.items[id]
	if !ok {
		return core.ErrNotFound
	}
	n.Read = true
	s.items[id] = n
	return nil
}

// Prune drops records older than RetentionAge and keeps at most
// RetentionRecords of the newest.
func (s *MemoryStore) Prune(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	cutoff := now.Add(-RetentionAge)
	for id, n := range s.items {
		if n.CreatedAt.Before(cutoff) {
			delete(s.items, id)
			removed++
		}
	}
	sorted := s.sortedLocked()
	for i := RetentionRecords; i < len(sorted); i++ {
		delete(s.items, sorted[i].ID)
		removed++
	}
	return removed, nil
}

func (s *MemoryStore) sortedLocked() []core.Notification {
	out := make([]core.Notification, 0, len(s.items))
	for _, n := range s.items {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// FanoutStore persists through an inner store and then publishes newly
// created records. Publish failures are logged; the record is already
// stored and the fan-out is best effort.
type FanoutStore struct {
	inner      Store
	publishers []Publisher
	logger     *log.Logger
}

func NewFanoutStore(inner Store, logger *log.Logger, publishers ...Publisher) *FanoutStore {
	if logger == nil {
		logger = log.Discard()
	}
	return &FanoutStore{inner: inner, publishers: publishers, logger: logger.WithComponent(log.ComponentNotify)}
}

// InsertIfAbsent implements Store.
func (s *FanoutStore) InsertIfAbsent(ctx context.Context, n core.Notification) (bool, error) {
	created, err := s.inner.InsertIfAbsent(ctx, n)
	if err != nil || !created {
		return created, err
	}
	for _, p := range s.publishers {
		if err := p.PublishNotification(ctx, n); err != nil {
			s.logger.LogError(ctx, "Failed to publish notification", err, log.OpPublish,
				log.NewFields().WithNotification(n.ID, string(n.Type)))
		}
	}
	return true, nil
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*FanoutStore)(nil)
)
