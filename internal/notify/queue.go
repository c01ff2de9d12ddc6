package notify

import (
	"context"
	"sync"
	"time"

	"fincore/internal/core"
)

const (
	DefaultMaxVisible   = 3
	DefaultPollInterval = 500 * time.Millisecond
)

// PopupQueue holds popups until the presenter has a free slot. Enqueue
// never blocks. The queue is safe for concurrent use so a presenter can
// drain it from its own goroutine.
type PopupQueue struct {
	mu           sync.Mutex
	pending      []core.Notification
	presenter    Presenter
	maxVisible   int
	pollInterval time.Duration
}

// NewPopupQueue creates a queue draining into presenter. Non-positive
// limits take the defaults.
func NewPopupQueue(presenter Presenter, maxVisible int, pollInterval time.Duration) *PopupQueue {
	if maxVisible <= 0 {
		maxVisible = DefaultMaxVisible
	}
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &PopupQueue{
		presenter:    presenter,
		maxVisible:   maxVisible,
		pollInterval: pollInterval,
	}
}

func (q *PopupQueue) Enqueue(n core.Notification) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, n)
}

// Len returns the number of popups waiting for a slot.
func (q *PopupQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Pump shows queued popups in order while the presenter has fewer than
// maxVisible on screen. It returns how many were shown.
func (q *PopupQueue) Pump() int {
	shown := 0
	for {
		q.mu.Lock()
		if len(q.pending) == 0 || q.presenter.VisibleCount() >= q.maxVisible {
			q.mu.Unlock()
			return shown
		}
		n := q.pending[0]
		q.pending = q.pending[1:]
		q.mu.Unlock()

		q.presenter.Show(n)
		shown++
	}
}

// Run pumps the queue every poll interval until ctx is done.
func (q *PopupQueue) Run(ctx context.Context) error {
	ticker := time.NewTicker(q.pollInterval)
	defer ticker.Stop()
	for {
		q.Pump()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
