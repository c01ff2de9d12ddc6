package notify

import (
	"context"
	"sync"
	"time"

	"fincore/internal/core"
	"fincore/internal/log"
)

// DefaultPopupLifetime is how long a logged popup counts as visible.
const DefaultPopupLifetime = 5 * time.Second

// LogPresenter is a Presenter for headless hosts. Each popup is written to
// the log and occupies a slot until its lifetime elapses.
type LogPresenter struct {
	mu       sync.Mutex
	shown    []time.Time
	lifetime time.Duration
	now      func() time.Time
	logger   *log.Logger
}

func NewLogPresenter(logger *log.Logger, lifetime time.Duration) *LogPresenter {
	if lifetime <= 0 {
		lifetime = DefaultPopupLifetime
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &LogPresenter{lifetime: lifetime, now: time.Now, logger: logger.WithComponent(log.ComponentNotify)}
}

// VisibleCount implements Presenter.
func (p *LogPresenter) VisibleCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.now()
	kept := p.shown[:0]
	for _, at := range p.shown {
		if now.Sub(at) < p.lifetime {
			kept = append(kept, at)
		}
	}
	p.shown = kept
	return len(p.shown)
}

// Show implements Presenter.
func (p *LogPresenter) Show(n core.Notification) {
	p.mu.Lock()
	p.shown = append(p.shown, p.now())
	p.mu.Unlock()

	p.logger.InfoContext(context.Background(), n.Title,
		log.FieldNotificationID, n.ID,
		log.FieldNotifyType, string(n.Type),
		"severity", string(n.Severity),
		"message", n.Message)
}

var _ Presenter = (*LogPresenter)(nil)
