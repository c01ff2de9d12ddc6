package notify

import (
	"testing"
	"time"

	"fincore/internal/core"
	"fincore/internal/log"
)

func TestLogPresenterExpiresPopups(t *testing.T) {
	c := newClock(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	p := NewLogPresenter(log.Discard(), 5*time.Second)
	p.now = c.Now
	q := NewPopupQueue(p, 3, time.Millisecond)
	for i := 0; i < 4; i++ {
		q.Enqueue(core.Notification{ID: "n", Title: "popup"})
	}

	if shown := q.Pump(); shown != 3 || p.VisibleCount() != 3 {
		t.Fatalf("shown=%d visible=%d, want 3", shown, p.VisibleCount())
	}
	c.Advance(4 * time.Second)
	if shown := q.Pump(); shown != 0 {
		t.Fatalf("popup shown before a slot freed")
	}
	c.Advance(2 * time.Second)
	if shown := q.Pump(); shown != 1 {
		t.Fatalf("shown=%d after expiry, want 1", shown)
	}
}
