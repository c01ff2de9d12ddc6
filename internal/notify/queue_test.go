package notify

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"fincore/internal/core"
	"fincore/internal/log"
)

func TestPopupQueueBoundedVisible(t *testing.T) {
	p := &fakePresenter{}
	q := NewPopupQueue(p, 3, time.Millisecond)
	for i := 0; i < 5; i++ {
		q.Enqueue(core.Notification{ID: fmt.Sprintf("n%d", i)})
	}

	if shown := q.Pump(); shown != 3 {
		t.Fatalf("first pump showed %d, want 3", shown)
	}
	if q.Len() != 2 {
		t.Fatalf("pending = %d, want 2", q.Len())
	}
	if shown := q.Pump(); shown != 0 {
		t.Fatalf("pump with no free slot showed %d", shown)
	}

	p.Dismiss()
	if shown := q.Pump(); shown != 1 {
		t.Fatalf("pump after dismiss showed %d, want 1", shown)
	}
	if p.shown[3].ID != "n3" {
		t.Fatalf("popups out of order: %+v", p.shown)
	}
}

func TestPopupQueueDefaults(t *testing.T) {
	q := NewPopupQueue(&fakePresenter{}, 0, 0)
	if q.maxVisible != DefaultMaxVisible || q.pollInterval != DefaultPollInterval {
		t.Fatalf("defaults not applied: %d %v", q.maxVisible, q.pollInterval)
	}
}

func TestPopupQueueRun(t *testing.T) {
	p := &fakePresenter{}
	q := NewPopupQueue(p, 3, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- q.Run(ctx) }()

	for i := 0; i < 4; i++ {
		q.Enqueue(core.Notification{ID: fmt.Sprintf("n%d", i)})
	}
	deadline := time.Now().Add(2 * time.Second)
	for p.VisibleCount() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	p.Dismiss()
	for q.Len() > 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Run returned %v", err)
	}
	if q.Len() != 0 {
		t.Fatalf("queue not drained, %d pending", q.Len())
	}
	if p.VisibleCount() > 3 {
		t.Fatalf("visible = %d, exceeds bound", p.VisibleCount())
	}
}

func TestMemoryStorePrune(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	_, _ = s.InsertIfAbsent(ctx, core.Notification{ID: "old", CreatedAt: now.Add(-31 * 24 * time.Hour)})
	for i := 0; i < RetentionRecords+5; i++ {
		_, _ = s.InsertIfAbsent(ctx, core.Notification{ID: fmt.Sprintf("n%03d", i), CreatedAt: now.Add(-time.Duration(i) * time.Minute)})
	}

	removed, err := s.Prune(ctx, now)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 6 {
		t.Fatalf("removed %d, want 6", removed)
	}
	list, _ := s.List(ctx)
	if len(list) != RetentionRecords || list[0].ID != "n000" {
		t.Fatalf("unexpected survivors: len=%d first=%s", len(list), list[0].ID)
	}
}

func TestMemoryStoreMarkRead(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_, _ = s.InsertIfAbsent(ctx, core.Notification{ID: "n1"})
	if err := s.MarkRead(ctx, "n1"); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	list, _ := s.List(ctx)
	if !list[0].Read {
		t.Fatal("not marked read")
	}
	if err := s.MarkRead(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

type recordingPublisher struct {
	got []string
	err error
}

func (p *recordingPublisher) PublishNotification(_ context.Context, n core.Notification) error {
	p.got = append(p.got, n.ID)
	return p.err
}

func TestFanoutStore(t *testing.T) {
	ctx := context.Background()
	ok := &recordingPublisher{}
	broken := &recordingPublisher{err: errors.New("broker down")}
	s := NewFanoutStore(NewMemoryStore(), log.Discard(), broken, ok)

	created, err := s.InsertIfAbsent(ctx, core.Notification{ID: "n1"})
	if err != nil || !created {
		t.Fatalf("insert = %v err=%v", created, err)
	}
	created, err = s.InsertIfAbsent(ctx, core.Notification{ID: "n1"})
	if err != nil || created {
		t.Fatalf("duplicate insert = %v err=%v", created, err)
	}
	if len(ok.got) != 1 || len(broken.got) != 1 {
		t.Fatalf("publishers called %d/%d times, want 1/1", len(ok.got), len(broken.got))
	}
}
