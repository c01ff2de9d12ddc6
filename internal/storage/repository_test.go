package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"fincore/internal/core"
	"fincore/internal/notify"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "fincore.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestInsertIfAbsent(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	at := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	n := core.Notification{
		ID:        "n1",
		Type:      core.NotifyBudget,
		Severity:  core.SeverityWarning,
		Title:     "Budget warning: Food",
		Message:   "Food spending is 800.00 of 1000.00 this month (80%).",
		DeepLink:  "/budgets/b1",
		Metadata:  map[string]string{core.MetaBudgetID: "b1", core.MetaTier: "warning"},
		CreatedAt: at,
	}

	created, err := repo.InsertIfAbsent(ctx, n)
	if err != nil || !created {
		t.Fatalf("first insert = %v, %v", created, err)
	}
	dup := n
	dup.Title = "changed"
	created, err = repo.InsertIfAbsent(ctx, dup)
	if err != nil || created {
		t.Fatalf("duplicate insert = %v, %v", created, err)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d rows, want 1", len(list))
	}
	got := list[0]
	if got.Title != n.Title || got.Type != n.Type || got.Severity != n.Severity || got.DeepLink != n.DeepLink {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if !got.CreatedAt.Equal(at) || got.Metadata[core.MetaBudgetID] != "b1" || got.Read {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestMarkRead(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	_, _ = repo.InsertIfAbsent(ctx, core.Notification{ID: "n1", Type: core.NotifyInfo, Severity: core.SeverityInfo, CreatedAt: time.Now()})

	if err := repo.MarkRead(ctx, "n1"); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	list, _ := repo.List(ctx)
	if !list[0].Read {
		t.Fatal("not marked read")
	}
	if err := repo.MarkRead(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPrune(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	_, _ = repo.InsertIfAbsent(ctx, core.Notification{ID: "old", Type: core.NotifyInfo, Severity: core.SeverityInfo, CreatedAt: now.Add(-31 * 24 * time.Hour)})
	for i := 0; i < notify.RetentionRecords+5; i++ {
		_, err := repo.InsertIfAbsent(ctx, core.Notification{
			ID:        fmt.Sprintf("n%03d", i),
			Type:      core.NotifyInfo,
			Severity:  core.SeverityInfo,
			CreatedAt: now.Add(-time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	removed, err := repo.Prune(ctx, now)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 6 {
		t.Fatalf("removed %d, want 6", removed)
	}
	list, _ := repo.List(ctx)
	if len(list) != notify.RetentionRecords {
		t.Fatalf("kept %d rows, want %d", len(list), notify.RetentionRecords)
	}
	if list[0].ID != "n000" || list[len(list)-1].ID != "n099" {
		t.Fatalf("wrong survivors: first=%s last=%s", list[0].ID, list[len(list)-1].ID)
	}
}

func TestRepositoryBacksManager(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	clock := now
	mgr := notify.NewManager(repo, nil, notify.Options{Now: func() time.Time { return clock }})

	d := core.Draft{Type: core.NotifyLowBalance, Severity: core.SeverityWarning, Title: "Low balance: Checking",
		Metadata: map[string]string{core.MetaAccountID: "acc"}}
	first, err := mgr.CreateNotification(ctx, d)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	clock = now.Add(time.Hour)
	second, err := mgr.CreateNotification(ctx, d)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if first.Outcome != notify.Created || second.Outcome != notify.Duplicate {
		t.Fatalf("outcomes = %s, %s", first.Outcome, second.Outcome)
	}
	if list, _ := repo.List(ctx); len(list) != 1 {
		t.Fatalf("stored %d rows, want 1", len(list))
	}
}
