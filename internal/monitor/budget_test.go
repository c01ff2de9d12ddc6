package monitor

import (
	"context"
	"testing"
	"time"

	"fincore/internal/core"
	"fincore/internal/ledger"
)

func TestBudgetMonitorTiers(t *testing.T) {
	now := day(2025, time.March, 20)
	tests := []struct {
		name     string
		prior    int64
		amount   int64
		wantTier string
		wantSev  core.Severity
	}{
		{"below warning", 500_000, 100_000, "", ""},
		{"warning", 700_000, 100_000, TierWarning, core.SeverityWarning},
		{"critical", 850_000, 100_000, TierCritical, core.SeverityError},
		{"warning and critical crossed at once", 700_000, 250_000, TierCritical, core.SeverityError},
		{"exactly at limit", 900_000, 100_000, TierExceeded, core.SeverityError},
		{"all three crossed at once", 100_000, 1_200_000, TierExceeded, core.SeverityError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			m := NewBudgetMonitor(rec, testOptions())
			tx := expense("new", "acc", "Food", tt.amount, now)
			snap := ledger.Snapshot{
				Budgets: []core.Budget{{ID: "b1", Category: "food", MonthlyLimit: amt(1_000_000), Active: true}},
				Transactions: []core.Transaction{
					expense("old", "acc", "Food", tt.prior, day(2025, time.March, 5)),
					tx,
				},
			}

			if err := m.OnTransaction(context.Background(), txEval(now, snap, tx)); err != nil {
				t.Fatalf("OnTransaction: %v", err)
			}
			if tt.wantTier == "" {
				if len(rec.drafts) != 0 {
					t.Fatalf("expected no drafts, got %+v", rec.drafts)
				}
				return
			}
			if len(rec.drafts) != 1 {
				t.Fatalf("expected exactly one draft, got %d", len(rec.drafts))
			}
			d := rec.drafts[0]
			if d.Metadata[core.MetaTier] != tt.wantTier || d.Severity != tt.wantSev {
				t.Errorf("tier=%s severity=%s, want %s %s", d.Metadata[core.MetaTier], d.Severity, tt.wantTier, tt.wantSev)
			}
			if d.Type != core.NotifyBudget || d.Metadata[core.MetaBudgetID] != "b1" {
				t.Errorf("unexpected draft %+v", d)
			}
		})
	}
}

func TestBudgetMonitorIgnores(t *testing.T) {
	now := day(2025, time.March, 20)
	budgets := []core.Budget{
		{ID: "b1", Category: "Food", MonthlyLimit: amt(1000), Active: true},
		{ID: "b2", Category: "Adjustment", MonthlyLimit: amt(1000), Active: true},
		{ID: "b3", Category: "Travel", MonthlyLimit: amt(1000), Active: false},
	}
	unpaid := expense("u", "acc", "Food", 5000, now)
	unpaid.Paid = false
	income := core.Transaction{ID: "i", Kind: core.Income, Amount: amt(5000), Category: "Food", AccountID: "acc", Paid: true, Timestamp: now}

	tests := []struct {
		name  string
		tx    core.Transaction
		extra []core.Transaction
	}{
		{"unpaid expense", unpaid, nil},
		{"income", income, nil},
		{"adjustment category", expense("a", "acc", "adjustment", 5000, now), nil},
		{"inactive budget", expense("t", "acc", "Travel", 5000, now), nil},
		{"last month's spend", expense("f", "acc", "Food", 10, now), []core.Transaction{expense("feb", "acc", "Food", 5000, day(2025, time.February, 27))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			m := NewBudgetMonitor(rec, testOptions())
			snap := ledger.Snapshot{Budgets: budgets, Transactions: append(tt.extra, tt.tx)}
			if err := m.OnTransaction(context.Background(), txEval(now, snap, tt.tx)); err != nil {
				t.Fatalf("OnTransaction: %v", err)
			}
			if len(rec.drafts) != 0 {
				t.Fatalf("expected no drafts, got %+v", rec.drafts)
			}
		})
	}
}

func TestBudgetMonitorSpendCache(t *testing.T) {
	ctx := context.Background()
	now := day(2025, time.March, 20)
	m := NewBudgetMonitor(&recorder{}, testOptions())
	tx := expense("t1", "acc", "Food", 100, now)
	snap := ledger.Snapshot{
		Budgets:      []core.Budget{{ID: "b1", Category: "Food", MonthlyLimit: amt(1000), Active: true}},
		Transactions: []core.Transaction{tx},
	}

	_ = m.OnTransaction(ctx, txEval(now, snap, tx))
	_ = m.OnTransaction(ctx, txEval(now.Add(5*time.Second), snap, tx))
	if m.recomputes != 1 {
		t.Fatalf("unchanged spend recomputed: %d", m.recomputes)
	}

	tx2 := expense("t2", "acc", "Food", 50, now.Add(10*time.Second))
	snap.Transactions = append(snap.Transactions, tx2)
	_ = m.OnTransaction(ctx, txEval(now.Add(10*time.Second), snap, tx2))
	if m.recomputes != 2 {
		t.Fatalf("changed ledger not recomputed: %d", m.recomputes)
	}

	_ = m.OnTransaction(ctx, txEval(now.Add(DefaultBudgetTTL+time.Minute), snap, tx2))
	if m.recomputes != 3 {
		t.Fatalf("expired entry not recomputed: %d", m.recomputes)
	}

	if n := m.Sweep(now.Add(time.Hour)); n != 1 {
		t.Fatalf("swept %d entries, want 1", n)
	}
}
