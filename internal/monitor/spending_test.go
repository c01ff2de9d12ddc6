package monitor

import (
	"context"
	"testing"
	"time"

	"fincore/internal/core"
	"fincore/internal/ledger"
)

func TestSpendingAnalyzer(t *testing.T) {
	now := day(2025, time.March, 20)
	history := func(n int, at time.Time) []core.Transaction {
		var out []core.Transaction
		for i := 0; i < n; i++ {
			out = append(out, expense("h"+string(rune('a'+i)), "acc", "Food", 100, at))
		}
		return out
	}

	tests := []struct {
		name    string
		prior   []core.Transaction
		amount  int64
		wantHit bool
	}{
		{"above 150% of average", history(3, day(2025, time.March, 1)), 200, true},
		{"exactly 150% is not unusual", history(3, day(2025, time.March, 1)), 150, false},
		{"two prior expenses are not enough", history(2, day(2025, time.March, 1)), 1000, false},
		{"history older than 90 days ignored", history(3, day(2024, time.November, 1)), 1000, false},
		{"other categories ignored", []core.Transaction{
			expense("x1", "acc", "Travel", 100, day(2025, time.March, 1)),
			expense("x2", "acc", "Travel", 100, day(2025, time.March, 2)),
			expense("x3", "acc", "Travel", 100, day(2025, time.March, 3)),
		}, 1000, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			a := NewSpendingAnalyzer(rec, testOptions())
			tx := expense("new", "acc", "food", tt.amount, now)
			snap := ledger.Snapshot{Transactions: append(tt.prior, tx)}

			if err := a.OnTransaction(context.Background(), txEval(now, snap, tx)); err != nil {
				t.Fatalf("OnTransaction: %v", err)
			}
			if hit := len(rec.drafts) == 1; hit != tt.wantHit {
				t.Fatalf("alert=%v, want %v", hit, tt.wantHit)
			}
			if tt.wantHit {
				d := rec.drafts[0]
				if d.Type != core.NotifyUnusualSpending || d.Metadata[core.MetaTxID] != "new" {
					t.Errorf("unexpected draft %+v", d)
				}
			}
		})
	}
}

func TestSpendingAnalyzerCustomThreshold(t *testing.T) {
	now := day(2025, time.March, 20)
	rec := &recorder{}
	a := NewSpendingAnalyzer(rec, testOptions())
	tx := expense("new", "acc", "Food", 130, now)
	snap := ledger.Snapshot{Transactions: []core.Transaction{
		expense("h1", "acc", "Food", 100, day(2025, time.March, 1)),
		expense("h2", "acc", "Food", 100, day(2025, time.March, 2)),
		expense("h3", "acc", "Food", 100, day(2025, time.March, 3)),
		tx,
	}}
	ec := txEval(now, snap, tx)
	ec.Prefs.Thresholds.UnusualSpending = 120

	if err := a.OnTransaction(context.Background(), ec); err != nil {
		t.Fatalf("OnTransaction: %v", err)
	}
	if len(rec.drafts) != 1 {
		t.Fatalf("expected an alert at a 120%% threshold, got %d", len(rec.drafts))
	}
}

func TestSpendingAnalyzerSkipsAdjustments(t *testing.T) {
	now := day(2025, time.March, 20)
	rec := &recorder{}
	a := NewSpendingAnalyzer(rec, testOptions())
	tx := expense("new", "acc", "Adjustment", 10_000, now)
	snap := ledger.Snapshot{Transactions: []core.Transaction{
		expense("h1", "acc", "Adjustment", 1, day(2025, time.March, 1)),
		expense("h2", "acc", "Adjustment", 1, day(2025, time.March, 2)),
		expense("h3", "acc", "Adjustment", 1, day(2025, time.March, 3)),
		tx,
	}}
	_ = a.OnTransaction(context.Background(), txEval(now, snap, tx))
	if len(rec.drafts) != 0 {
		t.Fatalf("adjustment flagged as unusual: %+v", rec.drafts)
	}
}
