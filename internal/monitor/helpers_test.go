package monitor

import (
	"context"
	"time"

	"fincore/internal/core"
	"fincore/internal/ledger"
	"fincore/internal/log"
	"fincore/internal/notify"

	"github.com/shopspring/decimal"
)

// recorder is a Notifier that keeps every draft it receives.
type recorder struct {
	drafts []core.Draft
	fail   func(core.Draft) error
}

func (r *recorder) CreateNotification(_ context.Context, d core.Draft) (notify.Result, error) {
	if r.fail != nil {
		if err := r.fail(d); err != nil {
			return notify.Result{}, err
		}
	}
	r.drafts = append(r.drafts, d)
	return notify.Result{Outcome: notify.Created}, nil
}

func (r *recorder) ofType(t core.NotificationType) []core.Draft {
	var out []core.Draft
	for _, d := range r.drafts {
		if d.Type == t {
			out = append(out, d)
		}
	}
	return out
}

func testOptions() Options {
	return Options{
		AdjustmentCategories: []string{"Adjustment"},
		Logger:               log.Discard(),
	}
}

func amt(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 0, 0, 0, time.UTC)
}

func expense(id, account, category string, amount int64, at time.Time) core.Transaction {
	return core.Transaction{
		ID:        id,
		Kind:      core.Expense,
		Amount:    amt(amount),
		Category:  category,
		AccountID: account,
		Paid:      true,
		Timestamp: at,
	}
}

func txEval(now time.Time, snap ledger.Snapshot, tx core.Transaction) EvalContext {
	return EvalContext{Now: now, Ledger: snap, Prefs: core.DefaultPreferences(), Transaction: &tx}
}
