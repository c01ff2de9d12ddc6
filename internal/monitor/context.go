// Package monitor evaluates the ledger after each transaction and once per
// day, and turns noteworthy facts into notification drafts.
//
// Evaluators never write storage. Every draft goes through a Notifier, which
// in production is the notify.Manager.
package monitor

import (
	"context"
	"errors"
	"strings"
	"time"

	"fincore/internal/core"
	"fincore/internal/ledger"
	"fincore/internal/log"
	"fincore/internal/notify"

	"github.com/shopspring/decimal"
)

// EvalContext carries everything one evaluation looks at. Transaction is
// set for per-transaction evaluations and nil for daily ones.
type EvalContext struct {
	Now         time.Time
	Ledger      ledger.Snapshot
	Prefs       core.Preferences
	Transaction *core.Transaction
}

// Notifier is the single entry point evaluators emit through.
type Notifier interface {
	CreateNotification(ctx context.Context, d core.Draft) (notify.Result, error)
}

// Evaluator kinds. Evaluate methods return only failures that must reach
// the caller, i.e. persistence failures. Missing entities are logged and
// skipped.
type (
	TransactionEvaluator interface {
		Name() string
		OnTransaction(ctx context.Context, ec EvalContext) error
	}

	DailyEvaluator interface {
		Name() string
		RunDaily(ctx context.Context, ec EvalContext) error
	}
)

const (
	DefaultBudgetTTL            = 30 * time.Second
	DefaultSpendingTTL          = 60 * time.Second
	DefaultBalanceCooldown      = 24 * time.Hour
	DefaultDebtReminderInterval = 7 * 24 * time.Hour
)

// Options tune the evaluators. Zero values take the defaults above.
type Options struct {
	// AdjustmentCategories are balance-correction categories excluded from
	// spend and unusual-spending analysis. Matching ignores case.
	AdjustmentCategories []string

	BudgetTTL            time.Duration
	SpendingTTL          time.Duration
	BalanceCooldown      time.Duration
	DebtReminderInterval time.Duration

	// CreditThreshold is the low-balance threshold for revolving-credit
	// accounts, in available credit.
	CreditThreshold decimal.Decimal

	Logger *log.Logger
}

func (o Options) withDefaults() Options {
	if o.BudgetTTL <= 0 {
		o.BudgetTTL = DefaultBudgetTTL
	}
	if o.SpendingTTL <= 0 {
		o.SpendingTTL = DefaultSpendingTTL
	}
	if o.BalanceCooldown <= 0 {
		o.BalanceCooldown = DefaultBalanceCooldown
	}
	if o.DebtReminderInterval <= 0 {
		o.DebtReminderInterval = DefaultDebtReminderInterval
	}
	if o.Logger == nil {
		o.Logger = log.FromContext(context.Background())
	}
	return o
}

// categorySet matches categories case-insensitively.
type categorySet map[string]struct{}

func newCategorySet(names []string) categorySet {
	s := make(categorySet, len(names))
	for _, n := range names {
		if k := normalizeCategory(n); k != "" {
			s[k] = struct{}{}
		}
	}
	return s
}

func (s categorySet) has(category string) bool {
	_, ok := s[normalizeCategory(category)]
	return ok
}

func normalizeCategory(c string) string {
	return strings.ToLower(strings.TrimSpace(c))
}

func sameCategory(a, b string) bool {
	return normalizeCategory(a) == normalizeCategory(b)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// emit sends a draft and keeps only persistence failures.
func emit(ctx context.Context, n Notifier, d core.Draft) error {
	if _, err := n.CreateNotification(ctx, d); err != nil {
		if errors.Is(err, core.ErrPersistence) {
			return err
		}
		return errors.Join(core.ErrPersistence, err)
	}
	return nil
}

func money(d decimal.Decimal) string {
	return d.StringFixed(core.CurrencyPlaces)
}
