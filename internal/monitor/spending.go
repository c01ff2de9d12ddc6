package monitor

import (
	"context"
	"fmt"
	"time"

	"fincore/internal/cache"
	"fincore/internal/core"
	"fincore/internal/log"

	"github.com/shopspring/decimal"
)

const (
	// SpendingWindow is how far back the category average looks.
	SpendingWindow = 90 * 24 * time.Hour

	// MinSpendingHistory is the number of prior expenses needed before an
	// expense can be called unusual.
	MinSpendingHistory = 3
)

type averageEntry struct {
	average decimal.Decimal
	count   int
}

// SpendingAnalyzer flags expenses well above the category's trailing
// average.
type SpendingAnalyzer struct {
	notifier    Notifier
	adjustments categorySet
	averages    *cache.TTLMap[averageEntry]
	logger      *log.Logger
}

func NewSpendingAnalyzer(n Notifier, opts Options) *SpendingAnalyzer {
	opts = opts.withDefaults()
	return &SpendingAnalyzer{
		notifier:    n,
		adjustments: newCategorySet(opts.AdjustmentCategories),
		averages:    cache.NewTTLMap[averageEntry](opts.SpendingTTL),
		logger:      opts.Logger.WithComponent(log.ComponentMonitor).With(log.FieldEvaluator, "spending"),
	}
}

func (a *SpendingAnalyzer) Name() string { return "spending" }

func (a *SpendingAnalyzer) OnTransaction(ctx context.Context, ec EvalContext) error {
	tx := ec.Transaction
	if tx == nil || !tx.IsPaidExpense() || a.adjustments.has(tx.Category) {
		return nil
	}

	avg := a.average(tx, ec)
	if avg.count < MinSpendingHistory || !avg.average.IsPositive() {
		a.logger.DebugContext(ctx, "Not enough history to judge spending",
			log.FieldCategory, tx.Category, "history", avg.count)
		return nil
	}

	limit := avg.average.Mul(decimal.NewFromFloat(ec.Prefs.Thresholds.UnusualSpending)).Div(decimal.NewFromInt(100))
	if !tx.Amount.GreaterThan(limit) {
		return nil
	}

	ratio := tx.Amount.Div(avg.average).Mul(decimal.NewFromInt(100))
	d := core.Draft{
		Type:     core.NotifyUnusualSpending,
		Severity: core.SeverityWarning,
		Title:    "Unusual spending in " + tx.Category,
		Message: fmt.Sprintf("An expense of %s is %s%% of your %s average of %s.",
			money(tx.Amount), ratio.StringFixed(0), tx.Category, money(avg.average)),
		DeepLink: "/transactions/" + tx.ID,
		Metadata: map[string]string{
			core.MetaTxID:      tx.ID,
			core.MetaCategory:  tx.Category,
			core.MetaAccountID: tx.AccountID,
		},
	}
	if err := emit(ctx, a.notifier, d); err != nil {
		return fmt.Errorf("transaction %s: %w", tx.ID, err)
	}
	return nil
}

// average returns the trailing average of paid expenses in the category,
// excluding tx itself.
func (a *SpendingAnalyzer) average(tx *core.Transaction, ec EvalContext) averageEntry {
	key := normalizeCategory(tx.Category)
	if e, ok := a.averages.Get(key, ec.Now); ok {
		return e
	}

	since := ec.Now.Add(-SpendingWindow)
	sum := decimal.Zero
	count := 0
	for _, t := range ec.Ledger.Transactions {
		if t.ID == tx.ID || !t.IsPaidExpense() || !sameCategory(t.Category, tx.Category) {
			continue
		}
		if t.Timestamp.Before(since) || t.Timestamp.After(ec.Now) {
			continue
		}
		sum = sum.Add(t.Amount)
		count++
	}

	e := averageEntry{count: count}
	if count > 0 {
		e.average = sum.Div(decimal.NewFromInt(int64(count)))
	}
	a.averages.Set(key, e, ec.Now)
	return e
}

func (a *SpendingAnalyzer) Sweep(now time.Time) int { return a.averages.Sweep(now) }
