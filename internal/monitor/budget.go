package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fincore/internal/cache"
	"fincore/internal/core"
	"fincore/internal/log"

	"github.com/shopspring/decimal"
)

// Budget tiers, ascending.
const (
	TierWarning  = "warning"
	TierCritical = "critical"
	TierExceeded = "exceeded"
)

type spendEntry struct {
	spend       decimal.Decimal
	fingerprint string
}

// BudgetMonitor compares current-month category spend against active
// budgets after each paid expense.
type BudgetMonitor struct {
	notifier    Notifier
	adjustments categorySet
	spend       *cache.TTLMap[spendEntry]
	logger      *log.Logger

	recomputes int
}

func NewBudgetMonitor(n Notifier, opts Options) *BudgetMonitor {
	opts = opts.withDefaults()
	return &BudgetMonitor{
		notifier:    n,
		adjustments: newCategorySet(opts.AdjustmentCategories),
		spend:       cache.NewTTLMap[spendEntry](opts.BudgetTTL),
		logger:      opts.Logger.WithComponent(log.ComponentMonitor).With(log.FieldEvaluator, "budget"),
	}
}

func (m *BudgetMonitor) Name() string { return "budget" }

func (m *BudgetMonitor) OnTransaction(ctx context.Context, ec EvalContext) error {
	tx := ec.Transaction
	if tx == nil || !tx.IsPaidExpense() || m.adjustments.has(tx.Category) {
		return nil
	}

	var errs []error
	for _, b := range ec.Ledger.Budgets {
		if !b.Active || !sameCategory(b.Category, tx.Category) {
			continue
		}
		if !b.MonthlyLimit.IsPositive() {
			m.logger.WarnContext(ctx, "Skipping budget without a positive limit", log.FieldBudgetID, b.ID)
			continue
		}

		spend := m.currentSpend(b, ec, tx.ID)
		pct := spend.Div(b.MonthlyLimit).Mul(decimal.NewFromInt(100))
		tier, severity := budgetTier(pct.InexactFloat64(), ec.Prefs.Thresholds)
		if tier == "" {
			continue
		}

		d := core.Draft{
			Type:     core.NotifyBudget,
			Severity: severity,
			Title:    budgetTitle(tier, b.Category),
			Message: fmt.Sprintf("%s spending is %s of %s this month (%s%%).",
				b.Category, money(spend), money(b.MonthlyLimit), pct.StringFixed(0)),
			DeepLink: "/budgets/" + b.ID,
			Metadata: map[string]string{
				core.MetaBudgetID: b.ID,
				core.MetaCategory: b.Category,
				core.MetaTier:     tier,
			},
		}
		if err := emit(ctx, m.notifier, d); err != nil {
			errs = append(errs, fmt.Errorf("budget %s: %w", b.ID, err))
		}
	}
	return errors.Join(errs...)
}

// currentSpend returns the month's paid spend in the budget's category,
// reusing the cached value while the ledger fingerprint is unchanged.
func (m *BudgetMonitor) currentSpend(b core.Budget, ec EvalContext, txID string) decimal.Decimal {
	fp := fmt.Sprintf("%s|%d|%s", ec.Now.Format("2006-01"), len(ec.Ledger.Transactions), txID)
	if e, ok := m.spend.Get(b.ID, ec.Now); ok && e.fingerprint == fp {
		return e.spend
	}

	m.recomputes++
	spend := decimal.Zero
	for _, t := range ec.Ledger.Transactions {
		if !t.IsPaidExpense() || !sameCategory(t.Category, b.Category) || m.adjustments.has(t.Category) {
			continue
		}
		if sameMonth(t.Timestamp.In(ec.Now.Location()), ec.Now) {
			spend = spend.Add(t.Amount)
		}
	}
	m.spend.Set(b.ID, spendEntry{spend: spend, fingerprint: fp}, ec.Now)
	return spend
}

func (m *BudgetMonitor) Sweep(now time.Time) int { return m.spend.Sweep(now) }

// budgetTier returns the highest tier crossed by pct, or "" when none is.
func budgetTier(pct float64, th core.Thresholds) (string, core.Severity) {
	switch {
	case pct >= th.BudgetExceeded:
		return TierExceeded, core.SeverityError
	case pct >= th.BudgetCritical:
		return TierCritical, core.SeverityError
	case pct >= th.BudgetWarning:
		return TierWarning, core.SeverityWarning
	}
	return "", ""
}

func budgetTitle(tier, category string) string {
	switch tier {
	case TierExceeded:
		return "Budget exceeded: " + category
	case TierCritical:
		return "Budget almost exhausted: " + category
	default:
		return "Budget warning: " + category
	}
}

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}
