package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fincore/internal/balance"
	"fincore/internal/cache"
	"fincore/internal/core"
	"fincore/internal/log"

	"github.com/shopspring/decimal"
)

// BalanceMonitor warns when an account touched by a transaction drops to
// or below its low-balance threshold.
type BalanceMonitor struct {
	notifier        Notifier
	creditThreshold decimal.Decimal
	cooldown        *cache.TTLMap[struct{}]
	logger          *log.Logger
}

func NewBalanceMonitor(n Notifier, opts Options) *BalanceMonitor {
	opts = opts.withDefaults()
	return &BalanceMonitor{
		notifier:        n,
		creditThreshold: opts.CreditThreshold,
		cooldown:        cache.NewTTLMap[struct{}](opts.BalanceCooldown),
		logger:          opts.Logger.WithComponent(log.ComponentMonitor).With(log.FieldEvaluator, "balance"),
	}
}

func (m *BalanceMonitor) Name() string { return "balance" }

func (m *BalanceMonitor) OnTransaction(ctx context.Context, ec EvalContext) error {
	tx := ec.Transaction
	if tx == nil {
		return nil
	}
	ids := []string{tx.AccountID}
	if tx.CounterpartyID != "" && tx.CounterpartyID != tx.AccountID {
		ids = append(ids, tx.CounterpartyID)
	}

	var errs []error
	for _, id := range ids {
		if err := m.check(ctx, ec, id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *BalanceMonitor) check(ctx context.Context, ec EvalContext, accountID string) error {
	account, err := ec.Ledger.Account(accountID)
	if err != nil {
		m.logger.LogError(ctx, "Skipping unknown account", err, log.OpEvaluate,
			log.NewFields().With(log.FieldAccountID, accountID))
		return nil
	}
	bal, err := balance.Of(account, ec.Ledger.TransactionsFor(account.ID))
	if err != nil {
		m.logger.LogError(ctx, "Skipping account without a balance strategy", err, log.OpEvaluate,
			log.NewFields().With(log.FieldAccountID, accountID))
		return nil
	}

	threshold := m.thresholdFor(account, ec.Prefs)
	if bal.GreaterThan(threshold) {
		m.cooldown.Delete(account.ID)
		return nil
	}
	if _, cooling := m.cooldown.Get(account.ID, ec.Now); cooling {
		return nil
	}

	if err := emit(ctx, m.notifier, lowBalanceDraft(account, bal, threshold)); err != nil {
		return fmt.Errorf("account %s: %w", account.ID, err)
	}
	m.cooldown.Set(account.ID, struct{}{}, ec.Now)
	return nil
}

func (m *BalanceMonitor) thresholdFor(a core.Account, prefs core.Preferences) decimal.Decimal {
	if a.Kind == core.RevolvingCredit {
		return m.creditThreshold
	}
	return decimal.NewFromFloat(prefs.Thresholds.LowBalance)
}

func lowBalanceDraft(a core.Account, bal, threshold decimal.Decimal) core.Draft {
	d := core.Draft{
		Type:     core.NotifyLowBalance,
		Severity: core.SeverityWarning,
		Title:    "Low balance: " + a.Name,
		Message:  fmt.Sprintf("%s balance is %s, at or below %s.", a.Name, money(bal), money(threshold)),
		DeepLink: "/accounts/" + a.ID,
		Metadata: map[string]string{core.MetaAccountID: a.ID},
	}
	if a.Kind == core.RevolvingCredit {
		d.Title = "Credit almost used up: " + a.Name
		d.Message = fmt.Sprintf("%s has %s of available credit left.", a.Name, money(bal))
	}
	if bal.IsNegative() {
		d.Severity = core.SeverityError
	}
	return d
}

func (m *BalanceMonitor) Sweep(now time.Time) int { return m.cooldown.Sweep(now) }
