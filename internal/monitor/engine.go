package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fincore/internal/cache"
	"fincore/internal/log"
)

// Engine runs the evaluators. It assumes a single writer: the host must
// finish one HandleTransaction or RunDaily call before starting the next.
type Engine struct {
	onTransaction []TransactionEvaluator
	daily         []DailyEvaluator
	caches        *cache.Manager
	logger        *log.Logger
}

// NewEngine builds the default evaluator set: budget, spending and balance
// per transaction; payment and debt daily. notifier may also implement
// cache.Sweeper, in which case Sweep covers it too.
func NewEngine(notifier Notifier, opts Options) *Engine {
	opts = opts.withDefaults()
	budget := NewBudgetMonitor(notifier, opts)
	spending := NewSpendingAnalyzer(notifier, opts)
	bal := NewBalanceMonitor(notifier, opts)
	payment := NewPaymentMonitor(notifier, opts)
	debt := NewDebtMonitor(notifier, opts)

	e := &Engine{
		onTransaction: []TransactionEvaluator{budget, spending, bal},
		daily:         []DailyEvaluator{payment, debt},
		caches:        cache.NewManager(),
		logger:        opts.Logger.WithComponent(log.ComponentMonitor),
	}
	e.caches.Register(budget)
	e.caches.Register(spending)
	e.caches.Register(bal)
	e.caches.Register(debt)
	if s, ok := notifier.(cache.Sweeper); ok {
		e.caches.Register(s)
	}
	return e
}

// HandleTransaction evaluates ec.Transaction against every per-transaction
// evaluator. A failing evaluator does not stop the others; failures are
// joined into the returned error.
func (e *Engine) HandleTransaction(ctx context.Context, ec EvalContext) error {
	if ec.Transaction == nil {
		return nil
	}
	var errs []error
	for _, ev := range e.onTransaction {
		if err := ev.OnTransaction(ctx, ec); err != nil {
			e.logger.LogError(ctx, "Evaluator failed", err, log.OpEvaluate,
				log.NewFields().WithEvaluator(ev.Name()).With(log.FieldTransactionID, ec.Transaction.ID))
			errs = append(errs, fmt.Errorf("%s: %w", ev.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// RunDaily runs the daily evaluators. Each is idempotent per calendar day.
func (e *Engine) RunDaily(ctx context.Context, ec EvalContext) error {
	var errs []error
	for _, ev := range e.daily {
		if err := ev.RunDaily(ctx, ec); err != nil {
			e.logger.LogError(ctx, "Daily evaluator failed", err, log.OpEvaluate,
				log.NewFields().WithEvaluator(ev.Name()))
			errs = append(errs, fmt.Errorf("%s: %w", ev.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Sweep evicts stale cache entries from every evaluator.
func (e *Engine) Sweep(now time.Time) int {
	n := e.caches.SweepAll(now)
	if n > 0 {
		e.logger.Debug("Swept evaluator caches", log.FieldOperation, log.OpSweep, "evicted", n)
	}
	return n
}
