package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fincore/internal/core"
	"fincore/internal/ledger"
	"fincore/internal/log"
	"fincore/internal/monitor"
	"fincore/internal/services"
)

// Recorder records transaction drafts.
type Recorder interface {
	Record(ctx context.Context, d services.TransactionDraft) (core.Transaction, error)
}

// Pruner enforces notification retention.
type Pruner interface {
	Prune(ctx context.Context, now time.Time) (int, error)
}

// Intervals drive the periodic work of a MonitorWorker.
type Intervals struct {
	Daily time.Duration
	Sweep time.Duration
	Prune time.Duration
}

// MonitorWorker owns the engine and serializes every call into it:
// recorded drafts, daily checks, cache sweeps and retention all run on the
// goroutine that calls Run.
type MonitorWorker struct {
	recorder  Recorder
	engine    *monitor.Engine
	ledger    ledger.Reader
	pruner    Pruner
	prefs     func() core.Preferences
	intervals Intervals
	now       func() time.Time
	logger    *log.Logger
}

func NewMonitorWorker(recorder Recorder, engine *monitor.Engine, l ledger.Reader, pruner Pruner,
	prefs func() core.Preferences, intervals Intervals, logger *log.Logger) *MonitorWorker {
	if prefs == nil {
		prefs = core.DefaultPreferences
	}
	if logger == nil {
		logger = log.FromContext(context.Background())
	}
	return &MonitorWorker{
		recorder:  recorder,
		engine:    engine,
		ledger:    l,
		pruner:    pruner,
		prefs:     prefs,
		intervals: intervals,
		now:       time.Now,
		logger:    logger.WithComponent(log.ComponentMonitor),
	}
}

// Run processes drafts and periodic work until ctx is done. A nil or
// closed drafts channel leaves only the periodic work running. Daily
// checks and retention also run once at startup.
func (w *MonitorWorker) Run(ctx context.Context, drafts <-chan services.TransactionDraft) error {
	if err := w.intervals.Validate(); err != nil {
		return err
	}
	daily := time.NewTicker(w.intervals.Daily)
	defer daily.Stop()
	sweep := time.NewTicker(w.intervals.Sweep)
	defer sweep.Stop()
	prune := time.NewTicker(w.intervals.Prune)
	defer prune.Stop()

	w.RunDaily(ctx)
	w.Prune(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.InfoContext(ctx, "Monitor worker stopping", "reason", ctx.Err())
			return ctx.Err()
		case d, ok := <-drafts:
			if !ok {
				drafts = nil
				continue
			}
			w.Record(ctx, d)
		case <-daily.C:
			w.RunDaily(ctx)
		case <-sweep.C:
			w.Sweep()
		case <-prune.C:
			w.Prune(ctx)
		}
	}
}

// Record saves one draft. Rejected drafts are logged and skipped.
func (w *MonitorWorker) Record(ctx context.Context, d services.TransactionDraft) {
	tx, err := w.recorder.Record(ctx, d)
	if err != nil {
		w.logger.LogError(ctx, "Transaction rejected", err, log.OpValidate,
			log.NewFields().With(log.FieldAccountID, d.AccountID).With(log.FieldCategory, d.Category).With("error_type", errorType(err)))
		return
	}
	w.logger.DebugContext(ctx, "Transaction processed", log.FieldTransactionID, tx.ID)
}

// RunDaily runs the daily evaluators against the current ledger.
func (w *MonitorWorker) RunDaily(ctx context.Context) {
	snap, err := w.ledger.Snapshot(ctx)
	if err != nil {
		w.logger.LogError(ctx, "Failed to read ledger for daily checks", err, log.OpEvaluate, nil)
		return
	}
	ec := monitor.EvalContext{Now: w.now(), Ledger: snap, Prefs: w.prefs()}
	if err := w.engine.RunDaily(ctx, ec); err != nil {
		w.logger.LogError(ctx, "Daily checks failed", err, log.OpEvaluate, nil)
	}
}

// Sweep evicts stale cache entries.
func (w *MonitorWorker) Sweep() {
	if n := w.engine.Sweep(w.now()); n > 0 {
		w.logger.Debug("Swept cache entries", "removed", n)
	}
}

// Prune applies notification retention.
func (w *MonitorWorker) Prune(ctx context.Context) {
	if w.pruner == nil {
		return
	}
	if _, err := w.pruner.Prune(ctx, w.now()); err != nil {
		w.logger.LogError(ctx, "Failed to prune notifications", err, log.OpPrune, nil)
	}
}

func errorType(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidInput), errors.Is(err, core.ErrCreditLimit):
		return log.ErrorTypeValidation
	case errors.Is(err, core.ErrNotFound):
		return log.ErrorTypeNotFound
	case errors.Is(err, core.ErrPersistence):
		return log.ErrorTypeDatabase
	}
	return log.ErrorTypeInternal
}

// Validate reports whether the intervals can drive tickers.
func (i Intervals) Validate() error {
	if i.Daily <= 0 || i.Sweep <= 0 || i.Prune <= 0 {
		return fmt.Errorf("monitor intervals must be positive: %w", core.ErrInvalidInput)
	}
	return nil
}
