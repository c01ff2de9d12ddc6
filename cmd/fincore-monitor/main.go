package main

import (
	"context"
	"errors"
	"flag"
	"os"

	"fincore/internal/cli"
	"fincore/internal/core"
	"fincore/internal/ledger"
	"fincore/internal/log"
	"fincore/internal/monitor"
	"fincore/internal/notify"
	"fincore/internal/services"
	"fincore/internal/worker"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

func main() {
	readStdin := flag.Bool("stdin", false, "read newline-delimited JSON transaction drafts from stdin")
	flag.Parse()

	cfg, logger := cli.Bootstrap(log.ComponentApp)
	logger.Info("Starting fincore-monitor")

	// Ledger
	var mem *ledger.Memory
	var err error
	if cfg.LedgerSeedPath != "" {
		mem, err = ledger.NewMemoryFromFile(cfg.LedgerSeedPath)
	} else {
		logger.Warn("No LEDGER_SEED_PATH configured, starting with an empty ledger")
		mem, err = ledger.NewMemory(ledger.Snapshot{})
	}
	if err != nil {
		logger.Error("Failed to load ledger", log.FieldError, err, "path", cfg.LedgerSeedPath)
		os.Exit(1)
	}

	// Notification store, with fan-out to AMQP or straight to Telegram
	store, closeStore := cli.OpenStore(logger, cfg.SQLiteDBPath)
	defer closeStore()

	var publishers []notify.Publisher
	if amqpClient := cli.ConnectAMQP(logger, cfg, false); amqpClient != nil {
		defer amqpClient.Close()
		publishers = append(publishers, amqpClient)
	} else if tg := cli.ConnectTelegram(logger, cfg); tg != nil {
		publishers = append(publishers, tg)
	}

	presenter := notify.NewLogPresenter(logger, cfg.PopupLifetime)
	queue := notify.NewPopupQueue(presenter, cfg.PopupMaxVisible, cfg.PopupPollInterval)
	manager := notify.NewManager(notify.NewFanoutStore(store, logger, publishers...), queue, notify.Options{
		DebounceWindow: cfg.DebounceWindow,
		Preferences:    cfg.Preferences,
		Logger:         logger,
	})

	engine := monitor.NewEngine(manager, monitor.Options{
		AdjustmentCategories: cfg.AdjustmentCategories,
		BudgetTTL:            cfg.BudgetCacheTTL,
		SpendingTTL:          cfg.SpendingCacheTTL,
		CreditThreshold:      decimal.NewFromFloat(cfg.CreditLowThreshold),
		Logger:               logger,
	})
	svc := services.NewTransactionService(mem, engine, cfg.Preferences, logger)

	mw := worker.NewMonitorWorker(svc, engine, mem, store, cfg.Preferences, worker.Intervals{
		Daily: cfg.DailyCheckInterval,
		Sweep: cfg.SweepInterval,
		Prune: cfg.PruneInterval,
	}, logger)

	ctx, cancel := cli.GracefulShutdown(logger)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	// The stdin reader stays outside the group: a blocked read must not
	// hold up shutdown.
	var drafts chan services.TransactionDraft
	if *readStdin {
		drafts = make(chan services.TransactionDraft)
		go func() {
			defer close(drafts)
			err := services.ReadDrafts(ctx, os.Stdin, drafts, func(line int, err error) {
				logger.Warn("Skipping malformed transaction draft", "line", line, log.FieldError, err)
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Transaction intake failed", log.FieldError, err)
			}
			logger.Info("Transaction intake closed")
		}()
	}

	g.Go(func() error { return mw.Run(ctx, drafts) })
	g.Go(func() error { return queue.Run(ctx) })

	logger.Info("Monitor running",
		"daily_interval", cfg.DailyCheckInterval,
		"sweep_interval", cfg.SweepInterval,
		"prune_interval", cfg.PruneInterval,
		"publishers", len(publishers),
		"notifications_enabled", enabledTypes(cfg.Preferences()))

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Monitor stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Monitor shutdown complete")
}

func enabledTypes(p core.Preferences) []string {
	var out []string
	for _, t := range []core.NotificationType{core.NotifyBudget, core.NotifyRecurring, core.NotifyUnusualSpending, core.NotifyLowBalance, core.NotifyDebt} {
		if p.IsEnabled(t) {
			out = append(out, string(t))
		}
	}
	return out
}
