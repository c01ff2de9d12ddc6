package monitor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"fincore/internal/cache"
	"fincore/internal/core"
	"fincore/internal/log"
)

// debtTier is an age at which an unsettled debt gets a reminder.
type debtTier struct {
	days     int
	severity core.Severity
}

// debtTiers lists ages in ascending order per direction.
var debtTiers = map[core.DebtDirection][]debtTier{
	core.Borrowed: {{days: 30, severity: core.SeverityInfo}, {days: 60, severity: core.SeverityWarning}},
	core.Lent:     {{days: 90, severity: core.SeverityInfo}},
}

// DebtMonitor reminds about old unsettled debts. It runs at most once per
// calendar day and reminds about the same debt at most once a week.
type DebtMonitor struct {
	notifier Notifier
	lastRun  time.Time
	reminded *cache.TTLMap[struct{}]
	logger   *log.Logger
}

func NewDebtMonitor(n Notifier, opts Options) *DebtMonitor {
	opts = opts.withDefaults()
	return &DebtMonitor{
		notifier: n,
		reminded: cache.NewTTLMap[struct{}](opts.DebtReminderInterval),
		logger:   opts.Logger.WithComponent(log.ComponentMonitor).With(log.FieldEvaluator, "debt"),
	}
}

func (m *DebtMonitor) Name() string { return "debt" }

func (m *DebtMonitor) RunDaily(ctx context.Context, ec EvalContext) error {
	if !m.lastRun.IsZero() && sameDay(m.lastRun.In(ec.Now.Location()), ec.Now) {
		m.logger.DebugContext(ctx, "Debt reminders already ran today", log.FieldDay, ec.Now.Format(time.DateOnly))
		return nil
	}
	m.lastRun = ec.Now

	var errs []error
	for _, d := range ec.Ledger.Debts {
		if d.Settled {
			continue
		}
		tiers, ok := debtTiers[d.Direction]
		if !ok {
			m.logger.WarnContext(ctx, "Skipping debt with unknown direction",
				log.FieldDebtID, d.ID, "direction", string(d.Direction))
			continue
		}

		age := d.AgeDays(ec.Now)
		tier, level := highestTier(tiers, age)
		if level == 0 {
			continue
		}
		if _, recent := m.reminded.Get(d.ID, ec.Now); recent {
			continue
		}

		if err := emit(ctx, m.notifier, debtDraft(d, age, tier, level)); err != nil {
			errs = append(errs, fmt.Errorf("debt %s: %w", d.ID, err))
			continue
		}
		m.reminded.Set(d.ID, struct{}{}, ec.Now)
	}
	return errors.Join(errs...)
}

// highestTier returns the oldest tier reached by age and its 1-based
// level, or level 0 when no tier is reached.
func highestTier(tiers []debtTier, age int) (debtTier, int) {
	var best debtTier
	level := 0
	for i, t := range tiers {
		if age >= t.days {
			best, level = t, i+1
		}
	}
	return best, level
}

func debtDraft(d core.Debt, age int, tier debtTier, level int) core.Draft {
	var title, msg string
	if d.Direction == core.Borrowed {
		title = "You still owe " + d.Counterparty
		msg = fmt.Sprintf("You borrowed %s from %s %d days ago; %s is still outstanding.",
			money(d.OriginalAmount), d.Counterparty, age, money(d.RemainingAmount))
	} else {
		title = d.Counterparty + " still owes you"
		msg = fmt.Sprintf("You lent %s to %s %d days ago; %s is still outstanding.",
			money(d.OriginalAmount), d.Counterparty, age, money(d.RemainingAmount))
	}
	return core.Draft{
		Type:     core.NotifyDebt,
		Severity: tier.severity,
		Title:    title,
		Message:  msg,
		DeepLink: "/debts/" + d.ID,
		Metadata: map[string]string{
			core.MetaDebtID: d.ID,
			core.MetaTier:   strconv.Itoa(level),
		},
	}
}

func (m *DebtMonitor) Sweep(now time.Time) int { return m.reminded.Sweep(now) }
