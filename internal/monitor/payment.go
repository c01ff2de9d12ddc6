package monitor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"fincore/internal/billing"
	"fincore/internal/core"
	"fincore/internal/log"
)

// ReminderLeadDays are the days before the due date a reminder is sent.
var ReminderLeadDays = []int{3, 1, 0}

// PaymentMonitor reminds about unpaid recurring payments ahead of their
// due date. It runs at most once per calendar day.
type PaymentMonitor struct {
	notifier Notifier
	lastRun  time.Time
	logger   *log.Logger
}

func NewPaymentMonitor(n Notifier, opts Options) *PaymentMonitor {
	opts = opts.withDefaults()
	return &PaymentMonitor{
		notifier: n,
		logger:   opts.Logger.WithComponent(log.ComponentMonitor).With(log.FieldEvaluator, "payment"),
	}
}

func (m *PaymentMonitor) Name() string { return "payment" }

func (m *PaymentMonitor) RunDaily(ctx context.Context, ec EvalContext) error {
	if !m.lastRun.IsZero() && sameDay(m.lastRun.In(ec.Now.Location()), ec.Now) {
		m.logger.DebugContext(ctx, "Payment reminders already ran today", log.FieldDay, ec.Now.Format(time.DateOnly))
		return nil
	}
	m.lastRun = ec.Now

	var errs []error
	for _, rp := range ec.Ledger.RecurringPayments {
		if !rp.Active {
			continue
		}
		sched, err := ScheduleFor(rp.Frequency)
		if err != nil {
			m.logger.LogError(ctx, "Skipping recurring payment", err, log.OpEvaluate,
				log.NewFields().With(log.FieldRecurringID, rp.ID))
			continue
		}

		due := sched.NextDue(rp, ec.Now)
		start, end := sched.Period(due)
		if PaidInPeriod(rp, ec.Ledger.Transactions, start, end) {
			continue
		}

		days := billing.DaysBetween(ec.Now, due)
		if !isLeadDay(days) {
			continue
		}

		if err := emit(ctx, m.notifier, paymentDraft(rp, due, days)); err != nil {
			errs = append(errs, fmt.Errorf("recurring payment %s: %w", rp.ID, err))
		}
	}
	return errors.Join(errs...)
}

func isLeadDay(days int) bool {
	for _, d := range ReminderLeadDays {
		if d == days {
			return true
		}
	}
	return false
}

func paymentDraft(rp core.RecurringPayment, due time.Time, days int) core.Draft {
	var title string
	severity := core.SeverityInfo
	switch days {
	case 0:
		title = rp.Name + " is due today"
		severity = core.SeverityWarning
	case 1:
		title = rp.Name + " is due tomorrow"
	default:
		title = fmt.Sprintf("%s is due in %d days", rp.Name, days)
	}
	return core.Draft{
		Type:     core.NotifyRecurring,
		Severity: severity,
		Title:    title,
		Message:  fmt.Sprintf("%s of %s due on %s.", rp.Name, money(rp.Amount), due.Format(time.DateOnly)),
		DeepLink: "/recurring/" + rp.ID,
		Metadata: map[string]string{
			core.MetaRecurringID: rp.ID,
			core.MetaDueDate:     due.Format(time.DateOnly),
			core.MetaTier:        strconv.Itoa(days),
		},
	}
}
