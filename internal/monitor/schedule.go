package monitor

// This file implements the Strategy Pattern for recurring payment due dates.
// Each frequency has its own schedule that knows how to find the next due
// date and the period a payment covers.

import (
	"fmt"
	"time"

	"fincore/internal/billing"
	"fincore/internal/core"
)

// Schedule is the strategy interface for recurring payment frequencies.
type Schedule interface {
	// NextDue returns the first due date on or after the calendar day of
	// now, at midnight in now's location.
	NextDue(rp core.RecurringPayment, now time.Time) time.Time

	// Period returns the half-open window [start, end) a due date belongs
	// to. A payment is satisfied when a linked paid transaction falls in it.
	Period(due time.Time) (start, end time.Time)
}

// MonthlySchedule implements Schedule for payments due every month.
type MonthlySchedule struct{}

// NextDue clamps the due day to the month length, e.g. day 31 is due on
// the 30th in April and on the 28th or 29th in February.
func (MonthlySchedule) NextDue(rp core.RecurringPayment, now time.Time) time.Time {
	today := midnight(now)
	due := billing.ClampedDate(today.Year(), today.Month(), rp.DueDay, now.Location())
	if due.Before(today) {
		next := time.Date(today.Year(), today.Month()+1, 1, 0, 0, 0, 0, now.Location())
		due = billing.ClampedDate(next.Year(), next.Month(), rp.DueDay, now.Location())
	}
	return due
}

func (MonthlySchedule) Period(due time.Time) (time.Time, time.Time) {
	start := time.Date(due.Year(), due.Month(), 1, 0, 0, 0, 0, due.Location())
	return start, start.AddDate(0, 1, 0)
}

// YearlySchedule implements Schedule for payments due once a year on
// DueMonth/DueDay.
type YearlySchedule struct{}

func (YearlySchedule) NextDue(rp core.RecurringPayment, now time.Time) time.Time {
	today := midnight(now)
	month := time.Month(rp.DueMonth)
	due := billing.ClampedDate(today.Year(), month, rp.DueDay, now.Location())
	if due.Before(today) {
		due = billing.ClampedDate(today.Year()+1, month, rp.DueDay, now.Location())
	}
	return due
}

func (YearlySchedule) Period(due time.Time) (time.Time, time.Time) {
	start := time.Date(due.Year(), time.January, 1, 0, 0, 0, 0, due.Location())
	return start, start.AddDate(1, 0, 0)
}

// schedules maps frequencies to their schedule.
var schedules = map[core.Frequency]Schedule{
	core.Monthly: MonthlySchedule{},
	core.Yearly:  YearlySchedule{},
}

// ScheduleFor returns the schedule for a frequency.
func ScheduleFor(f core.Frequency) (Schedule, error) {
	s, ok := schedules[f]
	if !ok {
		return nil, fmt.Errorf("schedule for frequency %q: %w", f, core.ErrNotFound)
	}
	return s, nil
}

// RegisterSchedule installs a schedule for a new frequency.
func RegisterSchedule(f core.Frequency, s Schedule) {
	schedules[f] = s
}

// PaidInPeriod reports whether any paid transaction linked to rp falls in
// [start, end).
func PaidInPeriod(rp core.RecurringPayment, txs []core.Transaction, start, end time.Time) bool {
	for _, tx := range txs {
		if tx.RecurringPaymentID != rp.ID || !tx.Paid {
			continue
		}
		ts := tx.Timestamp.In(start.Location())
		if !ts.Before(start) && ts.Before(end) {
			return true
		}
	}
	return false
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
