// Package billing computes credit-card statement windows.
package billing

import (
	"fmt"
	"time"

	"fincore/internal/core"

	"github.com/shopspring/decimal"
)

// Cycle is a statement window. Start and End are inclusive calendar days.
type Cycle struct {
	Start      time.Time
	End        time.Time
	PaymentDue time.Time
}

// Statement sums the activity of a credit account inside a cycle.
type Statement struct {
	Cycle    Cycle
	Charges  decimal.Decimal
	Payments decimal.Decimal
	Balance  decimal.Decimal // Charges - Payments
}

// CurrentCycle returns the statement window containing asOf.
//
// The cycle ends on this month's cutoff day unless asOf is already past it,
// in which case it ends on next month's. It starts the day after the
// previous cutoff, and payment is due on paymentDay of the month after the
// cycle ends. Days beyond a month's length are clamped to its last day.
func CurrentCycle(cutoffDay, paymentDay int, asOf time.Time) (Cycle, error) {
	if cutoffDay < 1 || cutoffDay > 31 || paymentDay < 1 || paymentDay > 31 {
		return Cycle{}, fmt.Errorf("cutoff %d, payment %d: %w", cutoffDay, paymentDay, core.ErrInvalidDay)
	}

	loc := asOf.Location()
	today := dateOf(asOf)
	y, m := today.Year(), today.Month()

	end := ClampedDate(y, m, cutoffDay, loc)
	if today.After(end) {
		y, m = addMonths(y, m, 1)
		end = ClampedDate(y, m, cutoffDay, loc)
	}
	py, pm := addMonths(y, m, -1)
	start := ClampedDate(py, pm, cutoffDay, loc).AddDate(0, 0, 1)
	ny, nm := addMonths(y, m, 1)
	due := ClampedDate(ny, nm, paymentDay, loc)

	return Cycle{Start: start, End: end, PaymentDue: due}, nil
}

// Contains reports whether t falls on a calendar day inside the cycle.
func (c Cycle) Contains(t time.Time) bool {
	day := dateOf(t.In(c.Start.Location()))
	return !day.Before(c.Start) && !day.After(c.End)
}

// DaysUntilDue counts calendar days from asOf to the payment due date.
// The result is negative once the due date has passed.
func (c Cycle) DaysUntilDue(asOf time.Time) int {
	return DaysBetween(dateOf(asOf.In(c.PaymentDue.Location())), c.PaymentDue)
}

// StatementFor sums paid charges and paid payments on the account inside
// the cycle.
func StatementFor(account core.Account, txs []core.Transaction, c Cycle) Statement {
	st := Statement{Cycle: c, Charges: decimal.Zero, Payments: decimal.Zero}
	for _, tx := range txs {
		if !tx.Paid || !c.Contains(tx.Timestamp) {
			continue
		}
		switch {
		case tx.Kind == core.Expense && tx.AccountID == account.ID:
			st.Charges = st.Charges.Add(tx.Amount)
		case tx.Kind == core.Income && tx.AccountID == account.ID,
			tx.Kind == core.Transfer && tx.CounterpartyID == account.ID:
			st.Payments = st.Payments.Add(tx.Amount)
		}
	}
	st.Balance = st.Charges.Sub(st.Payments)
	return st
}

// ClampedDate builds year-month-day at midnight, moving day back to the
// last day of the month when the month is shorter.
func ClampedDate(year int, month time.Month, day int, loc *time.Location) time.Time {
	if last := DaysIn(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

// DaysIn returns the length of the month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DaysBetween counts calendar days from a to b, ignoring the time of day.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func addMonths(y int, m time.Month, n int) (int, time.Month) {
	t := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	return t.Year(), t.Month()
}
