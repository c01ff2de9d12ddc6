package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"fincore/internal/core"
	"fincore/internal/ledger"
)

func TestMonthlySchedule(t *testing.T) {
	tests := []struct {
		name   string
		dueDay int
		now    time.Time
		want   time.Time
	}{
		{"later this month", 13, day(2025, time.March, 10), date(2025, time.March, 13)},
		{"today", 10, day(2025, time.March, 10), date(2025, time.March, 10)},
		{"next month", 5, day(2025, time.January, 10), date(2025, time.February, 5)},
		{"clamped to april", 31, day(2025, time.April, 10), date(2025, time.April, 30)},
		{"clamped to leap february", 31, day(2024, time.February, 1), date(2024, time.February, 29)},
		{"clamped to february after rollover", 30, day(2025, time.January, 31), date(2025, time.February, 28)},
		{"year rollover", 2, day(2025, time.December, 20), date(2026, time.January, 2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rp := core.RecurringPayment{DueDay: tt.dueDay, Frequency: core.Monthly}
			if got := (MonthlySchedule{}).NextDue(rp, tt.now); !got.Equal(tt.want) {
				t.Errorf("NextDue = %s, want %s", got.Format(time.DateOnly), tt.want.Format(time.DateOnly))
			}
		})
	}
}

func TestYearlySchedule(t *testing.T) {
	tests := []struct {
		name     string
		dueMonth int
		dueDay   int
		now      time.Time
		want     time.Time
	}{
		{"this year", 3, 15, day(2025, time.March, 10), date(2025, time.March, 15)},
		{"next year", 3, 15, day(2025, time.March, 20), date(2026, time.March, 15)},
		{"leap day in common year", 2, 29, day(2025, time.January, 5), date(2025, time.February, 28)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rp := core.RecurringPayment{DueDay: tt.dueDay, DueMonth: tt.dueMonth, Frequency: core.Yearly}
			if got := (YearlySchedule{}).NextDue(rp, tt.now); !got.Equal(tt.want) {
				t.Errorf("NextDue = %s, want %s", got.Format(time.DateOnly), tt.want.Format(time.DateOnly))
			}
		})
	}
}

func TestScheduleFor(t *testing.T) {
	if _, err := ScheduleFor(core.Monthly); err != nil {
		t.Fatalf("monthly: %v", err)
	}
	if _, err := ScheduleFor("weekly"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPaymentMonitorLeadTimes(t *testing.T) {
	rent := core.RecurringPayment{ID: "rent", Name: "Rent", Amount: amt(1200), DueDay: 13, Frequency: core.Monthly, Active: true}
	tests := []struct {
		now      time.Time
		wantSent bool
		wantSev  core.Severity
	}{
		{day(2025, time.March, 9), false, ""},
		{day(2025, time.March, 10), true, core.SeverityInfo},
		{day(2025, time.March, 11), false, ""},
		{day(2025, time.March, 12), true, core.SeverityInfo},
		{day(2025, time.March, 13), true, core.SeverityWarning},
	}
	for _, tt := range tests {
		t.Run(tt.now.Format(time.DateOnly), func(t *testing.T) {
			rec := &recorder{}
			m := NewPaymentMonitor(rec, testOptions())
			snap := ledger.Snapshot{RecurringPayments: []core.RecurringPayment{rent}}
			if err := m.RunDaily(context.Background(), EvalContext{Now: tt.now, Ledger: snap, Prefs: core.DefaultPreferences()}); err != nil {
				t.Fatalf("RunDaily: %v", err)
			}
			if got := len(rec.drafts) == 1; got != tt.wantSent {
				t.Fatalf("sent=%v, want %v (%d drafts)", got, tt.wantSent, len(rec.drafts))
			}
			if tt.wantSent {
				d := rec.drafts[0]
				if d.Severity != tt.wantSev || d.Metadata[core.MetaRecurringID] != "rent" || d.Metadata[core.MetaDueDate] != "2025-03-13" {
					t.Errorf("unexpected draft %+v", d)
				}
			}
		})
	}
}

func TestPaymentMonitorSkipsPaidAndInactive(t *testing.T) {
	now := day(2025, time.March, 10)
	paidMarch := core.RecurringPayment{ID: "rent", Name: "Rent", Amount: amt(1200), DueDay: 13, Frequency: core.Monthly, Active: true}
	paidFebruary := core.RecurringPayment{ID: "gym", Name: "Gym", Amount: amt(40), DueDay: 13, Frequency: core.Monthly, Active: true}
	inactive := core.RecurringPayment{ID: "tv", Name: "TV", Amount: amt(10), DueDay: 13, Frequency: core.Monthly}
	unknown := core.RecurringPayment{ID: "odd", Name: "Odd", Amount: amt(10), DueDay: 13, Frequency: "weekly", Active: true}

	rentTx := expense("t1", "acc", "Housing", 1200, day(2025, time.March, 2))
	rentTx.RecurringPaymentID = "rent"
	gymTx := expense("t2", "acc", "Sport", 40, day(2025, time.February, 13))
	gymTx.RecurringPaymentID = "gym"

	rec := &recorder{}
	m := NewPaymentMonitor(rec, testOptions())
	snap := ledger.Snapshot{
		RecurringPayments: []core.RecurringPayment{paidMarch, paidFebruary, inactive, unknown},
		Transactions:      []core.Transaction{rentTx, gymTx},
	}
	if err := m.RunDaily(context.Background(), EvalContext{Now: now, Ledger: snap, Prefs: core.DefaultPreferences()}); err != nil {
		t.Fatalf("RunDaily: %v", err)
	}
	if len(rec.drafts) != 1 || rec.drafts[0].Metadata[core.MetaRecurringID] != "gym" {
		t.Fatalf("expected only the gym reminder, got %+v", rec.drafts)
	}
}

func TestPaymentMonitorOncePerDay(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	m := NewPaymentMonitor(rec, testOptions())
	rp := core.RecurringPayment{ID: "rent", Name: "Rent", Amount: amt(1200), DueDay: 13, Frequency: core.Monthly, Active: true}
	snap := ledger.Snapshot{RecurringPayments: []core.RecurringPayment{rp}}

	morning := time.Date(2025, time.March, 12, 8, 0, 0, 0, time.UTC)
	_ = m.RunDaily(ctx, EvalContext{Now: morning, Ledger: snap})
	_ = m.RunDaily(ctx, EvalContext{Now: morning.Add(10 * time.Hour), Ledger: snap})
	if len(rec.drafts) != 1 {
		t.Fatalf("ran twice in one day: %d drafts", len(rec.drafts))
	}
	_ = m.RunDaily(ctx, EvalContext{Now: morning.Add(24 * time.Hour), Ledger: snap})
	if len(rec.drafts) != 2 {
		t.Fatalf("did not run the next day: %d drafts", len(rec.drafts))
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
