package interest

import (
	"errors"
	"testing"

	"fincore/internal/core"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestAnnualToMonthlyRate(t *testing.T) {
	tests := []struct {
		name    string
		pct     string
		wantErr bool
		min     string
		max     string
	}{
		{"zero", "0", false, "0", "0"},
		{"typical card rate", "23.99", false, "0.01807", "0.01809"},
		{"twelve percent", "12", false, "0.009488", "0.009489"},
		{"upper bound accepted", "200", false, "0.0958", "0.0959"},
		{"negative", "-0.01", true, "", ""},
		{"above upper bound", "200.01", true, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AnnualToMonthlyRate(dec(tt.pct))
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidRate) || !errors.Is(err, core.ErrInvalidInput) {
					t.Fatalf("expected ErrInvalidRate, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.LessThan(dec(tt.min)) || got.GreaterThan(dec(tt.max)) {
				t.Fatalf("rate = %s, want in [%s, %s]", got, tt.min, tt.max)
			}
		})
	}
}

func TestAnnualToMonthlyRateIsEffectiveNotNominal(t *testing.T) {
	got, _ := AnnualToMonthlyRate(dec("23.99"))
	nominal := dec("23.99").Div(dec("1200"))
	if !got.LessThan(nominal) {
		t.Fatalf("effective monthly rate %s should be below nominal %s", got, nominal)
	}
	compounded := got.Add(decimal.NewFromInt(1)).Pow(decimal.NewFromInt(12))
	if compounded.Sub(dec("1.2399")).Abs().GreaterThan(dec("0.000001")) {
		t.Fatalf("(1+i)^12 = %s, want 1.2399", compounded)
	}
}

func TestFixedInstallment(t *testing.T) {
	p := dec("1000000")
	i := dec("0.015")

	got, err := FixedInstallment(p, i, 1)
	if err != nil || !got.Equal(p) {
		t.Fatalf("single installment = %s (err=%v), want principal", got, err)
	}

	got, err = FixedInstallment(p, decimal.Zero, 8)
	if err != nil || !got.Equal(dec("125000")) {
		t.Fatalf("zero-rate installment = %s (err=%v), want 125000", got, err)
	}

	errCases := []struct {
		name  string
		p     decimal.Decimal
		i     decimal.Decimal
		n     int
		match error
	}{
		{"zero principal", decimal.Zero, i, 12, ErrInvalidPrincipal},
		{"negative principal", dec("-1"), i, 12, ErrInvalidPrincipal},
		{"zero count", p, i, 0, ErrInvalidCount},
		{"negative count", p, i, -3, ErrInvalidCount},
		{"negative rate", p, dec("-0.01"), 12, ErrNegativeRate},
	}
	for _, tc := range errCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := FixedInstallment(tc.p, tc.i, tc.n); !errors.Is(err, tc.match) {
				t.Fatalf("expected %v, got %v", tc.match, err)
			}
		})
	}
}

func TestTotalInterestGrowsWithCount(t *testing.T) {
	p := dec("500000")
	i := dec("0.02")
	prev := decimal.Zero
	for n := 2; n <= 48; n++ {
		c, err := FixedInstallment(p, i, n)
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		interest := c.Mul(decimal.NewFromInt(int64(n))).Sub(p)
		if !interest.GreaterThan(prev) {
			t.Fatalf("n=%d: interest %s not greater than %s", n, interest, prev)
		}
		prev = interest
	}
}

func TestComputeInterestPlanScenario(t *testing.T) {
	plan, err := ComputeInterestPlan(dec("1000000"), dec("23.99"), 12, true)
	if err != nil {
		t.Fatalf("ComputeInterestPlan: %v", err)
	}
	if !plan.HasInterest {
		t.Fatal("expected interest")
	}
	if plan.MonthlyRate.LessThan(dec("0.0178")) || plan.MonthlyRate.GreaterThan(dec("0.0182")) {
		t.Errorf("monthly rate = %s", plan.MonthlyRate)
	}
	if plan.InstallmentAmount.LessThan(dec("93400")) || plan.InstallmentAmount.GreaterThan(dec("93500")) {
		t.Errorf("installment = %s", plan.InstallmentAmount)
	}
	if !plan.TotalInterest.IsPositive() {
		t.Errorf("total interest = %s", plan.TotalInterest)
	}
	approx := plan.InstallmentAmount.Mul(decimal.NewFromInt(12))
	if plan.TotalAmount.Sub(approx).Abs().GreaterThan(dec("0.12")) {
		t.Errorf("total %s not ~ installment*12 %s", plan.TotalAmount, approx)
	}
	if !plan.TotalInterest.Equal(plan.TotalAmount.Sub(dec("1000000"))) {
		t.Errorf("interest %s != total - principal", plan.TotalInterest)
	}
	if plan.InstallmentAmount.Exponent() < -2 || plan.TotalAmount.Exponent() < -2 {
		t.Errorf("currency fields not rounded: %s %s", plan.InstallmentAmount, plan.TotalAmount)
	}
	if !plan.AnnualPctSnapshot.Equal(dec("23.99")) {
		t.Errorf("snapshot rate = %s", plan.AnnualPctSnapshot)
	}
}

func TestComputeInterestPlanInterestFree(t *testing.T) {
	tests := []struct {
		name      string
		count     int
		wants     bool
		rate      string
		wantInst  string
		wantTotal string
	}{
		{"single installment forces interest-free", 1, true, "23.99", "300000", "300000"},
		{"caller declines interest", 3, false, "23.99", "100000", "300000"},
		{"zero rate", 4, true, "0", "75000", "300000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := ComputeInterestPlan(dec("300000"), dec(tt.rate), tt.count, tt.wants)
			if err != nil {
				t.Fatalf("ComputeInterestPlan: %v", err)
			}
			if plan.HasInterest {
				t.Error("expected interest-free plan")
			}
			if !plan.TotalInterest.IsZero() {
				t.Errorf("interest = %s", plan.TotalInterest)
			}
			if !plan.InstallmentAmount.Equal(dec(tt.wantInst)) {
				t.Errorf("installment = %s, want %s", plan.InstallmentAmount, tt.wantInst)
			}
			if !plan.TotalAmount.Equal(dec(tt.wantTotal)) {
				t.Errorf("total = %s, want %s", plan.TotalAmount, tt.wantTotal)
			}
		})
	}
}

func TestComputeInterestPlanErrors(t *testing.T) {
	if _, err := ComputeInterestPlan(dec("1000"), dec("250"), 6, true); !errors.Is(err, ErrInvalidRate) {
		t.Errorf("expected ErrInvalidRate, got %v", err)
	}
	if _, err := ComputeInterestPlan(decimal.Zero, dec("20"), 6, true); !errors.Is(err, ErrInvalidPrincipal) {
		t.Errorf("expected ErrInvalidPrincipal, got %v", err)
	}
	if _, err := ComputeInterestPlan(dec("1000"), dec("20"), 0, false); !errors.Is(err, ErrInvalidCount) {
		t.Errorf("expected ErrInvalidCount, got %v", err)
	}
}

func TestPlanSnapshot(t *testing.T) {
	plan, err := ComputeInterestPlan(dec("1000000"), dec("23.99"), 12, true)
	if err != nil {
		t.Fatalf("ComputeInterestPlan: %v", err)
	}
	snap := plan.Snapshot()
	if !snap.HasInterest || snap.InstallmentCount != 12 ||
		!snap.InstallmentAmount.Equal(plan.InstallmentAmount) ||
		!snap.TotalInterest.Equal(plan.TotalInterest) ||
		!snap.RateAtPurchase.Equal(dec("23.99")) {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestPlanSchedule(t *testing.T) {
	principal := dec("1000000")
	plan, err := ComputeInterestPlan(principal, dec("23.99"), 12, true)
	if err != nil {
		t.Fatalf("ComputeInterestPlan: %v", err)
	}
	rows := plan.Schedule(principal)
	if len(rows) != 12 {
		t.Fatalf("rows = %d, want 12", len(rows))
	}
	paid := decimal.Zero
	for i, r := range rows {
		paid = paid.Add(r.Principal)
		if i > 0 && !r.Interest.LessThan(rows[i-1].Interest) {
			t.Errorf("row %d: interest %s should decline", r.Number, r.Interest)
		}
	}
	if !paid.Equal(principal) {
		t.Errorf("principal parts sum to %s, want %s", paid, principal)
	}
	if !rows[11].Remaining.IsZero() {
		t.Errorf("remaining after last row = %s", rows[11].Remaining)
	}
}
