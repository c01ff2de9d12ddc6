// Package interest computes fixed-installment (annuity) plans for financed
// purchases on revolving-credit accounts.
//
// Rates are effective annual percentages. Intermediate values are kept at
// full precision; only the currency fields of a Plan are rounded.
package interest

import (
	"fmt"
	"math"

	"fincore/internal/core"

	"github.com/shopspring/decimal"
)

// MaxAnnualRate is the highest accepted effective annual percentage.
const MaxAnnualRate = 200

var (
	ErrInvalidRate      = fmt.Errorf("%w: annual rate must be between 0 and %d", core.ErrInvalidInput, MaxAnnualRate)
	ErrInvalidPrincipal = fmt.Errorf("%w: principal must be positive", core.ErrInvalidInput)
	ErrInvalidCount     = fmt.Errorf("%w: installment count must be positive", core.ErrInvalidInput)
	ErrNegativeRate     = fmt.Errorf("%w: monthly rate cannot be negative", core.ErrInvalidInput)
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
	maxRate = decimal.NewFromInt(MaxAnnualRate)
)

// Plan is the result of ComputeInterestPlan.
type Plan struct {
	HasInterest       bool
	InstallmentCount  int
	InstallmentAmount decimal.Decimal
	TotalAmount       decimal.Decimal
	TotalInterest     decimal.Decimal
	MonthlyRate       decimal.Decimal
	AnnualPctSnapshot decimal.Decimal
}

// Period is one row of an amortization table.
type Period struct {
	Number    int
	Payment   decimal.Decimal
	Principal decimal.Decimal
	Interest  decimal.Decimal
	Remaining decimal.Decimal
}

// AnnualToMonthlyRate converts an effective annual percentage to the
// equivalent monthly rate: (1 + pct/100)^(1/12) - 1.
func AnnualToMonthlyRate(annualPct decimal.Decimal) (decimal.Decimal, error) {
	if annualPct.IsNegative() || annualPct.GreaterThan(maxRate) {
		return decimal.Zero, fmt.Errorf("rate %s: %w", annualPct, ErrInvalidRate)
	}
	if annualPct.IsZero() {
		return decimal.Zero, nil
	}
	base, _ := one.Add(annualPct.Div(hundred)).Float64()
	return decimal.NewFromFloat(math.Pow(base, 1.0/12)).Sub(one), nil
}

// FixedInstallment returns the unrounded annuity payment
// C = P * i(1+i)^n / ((1+i)^n - 1).
func FixedInstallment(principal, monthlyRate decimal.Decimal, count int) (decimal.Decimal, error) {
	if !principal.IsPositive() {
		return decimal.Zero, ErrInvalidPrincipal
	}
	if count <= 0 {
		return decimal.Zero, ErrInvalidCount
	}
	if monthlyRate.IsNegative() {
		return decimal.Zero, ErrNegativeRate
	}
	if count == 1 {
		return principal, nil
	}
	if monthlyRate.IsZero() {
		return principal.Div(decimal.NewFromInt(int64(count))), nil
	}
	growth := one.Add(monthlyRate).Pow(decimal.NewFromInt(int64(count)))
	return principal.Mul(monthlyRate).Mul(growth).Div(growth.Sub(one)), nil
}

// ComputeInterestPlan builds the financing plan for a purchase. A single
// installment is always interest-free, whatever the caller asked for.
func ComputeInterestPlan(principal, annualPct decimal.Decimal, count int, wantsInterest bool) (Plan, error) {
	if !principal.IsPositive() {
		return Plan{}, ErrInvalidPrincipal
	}
	if count <= 0 {
		return Plan{}, ErrInvalidCount
	}

	if count == 1 || !wantsInterest {
		installment := principal.Div(decimal.NewFromInt(int64(count)))
		return Plan{
			InstallmentCount:  count,
			InstallmentAmount: core.RoundCurrency(installment),
			TotalAmount:       core.RoundCurrency(principal),
			TotalInterest:     decimal.Zero,
			MonthlyRate:       decimal.Zero,
			AnnualPctSnapshot: decimal.Zero,
		}, nil
	}

	monthly, err := AnnualToMonthlyRate(annualPct)
	if err != nil {
		return Plan{}, err
	}
	installment, err := FixedInstallment(principal, monthly, count)
	if err != nil {
		return Plan{}, err
	}
	total := installment.Mul(decimal.NewFromInt(int64(count)))

	return Plan{
		HasInterest:       monthly.IsPositive(),
		InstallmentCount:  count,
		InstallmentAmount: core.RoundCurrency(installment),
		TotalAmount:       core.RoundCurrency(total),
		TotalInterest:     core.RoundCurrency(total.Sub(principal)),
		MonthlyRate:       monthly,
		AnnualPctSnapshot: annualPct,
	}, nil
}

// Snapshot returns the frozen financing record stored on the transaction.
func (p Plan) Snapshot() core.InstallmentPlan {
	return core.InstallmentPlan{
		HasInterest:       p.HasInterest,
		InstallmentCount:  p.InstallmentCount,
		InstallmentAmount: p.InstallmentAmount,
		TotalInterest:     p.TotalInterest,
		RateAtPurchase:    p.AnnualPctSnapshot,
	}
}

// Schedule splits each installment into interest and principal. Rows are
// rounded to currency precision; the last row absorbs the rounding drift so
// that principal parts add up to the financed amount.
func (p Plan) Schedule(principal decimal.Decimal) []Period {
	rows := make([]Period, 0, p.InstallmentCount)
	remaining := core.RoundCurrency(principal)
	for n := 1; n <= p.InstallmentCount; n++ {
		interest := core.RoundCurrency(remaining.Mul(p.MonthlyRate))
		payment := p.InstallmentAmount
		part := payment.Sub(interest)
		if n == p.InstallmentCount {
			part = remaining
			payment = part.Add(interest)
		}
		remaining = remaining.Sub(part)
		rows = append(rows, Period{
			Number:    n,
			Payment:   payment,
			Principal: part,
			Interest:  interest,
			Remaining: remaining,
		})
	}
	return rows
}
