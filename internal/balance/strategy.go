// Package balance folds transaction lists into account balances.
//
// This file implements the Strategy Pattern for account kinds. Each kind
// (standard, cash, revolving credit) has its own strategy that encapsulates
// how a balance is derived and how a prospective expense is validated.
package balance

import (
	"fmt"

	"fincore/internal/core"

	"github.com/shopspring/decimal"
)

// Strategy is the per-kind balance algorithm.
type Strategy interface {
	// BalanceOf returns the signed balance of the account over txs.
	BalanceOf(account core.Account, txs []core.Transaction) decimal.Decimal

	// IncludeInAggregate reports whether accounts of this kind count toward
	// the user's total balance.
	IncludeInAggregate() bool

	// Validate checks whether an expense of amount can be charged.
	Validate(account core.Account, amount decimal.Decimal, txs []core.Transaction) Validation
}

// Validation is the outcome of Strategy.Validate. Available is only set by
// strategies that are bounded.
type Validation struct {
	OK        bool
	Reason    string
	Available decimal.Decimal
}

// Err converts a failed validation into an error wrapping
// core.ErrCreditLimit or core.ErrInvalidInput.
func (v Validation) Err() error {
	if v.OK {
		return nil
	}
	if v.Reason == reasonNonPositive {
		return fmt.Errorf("%w: %s", core.ErrInvalidInput, v.Reason)
	}
	return fmt.Errorf("%w: %s (available %s)", core.ErrCreditLimit, v.Reason, v.Available.StringFixed(core.CurrencyPlaces))
}

const reasonNonPositive = "amount must be positive"

// strategies maps account kinds to their balance strategy.
var strategies = map[core.AccountKind]Strategy{
	core.Standard:        StandardStrategy{},
	core.Cash:            CashStrategy{},
	core.RevolvingCredit: CreditStrategy{},
}

// For returns the strategy registered for kind.
func For(kind core.AccountKind) (Strategy, error) {
	s, ok := strategies[kind]
	if !ok {
		return nil, fmt.Errorf("balance strategy for kind %q: %w", kind, core.ErrNotFound)
	}
	return s, nil
}

// Register installs a strategy for a new account kind.
func Register(kind core.AccountKind, s Strategy) {
	strategies[kind] = s
}

// Of is a shorthand for For(account.Kind).BalanceOf(account, txs).
func Of(account core.Account, txs []core.Transaction) (decimal.Decimal, error) {
	s, err := For(account.Kind)
	if err != nil {
		return decimal.Zero, err
	}
	return s.BalanceOf(account, txs), nil
}

// Total sums the balances of every account whose kind is part of the
// aggregate. Accounts with an unknown kind are skipped.
func Total(accounts []core.Account, txs []core.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, a := range accounts {
		s, err := For(a.Kind)
		if err != nil || !s.IncludeInAggregate() {
			continue
		}
		total = total.Add(s.BalanceOf(a, txs))
	}
	return total
}
