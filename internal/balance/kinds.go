package balance

import (
	"fincore/internal/core"

	"github.com/shopspring/decimal"
)

// StandardStrategy implements Strategy for debit accounts.
type StandardStrategy struct{}

// BalanceOf adds the signed effect of every touching transaction to the
// opening balance.
func (StandardStrategy) BalanceOf(account core.Account, txs []core.Transaction) decimal.Decimal {
	bal := account.OpeningBalance
	for _, tx := range txs {
		bal = bal.Add(signedEffect(account.ID, tx))
	}
	return bal
}

func (StandardStrategy) IncludeInAggregate() bool { return true }

// Validate accepts any positive amount; debit accounts may go negative.
func (StandardStrategy) Validate(_ core.Account, amount decimal.Decimal, _ []core.Transaction) Validation {
	if !amount.IsPositive() {
		return Validation{Reason: reasonNonPositive}
	}
	return Validation{OK: true}
}

// CashStrategy implements Strategy for wallets and other cash-like accounts.
// It shares the standard arithmetic.
type CashStrategy struct {
	StandardStrategy
}

// CreditStrategy implements Strategy for revolving-credit accounts, whose
// balance is the credit still available.
type CreditStrategy struct{}

// UsedCredit is paid expenses minus paid incoming payments.
func (CreditStrategy) UsedCredit(account core.Account, txs []core.Transaction) decimal.Decimal {
	used := decimal.Zero
	for _, tx := range txs {
		if !tx.Paid {
			continue
		}
		switch {
		case tx.Kind == core.Expense && tx.AccountID == account.ID:
			used = used.Add(tx.Amount)
		case tx.Kind == core.Income && tx.AccountID == account.ID:
			used = used.Sub(tx.Amount)
		case tx.Kind == core.Transfer && tx.CounterpartyID == account.ID:
			used = used.Sub(tx.Amount)
		}
	}
	return used
}

// BalanceOf returns creditLimit - usedCredit.
func (s CreditStrategy) BalanceOf(account core.Account, txs []core.Transaction) decimal.Decimal {
	return account.CreditLimit.Sub(s.UsedCredit(account, txs))
}

func (CreditStrategy) IncludeInAggregate() bool { return false }

// Validate rejects an expense that would push used credit above the limit.
func (s CreditStrategy) Validate(account core.Account, amount decimal.Decimal, txs []core.Transaction) Validation {
	available := s.BalanceOf(account, txs)
	if !amount.IsPositive() {
		return Validation{Reason: reasonNonPositive, Available: available}
	}
	if amount.GreaterThan(available) {
		return Validation{
			Reason:    "expense exceeds available credit",
			Available: available,
		}
	}
	return Validation{OK: true, Available: available}
}

func signedEffect(accountID string, tx core.Transaction) decimal.Decimal {
	switch tx.Kind {
	case core.Income:
		if tx.AccountID == accountID {
			return tx.Amount
		}
	case core.Expense:
		if tx.AccountID == accountID {
			return tx.Amount.Neg()
		}
	case core.Transfer:
		if tx.AccountID == accountID {
			return tx.Amount.Neg()
		}
		if tx.CounterpartyID == accountID {
			return tx.Amount
		}
	}
	return decimal.Zero
}
