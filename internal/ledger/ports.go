// Package ledger defines how the core reads the user's entities.
package ledger

import (
	"context"

	"fincore/internal/core"
)

// Snapshot is the full set of entity lists an evaluation works on.
type Snapshot struct {
	Accounts          []core.Account
	Transactions      []core.Transaction
	Budgets           []core.Budget
	RecurringPayments []core.RecurringPayment
	Debts             []core.Debt
}

// Ports for inbound adapters.
type (
	Reader interface {
		Snapshot(ctx context.Context) (Snapshot, error)
	}

	TransactionWriter interface {
		AppendTransaction(ctx context.Context, tx core.Transaction) error
	}

	DebtWriter interface {
		UpdateDebt(ctx context.Context, d core.Debt) error
	}
)

// Account returns the account with id from the snapshot.
func (s Snapshot) Account(id string) (core.Account, error) {
	return core.FindAccount(s.Accounts, id)
}

// TransactionsFor returns the transactions touching the account.
func (s Snapshot) TransactionsFor(accountID string) []core.Transaction {
	var out []core.Transaction
	for _, tx := range s.Transactions {
		if tx.Touches(accountID) {
			out = append(out, tx)
		}
	}
	return out
}
