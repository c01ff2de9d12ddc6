package ledger

import (
	"context"
	"fmt"
	"sync"

	"fincore/internal/core"
)

// Memory is an in-memory ledger. It is safe for concurrent use; Snapshot
// returns copies of the lists.
type Memory struct {
	mu   sync.Mutex
	snap Snapshot
}

// NewMemory normalizes and stores the given entities.
func NewMemory(s Snapshot) (*Memory, error) {
	accounts := make([]core.Account, len(s.Accounts))
	for i, a := range s.Accounts {
		accounts[i] = a.Normalize()
	}
	if err := core.ValidateAccounts(accounts); err != nil {
		return nil, fmt.Errorf("seed accounts: %w", err)
	}
	s.Accounts = accounts
	return &Memory{snap: copySnapshot(s)}, nil
}

// Snapshot implements Reader.
func (m *Memory) Snapshot(_ context.Context) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copySnapshot(m.snap), nil
}

// AppendTransaction implements TransactionWriter.
func (m *Memory) AppendTransaction(_ context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.snap.Transactions {
		if existing.ID == tx.ID {
			return fmt.Errorf("transaction %s already exists", tx.ID)
		}
	}
	m.snap.Transactions = append(m.snap.Transactions, tx)
	return nil
}

// RemoveTransaction deletes a transaction by id.
func (m *Memory) RemoveTransaction(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, tx := range m.snap.Transactions {
		if tx.ID == id {
			m.snap.Transactions = append(m.snap.Transactions[:i:i], m.snap.Transactions[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
}

// UpdateDebt replaces the stored debt with the same id.
func (m *Memory) UpdateDebt(_ context.Context, d core.Debt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.snap.Debts {
		if m.snap.Debts[i].ID == d.ID {
			m.snap.Debts[i] = d
			return nil
		}
	}
	return fmt.Errorf("debt %s: %w", d.ID, core.ErrNotFound)
}

func copySnapshot(s Snapshot) Snapshot {
	return Snapshot{
		Accounts:          append([]core.Account(nil), s.Accounts...),
		Transactions:      append([]core.Transaction(nil), s.Transactions...),
		Budgets:           append([]core.Budget(nil), s.Budgets...),
		RecurringPayments: append([]core.RecurringPayment(nil), s.RecurringPayments...),
		Debts:             append([]core.Debt(nil), s.Debts...),
	}
}

var (
	_ Reader            = (*Memory)(nil)
	_ TransactionWriter = (*Memory)(nil)
	_ DebtWriter        = (*Memory)(nil)
)
