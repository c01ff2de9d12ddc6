// Package services provides business logic and orchestration services.
package services

import (
	"context"
	"fmt"
	"time"

	"fincore/internal/balance"
	"fincore/internal/core"
	"fincore/internal/interest"
	"fincore/internal/ledger"
	"fincore/internal/log"
	"fincore/internal/monitor"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ledger is what the service needs from the ledger collaborator.
type Ledger interface {
	ledger.Reader
	ledger.TransactionWriter
}

// Evaluator receives every recorded transaction.
type Evaluator interface {
	HandleTransaction(ctx context.Context, ec monitor.EvalContext) error
}

// TransactionDraft is a transaction as entered, before an id and a
// financing snapshot are assigned.
type TransactionDraft struct {
	Kind               core.TransactionKind
	Amount             decimal.Decimal
	Category           string
	AccountID          string
	CounterpartyID     string
	Paid               bool
	Timestamp          time.Time
	RecurringPaymentID string
	DebtID             string

	// Installments > 1 finances an expense on a revolving-credit account.
	Installments  int
	WantsInterest bool
}

// TransactionService validates, records and evaluates new transactions.
type TransactionService struct {
	ledger    Ledger
	evaluator Evaluator
	prefs     func() core.Preferences
	now       func() time.Time
	logger    *log.Logger
}

func NewTransactionService(l Ledger, evaluator Evaluator, prefs func() core.Preferences, logger *log.Logger) *TransactionService {
	if prefs == nil {
		prefs = core.DefaultPreferences
	}
	if logger == nil {
		logger = log.FromContext(context.Background())
	}
	return &TransactionService{
		ledger:    l,
		evaluator: evaluator,
		prefs:     prefs,
		now:       time.Now,
		logger:    logger.WithComponent(log.ComponentServices),
	}
}

// Record saves a transaction and runs the per-transaction evaluators on it.
//
// Invalid input, an unknown account or an exceeded credit limit block the
// save. Monitoring failures are logged and never fail the call.
func (s *TransactionService) Record(ctx context.Context, d TransactionDraft) (core.Transaction, error) {
	tx := core.Transaction{
		ID:                 uuid.NewString(),
		Kind:               d.Kind,
		Amount:             d.Amount,
		Category:           d.Category,
		AccountID:          d.AccountID,
		CounterpartyID:     d.CounterpartyID,
		Paid:               d.Paid,
		Timestamp:          d.Timestamp,
		RecurringPaymentID: d.RecurringPaymentID,
		DebtID:             d.DebtID,
	}
	if tx.Timestamp.IsZero() {
		tx.Timestamp = s.now()
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("validate transaction: %w", err)
	}

	snap, err := s.ledger.Snapshot(ctx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("read ledger: %w", err)
	}
	account, err := snap.Account(tx.AccountID)
	if err != nil {
		return core.Transaction{}, err
	}
	if tx.Kind == core.Transfer {
		if _, err := snap.Account(tx.CounterpartyID); err != nil {
			return core.Transaction{}, err
		}
	}

	if tx.Kind == core.Expense {
		strategy, err := balance.For(account.Kind)
		if err != nil {
			return core.Transaction{}, err
		}
		if v := strategy.Validate(account, tx.Amount, snap.TransactionsFor(account.ID)); !v.OK {
			return core.Transaction{}, fmt.Errorf("account %s: %w", account.ID, v.Err())
		}
		if account.Kind == core.RevolvingCredit && d.Installments > 1 {
			plan, err := financingPlan(account, tx.Amount, d.Installments, d.WantsInterest)
			if err != nil {
				return core.Transaction{}, fmt.Errorf("financing: %w", err)
			}
			snapshot := plan.Snapshot()
			tx.Financing = &snapshot
		}
	}

	debt, err := s.debtAfterPayment(snap, tx)
	if err != nil {
		return core.Transaction{}, err
	}

	if err := s.ledger.AppendTransaction(ctx, tx); err != nil {
		return core.Transaction{}, fmt.Errorf("append transaction: %w", err)
	}
	if debt != nil {
		if err := s.updateDebt(ctx, *debt); err != nil {
			return tx, err
		}
	}

	s.logger.InfoContext(ctx, "Transaction recorded",
		log.NewFields().WithTransaction(tx.ID, tx.AccountID, tx.Category, tx.Amount.String()).With("kind", string(tx.Kind)).ToSlice()...)

	s.evaluate(ctx, tx)
	return tx, nil
}

// financingPlan computes the installment plan at the account's current
// rate. An account without a rate finances interest-free.
func financingPlan(account core.Account, amount decimal.Decimal, count int, wantsInterest bool) (interest.Plan, error) {
	rate := decimal.Zero
	if account.AnnualRate != nil {
		rate = *account.AnnualRate
	}
	return interest.ComputeInterestPlan(amount, rate, count, wantsInterest)
}

// debtAfterPayment returns the linked debt with a paid transaction applied,
// or nil when the transaction is not a debt payment.
func (s *TransactionService) debtAfterPayment(snap ledger.Snapshot, tx core.Transaction) (*core.Debt, error) {
	if tx.DebtID == "" || !tx.Paid {
		return nil, nil
	}
	for _, d := range snap.Debts {
		if d.ID != tx.DebtID {
			continue
		}
		if err := d.ApplyPayment(tx.Amount, tx.Timestamp); err != nil {
			return nil, fmt.Errorf("debt %s: %w", d.ID, err)
		}
		return &d, nil
	}
	return nil, fmt.Errorf("debt %s: %w", tx.DebtID, core.ErrNotFound)
}

func (s *TransactionService) updateDebt(ctx context.Context, d core.Debt) error {
	w, ok := s.ledger.(ledger.DebtWriter)
	if !ok {
		s.logger.WarnContext(ctx, "Ledger does not store debt updates", log.FieldDebtID, d.ID)
		return nil
	}
	if err := w.UpdateDebt(ctx, d); err != nil {
		return fmt.Errorf("update debt %s: %w", d.ID, err)
	}
	return nil
}

func (s *TransactionService) evaluate(ctx context.Context, tx core.Transaction) {
	if s.evaluator == nil {
		return
	}
	snap, err := s.ledger.Snapshot(ctx)
	if err != nil {
		s.logger.LogError(ctx, "Failed to read ledger for evaluation", err, log.OpEvaluate,
			log.NewFields().With(log.FieldTransactionID, tx.ID))
		return
	}
	ec := monitor.EvalContext{Now: s.now(), Ledger: snap, Prefs: s.prefs(), Transaction: &tx}
	if err := s.evaluator.HandleTransaction(ctx, ec); err != nil {
		s.logger.LogError(ctx, "Monitoring failed after recording transaction", err, log.OpEvaluate,
			log.NewFields().With(log.FieldTransactionID, tx.ID))
	}
}
