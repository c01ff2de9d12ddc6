package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"fincore/internal/core"

	"github.com/shopspring/decimal"
)

// seedFile is the on-disk shape of a ledger seed. Amounts accept JSON
// numbers or strings.
type seedFile struct {
	Accounts []struct {
		ID               string           `json:"id"`
		Name             string           `json:"name"`
		Kind             string           `json:"kind"`
		OpeningBalance   decimal.Decimal  `json:"opening_balance"`
		CreditLimit      decimal.Decimal  `json:"credit_limit"`
		CutoffDay        int              `json:"cutoff_day"`
		PaymentDay       int              `json:"payment_day"`
		AnnualRate       *decimal.Decimal `json:"annual_rate,omitempty"`
		FundingAccountID string           `json:"funding_account_id,omitempty"`
		IsDefault        bool             `json:"is_default"`
		Order            int              `json:"order"`
	} `json:"accounts"`
	Transactions []struct {
		ID                 string          `json:"id"`
		Kind               string          `json:"kind"`
		Amount             decimal.Decimal `json:"amount"`
		Category           string          `json:"category"`
		AccountID          string          `json:"account_id"`
		CounterpartyID     string          `json:"counterparty_id,omitempty"`
		Paid               bool            `json:"paid"`
		Timestamp          time.Time       `json:"timestamp"`
		RecurringPaymentID string          `json:"recurring_payment_id,omitempty"`
		DebtID             string          `json:"debt_id,omitempty"`
	} `json:"transactions"`
	Budgets []struct {
		ID           string          `json:"id"`
		Category     string          `json:"category"`
		MonthlyLimit decimal.Decimal `json:"monthly_limit"`
		Active       bool            `json:"active"`
	} `json:"budgets"`
	RecurringPayments []struct {
		ID        string          `json:"id"`
		Name      string          `json:"name"`
		Amount    decimal.Decimal `json:"amount"`
		DueDay    int             `json:"due_day"`
		DueMonth  int             `json:"due_month,omitempty"`
		Frequency string          `json:"frequency"`
		Active    bool            `json:"active"`
	} `json:"recurring_payments"`
	Debts []struct {
		ID              string          `json:"id"`
		Counterparty    string          `json:"counterparty"`
		Direction       string          `json:"direction"`
		OriginalAmount  decimal.Decimal `json:"original_amount"`
		RemainingAmount decimal.Decimal `json:"remaining_amount"`
		Settled         bool            `json:"settled"`
		SettledAt       time.Time       `json:"settled_at"`
		CreatedAt       time.Time       `json:"created_at"`
	} `json:"debts"`
}

// ParseSeed decodes a JSON ledger seed.
func ParseSeed(data []byte) (Snapshot, error) {
	var f seedFile
	if err := json.Unmarshal(data, &f); err != nil {
		return Snapshot{}, fmt.Errorf("decode ledger seed: %w", err)
	}

	var s Snapshot
	for _, a := range f.Accounts {
		s.Accounts = append(s.Accounts, core.Account{
			ID: a.ID, Name: a.Name, Kind: core.AccountKind(a.Kind),
			OpeningBalance: a.OpeningBalance, CreditLimit: a.CreditLimit,
			CutoffDay: a.CutoffDay, PaymentDay: a.PaymentDay, AnnualRate: a.AnnualRate,
			FundingAccountID: a.FundingAccountID, IsDefault: a.IsDefault, Order: a.Order,
		})
	}
	for _, t := range f.Transactions {
		tx := core.Transaction{
			ID: t.ID, Kind: core.TransactionKind(t.Kind), Amount: t.Amount, Category: t.Category,
			AccountID: t.AccountID, CounterpartyID: t.CounterpartyID, Paid: t.Paid, Timestamp: t.Timestamp,
			RecurringPaymentID: t.RecurringPaymentID, DebtID: t.DebtID,
		}
		if err := tx.Validate(); err != nil {
			return Snapshot{}, fmt.Errorf("transaction %s: %w", t.ID, err)
		}
		s.Transactions = append(s.Transactions, tx)
	}
	for _, b := range f.Budgets {
		s.Budgets = append(s.Budgets, core.Budget{ID: b.ID, Category: b.Category, MonthlyLimit: b.MonthlyLimit, Active: b.Active})
	}
	for _, r := range f.RecurringPayments {
		rp := core.RecurringPayment{
			ID: r.ID, Name: r.Name, Amount: r.Amount, DueDay: r.DueDay, DueMonth: r.DueMonth,
			Frequency: core.Frequency(r.Frequency), Active: r.Active,
		}
		if err := rp.Validate(); err != nil {
			return Snapshot{}, fmt.Errorf("recurring payment %s: %w", r.ID, err)
		}
		s.RecurringPayments = append(s.RecurringPayments, rp)
	}
	for _, d := range f.Debts {
		s.Debts = append(s.Debts, core.Debt{
			ID: d.ID, Counterparty: d.Counterparty, Direction: core.DebtDirection(d.Direction),
			OriginalAmount: d.OriginalAmount, RemainingAmount: d.RemainingAmount,
			Settled: d.Settled, SettledAt: d.SettledAt, CreatedAt: d.CreatedAt,
		})
	}
	return s, nil
}

// NewMemoryFromFile seeds a Memory ledger from a JSON file. A missing
// path yields an empty ledger.
func NewMemoryFromFile(path string) (*Memory, error) {
	if path == "" {
		return NewMemory(Snapshot{})
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewMemory(Snapshot{})
		}
		return nil, fmt.Errorf("read ledger seed: %w", err)
	}
	s, err := ParseSeed(data)
	if err != nil {
		return nil, err
	}
	return NewMemory(s)
}
