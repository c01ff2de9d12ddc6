package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Standard        AccountKind = "standard"
	RevolvingCredit AccountKind = "revolving_credit"
	Cash            AccountKind = "cash"
)

const (
	Income   TransactionKind = "income"
	Expense  TransactionKind = "expense"
	Transfer TransactionKind = "transfer"
)

const (
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

const (
	Lent     DebtDirection = "lent"
	Borrowed DebtDirection = "borrowed"
)

type (
	AccountKind     string
	TransactionKind string
	Frequency       string
	DebtDirection   string

	Account struct {
		ID               string
		Name             string
		Kind             AccountKind
		OpeningBalance   decimal.Decimal // always zero for revolving credit
		CreditLimit      decimal.Decimal
		CutoffDay        int
		PaymentDay       int
		AnnualRate       *decimal.Decimal // effective annual percentage
		FundingAccountID string           // standard account that pays the card
		IsDefault        bool
		Order            int
	}

	// InstallmentPlan is the financing snapshot frozen on a financed
	// expense when it is recorded.
	InstallmentPlan struct {
		HasInterest       bool
		InstallmentCount  int
		InstallmentAmount decimal.Decimal
		TotalInterest     decimal.Decimal
		RateAtPurchase    decimal.Decimal
	}

	Transaction struct {
		ID                 string
		Kind               TransactionKind
		Amount             decimal.Decimal // magnitude, always positive
		Category           string
		AccountID          string
		CounterpartyID     string
		Paid               bool
		Timestamp          time.Time
		RecurringPaymentID string
		DebtID             string
		Financing          *InstallmentPlan
	}

	Budget struct {
		ID           string
		Category     string
		MonthlyLimit decimal.Decimal
		Active       bool
	}

	RecurringPayment struct {
		ID        string
		Name      string
		Amount    decimal.Decimal
		DueDay    int
		DueMonth  int // yearly payments only
		Frequency Frequency
		Active    bool
	}

	Debt struct {
		ID              string
		Counterparty    string
		Direction       DebtDirection
		OriginalAmount  decimal.Decimal
		RemainingAmount decimal.Decimal
		Settled         bool
		SettledAt       time.Time
		CreatedAt       time.Time
	}
)

var (
	ErrInvalidAmount     = fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	ErrInvalidKind       = fmt.Errorf("%w: unknown kind", ErrInvalidInput)
	ErrMissingAccount    = fmt.Errorf("%w: account id is required", ErrInvalidInput)
	ErrMissingTimestamp  = fmt.Errorf("%w: timestamp is required", ErrInvalidInput)
	ErrInvalidDay        = fmt.Errorf("%w: day of month must be between 1 and 31", ErrInvalidInput)
	ErrMultipleDefaults  = fmt.Errorf("%w: more than one default account", ErrInvalidInput)
	ErrTransferSameParty = fmt.Errorf("%w: transfer needs a distinct counterparty account", ErrInvalidInput)
)

// Normalize forces the invariants that depend on the account kind.
func (a Account) Normalize() Account {
	if a.Kind == RevolvingCredit {
		a.OpeningBalance = decimal.Zero
	}
	return a
}

func (a Account) Validate() error {
	switch a.Kind {
	case Standard, Cash:
	case RevolvingCredit:
		if a.CreditLimit.IsNegative() {
			return fmt.Errorf("%w: credit limit cannot be negative", ErrInvalidInput)
		}
		if a.CutoffDay < 1 || a.CutoffDay > 31 || a.PaymentDay < 1 || a.PaymentDay > 31 {
			return ErrInvalidDay
		}
	default:
		return fmt.Errorf("%w: account %q", ErrInvalidKind, a.Kind)
	}
	if strings.TrimSpace(a.ID) == "" {
		return ErrMissingAccount
	}
	return nil
}

// ValidateAccounts checks the invariants that span the whole account list.
func ValidateAccounts(accounts []Account) error {
	defaults := 0
	for _, a := range accounts {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("account %s: %w", a.ID, err)
		}
		if a.IsDefault {
			defaults++
		}
	}
	if defaults > 1 {
		return ErrMultipleDefaults
	}
	return nil
}

// SetDefault moves the default flag to the account with the given id.
func SetDefault(accounts []Account, id string) error {
	found := false
	for i := range accounts {
		if accounts[i].ID == id {
			found = true
		}
	}
	if !found {
		return fmt.Errorf("account %s: %w", id, ErrNotFound)
	}
	for i := range accounts {
		accounts[i].IsDefault = accounts[i].ID == id
	}
	return nil
}

// FindAccount returns the account with the given id.
func FindAccount(accounts []Account, id string) (Account, error) {
	for _, a := range accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return Account{}, fmt.Errorf("account %s: %w", id, ErrNotFound)
}

func (t Transaction) Validate() error {
	switch t.Kind {
	case Income, Expense, Transfer:
	default:
		return fmt.Errorf("%w: transaction %q", ErrInvalidKind, t.Kind)
	}
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(t.AccountID) == "" {
		return ErrMissingAccount
	}
	if t.Timestamp.IsZero() {
		return ErrMissingTimestamp
	}
	if t.Kind == Transfer && (t.CounterpartyID == "" || t.CounterpartyID == t.AccountID) {
		return ErrTransferSameParty
	}
	return nil
}

// Touches reports whether the transaction affects the given account.
func (t Transaction) Touches(accountID string) bool {
	return t.AccountID == accountID || (t.Kind == Transfer && t.CounterpartyID == accountID)
}

// IsPaidExpense reports whether the transaction is a settled expense.
func (t Transaction) IsPaidExpense() bool {
	return t.Kind == Expense && t.Paid
}

func (rp RecurringPayment) Validate() error {
	switch rp.Frequency {
	case Monthly:
	case Yearly:
		if rp.DueMonth < 1 || rp.DueMonth > 12 {
			return fmt.Errorf("%w: yearly payment needs a due month", ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: frequency %q", ErrInvalidKind, rp.Frequency)
	}
	if rp.DueDay < 1 || rp.DueDay > 31 {
		return ErrInvalidDay
	}
	if !rp.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

// ApplyPayment reduces the remaining amount. Reaching zero settles the debt.
func (d *Debt) ApplyPayment(amount decimal.Decimal, at time.Time) error {
	if d.Settled {
		return errors.New("debt already settled")
	}
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	d.RemainingAmount = d.RemainingAmount.Sub(amount)
	if !d.RemainingAmount.IsPositive() {
		d.RemainingAmount = decimal.Zero
		d.Settled = true
		d.SettledAt = at
	}
	return nil
}

// AgeDays returns the number of whole days since the debt was created.
func (d Debt) AgeDays(now time.Time) int {
	if now.Before(d.CreatedAt) {
		return 0
	}
	return int(now.Sub(d.CreatedAt).Hours() / 24)
}
