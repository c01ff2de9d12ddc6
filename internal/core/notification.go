package core

import "time"

const (
	NotifyBudget          NotificationType = "budget"
	NotifyRecurring       NotificationType = "recurring"
	NotifyUnusualSpending NotificationType = "unusual_spending"
	NotifyLowBalance      NotificationType = "low_balance"
	NotifyDebt            NotificationType = "debt"
	NotifyInfo            NotificationType = "info"
)

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
	SeveritySuccess Severity = "success"
)

// Metadata keys carrying originating entity ids.
const (
	MetaBudgetID    = "budget_id"
	MetaAccountID   = "account_id"
	MetaTxID        = "transaction_id"
	MetaRecurringID = "recurring_payment_id"
	MetaDebtID      = "debt_id"
	MetaCategory    = "category"
	MetaTier        = "tier"
	MetaDueDate     = "due_date"
)

type (
	NotificationType string
	Severity         string

	// Draft is what an evaluator asks the manager to create.
	Draft struct {
		Type     NotificationType
		Severity Severity
		Title    string
		Message  string
		DeepLink string
		Metadata map[string]string
	}

	Notification struct {
		ID        string
		Type      NotificationType
		Severity  Severity
		Read      bool
		Title     string
		Message   string
		DeepLink  string
		Metadata  map[string]string
		CreatedAt time.Time
	}

	NotificationToggles struct {
		Budget          bool
		Recurring       bool
		UnusualSpending bool
		LowBalance      bool
		Debt            bool
	}

	// Thresholds are percentages except LowBalance, which is an amount in
	// the ledger's native unit.
	Thresholds struct {
		BudgetWarning   float64
		BudgetCritical  float64
		BudgetExceeded  float64
		UnusualSpending float64
		LowBalance      float64
	}

	QuietHours struct {
		Enabled   bool
		StartHour int
		EndHour   int
	}

	Preferences struct {
		Enabled    NotificationToggles
		Thresholds Thresholds
		QuietHours QuietHours
	}
)

// DefaultPreferences enables every alert type with the stock thresholds.
func DefaultPreferences() Preferences {
	return Preferences{
		Enabled: NotificationToggles{
			Budget:          true,
			Recurring:       true,
			UnusualSpending: true,
			LowBalance:      true,
			Debt:            true,
		},
		Thresholds: Thresholds{
			BudgetWarning:   80,
			BudgetCritical:  90,
			BudgetExceeded:  100,
			UnusualSpending: 150,
			LowBalance:      100,
		},
		QuietHours: QuietHours{StartHour: 22, EndHour: 7},
	}
}

// IsEnabled reports whether notifications of type t may be created.
// Info notifications cannot be switched off.
func (p Preferences) IsEnabled(t NotificationType) bool {
	switch t {
	case NotifyBudget:
		return p.Enabled.Budget
	case NotifyRecurring:
		return p.Enabled.Recurring
	case NotifyUnusualSpending:
		return p.Enabled.UnusualSpending
	case NotifyLowBalance:
		return p.Enabled.LowBalance
	case NotifyDebt:
		return p.Enabled.Debt
	case NotifyInfo:
		return true
	}
	return false
}

// Active reports whether the quiet window covers the hour of now. The
// window may wrap midnight (22 to 7).
func (q QuietHours) Active(now time.Time) bool {
	if !q.Enabled || q.StartHour == q.EndHour {
		return false
	}
	h := now.Hour()
	if q.StartHour < q.EndHour {
		return h >= q.StartHour && h < q.EndHour
	}
	return h >= q.StartHour || h < q.EndHour
}
