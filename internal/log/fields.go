package log

// Common field names for structured logging
const (
	FieldComponent      = "component"
	FieldError          = "error"
	FieldOperation      = "operation"
	FieldAccountID      = "account_id"
	FieldBudgetID       = "budget_id"
	FieldTransactionID  = "transaction_id"
	FieldRecurringID    = "recurring_payment_id"
	FieldDebtID         = "debt_id"
	FieldCategory       = "category"
	FieldAmount         = "amount"
	FieldNotificationID = "notification_id"
	FieldNotifyType     = "notification_type"
	FieldEvaluator      = "evaluator"
	FieldDay            = "day"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentMonitor  = "monitor"
	ComponentNotify   = "notify"
	ComponentLedger   = "ledger"
	ComponentServices = "services"
	ComponentStorage  = "storage"
	ComponentAMQP     = "amqp"
	ComponentTelegram = "telegram"
	ComponentCache    = "cache"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpEvaluate = "evaluate"
	OpPublish  = "publish"
	OpPrune    = "prune"
	OpSweep    = "sweep"
	OpValidate = "validate"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeDatabase      = "database_error"
	ErrorTypeNetwork       = "network_error"
	ErrorTypeNotFound      = "not_found_error"
	ErrorTypeInternal      = "internal_error"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithEvaluator adds the evaluator name
func (f LogFields) WithEvaluator(name string) LogFields {
	f[FieldEvaluator] = name
	return f
}

// WithTransaction adds transaction-related fields
func (f LogFields) WithTransaction(id, accountID, category, amount string) LogFields {
	f[FieldTransactionID] = id
	f[FieldAccountID] = accountID
	f[FieldCategory] = category
	f[FieldAmount] = amount
	return f
}

// WithNotification adds notification-related fields
func (f LogFields) WithNotification(id, notifyType string) LogFields {
	f[FieldNotificationID] = id
	f[FieldNotifyType] = notifyType
	return f
}

// With adds an arbitrary field
func (f LogFields) With(key string, value any) LogFields {
	f[key] = value
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
