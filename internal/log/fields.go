package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRunID      = "run_id"
	FieldBackend    = "backend"
	FieldSuccess    = "success"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldExpenseID  = "expense_id"
	FieldDate       = "date"
	FieldCategory   = "category"
	FieldAmount     = "amount"
	FieldYear       = "year"
	FieldMonth      = "month"
	FieldStartDate  = "start_date"
	FieldEndDate    = "end_date"
	FieldCount      = "count"
	FieldRow        = "row"
	FieldSheet      = "sheet"
	FieldMessageID  = "message_id"
	FieldDurationMs = "duration_ms"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentCLI     = "cli"
	ComponentStorage = "storage"
	ComponentSheets  = "sheets"
	ComponentMemory  = "memory"
	ComponentBackend = "backend"
	ComponentAMQP    = "amqp"
	ComponentEvents  = "events"
	ComponentCharts  = "charts"
)

// Operations defines standard operation names
const (
	OpInitialize      = "initialize"
	OpCreate          = "create"
	OpList            = "list"
	OpListByDateRange = "list_by_date_range"
	OpListByCategory  = "list_by_category"
	OpUpdate          = "update"
	OpDelete          = "delete"
	OpCategorySummary = "category_summary"
	OpMonthlySummary  = "monthly_summary"
	OpPublish         = "publish"
	OpConsume         = "consume"
	OpStartup         = "startup"
	OpShutdown        = "shutdown"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeDatabase      = "database_error"
	ErrorTypeNetwork       = "network_error"
	ErrorTypeNotFound      = "not_found_error"
)

// FieldErrorType tags the error category of a failure.
const FieldErrorType = "error_type"

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

// WithErrorType adds the error category
func (f LogFields) WithErrorType(errorType string) LogFields {
	f[FieldErrorType] = errorType
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithExpenseID adds the expense id
func (f LogFields) WithExpenseID(id int64) LogFields {
	f[FieldExpenseID] = id
	return f
}

// WithExpense adds expense-related fields
func (f LogFields) WithExpense(date, category string, amount int64) LogFields {
	f[FieldDate] = date
	f[FieldCategory] = category
	f[FieldAmount] = amount
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
