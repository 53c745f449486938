package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldSuccess    = "success"
	FieldError      = "error"
	FieldOperation  = "operation"

	FieldMonthKey       = "month_key"
	FieldDebtID         = "debt_id"
	FieldInstallmentID  = "installment_id"
	FieldSubscriptionID = "subscription_id"
	FieldCardID         = "card_id"
	FieldAmountCents    = "amount_cents"
	FieldCollection     = "collection"
	FieldSheetsRef      = "sheets_ref"
)

// Components defines standard component names
const (
	ComponentApp          = "app"
	ComponentHTTP         = "http"
	ComponentDebt         = "debt"
	ComponentInstallment  = "installment"
	ComponentSubscription = "subscription"
	ComponentCard         = "card"
	ComponentStorage      = "storage"
	ComponentAMQP         = "amqp"
	ComponentWorker       = "worker"
	ComponentBilling      = "billing"
	ComponentExport       = "export"
	ComponentCache        = "cache"
	ComponentRateLimit    = "rate_limit"
	ComponentTrace        = "trace"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpToggle   = "toggle"
	OpExport   = "export"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)
