package log

// Field names shared across components so records stay queryable.
const (
	FieldComponent    = "component"
	FieldRequestID    = "request_id"
	FieldClientIP     = "client_ip"
	FieldMethod       = "method"
	FieldPath         = "path"
	FieldStatusCode   = "status_code"
	FieldDuration     = "duration_ms"
	FieldUserAgent    = "user_agent"
	FieldError        = "error"
	FieldBackend      = "backend"
	FieldRunID        = "run_id"
	FieldPeriods      = "periods"
	FieldTransactions = "transactions"
	FieldSkipped      = "skipped"
	FieldExchange     = "exchange"
	FieldQueue        = "queue"
)

// Component names.
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentWorker    = "worker"
	ComponentEvents    = "events"
	ComponentBackend   = "backend"
	ComponentSecurity  = "security"
	ComponentRateLimit = "rate_limit"
	ComponentCLI       = "cli"
)
