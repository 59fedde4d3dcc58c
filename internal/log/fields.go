package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldError     = "error"
	FieldOperation = "operation"
	FieldEntity    = "entity"
	FieldOutboxID  = "outbox_id"
	FieldYear      = "year"
	FieldMonth     = "month"
	FieldDebtID    = "debt_id"
	FieldCount     = "count"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentAPI     = "api"
	ComponentStore   = "store"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentExport  = "export"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpRefresh  = "refresh"
	OpDrain    = "drain"
	OpSnapshot = "snapshot"
	OpExport   = "export"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
