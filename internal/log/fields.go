package log

// Common field names for structured logging.
const (
	FieldComponent  = "component"
	FieldOperation  = "operation"
	FieldError      = "error"
	FieldGroupID    = "group_id"
	FieldGroupCode  = "group_code"
	FieldUserID     = "user_id"
	FieldMemberID   = "member_id"
	FieldChoreID    = "chore_id"
	FieldChoreTitle = "chore_title"
	FieldPaymentID  = "payment_id"
	FieldItemName   = "item_name"
	FieldAmount     = "amount"
	FieldCollection = "collection"
	FieldBackend    = "backend"
	FieldDuration   = "duration_ms"
)

// Components defines standard component names.
const (
	ComponentApp     = "app"
	ComponentGroup   = "group"
	ComponentChore   = "chore"
	ComponentPayment = "payment"
	ComponentSession = "session"
	ComponentStore   = "store"
	ComponentEvents  = "events"
	ComponentBackend = "backend"
	ComponentRoller  = "roller"
	ComponentCache   = "cache"
)

// Operations defines standard operation names.
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpList     = "list"
	OpJoin     = "join"
	OpToggle   = "toggle"
	OpResolve  = "resolve"
	OpRoll     = "roll"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
