package log

// Shared field names so the services and workers stay grep-able.
const (
	FieldComponent     = "component"
	FieldError         = "error"
	FieldUserID        = "user_id"
	FieldTransactionID = "transaction_id"
	FieldGoalID        = "goal_id"
	FieldMonthKey      = "month"
	FieldHorizon       = "horizon_months"
	FieldSheetsRef     = "sheets_ref"
)
