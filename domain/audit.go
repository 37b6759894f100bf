package domain

const (
	AuditInsert = "INSERT"
	AuditUpdate = "UPDATE"
	AuditDelete = "DELETE"
)

// AuditLogEntry is a generic before/after change record for any table.
type AuditLogEntry struct {
	ID        int64   `db:"id" json:"id"`
	TableName string  `db:"table_name" json:"table_name"`
	RecordID  int64   `db:"record_id" json:"record_id"`
	Action    string  `db:"action" json:"action"`
	OldValues *string `db:"old_values" json:"old_values,omitempty"`
	NewValues *string `db:"new_values" json:"new_values,omitempty"`
	UserID    *int64  `db:"user_id" json:"user_id,omitempty"`
	Timestamp string  `db:"timestamp" json:"timestamp"`
}
