package domain

const (
	AlertLowStock      = "low_stock"
	AlertExpiryWarning = "expiry_warning"
	AlertExpired       = "expired"
)

type StockAlert struct {
	ID           int64   `db:"id" json:"id"`
	MedicineID   int64   `db:"medicine_id" json:"medicine_id"`
	AlertType    string  `db:"alert_type" json:"alert_type"`
	Message      string  `db:"message" json:"message"`
	IsResolved   bool    `db:"is_resolved" json:"is_resolved"`
	CreatedAt    string  `db:"created_at" json:"created_at"`
	ResolvedAt   *string `db:"resolved_at" json:"resolved_at,omitempty"`
	MedicineName *string `db:"medicine_name" json:"medicine_name,omitempty"`
}
