package domain

const (
	TransactionIncoming = "incoming"
	TransactionOutgoing = "outgoing"
)

// Transaction is one entry in the append-only stock ledger. Rows are never
// updated or deleted; they are the audit trail for every quantity change.
type Transaction struct {
	ID              int64    `db:"id" json:"id"`
	MedicineID      int64    `db:"medicine_id" json:"medicine_id"`
	TransactionType string   `db:"transaction_type" json:"transaction_type"`
	Quantity        int64    `db:"quantity" json:"quantity"`
	UnitPrice       *float64 `db:"unit_price" json:"unit_price,omitempty"`
	TotalAmount     *float64 `db:"total_amount" json:"total_amount,omitempty"`
	BatchNumber     *string  `db:"batch_number" json:"batch_number,omitempty"`
	ExpiryDate      *string  `db:"expiry_date" json:"expiry_date,omitempty"`
	Reason          *string  `db:"reason" json:"reason,omitempty"`
	Date            string   `db:"date" json:"date"`
	UserID          int64    `db:"user_id" json:"user_id"`
}
