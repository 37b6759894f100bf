package domain

type Medicine struct {
	ID           int64    `db:"id" json:"id"`
	Name         string   `db:"name" json:"name"`
	Description  *string  `db:"description" json:"description,omitempty"`
	Quantity     int64    `db:"quantity" json:"quantity"`
	Price        float64  `db:"price" json:"price"`
	SupplierID   *int64   `db:"supplier_id" json:"supplier_id,omitempty"`
	BatchNumber  *string  `db:"batch_number" json:"batch_number,omitempty"`
	ExpiryDate   *string  `db:"expiry_date" json:"expiry_date,omitempty"`
	MinimumStock int64    `db:"minimum_stock" json:"minimum_stock"`
	MaximumStock int64    `db:"maximum_stock" json:"maximum_stock"`
	Location     *string  `db:"location" json:"location,omitempty"`
	Category     *string  `db:"category" json:"category,omitempty"`
	SupplierName *string  `db:"supplier_name" json:"supplier_name,omitempty"`
	CreatedAt    string   `db:"created_at" json:"created_at"`
	UpdatedAt    string   `db:"updated_at" json:"updated_at"`
}

// MedicinePatch names exactly which medicine fields an update sets. A nil
// field is left untouched; quantity is absent on purpose, it only moves
// through the stock engine.
type MedicinePatch struct {
	Name         *string  `json:"name,omitempty"`
	Description  *string  `json:"description,omitempty"`
	Price        *float64 `json:"price,omitempty"`
	SupplierID   *int64   `json:"supplier_id,omitempty"`
	BatchNumber  *string  `json:"batch_number,omitempty"`
	ExpiryDate   *string  `json:"expiry_date,omitempty"`
	MinimumStock *int64   `json:"minimum_stock,omitempty"`
	MaximumStock *int64   `json:"maximum_stock,omitempty"`
	Location     *string  `json:"location,omitempty"`
	Category     *string  `json:"category,omitempty"`
}
