package domain

const (
	StockStatusLow         = "LOW"
	StockStatusOverstocked = "OVERSTOCKED"
	StockStatusNormal      = "NORMAL"
)

// StockReportRow is one medicine's valuation line in the stock report.
type StockReportRow struct {
	Name         string  `db:"name" json:"name"`
	Quantity     int64   `db:"quantity" json:"quantity"`
	MinimumStock int64   `db:"minimum_stock" json:"minimum_stock"`
	MaximumStock int64   `db:"maximum_stock" json:"maximum_stock"`
	Price        float64 `db:"price" json:"price"`
	StockValue   float64 `db:"stock_value" json:"stock_value"`
	SupplierName *string `db:"supplier_name" json:"supplier_name,omitempty"`
	ExpiryDate   *string `db:"expiry_date" json:"expiry_date,omitempty"`
	StockStatus  string  `db:"stock_status" json:"stock_status"`
}

type TransactionReportRow struct {
	Date            string   `db:"date" json:"date"`
	MedicineName    string   `db:"medicine_name" json:"medicine_name"`
	TransactionType string   `db:"transaction_type" json:"transaction_type"`
	Quantity        int64    `db:"quantity" json:"quantity"`
	UnitPrice       *float64 `db:"unit_price" json:"unit_price,omitempty"`
	TotalAmount     *float64 `db:"total_amount" json:"total_amount,omitempty"`
	Username        string   `db:"username" json:"username"`
	Reason          *string  `db:"reason" json:"reason,omitempty"`
}

type TransactionTypeSummary struct {
	TransactionType  string  `db:"transaction_type" json:"transaction_type"`
	TotalAmount      float64 `db:"total_amount" json:"total_amount"`
	TransactionCount int64   `db:"transaction_count" json:"transaction_count"`
}

type FinancialSummary struct {
	TotalStockValue float64                  `json:"total_stock_value"`
	Transactions    []TransactionTypeSummary `json:"transactions"`
}

type MonthlySalesTotals struct {
	TotalSales          float64 `db:"total_sales" json:"total_sales"`
	TransactionCount    int64   `db:"transaction_count" json:"transaction_count"`
	TotalQuantitySold   int64   `db:"total_quantity_sold" json:"total_quantity_sold"`
	UniqueMedicinesSold int64   `db:"unique_medicines_sold" json:"unique_medicines_sold"`
}

type MedicineSalesRow struct {
	MedicineName      string   `db:"medicine_name" json:"medicine_name"`
	Category          *string  `db:"category" json:"category,omitempty"`
	TotalQuantitySold int64    `db:"total_quantity_sold" json:"total_quantity_sold"`
	AvgUnitPrice      *float64 `db:"avg_unit_price" json:"avg_unit_price,omitempty"`
	TotalRevenue      float64  `db:"total_revenue" json:"total_revenue"`
	TransactionCount  int64    `db:"transaction_count" json:"transaction_count"`
	SupplierName      *string  `db:"supplier_name" json:"supplier_name,omitempty"`
}

type TopSellerRow struct {
	Name         string  `db:"name" json:"name"`
	QuantitySold int64   `db:"quantity_sold" json:"quantity_sold"`
	Revenue      float64 `db:"revenue" json:"revenue"`
}

type CategorySalesRow struct {
	Category             *string `db:"category" json:"category,omitempty"`
	CategoryRevenue      float64 `db:"category_revenue" json:"category_revenue"`
	CategoryQuantity     int64   `db:"category_quantity" json:"category_quantity"`
	CategoryTransactions int64   `db:"category_transactions" json:"category_transactions"`
}

// MonthlySalesReport is the detailed breakdown for one (year, month).
type MonthlySalesReport struct {
	Month               int                `json:"month"`
	Year                int                `json:"year"`
	MonthlySalesTotals
	MedicineBreakdown   []MedicineSalesRow `json:"medicine_breakdown"`
	TopSellingMedicines []TopSellerRow     `json:"top_selling_medicines"`
	CategoryBreakdown   []CategorySalesRow `json:"category_breakdown"`
	GeneratedAt         string             `json:"generated_at"`
}
