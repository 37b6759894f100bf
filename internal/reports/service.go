package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"medware/m/domain"
)

// Service produces read-only aggregations over medicines, transactions and
// suppliers. Nothing here mutates storage.
type Service struct {
	db  *sqlx.DB
	log zerolog.Logger
	now func() time.Time
}

func New(db *sqlx.DB, log zerolog.Logger) *Service {
	return &Service{db: db, log: log, now: time.Now}
}

// salesAmount values a ledger row: the stored total wins, a missing total
// falls back to quantity times unit price, a row with neither counts as zero.
const salesAmount = `COALESCE(t.total_amount, t.quantity * t.unit_price, 0)`

// StockReport values every medicine and tags it LOW, OVERSTOCKED or NORMAL
// against its thresholds, most valuable stock first.
func (s *Service) StockReport(ctx context.Context) ([]domain.StockReportRow, error) {
	var rows []domain.StockReportRow
	err := s.db.SelectContext(ctx, &rows, `
        SELECT
            m.name,
            m.quantity,
            m.minimum_stock,
            m.maximum_stock,
            m.price,
            (m.quantity * m.price) AS stock_value,
            s.name AS supplier_name,
            m.expiry_date,
            CASE
                WHEN m.quantity <= m.minimum_stock THEN 'LOW'
                WHEN m.quantity >= m.maximum_stock THEN 'OVERSTOCKED'
                ELSE 'NORMAL'
            END AS stock_status
        FROM medicines m
        LEFT JOIN suppliers s ON m.supplier_id = s.id
        ORDER BY stock_value DESC`)
	if err != nil {
		return nil, fmt.Errorf("stock report: %w", err)
	}
	return rows, nil
}

// TransactionReport joins the ledger with medicine and user names, newest
// first, optionally bounded to [from, to].
func (s *Service) TransactionReport(ctx context.Context, from, to string) ([]domain.TransactionReportRow, error) {
	query := `
        SELECT
            t.date,
            m.name AS medicine_name,
            t.transaction_type,
            t.quantity,
            t.unit_price,
            t.total_amount,
            u.username,
            t.reason
        FROM transactions t
        JOIN medicines m ON t.medicine_id = m.id
        JOIN users u ON t.user_id = u.id`
	var args []any
	if from != "" && to != "" {
		query += ` WHERE t.date BETWEEN ? AND ?`
		args = append(args, from, to)
	}
	query += ` ORDER BY t.date DESC, t.id DESC`

	var rows []domain.TransactionReportRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("transaction report: %w", err)
	}
	return rows, nil
}

// FinancialSummary reports the current stock valuation plus per-type ledger
// sums and counts, optionally bounded to [from, to].
func (s *Service) FinancialSummary(ctx context.Context, from, to string) (*domain.FinancialSummary, error) {
	var summary domain.FinancialSummary
	err := s.db.GetContext(ctx, &summary.TotalStockValue,
		`SELECT COALESCE(SUM(quantity * price), 0) FROM medicines`)
	if err != nil {
		return nil, fmt.Errorf("total stock value: %w", err)
	}

	query := `
        SELECT
            t.transaction_type,
            SUM(` + salesAmount + `) AS total_amount,
            COUNT(*) AS transaction_count
        FROM transactions t`
	var args []any
	if from != "" && to != "" {
		query += ` WHERE t.date BETWEEN ? AND ?`
		args = append(args, from, to)
	}
	query += ` GROUP BY t.transaction_type`

	if err := s.db.SelectContext(ctx, &summary.Transactions, query, args...); err != nil {
		return nil, fmt.Errorf("transaction totals: %w", err)
	}
	return &summary, nil
}

// TotalMonthlySales sums outgoing ledger amounts for one (year, month).
func (s *Service) TotalMonthlySales(ctx context.Context, year, month int) (float64, error) {
	totals, err := s.monthlyTotals(ctx, year, month)
	if err != nil {
		return 0, err
	}
	s.log.Info().Int("year", year).Int("month", month).
		Float64("total_sales", totals.TotalSales).
		Int64("transactions", totals.TransactionCount).
		Msg("monthly sales report generated")
	return totals.TotalSales, nil
}

func (s *Service) monthlyTotals(ctx context.Context, year, month int) (*domain.MonthlySalesTotals, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("invalid month %d", month)
	}
	var totals domain.MonthlySalesTotals
	err := s.db.GetContext(ctx, &totals, `
        SELECT
            COALESCE(SUM(`+salesAmount+`), 0) AS total_sales,
            COUNT(*) AS transaction_count,
            COALESCE(SUM(t.quantity), 0) AS total_quantity_sold,
            COUNT(DISTINCT t.medicine_id) AS unique_medicines_sold
        FROM transactions t
        WHERE t.transaction_type = 'outgoing'
          AND strftime('%Y', t.date) = ?
          AND strftime('%m', t.date) = ?`,
		fmt.Sprintf("%04d", year), fmt.Sprintf("%02d", month))
	if err != nil {
		return nil, fmt.Errorf("monthly totals: %w", err)
	}
	return &totals, nil
}

// DetailedMonthlySales breaks one month's outgoing sales down by medicine,
// the ten best sellers by quantity, and category.
func (s *Service) DetailedMonthlySales(ctx context.Context, year, month int) (*domain.MonthlySalesReport, error) {
	totals, err := s.monthlyTotals(ctx, year, month)
	if err != nil {
		return nil, err
	}
	yearArg := fmt.Sprintf("%04d", year)
	monthArg := fmt.Sprintf("%02d", month)

	var breakdown []domain.MedicineSalesRow
	err = s.db.SelectContext(ctx, &breakdown, `
        SELECT
            m.name AS medicine_name,
            m.category,
            SUM(t.quantity) AS total_quantity_sold,
            AVG(t.unit_price) AS avg_unit_price,
            SUM(`+salesAmount+`) AS total_revenue,
            COUNT(*) AS transaction_count,
            s.name AS supplier_name
        FROM transactions t
        JOIN medicines m ON t.medicine_id = m.id
        LEFT JOIN suppliers s ON m.supplier_id = s.id
        WHERE t.transaction_type = 'outgoing'
          AND strftime('%Y', t.date) = ?
          AND strftime('%m', t.date) = ?
        GROUP BY m.id, m.name, m.category, s.name
        ORDER BY total_revenue DESC`, yearArg, monthArg)
	if err != nil {
		return nil, fmt.Errorf("medicine breakdown: %w", err)
	}

	var topSelling []domain.TopSellerRow
	err = s.db.SelectContext(ctx, &topSelling, `
        SELECT
            m.name,
            SUM(t.quantity) AS quantity_sold,
            SUM(`+salesAmount+`) AS revenue
        FROM transactions t
        JOIN medicines m ON t.medicine_id = m.id
        WHERE t.transaction_type = 'outgoing'
          AND strftime('%Y', t.date) = ?
          AND strftime('%m', t.date) = ?
        GROUP BY m.id, m.name
        ORDER BY quantity_sold DESC
        LIMIT 10`, yearArg, monthArg)
	if err != nil {
		return nil, fmt.Errorf("top sellers: %w", err)
	}

	var categories []domain.CategorySalesRow
	err = s.db.SelectContext(ctx, &categories, `
        SELECT
            m.category,
            SUM(`+salesAmount+`) AS category_revenue,
            SUM(t.quantity) AS category_quantity,
            COUNT(*) AS category_transactions
        FROM transactions t
        JOIN medicines m ON t.medicine_id = m.id
        WHERE t.transaction_type = 'outgoing'
          AND strftime('%Y', t.date) = ?
          AND strftime('%m', t.date) = ?
        GROUP BY m.category
        ORDER BY category_revenue DESC`, yearArg, monthArg)
	if err != nil {
		return nil, fmt.Errorf("category breakdown: %w", err)
	}

	report := &domain.MonthlySalesReport{
		Month:               month,
		Year:                year,
		MonthlySalesTotals:  *totals,
		MedicineBreakdown:   breakdown,
		TopSellingMedicines: topSelling,
		CategoryBreakdown:   categories,
		GeneratedAt:         s.now().UTC().Format(time.RFC3339),
	}
	s.log.Info().Int("year", year).Int("month", month).
		Float64("total_sales", report.TotalSales).
		Msg("detailed monthly sales report generated")
	return report, nil
}
