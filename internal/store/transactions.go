package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"medware/m/domain"
)

// TransactionStore reads the append-only stock ledger. Rows are written by
// the stock engine inside its transaction; no update or delete exists.
type TransactionStore struct {
	db  *sqlx.DB
	log zerolog.Logger
}

func NewTransactionStore(db *sqlx.DB, log zerolog.Logger) *TransactionStore {
	return &TransactionStore{db: db, log: log}
}

// AppendTransactionInput is one ledger row. Price and total are nil when the
// medicine's price was unknown at mutation time.
type AppendTransactionInput struct {
	MedicineID  int64
	Type        string
	Quantity    int64
	UnitPrice   *float64
	TotalAmount *float64
	BatchNumber *string
	ExpiryDate  *string
	Reason      *string
	UserID      int64
}

// AppendTransaction writes one ledger row on the caller's transaction so the
// append shares the stock mutation's commit or rollback.
func AppendTransaction(ctx context.Context, q sqlx.ExtContext, in AppendTransactionInput) error {
	_, err := q.ExecContext(ctx, `
        INSERT INTO transactions (medicine_id, transaction_type, quantity, unit_price,
                                  total_amount, batch_number, expiry_date, reason, user_id)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.MedicineID, in.Type, in.Quantity, in.UnitPrice, in.TotalAmount,
		in.BatchNumber, in.ExpiryDate, in.Reason, in.UserID)
	if err != nil {
		return fmt.Errorf("append transaction: %w", err)
	}
	return nil
}

func (s *TransactionStore) ListByMedicine(ctx context.Context, medicineID int64) ([]domain.Transaction, error) {
	var transactions []domain.Transaction
	err := s.db.SelectContext(ctx, &transactions, `
        SELECT * FROM transactions WHERE medicine_id = ? ORDER BY date DESC, id DESC`, medicineID)
	if err != nil {
		return nil, fmt.Errorf("list transactions for medicine %d: %w", medicineID, err)
	}
	return transactions, nil
}

// List returns the ledger newest first, optionally bounded to [from, to].
func (s *TransactionStore) List(ctx context.Context, from, to string) ([]domain.Transaction, error) {
	query := `SELECT * FROM transactions`
	var args []any
	if from != "" && to != "" {
		query += ` WHERE date BETWEEN ? AND ?`
		args = append(args, from, to)
	}
	query += ` ORDER BY date DESC, id DESC`

	var transactions []domain.Transaction
	if err := s.db.SelectContext(ctx, &transactions, query, args...); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return transactions, nil
}
