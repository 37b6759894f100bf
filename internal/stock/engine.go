package stock

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"medware/m/domain"
	"medware/m/internal/database"
	"medware/m/internal/store"
)

// ErrInsufficientStock rejects an outgoing mutation larger than the on-hand
// quantity. Stock never goes negative; the rejected call changes nothing.
var ErrInsufficientStock = errors.New("insufficient stock")

const expiryDateLayout = "2006-01-02"

// Engine applies stock mutations: quantity adjustment, ledger append, audit
// record and alert check, all inside one storage transaction.
type Engine struct {
	db       *sqlx.DB
	log      zerolog.Logger
	warnDays int
	now      func() time.Time
}

func NewEngine(db *sqlx.DB, warnDays int, log zerolog.Logger) *Engine {
	if warnDays <= 0 {
		warnDays = 30
	}
	return &Engine{db: db, log: log, warnDays: warnDays, now: time.Now}
}

// UpdateStockInput describes one quantity change against a medicine.
type UpdateStockInput struct {
	MedicineID  int64
	Quantity    int64
	Direction   string
	UserID      int64
	BatchNumber *string
	ExpiryDate  *string
	Reason      *string
}

// UpdateStock moves a medicine's quantity and returns the new on-hand value.
// Incoming adds, outgoing subtracts and fails with ErrInsufficientStock when
// the delta exceeds the current quantity. Every accepted call appends exactly
// one ledger row; total_amount is quantity times unit price, computed in
// decimal and rounded to cents, or NULL when the price is unknown.
func (e *Engine) UpdateStock(ctx context.Context, in UpdateStockInput) (int64, error) {
	if in.Quantity <= 0 {
		return 0, fmt.Errorf("%w: quantity must be positive", store.ErrValidation)
	}
	if in.Direction != domain.TransactionIncoming && in.Direction != domain.TransactionOutgoing {
		return 0, fmt.Errorf("%w: unknown transaction type %q", store.ErrValidation, in.Direction)
	}

	var newQuantity int64
	err := database.WithTx(ctx, e.db, func(tx *sqlx.Tx) error {
		var current struct {
			Quantity int64    `db:"quantity"`
			Price    *float64 `db:"price"`
		}
		err := tx.GetContext(ctx, &current, `
            SELECT quantity, price FROM medicines WHERE id = ?`, in.MedicineID)
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("load medicine %d: %w", in.MedicineID, err)
		}

		if in.Direction == domain.TransactionIncoming {
			newQuantity = current.Quantity + in.Quantity
		} else {
			if in.Quantity > current.Quantity {
				return ErrInsufficientStock
			}
			newQuantity = current.Quantity - in.Quantity
		}

		if _, err := tx.ExecContext(ctx, `
            UPDATE medicines SET quantity = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			newQuantity, in.MedicineID); err != nil {
			return fmt.Errorf("update quantity: %w", err)
		}

		var totalAmount *float64
		if current.Price != nil {
			total := decimal.NewFromFloat(*current.Price).
				Mul(decimal.NewFromInt(in.Quantity)).
				Round(2).
				InexactFloat64()
			totalAmount = &total
		}
		if err := store.AppendTransaction(ctx, tx, store.AppendTransactionInput{
			MedicineID:  in.MedicineID,
			Type:        in.Direction,
			Quantity:    in.Quantity,
			UnitPrice:   current.Price,
			TotalAmount: totalAmount,
			BatchNumber: in.BatchNumber,
			ExpiryDate:  in.ExpiryDate,
			Reason:      in.Reason,
			UserID:      in.UserID,
		}); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
            INSERT INTO audit_log (table_name, record_id, action, old_values, new_values, user_id)
            VALUES ('medicines', ?, 'UPDATE', ?, ?, ?)`,
			in.MedicineID,
			fmt.Sprintf(`{"quantity":%d}`, current.Quantity),
			fmt.Sprintf(`{"quantity":%d}`, newQuantity),
			in.UserID); err != nil {
			return fmt.Errorf("append audit record: %w", err)
		}

		return e.checkAlerts(ctx, tx, in.MedicineID)
	})
	if err != nil {
		return 0, err
	}

	e.log.Info().
		Int64("medicine_id", in.MedicineID).
		Str("transaction_type", in.Direction).
		Int64("quantity", in.Quantity).
		Int64("new_quantity", newQuantity).
		Msg("stock updated")
	return newQuantity, nil
}

// CheckAlerts re-evaluates the alert conditions for one medicine outside a
// mutation, e.g. after its thresholds changed.
func (e *Engine) CheckAlerts(ctx context.Context, medicineID int64) error {
	return database.WithTx(ctx, e.db, func(tx *sqlx.Tx) error {
		return e.checkAlerts(ctx, tx, medicineID)
	})
}

// checkAlerts emits low_stock, expired and expiry_warning alerts with
// insert-or-ignore semantics: at most one unresolved alert per medicine and
// type. Nothing resolves automatically.
func (e *Engine) checkAlerts(ctx context.Context, tx *sqlx.Tx, medicineID int64) error {
	var m struct {
		Name         string  `db:"name"`
		Quantity     int64   `db:"quantity"`
		MinimumStock int64   `db:"minimum_stock"`
		ExpiryDate   *string `db:"expiry_date"`
	}
	err := tx.GetContext(ctx, &m, `
        SELECT name, quantity, minimum_stock, expiry_date FROM medicines WHERE id = ?`, medicineID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load medicine %d for alert check: %w", medicineID, err)
	}

	if m.Quantity <= m.MinimumStock {
		msg := fmt.Sprintf("Low stock alert: %s has only %d units left", m.Name, m.Quantity)
		if err := store.CreateAlertIfAbsent(ctx, tx, medicineID, domain.AlertLowStock, msg); err != nil {
			return err
		}
	}

	if m.ExpiryDate != nil && *m.ExpiryDate != "" {
		expiry, err := time.Parse(expiryDateLayout, *m.ExpiryDate)
		if err != nil {
			e.log.Warn().Str("expiry_date", *m.ExpiryDate).Int64("medicine_id", medicineID).
				Msg("unparseable expiry date, skipping expiry alerts")
			return nil
		}
		now := e.now()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		daysToExpiry := int(expiry.Sub(today).Hours() / 24)

		switch {
		case daysToExpiry <= 0:
			msg := fmt.Sprintf("EXPIRED: %s expired on %s", m.Name, *m.ExpiryDate)
			if err := store.CreateAlertIfAbsent(ctx, tx, medicineID, domain.AlertExpired, msg); err != nil {
				return err
			}
		case daysToExpiry <= e.warnDays:
			msg := fmt.Sprintf("Expiry warning: %s expires in %d days", m.Name, daysToExpiry)
			if err := store.CreateAlertIfAbsent(ctx, tx, medicineID, domain.AlertExpiryWarning, msg); err != nil {
				return err
			}
		}
	}
	return nil
}

// SweepAlerts re-checks every medicine; the scheduler runs this so expiry
// alerts appear even for medicines that never move.
func (e *Engine) SweepAlerts(ctx context.Context) error {
	var ids []int64
	if err := e.db.SelectContext(ctx, &ids, `SELECT id FROM medicines ORDER BY id`); err != nil {
		return fmt.Errorf("list medicines for sweep: %w", err)
	}
	for _, id := range ids {
		if err := e.CheckAlerts(ctx, id); err != nil {
			return fmt.Errorf("sweep medicine %d: %w", id, err)
		}
	}
	e.log.Info().Int("medicines", len(ids)).Msg("alert sweep finished")
	return nil
}
