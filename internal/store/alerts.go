package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"medware/m/domain"
)

// AlertStore reads and resolves stock alerts. Creation happens in the stock
// engine so it shares the mutation transaction.
type AlertStore struct {
	db  *sqlx.DB
	log zerolog.Logger
}

func NewAlertStore(db *sqlx.DB, log zerolog.Logger) *AlertStore {
	return &AlertStore{db: db, log: log}
}

// CreateAlertIfAbsent inserts an alert unless an unresolved one of the same
// type already exists for the medicine; the partial unique index makes the
// INSERT OR IGNORE a no-op in that case. Runs on the caller's transaction.
func CreateAlertIfAbsent(ctx context.Context, q sqlx.ExtContext, medicineID int64, alertType, message string) error {
	_, err := q.ExecContext(ctx, `
        INSERT OR IGNORE INTO stock_alerts (medicine_id, alert_type, message)
        VALUES (?, ?, ?)`, medicineID, alertType, message)
	if err != nil {
		return fmt.Errorf("create %s alert: %w", alertType, err)
	}
	return nil
}

func (s *AlertStore) ListUnresolved(ctx context.Context) ([]domain.StockAlert, error) {
	var alerts []domain.StockAlert
	err := s.db.SelectContext(ctx, &alerts, `
        SELECT a.*, m.name AS medicine_name
        FROM stock_alerts a
        JOIN medicines m ON a.medicine_id = m.id
        WHERE a.is_resolved = 0
        ORDER BY a.created_at DESC, a.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list unresolved alerts: %w", err)
	}
	return alerts, nil
}

// Resolve marks an alert handled. Alerts never resolve automatically; an
// operator does it once replenishment or disposal happened.
func (s *AlertStore) Resolve(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `
        UPDATE stock_alerts
        SET is_resolved = 1, resolved_at = CURRENT_TIMESTAMP
        WHERE id = ? AND is_resolved = 0`, id)
	if err != nil {
		return fmt.Errorf("resolve alert %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	s.log.Info().Int64("alert_id", id).Msg("stock alert resolved")
	return nil
}
