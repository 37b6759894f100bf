package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"medware/m/domain"
)

// AuditStore reads the generic before/after change records the other stores
// and the stock engine write.
type AuditStore struct {
	db  *sqlx.DB
	log zerolog.Logger
}

func NewAuditStore(db *sqlx.DB, log zerolog.Logger) *AuditStore {
	return &AuditStore{db: db, log: log}
}

func (s *AuditStore) ListByRecord(ctx context.Context, table string, recordID int64) ([]domain.AuditLogEntry, error) {
	var entries []domain.AuditLogEntry
	err := s.db.SelectContext(ctx, &entries, `
        SELECT * FROM audit_log
        WHERE table_name = ? AND record_id = ?
        ORDER BY timestamp ASC, id ASC`, table, recordID)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	return entries, nil
}

// recordAudit appends a before/after snapshot. Auditing is best-effort and
// never fails the calling operation.
func recordAudit(ctx context.Context, q sqlx.ExtContext, log zerolog.Logger, table string, recordID int64, action string, oldValue, newValue any, userID *int64) {
	_, err := q.ExecContext(ctx, `
        INSERT INTO audit_log (table_name, record_id, action, old_values, new_values, user_id)
        VALUES (?, ?, ?, ?, ?, ?)`,
		table, recordID, action, marshalAudit(oldValue), marshalAudit(newValue), userID)
	if err != nil {
		log.Error().Err(err).Str("table", table).Int64("record_id", recordID).Msg("audit record failed")
	}
}

func marshalAudit(value any) *string {
	if value == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil
	}
	s := string(raw)
	return &s
}
