package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"medware/m/domain"
)

// SupplierStore is the data-access layer for suppliers. Suppliers are
// soft-disabled, never deleted, because medicines keep referencing them.
type SupplierStore struct {
	db  *sqlx.DB
	log zerolog.Logger
}

func NewSupplierStore(db *sqlx.DB, log zerolog.Logger) *SupplierStore {
	return &SupplierStore{db: db, log: log}
}

type CreateSupplierInput struct {
	Name        string
	ContactInfo *string
	Email       *string
	Phone       *string
	Address     *string
}

func (s *SupplierStore) Create(ctx context.Context, in CreateSupplierInput) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
        INSERT INTO suppliers (name, contact_info, email, phone, address)
        VALUES (?, ?, ?, ?, ?)`,
		in.Name, in.ContactInfo, in.Email, in.Phone, in.Address)
	if isUniqueViolation(err) {
		return 0, fmt.Errorf("%w: supplier %q", ErrConflict, in.Name)
	}
	if err != nil {
		return 0, fmt.Errorf("insert supplier: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("supplier id: %w", err)
	}
	s.log.Info().Str("name", in.Name).Int64("supplier_id", id).Msg("supplier added")
	return id, nil
}

func (s *SupplierStore) GetByID(ctx context.Context, id int64) (*domain.Supplier, error) {
	var supplier domain.Supplier
	err := s.db.GetContext(ctx, &supplier, `SELECT * FROM suppliers WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load supplier %d: %w", id, err)
	}
	return &supplier, nil
}

func (s *SupplierStore) ListActive(ctx context.Context) ([]domain.Supplier, error) {
	var suppliers []domain.Supplier
	err := s.db.SelectContext(ctx, &suppliers, `
        SELECT * FROM suppliers WHERE status = 'active' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	return suppliers, nil
}

func supplierPatchColumns(p domain.SupplierPatch) (columns []string, args []any) {
	add := func(column string, set bool, value any) {
		if set {
			columns = append(columns, column+" = ?")
			args = append(args, value)
		}
	}
	add("name", p.Name != nil, p.Name)
	add("contact_info", p.ContactInfo != nil, p.ContactInfo)
	add("email", p.Email != nil, p.Email)
	add("phone", p.Phone != nil, p.Phone)
	add("address", p.Address != nil, p.Address)
	return columns, args
}

func (s *SupplierStore) Update(ctx context.Context, id int64, patch domain.SupplierPatch) error {
	columns, args := supplierPatchColumns(patch)
	if len(columns) == 0 {
		return ErrNoFields
	}
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	args = append(args, id)
	query := "UPDATE suppliers SET " + strings.Join(columns, ", ") + " WHERE id = ?"
	_, err := s.db.ExecContext(ctx, query, args...)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: supplier name taken", ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("update supplier %d: %w", id, err)
	}
	s.log.Info().Int64("supplier_id", id).Msg("supplier updated")
	return nil
}

// Deactivate soft-disables a supplier; its medicines keep their reference.
func (s *SupplierStore) Deactivate(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `
        UPDATE suppliers SET status = 'inactive' WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deactivate supplier %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	s.log.Info().Int64("supplier_id", id).Msg("supplier deactivated")
	return nil
}

// Medicines lists everything a supplier delivers.
func (s *SupplierStore) Medicines(ctx context.Context, supplierID int64) ([]domain.Medicine, error) {
	var medicines []domain.Medicine
	err := s.db.SelectContext(ctx, &medicines, `
        SELECT * FROM medicines WHERE supplier_id = ? ORDER BY name`, supplierID)
	if err != nil {
		return nil, fmt.Errorf("list supplier medicines: %w", err)
	}
	return medicines, nil
}

func (s *SupplierStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM suppliers WHERE status = 'active'`)
	if err != nil {
		return 0, fmt.Errorf("count suppliers: %w", err)
	}
	return count, nil
}
