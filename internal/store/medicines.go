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

// MedicineStore is the data-access layer for the medicines table. Quantity
// never changes through here; only the stock engine moves it.
type MedicineStore struct {
	db  *sqlx.DB
	log zerolog.Logger
}

func NewMedicineStore(db *sqlx.DB, log zerolog.Logger) *MedicineStore {
	return &MedicineStore{db: db, log: log}
}

// CreateMedicineInput carries the fields accepted when registering a
// medicine. Quantity starts at zero and is built up with incoming stock.
type CreateMedicineInput struct {
	Name         string
	Description  *string
	Price        float64
	SupplierID   *int64
	BatchNumber  *string
	ExpiryDate   *string
	MinimumStock int64
	MaximumStock int64
	Location     *string
	Category     *string
}

func (s *MedicineStore) Create(ctx context.Context, in CreateMedicineInput) (int64, error) {
	if in.Price < 0 {
		return 0, fmt.Errorf("%w: price cannot be negative", ErrValidation)
	}
	if in.MaximumStock < in.MinimumStock {
		return 0, fmt.Errorf("%w: maximum_stock must be at least minimum_stock", ErrValidation)
	}
	res, err := s.db.ExecContext(ctx, `
        INSERT INTO medicines (name, description, price, supplier_id, batch_number,
                               expiry_date, minimum_stock, maximum_stock, location, category)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.Name, in.Description, in.Price, in.SupplierID, in.BatchNumber,
		in.ExpiryDate, in.MinimumStock, in.MaximumStock, in.Location, in.Category)
	if err != nil {
		return 0, fmt.Errorf("insert medicine: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("medicine id: %w", err)
	}
	s.log.Info().Str("name", in.Name).Int64("medicine_id", id).Msg("medicine added")
	return id, nil
}

func (s *MedicineStore) GetByID(ctx context.Context, id int64) (*domain.Medicine, error) {
	var m domain.Medicine
	err := s.db.GetContext(ctx, &m, `
        SELECT m.*, s.name AS supplier_name
        FROM medicines m
        LEFT JOIN suppliers s ON m.supplier_id = s.id
        WHERE m.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load medicine %d: %w", id, err)
	}
	return &m, nil
}

// List returns all medicines with their supplier names, ordered by name.
func (s *MedicineStore) List(ctx context.Context) ([]domain.Medicine, error) {
	var medicines []domain.Medicine
	err := s.db.SelectContext(ctx, &medicines, `
        SELECT m.*, s.name AS supplier_name
        FROM medicines m
        LEFT JOIN suppliers s ON m.supplier_id = s.id
        ORDER BY m.name`)
	if err != nil {
		return nil, fmt.Errorf("list medicines: %w", err)
	}
	return medicines, nil
}

// Search matches the term against name and description.
func (s *MedicineStore) Search(ctx context.Context, term string) ([]domain.Medicine, error) {
	like := "%" + term + "%"
	var medicines []domain.Medicine
	err := s.db.SelectContext(ctx, &medicines, `
        SELECT m.*, s.name AS supplier_name
        FROM medicines m
        LEFT JOIN suppliers s ON m.supplier_id = s.id
        WHERE m.name LIKE ? OR m.description LIKE ?
        ORDER BY m.name`, like, like)
	if err != nil {
		return nil, fmt.Errorf("search medicines: %w", err)
	}
	return medicines, nil
}

// medicinePatchColumns maps each patch field to its column once, so the
// generated statement is a pure function of which fields are set.
func medicinePatchColumns(p domain.MedicinePatch) (columns []string, args []any) {
	add := func(column string, set bool, value any) {
		if set {
			columns = append(columns, column+" = ?")
			args = append(args, value)
		}
	}
	add("name", p.Name != nil, p.Name)
	add("description", p.Description != nil, p.Description)
	add("price", p.Price != nil, p.Price)
	add("supplier_id", p.SupplierID != nil, p.SupplierID)
	add("batch_number", p.BatchNumber != nil, p.BatchNumber)
	add("expiry_date", p.ExpiryDate != nil, p.ExpiryDate)
	add("minimum_stock", p.MinimumStock != nil, p.MinimumStock)
	add("maximum_stock", p.MaximumStock != nil, p.MaximumStock)
	add("location", p.Location != nil, p.Location)
	add("category", p.Category != nil, p.Category)
	return columns, args
}

// Update applies a patch and records the before/after pair in the audit log.
func (s *MedicineStore) Update(ctx context.Context, id int64, patch domain.MedicinePatch, actorID int64) error {
	if patch.Price != nil && *patch.Price < 0 {
		return fmt.Errorf("%w: price cannot be negative", ErrValidation)
	}
	columns, args := medicinePatchColumns(patch)
	if len(columns) == 0 {
		return ErrNoFields
	}

	before, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	columns = append(columns, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id)
	query := "UPDATE medicines SET " + strings.Join(columns, ", ") + " WHERE id = ?"
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update medicine %d: %w", id, err)
	}

	after, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	recordAudit(ctx, s.db, s.log, "medicines", id, domain.AuditUpdate, before, after, &actorID)

	s.log.Info().Int64("medicine_id", id).Msg("medicine updated")
	return nil
}

// LowStock lists medicines at or below their minimum, most depleted first.
// Medicines already at zero are left to the expired/stock reports.
func (s *MedicineStore) LowStock(ctx context.Context) ([]domain.Medicine, error) {
	var medicines []domain.Medicine
	err := s.db.SelectContext(ctx, &medicines, `
        SELECT m.*, s.name AS supplier_name
        FROM medicines m
        LEFT JOIN suppliers s ON m.supplier_id = s.id
        WHERE m.quantity <= m.minimum_stock AND m.quantity > 0
        ORDER BY (m.quantity * 1.0 / m.minimum_stock) ASC`)
	if err != nil {
		return nil, fmt.Errorf("list low stock medicines: %w", err)
	}
	return medicines, nil
}

func (s *MedicineStore) Expired(ctx context.Context) ([]domain.Medicine, error) {
	var medicines []domain.Medicine
	err := s.db.SelectContext(ctx, &medicines, `
        SELECT m.*, s.name AS supplier_name
        FROM medicines m
        LEFT JOIN suppliers s ON m.supplier_id = s.id
        WHERE m.expiry_date IS NOT NULL AND m.expiry_date < date('now')
        ORDER BY m.expiry_date ASC`)
	if err != nil {
		return nil, fmt.Errorf("list expired medicines: %w", err)
	}
	return medicines, nil
}

func (s *MedicineStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM medicines`); err != nil {
		return 0, fmt.Errorf("count medicines: %w", err)
	}
	return count, nil
}
