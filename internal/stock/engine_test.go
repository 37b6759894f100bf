package stock

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medware/m/domain"
	"medware/m/internal/database"
	"medware/m/internal/migrations"
	"medware/m/internal/security"
	"medware/m/internal/store"
)

type fixture struct {
	db     *sqlx.DB
	engine *Engine
	userID int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migrations.Run(db))

	log := zerolog.Nop()
	users := store.NewUserStore(db, security.NewHasher(1000), log)
	userID, err := users.Create(context.Background(), store.CreateUserInput{
		Username: "worker", Password: "worker-pass", Role: domain.RoleWarehouseWorker,
	})
	require.NoError(t, err)

	return &fixture{db: db, engine: NewEngine(db, 30, log), userID: userID}
}

func (f *fixture) createMedicine(t *testing.T, in store.CreateMedicineInput) int64 {
	t.Helper()
	medicines := store.NewMedicineStore(f.db, zerolog.Nop())
	id, err := medicines.Create(context.Background(), in)
	require.NoError(t, err)
	return id
}

func (f *fixture) quantity(t *testing.T, medicineID int64) int64 {
	t.Helper()
	var q int64
	require.NoError(t, f.db.Get(&q, `SELECT quantity FROM medicines WHERE id = ?`, medicineID))
	return q
}

func (f *fixture) transactionCount(t *testing.T, medicineID int64) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Get(&n, `SELECT COUNT(*) FROM transactions WHERE medicine_id = ?`, medicineID))
	return n
}

func (f *fixture) unresolvedAlerts(t *testing.T, medicineID int64, alertType string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Get(&n, `
        SELECT COUNT(*) FROM stock_alerts
        WHERE medicine_id = ? AND alert_type = ? AND is_resolved = 0`, medicineID, alertType))
	return n
}

func TestUpdateStockIncomingThenOutgoing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	aspirin := f.createMedicine(t, store.CreateMedicineInput{
		Name: "Aspirin", Price: 5.99, MinimumStock: 50, MaximumStock: 500,
	})

	q, err := f.engine.UpdateStock(ctx, UpdateStockInput{
		MedicineID: aspirin, Quantity: 50,
		Direction: domain.TransactionIncoming, UserID: f.userID,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(50), q)

	q, err = f.engine.UpdateStock(ctx, UpdateStockInput{
		MedicineID: aspirin, Quantity: 10,
		Direction: domain.TransactionOutgoing, UserID: f.userID,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(40), q)
	assert.Equal(t, int64(40), f.quantity(t, aspirin))

	var tx struct {
		Type        string  `db:"transaction_type"`
		Quantity    int64   `db:"quantity"`
		UnitPrice   float64 `db:"unit_price"`
		TotalAmount float64 `db:"total_amount"`
	}
	require.NoError(t, f.db.Get(&tx, `
        SELECT transaction_type, quantity, unit_price, total_amount
        FROM transactions WHERE medicine_id = ? ORDER BY id DESC LIMIT 1`, aspirin))
	assert.Equal(t, domain.TransactionOutgoing, tx.Type)
	assert.Equal(t, int64(10), tx.Quantity)
	assert.InDelta(t, 5.99, tx.UnitPrice, 1e-9)
	// 5.99 * 10 must come out as exactly 59.90, not 59.900000000000006.
	assert.Equal(t, 59.90, tx.TotalAmount)

	assert.Equal(t, int64(2), f.transactionCount(t, aspirin))
}

func TestUpdateStockRejectsInsufficientStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id := f.createMedicine(t, store.CreateMedicineInput{
		Name: "Ibuprofen", Price: 3.50, MinimumStock: 5, MaximumStock: 100,
	})
	_, err := f.engine.UpdateStock(ctx, UpdateStockInput{
		MedicineID: id, Quantity: 20, Direction: domain.TransactionIncoming, UserID: f.userID,
	})
	require.NoError(t, err)

	_, err = f.engine.UpdateStock(ctx, UpdateStockInput{
		MedicineID: id, Quantity: 21, Direction: domain.TransactionOutgoing, UserID: f.userID,
	})
	assert.ErrorIs(t, err, ErrInsufficientStock)

	// The rejected call must leave no trace.
	assert.Equal(t, int64(20), f.quantity(t, id))
	assert.Equal(t, int64(1), f.transactionCount(t, id))
}

func TestUpdateStockValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id := f.createMedicine(t, store.CreateMedicineInput{
		Name: "Paracetamol", Price: 2.00, MinimumStock: 0, MaximumStock: 100,
	})

	_, err := f.engine.UpdateStock(ctx, UpdateStockInput{
		MedicineID: id, Quantity: 0, Direction: domain.TransactionIncoming, UserID: f.userID,
	})
	assert.ErrorIs(t, err, store.ErrValidation)

	_, err = f.engine.UpdateStock(ctx, UpdateStockInput{
		MedicineID: id, Quantity: -3, Direction: domain.TransactionOutgoing, UserID: f.userID,
	})
	assert.ErrorIs(t, err, store.ErrValidation)

	_, err = f.engine.UpdateStock(ctx, UpdateStockInput{
		MedicineID: id, Quantity: 5, Direction: "sideways", UserID: f.userID,
	})
	assert.ErrorIs(t, err, store.ErrValidation)

	_, err = f.engine.UpdateStock(ctx, UpdateStockInput{
		MedicineID: 9999, Quantity: 5, Direction: domain.TransactionIncoming, UserID: f.userID,
	})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateStockConservation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id := f.createMedicine(t, store.CreateMedicineInput{
		Name: "Amoxicillin", Price: 12.00, MinimumStock: 0, MaximumStock: 1000,
	})

	moves := []struct {
		qty       int64
		direction string
	}{
		{100, domain.TransactionIncoming},
		{30, domain.TransactionOutgoing},
		{25, domain.TransactionIncoming},
		{95, domain.TransactionOutgoing},
	}
	for _, m := range moves {
		_, err := f.engine.UpdateStock(ctx, UpdateStockInput{
			MedicineID: id, Quantity: m.qty, Direction: m.direction, UserID: f.userID,
		})
		require.NoError(t, err)
	}

	// On-hand quantity equals incoming minus outgoing across the ledger.
	var delta int64
	require.NoError(t, f.db.Get(&delta, `
        SELECT COALESCE(SUM(CASE WHEN transaction_type = 'incoming' THEN quantity ELSE -quantity END), 0)
        FROM transactions WHERE medicine_id = ?`, id))
	assert.Equal(t, delta, f.quantity(t, id))
	assert.Equal(t, int64(0), f.quantity(t, id))
}

func TestLowStockAlertIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id := f.createMedicine(t, store.CreateMedicineInput{
		Name: "Aspirin", Price: 5.99, MinimumStock: 50, MaximumStock: 500,
	})

	// Quantity 40 is at or below the minimum of 50 after each of these.
	_, err := f.engine.UpdateStock(ctx, UpdateStockInput{
		MedicineID: id, Quantity: 50, Direction: domain.TransactionIncoming, UserID: f.userID,
	})
	require.NoError(t, err)
	_, err = f.engine.UpdateStock(ctx, UpdateStockInput{
		MedicineID: id, Quantity: 10, Direction: domain.TransactionOutgoing, UserID: f.userID,
	})
	require.NoError(t, err)
	_, err = f.engine.UpdateStock(ctx, UpdateStockInput{
		MedicineID: id, Quantity: 5, Direction: domain.TransactionOutgoing, UserID: f.userID,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), f.unresolvedAlerts(t, id, domain.AlertLowStock))

	// A resolved alert does not block a fresh one.
	_, err = f.db.Exec(`UPDATE stock_alerts SET is_resolved = 1 WHERE medicine_id = ?`, id)
	require.NoError(t, err)
	require.NoError(t, f.engine.CheckAlerts(ctx, id))
	assert.Equal(t, int64(1), f.unresolvedAlerts(t, id, domain.AlertLowStock))
}

func TestExpiryAlerts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.engine.now = func() time.Time {
		return time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)
	}

	expired := f.createMedicine(t, store.CreateMedicineInput{
		Name: "Old batch", Price: 1.00, ExpiryDate: strPtr("2024-03-10"),
		MinimumStock: 0, MaximumStock: 100,
	})
	expiring := f.createMedicine(t, store.CreateMedicineInput{
		Name: "Soon batch", Price: 1.00, ExpiryDate: strPtr("2024-04-01"),
		MinimumStock: 0, MaximumStock: 100,
	})
	fresh := f.createMedicine(t, store.CreateMedicineInput{
		Name: "Fresh batch", Price: 1.00, ExpiryDate: strPtr("2025-01-01"),
		MinimumStock: 0, MaximumStock: 100,
	})

	require.NoError(t, f.engine.SweepAlerts(ctx))

	assert.Equal(t, int64(1), f.unresolvedAlerts(t, expired, domain.AlertExpired))
	assert.Equal(t, int64(0), f.unresolvedAlerts(t, expired, domain.AlertExpiryWarning))
	assert.Equal(t, int64(1), f.unresolvedAlerts(t, expiring, domain.AlertExpiryWarning))
	assert.Equal(t, int64(0), f.unresolvedAlerts(t, fresh, domain.AlertExpiryWarning))
	assert.Equal(t, int64(0), f.unresolvedAlerts(t, fresh, domain.AlertExpired))

	// Running the sweep again must not duplicate anything.
	require.NoError(t, f.engine.SweepAlerts(ctx))
	assert.Equal(t, int64(1), f.unresolvedAlerts(t, expired, domain.AlertExpired))
	assert.Equal(t, int64(1), f.unresolvedAlerts(t, expiring, domain.AlertExpiryWarning))
}

func TestUpdateStockWritesAuditRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id := f.createMedicine(t, store.CreateMedicineInput{
		Name: "Cough syrup", Price: 4.25, MinimumStock: 0, MaximumStock: 50,
	})
	_, err := f.engine.UpdateStock(ctx, UpdateStockInput{
		MedicineID: id, Quantity: 12, Direction: domain.TransactionIncoming, UserID: f.userID,
	})
	require.NoError(t, err)

	var rec struct {
		Action    string `db:"action"`
		OldValues string `db:"old_values"`
		NewValues string `db:"new_values"`
		UserID    int64  `db:"user_id"`
	}
	require.NoError(t, f.db.Get(&rec, `
        SELECT action, old_values, new_values, user_id
        FROM audit_log WHERE table_name = 'medicines' AND record_id = ?`, id))
	assert.Equal(t, domain.AuditUpdate, rec.Action)
	assert.JSONEq(t, `{"quantity":0}`, rec.OldValues)
	assert.JSONEq(t, `{"quantity":12}`, rec.NewValues)
	assert.Equal(t, f.userID, rec.UserID)
}

func strPtr(s string) *string { return &s }
