package store

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"medware/m/internal/database"
	"medware/m/internal/migrations"
	"medware/m/internal/security"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migrations.Run(db))
	return db
}

func testStores(t *testing.T) (*sqlx.DB, *MedicineStore, *SupplierStore, *UserStore) {
	t.Helper()
	db := openTestDB(t)
	log := zerolog.Nop()
	hasher := security.NewHasher(1000)
	return db,
		NewMedicineStore(db, log),
		NewSupplierStore(db, log),
		NewUserStore(db, hasher, log)
}

func strPtr(s string) *string { return &s }

func seedUser(t *testing.T, users *UserStore, username, role string) int64 {
	t.Helper()
	id, err := users.Create(context.Background(), CreateUserInput{
		Username: username,
		Password: "initial-password",
		Role:     role,
	})
	require.NoError(t, err)
	return id
}
