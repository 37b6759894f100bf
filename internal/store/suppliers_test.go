package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medware/m/domain"
)

func TestSupplierDuplicateNameConflicts(t *testing.T) {
	_, _, suppliers, _ := testStores(t)
	ctx := context.Background()

	_, err := suppliers.Create(ctx, CreateSupplierInput{Name: "MediCorp"})
	require.NoError(t, err)

	_, err = suppliers.Create(ctx, CreateSupplierInput{Name: "MediCorp"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestSupplierDeactivateHidesFromListing(t *testing.T) {
	_, _, suppliers, _ := testStores(t)
	ctx := context.Background()

	id, err := suppliers.Create(ctx, CreateSupplierInput{Name: "MediCorp"})
	require.NoError(t, err)
	_, err = suppliers.Create(ctx, CreateSupplierInput{Name: "PharmaPlus"})
	require.NoError(t, err)

	require.NoError(t, suppliers.Deactivate(ctx, id))

	active, err := suppliers.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "PharmaPlus", active[0].Name)

	// the row itself survives, medicines keep their reference
	s, err := suppliers.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.SupplierStatusInactive, s.Status)

	count, err := suppliers.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestSupplierMedicines(t *testing.T) {
	_, medicines, suppliers, _ := testStores(t)
	ctx := context.Background()

	supplierID, err := suppliers.Create(ctx, CreateSupplierInput{Name: "MediCorp"})
	require.NoError(t, err)

	_, err = medicines.Create(ctx, CreateMedicineInput{
		Name: "Aspirin", Price: 5.99, SupplierID: &supplierID, MaximumStock: 100,
	})
	require.NoError(t, err)
	_, err = medicines.Create(ctx, CreateMedicineInput{Name: "Unrelated", Price: 1.00, MaximumStock: 100})
	require.NoError(t, err)

	delivered, err := suppliers.Medicines(ctx, supplierID)
	require.NoError(t, err)
	require.Len(t, delivered, 1)
	assert.Equal(t, "Aspirin", delivered[0].Name)
}

func TestSupplierUpdatePatch(t *testing.T) {
	_, _, suppliers, _ := testStores(t)
	ctx := context.Background()

	id, err := suppliers.Create(ctx, CreateSupplierInput{Name: "MediCorp"})
	require.NoError(t, err)

	require.NoError(t, suppliers.Update(ctx, id, domain.SupplierPatch{
		Phone: strPtr("123-456-7890"),
	}))

	s, err := suppliers.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, s.Phone)
	assert.Equal(t, "123-456-7890", *s.Phone)
	assert.Equal(t, "MediCorp", s.Name)

	assert.ErrorIs(t, suppliers.Update(ctx, id, domain.SupplierPatch{}), ErrNoFields)
	assert.ErrorIs(t, suppliers.Update(ctx, 9999, domain.SupplierPatch{Phone: strPtr("1")}), ErrNotFound)
}
