package catalog_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rloza/tiendapos/internal/catalog"
	"github.com/rloza/tiendapos/internal/storage/sqlite"
)

func newService(t *testing.T) *catalog.Service {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return catalog.NewService(sqlite.NewProductRepo(store))
}

func TestCreateAssignsIdentifiers(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	p, err := svc.Create(ctx, catalog.Product{
		Name: "Masala Chai", SKU: "CHAI-01", Price: 10, Quantity: 5,
	})
	require.NoError(t, err)
	require.NotEmpty(t, p.ID)
	require.NotEmpty(t, p.RetailerID)
	require.False(t, p.CreatedAt.IsZero())

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, p.RetailerID, got.RetailerID)
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	cases := []catalog.Product{
		{SKU: "X", Price: 1, Quantity: 1},             // missing name
		{Name: "X", Price: 1, Quantity: 1},            // missing sku
		{Name: "X", SKU: "X", Price: -1, Quantity: 1}, // negative price
		{Name: "X", SKU: "X", Price: 1, Quantity: -1}, // negative stock
	}
	for _, p := range cases {
		_, err := svc.Create(ctx, p)
		require.ErrorIs(t, err, catalog.ErrInvalidProduct)
	}
}

func TestUpdateKeepsRetailerID(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	p, err := svc.Create(ctx, catalog.Product{
		Name: "Masala Chai", SKU: "CHAI-01", Price: 10, Quantity: 5,
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, catalog.Product{
		ID: p.ID, Name: "Ginger Chai", SKU: "CHAI-01", Price: 12, Quantity: 8,
	})
	require.NoError(t, err)
	require.Equal(t, p.RetailerID, updated.RetailerID)
	require.Equal(t, "Ginger Chai", updated.Name)
	require.Equal(t, int64(8), updated.Quantity)
}

func TestUpdateUnknownProduct(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	_, err := svc.Update(ctx, catalog.Product{
		ID: "missing", Name: "X", SKU: "X", Price: 1, Quantity: 1,
	})
	require.ErrorIs(t, err, catalog.ErrNotFound)
}
