package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/rloza/tiendapos/internal/catalog"
	"github.com/rloza/tiendapos/internal/checkout"
	"github.com/rloza/tiendapos/internal/order"
	"github.com/rloza/tiendapos/internal/storage/sqlite"
)

func openStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newProduct(sku string) *catalog.Product {
	return &catalog.Product{
		ID:         uuid.NewString(),
		RetailerID: uuid.NewString(),
		SKU:        sku,
		Name:       "Product " + sku,
		Category:   "snacks",
		Price:      12.50,
		Quantity:   7,
		CreatedAt:  time.Now().UTC(),
	}
}

func TestProductCRUD(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.NewProductRepo(openStore(t))

	p := newProduct("CHAI-01")
	require.NoError(t, repo.Create(ctx, p))

	got, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, p.SKU, got.SKU)
	require.Equal(t, p.Price, got.Price)
	require.WithinDuration(t, p.CreatedAt, got.CreatedAt, time.Second)

	byRetailer, err := repo.FindByRetailerID(ctx, p.RetailerID)
	require.NoError(t, err)
	require.Equal(t, p.ID, byRetailer.ID)

	got.Name = "Renamed"
	got.Quantity = 3
	require.NoError(t, repo.Update(ctx, got))
	updated, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "Renamed", updated.Name)
	require.Equal(t, int64(3), updated.Quantity)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	require.NoError(t, repo.Delete(ctx, p.ID))
	_, err = repo.FindByID(ctx, p.ID)
	require.ErrorIs(t, err, catalog.ErrNotFound)
	require.ErrorIs(t, repo.Delete(ctx, p.ID), catalog.ErrNotFound)
}

func TestDuplicateSKURejected(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.NewProductRepo(openStore(t))

	require.NoError(t, repo.Create(ctx, newProduct("CHAI-01")))
	err := repo.Create(ctx, newProduct("CHAI-01"))
	require.ErrorIs(t, err, catalog.ErrDuplicateSKU)
}

// commitOrder writes an order through the same unit-of-work path checkout
// uses, at a chosen timestamp.
func commitOrder(t *testing.T, store *sqlite.Store, createdAt time.Time, lines ...order.Line) *order.Order {
	t.Helper()
	var total float64
	for _, l := range lines {
		total += l.Subtotal()
	}
	o := &order.Order{
		ID:            uuid.NewString(),
		CustomerRef:   "test",
		Lines:         lines,
		TotalPrice:    total,
		PaymentMethod: "Cash",
		Status:        order.StatusPending,
		Channel:       order.ChannelPOS,
		CreatedAt:     createdAt,
	}
	err := store.WithTx(context.Background(), func(tx checkout.Tx) error {
		return tx.InsertOrder(context.Background(), o)
	})
	require.NoError(t, err)
	return o
}

func TestOrdersListedNewestFirst(t *testing.T) {
	store := openStore(t)
	repo := sqlite.NewOrderRepo(store)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	line := order.Line{ProductID: "p1", Name: "Chai", Quantity: 1, UnitPrice: 10}
	first := commitOrder(t, store, base, line)
	second := commitOrder(t, store, base.Add(time.Hour), line)

	orders, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 2)
	require.Equal(t, second.ID, orders[0].ID)
	require.Equal(t, first.ID, orders[1].ID)
	require.Len(t, orders[0].Lines, 1)
}

func TestOrderStatusTransition(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	repo := sqlite.NewOrderRepo(store)
	o := commitOrder(t, store, time.Now().UTC(),
		order.Line{ProductID: "p1", Name: "Chai", Quantity: 1, UnitPrice: 10})

	require.NoError(t, repo.UpdateStatus(ctx, o.ID, order.StatusPending, order.StatusCompleted))

	got, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	require.Equal(t, order.StatusCompleted, got.Status)
	// Lines and total untouched by the transition.
	require.Equal(t, o.TotalPrice, got.TotalPrice)
	require.Len(t, got.Lines, 1)

	err = repo.UpdateStatus(ctx, o.ID, order.StatusPending, order.StatusCompleted)
	require.ErrorIs(t, err, order.ErrInvalidTransition)
	err = repo.UpdateStatus(ctx, "nope", order.StatusPending, order.StatusCompleted)
	require.ErrorIs(t, err, order.ErrNotFound)
}

func TestLedgerAggregates(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	repo := sqlite.NewOrderRepo(store)

	day1 := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 2, 10, 0, 0, 0, time.UTC)
	commitOrder(t, store, day1, order.Line{ProductID: "p1", Name: "Chai", Quantity: 2, UnitPrice: 10})
	commitOrder(t, store, day1, order.Line{ProductID: "p2", Name: "Samosa", Quantity: 1, UnitPrice: 5})
	commitOrder(t, store, day2, order.Line{ProductID: "p1", Name: "Chai", Quantity: 3, UnitPrice: 10})

	revenue, err := repo.TotalRevenue(ctx)
	require.NoError(t, err)
	require.Equal(t, 55.0, revenue)

	count, err := repo.CountOrders(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(3), count)

	trend, err := repo.RevenueByDay(ctx, "2026-08-01")
	require.NoError(t, err)
	require.Equal(t, []order.DayRevenue{
		{Date: "2026-08-01", Revenue: 25},
		{Date: "2026-08-02", Revenue: 30},
	}, trend)

	// The lower bound excludes earlier days.
	trend, err = repo.RevenueByDay(ctx, "2026-08-02")
	require.NoError(t, err)
	require.Len(t, trend, 1)

	top, err := repo.UnitsByProduct(ctx, 5)
	require.NoError(t, err)
	require.Equal(t, []order.ProductUnits{
		{Name: "Chai", Units: 5},
		{Name: "Samosa", Units: 1},
	}, top)
}
