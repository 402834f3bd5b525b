package order

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no order matches the given identifier.
	ErrNotFound = errors.New("order: not found")

	// ErrInvalidTransition is returned when a status update does not match
	// the expected current status.
	ErrInvalidTransition = errors.New("order: invalid status transition")
)

// DayRevenue is one bucket of the daily sales trend.
type DayRevenue struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
}

// ProductUnits is one row of the units-sold-per-product rollup, keyed by
// the snapshotted line name so deleted products still appear.
type ProductUnits struct {
	Name  string `json:"name"`
	Units int64  `json:"units"`
}

// Repository is the read/update port for the order ledger. Inserts happen
// exclusively inside the checkout transaction, never through this interface.
type Repository interface {
	FindByID(ctx context.Context, id string) (*Order, error)
	// FindAll returns all orders, newest first.
	FindAll(ctx context.Context) ([]Order, error)
	// UpdateStatus transitions an order from one status to another. It
	// touches the status column only; lines and totals are immutable.
	UpdateStatus(ctx context.Context, id string, from, to Status) error

	// Aggregate queries backing the analytics rollup.
	TotalRevenue(ctx context.Context) (float64, error)
	CountOrders(ctx context.Context) (int64, error)
	RevenueByDay(ctx context.Context, since string) ([]DayRevenue, error)
	UnitsByProduct(ctx context.Context, limit int) ([]ProductUnits, error)
}
