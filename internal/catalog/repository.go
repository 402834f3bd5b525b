package catalog

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no product matches the given identifier.
	ErrNotFound = errors.New("catalog: product not found")

	// ErrDuplicateSKU is returned when a create or update would violate
	// the SKU uniqueness constraint.
	ErrDuplicateSKU = errors.New("catalog: sku already exists")
)

// Repository is the port for product persistence. The service depends on
// this abstraction, not on SQLite directly, so the implementation can be
// swapped for tests or another backend.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	FindByID(ctx context.Context, id string) (*Product, error)
	FindByRetailerID(ctx context.Context, retailerID string) (*Product, error)
	FindAll(ctx context.Context) ([]Product, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}
