package catalog

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidProduct is returned when a create or update request fails
// field validation.
var ErrInvalidProduct = errors.New("catalog: invalid product")

// Service wraps the repository with validation and identifier assignment.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates the product, assigns its identifiers and persists it.
func (s *Service) Create(ctx context.Context, p Product) (*Product, error) {
	if err := validate(&p); err != nil {
		return nil, err
	}
	p.ID = uuid.NewString()
	p.RetailerID = uuid.NewString()
	p.CreatedAt = time.Now().UTC()
	if err := s.repo.Create(ctx, &p); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "product created", "product_id", p.ID, "sku", p.SKU)
	return &p, nil
}

// Update replaces the mutable fields of an existing product. Historical
// orders are unaffected: order lines carry their own copies of name and
// price taken at commit time.
func (s *Service) Update(ctx context.Context, p Product) (*Product, error) {
	if p.ID == "" {
		return nil, ErrInvalidProduct
	}
	if err := validate(&p); err != nil {
		return nil, err
	}
	current, err := s.repo.FindByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	// Identity and catalog linkage are immutable.
	p.RetailerID = current.RetailerID
	p.CreatedAt = current.CreatedAt
	if err := s.repo.Update(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	if id == "" {
		return nil, ErrInvalidProduct
	}
	return s.repo.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Product, error) {
	return s.repo.FindAll(ctx)
}

// Delete removes a product from the catalog. Orders that referenced it
// keep their denormalized snapshots.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidProduct
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "product deleted", "product_id", id)
	return nil
}

func validate(p *Product) error {
	if p.Name == "" || p.SKU == "" || p.Price < 0 || p.Quantity < 0 {
		return ErrInvalidProduct
	}
	return nil
}
