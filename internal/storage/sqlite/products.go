package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rloza/tiendapos/internal/catalog"
)

const productSelect = `
	SELECT id, retailer_id, sku, name, description, category, image_url,
	       price, quantity, created_at
	FROM   products`

// ProductRepo is the SQLite implementation of catalog.Repository.
type ProductRepo struct {
	store *Store
}

func NewProductRepo(store *Store) *ProductRepo {
	return &ProductRepo{store: store}
}

var _ catalog.Repository = (*ProductRepo)(nil)

func (r *ProductRepo) Create(ctx context.Context, p *catalog.Product) error {
	_, err := r.store.db.ExecContext(ctx, `
		INSERT INTO products (id, retailer_id, sku, name, description, category,
		                      image_url, price, quantity, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.RetailerID, p.SKU, p.Name, p.Description, p.Category,
		p.ImageURL, p.Price, p.Quantity, formatTime(p.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err, "products.sku") {
			return catalog.ErrDuplicateSKU
		}
		return fmt.Errorf("sqlite: create product %q: %w", p.SKU, err)
	}
	return nil
}

func (r *ProductRepo) FindByID(ctx context.Context, id string) (*catalog.Product, error) {
	return scanProduct(r.store.db.QueryRowContext(ctx, productSelect+` WHERE id = ?`, id))
}

func (r *ProductRepo) FindByRetailerID(ctx context.Context, retailerID string) (*catalog.Product, error) {
	return scanProduct(r.store.db.QueryRowContext(ctx, productSelect+` WHERE retailer_id = ?`, retailerID))
}

func (r *ProductRepo) FindAll(ctx context.Context) ([]catalog.Product, error) {
	rows, err := r.store.db.QueryContext(ctx, productSelect+` ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list products: %w", err)
	}
	defer rows.Close()

	products := make([]catalog.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (r *ProductRepo) Update(ctx context.Context, p *catalog.Product) error {
	res, err := r.store.db.ExecContext(ctx, `
		UPDATE products
		SET    sku = ?, name = ?, description = ?, category = ?, image_url = ?,
		       price = ?, quantity = ?
		WHERE  id = ?`,
		p.SKU, p.Name, p.Description, p.Category, p.ImageURL,
		p.Price, p.Quantity, p.ID,
	)
	if err != nil {
		if isUniqueViolation(err, "products.sku") {
			return catalog.ErrDuplicateSKU
		}
		return fmt.Errorf("sqlite: update product %q: %w", p.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: update product %q: %w", p.ID, err)
	}
	if n == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	res, err := r.store.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: delete product %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: delete product %q: %w", id, err)
	}
	if n == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

func (r *ProductRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: count products: %w", err)
	}
	return n, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*catalog.Product, error) {
	var p catalog.Product
	var createdAt string
	err := row.Scan(
		&p.ID, &p.RetailerID, &p.SKU, &p.Name, &p.Description, &p.Category,
		&p.ImageURL, &p.Price, &p.Quantity, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: scan product: %w", err)
	}
	p.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// isUniqueViolation matches the driver's constraint error message for the
// given index. modernc.org/sqlite exposes no typed error for this, so the
// message text is the stable contract.
func isUniqueViolation(err error, index string) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: "+index)
}
