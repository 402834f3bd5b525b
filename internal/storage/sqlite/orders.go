package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rloza/tiendapos/internal/order"
)

// OrderRepo is the SQLite implementation of order.Repository. It reads and
// transitions ledger rows; inserts go through the checkout transaction.
type OrderRepo struct {
	store *Store
}

func NewOrderRepo(store *Store) *OrderRepo {
	return &OrderRepo{store: store}
}

var _ order.Repository = (*OrderRepo)(nil)

// execer is satisfied by both *sql.DB and *sql.Tx, so insertOrder can be
// shared with the checkout unit of work.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertOrder(ctx context.Context, ex execer, o *order.Order) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO orders (id, customer_ref, total_price, payment_method,
		                    status, channel, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.CustomerRef, o.TotalPrice, o.PaymentMethod,
		string(o.Status), string(o.Channel), formatTime(o.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: insert order %q: %w", o.ID, err)
	}
	for i, l := range o.Lines {
		_, err := ex.ExecContext(ctx, `
			INSERT INTO order_lines (order_id, position, product_id, name,
			                         quantity, unit_price)
			VALUES (?, ?, ?, ?, ?, ?)`,
			o.ID, i, l.ProductID, l.Name, l.Quantity, l.UnitPrice,
		)
		if err != nil {
			return fmt.Errorf("sqlite: insert order line %d of %q: %w", i, o.ID, err)
		}
	}
	return nil
}

func (r *OrderRepo) FindByID(ctx context.Context, id string) (*order.Order, error) {
	row := r.store.db.QueryRowContext(ctx, `
		SELECT id, customer_ref, total_price, payment_method, status, channel, created_at
		FROM   orders WHERE id = ?`, id)

	o, err := scanOrder(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadLines(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// FindAll returns all orders, newest first, with their lines attached.
func (r *OrderRepo) FindAll(ctx context.Context) ([]order.Order, error) {
	rows, err := r.store.db.QueryContext(ctx, `
		SELECT id, customer_ref, total_price, payment_method, status, channel, created_at
		FROM   orders
		ORDER  BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]order.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range orders {
		if err := r.loadLines(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// UpdateStatus transitions id from one status to another. The guarded
// UPDATE makes the transition atomic: a concurrent transition from the
// same status wins or loses cleanly, and nothing but the status column is
// ever touched.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id string, from, to order.Status) error {
	res, err := r.store.db.ExecContext(ctx,
		`UPDATE orders SET status = ? WHERE id = ? AND status = ?`,
		string(to), id, string(from),
	)
	if err != nil {
		return fmt.Errorf("sqlite: update order status %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: update order status %q: %w", id, err)
	}
	if n == 0 {
		// Distinguish "no such order" from "wrong current status".
		var exists int
		if err := r.store.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM orders WHERE id = ?`, id).Scan(&exists); err != nil {
			return fmt.Errorf("sqlite: update order status %q: %w", id, err)
		}
		if exists == 0 {
			return order.ErrNotFound
		}
		return order.ErrInvalidTransition
	}
	return nil
}

func (r *OrderRepo) TotalRevenue(ctx context.Context) (float64, error) {
	var total float64
	err := r.store.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(total_price), 0) FROM orders`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sqlite: total revenue: %w", err)
	}
	return total, nil
}

func (r *OrderRepo) CountOrders(ctx context.Context) (int64, error) {
	var n int64
	if err := r.store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: count orders: %w", err)
	}
	return n, nil
}

// RevenueByDay groups revenue by calendar day. since is an inclusive
// "YYYY-MM-DD" lower bound; the substr works because created_at is RFC3339
// TEXT, which sorts and prefixes lexicographically.
func (r *OrderRepo) RevenueByDay(ctx context.Context, since string) ([]order.DayRevenue, error) {
	rows, err := r.store.db.QueryContext(ctx, `
		SELECT substr(created_at, 1, 10) AS day, SUM(total_price)
		FROM   orders
		WHERE  substr(created_at, 1, 10) >= ?
		GROUP  BY day
		ORDER  BY day`, since)
	if err != nil {
		return nil, fmt.Errorf("sqlite: revenue by day: %w", err)
	}
	defer rows.Close()

	trend := make([]order.DayRevenue, 0)
	for rows.Next() {
		var d order.DayRevenue
		if err := rows.Scan(&d.Date, &d.Revenue); err != nil {
			return nil, fmt.Errorf("sqlite: revenue by day: %w", err)
		}
		trend = append(trend, d)
	}
	return trend, rows.Err()
}

// UnitsByProduct ranks products by units sold, using the snapshotted line
// name so products deleted from the catalog still show up.
func (r *OrderRepo) UnitsByProduct(ctx context.Context, limit int) ([]order.ProductUnits, error) {
	rows, err := r.store.db.QueryContext(ctx, `
		SELECT name, SUM(quantity) AS units
		FROM   order_lines
		GROUP  BY name
		ORDER  BY units DESC, name
		LIMIT  ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: units by product: %w", err)
	}
	defer rows.Close()

	top := make([]order.ProductUnits, 0)
	for rows.Next() {
		var p order.ProductUnits
		if err := rows.Scan(&p.Name, &p.Units); err != nil {
			return nil, fmt.Errorf("sqlite: units by product: %w", err)
		}
		top = append(top, p)
	}
	return top, rows.Err()
}

func (r *OrderRepo) loadLines(ctx context.Context, o *order.Order) error {
	rows, err := r.store.db.QueryContext(ctx, `
		SELECT product_id, name, quantity, unit_price
		FROM   order_lines
		WHERE  order_id = ?
		ORDER  BY position`, o.ID)
	if err != nil {
		return fmt.Errorf("sqlite: load lines for %q: %w", o.ID, err)
	}
	defer rows.Close()

	o.Lines = make([]order.Line, 0)
	for rows.Next() {
		var l order.Line
		if err := rows.Scan(&l.ProductID, &l.Name, &l.Quantity, &l.UnitPrice); err != nil {
			return fmt.Errorf("sqlite: load lines for %q: %w", o.ID, err)
		}
		o.Lines = append(o.Lines, l)
	}
	return rows.Err()
}

func scanOrder(row rowScanner) (*order.Order, error) {
	var o order.Order
	var status, channel, createdAt string
	err := row.Scan(&o.ID, &o.CustomerRef, &o.TotalPrice, &o.PaymentMethod,
		&status, &channel, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, order.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: scan order: %w", err)
	}
	o.Status = order.Status(status)
	o.Channel = order.Channel(channel)
	o.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
