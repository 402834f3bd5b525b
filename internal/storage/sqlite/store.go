// Package sqlite provides the durable store shared by the inventory
// catalog and the order ledger.
//
// Both live in one database so a single *sql.Tx is the atomic unit of work
// the checkout engine needs: stock decrements and the order insert commit
// together or not at all. WAL mode is enabled on Open so reads (product
// lists, analytics) never block the checkout writer.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rloza/tiendapos/internal/catalog"
	"github.com/rloza/tiendapos/internal/checkout"
	"github.com/rloza/tiendapos/internal/order"

	// Register the pure-Go SQLite driver. modernc.org/sqlite avoids CGO,
	// which keeps cross-compilation and Alpine images painless.
	_ "modernc.org/sqlite"
)

// schema is the DDL executed once on startup. Idempotent via IF NOT EXISTS.
const schema = `
CREATE TABLE IF NOT EXISTS products (
    id           TEXT PRIMARY KEY,

    -- Identifier published to the messaging catalog. Assigned once.
    retailer_id  TEXT NOT NULL UNIQUE,

    sku          TEXT NOT NULL UNIQUE,
    name         TEXT NOT NULL,
    description  TEXT NOT NULL DEFAULT '',
    category     TEXT NOT NULL DEFAULT '',
    image_url    TEXT NOT NULL DEFAULT '',
    price        REAL NOT NULL CHECK (price >= 0),

    -- The CHECK is the last line of defence; the checkout path additionally
    -- guards its UPDATE so the constraint is never hit under normal flow.
    quantity     INTEGER NOT NULL CHECK (quantity >= 0),

    -- RFC3339 stored as TEXT (SQLite idiom).
    created_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS orders (
    id             TEXT PRIMARY KEY,
    customer_ref   TEXT NOT NULL DEFAULT '',
    total_price    REAL NOT NULL,
    payment_method TEXT NOT NULL,
    status         TEXT NOT NULL,
    channel        TEXT NOT NULL DEFAULT 'pos',
    created_at     TEXT NOT NULL
);

-- Denormalized snapshots: name and unit_price are copied from the product
-- at commit time and never updated, so the ledger survives product edits
-- and deletions intact.
CREATE TABLE IF NOT EXISTS order_lines (
    order_id   TEXT NOT NULL REFERENCES orders(id),
    position   INTEGER NOT NULL,
    product_id TEXT NOT NULL,
    name       TEXT NOT NULL,
    quantity   INTEGER NOT NULL,
    unit_price REAL NOT NULL,
    PRIMARY KEY (order_id, position)
);

CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at);
CREATE INDEX IF NOT EXISTS idx_order_lines_order ON order_lines(order_id);
`

// Store owns the database handle. It is opened once at process start,
// passed by reference into the engine and repositories, and closed at
// shutdown.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at the given path and applies the
// schema.
//
//	store, err := sqlite.Open("./data/tiendapos.db")
func Open(path string) (*Store, error) {
	// The pure-Go driver configures connection state via _pragma query
	// parameters. busy_timeout waits for locks instead of failing fast.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// SQLite performs best with a single writer connection; this also
	// serializes concurrent checkout transactions at the pool level.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database handle. Call it with defer in main().
func (s *Store) Close() error {
	return s.db.Close()
}

// WithTx runs fn inside one transaction. Any error from fn rolls the
// transaction back; otherwise it is committed.
func (s *Store) WithTx(ctx context.Context, fn func(tx checkout.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin tx: %w", err)
	}
	if err := fn(&unitOfWork{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

var _ checkout.Storage = (*Store)(nil)

// unitOfWork adapts one *sql.Tx to the surface the checkout engine needs.
type unitOfWork struct {
	tx *sql.Tx
}

func (u *unitOfWork) ProductByID(ctx context.Context, id string) (*catalog.Product, error) {
	return scanProduct(u.tx.QueryRowContext(ctx, productSelect+` WHERE id = ?`, id))
}

// DecrementStock performs the atomic check-and-decrement. The WHERE guard
// makes "read then write" safe: a concurrent checkout that already took
// the last units causes zero rows affected here, never a negative value.
func (u *unitOfWork) DecrementStock(ctx context.Context, id string, qty int64) (bool, error) {
	res, err := u.tx.ExecContext(ctx,
		`UPDATE products SET quantity = quantity - ? WHERE id = ? AND quantity >= ?`,
		qty, id, qty,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: decrement stock for %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: decrement stock for %q: %w", id, err)
	}
	return n == 1, nil
}

func (u *unitOfWork) InsertOrder(ctx context.Context, o *order.Order) error {
	return insertOrder(ctx, u.tx, o)
}
