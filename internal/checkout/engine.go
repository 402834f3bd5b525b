// Package checkout implements the transaction engine that turns an item
// list into a committed order. Validation, stock decrement and the order
// insert all happen inside one storage transaction: either everything
// commits or nothing does.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/rloza/tiendapos/internal/catalog"
	"github.com/rloza/tiendapos/internal/order"
)

// DefaultPaymentMethod is used when the caller does not supply one.
const DefaultPaymentMethod = "Cash on Delivery"

// Item is one (product, quantity) pair of a checkout request.
type Item struct {
	ProductID string
	Quantity  int64
}

// Request is the canonical checkout input. Both channel adapters (web POS
// and chat) produce this shape.
type Request struct {
	Items         []Item
	CustomerRef   string
	PaymentMethod string
	Channel       order.Channel
}

// Tx is the storage surface available inside one atomic unit of work.
type Tx interface {
	// ProductByID reads a product within the transaction's snapshot.
	// Returns catalog.ErrNotFound when the product does not exist.
	ProductByID(ctx context.Context, id string) (*catalog.Product, error)

	// DecrementStock atomically subtracts qty from the product's quantity,
	// guarded so the result can never go negative. It returns false when
	// the guard rejects the decrement (insufficient stock).
	DecrementStock(ctx context.Context, id string, qty int64) (bool, error)

	// InsertOrder appends the order and its lines to the ledger.
	InsertOrder(ctx context.Context, o *order.Order) error
}

// Storage opens atomic units of work spanning the inventory store and the
// order ledger. fn returning an error aborts the transaction; no partial
// writes survive.
type Storage interface {
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}

// Engine executes checkouts against an injected storage handle.
type Engine struct {
	store  Storage
	tracer trace.Tracer
	now    func() time.Time
}

func NewEngine(store Storage) *Engine {
	return &Engine{
		store:  store,
		tracer: otel.Tracer("checkout"),
		now:    time.Now,
	}
}

// Checkout validates the request, decrements stock and commits an order.
//
// Duplicate product ids are merged before validation, keeping the order in
// which each product was first referenced. On any failure the transaction
// aborts and stock is left exactly as it was.
func (e *Engine) Checkout(ctx context.Context, req Request) (*order.Order, error) {
	items, err := mergeItems(req.Items)
	if err != nil {
		return nil, err
	}

	ctx, span := e.tracer.Start(ctx, "checkout.commit")
	defer span.End()

	payment := req.PaymentMethod
	if payment == "" {
		payment = DefaultPaymentMethod
	}
	channel := req.Channel
	if channel == "" {
		channel = order.ChannelPOS
	}

	var committed *order.Order
	err = e.store.WithTx(ctx, func(tx Tx) error {
		lines := make([]order.Line, 0, len(items))
		for _, it := range items {
			p, err := tx.ProductByID(ctx, it.ProductID)
			if errors.Is(err, catalog.ErrNotFound) {
				return &NotFoundError{ProductID: it.ProductID}
			}
			if err != nil {
				return fmt.Errorf("load product %s: %w", it.ProductID, err)
			}
			if p.Quantity < it.Quantity {
				return &InsufficientStockError{
					ProductID: it.ProductID,
					Requested: it.Quantity,
					Available: p.Quantity,
				}
			}
			ok, err := tx.DecrementStock(ctx, it.ProductID, it.Quantity)
			if err != nil {
				return fmt.Errorf("decrement stock %s: %w", it.ProductID, err)
			}
			if !ok {
				// The SQL guard rejected the decrement even though the
				// snapshot read passed. Report it with the snapshot value.
				return &InsufficientStockError{
					ProductID: it.ProductID,
					Requested: it.Quantity,
					Available: p.Quantity,
				}
			}
			lines = append(lines, order.Line{
				ProductID: p.ID,
				Name:      p.Name,
				Quantity:  it.Quantity,
				UnitPrice: p.Price,
			})
		}

		o := &order.Order{
			ID:            uuid.NewString(),
			CustomerRef:   req.CustomerRef,
			Lines:         lines,
			TotalPrice:    total(lines),
			PaymentMethod: payment,
			Status:        order.StatusPending,
			Channel:       channel,
			CreatedAt:     e.now().UTC(),
		}
		if err := tx.InsertOrder(ctx, o); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		committed = o
		return nil
	})
	if err != nil {
		if IsRejection(err) {
			slog.InfoContext(ctx, "checkout rejected", "customer_ref", req.CustomerRef, "reason", err)
			return nil, err
		}
		slog.ErrorContext(ctx, "checkout aborted", "customer_ref", req.CustomerRef, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	slog.InfoContext(ctx, "order committed",
		"order_id", committed.ID,
		"channel", committed.Channel,
		"total", committed.TotalPrice,
	)
	return committed, nil
}

// mergeItems collapses duplicate product ids by summing their quantities,
// preserving first-reference order.
func mergeItems(items []Item) ([]Item, error) {
	if len(items) == 0 {
		return nil, ErrEmptyRequest
	}
	index := make(map[string]int, len(items))
	merged := make([]Item, 0, len(items))
	for _, it := range items {
		if it.ProductID == "" || it.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
		if i, ok := index[it.ProductID]; ok {
			merged[i].Quantity += it.Quantity
			continue
		}
		index[it.ProductID] = len(merged)
		merged = append(merged, it)
	}
	return merged, nil
}

// total sums the line subtotals, rounded to cents.
func total(lines []order.Line) float64 {
	var sum float64
	for _, l := range lines {
		sum += l.Subtotal()
	}
	return math.Round(sum*100) / 100
}
