// Package order defines the order ledger domain. Orders are append-only:
// once committed, the only field that may ever change is the status.
package order

import "time"

// Status represents the lifecycle state of an order.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
)

// Channel identifies the interface a checkout originated from.
type Channel string

const (
	ChannelPOS  Channel = "pos"
	ChannelChat Channel = "chat"
)

// Line is a snapshot of one purchased item. Name and UnitPrice are copied
// from the product at commit time; later product edits or deletions do not
// reach back into committed orders.
type Line struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int64   `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// Subtotal returns the line total at the captured unit price.
func (l Line) Subtotal() float64 {
	return float64(l.Quantity) * l.UnitPrice
}

// Order is a committed checkout. TotalPrice is computed server-side from
// the lines and always equals the sum of their subtotals at creation time.
type Order struct {
	ID            string    `json:"id"`
	CustomerRef   string    `json:"customer_ref,omitempty"`
	Lines         []Line    `json:"items"`
	TotalPrice    float64   `json:"total_price"`
	PaymentMethod string    `json:"payment_method"`
	Status        Status    `json:"status"`
	Channel       Channel   `json:"channel"`
	CreatedAt     time.Time `json:"created_at"`
}
