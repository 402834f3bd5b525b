// Package cart holds the per-sender shopping carts used by the chat
// channel. Carts are transient staging state only: no stock validation
// happens here, because stock may change between "add" and "checkout".
// The checkout engine re-validates every line at commit time.
package cart

import "context"

// Entry is one (product, quantity) pair in a cart.
type Entry struct {
	ProductID string
	Quantity  int64
}

// Store is the port for cart persistence. A sender is the channel identity
// the cart belongs to (a phone number for the chat channel).
//
// Entries expire together with their cart after the store's TTL elapses
// without a write; abandoned carts are not kept forever.
type Store interface {
	// Add increments the quantity of productID in sender's cart by delta,
	// creating the entry (and the cart) as needed.
	Add(ctx context.Context, sender, productID string, delta int64) error

	// Get returns the current entries of sender's cart. An unknown or
	// expired sender yields an empty slice, not an error.
	Get(ctx context.Context, sender string) ([]Entry, error)

	// Clear drops sender's cart. Called by the chat adapter only after a
	// checkout has committed.
	Clear(ctx context.Context, sender string) error
}
