// Package catalog holds the product domain: the mutable inventory records
// that both the POS admin screens and the chat catalog are built from.
package catalog

import "time"

// Product is a single inventory record. Quantity is the only field the
// checkout path ever mutates; everything else changes through the CRUD API.
type Product struct {
	ID string `json:"id"`

	// RetailerID is the identifier published to the messaging catalog.
	// It is assigned once at creation and never changes, so catalog item
	// selections can be resolved even after other fields are edited.
	RetailerID string `json:"retailer_id"`

	SKU         string  `json:"sku"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category,omitempty"`
	ImageURL    string  `json:"image_url,omitempty"`
	Price       float64 `json:"price"`
	Quantity    int64   `json:"quantity"`

	CreatedAt time.Time `json:"created_at"`
}
