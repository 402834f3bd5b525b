package checkout

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyRequest is returned when a checkout carries no items.
	ErrEmptyRequest = errors.New("checkout: empty request")

	// ErrInvalidQuantity is returned when any requested quantity is below one.
	ErrInvalidQuantity = errors.New("checkout: quantity must be at least 1")

	// ErrStorage wraps transactional infrastructure failures. It is logged
	// and surfaced as a generic failure; retrying is up to the caller.
	ErrStorage = errors.New("checkout: storage failure")
)

// NotFoundError reports a request referencing a product that does not exist
// (or no longer exists). The whole transaction is aborted.
type NotFoundError struct {
	ProductID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("checkout: product %s not found", e.ProductID)
}

// InsufficientStockError reports demand exceeding availability for one
// product. Requested and Available are carried for caller display.
type InsufficientStockError struct {
	ProductID string
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("checkout: insufficient stock for %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// IsRejection reports whether err is an expected, user-facing checkout
// rejection (as opposed to an infrastructure failure). Adapters use it to
// pick between a polite message and a generic error.
func IsRejection(err error) bool {
	var nf *NotFoundError
	var is *InsufficientStockError
	return errors.Is(err, ErrEmptyRequest) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.As(err, &nf) ||
		errors.As(err, &is)
}
