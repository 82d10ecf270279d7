package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the ordering domain. Use errors.Is() to check these.
var (
	// ErrOrderNotFound indicates the requested order does not exist for the org.
	ErrOrderNotFound = errors.New("order not found")

	// ErrOrderImmutable indicates a mutation was attempted on an order whose
	// status no longer accepts it (terminal, or line-item edits after shipment).
	ErrOrderImmutable = errors.New("order can no longer be modified")

	// ErrEmptyOrder indicates an order was submitted with no line items.
	ErrEmptyOrder = errors.New("order must contain at least one line item")

	// ErrDuplicateLineItem indicates the same product appears twice in one
	// line-item set.
	ErrDuplicateLineItem = errors.New("duplicate product in line items")

	// ErrInvalidQuantity indicates a line item with a non-positive quantity.
	ErrInvalidQuantity = errors.New("line item quantity must be greater than zero")

	// ErrUnknownStatus indicates a status string outside the order lifecycle.
	ErrUnknownStatus = errors.New("unknown order status")
)

// InvalidTransitionError is returned when a status change is not permitted by
// the lifecycle table. The attempted edge is carried for rendering; the order
// is left untouched.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid order status transition from %q to %q", e.From, e.To)
}

// IsInvalidTransition reports whether err is (or wraps) an InvalidTransitionError.
func IsInvalidTransition(err error) bool {
	var target *InvalidTransitionError
	return errors.As(err, &target)
}
