package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Sentinel errors for the procurement domain. Use errors.Is() to check these.
var (
	// ErrPurchaseOrderNotFound indicates the requested PO does not exist for the org.
	ErrPurchaseOrderNotFound = errors.New("purchase order not found")

	// ErrPurchaseOrderImmutable indicates a mutation was attempted on a PO in a
	// terminal status (received or cancelled) or one not yet placed.
	ErrPurchaseOrderImmutable = errors.New("purchase order can no longer be modified")

	// ErrEmptyPurchaseOrder indicates a PO was submitted with no lines.
	ErrEmptyPurchaseOrder = errors.New("purchase order must contain at least one line")

	// ErrDuplicateLine indicates the same product appears twice on one PO.
	ErrDuplicateLine = errors.New("duplicate product in purchase order lines")

	// ErrInvalidQuantity indicates a line with an ordered quantity below one or
	// a negative received quantity.
	ErrInvalidQuantity = errors.New("invalid purchase order quantity")

	// ErrNothingReceived indicates a receive call whose quantities sum to zero.
	// No-op receipts are rejected rather than silently accepted.
	ErrNothingReceived = errors.New("receive call must include a positive total quantity")

	// ErrUnknownLine indicates a receipt for a product not on the PO.
	ErrUnknownLine = errors.New("product is not on this purchase order")
)

// ExcessReceiptError is returned when a receipt would push a line's received
// quantity past its ordered quantity. The whole receive call is rejected.
type ExcessReceiptError struct {
	ProductID uuid.UUID
	Remaining int64
	Received  int64
}

func (e *ExcessReceiptError) Error() string {
	return fmt.Sprintf("receipt exceeds remaining quantity for product %s: %d remaining, %d received",
		e.ProductID, e.Remaining, e.Received)
}

// IsExcessReceipt reports whether err is (or wraps) an ExcessReceiptError.
func IsExcessReceipt(err error) bool {
	var target *ExcessReceiptError
	return errors.As(err, &target)
}
