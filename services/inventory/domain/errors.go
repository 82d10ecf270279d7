package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Sentinel errors for the inventory domain. Use errors.Is() to check these.
var (
	// ErrProductNotFound indicates the requested product does not exist in the org's catalog.
	ErrProductNotFound = errors.New("product not found")

	// ErrProductAlreadyExists indicates a product with the same SKU already exists for the org.
	ErrProductAlreadyExists = errors.New("product already exists")

	// ErrStockNotFound indicates no stock level row exists for the item in the warehouse.
	ErrStockNotFound = errors.New("stock level not found")

	// ErrInvalidQuantity indicates a ledger operation was called with a non-positive quantity.
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")

	// ErrInvalidProductName indicates the product name violates domain constraints.
	ErrInvalidProductName = errors.New("invalid product name")

	// ErrZeroAdjustment indicates a manual stock adjustment of zero, which is rejected rather
	// than silently accepted.
	ErrZeroAdjustment = errors.New("adjustment quantity must not be zero")
)

// InsufficientStockError is returned when a conditional deduction fails
// because the warehouse holds less stock than requested. The failing item and
// both quantities are carried so the calling layer can render them.
type InsufficientStockError struct {
	ProductID uuid.UUID
	Available int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: %d available, %d requested",
		e.ProductID, e.Available, e.Requested)
}

// IsInsufficientStock reports whether err is (or wraps) an InsufficientStockError.
func IsInsufficientStock(err error) bool {
	var target *InsufficientStockError
	return errors.As(err, &target)
}
