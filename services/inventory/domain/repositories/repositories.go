package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/ghuser/stockline/services/inventory/domain/models"
)

// QueryOpts contains pagination parameters for list queries.
type QueryOpts struct {
	Limit  int // Maximum number of records to return
	Offset int // Number of records to skip
}

// ProductRepository is the persistence interface for the catalog.
// The domain layer owns this interface; infrastructure implements it.
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Product, error)

	// FindByOrgID retrieves a paginated list of products for the given org.
	// Returns the products slice and the total count (ignoring pagination).
	FindByOrgID(ctx context.Context, orgID uuid.UUID, opts QueryOpts) ([]*models.Product, int, error)

	// PricesByIDs returns current catalog prices (in cents) for the given
	// product IDs. Every requested ID must exist; a missing ID yields
	// ErrProductNotFound so callers never snapshot a price of zero.
	PricesByIDs(ctx context.Context, orgID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]int64, error)
}

// StockLedger is the only write path to per-warehouse stock quantities.
//
// Deduct must be implemented as a single conditional write — the availability
// check and the decrement happen in one atomic step at the storage layer, so
// two concurrent deductions can never both pass a stale check. A failed
// conditional write surfaces as *domain.InsufficientStockError.
//
// Restore is an unconditional increment; it also records inbound supply for
// items that have no stock row yet.
type StockLedger interface {
	Deduct(ctx context.Context, orgID, warehouseID, productID uuid.UUID, qty int64) error
	Restore(ctx context.Context, orgID, warehouseID, productID uuid.UUID, qty int64) error
	Get(ctx context.Context, orgID, warehouseID, productID uuid.UUID) (*models.StockLevel, error)
}

// EventPublisher publishes a domain event to a topic. Inside a UnitOfWork the
// publisher is bound to the surrounding transaction, so events commit or roll
// back together with the writes they describe.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event any) error
}

// TxRepos bundles the repositories bound to one transaction scope.
type TxRepos struct {
	Products ProductRepository
	Stock    StockLedger
	Events   EventPublisher
}

// UnitOfWork runs fn inside one atomic transaction scope. Every mutation made
// through the TxRepos handle is durably applied if fn returns nil and fully
// discarded if it returns an error. Aborted scopes are not retried; the
// caller receives the error and decides whether to resubmit.
type UnitOfWork interface {
	Atomic(ctx context.Context, fn func(tx TxRepos) error) error
}
