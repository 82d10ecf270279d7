package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/ghuser/stockline/services/ordering/domain/models"
)

// QueryOpts contains pagination parameters for list queries.
type QueryOpts struct {
	Limit  int
	Offset int
}

// OrderRepository is the persistence interface for the order aggregate.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Order, error)

	// GetForUpdate loads the order and locks the aggregate row for the
	// remainder of the surrounding transaction, serializing concurrent
	// mutations of the same order.
	GetForUpdate(ctx context.Context, orgID, id uuid.UUID) (*models.Order, error)

	// Update persists the aggregate's current status, line items and total.
	Update(ctx context.Context, order *models.Order) error

	FindByOrgID(ctx context.Context, orgID uuid.UUID, opts QueryOpts) ([]*models.Order, int, error)
}

// StockLedger is the slice of the inventory ledger the ordering context
// needs: conditional deduction and unconditional restoration, both inside the
// surrounding transaction. A failed deduction surfaces the inventory
// context's InsufficientStockError.
type StockLedger interface {
	Deduct(ctx context.Context, orgID, warehouseID, productID uuid.UUID, qty int64) error
	Restore(ctx context.Context, orgID, warehouseID, productID uuid.UUID, qty int64) error
}

// PriceCatalog resolves current catalog prices so line-item snapshots are
// re-derived, never carried over, whenever items change.
type PriceCatalog interface {
	PricesByIDs(ctx context.Context, orgID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]int64, error)
}

// EventPublisher publishes a domain event to a topic, bound to the
// surrounding transaction inside a UnitOfWork.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event any) error
}

// TxRepos bundles the collaborators bound to one transaction scope.
type TxRepos struct {
	Orders  OrderRepository
	Stock   StockLedger
	Catalog PriceCatalog
	Events  EventPublisher
}

// UnitOfWork runs fn inside one atomic transaction scope covering the order
// aggregate, the stock ledger and the outbox. Either every mutation commits
// or none do; aborted scopes are not retried.
type UnitOfWork interface {
	Atomic(ctx context.Context, fn func(tx TxRepos) error) error
}
