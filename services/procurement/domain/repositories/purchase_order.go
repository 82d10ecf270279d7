package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/ghuser/stockline/services/procurement/domain/models"
)

// QueryOpts contains pagination parameters for list queries.
type QueryOpts struct {
	Limit  int
	Offset int
}

// PurchaseOrderRepository is the persistence interface for the PO aggregate.
type PurchaseOrderRepository interface {
	Create(ctx context.Context, po *models.PurchaseOrder) error
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.PurchaseOrder, error)

	// GetForUpdate loads the PO and locks the aggregate row for the remainder
	// of the surrounding transaction, serializing concurrent receipts.
	GetForUpdate(ctx context.Context, orgID, id uuid.UUID) (*models.PurchaseOrder, error)

	Update(ctx context.Context, po *models.PurchaseOrder) error
	FindByOrgID(ctx context.Context, orgID uuid.UUID, opts QueryOpts) ([]*models.PurchaseOrder, int, error)
}

// CounterRepository hands out per-org sequence numbers. Next increments the
// named counter and returns the new value inside the surrounding transaction,
// so a rolled-back PO creation also rolls back its number.
type CounterRepository interface {
	Next(ctx context.Context, orgID uuid.UUID, name string) (int64, error)
}

// StockReceiver is the slice of the inventory ledger procurement needs:
// inbound supply is always additive, so only the unconditional increment is
// exposed here.
type StockReceiver interface {
	Restore(ctx context.Context, orgID, warehouseID, productID uuid.UUID, qty int64) error
}

// EventPublisher publishes a domain event to a topic, bound to the
// surrounding transaction inside a UnitOfWork.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event any) error
}

// TxRepos bundles the collaborators bound to one transaction scope.
type TxRepos struct {
	PurchaseOrders PurchaseOrderRepository
	Counters       CounterRepository
	Stock          StockReceiver
	Events         EventPublisher
}

// UnitOfWork runs fn inside one atomic transaction scope covering the PO
// aggregate, the counter, the stock ledger and the outbox.
type UnitOfWork interface {
	Atomic(ctx context.Context, fn func(tx TxRepos) error) error
}
