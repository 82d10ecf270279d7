package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ghuser/stockline/pkg/database"
	"github.com/ghuser/stockline/pkg/events"
	invpostgres "github.com/ghuser/stockline/services/inventory/infrastructure/persistence/postgres"
	"github.com/ghuser/stockline/services/procurement/domain/repositories"
)

// UnitOfWork implements repositories.UnitOfWork over a single PostgreSQL
// transaction spanning the PO aggregate, the per-org counter, the stock
// ledger and the outbox.
type UnitOfWork struct {
	db  *database.Database
	bus *events.EventBus
}

// NewUnitOfWork returns a UnitOfWork over the given pool and event bus.
func NewUnitOfWork(db *database.Database, bus *events.EventBus) *UnitOfWork {
	return &UnitOfWork{db: db, bus: bus}
}

// Atomic runs fn inside one database transaction.
func (u *UnitOfWork) Atomic(ctx context.Context, fn func(tx repositories.TxRepos) error) error {
	return u.db.WithTx(ctx, func(tx *sql.Tx) error {
		pub, err := u.bus.NewTxPublisher(tx)
		if err != nil {
			return fmt.Errorf("tx publisher: %w", err)
		}
		return fn(repositories.TxRepos{
			PurchaseOrders: NewPurchaseOrderRepository(tx),
			Counters:       NewCounterRepository(tx),
			Stock:          invpostgres.NewStockLedger(tx),
			Events:         events.NewJSONPublisher(pub),
		})
	})
}
