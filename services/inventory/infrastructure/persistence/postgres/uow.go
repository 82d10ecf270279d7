package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ghuser/stockline/pkg/database"
	"github.com/ghuser/stockline/pkg/events"
	"github.com/ghuser/stockline/services/inventory/domain/repositories"
)

// UnitOfWork implements repositories.UnitOfWork over a single PostgreSQL
// transaction. The event publisher handed to fn is bound to the same
// transaction, so adjustment events never outlive a rolled-back write.
type UnitOfWork struct {
	db  *database.Database
	bus *events.EventBus
}

// NewUnitOfWork returns a UnitOfWork over the given pool and event bus.
func NewUnitOfWork(db *database.Database, bus *events.EventBus) *UnitOfWork {
	return &UnitOfWork{db: db, bus: bus}
}

// Atomic runs fn inside one database transaction. All repository mutations
// and event publishes made through the TxRepos handle commit together or not
// at all.
func (u *UnitOfWork) Atomic(ctx context.Context, fn func(tx repositories.TxRepos) error) error {
	return u.db.WithTx(ctx, func(tx *sql.Tx) error {
		pub, err := u.bus.NewTxPublisher(tx)
		if err != nil {
			return fmt.Errorf("tx publisher: %w", err)
		}
		return fn(repositories.TxRepos{
			Products: NewProductRepository(tx),
			Stock:    NewStockLedger(tx),
			Events:   events.NewJSONPublisher(pub),
		})
	})
}
