package services

import (
	"github.com/ghuser/stockline/pkg/app"
	"github.com/ghuser/stockline/pkg/cache"
	"github.com/ghuser/stockline/services/inventory/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for this bounded context.
// It wires domain services with their infrastructure implementations.
type Services struct {
	Products *ProductService
	Stock    *StockService
}

// New wires all inventory application services with infrastructure from the
// Application container.
func New(a *app.Application) *Services {
	products := postgres.NewProductRepository(a.Db.DB())
	ledger := postgres.NewStockLedger(a.Db.DB())
	uow := postgres.NewUnitOfWork(a.Db, a.EventBus)
	stockCache := cache.NewStockCache(a.Redis)
	return &Services{
		Products: NewProductService(products),
		Stock:    NewStockService(ledger, uow, stockCache),
	}
}
