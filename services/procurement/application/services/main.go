package services

import (
	"github.com/ghuser/stockline/pkg/app"
	"github.com/ghuser/stockline/services/procurement/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for this bounded context.
type Services struct {
	PurchaseOrders *PurchaseOrderService
}

// New wires all procurement application services with infrastructure from the
// Application container.
func New(a *app.Application) *Services {
	reads := postgres.NewPurchaseOrderRepository(a.Db.DB())
	uow := postgres.NewUnitOfWork(a.Db, a.EventBus)
	return &Services{
		PurchaseOrders: NewPurchaseOrderService(reads, uow),
	}
}
