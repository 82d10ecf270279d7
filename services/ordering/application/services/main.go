package services

import (
	"github.com/ghuser/stockline/pkg/app"
	"github.com/ghuser/stockline/services/ordering/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for this bounded context.
type Services struct {
	Orders *OrderService
}

// New wires all ordering application services with infrastructure from the
// Application container.
func New(a *app.Application) *Services {
	reads := postgres.NewOrderRepository(a.Db.DB())
	uow := postgres.NewUnitOfWork(a.Db, a.EventBus)
	return &Services{
		Orders: NewOrderService(reads, uow),
	}
}
