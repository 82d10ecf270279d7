package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/stockline/pkg/app"
	"github.com/ghuser/stockline/services/ordering/application/handlers"
	appsvcs "github.com/ghuser/stockline/services/ordering/application/services"
)

// OrderRoutes registers order endpoints on the provided chi router.
func OrderRoutes(r chi.Router, a *app.Application) {
	svcs := appsvcs.New(a)
	r.Group(func(r chi.Router) {
		r.Route("/orders", func(r chi.Router) {
			r.Post("/", handlers.NewPostOrderHandler(svcs).Execute)
			r.Get("/", handlers.NewGetOrdersHandler(svcs).Execute)
			r.Route("/{orderID}", func(r chi.Router) {
				r.Get("/", handlers.NewGetOrderHandler(svcs).Execute)
				r.Put("/items", handlers.NewPutOrderItemsHandler(svcs).Execute)
				r.Post("/status", handlers.NewPostOrderStatusHandler(svcs).Execute)
			})
		})
	})
}
