package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/stockline/pkg/app"
	"github.com/ghuser/stockline/services/inventory/application/handlers"
	appsvcs "github.com/ghuser/stockline/services/inventory/application/services"
)

// InventoryRoutes registers catalog and stock endpoints on the provided chi router.
func InventoryRoutes(r chi.Router, a *app.Application) {
	svcs := appsvcs.New(a)
	r.Group(func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Post("/", handlers.NewPostProductHandler(svcs).Execute)
			r.Get("/", handlers.NewGetProductsHandler(svcs).Execute)
		})
		r.Route("/stock", func(r chi.Router) {
			r.Post("/adjustments", handlers.NewPostStockAdjustmentHandler(svcs).Execute)
			r.Get("/{warehouseID}/{productID}", handlers.NewGetStockHandler(svcs).Execute)
		})
	})
}
