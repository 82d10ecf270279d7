package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/stockline/pkg/app"
	"github.com/ghuser/stockline/services/procurement/application/handlers"
	appsvcs "github.com/ghuser/stockline/services/procurement/application/services"
)

// PurchaseOrderRoutes registers purchasing endpoints on the provided chi router.
func PurchaseOrderRoutes(r chi.Router, a *app.Application) {
	svcs := appsvcs.New(a)
	r.Group(func(r chi.Router) {
		r.Route("/purchase-orders", func(r chi.Router) {
			r.Post("/", handlers.NewPostPurchaseOrderHandler(svcs).Execute)
			r.Get("/", handlers.NewGetPurchaseOrdersHandler(svcs).Execute)
			r.Route("/{poID}", func(r chi.Router) {
				r.Get("/", handlers.NewGetPurchaseOrderHandler(svcs).Execute)
				r.Post("/place", handlers.NewPostPOPlaceHandler(svcs).Execute)
				r.Post("/receive", handlers.NewPostPOReceiveHandler(svcs).Execute)
				r.Post("/cancel", handlers.NewPostPOCancelHandler(svcs).Execute)
			})
		})
	})
}
