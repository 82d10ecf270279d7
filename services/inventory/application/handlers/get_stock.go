package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ghuser/stockline/pkg/auth"
	"github.com/ghuser/stockline/pkg/errhttp"
	"github.com/ghuser/stockline/pkg/httpx"
	appsvcs "github.com/ghuser/stockline/services/inventory/application/services"
)

// StockLevelResponse is the JSON shape of a per-warehouse stock level.
type StockLevelResponse struct {
	OrgID       uuid.UUID `json:"org_id"       example:"550e8400-e29b-41d4-a716-446655440000"`
	WarehouseID uuid.UUID `json:"warehouse_id" example:"7f9c24e8-3b1a-4d92-a1a7-88a5b0c0d001"`
	ProductID   uuid.UUID `json:"product_id"   example:"123e4567-e89b-12d3-a456-426614174000"`
	Quantity    int64     `json:"quantity"     example:"42"`
	UpdatedAt   time.Time `json:"updated_at"   example:"2024-01-15T10:30:00Z"`
} // @name StockLevelResponse

// GetStockHandler handles GET /stock/{warehouseID}/{productID} requests.
type GetStockHandler struct {
	svc *appsvcs.Services
}

// NewGetStockHandler returns a GetStockHandler backed by the given services.
func NewGetStockHandler(svc *appsvcs.Services) *GetStockHandler {
	return &GetStockHandler{svc: svc}
}

// Execute reads the current stock level for one item in one warehouse.
//
//	@Summary		Get stock level
//	@Tags			inventory
//	@Produce		json
//	@Param			warehouseID	path		string	true	"Warehouse ID"
//	@Param			productID	path		string	true	"Product ID"
//	@Success		200			{object}	StockLevelResponse
//	@Failure		401			{object}	ErrorResponse
//	@Failure		404			{object}	ErrorResponse
//	@Router			/stock/{warehouseID}/{productID} [get]
func (h *GetStockHandler) Execute(w http.ResponseWriter, r *http.Request) {
	principal, err := auth.PrincipalFromCtx(r.Context())
	if err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if !principal.Can(auth.CapRead) {
		httpx.JSONError(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	warehouseID, err := uuid.Parse(chi.URLParam(r, "warehouseID"))
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid warehouse id")
		return
	}
	productID, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	level, err := h.svc.Stock.Get(r.Context(), principal.OrgID, warehouseID, productID)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, StockLevelResponse{
		OrgID:       level.OrgID,
		WarehouseID: level.WarehouseID,
		ProductID:   level.ProductID,
		Quantity:    level.Quantity,
		UpdatedAt:   level.UpdatedAt,
	})
}
