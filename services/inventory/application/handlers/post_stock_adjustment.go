package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/ghuser/stockline/pkg/auth"
	"github.com/ghuser/stockline/pkg/errhttp"
	"github.com/ghuser/stockline/pkg/httpx"
	pkgvalidator "github.com/ghuser/stockline/pkg/validator"
	appsvcs "github.com/ghuser/stockline/services/inventory/application/services"
)

// AdjustStockRequest is the request body for POST /stock/adjustments.
// Delta is signed: positive records found or returned stock, negative records
// shrinkage. Zero is rejected.
type AdjustStockRequest struct {
	WarehouseID uuid.UUID `json:"warehouse_id" validate:"required" example:"7f9c24e8-3b1a-4d92-a1a7-88a5b0c0d001"`
	ProductID   uuid.UUID `json:"product_id" validate:"required" example:"123e4567-e89b-12d3-a456-426614174000"`
	Delta       int64     `json:"delta" validate:"required" example:"-3"`
	Reason      string    `json:"reason" validate:"required,min=3,max=500" example:"cycle count correction"`
} // @name AdjustStockRequest

// PostStockAdjustmentHandler handles POST /stock/adjustments requests.
type PostStockAdjustmentHandler struct {
	svc *appsvcs.Services
}

// NewPostStockAdjustmentHandler returns a PostStockAdjustmentHandler backed by the given services.
func NewPostStockAdjustmentHandler(svc *appsvcs.Services) *PostStockAdjustmentHandler {
	return &PostStockAdjustmentHandler{svc: svc}
}

// Execute applies a manual stock adjustment.
//
//	@Summary		Adjust stock
//	@Description	Applies a signed manual correction to one stock level
//	@Tags			inventory
//	@Accept			json
//	@Produce		json
//	@Param			request	body		AdjustStockRequest	true	"Adjustment request"
//	@Success		200		{object}	StockLevelResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/stock/adjustments [post]
func (h *PostStockAdjustmentHandler) Execute(w http.ResponseWriter, r *http.Request) {
	principal, err := auth.PrincipalFromCtx(r.Context())
	if err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if !principal.Can(auth.CapStockAdjust) {
		httpx.JSONError(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	req, ok := pkgvalidator.ValidateRequest[AdjustStockRequest](w, r)
	if !ok {
		return
	}

	level, err := h.svc.Stock.Adjust(r.Context(), principal.OrgID, req.WarehouseID, req.ProductID, req.Delta, req.Reason)
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
