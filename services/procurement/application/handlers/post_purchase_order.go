package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/stockline/pkg/auth"
	"github.com/ghuser/stockline/pkg/errhttp"
	"github.com/ghuser/stockline/pkg/httpx"
	pkgvalidator "github.com/ghuser/stockline/pkg/validator"
	appsvcs "github.com/ghuser/stockline/services/procurement/application/services"
	"github.com/ghuser/stockline/services/procurement/domain/models"
)

// POLineRequest is one submitted purchase order line.
type POLineRequest struct {
	ProductID     uuid.UUID `json:"product_id" validate:"required" example:"123e4567-e89b-12d3-a456-426614174000"`
	OrderedQty    int64     `json:"ordered_qty" validate:"required,gte=1" example:"10"`
	UnitCostCents int64     `json:"unit_cost_cents" validate:"gte=0" example:"45000"`
} // @name POLineRequest

// CreatePurchaseOrderRequest is the request body for POST /purchase-orders.
type CreatePurchaseOrderRequest struct {
	WarehouseID uuid.UUID       `json:"warehouse_id" validate:"required" example:"7f9c24e8-3b1a-4d92-a1a7-88a5b0c0d001"`
	SupplierID  uuid.UUID       `json:"supplier_id" validate:"required" example:"3c9e7a12-5d44-4b6f-9a01-b2c3d4e5f601"`
	Lines       []POLineRequest `json:"lines" validate:"required,min=1,dive"`
	Draft       bool            `json:"draft" example:"false"`
} // @name CreatePurchaseOrderRequest

// POLineResponse is one purchase order line.
type POLineResponse struct {
	ProductID     uuid.UUID `json:"product_id"      example:"123e4567-e89b-12d3-a456-426614174000"`
	OrderedQty    int64     `json:"ordered_qty"     example:"10"`
	ReceivedQty   int64     `json:"received_qty"    example:"4"`
	UnitCostCents int64     `json:"unit_cost_cents" example:"45000"`
} // @name POLineResponse

// PurchaseOrderResponse is the JSON shape of a purchase order.
type PurchaseOrderResponse struct {
	ID          uuid.UUID        `json:"id"           example:"b5b1f9b2-61c4-4f2e-9a3d-7e8f90123456"`
	OrgID       uuid.UUID        `json:"org_id"       example:"550e8400-e29b-41d4-a716-446655440000"`
	WarehouseID uuid.UUID        `json:"warehouse_id" example:"7f9c24e8-3b1a-4d92-a1a7-88a5b0c0d001"`
	SupplierID  uuid.UUID        `json:"supplier_id"  example:"3c9e7a12-5d44-4b6f-9a01-b2c3d4e5f601"`
	Number      int64            `json:"number"       example:"42"`
	Status      string           `json:"status"       example:"partially_received"`
	Lines       []POLineResponse `json:"lines"`
	CreatedAt   time.Time        `json:"created_at"   example:"2024-01-15T10:30:00Z"`
	UpdatedAt   time.Time        `json:"updated_at"   example:"2024-01-15T10:30:00Z"`
} // @name PurchaseOrderResponse

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error string `json:"error" example:"purchase order not found"`
} // @name ProcurementErrorResponse

func purchaseOrderResponse(po *models.PurchaseOrder) PurchaseOrderResponse {
	lines := make([]POLineResponse, 0, len(po.Lines))
	for _, l := range po.Lines {
		lines = append(lines, POLineResponse{
			ProductID:     l.ProductID,
			OrderedQty:    l.OrderedQty,
			ReceivedQty:   l.ReceivedQty,
			UnitCostCents: l.UnitCostCents,
		})
	}
	return PurchaseOrderResponse{
		ID:          po.ID,
		OrgID:       po.OrgID,
		WarehouseID: po.WarehouseID,
		SupplierID:  po.SupplierID,
		Number:      po.Number,
		Status:      string(po.Status),
		Lines:       lines,
		CreatedAt:   po.CreatedAt,
		UpdatedAt:   po.UpdatedAt,
	}
}

// PostPurchaseOrderHandler handles POST /purchase-orders requests.
type PostPurchaseOrderHandler struct {
	svc *appsvcs.Services
}

// NewPostPurchaseOrderHandler returns a PostPurchaseOrderHandler backed by the given services.
func NewPostPurchaseOrderHandler(svc *appsvcs.Services) *PostPurchaseOrderHandler {
	return &PostPurchaseOrderHandler{svc: svc}
}

// Execute creates a new purchase order.
//
//	@Summary		Create purchase order
//	@Description	Creates a PO; its number is drawn from the org's counter atomically
//	@Tags			purchasing
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreatePurchaseOrderRequest	true	"PO creation request"
//	@Success		201		{object}	PurchaseOrderResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/purchase-orders [post]
func (h *PostPurchaseOrderHandler) Execute(w http.ResponseWriter, r *http.Request) {
	principal, err := auth.PrincipalFromCtx(r.Context())
	if err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if !principal.Can(auth.CapPurchaseWrite) {
		httpx.JSONError(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	req, ok := pkgvalidator.ValidateRequest[CreatePurchaseOrderRequest](w, r)
	if !ok {
		return
	}

	lines := make([]models.POLineInput, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, models.POLineInput{
			ProductID:     l.ProductID,
			OrderedQty:    l.OrderedQty,
			UnitCostCents: l.UnitCostCents,
		})
	}

	po, err := h.svc.PurchaseOrders.Create(r.Context(), principal.OrgID, req.WarehouseID, req.SupplierID, lines, req.Draft)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, purchaseOrderResponse(po))
}
