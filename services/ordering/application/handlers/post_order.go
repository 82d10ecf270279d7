package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/stockline/pkg/auth"
	"github.com/ghuser/stockline/pkg/errhttp"
	"github.com/ghuser/stockline/pkg/httpx"
	pkgvalidator "github.com/ghuser/stockline/pkg/validator"
	appsvcs "github.com/ghuser/stockline/services/ordering/application/services"
	"github.com/ghuser/stockline/services/ordering/domain/models"
)

// LineItemRequest is one submitted order line.
type LineItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required" example:"123e4567-e89b-12d3-a456-426614174000"`
	Quantity  int64     `json:"quantity" validate:"required,gt=0" example:"3"`
} // @name LineItemRequest

// CreateOrderRequest is the request body for POST /orders. Draft orders start
// pending and allocate no stock; otherwise the order starts confirmed and its
// items are deducted immediately.
type CreateOrderRequest struct {
	WarehouseID uuid.UUID         `json:"warehouse_id" validate:"required" example:"7f9c24e8-3b1a-4d92-a1a7-88a5b0c0d001"`
	Items       []LineItemRequest `json:"items" validate:"required,min=1,dive"`
	Draft       bool              `json:"draft" example:"false"`
} // @name CreateOrderRequest

// LineItemResponse is one priced order line.
type LineItemResponse struct {
	ProductID  uuid.UUID `json:"product_id" example:"123e4567-e89b-12d3-a456-426614174000"`
	Quantity   int64     `json:"quantity"   example:"3"`
	PriceCents int64     `json:"price_cents" example:"129900"`
} // @name LineItemResponse

// OrderResponse is the JSON shape of an order.
type OrderResponse struct {
	ID          uuid.UUID          `json:"id"           example:"9b2cdd0e-3c6f-4d1e-8f5a-0a1b2c3d4e5f"`
	OrgID       uuid.UUID          `json:"org_id"       example:"550e8400-e29b-41d4-a716-446655440000"`
	WarehouseID uuid.UUID          `json:"warehouse_id" example:"7f9c24e8-3b1a-4d92-a1a7-88a5b0c0d001"`
	Status      string             `json:"status"       example:"confirmed"`
	Items       []LineItemResponse `json:"items"`
	TotalCents  int64              `json:"total_cents"  example:"389700"`
	CreatedAt   time.Time          `json:"created_at"   example:"2024-01-15T10:30:00Z"`
	UpdatedAt   time.Time          `json:"updated_at"   example:"2024-01-15T10:30:00Z"`
} // @name OrderResponse

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error string `json:"error" example:"order not found"`
} // @name OrderingErrorResponse

func orderResponse(o *models.Order) OrderResponse {
	items := make([]LineItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, LineItemResponse{
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
			PriceCents: it.PriceCents,
		})
	}
	return OrderResponse{
		ID:          o.ID,
		OrgID:       o.OrgID,
		WarehouseID: o.WarehouseID,
		Status:      string(o.Status),
		Items:       items,
		TotalCents:  o.TotalCents,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

func lineItemInputs(items []LineItemRequest) []models.LineItemInput {
	inputs := make([]models.LineItemInput, 0, len(items))
	for _, it := range items {
		inputs = append(inputs, models.LineItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return inputs
}

// PostOrderHandler handles POST /orders requests.
type PostOrderHandler struct {
	svc *appsvcs.Services
}

// NewPostOrderHandler returns a PostOrderHandler backed by the given services.
func NewPostOrderHandler(svc *appsvcs.Services) *PostOrderHandler {
	return &PostOrderHandler{svc: svc}
}

// Execute creates a new order.
//
//	@Summary		Create order
//	@Description	Creates an order; confirmed orders deduct stock atomically
//	@Tags			orders
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateOrderRequest	true	"Order creation request"
//	@Success		201		{object}	OrderResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/orders [post]
func (h *PostOrderHandler) Execute(w http.ResponseWriter, r *http.Request) {
	principal, err := auth.PrincipalFromCtx(r.Context())
	if err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if !principal.Can(auth.CapOrderWrite) {
		httpx.JSONError(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	req, ok := pkgvalidator.ValidateRequest[CreateOrderRequest](w, r)
	if !ok {
		return
	}

	order, err := h.svc.Orders.Create(r.Context(), principal.OrgID, req.WarehouseID, lineItemInputs(req.Items), !req.Draft)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, orderResponse(order))
}
