package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ghuser/stockline/pkg/auth"
	"github.com/ghuser/stockline/pkg/errhttp"
	"github.com/ghuser/stockline/pkg/httpx"
	pkgvalidator "github.com/ghuser/stockline/pkg/validator"
	appsvcs "github.com/ghuser/stockline/services/ordering/application/services"
)

// EditOrderItemsRequest is the request body for PUT /orders/{orderID}/items.
// The submitted set replaces the current one; the ledger is reconciled by the
// difference and prices are re-derived from the current catalog.
type EditOrderItemsRequest struct {
	Items []LineItemRequest `json:"items" validate:"required,min=1,dive"`
} // @name EditOrderItemsRequest

// PutOrderItemsHandler handles PUT /orders/{orderID}/items requests.
type PutOrderItemsHandler struct {
	svc *appsvcs.Services
}

// NewPutOrderItemsHandler returns a PutOrderItemsHandler backed by the given services.
func NewPutOrderItemsHandler(svc *appsvcs.Services) *PutOrderItemsHandler {
	return &PutOrderItemsHandler{svc: svc}
}

// Execute replaces an order's line items.
//
//	@Summary		Edit order items
//	@Description	Replaces the line-item set, reconciling the stock ledger by the difference
//	@Tags			orders
//	@Accept			json
//	@Produce		json
//	@Param			orderID	path		string					true	"Order ID"
//	@Param			request	body		EditOrderItemsRequest	true	"New line-item set"
//	@Success		200		{object}	OrderResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/orders/{orderID}/items [put]
func (h *PutOrderItemsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	principal, err := auth.PrincipalFromCtx(r.Context())
	if err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if !principal.Can(auth.CapOrderWrite) {
		httpx.JSONError(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	req, ok := pkgvalidator.ValidateRequest[EditOrderItemsRequest](w, r)
	if !ok {
		return
	}

	order, err := h.svc.Orders.EditItems(r.Context(), principal.OrgID, orderID, lineItemInputs(req.Items))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, orderResponse(order))
}
