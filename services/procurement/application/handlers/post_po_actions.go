package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ghuser/stockline/pkg/auth"
	"github.com/ghuser/stockline/pkg/errhttp"
	"github.com/ghuser/stockline/pkg/httpx"
	appsvcs "github.com/ghuser/stockline/services/procurement/application/services"
)

// PostPOPlaceHandler handles POST /purchase-orders/{poID}/place requests.
type PostPOPlaceHandler struct {
	svc *appsvcs.Services
}

// NewPostPOPlaceHandler returns a PostPOPlaceHandler backed by the given services.
func NewPostPOPlaceHandler(svc *appsvcs.Services) *PostPOPlaceHandler {
	return &PostPOPlaceHandler{svc: svc}
}

// Execute places a draft purchase order, opening it for receipts.
//
//	@Summary		Place purchase order
//	@Tags			purchasing
//	@Produce		json
//	@Param			poID	path		string	true	"Purchase order ID"
//	@Success		200		{object}	PurchaseOrderResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Router			/purchase-orders/{poID}/place [post]
func (h *PostPOPlaceHandler) Execute(w http.ResponseWriter, r *http.Request) {
	principal, err := auth.PrincipalFromCtx(r.Context())
	if err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if !principal.Can(auth.CapPurchaseWrite) {
		httpx.JSONError(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	poID, err := uuid.Parse(chi.URLParam(r, "poID"))
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid purchase order id")
		return
	}

	po, err := h.svc.PurchaseOrders.Place(r.Context(), principal.OrgID, poID)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, purchaseOrderResponse(po))
}

// PostPOCancelHandler handles POST /purchase-orders/{poID}/cancel requests.
type PostPOCancelHandler struct {
	svc *appsvcs.Services
}

// NewPostPOCancelHandler returns a PostPOCancelHandler backed by the given services.
func NewPostPOCancelHandler(svc *appsvcs.Services) *PostPOCancelHandler {
	return &PostPOCancelHandler{svc: svc}
}

// Execute cancels a purchase order. Already received stock stays on hand.
//
//	@Summary		Cancel purchase order
//	@Tags			purchasing
//	@Produce		json
//	@Param			poID	path		string	true	"Purchase order ID"
//	@Success		200		{object}	PurchaseOrderResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Router			/purchase-orders/{poID}/cancel [post]
func (h *PostPOCancelHandler) Execute(w http.ResponseWriter, r *http.Request) {
	principal, err := auth.PrincipalFromCtx(r.Context())
	if err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if !principal.Can(auth.CapPurchaseWrite) {
		httpx.JSONError(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	poID, err := uuid.Parse(chi.URLParam(r, "poID"))
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid purchase order id")
		return
	}

	po, err := h.svc.PurchaseOrders.Cancel(r.Context(), principal.OrgID, poID)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, purchaseOrderResponse(po))
}
