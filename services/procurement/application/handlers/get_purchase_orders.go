package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ghuser/stockline/pkg/auth"
	"github.com/ghuser/stockline/pkg/errhttp"
	"github.com/ghuser/stockline/pkg/httpx"
	appsvcs "github.com/ghuser/stockline/services/procurement/application/services"
	"github.com/ghuser/stockline/services/procurement/domain/repositories"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

// ListPurchaseOrdersResponse is returned for GET /purchase-orders.
type ListPurchaseOrdersResponse struct {
	PurchaseOrders []PurchaseOrderResponse `json:"purchase_orders"`
	Total          int                     `json:"total" example:"7"`
} // @name ListPurchaseOrdersResponse

// GetPurchaseOrderHandler handles GET /purchase-orders/{poID} requests.
type GetPurchaseOrderHandler struct {
	svc *appsvcs.Services
}

// NewGetPurchaseOrderHandler returns a GetPurchaseOrderHandler backed by the given services.
func NewGetPurchaseOrderHandler(svc *appsvcs.Services) *GetPurchaseOrderHandler {
	return &GetPurchaseOrderHandler{svc: svc}
}

// Execute retrieves one purchase order.
//
//	@Summary		Get purchase order
//	@Tags			purchasing
//	@Produce		json
//	@Param			poID	path		string	true	"Purchase order ID"
//	@Success		200		{object}	PurchaseOrderResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/purchase-orders/{poID} [get]
func (h *GetPurchaseOrderHandler) Execute(w http.ResponseWriter, r *http.Request) {
	principal, err := auth.PrincipalFromCtx(r.Context())
	if err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if !principal.Can(auth.CapRead) {
		httpx.JSONError(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	poID, err := uuid.Parse(chi.URLParam(r, "poID"))
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid purchase order id")
		return
	}

	po, err := h.svc.PurchaseOrders.GetByID(r.Context(), principal.OrgID, poID)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, purchaseOrderResponse(po))
}

// GetPurchaseOrdersHandler handles GET /purchase-orders requests.
type GetPurchaseOrdersHandler struct {
	svc *appsvcs.Services
}

// NewGetPurchaseOrdersHandler returns a GetPurchaseOrdersHandler backed by the given services.
func NewGetPurchaseOrdersHandler(svc *appsvcs.Services) *GetPurchaseOrdersHandler {
	return &GetPurchaseOrdersHandler{svc: svc}
}

// Execute lists purchase orders for the caller's organization.
//
//	@Summary		List purchase orders
//	@Tags			purchasing
//	@Produce		json
//	@Param			limit	query		int	false	"Page size (max 200)"
//	@Param			offset	query		int	false	"Records to skip"
//	@Success		200		{object}	ListPurchaseOrdersResponse
//	@Failure		401		{object}	ErrorResponse
//	@Router			/purchase-orders [get]
func (h *GetPurchaseOrdersHandler) Execute(w http.ResponseWriter, r *http.Request) {
	principal, err := auth.PrincipalFromCtx(r.Context())
	if err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if !principal.Can(auth.CapRead) {
		httpx.JSONError(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	opts := repositories.QueryOpts{Limit: defaultPageLimit}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			opts.Limit = min(n, maxPageLimit)
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			opts.Offset = n
		}
	}

	pos, total, err := h.svc.PurchaseOrders.List(r.Context(), principal.OrgID, opts)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	resp := ListPurchaseOrdersResponse{PurchaseOrders: make([]PurchaseOrderResponse, 0, len(pos)), Total: total}
	for _, po := range pos {
		resp.PurchaseOrders = append(resp.PurchaseOrders, purchaseOrderResponse(po))
	}
	httpx.JSON(w, http.StatusOK, resp)
}
