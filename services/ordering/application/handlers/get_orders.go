package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ghuser/stockline/pkg/auth"
	"github.com/ghuser/stockline/pkg/errhttp"
	"github.com/ghuser/stockline/pkg/httpx"
	appsvcs "github.com/ghuser/stockline/services/ordering/application/services"
	"github.com/ghuser/stockline/services/ordering/domain/repositories"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

// ListOrdersResponse is returned for GET /orders.
type ListOrdersResponse struct {
	Orders []OrderResponse `json:"orders"`
	Total  int             `json:"total" example:"12"`
} // @name ListOrdersResponse

// GetOrderHandler handles GET /orders/{orderID} requests.
type GetOrderHandler struct {
	svc *appsvcs.Services
}

// NewGetOrderHandler returns a GetOrderHandler backed by the given services.
func NewGetOrderHandler(svc *appsvcs.Services) *GetOrderHandler {
	return &GetOrderHandler{svc: svc}
}

// Execute retrieves one order.
//
//	@Summary		Get order
//	@Tags			orders
//	@Produce		json
//	@Param			orderID	path		string	true	"Order ID"
//	@Success		200		{object}	OrderResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/orders/{orderID} [get]
func (h *GetOrderHandler) Execute(w http.ResponseWriter, r *http.Request) {
	principal, err := auth.PrincipalFromCtx(r.Context())
	if err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if !principal.Can(auth.CapRead) {
		httpx.JSONError(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := h.svc.Orders.GetByID(r.Context(), principal.OrgID, orderID)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, orderResponse(order))
}

// GetOrdersHandler handles GET /orders requests.
type GetOrdersHandler struct {
	svc *appsvcs.Services
}

// NewGetOrdersHandler returns a GetOrdersHandler backed by the given services.
func NewGetOrdersHandler(svc *appsvcs.Services) *GetOrdersHandler {
	return &GetOrdersHandler{svc: svc}
}

// Execute lists orders for the caller's organization.
//
//	@Summary		List orders
//	@Tags			orders
//	@Produce		json
//	@Param			limit	query		int	false	"Page size (max 200)"
//	@Param			offset	query		int	false	"Records to skip"
//	@Success		200		{object}	ListOrdersResponse
//	@Failure		401		{object}	ErrorResponse
//	@Router			/orders [get]
func (h *GetOrdersHandler) Execute(w http.ResponseWriter, r *http.Request) {
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

	orders, total, err := h.svc.Orders.List(r.Context(), principal.OrgID, opts)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	resp := ListOrdersResponse{Orders: make([]OrderResponse, 0, len(orders)), Total: total}
	for _, o := range orders {
		resp.Orders = append(resp.Orders, orderResponse(o))
	}
	httpx.JSON(w, http.StatusOK, resp)
}
