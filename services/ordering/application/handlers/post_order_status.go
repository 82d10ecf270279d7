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
	"github.com/ghuser/stockline/services/ordering/domain/models"
)

// TransitionOrderRequest is the request body for POST /orders/{orderID}/status.
type TransitionOrderRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed shipped delivered cancelled" example:"shipped"`
} // @name TransitionOrderRequest

// PostOrderStatusHandler handles POST /orders/{orderID}/status requests.
type PostOrderStatusHandler struct {
	svc *appsvcs.Services
}

// NewPostOrderStatusHandler returns a PostOrderStatusHandler backed by the given services.
func NewPostOrderStatusHandler(svc *appsvcs.Services) *PostOrderStatusHandler {
	return &PostOrderStatusHandler{svc: svc}
}

// Execute transitions an order to a new status.
//
//	@Summary		Transition order status
//	@Description	Moves the order along its lifecycle, applying any bound stock effect atomically
//	@Tags			orders
//	@Accept			json
//	@Produce		json
//	@Param			orderID	path		string					true	"Order ID"
//	@Param			request	body		TransitionOrderRequest	true	"Target status"
//	@Success		200		{object}	OrderResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/orders/{orderID}/status [post]
func (h *PostOrderStatusHandler) Execute(w http.ResponseWriter, r *http.Request) {
	principal, err := auth.PrincipalFromCtx(r.Context())
	if err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if !principal.Can(auth.CapOrderTransition) {
		httpx.JSONError(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	req, ok := pkgvalidator.ValidateRequest[TransitionOrderRequest](w, r)
	if !ok {
		return
	}
	target, valid := models.ParseOrderStatus(req.Status)
	if !valid {
		httpx.JSONError(w, http.StatusBadRequest, "unknown order status")
		return
	}

	order, err := h.svc.Orders.Transition(r.Context(), principal.OrgID, orderID, target)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, orderResponse(order))
}
