package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ghuser/stockline/pkg/auth"
	"github.com/ghuser/stockline/pkg/errhttp"
	"github.com/ghuser/stockline/pkg/httpx"
	pkgvalidator "github.com/ghuser/stockline/pkg/validator"
	appsvcs "github.com/ghuser/stockline/services/procurement/application/services"
	"github.com/ghuser/stockline/services/procurement/domain/models"
)

// ReceiptLineRequest is one line of a delivery.
type ReceiptLineRequest struct {
	ProductID   uuid.UUID `json:"product_id" validate:"required" example:"123e4567-e89b-12d3-a456-426614174000"`
	ReceivedNow int64     `json:"received_now" validate:"gte=0" example:"4"`
} // @name ReceiptLineRequest

// ReceivePurchaseOrderRequest is the request body for POST /purchase-orders/{poID}/receive.
type ReceivePurchaseOrderRequest struct {
	Lines []ReceiptLineRequest `json:"lines" validate:"required,min=1,dive"`
} // @name ReceivePurchaseOrderRequest

// PostPOReceiveHandler handles POST /purchase-orders/{poID}/receive requests.
type PostPOReceiveHandler struct {
	svc *appsvcs.Services
}

// NewPostPOReceiveHandler returns a PostPOReceiveHandler backed by the given services.
func NewPostPOReceiveHandler(svc *appsvcs.Services) *PostPOReceiveHandler {
	return &PostPOReceiveHandler{svc: svc}
}

// Execute records one delivery against a purchase order.
//
//	@Summary		Receive purchase order lines
//	@Description	Records a delivery, incrementing warehouse stock atomically with the PO lines
//	@Tags			purchasing
//	@Accept			json
//	@Produce		json
//	@Param			poID	path		string						true	"Purchase order ID"
//	@Param			request	body		ReceivePurchaseOrderRequest	true	"Delivery lines"
//	@Success		200		{object}	PurchaseOrderResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/purchase-orders/{poID}/receive [post]
func (h *PostPOReceiveHandler) Execute(w http.ResponseWriter, r *http.Request) {
	principal, err := auth.PrincipalFromCtx(r.Context())
	if err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if !principal.Can(auth.CapPurchaseReceive) {
		httpx.JSONError(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	poID, err := uuid.Parse(chi.URLParam(r, "poID"))
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid purchase order id")
		return
	}

	req, ok := pkgvalidator.ValidateRequest[ReceivePurchaseOrderRequest](w, r)
	if !ok {
		return
	}

	receipts := make([]models.ReceiptInput, 0, len(req.Lines))
	for _, l := range req.Lines {
		receipts = append(receipts, models.ReceiptInput{ProductID: l.ProductID, ReceivedNow: l.ReceivedNow})
	}

	po, err := h.svc.PurchaseOrders.Receive(r.Context(), principal.OrgID, poID, receipts)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, purchaseOrderResponse(po))
}
