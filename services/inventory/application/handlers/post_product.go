package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/stockline/pkg/auth"
	"github.com/ghuser/stockline/pkg/errhttp"
	"github.com/ghuser/stockline/pkg/httpx"
	pkgvalidator "github.com/ghuser/stockline/pkg/validator"
	appsvcs "github.com/ghuser/stockline/services/inventory/application/services"
)

// CreateProductRequest is the request body for POST /products.
type CreateProductRequest struct {
	SKU        string `json:"sku" validate:"omitempty,max=64" example:"SKU-A1B2C3D4"`
	Name       string `json:"name" validate:"required,min=1,max=255" example:"Pallet Jack"`
	PriceCents int64  `json:"price_cents" validate:"gte=0" example:"129900"`
} // @name CreateProductRequest

// ProductResponse is the JSON shape of a catalog product.
type ProductResponse struct {
	ID         uuid.UUID `json:"id"          example:"123e4567-e89b-12d3-a456-426614174000"`
	OrgID      uuid.UUID `json:"org_id"      example:"550e8400-e29b-41d4-a716-446655440000"`
	SKU        string    `json:"sku"         example:"SKU-A1B2C3D4"`
	Name       string    `json:"name"        example:"Pallet Jack"`
	PriceCents int64     `json:"price_cents" example:"129900"`
	CreatedAt  time.Time `json:"created_at"  example:"2024-01-15T10:30:00Z"`
} // @name ProductResponse

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error string `json:"error" example:"product not found"`
} // @name InventoryErrorResponse

// PostProductHandler handles POST /products requests.
type PostProductHandler struct {
	svc *appsvcs.Services
}

// NewPostProductHandler returns a PostProductHandler backed by the given services.
func NewPostProductHandler(svc *appsvcs.Services) *PostProductHandler {
	return &PostProductHandler{svc: svc}
}

// Execute creates a new catalog product.
//
//	@Summary		Create product
//	@Description	Creates a catalog product scoped to the caller's organization
//	@Tags			inventory
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateProductRequest	true	"Product creation request"
//	@Success		201		{object}	ProductResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/products [post]
func (h *PostProductHandler) Execute(w http.ResponseWriter, r *http.Request) {
	principal, err := auth.PrincipalFromCtx(r.Context())
	if err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if !principal.Can(auth.CapCatalogWrite) {
		httpx.JSONError(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	req, ok := pkgvalidator.ValidateRequest[CreateProductRequest](w, r)
	if !ok {
		return
	}

	product, err := h.svc.Products.Create(r.Context(), principal.OrgID, req.SKU, req.Name, req.PriceCents)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, ProductResponse{
		ID:         product.ID,
		OrgID:      product.OrgID,
		SKU:        product.SKU,
		Name:       product.Name,
		PriceCents: product.PriceCents,
		CreatedAt:  product.CreatedAt,
	})
}
