package handlers

import (
	"net/http"
	"strconv"

	"github.com/ghuser/stockline/pkg/auth"
	"github.com/ghuser/stockline/pkg/errhttp"
	"github.com/ghuser/stockline/pkg/httpx"
	appsvcs "github.com/ghuser/stockline/services/inventory/application/services"
	"github.com/ghuser/stockline/services/inventory/domain/repositories"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

// ListProductsResponse is returned for GET /products.
type ListProductsResponse struct {
	Products []ProductResponse `json:"products"`
	Total    int               `json:"total" example:"137"`
} // @name ListProductsResponse

// GetProductsHandler handles GET /products requests.
type GetProductsHandler struct {
	svc *appsvcs.Services
}

// NewGetProductsHandler returns a GetProductsHandler backed by the given services.
func NewGetProductsHandler(svc *appsvcs.Services) *GetProductsHandler {
	return &GetProductsHandler{svc: svc}
}

// Execute lists catalog products for the caller's organization.
//
//	@Summary		List products
//	@Tags			inventory
//	@Produce		json
//	@Param			limit	query		int	false	"Page size (max 200)"
//	@Param			offset	query		int	false	"Records to skip"
//	@Success		200		{object}	ListProductsResponse
//	@Failure		401		{object}	ErrorResponse
//	@Router			/products [get]
func (h *GetProductsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	principal, err := auth.PrincipalFromCtx(r.Context())
	if err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if !principal.Can(auth.CapRead) {
		httpx.JSONError(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	opts := parseQueryOpts(r)
	products, total, err := h.svc.Products.List(r.Context(), principal.OrgID, opts)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	resp := ListProductsResponse{Products: make([]ProductResponse, 0, len(products)), Total: total}
	for _, p := range products {
		resp.Products = append(resp.Products, ProductResponse{
			ID:         p.ID,
			OrgID:      p.OrgID,
			SKU:        p.SKU,
			Name:       p.Name,
			PriceCents: p.PriceCents,
			CreatedAt:  p.CreatedAt,
		})
	}
	httpx.JSON(w, http.StatusOK, resp)
}

// parseQueryOpts reads limit/offset query parameters with sane bounds.
func parseQueryOpts(r *http.Request) repositories.QueryOpts {
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
	return opts
}
