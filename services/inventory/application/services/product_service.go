package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	invdomain "github.com/ghuser/stockline/services/inventory/domain"
	"github.com/ghuser/stockline/services/inventory/domain/models"
	"github.com/ghuser/stockline/services/inventory/domain/repositories"
)

// ProductService orchestrates catalog operations.
type ProductService struct {
	repo repositories.ProductRepository
}

// NewProductService returns a ProductService wired with the given repository.
func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{repo: repo}
}

// Create validates and persists a Product.
func (s *ProductService) Create(ctx context.Context, orgID uuid.UUID, sku, name string, priceCents int64) (*models.Product, error) {
	product, err := models.NewProduct(orgID, sku, name, priceCents)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", invdomain.ErrInvalidProductName, err)
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("save product: %w", err)
	}
	return product, nil
}

// GetByID retrieves a product by ID scoped to the given org.
func (s *ProductService) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

// List returns a paginated slice of products for the org plus total count.
func (s *ProductService) List(ctx context.Context, orgID uuid.UUID, opts repositories.QueryOpts) ([]*models.Product, int, error) {
	products, total, err := s.repo.FindByOrgID(ctx, orgID, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return products, total, nil
}
