package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ghuser/stockline/pkg/database"
	invdomain "github.com/ghuser/stockline/services/inventory/domain"
	"github.com/ghuser/stockline/services/inventory/domain/models"
	"github.com/ghuser/stockline/services/inventory/domain/repositories"
)

// ProductRepository implements repositories.ProductRepository against
// PostgreSQL. Construct it over the pool for plain reads or over an *sql.Tx
// (via the UnitOfWork) for transactional work.
type ProductRepository struct {
	q database.Queryer
}

// NewProductRepository returns a ProductRepository bound to the given queryer.
func NewProductRepository(q database.Queryer) *ProductRepository {
	return &ProductRepository{q: q}
}

// Create persists a new product. Returns ErrProductAlreadyExists on unique
// constraint violations (duplicate SKU within the org).
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO products (id, org_id, sku, name, price_cents, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		product.ID, product.OrgID, product.SKU, product.Name, product.PriceCents, product.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return invdomain.ErrProductAlreadyExists
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID retrieves a product by ID scoped to the given org.
// Returns ErrProductNotFound if not found.
func (r *ProductRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Product, error) {
	var p models.Product
	err := r.q.QueryRowContext(ctx, `
		SELECT id, org_id, sku, name, price_cents, created_at
		FROM products
		WHERE id = $1 AND org_id = $2`,
		id, orgID,
	).Scan(&p.ID, &p.OrgID, &p.SKU, &p.Name, &p.PriceCents, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, invdomain.ErrProductNotFound
		}
		return nil, fmt.Errorf("query product: %w", err)
	}
	return &p, nil
}

// FindByOrgID retrieves a paginated list of products and total count for the given org.
func (r *ProductRepository) FindByOrgID(ctx context.Context, orgID uuid.UUID, opts repositories.QueryOpts) ([]*models.Product, int, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, org_id, sku, name, price_cents, created_at
		FROM products
		WHERE org_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`,
		orgID, opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.OrgID, &p.SKU, &p.Name, &p.PriceCents, &p.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate products: %w", err)
	}

	var total int
	if err := r.q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM products WHERE org_id = $1`, orgID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	return products, total, nil
}

// PricesByIDs returns current catalog prices for the given product IDs.
// Returns ErrProductNotFound if any requested ID does not exist for the org.
func (r *ProductRepository) PricesByIDs(ctx context.Context, orgID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]int64{}, nil
	}

	rows, err := r.q.QueryContext(ctx, `
		SELECT id, price_cents
		FROM products
		WHERE org_id = $1 AND id = ANY($2)`,
		orgID, ids,
	)
	if err != nil {
		return nil, fmt.Errorf("query prices: %w", err)
	}
	defer rows.Close()

	prices := make(map[uuid.UUID]int64, len(ids))
	for rows.Next() {
		var id uuid.UUID
		var price int64
		if err := rows.Scan(&id, &price); err != nil {
			return nil, fmt.Errorf("scan price: %w", err)
		}
		prices[id] = price
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate prices: %w", err)
	}

	for _, id := range ids {
		if _, ok := prices[id]; !ok {
			return nil, fmt.Errorf("product %s: %w", id, invdomain.ErrProductNotFound)
		}
	}
	return prices, nil
}
