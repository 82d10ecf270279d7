package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ghuser/stockline/pkg/database"
	orderdomain "github.com/ghuser/stockline/services/ordering/domain"
	"github.com/ghuser/stockline/services/ordering/domain/models"
	"github.com/ghuser/stockline/services/ordering/domain/repositories"
)

// OrderRepository implements repositories.OrderRepository against PostgreSQL.
// The aggregate spans two tables; line items are replaced wholesale on Update
// since the set is small and always rewritten together with the total.
type OrderRepository struct {
	q database.Queryer
}

// NewOrderRepository returns an OrderRepository bound to the given queryer.
func NewOrderRepository(q database.Queryer) *OrderRepository {
	return &OrderRepository{q: q}
}

// Create persists a new order with its line items.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO orders (id, org_id, warehouse_id, status, total_cents, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		order.ID, order.OrgID, order.WarehouseID, order.Status, order.TotalCents,
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return r.insertItems(ctx, order)
}

// GetByID retrieves an order with its line items, scoped to the given org.
func (r *OrderRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Order, error) {
	return r.get(ctx, orgID, id, false)
}

// GetForUpdate retrieves an order and locks its row until the surrounding
// transaction ends. Must only be called inside a UnitOfWork.
func (r *OrderRepository) GetForUpdate(ctx context.Context, orgID, id uuid.UUID) (*models.Order, error) {
	return r.get(ctx, orgID, id, true)
}

func (r *OrderRepository) get(ctx context.Context, orgID, id uuid.UUID, forUpdate bool) (*models.Order, error) {
	query := `
		SELECT id, org_id, warehouse_id, status, total_cents, created_at, updated_at
		FROM orders
		WHERE id = $1 AND org_id = $2`
	if forUpdate {
		query += " FOR UPDATE"
	}

	var o models.Order
	err := r.q.QueryRowContext(ctx, query, id, orgID).Scan(
		&o.ID, &o.OrgID, &o.WarehouseID, &o.Status, &o.TotalCents, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, orderdomain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("query order: %w", err)
	}

	items, err := r.loadItems(ctx, []uuid.UUID{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	return &o, nil
}

// Update rewrites the order row and replaces its line items.
func (r *OrderRepository) Update(ctx context.Context, order *models.Order) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, total_cents = $2, updated_at = $3
		WHERE id = $4 AND org_id = $5`,
		order.Status, order.TotalCents, order.UpdatedAt, order.ID, order.OrgID,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update order rows affected: %w", err)
	}
	if affected == 0 {
		return orderdomain.ErrOrderNotFound
	}

	if _, err := r.q.ExecContext(ctx, `
		DELETE FROM order_items WHERE order_id = $1`, order.ID,
	); err != nil {
		return fmt.Errorf("delete order items: %w", err)
	}
	return r.insertItems(ctx, order)
}

// FindByOrgID retrieves a paginated list of orders with items plus total count.
func (r *OrderRepository) FindByOrgID(ctx context.Context, orgID uuid.UUID, opts repositories.QueryOpts) ([]*models.Order, int, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, org_id, warehouse_id, status, total_cents, created_at, updated_at
		FROM orders
		WHERE org_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`,
		orgID, opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	var ids []uuid.UUID
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.OrgID, &o.WarehouseID, &o.Status, &o.TotalCents, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, &o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate orders: %w", err)
	}

	if len(ids) > 0 {
		items, err := r.loadItems(ctx, ids)
		if err != nil {
			return nil, 0, err
		}
		for _, o := range orders {
			o.Items = items[o.ID]
		}
	}

	var total int
	if err := r.q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM orders WHERE org_id = $1`, orgID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}
	return orders, total, nil
}

func (r *OrderRepository) insertItems(ctx context.Context, order *models.Order) error {
	for i, it := range order.Items {
		if _, err := r.q.ExecContext(ctx, `
			INSERT INTO order_items (order_id, position, product_id, quantity, price_cents)
			VALUES ($1, $2, $3, $4, $5)`,
			order.ID, i, it.ProductID, it.Quantity, it.PriceCents,
		); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

func (r *OrderRepository) loadItems(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]models.LineItem, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT order_id, product_id, quantity, price_cents
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position`,
		orderIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	items := make(map[uuid.UUID][]models.LineItem)
	for rows.Next() {
		var orderID uuid.UUID
		var it models.LineItem
		if err := rows.Scan(&orderID, &it.ProductID, &it.Quantity, &it.PriceCents); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items[orderID] = append(items[orderID], it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}
	return items, nil
}
