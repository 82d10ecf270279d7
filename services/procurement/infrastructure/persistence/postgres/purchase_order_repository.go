package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ghuser/stockline/pkg/database"
	podomain "github.com/ghuser/stockline/services/procurement/domain"
	"github.com/ghuser/stockline/services/procurement/domain/models"
	"github.com/ghuser/stockline/services/procurement/domain/repositories"
)

// PurchaseOrderRepository implements repositories.PurchaseOrderRepository
// against PostgreSQL. Lines are replaced wholesale on Update; a PO has at
// most a handful and they are always rewritten together with the status.
type PurchaseOrderRepository struct {
	q database.Queryer
}

// NewPurchaseOrderRepository returns a repository bound to the given queryer.
func NewPurchaseOrderRepository(q database.Queryer) *PurchaseOrderRepository {
	return &PurchaseOrderRepository{q: q}
}

// Create persists a new purchase order with its lines.
func (r *PurchaseOrderRepository) Create(ctx context.Context, po *models.PurchaseOrder) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO purchase_orders (id, org_id, warehouse_id, supplier_id, number, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		po.ID, po.OrgID, po.WarehouseID, po.SupplierID, po.Number, po.Status, po.CreatedAt, po.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert purchase order: %w", err)
	}
	return r.insertLines(ctx, po)
}

// GetByID retrieves a purchase order with its lines, scoped to the given org.
func (r *PurchaseOrderRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.PurchaseOrder, error) {
	return r.get(ctx, orgID, id, false)
}

// GetForUpdate retrieves a purchase order and locks its row until the
// surrounding transaction ends. Must only be called inside a UnitOfWork.
func (r *PurchaseOrderRepository) GetForUpdate(ctx context.Context, orgID, id uuid.UUID) (*models.PurchaseOrder, error) {
	return r.get(ctx, orgID, id, true)
}

func (r *PurchaseOrderRepository) get(ctx context.Context, orgID, id uuid.UUID, forUpdate bool) (*models.PurchaseOrder, error) {
	query := `
		SELECT id, org_id, warehouse_id, supplier_id, number, status, created_at, updated_at
		FROM purchase_orders
		WHERE id = $1 AND org_id = $2`
	if forUpdate {
		query += " FOR UPDATE"
	}

	var po models.PurchaseOrder
	err := r.q.QueryRowContext(ctx, query, id, orgID).Scan(
		&po.ID, &po.OrgID, &po.WarehouseID, &po.SupplierID, &po.Number, &po.Status, &po.CreatedAt, &po.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, podomain.ErrPurchaseOrderNotFound
		}
		return nil, fmt.Errorf("query purchase order: %w", err)
	}

	lines, err := r.loadLines(ctx, []uuid.UUID{po.ID})
	if err != nil {
		return nil, err
	}
	po.Lines = lines[po.ID]
	return &po, nil
}

// Update rewrites the purchase order row and replaces its lines.
func (r *PurchaseOrderRepository) Update(ctx context.Context, po *models.PurchaseOrder) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE purchase_orders
		SET status = $1, updated_at = $2
		WHERE id = $3 AND org_id = $4`,
		po.Status, po.UpdatedAt, po.ID, po.OrgID,
	)
	if err != nil {
		return fmt.Errorf("update purchase order: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update purchase order rows affected: %w", err)
	}
	if affected == 0 {
		return podomain.ErrPurchaseOrderNotFound
	}

	if _, err := r.q.ExecContext(ctx, `
		DELETE FROM purchase_order_lines WHERE purchase_order_id = $1`, po.ID,
	); err != nil {
		return fmt.Errorf("delete purchase order lines: %w", err)
	}
	return r.insertLines(ctx, po)
}

// FindByOrgID retrieves a paginated list of purchase orders plus total count.
func (r *PurchaseOrderRepository) FindByOrgID(ctx context.Context, orgID uuid.UUID, opts repositories.QueryOpts) ([]*models.PurchaseOrder, int, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, org_id, warehouse_id, supplier_id, number, status, created_at, updated_at
		FROM purchase_orders
		WHERE org_id = $1
		ORDER BY number DESC
		LIMIT $2 OFFSET $3`,
		orgID, opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("query purchase orders: %w", err)
	}
	defer rows.Close()

	var pos []*models.PurchaseOrder
	var ids []uuid.UUID
	for rows.Next() {
		var po models.PurchaseOrder
		if err := rows.Scan(&po.ID, &po.OrgID, &po.WarehouseID, &po.SupplierID, &po.Number, &po.Status, &po.CreatedAt, &po.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan purchase order: %w", err)
		}
		pos = append(pos, &po)
		ids = append(ids, po.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate purchase orders: %w", err)
	}

	if len(ids) > 0 {
		lines, err := r.loadLines(ctx, ids)
		if err != nil {
			return nil, 0, err
		}
		for _, po := range pos {
			po.Lines = lines[po.ID]
		}
	}

	var total int
	if err := r.q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM purchase_orders WHERE org_id = $1`, orgID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count purchase orders: %w", err)
	}
	return pos, total, nil
}

func (r *PurchaseOrderRepository) insertLines(ctx context.Context, po *models.PurchaseOrder) error {
	for i, l := range po.Lines {
		if _, err := r.q.ExecContext(ctx, `
			INSERT INTO purchase_order_lines (purchase_order_id, position, product_id, ordered_qty, received_qty, unit_cost_cents)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			po.ID, i, l.ProductID, l.OrderedQty, l.ReceivedQty, l.UnitCostCents,
		); err != nil {
			return fmt.Errorf("insert purchase order line: %w", err)
		}
	}
	return nil
}

func (r *PurchaseOrderRepository) loadLines(ctx context.Context, poIDs []uuid.UUID) (map[uuid.UUID][]models.POLine, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT purchase_order_id, product_id, ordered_qty, received_qty, unit_cost_cents
		FROM purchase_order_lines
		WHERE purchase_order_id = ANY($1)
		ORDER BY purchase_order_id, position`,
		poIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("query purchase order lines: %w", err)
	}
	defer rows.Close()

	lines := make(map[uuid.UUID][]models.POLine)
	for rows.Next() {
		var poID uuid.UUID
		var l models.POLine
		if err := rows.Scan(&poID, &l.ProductID, &l.OrderedQty, &l.ReceivedQty, &l.UnitCostCents); err != nil {
			return nil, fmt.Errorf("scan purchase order line: %w", err)
		}
		lines[poID] = append(lines[poID], l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate purchase order lines: %w", err)
	}
	return lines, nil
}
