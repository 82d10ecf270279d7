package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ghuser/stockline/pkg/database"
	invdomain "github.com/ghuser/stockline/services/inventory/domain"
	"github.com/ghuser/stockline/services/inventory/domain/models"
)

// StockLedger implements repositories.StockLedger against PostgreSQL.
// Deduct relies on a conditional UPDATE so the availability check and the
// decrement are one atomic statement; the table additionally carries a
// CHECK (quantity >= 0) constraint as a backstop.
type StockLedger struct {
	q database.Queryer
}

// NewStockLedger returns a StockLedger bound to the given queryer.
func NewStockLedger(q database.Queryer) *StockLedger {
	return &StockLedger{q: q}
}

// Deduct atomically decrements the stock level by qty, failing with
// *domain.InsufficientStockError when the level holds less than qty.
// qty must be positive.
func (l *StockLedger) Deduct(ctx context.Context, orgID, warehouseID, productID uuid.UUID, qty int64) error {
	if qty <= 0 {
		return invdomain.ErrInvalidQuantity
	}

	res, err := l.q.ExecContext(ctx, `
		UPDATE stock_levels
		SET quantity = quantity - $1, updated_at = now()
		WHERE org_id = $2 AND warehouse_id = $3 AND product_id = $4 AND quantity >= $1`,
		qty, orgID, warehouseID, productID,
	)
	if err != nil {
		return fmt.Errorf("deduct stock: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deduct stock rows affected: %w", err)
	}
	if affected == 1 {
		return nil
	}

	// The conditional write matched no row: either the level is too low or
	// there is no row at all. Re-read to build a precise error.
	var available int64
	err = l.q.QueryRowContext(ctx, `
		SELECT quantity FROM stock_levels
		WHERE org_id = $1 AND warehouse_id = $2 AND product_id = $3`,
		orgID, warehouseID, productID,
	).Scan(&available)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("read stock after failed deduct: %w", err)
	}
	return &invdomain.InsufficientStockError{
		ProductID: productID,
		Available: available,
		Requested: qty,
	}
}

// Restore unconditionally increments the stock level by qty, creating the
// row if the item has never been stocked at this warehouse. qty must be
// positive.
func (l *StockLedger) Restore(ctx context.Context, orgID, warehouseID, productID uuid.UUID, qty int64) error {
	if qty <= 0 {
		return invdomain.ErrInvalidQuantity
	}

	_, err := l.q.ExecContext(ctx, `
		INSERT INTO stock_levels (org_id, warehouse_id, product_id, quantity, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (org_id, warehouse_id, product_id)
		DO UPDATE SET quantity = stock_levels.quantity + EXCLUDED.quantity, updated_at = now()`,
		orgID, warehouseID, productID, qty,
	)
	if err != nil {
		return fmt.Errorf("restore stock: %w", err)
	}
	return nil
}

// Get reads the current stock level. Returns ErrStockNotFound when the item
// has never been stocked at this warehouse.
func (l *StockLedger) Get(ctx context.Context, orgID, warehouseID, productID uuid.UUID) (*models.StockLevel, error) {
	var lvl models.StockLevel
	err := l.q.QueryRowContext(ctx, `
		SELECT org_id, warehouse_id, product_id, quantity, updated_at
		FROM stock_levels
		WHERE org_id = $1 AND warehouse_id = $2 AND product_id = $3`,
		orgID, warehouseID, productID,
	).Scan(&lvl.OrgID, &lvl.WarehouseID, &lvl.ProductID, &lvl.Quantity, &lvl.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, invdomain.ErrStockNotFound
		}
		return nil, fmt.Errorf("query stock level: %w", err)
	}
	return &lvl, nil
}
