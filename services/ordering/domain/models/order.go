package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	orderdomain "github.com/ghuser/stockline/services/ordering/domain"
)

// LineItem is one priced order line. PriceCents is a snapshot of the catalog
// price taken when the line-item set was last committed; it never tracks later
// catalog changes.
type LineItem struct {
	ProductID  uuid.UUID
	Quantity   int64
	PriceCents int64
}

// LineItemInput is an unpriced line as submitted by a caller. Prices are
// always re-derived from the catalog inside the committing transaction.
type LineItemInput struct {
	ProductID uuid.UUID
	Quantity  int64
}

// Order is the sales order aggregate. Status moves through the lifecycle in
// order_status.go; line items and totals are mutated only through SetItems so
// the price snapshot and total never drift apart.
type Order struct {
	ID          uuid.UUID
	OrgID       uuid.UUID
	WarehouseID uuid.UUID
	Status      OrderStatus
	Items       []LineItem
	TotalCents  int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewOrder constructs an order with no items yet. confirm controls the
// starting status: confirmed orders take their stock immediately, pending
// orders are drafts that allocate nothing until confirmed.
func NewOrder(orgID, warehouseID uuid.UUID, confirm bool) (*Order, error) {
	if orgID == uuid.Nil {
		return nil, fmt.Errorf("org_id must be set")
	}
	if warehouseID == uuid.Nil {
		return nil, fmt.Errorf("warehouse_id must be set")
	}

	status := StatusPending
	if confirm {
		status = StatusConfirmed
	}
	now := time.Now().UTC()
	return &Order{
		ID:          uuid.New(),
		OrgID:       orgID,
		WarehouseID: warehouseID,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// ValidateLineItems checks an input set for emptiness, non-positive
// quantities and duplicate products.
func ValidateLineItems(inputs []LineItemInput) error {
	if len(inputs) == 0 {
		return orderdomain.ErrEmptyOrder
	}
	seen := make(map[uuid.UUID]bool, len(inputs))
	for _, in := range inputs {
		if in.Quantity <= 0 {
			return fmt.Errorf("product %s: %w", in.ProductID, orderdomain.ErrInvalidQuantity)
		}
		if seen[in.ProductID] {
			return fmt.Errorf("product %s: %w", in.ProductID, orderdomain.ErrDuplicateLineItem)
		}
		seen[in.ProductID] = true
	}
	return nil
}

// Editable reports whether the line-item set may still change. Drafts and
// confirmed orders are editable; once shipped the physical goods have left,
// so only status transitions remain.
func (o *Order) Editable() bool {
	return o.Status == StatusPending || o.Status == StatusConfirmed
}

// SetItems replaces the line-item set, snapshotting prices from the given
// catalog price map and recomputing the total. Prices must contain every
// product in inputs. Fails with ErrOrderImmutable when the order is no longer
// editable; ledger reconciliation is the caller's responsibility.
func (o *Order) SetItems(inputs []LineItemInput, prices map[uuid.UUID]int64) error {
	if !o.Editable() {
		return orderdomain.ErrOrderImmutable
	}
	if err := ValidateLineItems(inputs); err != nil {
		return err
	}

	items := make([]LineItem, 0, len(inputs))
	var total int64
	for _, in := range inputs {
		price, ok := prices[in.ProductID]
		if !ok {
			return fmt.Errorf("no catalog price for product %s", in.ProductID)
		}
		items = append(items, LineItem{
			ProductID:  in.ProductID,
			Quantity:   in.Quantity,
			PriceCents: price,
		})
		total += price * in.Quantity
	}

	o.Items = items
	o.TotalCents = total
	o.UpdatedAt = time.Now().UTC()
	return nil
}

// ItemQuantities returns the current line items as a product-to-quantity map,
// the shape the reconciler works in.
func (o *Order) ItemQuantities() map[uuid.UUID]int64 {
	m := make(map[uuid.UUID]int64, len(o.Items))
	for _, it := range o.Items {
		m[it.ProductID] = it.Quantity
	}
	return m
}

// TransitionTo moves the order to target if the lifecycle permits it and
// returns the ledger side effect the caller must apply in the same
// transaction. On a rejected edge the order is unchanged and an
// InvalidTransitionError is returned.
func (o *Order) TransitionTo(target OrderStatus) (StockEffect, error) {
	if !o.Status.CanTransitionTo(target) {
		return StockEffectNone, &orderdomain.InvalidTransitionError{
			From: string(o.Status),
			To:   string(target),
		}
	}
	effect := TransitionStockEffect(o.Status, target)
	o.Status = target
	o.UpdatedAt = time.Now().UTC()
	return effect, nil
}
