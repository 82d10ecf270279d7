package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/stockline/services/ordering/domain/events"
	"github.com/ghuser/stockline/services/ordering/domain/models"
	"github.com/ghuser/stockline/services/ordering/domain/repositories"
	domainsvcs "github.com/ghuser/stockline/services/ordering/domain/services"
)

// OrderService orchestrates the order lifecycle. Every mutating operation
// runs inside one UnitOfWork scope: aggregate write, ledger movement and
// event publish commit together or not at all, so no caller ever observes a
// stock delta without its order document or vice versa.
type OrderService struct {
	reads repositories.OrderRepository
	uow   repositories.UnitOfWork
}

// NewOrderService returns an OrderService wired with the given read
// repository and unit of work.
func NewOrderService(reads repositories.OrderRepository, uow repositories.UnitOfWork) *OrderService {
	return &OrderService{reads: reads, uow: uow}
}

// Create validates and persists a new order. When confirm is true the order
// starts in confirmed status and its line items are deducted from the ledger
// in the same transaction; a draft (pending) order allocates nothing until
// confirmed. Any deduction failure aborts the whole creation.
func (s *OrderService) Create(ctx context.Context, orgID, warehouseID uuid.UUID, inputs []models.LineItemInput, confirm bool) (*models.Order, error) {
	if err := models.ValidateLineItems(inputs); err != nil {
		return nil, err
	}

	order, err := models.NewOrder(orgID, warehouseID, confirm)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	err = s.uow.Atomic(ctx, func(tx repositories.TxRepos) error {
		prices, err := tx.Catalog.PricesByIDs(ctx, orgID, productIDs(inputs))
		if err != nil {
			return err
		}
		if err := order.SetItems(inputs, prices); err != nil {
			return err
		}

		if order.Status.HoldsStock() {
			plan := domainsvcs.ReconcileLineItems(nil, order.ItemQuantities())
			if err := applyPlan(ctx, tx.Stock, orgID, warehouseID, plan); err != nil {
				return err
			}
		}

		if err := tx.Orders.Create(ctx, order); err != nil {
			return err
		}
		return tx.Events.Publish(ctx, events.TopicOrderCreated, events.OrderCreatedEvent{
			EventID:     uuid.New(),
			Version:     1,
			OrderID:     order.ID,
			OrgID:       orgID,
			WarehouseID: warehouseID,
			Status:      string(order.Status),
			Items:       eventItems(order.Items),
			TotalCents:  order.TotalCents,
			OccurredAt:  time.Now().UTC(),
		})
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// EditItems replaces an order's line-item set. For a stock-holding order the
// ledger is reconciled in the same transaction: quantities that shrank are
// restored before grown or added quantities are deducted, so shrinking one
// line can free capacity for growing another. The whole edit fails with no
// ledger change when any deduction is short; prices are re-derived from the
// current catalog, never carried over.
func (s *OrderService) EditItems(ctx context.Context, orgID, orderID uuid.UUID, inputs []models.LineItemInput) (*models.Order, error) {
	if err := models.ValidateLineItems(inputs); err != nil {
		return nil, err
	}

	var order *models.Order
	err := s.uow.Atomic(ctx, func(tx repositories.TxRepos) error {
		var err error
		order, err = tx.Orders.GetForUpdate(ctx, orgID, orderID)
		if err != nil {
			return err
		}
		prev := order.ItemQuantities()

		prices, err := tx.Catalog.PricesByIDs(ctx, orgID, productIDs(inputs))
		if err != nil {
			return err
		}
		if err := order.SetItems(inputs, prices); err != nil {
			return err
		}

		stockMoved := false
		if order.Status.HoldsStock() {
			plan := domainsvcs.ReconcileLineItems(prev, order.ItemQuantities())
			if err := applyPlan(ctx, tx.Stock, orgID, order.WarehouseID, plan); err != nil {
				return err
			}
			stockMoved = !plan.Empty()
		}

		if err := tx.Orders.Update(ctx, order); err != nil {
			return err
		}
		return tx.Events.Publish(ctx, events.TopicOrderItemsChanged, events.OrderItemsChangedEvent{
			EventID:       uuid.New(),
			Version:       1,
			OrderID:       order.ID,
			OrgID:         orgID,
			WarehouseID:   order.WarehouseID,
			PreviousItems: prev,
			Items:         eventItems(order.Items),
			TotalCents:    order.TotalCents,
			StockMoved:    stockMoved,
			OccurredAt:    time.Now().UTC(),
		})
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Transition moves an order to the target status and applies the bound
// ledger effect in the same transaction: entry into confirmed deducts every
// line item, cancellation of a stock-holding order restores them. A rejected
// edge returns InvalidTransitionError with no side effect.
func (s *OrderService) Transition(ctx context.Context, orgID, orderID uuid.UUID, target models.OrderStatus) (*models.Order, error) {
	var order *models.Order
	err := s.uow.Atomic(ctx, func(tx repositories.TxRepos) error {
		var err error
		order, err = tx.Orders.GetForUpdate(ctx, orgID, orderID)
		if err != nil {
			return err
		}
		from := order.Status

		effect, err := order.TransitionTo(target)
		if err != nil {
			return err
		}

		switch effect {
		case models.StockEffectDeduct:
			plan := domainsvcs.ReconcileLineItems(nil, order.ItemQuantities())
			if err := applyPlan(ctx, tx.Stock, orgID, order.WarehouseID, plan); err != nil {
				return err
			}
		case models.StockEffectRestore:
			plan := domainsvcs.ReconcileLineItems(order.ItemQuantities(), nil)
			if err := applyPlan(ctx, tx.Stock, orgID, order.WarehouseID, plan); err != nil {
				return err
			}
		}

		if err := tx.Orders.Update(ctx, order); err != nil {
			return err
		}
		return tx.Events.Publish(ctx, events.TopicOrderStatusChanged, events.OrderStatusChangedEvent{
			EventID:     uuid.New(),
			Version:     1,
			OrderID:     order.ID,
			OrgID:       orgID,
			WarehouseID: order.WarehouseID,
			From:        string(from),
			To:          string(target),
			StockMoved:  effect != models.StockEffectNone,
			Items:       eventItems(order.Items),
			OccurredAt:  time.Now().UTC(),
		})
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// GetByID retrieves an order scoped to the given org.
func (s *OrderService) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Order, error) {
	order, err := s.reads.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

// List returns a paginated slice of orders for the org plus total count.
func (s *OrderService) List(ctx context.Context, orgID uuid.UUID, opts repositories.QueryOpts) ([]*models.Order, int, error) {
	orders, total, err := s.reads.FindByOrgID(ctx, orgID, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	return orders, total, nil
}

// applyPlan executes a reconcile plan against the ledger, restores first.
func applyPlan(ctx context.Context, ledger repositories.StockLedger, orgID, warehouseID uuid.UUID, plan domainsvcs.ReconcilePlan) error {
	for _, d := range plan.Restores {
		if err := ledger.Restore(ctx, orgID, warehouseID, d.ProductID, d.Quantity); err != nil {
			return err
		}
	}
	for _, d := range plan.Deducts {
		if err := ledger.Deduct(ctx, orgID, warehouseID, d.ProductID, d.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func productIDs(inputs []models.LineItemInput) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(inputs))
	for _, in := range inputs {
		ids = append(ids, in.ProductID)
	}
	return ids
}

func eventItems(items []models.LineItem) []events.EventLineItem {
	out := make([]events.EventLineItem, 0, len(items))
	for _, it := range items {
		out = append(out, events.EventLineItem{
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
			PriceCents: it.PriceCents,
		})
	}
	return out
}
