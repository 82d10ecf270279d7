package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	invdomain "github.com/ghuser/stockline/services/inventory/domain"
	orderdomain "github.com/ghuser/stockline/services/ordering/domain"
	"github.com/ghuser/stockline/services/ordering/domain/events"
	"github.com/ghuser/stockline/services/ordering/domain/models"
	"github.com/ghuser/stockline/services/ordering/domain/repositories"
	"github.com/ghuser/stockline/services/ordering/infrastructure/persistence/memory"
)

type orderFixture struct {
	store       *memory.Store
	svc         *OrderService
	orgID       uuid.UUID
	warehouseID uuid.UUID
	apple       uuid.UUID
	banana      uuid.UUID
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	store := memory.NewStore()
	f := &orderFixture{
		store:       store,
		svc:         NewOrderService(memory.NewOrderRepository(store), memory.NewUnitOfWork(store)),
		orgID:       uuid.New(),
		warehouseID: uuid.New(),
		apple:       uuid.New(),
		banana:      uuid.New(),
	}
	store.SeedStock(f.orgID, f.warehouseID, f.apple, 10)
	store.SeedStock(f.orgID, f.warehouseID, f.banana, 5)
	store.SeedPrice(f.apple, 150)
	store.SeedPrice(f.banana, 80)
	return f
}

func (f *orderFixture) appleQty() int64 {
	return f.store.StockQty(f.orgID, f.warehouseID, f.apple)
}

func (f *orderFixture) bananaQty() int64 {
	return f.store.StockQty(f.orgID, f.warehouseID, f.banana)
}

func TestOrderService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("confirmed order deducts stock in the same transaction", func(t *testing.T) {
		f := newOrderFixture(t)

		order, err := f.svc.Create(ctx, f.orgID, f.warehouseID,
			[]models.LineItemInput{{ProductID: f.apple, Quantity: 1}}, true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if order.Status != models.StatusConfirmed {
			t.Fatalf("expected confirmed, got %s", order.Status)
		}
		if got := f.appleQty(); got != 9 {
			t.Fatalf("expected stock 9, got %d", got)
		}
		if order.TotalCents != 150 {
			t.Fatalf("expected total 150, got %d", order.TotalCents)
		}

		evts := f.store.Events()
		if len(evts) != 1 || evts[0].Topic != events.TopicOrderCreated {
			t.Fatalf("expected one order.created event, got %v", evts)
		}
	})

	t.Run("draft order moves no stock", func(t *testing.T) {
		f := newOrderFixture(t)

		order, err := f.svc.Create(ctx, f.orgID, f.warehouseID,
			[]models.LineItemInput{{ProductID: f.apple, Quantity: 4}}, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if order.Status != models.StatusPending {
			t.Fatalf("expected pending, got %s", order.Status)
		}
		if got := f.appleQty(); got != 10 {
			t.Fatalf("expected stock untouched at 10, got %d", got)
		}
	})

	t.Run("insufficient stock aborts the whole creation", func(t *testing.T) {
		f := newOrderFixture(t)

		_, err := f.svc.Create(ctx, f.orgID, f.warehouseID, []models.LineItemInput{
			{ProductID: f.apple, Quantity: 2},
			{ProductID: f.banana, Quantity: 6},
		}, true)

		var insufficient *invdomain.InsufficientStockError
		if !errors.As(err, &insufficient) {
			t.Fatalf("expected InsufficientStockError, got %v", err)
		}
		if insufficient.ProductID != f.banana || insufficient.Available != 5 || insufficient.Requested != 6 {
			t.Fatalf("unexpected error detail: %+v", insufficient)
		}
		// The apple deduction from the same transaction must be rolled back.
		if got := f.appleQty(); got != 10 {
			t.Fatalf("expected stock restored to 10, got %d", got)
		}
		if got := f.bananaQty(); got != 5 {
			t.Fatalf("expected stock untouched at 5, got %d", got)
		}
		orders, total, listErr := f.svc.List(ctx, f.orgID, repositories.QueryOpts{Limit: 100})
		if listErr != nil {
			t.Fatalf("unexpected error: %v", listErr)
		}
		if len(orders) != 0 || total != 0 {
			t.Fatalf("expected no persisted orders after failed create, got %d", total)
		}
		if evts := f.store.Events(); len(evts) != 0 {
			t.Fatalf("expected no events after failed create, got %d", len(evts))
		}
	})

	t.Run("unknown product fails the creation", func(t *testing.T) {
		f := newOrderFixture(t)

		_, err := f.svc.Create(ctx, f.orgID, f.warehouseID,
			[]models.LineItemInput{{ProductID: uuid.New(), Quantity: 1}}, true)
		if !errors.Is(err, invdomain.ErrProductNotFound) {
			t.Fatalf("expected ErrProductNotFound, got %v", err)
		}
	})

	t.Run("empty item set is rejected before any work", func(t *testing.T) {
		f := newOrderFixture(t)
		_, err := f.svc.Create(ctx, f.orgID, f.warehouseID, nil, true)
		if !errors.Is(err, orderdomain.ErrEmptyOrder) {
			t.Fatalf("expected ErrEmptyOrder, got %v", err)
		}
	})
}

func TestOrderService_Transition(t *testing.T) {
	ctx := context.Background()

	t.Run("cancel restores stock and a second cancel is rejected", func(t *testing.T) {
		f := newOrderFixture(t)

		order, err := f.svc.Create(ctx, f.orgID, f.warehouseID,
			[]models.LineItemInput{{ProductID: f.apple, Quantity: 1}}, true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := f.appleQty(); got != 9 {
			t.Fatalf("expected stock 9 after confirm, got %d", got)
		}

		cancelled, err := f.svc.Transition(ctx, f.orgID, order.ID, models.StatusCancelled)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cancelled.Status != models.StatusCancelled {
			t.Fatalf("expected cancelled, got %s", cancelled.Status)
		}
		if got := f.appleQty(); got != 10 {
			t.Fatalf("expected stock restored to 10, got %d", got)
		}

		_, err = f.svc.Transition(ctx, f.orgID, order.ID, models.StatusCancelled)
		if !orderdomain.IsInvalidTransition(err) {
			t.Fatalf("expected InvalidTransitionError on double cancel, got %v", err)
		}
		// No double restore.
		if got := f.appleQty(); got != 10 {
			t.Fatalf("expected stock still 10, got %d", got)
		}
	})

	t.Run("confirming a draft deducts its items", func(t *testing.T) {
		f := newOrderFixture(t)

		order, err := f.svc.Create(ctx, f.orgID, f.warehouseID,
			[]models.LineItemInput{{ProductID: f.apple, Quantity: 4}}, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := f.appleQty(); got != 10 {
			t.Fatalf("expected stock untouched at 10, got %d", got)
		}

		if _, err := f.svc.Transition(ctx, f.orgID, order.ID, models.StatusConfirmed); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := f.appleQty(); got != 6 {
			t.Fatalf("expected stock 6 after confirm, got %d", got)
		}
	})

	t.Run("confirming a draft fails atomically when stock is short", func(t *testing.T) {
		f := newOrderFixture(t)

		order, err := f.svc.Create(ctx, f.orgID, f.warehouseID,
			[]models.LineItemInput{{ProductID: f.banana, Quantity: 6}}, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		_, err = f.svc.Transition(ctx, f.orgID, order.ID, models.StatusConfirmed)
		var insufficient *invdomain.InsufficientStockError
		if !errors.As(err, &insufficient) {
			t.Fatalf("expected InsufficientStockError, got %v", err)
		}

		got, err := f.svc.GetByID(ctx, f.orgID, order.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Status != models.StatusPending {
			t.Fatalf("expected order still pending, got %s", got.Status)
		}
	})

	t.Run("shipping and delivery move no stock", func(t *testing.T) {
		f := newOrderFixture(t)

		order, err := f.svc.Create(ctx, f.orgID, f.warehouseID,
			[]models.LineItemInput{{ProductID: f.apple, Quantity: 2}}, true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, err := f.svc.Transition(ctx, f.orgID, order.ID, models.StatusShipped); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := f.svc.Transition(ctx, f.orgID, order.ID, models.StatusDelivered); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := f.appleQty(); got != 8 {
			t.Fatalf("expected stock to stay at 8, got %d", got)
		}
	})

	t.Run("cancelling a shipped order restores stock", func(t *testing.T) {
		f := newOrderFixture(t)

		order, err := f.svc.Create(ctx, f.orgID, f.warehouseID,
			[]models.LineItemInput{{ProductID: f.apple, Quantity: 3}}, true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := f.svc.Transition(ctx, f.orgID, order.ID, models.StatusShipped); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := f.svc.Transition(ctx, f.orgID, order.ID, models.StatusCancelled); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := f.appleQty(); got != 10 {
			t.Fatalf("expected stock restored to 10, got %d", got)
		}
	})

	t.Run("status change event carries the edge and stock flag", func(t *testing.T) {
		f := newOrderFixture(t)

		order, err := f.svc.Create(ctx, f.orgID, f.warehouseID,
			[]models.LineItemInput{{ProductID: f.apple, Quantity: 1}}, true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := f.svc.Transition(ctx, f.orgID, order.ID, models.StatusShipped); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		evts := f.store.Events()
		last := evts[len(evts)-1]
		if last.Topic != events.TopicOrderStatusChanged {
			t.Fatalf("expected status change event, got %s", last.Topic)
		}
		evt, ok := last.Event.(events.OrderStatusChangedEvent)
		if !ok {
			t.Fatalf("unexpected event type %T", last.Event)
		}
		if evt.From != "confirmed" || evt.To != "shipped" || evt.StockMoved {
			t.Fatalf("unexpected event payload: %+v", evt)
		}
	})

	t.Run("unknown order", func(t *testing.T) {
		f := newOrderFixture(t)
		_, err := f.svc.Transition(ctx, f.orgID, uuid.New(), models.StatusCancelled)
		if !errors.Is(err, orderdomain.ErrOrderNotFound) {
			t.Fatalf("expected ErrOrderNotFound, got %v", err)
		}
	})
}

func TestOrderService_EditItems(t *testing.T) {
	ctx := context.Background()

	t.Run("growing a line deducts the difference", func(t *testing.T) {
		f := newOrderFixture(t)

		order, err := f.svc.Create(ctx, f.orgID, f.warehouseID,
			[]models.LineItemInput{{ProductID: f.apple, Quantity: 1}}, true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := f.appleQty(); got != 9 {
			t.Fatalf("expected stock 9, got %d", got)
		}

		edited, err := f.svc.EditItems(ctx, f.orgID, order.ID,
			[]models.LineItemInput{{ProductID: f.apple, Quantity: 3}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := f.appleQty(); got != 7 {
			t.Fatalf("expected stock 7, got %d", got)
		}
		if edited.TotalCents != 3*150 {
			t.Fatalf("expected total %d, got %d", 3*150, edited.TotalCents)
		}
	})

	t.Run("failed edit leaves order and ledger untouched", func(t *testing.T) {
		f := newOrderFixture(t)

		order, err := f.svc.Create(ctx, f.orgID, f.warehouseID,
			[]models.LineItemInput{{ProductID: f.apple, Quantity: 3}}, true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := f.appleQty(); got != 7 {
			t.Fatalf("expected stock 7, got %d", got)
		}

		_, err = f.svc.EditItems(ctx, f.orgID, order.ID, []models.LineItemInput{
			{ProductID: f.apple, Quantity: 3},
			{ProductID: f.banana, Quantity: 100},
		})
		var insufficient *invdomain.InsufficientStockError
		if !errors.As(err, &insufficient) {
			t.Fatalf("expected InsufficientStockError, got %v", err)
		}
		if insufficient.ProductID != f.banana || insufficient.Available != 5 || insufficient.Requested != 100 {
			t.Fatalf("unexpected error detail: %+v", insufficient)
		}

		if got := f.appleQty(); got != 7 {
			t.Fatalf("expected apple stock unchanged at 7, got %d", got)
		}
		if got := f.bananaQty(); got != 5 {
			t.Fatalf("expected banana stock unchanged at 5, got %d", got)
		}
		current, err := f.svc.GetByID(ctx, f.orgID, order.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(current.Items) != 1 || current.Items[0].ProductID != f.apple || current.Items[0].Quantity != 3 {
			t.Fatalf("order items changed after failed edit: %+v", current.Items)
		}
	})

	t.Run("edit back to the original set is a round trip", func(t *testing.T) {
		f := newOrderFixture(t)

		order, err := f.svc.Create(ctx, f.orgID, f.warehouseID,
			[]models.LineItemInput{{ProductID: f.apple, Quantity: 2}}, true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, err := f.svc.EditItems(ctx, f.orgID, order.ID,
			[]models.LineItemInput{{ProductID: f.apple, Quantity: 5}}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := f.svc.EditItems(ctx, f.orgID, order.ID,
			[]models.LineItemInput{{ProductID: f.apple, Quantity: 2}}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := f.appleQty(); got != 8 {
			t.Fatalf("expected stock back at 8, got %d", got)
		}
	})

	t.Run("shrink frees capacity for a grow in the same edit", func(t *testing.T) {
		f := newOrderFixture(t)

		order, err := f.svc.Create(ctx, f.orgID, f.warehouseID, []models.LineItemInput{
			{ProductID: f.apple, Quantity: 10},
			{ProductID: f.banana, Quantity: 1},
		}, true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := f.appleQty(); got != 0 {
			t.Fatalf("expected apple stock 0, got %d", got)
		}

		// Restores run before deducts inside the edit transaction.
		_, err = f.svc.EditItems(ctx, f.orgID, order.ID, []models.LineItemInput{
			{ProductID: f.apple, Quantity: 4},
			{ProductID: f.banana, Quantity: 5},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := f.appleQty(); got != 6 {
			t.Fatalf("expected apple stock 6, got %d", got)
		}
		if got := f.bananaQty(); got != 0 {
			t.Fatalf("expected banana stock 0, got %d", got)
		}
	})

	t.Run("editing a pending order moves no stock", func(t *testing.T) {
		f := newOrderFixture(t)

		order, err := f.svc.Create(ctx, f.orgID, f.warehouseID,
			[]models.LineItemInput{{ProductID: f.apple, Quantity: 2}}, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := f.svc.EditItems(ctx, f.orgID, order.ID,
			[]models.LineItemInput{{ProductID: f.apple, Quantity: 9}}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := f.appleQty(); got != 10 {
			t.Fatalf("expected stock untouched at 10, got %d", got)
		}
	})

	t.Run("editing a shipped order is rejected", func(t *testing.T) {
		f := newOrderFixture(t)

		order, err := f.svc.Create(ctx, f.orgID, f.warehouseID,
			[]models.LineItemInput{{ProductID: f.apple, Quantity: 1}}, true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := f.svc.Transition(ctx, f.orgID, order.ID, models.StatusShipped); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		_, err = f.svc.EditItems(ctx, f.orgID, order.ID,
			[]models.LineItemInput{{ProductID: f.apple, Quantity: 2}})
		if !errors.Is(err, orderdomain.ErrOrderImmutable) {
			t.Fatalf("expected ErrOrderImmutable, got %v", err)
		}
		if got := f.appleQty(); got != 9 {
			t.Fatalf("expected stock unchanged at 9, got %d", got)
		}
	})

	t.Run("prices are re-derived from the current catalog", func(t *testing.T) {
		f := newOrderFixture(t)

		order, err := f.svc.Create(ctx, f.orgID, f.warehouseID,
			[]models.LineItemInput{{ProductID: f.apple, Quantity: 2}}, true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if order.TotalCents != 2*150 {
			t.Fatalf("expected total %d, got %d", 2*150, order.TotalCents)
		}

		f.store.SeedPrice(f.apple, 200)
		edited, err := f.svc.EditItems(ctx, f.orgID, order.ID,
			[]models.LineItemInput{{ProductID: f.apple, Quantity: 2}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if edited.TotalCents != 2*200 {
			t.Fatalf("expected repriced total %d, got %d", 2*200, edited.TotalCents)
		}
	})
}

func TestOrderService_OrgScoping(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)

	order, err := f.svc.Create(ctx, f.orgID, f.warehouseID,
		[]models.LineItemInput{{ProductID: f.apple, Quantity: 1}}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	otherOrg := uuid.New()
	if _, err := f.svc.GetByID(ctx, otherOrg, order.ID); !errors.Is(err, orderdomain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound for foreign org, got %v", err)
	}
	if _, err := f.svc.Transition(ctx, otherOrg, order.ID, models.StatusCancelled); !errors.Is(err, orderdomain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound for foreign org, got %v", err)
	}
}
