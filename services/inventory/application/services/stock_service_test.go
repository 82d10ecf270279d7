package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	invdomain "github.com/ghuser/stockline/services/inventory/domain"
	"github.com/ghuser/stockline/services/inventory/domain/events"
	"github.com/ghuser/stockline/services/inventory/infrastructure/persistence/memory"
)

type stockFixture struct {
	store       *memory.Store
	svc         *StockService
	orgID       uuid.UUID
	warehouseID uuid.UUID
	productID   uuid.UUID
}

func newStockFixture(t *testing.T, qty int64) *stockFixture {
	t.Helper()
	store := memory.NewStore()
	f := &stockFixture{
		store:       store,
		svc:         NewStockService(memory.NewStockLedger(store), memory.NewUnitOfWork(store), nil),
		orgID:       uuid.New(),
		warehouseID: uuid.New(),
		productID:   uuid.New(),
	}
	store.SeedStock(f.orgID, f.warehouseID, f.productID, qty)
	return f
}

func TestStockService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the current level", func(t *testing.T) {
		f := newStockFixture(t, 12)
		level, err := f.svc.Get(ctx, f.orgID, f.warehouseID, f.productID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if level.Quantity != 12 {
			t.Fatalf("expected 12, got %d", level.Quantity)
		}
	})

	t.Run("unknown level", func(t *testing.T) {
		f := newStockFixture(t, 12)
		_, err := f.svc.Get(ctx, f.orgID, f.warehouseID, uuid.New())
		if !errors.Is(err, invdomain.ErrStockNotFound) {
			t.Fatalf("expected ErrStockNotFound, got %v", err)
		}
	})
}

func TestStockService_Adjust(t *testing.T) {
	ctx := context.Background()

	t.Run("positive delta adds stock", func(t *testing.T) {
		f := newStockFixture(t, 10)
		level, err := f.svc.Adjust(ctx, f.orgID, f.warehouseID, f.productID, 5, "found in cycle count")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if level.Quantity != 15 {
			t.Fatalf("expected 15, got %d", level.Quantity)
		}
	})

	t.Run("negative delta removes stock", func(t *testing.T) {
		f := newStockFixture(t, 10)
		level, err := f.svc.Adjust(ctx, f.orgID, f.warehouseID, f.productID, -4, "damaged")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if level.Quantity != 6 {
			t.Fatalf("expected 6, got %d", level.Quantity)
		}
	})

	t.Run("zero delta is rejected", func(t *testing.T) {
		f := newStockFixture(t, 10)
		_, err := f.svc.Adjust(ctx, f.orgID, f.warehouseID, f.productID, 0, "noop")
		if !errors.Is(err, invdomain.ErrZeroAdjustment) {
			t.Fatalf("expected ErrZeroAdjustment, got %v", err)
		}
		if evts := f.store.Events(); len(evts) != 0 {
			t.Fatalf("expected no events, got %d", len(evts))
		}
	})

	t.Run("shrinkage below zero fails with no change", func(t *testing.T) {
		f := newStockFixture(t, 3)
		_, err := f.svc.Adjust(ctx, f.orgID, f.warehouseID, f.productID, -4, "shrinkage")
		var insufficient *invdomain.InsufficientStockError
		if !errors.As(err, &insufficient) {
			t.Fatalf("expected InsufficientStockError, got %v", err)
		}
		if insufficient.Available != 3 || insufficient.Requested != 4 {
			t.Fatalf("unexpected error detail: %+v", insufficient)
		}

		level, err := f.svc.Get(ctx, f.orgID, f.warehouseID, f.productID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if level.Quantity != 3 {
			t.Fatalf("expected level unchanged at 3, got %d", level.Quantity)
		}
		if evts := f.store.Events(); len(evts) != 0 {
			t.Fatalf("expected no events after failed adjustment, got %d", len(evts))
		}
	})

	t.Run("adjustment event carries the resulting quantity", func(t *testing.T) {
		f := newStockFixture(t, 10)
		if _, err := f.svc.Adjust(ctx, f.orgID, f.warehouseID, f.productID, -2, "damaged in transit"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		evts := f.store.Events()
		if len(evts) != 1 || evts[0].Topic != events.TopicStockAdjusted {
			t.Fatalf("expected one stock.adjusted event, got %v", evts)
		}
		evt, ok := evts[0].Event.(events.StockAdjustedEvent)
		if !ok {
			t.Fatalf("unexpected event type %T", evts[0].Event)
		}
		if evt.Delta != -2 || evt.Quantity != 8 || evt.Reason != "damaged in transit" {
			t.Fatalf("unexpected event payload: %+v", evt)
		}
		if evt.ProductID != f.productID || evt.OrgID != f.orgID {
			t.Fatalf("event scoped wrong: %+v", evt)
		}
	})
}
