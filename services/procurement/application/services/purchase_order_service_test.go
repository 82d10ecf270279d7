package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	podomain "github.com/ghuser/stockline/services/procurement/domain"
	"github.com/ghuser/stockline/services/procurement/domain/events"
	"github.com/ghuser/stockline/services/procurement/domain/models"
	"github.com/ghuser/stockline/services/procurement/infrastructure/persistence/memory"
)

type poFixture struct {
	store       *memory.Store
	svc         *PurchaseOrderService
	orgID       uuid.UUID
	warehouseID uuid.UUID
	supplierID  uuid.UUID
	widget      uuid.UUID
	gadget      uuid.UUID
}

func newPOFixture(t *testing.T) *poFixture {
	t.Helper()
	store := memory.NewStore()
	return &poFixture{
		store:       store,
		svc:         NewPurchaseOrderService(memory.NewPurchaseOrderRepository(store), memory.NewUnitOfWork(store)),
		orgID:       uuid.New(),
		warehouseID: uuid.New(),
		supplierID:  uuid.New(),
		widget:      uuid.New(),
		gadget:      uuid.New(),
	}
}

func (f *poFixture) widgetQty() int64 {
	return f.store.StockQty(f.orgID, f.warehouseID, f.widget)
}

func TestPurchaseOrderService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("numbers are drawn from the org counter in sequence", func(t *testing.T) {
		f := newPOFixture(t)
		lines := []models.POLineInput{{ProductID: f.widget, OrderedQty: 5, UnitCostCents: 100}}

		for want := int64(1); want <= 3; want++ {
			po, err := f.svc.Create(ctx, f.orgID, f.warehouseID, f.supplierID, lines, false)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if po.Number != want {
				t.Fatalf("expected number %d, got %d", want, po.Number)
			}
		}

		// A different org starts its own sequence.
		po, err := f.svc.Create(ctx, uuid.New(), f.warehouseID, f.supplierID, lines, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if po.Number != 1 {
			t.Fatalf("expected number 1 for new org, got %d", po.Number)
		}
	})

	t.Run("invalid lines roll back the counter draw", func(t *testing.T) {
		f := newPOFixture(t)
		lines := []models.POLineInput{{ProductID: f.widget, OrderedQty: 5}}

		_, err := f.svc.Create(ctx, f.orgID, f.warehouseID, f.supplierID,
			[]models.POLineInput{{ProductID: f.widget, OrderedQty: 0}}, false)
		if !errors.Is(err, podomain.ErrInvalidQuantity) {
			t.Fatalf("expected ErrInvalidQuantity, got %v", err)
		}

		po, err := f.svc.Create(ctx, f.orgID, f.warehouseID, f.supplierID, lines, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if po.Number != 1 {
			t.Fatalf("expected number 1 after rolled-back draw, got %d", po.Number)
		}
	})
}

func TestPurchaseOrderService_Receive(t *testing.T) {
	ctx := context.Background()

	t.Run("receipt increments stock and updates the PO atomically", func(t *testing.T) {
		f := newPOFixture(t)
		f.store.SeedStock(f.orgID, f.warehouseID, f.widget, 2)

		po, err := f.svc.Create(ctx, f.orgID, f.warehouseID, f.supplierID,
			[]models.POLineInput{{ProductID: f.widget, OrderedQty: 10, UnitCostCents: 100}}, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		received, err := f.svc.Receive(ctx, f.orgID, po.ID,
			[]models.ReceiptInput{{ProductID: f.widget, ReceivedNow: 4}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if received.Status != models.POStatusPartiallyReceived {
			t.Fatalf("expected partially_received, got %s", received.Status)
		}
		if got := f.widgetQty(); got != 6 {
			t.Fatalf("expected stock 6, got %d", got)
		}

		received, err = f.svc.Receive(ctx, f.orgID, po.ID,
			[]models.ReceiptInput{{ProductID: f.widget, ReceivedNow: 6}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if received.Status != models.POStatusReceived {
			t.Fatalf("expected received, got %s", received.Status)
		}
		if got := f.widgetQty(); got != 12 {
			t.Fatalf("expected stock 12, got %d", got)
		}
	})

	t.Run("rejected delivery changes neither PO nor ledger", func(t *testing.T) {
		f := newPOFixture(t)

		po, err := f.svc.Create(ctx, f.orgID, f.warehouseID, f.supplierID, []models.POLineInput{
			{ProductID: f.widget, OrderedQty: 10},
			{ProductID: f.gadget, OrderedQty: 4},
		}, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		_, err = f.svc.Receive(ctx, f.orgID, po.ID, []models.ReceiptInput{
			{ProductID: f.widget, ReceivedNow: 3},
			{ProductID: f.gadget, ReceivedNow: 5},
		})
		var excess *podomain.ExcessReceiptError
		if !errors.As(err, &excess) {
			t.Fatalf("expected ExcessReceiptError, got %v", err)
		}
		if excess.ProductID != f.gadget || excess.Remaining != 4 || excess.Received != 5 {
			t.Fatalf("unexpected error detail: %+v", excess)
		}

		if got := f.widgetQty(); got != 0 {
			t.Fatalf("expected stock unchanged at 0, got %d", got)
		}
		current, err := f.svc.GetByID(ctx, f.orgID, po.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if current.Status != models.POStatusOrdered {
			t.Fatalf("expected PO still ordered, got %s", current.Status)
		}
		if current.Lines[0].ReceivedQty != 0 {
			t.Fatalf("line changed after rejected delivery: %d", current.Lines[0].ReceivedQty)
		}
		if evts := f.store.Events(); len(evts) != 0 {
			t.Fatalf("expected no events after rejected delivery, got %d", len(evts))
		}
	})

	t.Run("receipt event carries per-line progress", func(t *testing.T) {
		f := newPOFixture(t)

		po, err := f.svc.Create(ctx, f.orgID, f.warehouseID, f.supplierID,
			[]models.POLineInput{{ProductID: f.widget, OrderedQty: 10}}, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := f.svc.Receive(ctx, f.orgID, po.ID,
			[]models.ReceiptInput{{ProductID: f.widget, ReceivedNow: 4}}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		evts := f.store.Events()
		if len(evts) != 1 || evts[0].Topic != events.TopicPurchaseOrderReceived {
			t.Fatalf("expected one receipt event, got %v", evts)
		}
		evt, ok := evts[0].Event.(events.PurchaseOrderReceivedEvent)
		if !ok {
			t.Fatalf("unexpected event type %T", evts[0].Event)
		}
		if evt.Status != "partially_received" {
			t.Fatalf("unexpected event status %s", evt.Status)
		}
		if len(evt.Lines) != 1 {
			t.Fatalf("expected one line, got %d", len(evt.Lines))
		}
		line := evt.Lines[0]
		if line.ProductID != f.widget || line.ReceivedNow != 4 || line.ReceivedQty != 4 || line.OrderedQty != 10 {
			t.Fatalf("unexpected line payload: %+v", line)
		}
	})

	t.Run("unknown purchase order", func(t *testing.T) {
		f := newPOFixture(t)
		_, err := f.svc.Receive(ctx, f.orgID, uuid.New(),
			[]models.ReceiptInput{{ProductID: f.widget, ReceivedNow: 1}})
		if !errors.Is(err, podomain.ErrPurchaseOrderNotFound) {
			t.Fatalf("expected ErrPurchaseOrderNotFound, got %v", err)
		}
	})
}

func TestPurchaseOrderService_PlaceAndCancel(t *testing.T) {
	ctx := context.Background()

	t.Run("draft must be placed before receiving", func(t *testing.T) {
		f := newPOFixture(t)

		po, err := f.svc.Create(ctx, f.orgID, f.warehouseID, f.supplierID,
			[]models.POLineInput{{ProductID: f.widget, OrderedQty: 5}}, true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		_, err = f.svc.Receive(ctx, f.orgID, po.ID,
			[]models.ReceiptInput{{ProductID: f.widget, ReceivedNow: 1}})
		if !errors.Is(err, podomain.ErrPurchaseOrderImmutable) {
			t.Fatalf("expected ErrPurchaseOrderImmutable, got %v", err)
		}

		placed, err := f.svc.Place(ctx, f.orgID, po.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if placed.Status != models.POStatusOrdered {
			t.Fatalf("expected ordered, got %s", placed.Status)
		}

		if _, err := f.svc.Receive(ctx, f.orgID, po.ID,
			[]models.ReceiptInput{{ProductID: f.widget, ReceivedNow: 1}}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("cancel keeps received stock and publishes an event", func(t *testing.T) {
		f := newPOFixture(t)

		po, err := f.svc.Create(ctx, f.orgID, f.warehouseID, f.supplierID,
			[]models.POLineInput{{ProductID: f.widget, OrderedQty: 10}}, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := f.svc.Receive(ctx, f.orgID, po.ID,
			[]models.ReceiptInput{{ProductID: f.widget, ReceivedNow: 3}}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		cancelled, err := f.svc.Cancel(ctx, f.orgID, po.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cancelled.Status != models.POStatusCancelled {
			t.Fatalf("expected cancelled, got %s", cancelled.Status)
		}
		if got := f.widgetQty(); got != 3 {
			t.Fatalf("expected received stock kept at 3, got %d", got)
		}

		evts := f.store.Events()
		if len(evts) != 2 || evts[1].Topic != events.TopicPurchaseOrderCancelled {
			t.Fatalf("expected cancel event, got %v", evts)
		}

		if _, err := f.svc.Cancel(ctx, f.orgID, po.ID); !errors.Is(err, podomain.ErrPurchaseOrderImmutable) {
			t.Fatalf("expected ErrPurchaseOrderImmutable on double cancel, got %v", err)
		}
	})
}
