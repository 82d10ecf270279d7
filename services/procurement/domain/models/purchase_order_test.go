package models

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	podomain "github.com/ghuser/stockline/services/procurement/domain"
)

func TestNewPurchaseOrder(t *testing.T) {
	orgID := uuid.New()
	warehouseID := uuid.New()
	supplierID := uuid.New()
	widget := uuid.New()

	validLines := []POLineInput{{ProductID: widget, OrderedQty: 10, UnitCostCents: 500}}

	t.Run("ordered by default", func(t *testing.T) {
		po, err := NewPurchaseOrder(orgID, warehouseID, supplierID, 1, validLines, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if po.Status != POStatusOrdered {
			t.Fatalf("expected ordered, got %s", po.Status)
		}
		if po.Number != 1 {
			t.Fatalf("expected number 1, got %d", po.Number)
		}
		if po.Lines[0].ReceivedQty != 0 {
			t.Fatalf("new line must start unreceived, got %d", po.Lines[0].ReceivedQty)
		}
	})

	t.Run("draft starts in draft", func(t *testing.T) {
		po, err := NewPurchaseOrder(orgID, warehouseID, supplierID, 1, validLines, true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if po.Status != POStatusDraft {
			t.Fatalf("expected draft, got %s", po.Status)
		}
	})

	tests := []struct {
		name        string
		orgID       uuid.UUID
		supplierID  uuid.UUID
		number      int64
		lines       []POLineInput
		wantErr     error
		wantAnyErr  bool
	}{
		{"zero org", uuid.Nil, supplierID, 1, validLines, nil, true},
		{"zero supplier", orgID, uuid.Nil, 1, validLines, nil, true},
		{"non-positive number", orgID, supplierID, 0, validLines, nil, true},
		{"no lines", orgID, supplierID, 1, nil, podomain.ErrEmptyPurchaseOrder, false},
		{"zero quantity line", orgID, supplierID, 1,
			[]POLineInput{{ProductID: widget, OrderedQty: 0}}, podomain.ErrInvalidQuantity, false},
		{"negative unit cost", orgID, supplierID, 1,
			[]POLineInput{{ProductID: widget, OrderedQty: 1, UnitCostCents: -1}}, nil, true},
		{"duplicate product", orgID, supplierID, 1, []POLineInput{
			{ProductID: widget, OrderedQty: 1},
			{ProductID: widget, OrderedQty: 2},
		}, podomain.ErrDuplicateLine, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPurchaseOrder(tt.orgID, warehouseID, tt.supplierID, tt.number, tt.lines, false)
			if tt.wantAnyErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestPurchaseOrder_Place(t *testing.T) {
	widget := uuid.New()
	lines := []POLineInput{{ProductID: widget, OrderedQty: 5, UnitCostCents: 100}}

	t.Run("draft to ordered", func(t *testing.T) {
		po, err := NewPurchaseOrder(uuid.New(), uuid.New(), uuid.New(), 1, lines, true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := po.Place(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if po.Status != POStatusOrdered {
			t.Fatalf("expected ordered, got %s", po.Status)
		}
	})

	t.Run("placing twice is rejected", func(t *testing.T) {
		po, err := NewPurchaseOrder(uuid.New(), uuid.New(), uuid.New(), 1, lines, true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := po.Place(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := po.Place(); !errors.Is(err, podomain.ErrPurchaseOrderImmutable) {
			t.Fatalf("expected ErrPurchaseOrderImmutable, got %v", err)
		}
	})
}

func TestPurchaseOrder_Receive(t *testing.T) {
	widget := uuid.New()
	gadget := uuid.New()

	newOrdered := func(t *testing.T) *PurchaseOrder {
		t.Helper()
		po, err := NewPurchaseOrder(uuid.New(), uuid.New(), uuid.New(), 1, []POLineInput{
			{ProductID: widget, OrderedQty: 10, UnitCostCents: 100},
			{ProductID: gadget, OrderedQty: 4, UnitCostCents: 250},
		}, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return po
	}

	t.Run("partial receipt moves to partially_received", func(t *testing.T) {
		po := newOrdered(t)
		increments, err := po.Receive([]ReceiptInput{{ProductID: widget, ReceivedNow: 4}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if po.Status != POStatusPartiallyReceived {
			t.Fatalf("expected partially_received, got %s", po.Status)
		}
		if len(increments) != 1 || increments[0].ProductID != widget || increments[0].Quantity != 4 {
			t.Fatalf("unexpected increments: %+v", increments)
		}
		if po.Lines[0].Remaining() != 6 {
			t.Fatalf("expected 6 remaining, got %d", po.Lines[0].Remaining())
		}
	})

	t.Run("completing all lines moves to received", func(t *testing.T) {
		po := newOrdered(t)
		if _, err := po.Receive([]ReceiptInput{{ProductID: widget, ReceivedNow: 4}}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_, err := po.Receive([]ReceiptInput{
			{ProductID: widget, ReceivedNow: 6},
			{ProductID: gadget, ReceivedNow: 4},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if po.Status != POStatusReceived {
			t.Fatalf("expected received, got %s", po.Status)
		}
	})

	t.Run("receipt against a received PO is rejected", func(t *testing.T) {
		po := newOrdered(t)
		_, err := po.Receive([]ReceiptInput{
			{ProductID: widget, ReceivedNow: 10},
			{ProductID: gadget, ReceivedNow: 4},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_, err = po.Receive([]ReceiptInput{{ProductID: widget, ReceivedNow: 1}})
		if !errors.Is(err, podomain.ErrPurchaseOrderImmutable) {
			t.Fatalf("expected ErrPurchaseOrderImmutable, got %v", err)
		}
	})

	t.Run("receipt against a draft is rejected", func(t *testing.T) {
		po, err := NewPurchaseOrder(uuid.New(), uuid.New(), uuid.New(), 1,
			[]POLineInput{{ProductID: widget, OrderedQty: 10}}, true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_, err = po.Receive([]ReceiptInput{{ProductID: widget, ReceivedNow: 1}})
		if !errors.Is(err, podomain.ErrPurchaseOrderImmutable) {
			t.Fatalf("expected ErrPurchaseOrderImmutable, got %v", err)
		}
	})

	t.Run("excess over remaining rejects the whole delivery", func(t *testing.T) {
		po := newOrdered(t)
		if _, err := po.Receive([]ReceiptInput{{ProductID: widget, ReceivedNow: 8}}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		_, err := po.Receive([]ReceiptInput{
			{ProductID: gadget, ReceivedNow: 2},
			{ProductID: widget, ReceivedNow: 3},
		})
		var excess *podomain.ExcessReceiptError
		if !errors.As(err, &excess) {
			t.Fatalf("expected ExcessReceiptError, got %v", err)
		}
		if excess.ProductID != widget || excess.Remaining != 2 || excess.Received != 3 {
			t.Fatalf("unexpected error detail: %+v", excess)
		}
		// The valid gadget line from the same delivery must not be applied.
		if po.Lines[1].ReceivedQty != 0 {
			t.Fatalf("expected gadget untouched, got %d", po.Lines[1].ReceivedQty)
		}
		if po.Status != POStatusPartiallyReceived {
			t.Fatalf("status changed on rejected delivery: %s", po.Status)
		}
	})

	t.Run("zero total delivery is rejected", func(t *testing.T) {
		po := newOrdered(t)
		_, err := po.Receive([]ReceiptInput{
			{ProductID: widget, ReceivedNow: 0},
			{ProductID: gadget, ReceivedNow: 0},
		})
		if !errors.Is(err, podomain.ErrNothingReceived) {
			t.Fatalf("expected ErrNothingReceived, got %v", err)
		}
	})

	t.Run("negative quantity is rejected", func(t *testing.T) {
		po := newOrdered(t)
		_, err := po.Receive([]ReceiptInput{{ProductID: widget, ReceivedNow: -1}})
		if !errors.Is(err, podomain.ErrInvalidQuantity) {
			t.Fatalf("expected ErrInvalidQuantity, got %v", err)
		}
	})

	t.Run("unknown line is rejected", func(t *testing.T) {
		po := newOrdered(t)
		_, err := po.Receive([]ReceiptInput{{ProductID: uuid.New(), ReceivedNow: 1}})
		if !errors.Is(err, podomain.ErrUnknownLine) {
			t.Fatalf("expected ErrUnknownLine, got %v", err)
		}
	})

	t.Run("duplicate receipt lines are rejected", func(t *testing.T) {
		po := newOrdered(t)
		_, err := po.Receive([]ReceiptInput{
			{ProductID: widget, ReceivedNow: 1},
			{ProductID: widget, ReceivedNow: 2},
		})
		if !errors.Is(err, podomain.ErrDuplicateLine) {
			t.Fatalf("expected ErrDuplicateLine, got %v", err)
		}
	})

	t.Run("zero lines in a non-zero delivery produce no increments", func(t *testing.T) {
		po := newOrdered(t)
		increments, err := po.Receive([]ReceiptInput{
			{ProductID: widget, ReceivedNow: 0},
			{ProductID: gadget, ReceivedNow: 2},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(increments) != 1 || increments[0].ProductID != gadget {
			t.Fatalf("unexpected increments: %+v", increments)
		}
	})
}

func TestPurchaseOrder_Cancel(t *testing.T) {
	widget := uuid.New()

	t.Run("cancel keeps received quantities", func(t *testing.T) {
		po, err := NewPurchaseOrder(uuid.New(), uuid.New(), uuid.New(), 1,
			[]POLineInput{{ProductID: widget, OrderedQty: 10}}, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := po.Receive([]ReceiptInput{{ProductID: widget, ReceivedNow: 3}}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := po.Cancel(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if po.Status != POStatusCancelled {
			t.Fatalf("expected cancelled, got %s", po.Status)
		}
		if po.Lines[0].ReceivedQty != 3 {
			t.Fatalf("received quantity changed on cancel: %d", po.Lines[0].ReceivedQty)
		}
	})

	t.Run("terminal PO cannot be cancelled", func(t *testing.T) {
		po, err := NewPurchaseOrder(uuid.New(), uuid.New(), uuid.New(), 1,
			[]POLineInput{{ProductID: widget, OrderedQty: 2}}, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := po.Receive([]ReceiptInput{{ProductID: widget, ReceivedNow: 2}}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := po.Cancel(); !errors.Is(err, podomain.ErrPurchaseOrderImmutable) {
			t.Fatalf("expected ErrPurchaseOrderImmutable, got %v", err)
		}
	})
}

func TestPOStatus_Terminal(t *testing.T) {
	terminal := map[POStatus]bool{
		POStatusDraft:             false,
		POStatusOrdered:           false,
		POStatusPartiallyReceived: false,
		POStatusReceived:          true,
		POStatusCancelled:         true,
	}
	for status, want := range terminal {
		if got := status.Terminal(); got != want {
			t.Fatalf("Terminal(%s) = %v, want %v", status, got, want)
		}
	}
}
