package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	podomain "github.com/ghuser/stockline/services/procurement/domain"
)

// POStatus is one of the five purchase order lifecycle states. Apart from
// cancelled, which is set only by an explicit cancel, the status is a pure
// function of the lines' received and ordered totals.
type POStatus string

const (
	POStatusDraft             POStatus = "draft"
	POStatusOrdered           POStatus = "ordered"
	POStatusPartiallyReceived POStatus = "partially_received"
	POStatusReceived          POStatus = "received"
	POStatusCancelled         POStatus = "cancelled"
)

// Terminal reports whether the PO accepts no further mutation.
func (s POStatus) Terminal() bool {
	return s == POStatusReceived || s == POStatusCancelled
}

// POLine is one purchase order line. ReceivedQty never exceeds OrderedQty.
type POLine struct {
	ProductID     uuid.UUID
	OrderedQty    int64
	ReceivedQty   int64
	UnitCostCents int64
}

// Remaining returns the quantity still expected from the supplier.
func (l POLine) Remaining() int64 {
	return l.OrderedQty - l.ReceivedQty
}

// POLineInput is an unreceived line as submitted at creation.
type POLineInput struct {
	ProductID     uuid.UUID
	OrderedQty    int64
	UnitCostCents int64
}

// ReceiptInput is one line of a receive call: how many units of a product
// arrived in this delivery.
type ReceiptInput struct {
	ProductID   uuid.UUID
	ReceivedNow int64
}

// StockIncrement is one ledger increment a committed receipt produces.
type StockIncrement struct {
	ProductID uuid.UUID
	Quantity  int64
}

// PurchaseOrder is the procurement aggregate. Number is a per-org sequence
// assigned from the counters table inside the creating transaction.
type PurchaseOrder struct {
	ID          uuid.UUID
	OrgID       uuid.UUID
	WarehouseID uuid.UUID
	SupplierID  uuid.UUID
	Number      int64
	Status      POStatus
	Lines       []POLine
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewPurchaseOrder constructs a PO with all derived fields computed up front.
// draft POs must be placed before they can receive stock; otherwise the PO
// starts in ordered status.
func NewPurchaseOrder(orgID, warehouseID, supplierID uuid.UUID, number int64, inputs []POLineInput, draft bool) (*PurchaseOrder, error) {
	if orgID == uuid.Nil {
		return nil, fmt.Errorf("org_id must be set")
	}
	if warehouseID == uuid.Nil {
		return nil, fmt.Errorf("warehouse_id must be set")
	}
	if supplierID == uuid.Nil {
		return nil, fmt.Errorf("supplier_id must be set")
	}
	if number <= 0 {
		return nil, fmt.Errorf("purchase order number must be positive")
	}
	if len(inputs) == 0 {
		return nil, podomain.ErrEmptyPurchaseOrder
	}

	seen := make(map[uuid.UUID]bool, len(inputs))
	lines := make([]POLine, 0, len(inputs))
	for _, in := range inputs {
		if in.OrderedQty < 1 {
			return nil, fmt.Errorf("product %s: %w", in.ProductID, podomain.ErrInvalidQuantity)
		}
		if in.UnitCostCents < 0 {
			return nil, fmt.Errorf("product %s: unit cost must be non-negative", in.ProductID)
		}
		if seen[in.ProductID] {
			return nil, fmt.Errorf("product %s: %w", in.ProductID, podomain.ErrDuplicateLine)
		}
		seen[in.ProductID] = true
		lines = append(lines, POLine{
			ProductID:     in.ProductID,
			OrderedQty:    in.OrderedQty,
			UnitCostCents: in.UnitCostCents,
		})
	}

	status := POStatusOrdered
	if draft {
		status = POStatusDraft
	}
	now := time.Now().UTC()
	return &PurchaseOrder{
		ID:          uuid.New(),
		OrgID:       orgID,
		WarehouseID: warehouseID,
		SupplierID:  supplierID,
		Number:      number,
		Status:      status,
		Lines:       lines,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Place moves a draft PO to ordered, opening it for receipts.
func (po *PurchaseOrder) Place() error {
	if po.Status != POStatusDraft {
		return podomain.ErrPurchaseOrderImmutable
	}
	po.Status = POStatusOrdered
	po.UpdatedAt = time.Now().UTC()
	return nil
}

// Cancel terminates the PO. Already received stock stays in the warehouse;
// only the outstanding remainder is cancelled. Terminal POs cannot be
// cancelled again.
func (po *PurchaseOrder) Cancel() error {
	if po.Status.Terminal() {
		return podomain.ErrPurchaseOrderImmutable
	}
	po.Status = POStatusCancelled
	po.UpdatedAt = time.Now().UTC()
	return nil
}

// Receive applies one delivery against the PO's lines and returns the stock
// increments the caller must apply to the ledger in the same transaction.
// The whole call is validated before any line is touched: a receipt for an
// unknown product, a negative quantity, a zero total or any line pushed past
// its ordered quantity rejects the delivery entirely, leaving the PO
// unchanged. Afterwards the status is recomputed from the line totals.
func (po *PurchaseOrder) Receive(receipts []ReceiptInput) ([]StockIncrement, error) {
	if po.Status != POStatusOrdered && po.Status != POStatusPartiallyReceived {
		return nil, podomain.ErrPurchaseOrderImmutable
	}

	lineIdx := make(map[uuid.UUID]int, len(po.Lines))
	for i, l := range po.Lines {
		lineIdx[l.ProductID] = i
	}

	var total int64
	seen := make(map[uuid.UUID]bool, len(receipts))
	for _, rc := range receipts {
		if rc.ReceivedNow < 0 {
			return nil, fmt.Errorf("product %s: %w", rc.ProductID, podomain.ErrInvalidQuantity)
		}
		if seen[rc.ProductID] {
			return nil, fmt.Errorf("product %s: %w", rc.ProductID, podomain.ErrDuplicateLine)
		}
		seen[rc.ProductID] = true

		i, ok := lineIdx[rc.ProductID]
		if !ok {
			return nil, fmt.Errorf("product %s: %w", rc.ProductID, podomain.ErrUnknownLine)
		}
		if remaining := po.Lines[i].Remaining(); rc.ReceivedNow > remaining {
			return nil, &podomain.ExcessReceiptError{
				ProductID: rc.ProductID,
				Remaining: remaining,
				Received:  rc.ReceivedNow,
			}
		}
		total += rc.ReceivedNow
	}
	if total == 0 {
		return nil, podomain.ErrNothingReceived
	}

	increments := make([]StockIncrement, 0, len(receipts))
	for _, rc := range receipts {
		if rc.ReceivedNow == 0 {
			continue
		}
		i := lineIdx[rc.ProductID]
		po.Lines[i].ReceivedQty += rc.ReceivedNow
		increments = append(increments, StockIncrement{
			ProductID: rc.ProductID,
			Quantity:  rc.ReceivedNow,
		})
	}

	po.Status = po.recomputeStatus()
	po.UpdatedAt = time.Now().UTC()
	return increments, nil
}

// recomputeStatus derives the status from line totals. Cancellation is never
// produced here; it is set only by Cancel.
func (po *PurchaseOrder) recomputeStatus() POStatus {
	var ordered, received int64
	for _, l := range po.Lines {
		ordered += l.OrderedQty
		received += l.ReceivedQty
	}
	switch {
	case received == 0:
		return POStatusOrdered
	case received < ordered:
		return POStatusPartiallyReceived
	default:
		return POStatusReceived
	}
}
