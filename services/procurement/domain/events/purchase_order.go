package events

import (
	"time"

	"github.com/google/uuid"
)

// Topics published by the procurement context.
const (
	TopicPurchaseOrderReceived  = "purchase_order.received"
	TopicPurchaseOrderCancelled = "purchase_order.cancelled"
)

// ReceivedLine is the wire shape of one received line inside an event payload.
type ReceivedLine struct {
	ProductID   uuid.UUID `json:"product_id"`
	ReceivedNow int64     `json:"received_now"`
	ReceivedQty int64     `json:"received_qty"`
	OrderedQty  int64     `json:"ordered_qty"`
}

// PurchaseOrderReceivedEvent is published for every committed delivery.
// Consumers refresh stock read models for the listed products.
type PurchaseOrderReceivedEvent struct {
	EventID         uuid.UUID      `json:"event_id"`
	Version         int            `json:"version"`
	PurchaseOrderID uuid.UUID      `json:"purchase_order_id"`
	OrgID           uuid.UUID      `json:"org_id"`
	WarehouseID     uuid.UUID      `json:"warehouse_id"`
	Status          string         `json:"status"`
	Lines           []ReceivedLine `json:"lines"`
	OccurredAt      time.Time      `json:"occurred_at"`
}

// PurchaseOrderCancelledEvent is published when a PO is explicitly cancelled.
type PurchaseOrderCancelledEvent struct {
	EventID         uuid.UUID `json:"event_id"`
	Version         int       `json:"version"`
	PurchaseOrderID uuid.UUID `json:"purchase_order_id"`
	OrgID           uuid.UUID `json:"org_id"`
	WarehouseID     uuid.UUID `json:"warehouse_id"`
	OccurredAt      time.Time `json:"occurred_at"`
}
