package events

import (
	"time"

	"github.com/google/uuid"
)

// Topics published by the ordering context.
const (
	TopicOrderCreated       = "order.created"
	TopicOrderStatusChanged = "order.status_changed"
	TopicOrderItemsChanged  = "order.items_changed"
)

// EventLineItem is the wire shape of one order line inside an event payload.
type EventLineItem struct {
	ProductID  uuid.UUID `json:"product_id"`
	Quantity   int64     `json:"quantity"`
	PriceCents int64     `json:"price_cents"`
}

// OrderCreatedEvent is published when an order is committed for the first time.
type OrderCreatedEvent struct {
	EventID     uuid.UUID       `json:"event_id"`
	Version     int             `json:"version"`
	OrderID     uuid.UUID       `json:"order_id"`
	OrgID       uuid.UUID       `json:"org_id"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	Status      string          `json:"status"`
	Items       []EventLineItem `json:"items"`
	TotalCents  int64           `json:"total_cents"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

// OrderStatusChangedEvent is published on every committed status transition.
// StockMoved is true when the transition deducted or restored ledger stock,
// which tells cache consumers to refresh the affected levels.
type OrderStatusChangedEvent struct {
	EventID     uuid.UUID       `json:"event_id"`
	Version     int             `json:"version"`
	OrderID     uuid.UUID       `json:"order_id"`
	OrgID       uuid.UUID       `json:"org_id"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	From        string          `json:"from"`
	To          string          `json:"to"`
	StockMoved  bool            `json:"stock_moved"`
	Items       []EventLineItem `json:"items"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

// OrderItemsChangedEvent is published when an order's line-item set is
// replaced. Previous quantities are included so consumers can invalidate
// stock entries for removed products too.
type OrderItemsChangedEvent struct {
	EventID       uuid.UUID           `json:"event_id"`
	Version       int                 `json:"version"`
	OrderID       uuid.UUID           `json:"order_id"`
	OrgID         uuid.UUID           `json:"org_id"`
	WarehouseID   uuid.UUID           `json:"warehouse_id"`
	PreviousItems map[uuid.UUID]int64 `json:"previous_items"`
	Items         []EventLineItem     `json:"items"`
	TotalCents    int64               `json:"total_cents"`
	StockMoved    bool                `json:"stock_moved"`
	OccurredAt    time.Time           `json:"occurred_at"`
}
