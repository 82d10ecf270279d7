package events

import (
	"time"

	"github.com/google/uuid"
)

// TopicStockAdjusted is the Watermill topic published when a manual stock
// adjustment is committed.
const TopicStockAdjusted = "stock.adjusted"

// StockAdjustedEvent is published after a manual adjustment is applied to a
// stock level. Quantity is the level after the adjustment.
type StockAdjustedEvent struct {
	EventID     uuid.UUID `json:"event_id"` // Unique publish-time identifier for deduplication
	Version     int       `json:"version"`  // Schema version; increment on breaking changes
	OrgID       uuid.UUID `json:"org_id"`
	WarehouseID uuid.UUID `json:"warehouse_id"`
	ProductID   uuid.UUID `json:"product_id"`
	Delta       int64     `json:"delta"`
	Quantity    int64     `json:"quantity"`
	Reason      string    `json:"reason"`
	OccurredAt  time.Time `json:"occurred_at"`
}
