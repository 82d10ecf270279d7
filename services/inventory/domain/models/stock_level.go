package models

import (
	"time"

	"github.com/google/uuid"
)

// StockLevel is the authoritative per-item, per-warehouse quantity counter.
// Quantity is never negative and is mutated only through the StockLedger
// operations, never by direct assignment from caller-supplied values.
type StockLevel struct {
	OrgID       uuid.UUID
	WarehouseID uuid.UUID
	ProductID   uuid.UUID
	Quantity    int64
	UpdatedAt   time.Time
}
