// Package services holds stateless ordering domain services.
package services

import (
	"sort"

	"github.com/google/uuid"
)

// StockDelta is one scheduled ledger movement for a single product.
type StockDelta struct {
	ProductID uuid.UUID
	Quantity  int64 // always positive; direction is carried by the plan slice
}

// ReconcilePlan is the minimal set of ledger movements needed to move an
// order from one committed line-item set to another. Restores are applied
// before deducts so that shrinking one line can free capacity consumed by
// growing another within the same edit. Both slices are sorted by product ID
// so concurrent edits touch rows in a deterministic order.
type ReconcilePlan struct {
	Restores []StockDelta
	Deducts  []StockDelta
}

// Empty reports whether the plan moves no stock at all.
func (p ReconcilePlan) Empty() bool {
	return len(p.Restores) == 0 && len(p.Deducts) == 0
}

// ReconcileLineItems computes the plan to move from the previous
// product-to-quantity map to the proposed one. Products whose quantity shrank
// or disappeared are restored by the difference; products whose quantity grew
// or are new are deducted by the difference. Unchanged lines produce no
// movement.
func ReconcileLineItems(prev, next map[uuid.UUID]int64) ReconcilePlan {
	var plan ReconcilePlan

	for id, prevQty := range prev {
		if diff := prevQty - next[id]; diff > 0 {
			plan.Restores = append(plan.Restores, StockDelta{ProductID: id, Quantity: diff})
		}
	}
	for id, nextQty := range next {
		if diff := nextQty - prev[id]; diff > 0 {
			plan.Deducts = append(plan.Deducts, StockDelta{ProductID: id, Quantity: diff})
		}
	}

	sortDeltas(plan.Restores)
	sortDeltas(plan.Deducts)
	return plan
}

func sortDeltas(deltas []StockDelta) {
	sort.Slice(deltas, func(i, j int) bool {
		return deltas[i].ProductID.String() < deltas[j].ProductID.String()
	})
}
