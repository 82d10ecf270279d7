package models

// OrderStatus is one of the five order lifecycle states. Transitions are
// monotonic per the table in allowedTransitions; terminal states accept no
// further mutation of any kind.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// allowedTransitions is the single source of truth for the order lifecycle.
var allowedTransitions = map[OrderStatus]map[OrderStatus]bool{
	StatusPending:   {StatusConfirmed: true, StatusCancelled: true},
	StatusConfirmed: {StatusShipped: true, StatusCancelled: true},
	StatusShipped:   {StatusDelivered: true, StatusCancelled: true},
	StatusDelivered: {},
	StatusCancelled: {},
}

// ParseOrderStatus validates a status string from external input.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled:
		return OrderStatus(s), true
	}
	return "", false
}

// CanTransitionTo reports whether the lifecycle permits moving from s to target.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	return allowedTransitions[s][target]
}

// Terminal reports whether s accepts no further transitions.
func (s OrderStatus) Terminal() bool {
	return len(allowedTransitions[s]) == 0
}

// HoldsStock reports whether an order in status s has its line items deducted
// from the ledger. Stock is taken exactly once, on entry into confirmed, and
// stays allocated through shipped until delivery or cancellation.
func (s OrderStatus) HoldsStock() bool {
	return s == StatusConfirmed || s == StatusShipped
}

// StockEffect names the ledger side effect bound to a status transition.
type StockEffect int

const (
	StockEffectNone StockEffect = iota
	StockEffectDeduct
	StockEffectRestore
)

// TransitionStockEffect returns the ledger side effect of moving from one
// status to another. Deduction happens exactly once per order, on entry into
// confirmed; the matching restore happens when a stock-holding order is
// cancelled. Every other edge, including shipped to delivered, leaves the
// ledger alone.
func TransitionStockEffect(from, to OrderStatus) StockEffect {
	switch {
	case from == StatusPending && to == StatusConfirmed:
		return StockEffectDeduct
	case to == StatusCancelled && from.HoldsStock():
		return StockEffectRestore
	default:
		return StockEffectNone
	}
}
