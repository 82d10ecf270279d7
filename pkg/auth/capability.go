package auth

// Role is the coarse access level assigned to a user within an org.
type Role string

const (
	RoleAdmin   Role = "admin"   // full access, including catalog and manual adjustments
	RoleManager Role = "manager" // orders, purchase orders, adjustments
	RoleClerk   Role = "clerk"   // order entry and PO receiving
	RoleViewer  Role = "viewer"  // read-only
)

// ParseRole validates a role string from session data.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleManager, RoleClerk, RoleViewer:
		return Role(s), true
	}
	return "", false
}

// Capability names a single guarded operation on the engine.
type Capability string

const (
	CapRead             Capability = "read"
	CapOrderWrite       Capability = "orders.write"      // create / edit line items
	CapOrderTransition  Capability = "orders.transition" // status changes incl. cancel
	CapPurchaseWrite    Capability = "purchasing.write"  // create / place / cancel POs
	CapPurchaseReceive  Capability = "purchasing.receive"
	CapStockAdjust      Capability = "stock.adjust"
	CapCatalogWrite     Capability = "catalog.write"
)

// capabilities is the single authorization table. Role checks are never
// sprinkled through handlers; each handler evaluates exactly one capability
// against the request principal before invoking the core.
var capabilities = map[Role]map[Capability]bool{
	RoleAdmin: {
		CapRead: true, CapOrderWrite: true, CapOrderTransition: true,
		CapPurchaseWrite: true, CapPurchaseReceive: true,
		CapStockAdjust: true, CapCatalogWrite: true,
	},
	RoleManager: {
		CapRead: true, CapOrderWrite: true, CapOrderTransition: true,
		CapPurchaseWrite: true, CapPurchaseReceive: true,
		CapStockAdjust: true,
	},
	RoleClerk: {
		CapRead: true, CapOrderWrite: true, CapOrderTransition: true,
		CapPurchaseReceive: true,
	},
	RoleViewer: {
		CapRead: true,
	},
}

// Can reports whether the principal's role grants the capability.
func (p Principal) Can(c Capability) bool {
	return capabilities[p.Role][c]
}
