package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	minProductNameLength = 1
	maxProductNameLength = 255
	skuLength            = 8
)

// Product is a catalog entry. Its price is the source for the immutable
// price-at-order snapshots taken when order line items are set or re-derived.
type Product struct {
	ID         uuid.UUID
	OrgID      uuid.UUID // tenant scope — always filter by this in queries
	SKU        string
	Name       string
	PriceCents int64
	CreatedAt  time.Time
}

// NewProduct constructs a valid Product with generated ID and current
// timestamp. All derived fields are computed here, before the entity reaches
// any transaction scope: when sku is empty an uppercase SKU is derived from
// the generated ID instead of relying on a persistence hook.
func NewProduct(orgID uuid.UUID, sku, name string, priceCents int64) (*Product, error) {
	if orgID == uuid.Nil {
		return nil, fmt.Errorf("org_id must be set")
	}
	name = strings.TrimSpace(name)
	if len(name) < minProductNameLength || len(name) > maxProductNameLength {
		return nil, fmt.Errorf("product name must be between %d and %d characters",
			minProductNameLength, maxProductNameLength)
	}
	if priceCents < 0 {
		return nil, fmt.Errorf("price must be non-negative")
	}

	id := uuid.New()
	sku = strings.ToUpper(strings.TrimSpace(sku))
	if sku == "" {
		sku = deriveSKU(id)
	}

	return &Product{
		ID:         id,
		OrgID:      orgID,
		SKU:        sku,
		Name:       name,
		PriceCents: priceCents,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// deriveSKU builds a stable SKU from the product ID.
func deriveSKU(id uuid.UUID) string {
	hex := strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))
	return "SKU-" + hex[:skuLength]
}
