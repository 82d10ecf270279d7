package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ghuser/stockline/pkg/database"
)

// CounterRepository implements repositories.CounterRepository with one row
// per (org, counter name). The upsert increments and returns in a single
// statement, so two concurrent PO creations can never draw the same number,
// and a rolled-back creation releases its number with the transaction.
type CounterRepository struct {
	q database.Queryer
}

// NewCounterRepository returns a CounterRepository bound to the given queryer.
func NewCounterRepository(q database.Queryer) *CounterRepository {
	return &CounterRepository{q: q}
}

// Next increments the named counter for the org and returns the new value.
func (r *CounterRepository) Next(ctx context.Context, orgID uuid.UUID, name string) (int64, error) {
	var value int64
	err := r.q.QueryRowContext(ctx, `
		INSERT INTO counters (org_id, name, value)
		VALUES ($1, $2, 1)
		ON CONFLICT (org_id, name)
		DO UPDATE SET value = counters.value + 1
		RETURNING value`,
		orgID, name,
	).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("next counter %q: %w", name, err)
	}
	return value, nil
}
