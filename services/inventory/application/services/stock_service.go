package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	pkgcache "github.com/ghuser/stockline/pkg/cache"
	invdomain "github.com/ghuser/stockline/services/inventory/domain"
	"github.com/ghuser/stockline/services/inventory/domain/events"
	"github.com/ghuser/stockline/services/inventory/domain/models"
	"github.com/ghuser/stockline/services/inventory/domain/repositories"
)

// StockService exposes stock reads and manual adjustments. Reads are served
// from the Redis cache when available; the authoritative level always lives
// in Postgres. Adjustments go through the ledger inside one transaction so
// the conditional-write guarantee holds for decrements too.
type StockService struct {
	ledger repositories.StockLedger
	uow    repositories.UnitOfWork
	cache  *pkgcache.StockCache
}

// NewStockService returns a StockService wired with the given ledger,
// unit of work and cache. cache may be nil (reads fall through to Postgres).
func NewStockService(ledger repositories.StockLedger, uow repositories.UnitOfWork, stockCache *pkgcache.StockCache) *StockService {
	return &StockService{ledger: ledger, uow: uow, cache: stockCache}
}

// Get retrieves the current stock level using a read-through cache pattern:
//  1. Check Redis cache first.
//  2. On cache miss (or cache error), query Postgres.
//  3. Asynchronously warm the cache with the Postgres result.
func (s *StockService) Get(ctx context.Context, orgID, warehouseID, productID uuid.UUID) (*models.StockLevel, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, orgID, warehouseID, productID); err == nil {
			return &models.StockLevel{
				OrgID:       cached.OrgID,
				WarehouseID: cached.WarehouseID,
				ProductID:   cached.ProductID,
				Quantity:    cached.Quantity,
				UpdatedAt:   cached.UpdatedAt,
			}, nil
		} else if !errors.Is(err, redis.Nil) {
			// Cache error; fall through to Postgres.
			_ = err
		}
	}

	level, err := s.ledger.Get(ctx, orgID, warehouseID, productID)
	if err != nil {
		return nil, fmt.Errorf("get stock: %w", err)
	}

	if s.cache != nil {
		go func() {
			_ = s.cache.Set(context.Background(), &pkgcache.CachedStockLevel{
				OrgID:       level.OrgID,
				WarehouseID: level.WarehouseID,
				ProductID:   level.ProductID,
				Quantity:    level.Quantity,
				UpdatedAt:   level.UpdatedAt,
			})
		}()
	}

	return level, nil
}

// Adjust applies a manual correction of delta units to a stock level and
// returns the level after the adjustment. Positive deltas record found or
// returned stock; negative deltas record shrinkage and fail with
// InsufficientStockError when they would take the level below zero.
// A zero delta is rejected.
func (s *StockService) Adjust(ctx context.Context, orgID, warehouseID, productID uuid.UUID, delta int64, reason string) (*models.StockLevel, error) {
	if delta == 0 {
		return nil, invdomain.ErrZeroAdjustment
	}

	var level *models.StockLevel
	err := s.uow.Atomic(ctx, func(tx repositories.TxRepos) error {
		var err error
		if delta > 0 {
			err = tx.Stock.Restore(ctx, orgID, warehouseID, productID, delta)
		} else {
			err = tx.Stock.Deduct(ctx, orgID, warehouseID, productID, -delta)
		}
		if err != nil {
			return err
		}

		level, err = tx.Stock.Get(ctx, orgID, warehouseID, productID)
		if err != nil {
			return fmt.Errorf("read adjusted stock: %w", err)
		}

		return tx.Events.Publish(ctx, events.TopicStockAdjusted, events.StockAdjustedEvent{
			EventID:     uuid.New(),
			Version:     1,
			OrgID:       orgID,
			WarehouseID: warehouseID,
			ProductID:   productID,
			Delta:       delta,
			Quantity:    level.Quantity,
			Reason:      reason,
			OccurredAt:  time.Now().UTC(),
		})
	})
	if err != nil {
		return nil, err
	}

	// Drop the stale cache entry; the worker re-warms it from the event.
	if s.cache != nil {
		_ = s.cache.Delete(context.Background(), orgID, warehouseID, productID)
	}

	return level, nil
}
