package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	invdomain "github.com/ghuser/stockline/services/inventory/domain"
	"github.com/ghuser/stockline/services/inventory/domain/models"
	"github.com/ghuser/stockline/services/inventory/domain/repositories"
)

func TestStockLedger_Deduct(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	warehouseID := uuid.New()
	productID := uuid.New()

	t.Run("deducting the exact level reaches zero", func(t *testing.T) {
		store := NewStore()
		store.SeedStock(orgID, warehouseID, productID, 5)
		ledger := NewStockLedger(store)

		if err := ledger.Deduct(ctx, orgID, warehouseID, productID, 5); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		level, err := ledger.Get(ctx, orgID, warehouseID, productID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if level.Quantity != 0 {
			t.Fatalf("expected 0, got %d", level.Quantity)
		}
	})

	t.Run("deducting one past the level fails and changes nothing", func(t *testing.T) {
		store := NewStore()
		store.SeedStock(orgID, warehouseID, productID, 5)
		ledger := NewStockLedger(store)

		err := ledger.Deduct(ctx, orgID, warehouseID, productID, 6)
		var insufficient *invdomain.InsufficientStockError
		if !errors.As(err, &insufficient) {
			t.Fatalf("expected InsufficientStockError, got %v", err)
		}
		if insufficient.Available != 5 || insufficient.Requested != 6 {
			t.Fatalf("unexpected error detail: %+v", insufficient)
		}
		level, err := ledger.Get(ctx, orgID, warehouseID, productID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if level.Quantity != 5 {
			t.Fatalf("expected level unchanged at 5, got %d", level.Quantity)
		}
	})

	t.Run("deducting from an unknown level fails", func(t *testing.T) {
		store := NewStore()
		ledger := NewStockLedger(store)
		err := ledger.Deduct(ctx, orgID, warehouseID, uuid.New(), 1)
		var insufficient *invdomain.InsufficientStockError
		if !errors.As(err, &insufficient) {
			t.Fatalf("expected InsufficientStockError, got %v", err)
		}
		if insufficient.Available != 0 {
			t.Fatalf("expected 0 available, got %d", insufficient.Available)
		}
	})

	t.Run("non-positive quantity is rejected", func(t *testing.T) {
		store := NewStore()
		store.SeedStock(orgID, warehouseID, productID, 5)
		ledger := NewStockLedger(store)
		for _, qty := range []int64{0, -3} {
			if err := ledger.Deduct(ctx, orgID, warehouseID, productID, qty); !errors.Is(err, invdomain.ErrInvalidQuantity) {
				t.Fatalf("qty %d: expected ErrInvalidQuantity, got %v", qty, err)
			}
		}
	})
}

func TestStockLedger_Restore(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	warehouseID := uuid.New()
	productID := uuid.New()

	t.Run("restore creates a missing level", func(t *testing.T) {
		store := NewStore()
		ledger := NewStockLedger(store)

		if err := ledger.Restore(ctx, orgID, warehouseID, productID, 7); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		level, err := ledger.Get(ctx, orgID, warehouseID, productID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if level.Quantity != 7 {
			t.Fatalf("expected 7, got %d", level.Quantity)
		}
	})

	t.Run("restore adds to an existing level", func(t *testing.T) {
		store := NewStore()
		store.SeedStock(orgID, warehouseID, productID, 3)
		ledger := NewStockLedger(store)

		if err := ledger.Restore(ctx, orgID, warehouseID, productID, 4); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		level, err := ledger.Get(ctx, orgID, warehouseID, productID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if level.Quantity != 7 {
			t.Fatalf("expected 7, got %d", level.Quantity)
		}
	})
}

func TestStockLedger_Get(t *testing.T) {
	ctx := context.Background()
	ledger := NewStockLedger(NewStore())
	_, err := ledger.Get(ctx, uuid.New(), uuid.New(), uuid.New())
	if !errors.Is(err, invdomain.ErrStockNotFound) {
		t.Fatalf("expected ErrStockNotFound, got %v", err)
	}
}

func TestUnitOfWork_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	warehouseID := uuid.New()
	productID := uuid.New()

	store := NewStore()
	store.SeedStock(orgID, warehouseID, productID, 10)
	uow := NewUnitOfWork(store)

	boom := errors.New("boom")
	err := uow.Atomic(ctx, func(tx repositories.TxRepos) error {
		if err := tx.Stock.Deduct(ctx, orgID, warehouseID, productID, 4); err != nil {
			return err
		}
		if err := tx.Events.Publish(ctx, "stock.adjusted", struct{}{}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	level, err := NewStockLedger(store).Get(ctx, orgID, warehouseID, productID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if level.Quantity != 10 {
		t.Fatalf("expected level rolled back to 10, got %d", level.Quantity)
	}
	if evts := store.Events(); len(evts) != 0 {
		t.Fatalf("expected recorded events rolled back, got %d", len(evts))
	}
}

func TestProductRepository(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()

	newProduct := func(t *testing.T, name, sku string, price int64) *models.Product {
		t.Helper()
		p, err := models.NewProduct(orgID, sku, name, price)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return p
	}

	t.Run("duplicate sku within an org is rejected", func(t *testing.T) {
		store := NewStore()
		repo := NewProductRepository(store)

		if err := repo.Create(ctx, newProduct(t, "Apple", "APL-1", 150)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		err := repo.Create(ctx, newProduct(t, "Apple again", "APL-1", 175))
		if !errors.Is(err, invdomain.ErrProductAlreadyExists) {
			t.Fatalf("expected ErrProductAlreadyExists, got %v", err)
		}
	})

	t.Run("prices by ids fails on any unknown product", func(t *testing.T) {
		store := NewStore()
		repo := NewProductRepository(store)
		apple := newProduct(t, "Apple", "APL-1", 150)
		if err := repo.Create(ctx, apple); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		prices, err := repo.PricesByIDs(ctx, orgID, []uuid.UUID{apple.ID})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if prices[apple.ID] != 150 {
			t.Fatalf("expected 150, got %d", prices[apple.ID])
		}

		if _, err := repo.PricesByIDs(ctx, orgID, []uuid.UUID{apple.ID, uuid.New()}); !errors.Is(err, invdomain.ErrProductNotFound) {
			t.Fatalf("expected ErrProductNotFound, got %v", err)
		}
	})

	t.Run("reads are org scoped", func(t *testing.T) {
		store := NewStore()
		repo := NewProductRepository(store)
		apple := newProduct(t, "Apple", "APL-1", 150)
		if err := repo.Create(ctx, apple); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := repo.GetByID(ctx, uuid.New(), apple.ID); !errors.Is(err, invdomain.ErrProductNotFound) {
			t.Fatalf("expected ErrProductNotFound for foreign org, got %v", err)
		}
	})
}
