// Package memory provides in-memory implementations of the ordering
// repository interfaces for tests. One Store holds orders, a stock ledger and
// a price catalog behind a single mutex; the UnitOfWork snapshots the whole
// store and restores it when the transactional function fails, so a failed
// operation observably changes nothing.
package memory

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"

	"github.com/google/uuid"

	invdomain "github.com/ghuser/stockline/services/inventory/domain"
	orderdomain "github.com/ghuser/stockline/services/ordering/domain"
	"github.com/ghuser/stockline/services/ordering/domain/models"
	"github.com/ghuser/stockline/services/ordering/domain/repositories"
)

type stockKey struct {
	orgID       uuid.UUID
	warehouseID uuid.UUID
	productID   uuid.UUID
}

// RecordedEvent is one event captured by the in-memory publisher.
type RecordedEvent struct {
	Topic string
	Event any
}

// Store holds all ordering state behind one mutex.
type Store struct {
	mu     sync.Mutex
	orders map[uuid.UUID]models.Order
	stock  map[stockKey]int64
	prices map[uuid.UUID]int64
	events []RecordedEvent
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		orders: make(map[uuid.UUID]models.Order),
		stock:  make(map[stockKey]int64),
		prices: make(map[uuid.UUID]int64),
	}
}

// SeedStock sets a ledger quantity directly. Test setup only.
func (s *Store) SeedStock(orgID, warehouseID, productID uuid.UUID, qty int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stock[stockKey{orgID, warehouseID, productID}] = qty
}

// SeedPrice sets a catalog price. Test setup only.
func (s *Store) SeedPrice(productID uuid.UUID, priceCents int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices[productID] = priceCents
}

// StockQty reads a ledger quantity directly for assertions.
func (s *Store) StockQty(orgID, warehouseID, productID uuid.UUID) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stock[stockKey{orgID, warehouseID, productID}]
}

// Events returns a copy of all recorded events in publish order.
func (s *Store) Events() []RecordedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RecordedEvent, len(s.events))
	copy(out, s.events)
	return out
}

type snapshot struct {
	orders map[uuid.UUID]models.Order
	stock  map[stockKey]int64
	events int
}

func (s *Store) snapshotLocked() snapshot {
	orders := make(map[uuid.UUID]models.Order, len(s.orders))
	for id, o := range s.orders {
		o.Items = append([]models.LineItem(nil), o.Items...)
		orders[id] = o
	}
	return snapshot{orders: orders, stock: maps.Clone(s.stock), events: len(s.events)}
}

func (s *Store) restoreLocked(snap snapshot) {
	s.orders = snap.orders
	s.stock = snap.stock
	s.events = s.events[:snap.events]
}

// txRepos implements all repository interfaces against a locked Store.
type txRepos struct {
	store *Store
}

func (t txRepos) Create(_ context.Context, order *models.Order) error {
	o := *order
	o.Items = append([]models.LineItem(nil), order.Items...)
	t.store.orders[o.ID] = o
	return nil
}

func (t txRepos) GetByID(_ context.Context, orgID, id uuid.UUID) (*models.Order, error) {
	o, ok := t.store.orders[id]
	if !ok || o.OrgID != orgID {
		return nil, orderdomain.ErrOrderNotFound
	}
	o.Items = append([]models.LineItem(nil), o.Items...)
	return &o, nil
}

// GetForUpdate is identical to GetByID; the store mutex already serializes
// the whole transaction.
func (t txRepos) GetForUpdate(ctx context.Context, orgID, id uuid.UUID) (*models.Order, error) {
	return t.GetByID(ctx, orgID, id)
}

func (t txRepos) Update(_ context.Context, order *models.Order) error {
	if _, ok := t.store.orders[order.ID]; !ok {
		return orderdomain.ErrOrderNotFound
	}
	o := *order
	o.Items = append([]models.LineItem(nil), order.Items...)
	t.store.orders[o.ID] = o
	return nil
}

func (t txRepos) FindByOrgID(_ context.Context, orgID uuid.UUID, opts repositories.QueryOpts) ([]*models.Order, int, error) {
	var all []*models.Order
	for _, o := range t.store.orders {
		if o.OrgID == orgID {
			cp := o
			cp.Items = append([]models.LineItem(nil), o.Items...)
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID.String() < all[j].ID.String()
	})
	total := len(all)
	if opts.Offset >= len(all) {
		return nil, total, nil
	}
	all = all[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(all) {
		all = all[:opts.Limit]
	}
	return all, total, nil
}

func (t txRepos) Deduct(_ context.Context, orgID, warehouseID, productID uuid.UUID, qty int64) error {
	if qty <= 0 {
		return invdomain.ErrInvalidQuantity
	}
	k := stockKey{orgID, warehouseID, productID}
	available := t.store.stock[k]
	if available < qty {
		return &invdomain.InsufficientStockError{
			ProductID: productID,
			Available: available,
			Requested: qty,
		}
	}
	t.store.stock[k] = available - qty
	return nil
}

func (t txRepos) Restore(_ context.Context, orgID, warehouseID, productID uuid.UUID, qty int64) error {
	if qty <= 0 {
		return invdomain.ErrInvalidQuantity
	}
	k := stockKey{orgID, warehouseID, productID}
	t.store.stock[k] += qty
	return nil
}

func (t txRepos) PricesByIDs(_ context.Context, _ uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	prices := make(map[uuid.UUID]int64, len(ids))
	for _, id := range ids {
		price, ok := t.store.prices[id]
		if !ok {
			return nil, fmt.Errorf("product %s: %w", id, invdomain.ErrProductNotFound)
		}
		prices[id] = price
	}
	return prices, nil
}

func (t txRepos) Publish(_ context.Context, topic string, event any) error {
	t.store.events = append(t.store.events, RecordedEvent{Topic: topic, Event: event})
	return nil
}

// UnitOfWork implements repositories.UnitOfWork over a Store.
type UnitOfWork struct {
	store *Store
}

// NewUnitOfWork returns a UnitOfWork over the given store.
func NewUnitOfWork(store *Store) *UnitOfWork {
	return &UnitOfWork{store: store}
}

func (u *UnitOfWork) Atomic(_ context.Context, fn func(tx repositories.TxRepos) error) error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	snap := u.store.snapshotLocked()
	t := txRepos{store: u.store}
	err := fn(repositories.TxRepos{Orders: t, Stock: t, Catalog: t, Events: t})
	if err != nil {
		u.store.restoreLocked(snap)
		return err
	}
	return nil
}

// OrderRepository returns a standalone repository view over the store for
// read paths outside a transaction.
type OrderRepository struct {
	store *Store
}

// NewOrderRepository returns a read/write repository that locks per call.
func NewOrderRepository(store *Store) *OrderRepository {
	return &OrderRepository{store: store}
}

func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return txRepos{store: r.store}.Create(ctx, order)
}

func (r *OrderRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return txRepos{store: r.store}.GetByID(ctx, orgID, id)
}

func (r *OrderRepository) GetForUpdate(ctx context.Context, orgID, id uuid.UUID) (*models.Order, error) {
	return r.GetByID(ctx, orgID, id)
}

func (r *OrderRepository) Update(ctx context.Context, order *models.Order) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return txRepos{store: r.store}.Update(ctx, order)
}

func (r *OrderRepository) FindByOrgID(ctx context.Context, orgID uuid.UUID, opts repositories.QueryOpts) ([]*models.Order, int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return txRepos{store: r.store}.FindByOrgID(ctx, orgID, opts)
}
