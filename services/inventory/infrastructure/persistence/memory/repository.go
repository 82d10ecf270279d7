// Package memory provides in-memory implementations of the inventory
// repository interfaces for tests. A single Store guards all collections with
// one mutex; the UnitOfWork snapshots and restores the whole store, so a
// failing transactional function leaves no partial state behind.
package memory

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	invdomain "github.com/ghuser/stockline/services/inventory/domain"
	"github.com/ghuser/stockline/services/inventory/domain/models"
	"github.com/ghuser/stockline/services/inventory/domain/repositories"
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

// Store holds all inventory state behind one mutex.
type Store struct {
	mu       sync.Mutex
	products map[uuid.UUID]models.Product
	stock    map[stockKey]models.StockLevel
	events   []RecordedEvent
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		products: make(map[uuid.UUID]models.Product),
		stock:    make(map[stockKey]models.StockLevel),
	}
}

// Events returns a copy of all recorded events in publish order.
func (s *Store) Events() []RecordedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RecordedEvent, len(s.events))
	copy(out, s.events)
	return out
}

// SeedStock sets a stock level directly, bypassing the ledger. Test setup only.
func (s *Store) SeedStock(orgID, warehouseID, productID uuid.UUID, qty int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := stockKey{orgID, warehouseID, productID}
	s.stock[k] = models.StockLevel{
		OrgID: orgID, WarehouseID: warehouseID, ProductID: productID,
		Quantity: qty, UpdatedAt: time.Now().UTC(),
	}
}

// SeedProduct inserts a product directly. Test setup only.
func (s *Store) SeedProduct(p *models.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = *p
}

type snapshot struct {
	products map[uuid.UUID]models.Product
	stock    map[stockKey]models.StockLevel
	events   int
}

// snapshotLocked captures current state; callers must hold mu.
func (s *Store) snapshotLocked() snapshot {
	return snapshot{
		products: maps.Clone(s.products),
		stock:    maps.Clone(s.stock),
		events:   len(s.events),
	}
}

// restoreLocked rolls state back to snap; callers must hold mu.
func (s *Store) restoreLocked(snap snapshot) {
	s.products = snap.products
	s.stock = snap.stock
	s.events = s.events[:snap.events]
}

// ProductRepository implements repositories.ProductRepository over a Store.
type ProductRepository struct {
	store  *Store
	locked bool // true inside a UnitOfWork, where the UoW holds the mutex
}

// NewProductRepository returns a standalone repository that locks per call.
func NewProductRepository(store *Store) *ProductRepository {
	return &ProductRepository{store: store}
}

func (r *ProductRepository) lock() func() {
	if r.locked {
		return func() {}
	}
	r.store.mu.Lock()
	return r.store.mu.Unlock
}

func (r *ProductRepository) Create(_ context.Context, product *models.Product) error {
	defer r.lock()()
	for _, p := range r.store.products {
		if p.OrgID == product.OrgID && p.SKU == product.SKU {
			return invdomain.ErrProductAlreadyExists
		}
	}
	r.store.products[product.ID] = *product
	return nil
}

func (r *ProductRepository) GetByID(_ context.Context, orgID, id uuid.UUID) (*models.Product, error) {
	defer r.lock()()
	p, ok := r.store.products[id]
	if !ok || p.OrgID != orgID {
		return nil, invdomain.ErrProductNotFound
	}
	out := p
	return &out, nil
}

func (r *ProductRepository) FindByOrgID(_ context.Context, orgID uuid.UUID, opts repositories.QueryOpts) ([]*models.Product, int, error) {
	defer r.lock()()
	var all []*models.Product
	for _, p := range r.store.products {
		if p.OrgID == orgID {
			cp := p
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

func (r *ProductRepository) PricesByIDs(_ context.Context, orgID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	defer r.lock()()
	prices := make(map[uuid.UUID]int64, len(ids))
	for _, id := range ids {
		p, ok := r.store.products[id]
		if !ok || p.OrgID != orgID {
			return nil, fmt.Errorf("product %s: %w", id, invdomain.ErrProductNotFound)
		}
		prices[id] = p.PriceCents
	}
	return prices, nil
}

// StockLedger implements repositories.StockLedger over a Store.
type StockLedger struct {
	store  *Store
	locked bool
}

// NewStockLedger returns a standalone ledger that locks per call.
func NewStockLedger(store *Store) *StockLedger {
	return &StockLedger{store: store}
}

func (l *StockLedger) lock() func() {
	if l.locked {
		return func() {}
	}
	l.store.mu.Lock()
	return l.store.mu.Unlock
}

func (l *StockLedger) Deduct(_ context.Context, orgID, warehouseID, productID uuid.UUID, qty int64) error {
	if qty <= 0 {
		return invdomain.ErrInvalidQuantity
	}
	defer l.lock()()
	k := stockKey{orgID, warehouseID, productID}
	lvl, ok := l.store.stock[k]
	if !ok || lvl.Quantity < qty {
		return &invdomain.InsufficientStockError{
			ProductID: productID,
			Available: lvl.Quantity,
			Requested: qty,
		}
	}
	lvl.Quantity -= qty
	lvl.UpdatedAt = time.Now().UTC()
	l.store.stock[k] = lvl
	return nil
}

func (l *StockLedger) Restore(_ context.Context, orgID, warehouseID, productID uuid.UUID, qty int64) error {
	if qty <= 0 {
		return invdomain.ErrInvalidQuantity
	}
	defer l.lock()()
	k := stockKey{orgID, warehouseID, productID}
	lvl, ok := l.store.stock[k]
	if !ok {
		lvl = models.StockLevel{OrgID: orgID, WarehouseID: warehouseID, ProductID: productID}
	}
	lvl.Quantity += qty
	lvl.UpdatedAt = time.Now().UTC()
	l.store.stock[k] = lvl
	return nil
}

func (l *StockLedger) Get(_ context.Context, orgID, warehouseID, productID uuid.UUID) (*models.StockLevel, error) {
	defer l.lock()()
	lvl, ok := l.store.stock[stockKey{orgID, warehouseID, productID}]
	if !ok {
		return nil, invdomain.ErrStockNotFound
	}
	out := lvl
	return &out, nil
}

// EventRecorder implements repositories.EventPublisher by appending to the Store.
type EventRecorder struct {
	store  *Store
	locked bool
}

// NewEventRecorder returns a standalone recorder that locks per call.
func NewEventRecorder(store *Store) *EventRecorder {
	return &EventRecorder{store: store}
}

func (r *EventRecorder) Publish(_ context.Context, topic string, event any) error {
	if !r.locked {
		r.store.mu.Lock()
		defer r.store.mu.Unlock()
	}
	r.store.events = append(r.store.events, RecordedEvent{Topic: topic, Event: event})
	return nil
}

// UnitOfWork implements repositories.UnitOfWork over a Store. It holds the
// store mutex for the whole transactional function and restores a snapshot on
// error, matching the all-or-nothing semantics of the SQL implementation.
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
	err := fn(repositories.TxRepos{
		Products: &ProductRepository{store: u.store, locked: true},
		Stock:    &StockLedger{store: u.store, locked: true},
		Events:   &EventRecorder{store: u.store, locked: true},
	})
	if err != nil {
		u.store.restoreLocked(snap)
		return err
	}
	return nil
}
