// Package memory provides in-memory implementations of the procurement
// repository interfaces for tests, mirroring the snapshot-and-restore
// transaction semantics of the ordering and inventory memory stores.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	invdomain "github.com/ghuser/stockline/services/inventory/domain"
	podomain "github.com/ghuser/stockline/services/procurement/domain"
	"github.com/ghuser/stockline/services/procurement/domain/models"
	"github.com/ghuser/stockline/services/procurement/domain/repositories"
)

type stockKey struct {
	orgID       uuid.UUID
	warehouseID uuid.UUID
	productID   uuid.UUID
}

type counterKey struct {
	orgID uuid.UUID
	name  string
}

// RecordedEvent is one event captured by the in-memory publisher.
type RecordedEvent struct {
	Topic string
	Event any
}

// Store holds all procurement state behind one mutex.
type Store struct {
	mu       sync.Mutex
	pos      map[uuid.UUID]models.PurchaseOrder
	counters map[counterKey]int64
	stock    map[stockKey]int64
	events   []RecordedEvent
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		pos:      make(map[uuid.UUID]models.PurchaseOrder),
		counters: make(map[counterKey]int64),
		stock:    make(map[stockKey]int64),
	}
}

// SeedStock sets a ledger quantity directly. Test setup only.
func (s *Store) SeedStock(orgID, warehouseID, productID uuid.UUID, qty int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stock[stockKey{orgID, warehouseID, productID}] = qty
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
	pos      map[uuid.UUID]models.PurchaseOrder
	counters map[counterKey]int64
	stock    map[stockKey]int64
	events   int
}

func (s *Store) snapshotLocked() snapshot {
	pos := make(map[uuid.UUID]models.PurchaseOrder, len(s.pos))
	for id, po := range s.pos {
		po.Lines = append([]models.POLine(nil), po.Lines...)
		pos[id] = po
	}
	counters := make(map[counterKey]int64, len(s.counters))
	for k, v := range s.counters {
		counters[k] = v
	}
	stock := make(map[stockKey]int64, len(s.stock))
	for k, v := range s.stock {
		stock[k] = v
	}
	return snapshot{pos: pos, counters: counters, stock: stock, events: len(s.events)}
}

func (s *Store) restoreLocked(snap snapshot) {
	s.pos = snap.pos
	s.counters = snap.counters
	s.stock = snap.stock
	s.events = s.events[:snap.events]
}

// txRepos implements all repository interfaces against a locked Store.
type txRepos struct {
	store *Store
}

func (t txRepos) Create(_ context.Context, po *models.PurchaseOrder) error {
	cp := *po
	cp.Lines = append([]models.POLine(nil), po.Lines...)
	t.store.pos[cp.ID] = cp
	return nil
}

func (t txRepos) GetByID(_ context.Context, orgID, id uuid.UUID) (*models.PurchaseOrder, error) {
	po, ok := t.store.pos[id]
	if !ok || po.OrgID != orgID {
		return nil, podomain.ErrPurchaseOrderNotFound
	}
	po.Lines = append([]models.POLine(nil), po.Lines...)
	return &po, nil
}

// GetForUpdate is identical to GetByID; the store mutex already serializes
// the whole transaction.
func (t txRepos) GetForUpdate(ctx context.Context, orgID, id uuid.UUID) (*models.PurchaseOrder, error) {
	return t.GetByID(ctx, orgID, id)
}

func (t txRepos) Update(_ context.Context, po *models.PurchaseOrder) error {
	if _, ok := t.store.pos[po.ID]; !ok {
		return podomain.ErrPurchaseOrderNotFound
	}
	cp := *po
	cp.Lines = append([]models.POLine(nil), po.Lines...)
	t.store.pos[cp.ID] = cp
	return nil
}

func (t txRepos) FindByOrgID(_ context.Context, orgID uuid.UUID, opts repositories.QueryOpts) ([]*models.PurchaseOrder, int, error) {
	var all []*models.PurchaseOrder
	for _, po := range t.store.pos {
		if po.OrgID == orgID {
			cp := po
			cp.Lines = append([]models.POLine(nil), po.Lines...)
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Number > all[j].Number })
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

func (t txRepos) Next(_ context.Context, orgID uuid.UUID, name string) (int64, error) {
	k := counterKey{orgID, name}
	t.store.counters[k]++
	return t.store.counters[k], nil
}

func (t txRepos) Restore(_ context.Context, orgID, warehouseID, productID uuid.UUID, qty int64) error {
	if qty <= 0 {
		return invdomain.ErrInvalidQuantity
	}
	t.store.stock[stockKey{orgID, warehouseID, productID}] += qty
	return nil
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
	err := fn(repositories.TxRepos{PurchaseOrders: t, Counters: t, Stock: t, Events: t})
	if err != nil {
		u.store.restoreLocked(snap)
		return err
	}
	return nil
}

// PurchaseOrderRepository is a standalone read/write view over the store.
type PurchaseOrderRepository struct {
	store *Store
}

// NewPurchaseOrderRepository returns a repository that locks per call.
func NewPurchaseOrderRepository(store *Store) *PurchaseOrderRepository {
	return &PurchaseOrderRepository{store: store}
}

func (r *PurchaseOrderRepository) Create(ctx context.Context, po *models.PurchaseOrder) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return txRepos{store: r.store}.Create(ctx, po)
}

func (r *PurchaseOrderRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.PurchaseOrder, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return txRepos{store: r.store}.GetByID(ctx, orgID, id)
}

func (r *PurchaseOrderRepository) GetForUpdate(ctx context.Context, orgID, id uuid.UUID) (*models.PurchaseOrder, error) {
	return r.GetByID(ctx, orgID, id)
}

func (r *PurchaseOrderRepository) Update(ctx context.Context, po *models.PurchaseOrder) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return txRepos{store: r.store}.Update(ctx, po)
}

func (r *PurchaseOrderRepository) FindByOrgID(ctx context.Context, orgID uuid.UUID, opts repositories.QueryOpts) ([]*models.PurchaseOrder, int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return txRepos{store: r.store}.FindByOrgID(ctx, orgID, opts)
}
