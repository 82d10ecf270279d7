package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/stockline/services/procurement/domain/events"
	"github.com/ghuser/stockline/services/procurement/domain/models"
	"github.com/ghuser/stockline/services/procurement/domain/repositories"
)

// poNumberCounter is the counters-table name for the per-org PO sequence.
const poNumberCounter = "purchase_order_number"

// PurchaseOrderService orchestrates the PO lifecycle. Receiving a delivery
// updates the PO lines, increments warehouse stock and publishes the receipt
// event in one transaction; a rejected delivery changes nothing.
type PurchaseOrderService struct {
	reads repositories.PurchaseOrderRepository
	uow   repositories.UnitOfWork
}

// NewPurchaseOrderService returns a PurchaseOrderService wired with the given
// read repository and unit of work.
func NewPurchaseOrderService(reads repositories.PurchaseOrderRepository, uow repositories.UnitOfWork) *PurchaseOrderService {
	return &PurchaseOrderService{reads: reads, uow: uow}
}

// Create validates and persists a new purchase order. The PO number is drawn
// from the org's counter inside the creating transaction, so numbers are
// gapless under rollback and unique under concurrency.
func (s *PurchaseOrderService) Create(ctx context.Context, orgID, warehouseID, supplierID uuid.UUID, lines []models.POLineInput, draft bool) (*models.PurchaseOrder, error) {
	var po *models.PurchaseOrder
	err := s.uow.Atomic(ctx, func(tx repositories.TxRepos) error {
		number, err := tx.Counters.Next(ctx, orgID, poNumberCounter)
		if err != nil {
			return err
		}
		po, err = models.NewPurchaseOrder(orgID, warehouseID, supplierID, number, lines, draft)
		if err != nil {
			return err
		}
		return tx.PurchaseOrders.Create(ctx, po)
	})
	if err != nil {
		return nil, err
	}
	return po, nil
}

// Place moves a draft PO to ordered.
func (s *PurchaseOrderService) Place(ctx context.Context, orgID, poID uuid.UUID) (*models.PurchaseOrder, error) {
	var po *models.PurchaseOrder
	err := s.uow.Atomic(ctx, func(tx repositories.TxRepos) error {
		var err error
		po, err = tx.PurchaseOrders.GetForUpdate(ctx, orgID, poID)
		if err != nil {
			return err
		}
		if err := po.Place(); err != nil {
			return err
		}
		return tx.PurchaseOrders.Update(ctx, po)
	})
	if err != nil {
		return nil, err
	}
	return po, nil
}

// Receive applies one delivery: PO lines, warehouse stock and the receipt
// event commit together. Inbound stock is always additive, so the ledger
// increment cannot fail for business reasons; any validation failure inside
// the aggregate aborts the transaction with the PO and ledger untouched.
func (s *PurchaseOrderService) Receive(ctx context.Context, orgID, poID uuid.UUID, receipts []models.ReceiptInput) (*models.PurchaseOrder, error) {
	var po *models.PurchaseOrder
	err := s.uow.Atomic(ctx, func(tx repositories.TxRepos) error {
		var err error
		po, err = tx.PurchaseOrders.GetForUpdate(ctx, orgID, poID)
		if err != nil {
			return err
		}

		increments, err := po.Receive(receipts)
		if err != nil {
			return err
		}
		for _, inc := range increments {
			if err := tx.Stock.Restore(ctx, orgID, po.WarehouseID, inc.ProductID, inc.Quantity); err != nil {
				return err
			}
		}

		if err := tx.PurchaseOrders.Update(ctx, po); err != nil {
			return err
		}
		return tx.Events.Publish(ctx, events.TopicPurchaseOrderReceived, receivedEvent(po, increments))
	})
	if err != nil {
		return nil, err
	}
	return po, nil
}

// Cancel terminates a PO. Stock already received stays in the warehouse.
func (s *PurchaseOrderService) Cancel(ctx context.Context, orgID, poID uuid.UUID) (*models.PurchaseOrder, error) {
	var po *models.PurchaseOrder
	err := s.uow.Atomic(ctx, func(tx repositories.TxRepos) error {
		var err error
		po, err = tx.PurchaseOrders.GetForUpdate(ctx, orgID, poID)
		if err != nil {
			return err
		}
		if err := po.Cancel(); err != nil {
			return err
		}
		if err := tx.PurchaseOrders.Update(ctx, po); err != nil {
			return err
		}
		return tx.Events.Publish(ctx, events.TopicPurchaseOrderCancelled, events.PurchaseOrderCancelledEvent{
			EventID:         uuid.New(),
			Version:         1,
			PurchaseOrderID: po.ID,
			OrgID:           orgID,
			WarehouseID:     po.WarehouseID,
			OccurredAt:      time.Now().UTC(),
		})
	})
	if err != nil {
		return nil, err
	}
	return po, nil
}

// GetByID retrieves a purchase order scoped to the given org.
func (s *PurchaseOrderService) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.PurchaseOrder, error) {
	po, err := s.reads.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, fmt.Errorf("get purchase order: %w", err)
	}
	return po, nil
}

// List returns a paginated slice of purchase orders plus total count.
func (s *PurchaseOrderService) List(ctx context.Context, orgID uuid.UUID, opts repositories.QueryOpts) ([]*models.PurchaseOrder, int, error) {
	pos, total, err := s.reads.FindByOrgID(ctx, orgID, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list purchase orders: %w", err)
	}
	return pos, total, nil
}

func receivedEvent(po *models.PurchaseOrder, increments []models.StockIncrement) events.PurchaseOrderReceivedEvent {
	receivedNow := make(map[uuid.UUID]int64, len(increments))
	for _, inc := range increments {
		receivedNow[inc.ProductID] = inc.Quantity
	}
	lines := make([]events.ReceivedLine, 0, len(increments))
	for _, l := range po.Lines {
		now, ok := receivedNow[l.ProductID]
		if !ok {
			continue
		}
		lines = append(lines, events.ReceivedLine{
			ProductID:   l.ProductID,
			ReceivedNow: now,
			ReceivedQty: l.ReceivedQty,
			OrderedQty:  l.OrderedQty,
		})
	}
	return events.PurchaseOrderReceivedEvent{
		EventID:         uuid.New(),
		Version:         1,
		PurchaseOrderID: po.ID,
		OrgID:           po.OrgID,
		WarehouseID:     po.WarehouseID,
		Status:          string(po.Status),
		Lines:           lines,
		OccurredAt:      time.Now().UTC(),
	}
}
