package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/ghuser/stockline/pkg/app"
	"github.com/ghuser/stockline/pkg/cache"
	"github.com/ghuser/stockline/pkg/config"
	"github.com/ghuser/stockline/pkg/database"
	"github.com/ghuser/stockline/pkg/events"
	"github.com/ghuser/stockline/pkg/logger"
	"github.com/ghuser/stockline/pkg/telemetry"
	invdomain "github.com/ghuser/stockline/services/inventory/domain"
	invEvents "github.com/ghuser/stockline/services/inventory/domain/events"
	invpostgres "github.com/ghuser/stockline/services/inventory/infrastructure/persistence/postgres"
	orderEvents "github.com/ghuser/stockline/services/ordering/domain/events"
	poEvents "github.com/ghuser/stockline/services/procurement/domain/events"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := config.ValidateForProduction(cfg); err != nil {
		slog.Error("production config validation failed", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg)

	ctx := context.Background()

	otelShutdown, _, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelShutdown(ctx) //nolint:errcheck

	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer pool.Close()
	log.Info("database pool connected")

	eventBus, err := events.NewEventBus(cfg, log)
	if err != nil {
		log.Error("failed to setup event bus", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer eventBus.Close() //nolint:errcheck

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer redisClient.Close() //nolint:errcheck
	log.Info("redis connected")

	appConfig := &app.Application{
		Db:       pool,
		Logger:   log,
		EventBus: eventBus,
		Redis:    redisClient,
	}

	if err := registerSubscribers(ctx, appConfig); err != nil {
		log.Error("failed to register subscribers", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	// EventBus.Close() (via defer) waits up to 30s for in-flight handlers.
	log.Info("worker stopped")
}

// stockTopics are all topics whose events move ledger stock. Every one of
// them refreshes the Redis stock read model for the affected levels.
var stockTopics = []string{
	invEvents.TopicStockAdjusted,
	orderEvents.TopicOrderCreated,
	orderEvents.TopicOrderStatusChanged,
	orderEvents.TopicOrderItemsChanged,
	poEvents.TopicPurchaseOrderReceived,
}

// registerSubscribers wires all domain event handlers.
// Add new topics here as more services publish events.
func registerSubscribers(ctx context.Context, a *app.Application) error {
	warmer := newStockCacheWarmer(a)

	for _, topic := range stockTopics {
		topic := topic
		errCh, err := a.EventBus.Subscribe(ctx, topic, warmer.handle(topic))
		if err != nil {
			return err
		}
		// Drain subscriber errors in background so the channel never blocks.
		go func() {
			for err := range errCh {
				a.Logger.ErrorContext(ctx, "subscriber error", "topic", topic, "error", err)
			}
		}()
	}

	a.Logger.Info("event subscribers registered", "topics", stockTopics)
	return nil
}

// stockCacheWarmer refreshes the Redis stock read model from the
// authoritative Postgres levels whenever a stock-moving event commits.
// Handlers must be idempotent; re-reading the current level is so by nature.
type stockCacheWarmer struct {
	ledger *invpostgres.StockLedger
	cache  *cache.StockCache
	log    logger.Logger
}

func newStockCacheWarmer(a *app.Application) *stockCacheWarmer {
	return &stockCacheWarmer{
		ledger: invpostgres.NewStockLedger(a.Db.DB()),
		cache:  cache.NewStockCache(a.Redis),
		log:    a.Logger,
	}
}

// affectedLevels is the minimal shape every stock-moving event decodes to:
// which org and warehouse, and which products changed.
type affectedLevels struct {
	orgID       uuid.UUID
	warehouseID uuid.UUID
	productIDs  []uuid.UUID
}

func (w *stockCacheWarmer) handle(topic string) func(context.Context, *message.Message) error {
	return func(ctx context.Context, msg *message.Message) error {
		levels, err := decodeAffectedLevels(topic, msg.Payload)
		if err != nil {
			// Malformed payloads are not retryable; drop with a log line.
			w.log.ErrorContext(ctx, "undecodable stock event", "topic", topic, "error", err)
			return nil
		}

		for _, productID := range levels.productIDs {
			if err := w.refresh(ctx, levels.orgID, levels.warehouseID, productID); err != nil {
				return err
			}
		}
		return nil
	}
}

// refresh re-reads the authoritative level and rewrites the cache entry. A
// missing row means the product was never stocked; the stale entry is
// deleted instead.
func (w *stockCacheWarmer) refresh(ctx context.Context, orgID, warehouseID, productID uuid.UUID) error {
	level, err := w.ledger.Get(ctx, orgID, warehouseID, productID)
	if err != nil {
		if errors.Is(err, invdomain.ErrStockNotFound) {
			return w.cache.Delete(ctx, orgID, warehouseID, productID)
		}
		return err
	}

	if err := w.cache.Set(ctx, &cache.CachedStockLevel{
		OrgID:       level.OrgID,
		WarehouseID: level.WarehouseID,
		ProductID:   level.ProductID,
		Quantity:    level.Quantity,
		UpdatedAt:   level.UpdatedAt,
	}); err != nil {
		return err
	}

	w.log.InfoContext(ctx, "stock cache refreshed",
		"org_id", orgID, "warehouse_id", warehouseID, "product_id", productID,
		"quantity", level.Quantity)
	return nil
}

func decodeAffectedLevels(topic string, payload []byte) (affectedLevels, error) {
	switch topic {
	case invEvents.TopicStockAdjusted:
		var evt invEvents.StockAdjustedEvent
		if err := json.Unmarshal(payload, &evt); err != nil {
			return affectedLevels{}, err
		}
		return affectedLevels{
			orgID:       evt.OrgID,
			warehouseID: evt.WarehouseID,
			productIDs:  []uuid.UUID{evt.ProductID},
		}, nil

	case orderEvents.TopicOrderCreated:
		var evt orderEvents.OrderCreatedEvent
		if err := json.Unmarshal(payload, &evt); err != nil {
			return affectedLevels{}, err
		}
		return affectedLevels{
			orgID:       evt.OrgID,
			warehouseID: evt.WarehouseID,
			productIDs:  lineItemProducts(evt.Items),
		}, nil

	case orderEvents.TopicOrderStatusChanged:
		var evt orderEvents.OrderStatusChangedEvent
		if err := json.Unmarshal(payload, &evt); err != nil {
			return affectedLevels{}, err
		}
		if !evt.StockMoved {
			return affectedLevels{orgID: evt.OrgID, warehouseID: evt.WarehouseID}, nil
		}
		return affectedLevels{
			orgID:       evt.OrgID,
			warehouseID: evt.WarehouseID,
			productIDs:  lineItemProducts(evt.Items),
		}, nil

	case orderEvents.TopicOrderItemsChanged:
		var evt orderEvents.OrderItemsChangedEvent
		if err := json.Unmarshal(payload, &evt); err != nil {
			return affectedLevels{}, err
		}
		seen := make(map[uuid.UUID]bool)
		var ids []uuid.UUID
		for id := range evt.PreviousItems {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
		for _, it := range evt.Items {
			if !seen[it.ProductID] {
				seen[it.ProductID] = true
				ids = append(ids, it.ProductID)
			}
		}
		return affectedLevels{orgID: evt.OrgID, warehouseID: evt.WarehouseID, productIDs: ids}, nil

	case poEvents.TopicPurchaseOrderReceived:
		var evt poEvents.PurchaseOrderReceivedEvent
		if err := json.Unmarshal(payload, &evt); err != nil {
			return affectedLevels{}, err
		}
		ids := make([]uuid.UUID, 0, len(evt.Lines))
		for _, l := range evt.Lines {
			ids = append(ids, l.ProductID)
		}
		return affectedLevels{orgID: evt.OrgID, warehouseID: evt.WarehouseID, productIDs: ids}, nil
	}

	return affectedLevels{}, errors.New("unknown topic " + topic)
}

func lineItemProducts(items []orderEvents.EventLineItem) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	return ids
}
