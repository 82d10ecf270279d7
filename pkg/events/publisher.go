package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// JSONPublisher adapts a watermill Publisher to the domain-level event
// publishing interfaces: events are JSON-marshalled and sent with OTel trace
// metadata. Bind it to a transaction with EventBus.NewTxPublisher so the
// event commits atomically with the writes it describes.
type JSONPublisher struct {
	pub message.Publisher
}

// NewJSONPublisher wraps the given watermill publisher.
func NewJSONPublisher(pub message.Publisher) *JSONPublisher {
	return &JSONPublisher{pub: pub}
}

// Publish marshals event as JSON and publishes it to topic.
func (p *JSONPublisher) Publish(ctx context.Context, topic string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	for k, v := range carrier {
		msg.Metadata.Set(k, v)
	}

	if err := p.pub.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}
