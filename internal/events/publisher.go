// Package events publishes variant catalog change events to NATS JetStream
// so downstream consumers (carts, search, storefront caches) can react to
// price, stock, and assignment changes.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/sirupsen/logrus"
	"variants-service/internal/models"
)

const (
	streamName = "VARIANT_EVENTS"

	SubjectVariantCreated   = "variant.created"
	SubjectVariantUpdated   = "variant.updated"
	SubjectVariantDeleted   = "variant.deleted"
	SubjectInventoryChanged = "variant.inventory_changed"
)

// VariantEvent is the wire payload for variant change events.
type VariantEvent struct {
	EventType   string    `json:"eventType"`
	TenantID    string    `json:"tenantId"`
	Timestamp   time.Time `json:"timestamp"`
	VariantID   string    `json:"variantId"`
	ProductID   string    `json:"productId"`
	SKU         string    `json:"sku"`
	Price       string    `json:"price,omitempty"`
	Quantity    int       `json:"quantity"`
	IsAvailable bool      `json:"isAvailable"`
	ActorID     string    `json:"actorId,omitempty"`
}

// Publisher publishes variant events to JetStream.
type Publisher struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	logger *logrus.Entry
}

// NewPublisher connects to NATS and ensures the variant events stream exists.
func NewPublisher(logger *logrus.Logger) (*Publisher, error) {
	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://nats.nats.svc.cluster.local:4222"
	}

	nc, err := nats.Connect(natsURL,
		nats.Name("variants-service"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Infof("NATS reconnected to %s", nc.ConnectedUrl())
		}),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.WithError(err).Warn("NATS disconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      streamName,
		Subjects:  []string{"variant.>"},
		Retention: jetstream.LimitsPolicy,
		MaxAge:    7 * 24 * time.Hour,
	})
	if err != nil {
		logger.WithError(err).Warn("Failed to ensure variant events stream (may already exist)")
	}

	return &Publisher{
		nc:     nc,
		js:     js,
		logger: logger.WithField("component", "variant-events"),
	}, nil
}

// Close closes the NATS connection.
func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}

// PublishVariantCreated publishes a variant.created event.
func (p *Publisher) PublishVariantCreated(variant *models.ProductVariant, tenantID, actorID string) {
	p.publish(p.buildEvent(SubjectVariantCreated, variant, tenantID, actorID))
}

// PublishVariantUpdated publishes a variant.updated event.
func (p *Publisher) PublishVariantUpdated(variant *models.ProductVariant, tenantID, actorID string) {
	p.publish(p.buildEvent(SubjectVariantUpdated, variant, tenantID, actorID))
}

// PublishVariantDeleted publishes a variant.deleted event.
func (p *Publisher) PublishVariantDeleted(variant *models.ProductVariant, tenantID, actorID string) {
	p.publish(p.buildEvent(SubjectVariantDeleted, variant, tenantID, actorID))
}

// PublishInventoryChanged publishes a variant.inventory_changed event.
func (p *Publisher) PublishInventoryChanged(variant *models.ProductVariant, tenantID, actorID string) {
	p.publish(p.buildEvent(SubjectInventoryChanged, variant, tenantID, actorID))
}

func (p *Publisher) buildEvent(eventType string, variant *models.ProductVariant, tenantID, actorID string) *VariantEvent {
	return &VariantEvent{
		EventType:   eventType,
		TenantID:    tenantID,
		Timestamp:   time.Now().UTC(),
		VariantID:   variant.ID.String(),
		ProductID:   variant.ProductID.String(),
		SKU:         variant.SKU,
		Price:       variant.Price,
		Quantity:    variant.Quantity,
		IsAvailable: variant.IsAvailable,
		ActorID:     actorID,
	}
}

// publish sends the event asynchronously so catalog mutations never block on
// the broker.
func (p *Publisher) publish(event *VariantEvent) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		data, err := json.Marshal(event)
		if err != nil {
			p.logger.WithError(err).Error("Failed to marshal variant event")
			return
		}

		if _, err := p.js.Publish(ctx, event.EventType, data); err != nil {
			p.logger.WithFields(logrus.Fields{
				"eventType": event.EventType,
				"variantId": event.VariantID,
				"tenantId":  event.TenantID,
			}).WithError(err).Error("Failed to publish variant event")
			return
		}

		p.logger.WithFields(logrus.Fields{
			"eventType": event.EventType,
			"variantId": event.VariantID,
			"tenantId":  event.TenantID,
		}).Info("Variant event published")
	}()
}
