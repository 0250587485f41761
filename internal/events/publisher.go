package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

// Event types
const (
	ProductCreated     = "product.created"
	ProductUpdated     = "product.updated"
	ProductDeleted     = "product.deleted"
	CatalogReset       = "catalog.reset"
	CatalogImported    = "catalog.imported"
	OrderCreated       = "order.created"
	OrderStatusChanged = "order.status_changed"
)

const subjectPrefix = "storefront."

// Event is the envelope published for every store change
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	EntityID   string    `json:"entityId,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data,omitempty"`
}

// Publisher sends store events to NATS
type Publisher struct {
	conn   *nats.Conn
	logger *logrus.Entry
}

// NewPublisher connects to the NATS server at natsURL
func NewPublisher(natsURL string, logger *logrus.Logger) (*Publisher, error) {
	conn, err := nats.Connect(natsURL,
		nats.Name("storefront-service"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &Publisher{
		conn:   conn,
		logger: logger.WithField("component", "storefront-events"),
	}, nil
}

// Close drains and closes the NATS connection
func (p *Publisher) Close() {
	if p.conn != nil {
		_ = p.conn.Drain()
	}
}

// Publish sends an event asynchronously so the caller's flow is never blocked
// by the broker. Failures are logged.
func (p *Publisher) Publish(ctx context.Context, eventType, entityID string, data any) {
	event := Event{
		ID:         uuid.New().String(),
		Type:       eventType,
		EntityID:   entityID,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}

	go func() {
		pubCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		fields := logrus.Fields{"eventType": event.Type, "entityID": event.EntityID}
		if err := p.publish(pubCtx, event); err != nil {
			p.logger.WithFields(fields).WithError(err).Error("Failed to publish event")
			return
		}
		p.logger.WithFields(fields).Debug("Event published")
	}()
}

func (p *Publisher) publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := p.conn.Publish(subjectPrefix+event.Type, payload); err != nil {
		return err
	}
	return p.conn.FlushWithContext(ctx)
}
