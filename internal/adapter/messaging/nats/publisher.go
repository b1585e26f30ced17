package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/property-portal/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/property-portal/internal/property/domain"
)

const (
	PropertyCreatedSubject = "property.created"
	PropertyUpdatedSubject = "property.updated"
	PropertyDeletedSubject = "property.deleted"
)

// Conn is the part of *nats.Conn the publisher needs.
type Conn interface {
	Publish(subject string, data []byte) error
}

type PropertyEvent struct {
	Property   *domain.Property `json:"property,omitempty"`
	ID         string           `json:"id"`
	OccurredAt time.Time        `json:"occurredAt"`
}

type Publisher struct {
	conn Conn
	log  logger.Logger
	now  func() time.Time
}

func NewPublisher(conn Conn, log logger.Logger) (*Publisher, error) {
	if conn == nil {
		return nil, fmt.Errorf("NATS connection cannot be nil")
	}
	return &Publisher{conn: conn, log: log, now: time.Now}, nil
}

func (p *Publisher) PublishPropertyCreated(ctx context.Context, property *domain.Property) error {
	return p.publish(ctx, PropertyCreatedSubject, PropertyEvent{Property: property, ID: property.ID, OccurredAt: p.now()})
}

func (p *Publisher) PublishPropertyUpdated(ctx context.Context, property *domain.Property) error {
	return p.publish(ctx, PropertyUpdatedSubject, PropertyEvent{Property: property, ID: property.ID, OccurredAt: p.now()})
}

func (p *Publisher) PublishPropertyDeleted(ctx context.Context, id string) error {
	return p.publish(ctx, PropertyDeletedSubject, PropertyEvent{ID: id, OccurredAt: p.now()})
}

func (p *Publisher) publish(ctx context.Context, subject string, event PropertyEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event for %s: %w", subject, err)
	}
	if err := p.conn.Publish(subject, data); err != nil {
		p.log.Errorw("Failed to publish NATS message", "subject", subject, "property_id", event.ID, "error", err)
		return fmt.Errorf("failed to publish NATS message for %s: %w", subject, err)
	}
	p.log.Infow("Published NATS message", "subject", subject, "property_id", event.ID)
	return nil
}
