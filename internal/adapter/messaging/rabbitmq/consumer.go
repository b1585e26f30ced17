package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/streadway/amqp"

	"github.com/Abdurahmanit/GroupProject/property-portal/internal/platform/logger"
)

const (
	DefaultQueue  = "properties_queue"
	handleTimeout = 10 * time.Second
	actionCreate  = "create"
	actionUpdate  = "update"
	actionDelete  = "delete"
)

// PropertyMessage is published by the property backend whenever a record
// changes.
type PropertyMessage struct {
	Action     string `json:"action"`
	PropertyID string `json:"property_id"`
}

// Invalidator drops cached data for a property.
type Invalidator interface {
	InvalidateProperty(ctx context.Context, id string) error
}

type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// Consumer keeps the portal cache coherent with changes made to the
// property backend by other clients.
type Consumer struct {
	conn        *amqp.Connection
	channel     *amqp.Channel
	queue       string
	invalidator Invalidator
	log         logger.Logger
	done        chan struct{}
}

func NewConsumer(url, queue string, invalidator Invalidator, log logger.Logger) (*Consumer, error) {
	if queue == "" {
		queue = DefaultQueue
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}
	log.Infow("RabbitMQ consumer connected", "queue", queue)
	return &Consumer{
		conn:        conn,
		channel:     ch,
		queue:       queue,
		invalidator: invalidator,
		log:         log,
		done:        make(chan struct{}),
	}, nil
}

// Start registers the consumer and handles deliveries in the background
// until the channel closes.
func (c *Consumer) Start() error {
	if err := c.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}
	msgs, err := c.channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}
	go func() {
		defer close(c.done)
		for msg := range msgs {
			c.process(msg.Body, msg)
		}
	}()
	return nil
}

func (c *Consumer) process(body []byte, ack acknowledger) {
	var msg PropertyMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		c.log.Warnw("RabbitMQConsumer.process: malformed message", "error", err)
		_ = ack.Nack(false, false)
		return
	}
	if msg.PropertyID == "" {
		c.log.Warnw("RabbitMQConsumer.process: message without property_id", "action", msg.Action)
		_ = ack.Nack(false, false)
		return
	}
	switch msg.Action {
	case actionCreate, actionUpdate, actionDelete:
	default:
		c.log.Warnw("RabbitMQConsumer.process: unknown action", "action", msg.Action)
		_ = ack.Nack(false, false)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()
	if err := c.invalidator.InvalidateProperty(ctx, msg.PropertyID); err != nil {
		c.log.Errorw("RabbitMQConsumer.process: invalidation failed", "action", msg.Action, "property_id", msg.PropertyID, "error", err)
		_ = ack.Nack(false, true)
		return
	}
	c.log.Debugw("RabbitMQConsumer.process: cache invalidated", "action", msg.Action, "property_id", msg.PropertyID)
	if err := ack.Ack(false); err != nil {
		c.log.Warnw("RabbitMQConsumer.process: ack failed", "error", err)
	}
}

func (c *Consumer) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing connection: %w", err))
		}
	}
	return errors.Join(errs...)
}
