package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"blackboxscan/internal/models"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Event types carried in the AMQP Type property.
const (
	EventContributionCreated = "contribution.created"
	EventContactMessage      = "contact.message"
)

const publishTimeout = 10 * time.Second

// EventPublisher announces site events to downstream consumers.
type EventPublisher interface {
	PublishContributionCreated(ctx context.Context, c *models.Contribution) error
	PublishContactMessage(ctx context.Context, m *models.ContactMessage) error
	Close() error
}

// ContributionCreatedPayload is the body of a contribution.created event.
type ContributionCreatedPayload struct {
	EventID      uuid.UUID               `json:"event_id"`
	Contribution models.Contribution     `json:"contribution"`
	Type         models.ContributionType `json:"type"`
}

// ContactMessagePayload is the body of a contact.message event.
type ContactMessagePayload struct {
	EventID uuid.UUID             `json:"event_id"`
	Message models.ContactMessage `json:"message"`
}

type rabbitMQPublisher struct {
	channel           *amqp.Channel
	contributionQueue string
	contactQueue      string
	logger            *zap.Logger

	// amqp channels are not safe for concurrent publishing.
	mu sync.Mutex
}

// NewRabbitMQPublisher opens a channel on conn and declares both queues.
func NewRabbitMQPublisher(conn *amqp.Connection, contributionQueue, contactQueue string, logger *zap.Logger) (EventPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("event publisher: failed to open channel: %w", err)
	}

	for _, queue := range []string{contributionQueue, contactQueue} {
		_, err = ch.QueueDeclare(
			queue,
			true,  // durable
			false, // delete when unused
			false, // exclusive
			false, // no-wait
			nil,   // arguments
		)
		if err != nil {
			ch.Close()
			return nil, fmt.Errorf("event publisher: failed to declare queue '%s': %w", queue, err)
		}
	}

	logger.Info("RabbitMQ event publisher initialized",
		zap.String("contribution_queue", contributionQueue),
		zap.String("contact_queue", contactQueue),
	)
	return &rabbitMQPublisher{
		channel:           ch,
		contributionQueue: contributionQueue,
		contactQueue:      contactQueue,
		logger:            logger.Named("event_publisher"),
	}, nil
}

func (p *rabbitMQPublisher) PublishContributionCreated(ctx context.Context, c *models.Contribution) error {
	payload := ContributionCreatedPayload{EventID: uuid.New(), Contribution: *c, Type: c.Type}
	return p.publish(ctx, p.contributionQueue, EventContributionCreated, payload, zap.String("contribution_id", c.ID.String()))
}

func (p *rabbitMQPublisher) PublishContactMessage(ctx context.Context, m *models.ContactMessage) error {
	payload := ContactMessagePayload{EventID: uuid.New(), Message: *m}
	return p.publish(ctx, p.contactQueue, EventContactMessage, payload, zap.String("message_id", m.ID.String()))
}

func (p *rabbitMQPublisher) publish(ctx context.Context, queue, eventType string, payload any, idField zap.Field) error {
	if p.channel == nil {
		p.logger.Error("RabbitMQ channel is not initialized")
		return errors.New("rabbitmq channel is not initialized")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error("Failed to marshal event payload", zap.String("event", eventType), idField, zap.Error(err))
		return fmt.Errorf("failed to prepare %s event: %w", eventType, err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.Lock()
	err = p.channel.PublishWithContext(ctx,
		"",    // exchange (default)
		queue, // routing key
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Type:         eventType,
			Body:         body,
			Timestamp:    time.Now(),
			AppId:        "blackboxscan",
		},
	)
	p.mu.Unlock()
	if err != nil {
		p.logger.Error("Failed to publish event", zap.String("queue", queue), zap.String("event", eventType), idField, zap.Error(err))
		return fmt.Errorf("failed to publish to queue %s: %w", queue, err)
	}

	p.logger.Info("Event published", zap.String("queue", queue), zap.String("event", eventType), idField)
	return nil
}

func (p *rabbitMQPublisher) Close() error {
	if p.channel == nil {
		return nil
	}
	return p.channel.Close()
}

type noopPublisher struct {
	logger *zap.Logger
}

// NewNoopPublisher returns a publisher that only logs. It is used when no
// broker URL is configured.
func NewNoopPublisher(logger *zap.Logger) EventPublisher {
	return &noopPublisher{logger: logger.Named("noop_publisher")}
}

func (p *noopPublisher) PublishContributionCreated(_ context.Context, c *models.Contribution) error {
	p.logger.Debug("Event publishing disabled, dropping contribution.created", zap.String("contribution_id", c.ID.String()))
	return nil
}

func (p *noopPublisher) PublishContactMessage(_ context.Context, m *models.ContactMessage) error {
	p.logger.Debug("Event publishing disabled, dropping contact.message", zap.String("message_id", m.ID.String()))
	return nil
}

func (p *noopPublisher) Close() error { return nil }
