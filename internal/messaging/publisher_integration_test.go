//go:build integration

package messaging_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"blackboxscan/internal/messaging"
	"blackboxscan/internal/models"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

func TestRabbitMQPublisher(t *testing.T) {
	ctx := context.Background()

	container, err := rabbitmq.Run(ctx,
		"rabbitmq:3-management-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Server startup complete"),
		),
	)
	require.NoError(t, err, "Failed to start RabbitMQ container")
	defer func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate RabbitMQ container: %v", err)
		}
	}()

	amqpURL, err := container.AmqpURL(ctx)
	require.NoError(t, err)
	conn, err := amqp.Dial(amqpURL)
	require.NoError(t, err)
	defer conn.Close()

	publisher, err := messaging.NewRabbitMQPublisher(conn, "test_contributions", "test_contacts", zap.NewNop())
	require.NoError(t, err)
	defer publisher.Close()

	consumeCh, err := conn.Channel()
	require.NoError(t, err)
	defer consumeCh.Close()

	t.Run("contribution created", func(t *testing.T) {
		c := &models.Contribution{
			ID:          uuid.New(),
			Title:       "Robust watermark benchmark",
			Description: "A dataset of attacked images",
			Type:        models.ContributionDataset,
			AuthorName:  "Sam",
			AuthorEmail: "sam@example.com",
			CreatedAt:   time.Now().UTC(),
		}
		require.NoError(t, publisher.PublishContributionCreated(ctx, c))

		msg := getOne(t, consumeCh, "test_contributions")
		assert.Equal(t, messaging.EventContributionCreated, msg.Type)
		assert.Equal(t, uint8(amqp.Persistent), msg.DeliveryMode)

		var payload messaging.ContributionCreatedPayload
		require.NoError(t, json.Unmarshal(msg.Body, &payload))
		assert.Equal(t, c.ID, payload.Contribution.ID)
		assert.Equal(t, models.ContributionDataset, payload.Type)
	})

	t.Run("contact message", func(t *testing.T) {
		m := &models.ContactMessage{ID: uuid.New(), Name: "Ana", Email: "ana@example.com", Subject: "Hi", Message: "Hello"}
		require.NoError(t, publisher.PublishContactMessage(ctx, m))

		msg := getOne(t, consumeCh, "test_contacts")
		assert.Equal(t, messaging.EventContactMessage, msg.Type)

		var payload messaging.ContactMessagePayload
		require.NoError(t, json.Unmarshal(msg.Body, &payload))
		assert.Equal(t, "Hello", payload.Message.Message)
	})
}

func getOne(t *testing.T, ch *amqp.Channel, queue string) amqp.Delivery {
	t.Helper()
	require.Eventually(t, func() bool {
		q, err := ch.QueueDeclarePassive(queue, true, false, false, false, nil)
		return err == nil && q.Messages > 0
	}, 10*time.Second, 100*time.Millisecond)

	msg, ok, err := ch.Get(queue, true)
	require.NoError(t, err)
	require.True(t, ok)
	return msg
}
