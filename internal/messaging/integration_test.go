//go:build integration

package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-fontenele/storefront/internal/domain"
	"github.com/joao-fontenele/storefront/internal/pgtest"
)

var errStop = errors.New("stop consuming")

func TestProducerConsumerRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	brokers := pgtest.SetupKafka(ctx, t)

	producer := NewProducer(brokers, domain.TopicOrderPlaced)
	defer func() { _ = producer.Close() }()

	event := domain.OrderPlacedEvent{OrderID: "6f1c1f7e-0000-4000-8000-000000000001", UserID: 7, Email: "anna@example.com"}
	require.Eventually(t, func() bool {
		return producer.Publish(ctx, event.OrderID, event) == nil
	}, 30*time.Second, time.Second)

	consumer := NewConsumer(brokers, domain.TopicOrderPlaced, "storefront-test", WithStartOffset(kafka.FirstOffset))
	defer func() { _ = consumer.Close() }()

	var got domain.OrderPlacedEvent
	err := consumer.Consume(ctx, func(ctx context.Context, payload []byte) error {
		if err := json.Unmarshal(payload, &got); err != nil {
			return err
		}
		return errStop
	})

	require.ErrorIs(t, err, errStop)
	assert.Equal(t, event.OrderID, got.OrderID)
	assert.Equal(t, event.Email, got.Email)
}
