package outbox

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/brewlinehq/brewline-backend/pkg/config"
	"github.com/brewlinehq/brewline-backend/pkg/db/models"
	"github.com/brewlinehq/brewline-backend/pkg/enums"
	"github.com/brewlinehq/brewline-backend/pkg/outbox/payloads"
)

func testRegistry(t *testing.T) *EventRegistry {
	t.Helper()
	reg, err := NewEventRegistry(config.PubSubConfig{OrdersTopic: "bl-order-events"})
	require.NoError(t, err)
	return reg
}

func envelopeRow(t *testing.T, eventType enums.OutboxEventType, data interface{}) models.OutboxEvent {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	payload, err := json.Marshal(PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Data:       raw,
	})
	require.NoError(t, err)
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     eventType,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Payload:       payload,
	}
}

func TestRegistryResolvesOrderCreated(t *testing.T) {
	reg := testRegistry(t)
	row := envelopeRow(t, enums.EventOrderCreated, payloads.OrderCreatedEvent{
		OrderID:    uuid.New(),
		TotalCents: 1150,
		ItemCount:  2,
	})

	resolved, err := reg.Resolve(row)
	require.NoError(t, err)
	require.Equal(t, "bl-order-events", resolved.Descriptor.Topic)

	event, ok := resolved.Payload.(*payloads.OrderCreatedEvent)
	require.True(t, ok)
	require.Equal(t, 1150, event.TotalCents)
}

func TestRegistryResolvesStatusChange(t *testing.T) {
	reg := testRegistry(t)
	row := envelopeRow(t, enums.EventOrderPickedUp, payloads.OrderStatusChangedEvent{
		From: enums.OrderStatusAssigned,
		To:   enums.OrderStatusPickedUp,
	})

	resolved, err := reg.Resolve(row)
	require.NoError(t, err)
	event, ok := resolved.Payload.(*payloads.OrderStatusChangedEvent)
	require.True(t, ok)
	require.Equal(t, enums.OrderStatusPickedUp, event.To)
}

func TestRegistryRejectsUnknownEvent(t *testing.T) {
	reg := testRegistry(t)
	row := envelopeRow(t, enums.OutboxEventType("order.refunded"), payloads.OrderStatusChangedEvent{})

	_, err := reg.Resolve(row)
	var nonRetry NonRetryableError
	require.ErrorAs(t, err, &nonRetry)
}

func TestRegistryRejectsAggregateMismatch(t *testing.T) {
	reg := testRegistry(t)
	row := envelopeRow(t, enums.EventOrderCreated, payloads.OrderCreatedEvent{})
	row.AggregateType = enums.OutboxAggregateType("cart")

	_, err := reg.Resolve(row)
	var nonRetry NonRetryableError
	require.True(t, errors.As(err, &nonRetry))
}

func TestRegistryRejectsEmptyPayload(t *testing.T) {
	reg := testRegistry(t)
	row := envelopeRow(t, enums.EventOrderCreated, nil)

	_, err := reg.Resolve(row)
	var nonRetry NonRetryableError
	require.ErrorAs(t, err, &nonRetry)
}

func TestRegistryRequiresOrdersTopic(t *testing.T) {
	_, err := NewEventRegistry(config.PubSubConfig{})
	require.Error(t, err)
}
