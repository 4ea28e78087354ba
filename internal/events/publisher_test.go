package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/cart"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	declared   []string
	declareErr error
	publishErr error
	published  []published
	closed     bool
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	f.declared = append(f.declared, name+":"+kind)
	return f.declareErr
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("publish without deadline")
	}
	f.published = append(f.published, published{exchange: exchange, key: key, msg: msg})
	return f.publishErr
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestPublisherDeclaresExchange(t *testing.T) {
	ch := &fakeChannel{}
	p, err := NewPublisherWithChannel(ch, PublisherOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"ecommerce.events:topic"}, ch.declared)

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestPublisherDeclareFailure(t *testing.T) {
	_, err := NewPublisherWithChannel(&fakeChannel{declareErr: errors.New("denied")}, PublisherOptions{})
	assert.ErrorContains(t, err, "declare events exchange")
}

func TestPublishCartUpdatedEnvelope(t *testing.T) {
	ch := &fakeChannel{}
	p, err := NewPublisherWithChannel(ch, PublisherOptions{})
	require.NoError(t, err)

	now := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	items := []cart.Item{{ProductID: "p1", Name: "Mug", Price: 30, Quantity: 2}}
	ev := cart.Event{
		Type:          cart.EventItemAdded,
		CartID:        "cart-1",
		ProductID:     "p1",
		Items:         items,
		Summary:       cart.Summarize(items),
		CorrelationID: "corr-1",
		OccurredAt:    now,
	}

	require.NoError(t, p.Publish(context.Background(), ev))
	require.NoError(t, p.Publish(context.Background(), ev))
	require.Len(t, ch.published, 2)

	msg := ch.published[0]
	assert.Equal(t, EventsExchange, msg.exchange)
	assert.Equal(t, CartUpdatedRoutingKey, msg.key)
	assert.Equal(t, "application/json", msg.msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.msg.DeliveryMode)

	var env CartUpdatedEvent
	require.NoError(t, json.Unmarshal(msg.msg.Body, &env))
	require.NoError(t, env.Validate(CartUpdatedEventName, 1))
	assert.Equal(t, "cart-1", env.PartitionKey)
	assert.Equal(t, "corr-1", env.CorrelationID)
	assert.Equal(t, producerName, env.Producer)
	assert.Equal(t, now, env.OccurredAt)
	assert.NotEmpty(t, env.EventID)
	require.NotNil(t, env.Sequence)
	assert.Equal(t, int64(1), *env.Sequence)

	assert.Equal(t, "item_added", env.Payload.Change)
	assert.Equal(t, []CartUpdatedItem{{ProductID: "p1", Quantity: 2, Price: 30}}, env.Payload.Items)
	assert.Equal(t, 2, env.Payload.ItemCount)
	assert.Equal(t, float64(60), env.Payload.Subtotal)
	assert.Equal(t, float64(66), env.Payload.Total)

	var second CartUpdatedEvent
	require.NoError(t, json.Unmarshal(ch.published[1].msg.Body, &second))
	assert.Equal(t, int64(2), *second.Sequence)
	assert.NotEqual(t, env.EventID, second.EventID)
}

func TestPublishClearedCartHasEmptyItems(t *testing.T) {
	ch := &fakeChannel{}
	p, err := NewPublisherWithChannel(ch, PublisherOptions{Producer: "test"})
	require.NoError(t, err)

	require.NoError(t, p.Publish(context.Background(), cart.Event{Type: cart.EventCleared, CartID: "c"}))

	var raw map[string]any
	require.NoError(t, json.Unmarshal(ch.published[0].msg.Body, &raw))
	payload := raw["payload"].(map[string]any)
	assert.Equal(t, []any{}, payload["items"])
	assert.Equal(t, "test", raw["producer"])
}

func TestPublishErrorPropagates(t *testing.T) {
	p, err := NewPublisherWithChannel(&fakeChannel{publishErr: errors.New("closed")}, PublisherOptions{})
	require.NoError(t, err)
	assert.Error(t, p.Publish(context.Background(), cart.Event{CartID: "c"}))
}

func TestEnvelopeValidate(t *testing.T) {
	env := CartUpdatedEvent{EventName: CartUpdatedEventName, EventVersion: 1, PartitionKey: "c"}
	assert.NoError(t, env.Validate(CartUpdatedEventName, 1))
	assert.Error(t, env.Validate("Other", 1))
	assert.Error(t, env.Validate(CartUpdatedEventName, 2))
	env.PartitionKey = ""
	assert.Error(t, env.Validate(CartUpdatedEventName, 1))
}
