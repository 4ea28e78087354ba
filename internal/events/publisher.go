package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/cart"
)

const publishTimeout = 3 * time.Second

// Publisher sends cart mutations to the events exchange as CartUpdated.
type Publisher struct {
	ch       Channel
	producer string

	mu   sync.Mutex
	seqs map[string]int64
}

type PublisherOptions struct {
	Producer string
}

// NewPublisher opens a channel on conn.
func NewPublisher(conn *amqp.Connection, opts PublisherOptions) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	p, err := NewPublisherWithChannel(ch, opts)
	if err != nil {
		_ = ch.Close()
		return nil, err
	}
	return p, nil
}

func NewPublisherWithChannel(ch Channel, opts PublisherOptions) (*Publisher, error) {
	if err := declareEventsExchange(ch); err != nil {
		return nil, fmt.Errorf("declare events exchange: %w", err)
	}
	producer := opts.Producer
	if producer == "" {
		producer = producerName
	}
	return &Publisher{ch: ch, producer: producer, seqs: make(map[string]int64)}, nil
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

func (p *Publisher) Publish(ctx context.Context, ev cart.Event) error {
	env := p.newCartUpdatedEvent(ev)
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal CartUpdated envelope: %w", err)
	}
	return p.publishJSON(ctx, CartUpdatedRoutingKey, body)
}

// nextSequence numbers events per cart within this process.
func (p *Publisher) nextSequence(partition string) int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seqs[partition]++
	return p.seqs[partition]
}

func (p *Publisher) newCartUpdatedEvent(ev cart.Event) CartUpdatedEvent {
	payload := CartUpdatedPayload{
		CartID:    ev.CartID,
		Change:    string(ev.Type),
		ProductID: ev.ProductID,
		Items:     make([]CartUpdatedItem, 0, len(ev.Items)),
		ItemCount: ev.Summary.ItemCount,
		Subtotal:  ev.Summary.Subtotal,
		Total:     ev.Summary.Total,
	}
	for _, it := range ev.Items {
		payload.Items = append(payload.Items, CartUpdatedItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}

	occurredAt := ev.OccurredAt.UTC()
	if ev.OccurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}
	seq := p.nextSequence(ev.CartID)

	return CartUpdatedEvent{
		EventName:     CartUpdatedEventName,
		EventVersion:  1,
		EventID:       uuid.NewString(),
		CorrelationID: ev.CorrelationID,
		Producer:      p.producer,
		PartitionKey:  ev.CartID,
		Sequence:      &seq,
		OccurredAt:    occurredAt,
		Schema:        cartUpdatedSchema,
		Payload:       payload,
	}
}

func (p *Publisher) publishJSON(ctx context.Context, routingKey string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		EventsExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}
