package events

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventsExchange        = "ecommerce.events"
	CartUpdatedRoutingKey = "cart.updated.v1"
	CartUpdatedEventName  = "CartUpdated"
	cartUpdatedSchema     = "contracts/events/cart/CartUpdated.v1.payload.schema.json"
	producerName          = "storefront-gateway"
)

// Channel is the subset of *amqp.Channel the publisher needs.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

func declareEventsExchange(ch Channel) error {
	return ch.ExchangeDeclare(
		EventsExchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
}
