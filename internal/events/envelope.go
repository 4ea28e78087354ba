package events

import (
	"fmt"
	"time"
)

// EventEnvelope is the common envelope for events on the exchange.
type EventEnvelope[T any] struct {
	EventName     string    `json:"eventName"`
	EventVersion  int       `json:"eventVersion"`
	EventID       string    `json:"eventId"`
	CorrelationID string    `json:"correlationId,omitempty"`
	CausationID   string    `json:"causationId,omitempty"`
	Producer      string    `json:"producer"`
	PartitionKey  string    `json:"partitionKey"`
	Sequence      *int64    `json:"sequence,omitempty"`
	OccurredAt    time.Time `json:"occurredAt"`
	Schema        string    `json:"schema"`
	Payload       T         `json:"payload"`
}

func (e EventEnvelope[T]) Validate(expectedName string, expectedVersion int) error {
	if e.EventName != expectedName {
		return fmt.Errorf("unexpected eventName: %s", e.EventName)
	}
	if e.EventVersion != expectedVersion {
		return fmt.Errorf("unexpected eventVersion: %d", e.EventVersion)
	}
	if e.PartitionKey == "" {
		return fmt.Errorf("missing partitionKey")
	}
	return nil
}

type CartUpdatedItem struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type CartUpdatedPayload struct {
	CartID    string            `json:"cartId"`
	Change    string            `json:"change"`
	ProductID string            `json:"productId,omitempty"`
	Items     []CartUpdatedItem `json:"items"`
	ItemCount int               `json:"itemCount"`
	Subtotal  float64           `json:"subtotal"`
	Total     float64           `json:"total"`
}

type CartUpdatedEvent = EventEnvelope[CartUpdatedPayload]
