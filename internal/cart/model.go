package cart

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound    = errors.New("cart not found")
	ErrInvalidItem = errors.New("invalid cart item")
)

// Estimate constants. The order service recomputes authoritative totals.
const (
	TaxRate               = 0.1
	FreeShippingThreshold = 50.0
	ShippingCost          = 5.99
)

// Item holds display copies of name, price and image. They are not a source of truth.
type Item struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	ImageURL  string  `json:"imageUrl,omitempty"`
}

type State string

const (
	StateEmpty     State = "empty"
	StatePopulated State = "populated"
)

type Cart struct {
	ID        string    `json:"cartId"`
	Items     []Item    `json:"items"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c Cart) State() State {
	if len(c.Items) == 0 {
		return StateEmpty
	}
	return StatePopulated
}

type Summary struct {
	Subtotal  float64 `json:"subtotal"`
	Tax       float64 `json:"tax"`
	Shipping  float64 `json:"shipping"`
	Total     float64 `json:"total"`
	ItemCount int     `json:"itemCount"`
}

// Summarize computes estimated totals. Line amounts are summed exactly, then
// tax is subtotal*TaxRate in float64 so clients recomputing it get the same
// value. Shipping is free from 50 upwards.
func Summarize(items []Item) Summary {
	sum := decimal.Zero
	count := 0
	for _, it := range items {
		sum = sum.Add(decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity))))
		count += it.Quantity
	}
	subtotal := sum.InexactFloat64()
	tax := subtotal * TaxRate
	shipping := ShippingCost
	if subtotal >= FreeShippingThreshold {
		shipping = 0
	}

	return Summary{
		Subtotal:  subtotal,
		Tax:       tax,
		Shipping:  shipping,
		Total:     subtotal + tax + shipping,
		ItemCount: count,
	}
}

type EventType string

const (
	EventItemAdded       EventType = "item_added"
	EventQuantityUpdated EventType = "quantity_updated"
	EventItemRemoved     EventType = "item_removed"
	EventCleared         EventType = "cleared"
	EventCheckedOut      EventType = "checked_out"
)

// Event is published after every persisted mutation.
type Event struct {
	Type          EventType `json:"type"`
	CartID        string    `json:"cartId"`
	ProductID     string    `json:"productId,omitempty"`
	Items         []Item    `json:"items"`
	Summary       Summary   `json:"summary"`
	CorrelationID string    `json:"correlationId,omitempty"`
	OccurredAt    time.Time `json:"occurredAt"`
}
