package dto

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// CreateOrderItem is the line shape the order service accepts.
type CreateOrderItem struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type CreateOrderRequest struct {
	Items []CreateOrderItem `json:"items"`
}

type OrderItem struct {
	ProductID ID              `json:"productId"`
	Quantity  decimal.Decimal `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Order is the subset of the order service payload the dashboard reads.
type Order struct {
	Total     decimal.Decimal `json:"total"`
	Status    string          `json:"status"`
	CreatedAt string          `json:"createdAt"`
	Items     OrderItems      `json:"items"`
}

// OrderItems accepts either a JSON array or a JSON-encoded string holding one.
// A string that does not parse yields no items.
type OrderItems []OrderItem

func (o *OrderItems) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		var items []OrderItem
		if err := json.Unmarshal([]byte(s), &items); err != nil {
			*o = nil
			return nil
		}
		*o = items
		return nil
	}
	var items []OrderItem
	if err := json.Unmarshal(b, &items); err != nil {
		return err
	}
	*o = items
	return nil
}
