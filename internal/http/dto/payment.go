package dto

import "github.com/shopspring/decimal"

// CreateIntentRequest is rebuilt from the inbound body so only these fields reach the payment service.
type CreateIntentRequest struct {
	Amount   any `json:"amount"`
	Currency any `json:"currency"`
	OrderID  any `json:"order_id"`
}

type Payment struct {
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
	CreatedAt string          `json:"createdAt"`
}
