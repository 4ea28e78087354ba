package dto

import "github.com/shopspring/decimal"

type AddCartItemRequest struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	ImageURL  string          `json:"imageUrl,omitempty"`
}

type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity"`
}

type CartSummary struct {
	Subtotal  float64 `json:"subtotal"`
	Tax       float64 `json:"tax"`
	Shipping  float64 `json:"shipping"`
	Total     float64 `json:"total"`
	ItemCount int     `json:"itemCount"`
}

type CartItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	ImageURL  string  `json:"imageUrl,omitempty"`
}

type Cart struct {
	CartID  string      `json:"cartId"`
	Items   []CartItem  `json:"items"`
	Summary CartSummary `json:"summary"`
}
