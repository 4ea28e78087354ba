package dto

import "github.com/shopspring/decimal"

type Product struct {
	ID    ID              `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Stock decimal.Decimal `json:"stock"`
}

type FavoriteStatus struct {
	IsFavorite bool `json:"isFavorite"`
}
