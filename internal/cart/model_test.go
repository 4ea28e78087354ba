package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name  string
		items []Item
		want  Summary
	}{
		{
			name:  "empty cart pays shipping",
			items: nil,
			want:  Summary{Shipping: 5.99, Total: 5.99},
		},
		{
			name:  "below threshold",
			items: []Item{{ProductID: "p1", Price: 10, Quantity: 2}, {ProductID: "p2", Price: 4.5, Quantity: 1}},
			want:  Summary{Subtotal: 24.5, Tax: 2.45, Shipping: 5.99, Total: 32.94, ItemCount: 3},
		},
		{
			name:  "exactly at threshold ships free",
			items: []Item{{ProductID: "p1", Price: 25, Quantity: 2}},
			want:  Summary{Subtotal: 50, Tax: 5, Shipping: 0, Total: 55, ItemCount: 2},
		},
		{
			name:  "subtotal summed without float drift",
			items: []Item{{ProductID: "p1", Price: 0.1, Quantity: 3}},
			want:  Summary{Subtotal: 0.3, Tax: 0.03, Shipping: 5.99, Total: 6.32, ItemCount: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tt.items)
			assert.Equal(t, tt.want.Subtotal, got.Subtotal)
			assert.Equal(t, tt.want.Shipping, got.Shipping)
			assert.Equal(t, tt.want.ItemCount, got.ItemCount)
			assert.InDelta(t, tt.want.Tax, got.Tax, 1e-9)
			assert.InDelta(t, tt.want.Total, got.Total, 1e-9)
		})
	}
}

func TestSummarizeTaxIsTenPercentOfSubtotal(t *testing.T) {
	carts := map[string][]Item{
		"3":     {{ProductID: "p1", Price: 3, Quantity: 1}},
		"0.3":   {{ProductID: "p1", Price: 0.1, Quantity: 3}},
		"59.97": {{ProductID: "p1", Price: 19.99, Quantity: 3}},
		"mixed": {{ProductID: "p1", Price: 12.5, Quantity: 2}, {ProductID: "p2", Price: 0.7, Quantity: 1}},
	}
	for name, items := range carts {
		t.Run(name, func(t *testing.T) {
			s := Summarize(items)
			assert.Equal(t, s.Subtotal*0.1, s.Tax)
			assert.Equal(t, s.Subtotal+s.Tax+s.Shipping, s.Total)
		})
	}
}

func TestCartState(t *testing.T) {
	assert.Equal(t, StateEmpty, Cart{}.State())
	assert.Equal(t, StatePopulated, Cart{Items: []Item{{ProductID: "p"}}}.State())
}
