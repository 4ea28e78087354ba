// Package dashboard aggregates orders, products and payments into the
// vendor dashboard view.
package dashboard

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/http/dto"
)

const (
	StatusCancelled = "cancelled"
	UnknownProduct  = "Produit inconnu"
	salesMonths     = 6
	topProductLimit = 5
)

var DefaultCommissionRate = decimal.RequireFromString("0.05")

var frenchMonths = [...]string{
	"janv.", "févr.", "mars", "avr.", "mai", "juin",
	"juil.", "août", "sept.", "oct.", "nov.", "déc.",
}

func MonthLabel(m time.Month) string { return frenchMonths[m-1] }

func counted(o dto.Order) bool { return o.Status != StatusCancelled }

func CalculateStats(orders []dto.Order, products []dto.Product, commissionRate decimal.Decimal) dto.DashboardStats {
	revenue := decimal.Zero
	count := 0
	for _, o := range orders {
		if !counted(o) {
			continue
		}
		revenue = revenue.Add(o.Total)
		count++
	}

	avg := decimal.Zero
	if count > 0 {
		avg = revenue.Div(decimal.NewFromInt(int64(count)))
	}
	commission := revenue.Mul(commissionRate)

	return dto.DashboardStats{
		TotalRevenue:       revenue.InexactFloat64(),
		TotalOrders:        count,
		AverageOrderValue:  avg.InexactFloat64(),
		TotalProducts:      len(products),
		PlatformCommission: commission.InexactFloat64(),
		NetRevenue:         revenue.Sub(commission).InexactFloat64(),
	}
}

var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseCreatedAt(s string, loc *time.Location) (time.Time, bool) {
	for _, layout := range createdAtLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SalesByMonth buckets non-cancelled orders into the six calendar months
// ending with the month of now, oldest first.
func SalesByMonth(orders []dto.Order, now time.Time) []dto.SalesDataPoint {
	loc := now.Location()
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)

	points := make([]dto.SalesDataPoint, 0, salesMonths)
	for i := salesMonths - 1; i >= 0; i-- {
		start := current.AddDate(0, -i, 0)
		end := start.AddDate(0, 1, 0)

		revenue := decimal.Zero
		n := 0
		for _, o := range orders {
			if !counted(o) {
				continue
			}
			at, ok := parseCreatedAt(o.CreatedAt, loc)
			if !ok || at.Before(start) || !at.Before(end) {
				continue
			}
			revenue = revenue.Add(o.Total)
			n++
		}

		points = append(points, dto.SalesDataPoint{
			Month:   MonthLabel(start.Month()),
			Revenue: revenue.InexactFloat64(),
			Orders:  n,
		})
	}
	return points
}

// TopProducts ranks products by quantity sold in non-cancelled orders.
// Ties keep first-seen order.
func TopProducts(orders []dto.Order, products []dto.Product) []dto.TopProduct {
	type agg struct {
		quantity decimal.Decimal
		revenue  decimal.Decimal
	}
	stats := map[string]*agg{}
	var order []string

	for _, o := range orders {
		if !counted(o) {
			continue
		}
		for _, it := range o.Items {
			id := string(it.ProductID)
			a, ok := stats[id]
			if !ok {
				a = &agg{}
				stats[id] = a
				order = append(order, id)
			}
			a.quantity = a.quantity.Add(it.Quantity)
			a.revenue = a.revenue.Add(it.Price.Mul(it.Quantity))
		}
	}

	names := make(map[string]string, len(products))
	for _, p := range products {
		if _, seen := names[string(p.ID)]; !seen {
			names[string(p.ID)] = p.Name
		}
	}

	out := make([]dto.TopProduct, 0, len(order))
	for _, id := range order {
		name := names[id]
		if name == "" {
			name = UnknownProduct
		}
		out = append(out, dto.TopProduct{
			ID:       id,
			Name:     name,
			Quantity: stats[id].quantity.InexactFloat64(),
			Revenue:  stats[id].revenue.InexactFloat64(),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Quantity > out[j].Quantity })
	if len(out) > topProductLimit {
		out = out[:topProductLimit]
	}
	return out
}

// Build assembles the full dashboard payload.
func Build(orders []dto.Order, products []dto.Product, payments []dto.Payment, now time.Time) dto.Dashboard {
	return dto.Dashboard{
		Stats:       CalculateStats(orders, products, DefaultCommissionRate),
		Sales:       SalesByMonth(orders, now),
		TopProducts: TopProducts(orders, products),
		Orders:      len(orders),
		Payments:    len(payments),
	}
}
