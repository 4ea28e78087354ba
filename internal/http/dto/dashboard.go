package dto

type DashboardStats struct {
	TotalRevenue       float64 `json:"totalRevenue"`
	TotalOrders        int     `json:"totalOrders"`
	AverageOrderValue  float64 `json:"averageOrderValue"`
	TotalProducts      int     `json:"totalProducts"`
	PlatformCommission float64 `json:"platformCommission"`
	NetRevenue         float64 `json:"netRevenue"`
}

type SalesDataPoint struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
}

type TopProduct struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

type Dashboard struct {
	Stats       DashboardStats   `json:"stats"`
	Sales       []SalesDataPoint `json:"sales"`
	TopProducts []TopProduct     `json:"topProducts"`
	Orders      int              `json:"orderCount"`
	Payments    int              `json:"paymentCount"`
	Partial     []string         `json:"partial,omitempty"`
}
