package clients

import (
	"net/http"

	"github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/config"
)

// Upstream service names. They double as metric labels.
const (
	ServiceAuth         = "auth"
	ServiceOrder        = "order"
	ServiceProduct      = "product"
	ServicePayment      = "payment"
	ServiceNotification = "notification"
	ServiceTenant       = "tenant"
)

// Set maps service name to client.
type Set map[string]*Client

func NewSet(cfg config.Config, httpClient *http.Client, obs Observer) Set {
	set := Set{
		ServiceAuth:         NewClient(ServiceAuth, cfg.AuthURL, httpClient),
		ServiceOrder:        NewClient(ServiceOrder, cfg.OrderURL, httpClient),
		ServiceProduct:      NewClient(ServiceProduct, cfg.ProductURL, httpClient),
		ServicePayment:      NewClient(ServicePayment, cfg.PaymentURL, httpClient),
		ServiceNotification: NewClient(ServiceNotification, cfg.NotificationURL, httpClient),
		ServiceTenant:       NewClient(ServiceTenant, cfg.TenantURL, httpClient),
	}
	if obs != nil {
		for _, c := range set {
			c.Observer = obs
		}
	}
	return set
}

// Targets returns one /health target per service.
func (s Set) Targets() []HealthTarget {
	names := []string{ServiceAuth, ServiceOrder, ServiceProduct, ServicePayment, ServiceNotification, ServiceTenant}
	targets := make([]HealthTarget, 0, len(names))
	for _, n := range names {
		if c, ok := s[n]; ok {
			targets = append(targets, HealthTarget{Name: n + "-service", Client: c, Path: "/health"})
		}
	}
	return targets
}
