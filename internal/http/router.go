package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/config"
	"github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/http/handlers"
	"github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/metrics"
	"github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/middleware"
	"github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/proxy"
)

type Deps struct {
	Logger  *slog.Logger
	Cfg     config.Config
	Clients clients.Set
	Metrics *metrics.Metrics

	Cart   *cart.Service
	Broker *cart.Broker
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	// Middlewares (outer -> inner)
	r.Use(chimw.RealIP)
	r.Use(chimw.RequestID)
	r.Use(middleware.CorrelationID)
	r.Use(middleware.Recover(d.Logger))
	r.Use(middleware.CORS(d.Cfg.CORSAllowOrigins))
	r.Use(middleware.RequestLogger(d.Logger))
	if d.Metrics != nil {
		r.Use(middleware.Metrics(d.Metrics))
	}
	r.Use(middleware.AuthJWT)
	r.Use(middleware.Tenant(d.Cfg.DefaultTenantID))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteError(w, r, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	// Health
	health := &handlers.HealthHandler{Targets: d.Clients.Targets()}
	r.Get("/health", health.Gateway)
	r.Get("/health/upstreams", health.Upstreams)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	fwd := &handlers.Forwarder{
		Clients:         d.Clients,
		Logger:          d.Logger,
		DefaultTenantID: d.Cfg.DefaultTenantID,
		Timeout:         d.Cfg.UpstreamTimeout,
	}
	if d.Metrics != nil {
		fwd.Metrics = d.Metrics
	}

	// Proxied upstream endpoints
	for _, rt := range proxy.Routes() {
		r.Method(rt.Method, rt.Pattern, fwd.Handle(rt))
	}

	r.Post("/api/auth/logout", handlers.Logout)

	dash := &handlers.DashboardHandler{Forwarder: fwd}
	r.Get("/api/dashboard", dash.Get)

	ten := &handlers.TenantHandler{DefaultTenantID: d.Cfg.DefaultTenantID}
	r.Get("/api/tenant", ten.Current)
	r.Put("/api/tenant", ten.Select)

	// Cart (session keyed by the cart_id cookie)
	if d.Cart != nil {
		ch := &handlers.CartHandler{Service: d.Cart, Broker: d.Broker, Forwarder: fwd, Logger: d.Logger}
		r.Route("/api/cart", func(r chi.Router) {
			r.Use(middleware.CartSession)
			r.Get("/", ch.Get)
			r.Delete("/", ch.Clear)
			r.Get("/summary", ch.Summary)
			r.Post("/items", ch.AddItem)
			r.Patch("/items/{productId}", ch.UpdateItem)
			r.Delete("/items/{productId}", ch.RemoveItem)
			r.Post("/checkout", ch.Checkout)
			if d.Broker != nil {
				r.Get("/events", ch.Events)
			}
		})
	}

	return otelhttp.NewHandler(r, "storefront-gateway",
		otelhttp.WithFilter(func(r *http.Request) bool { return r.URL.Path != "/metrics" }),
	)
}
