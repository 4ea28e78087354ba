package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/auth"
	"github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/tenant"
)

// CORS allows the listed origins. A single "*" reflects any origin but never
// allows credentials; cookies and tokens cross origins only for an explicit list.
func CORS(allowOrigins []string) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", auth.HeaderAuthorization, HeaderCorrelationID, tenant.HeaderTenantID},
		ExposedHeaders:   []string{HeaderCorrelationID},
		MaxAge:           300,
	}
	if len(allowOrigins) == 1 && allowOrigins[0] == "*" {
		opts.AllowOriginFunc = func(*http.Request, string) bool { return true }
	} else {
		opts.AllowedOrigins = allowOrigins
		opts.AllowCredentials = true
	}
	return cors.Handler(opts)
}
