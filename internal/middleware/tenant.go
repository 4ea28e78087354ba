package middleware

import (
	"net/http"

	"github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/auth"
	"github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/tenant"
)

// Tenant stores the request's tenant resolution. It must run after AuthJWT.
func Tenant(defaultID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := tenant.ResolveWithClaims(r, auth.FromContext(r.Context()), defaultID)
			next.ServeHTTP(w, r.WithContext(tenant.WithResolution(r.Context(), res)))
		})
	}
}
