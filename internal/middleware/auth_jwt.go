package middleware

import (
	"net/http"

	"github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/auth"
)

// AuthJWT decodes the bearer token, if any, into the request context. It never
// rejects a request: routes decide whether a token is required and upstream
// services verify it.
func AuthJWT(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var info auth.Info
		if tok, ok := auth.BearerToken(r.Header.Get(auth.HeaderAuthorization)); ok {
			info.Token = tok
			info.Claims, info.Decoded = auth.DecodeClaimsUnsafe(tok)
		}
		next.ServeHTTP(w, r.WithContext(auth.WithInfo(r.Context(), info)))
	})
}
