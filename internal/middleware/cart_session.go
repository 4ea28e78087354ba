package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	CartCookieName = "cart_id"
	CartCookieTTL  = 7 * 24 * time.Hour
)

// CartSession assigns the cart_id cookie when it is missing or not a UUID and
// stores the id in the context.
func CartSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if c, err := r.Cookie(CartCookieName); err == nil {
			if parsed, err := uuid.Parse(c.Value); err == nil {
				id = parsed.String()
			}
		}
		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     CartCookieName,
				Value:    id,
				Path:     "/",
				MaxAge:   int(CartCookieTTL.Seconds()),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxCartID, id)))
	})
}

func GetCartID(ctx context.Context) string {
	if s, ok := ctx.Value(ctxCartID).(string); ok {
		return s
	}
	return ""
}
