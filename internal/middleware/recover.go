package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/model"
)

func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.ErrorContext(r.Context(), "panic",
					"err", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"correlation_id", GetCorrelationID(r.Context()),
					"stack", string(debug.Stack()),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(model.ErrorResponse{
					Error:         "internal server error",
					CorrelationID: GetCorrelationID(r.Context()),
				})
			}()
			next.ServeHTTP(w, r)
		})
	}
}
