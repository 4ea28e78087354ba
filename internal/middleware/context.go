package middleware

type ctxKey string

const (
	ctxCorrelationID ctxKey = "correlation_id"
	ctxCartID        ctxKey = "cart_id"
)
