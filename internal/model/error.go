package model

// ErrorResponse is the body for gateway-originated failures (panics, unknown routes).
// Upstream-mapped errors use the route's own {message} or {error} shape instead.
type ErrorResponse struct {
	Error         string `json:"error"`
	CorrelationID string `json:"correlationId,omitempty"`
}
