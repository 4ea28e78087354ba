package proxy

import (
	"bytes"
	"encoding/json"

	"github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/transform"
)

var defaultErrorFields = []string{"message", "detail"}

// DecodeBody parses an upstream body. Empty or invalid JSON reads as an empty object.
func DecodeBody(b []byte) any {
	v, err := DecodeJSON(b)
	if err != nil {
		return map[string]any{}
	}
	return v
}

// DecodeJSON parses b keeping numbers exact. An empty body is an empty object.
func DecodeJSON(b []byte) (any, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return map[string]any{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// ErrorMessage picks the first truthy field of an upstream error body, falling
// back to def. Non-string values are ignored.
func ErrorMessage(body any, fields []string, def string) string {
	m, ok := body.(map[string]any)
	if !ok {
		return def
	}
	if fields == nil {
		fields = defaultErrorFields
	}
	for _, f := range fields {
		if s, ok := m[f].(string); ok && s != "" {
			return s
		}
	}
	return def
}

// UpstreamErrorMessage applies the route's error mapping to an upstream body.
func (r Route) UpstreamErrorMessage(body any) string {
	return ErrorMessage(body, r.ErrorFields, r.DefaultError)
}

// MissingRequired reports whether any required field is absent or falsy.
func MissingRequired(body any, fields []string) bool {
	if len(fields) == 0 {
		return false
	}
	m, ok := body.(map[string]any)
	if !ok {
		return true
	}
	for _, f := range fields {
		if !transform.Truthy(m[f]) {
			return true
		}
	}
	return false
}
