// Package auth reads bearer tokens. The gateway never verifies signatures; the
// upstream services do. Claims are only used to pick tenant scope and routes.
package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

const (
	HeaderAuthorization = "Authorization"
	bearerPrefix        = "Bearer "

	RoleCustomer = "customer"
)

type Claims struct {
	Role     string
	TenantID string
	Subject  string
	Email    string
}

func (c Claims) IsCustomer() bool { return c.Role == RoleCustomer }

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	tok := strings.TrimSpace(header[len(bearerPrefix):])
	if tok == "" {
		return "", false
	}
	return tok, true
}

var parser = jwt.NewParser()

// DecodeClaimsUnsafe decodes the payload segment without checking the signature.
// It reports false for anything that is not a three-segment JWT with a JSON object payload.
func DecodeClaimsUnsafe(token string) (Claims, bool) {
	if token == "" {
		return Claims{}, false
	}

	mc := jwt.MapClaims{}
	_, _, err := parser.ParseUnverified(token, mc)
	// An unknown or missing alg still leaves the payload decoded.
	if err != nil && !errors.Is(err, jwt.ErrTokenUnverifiable) {
		return Claims{}, false
	}

	return Claims{
		Role:     stringClaim(mc, "role"),
		TenantID: stringClaim(mc, "tenant_id"),
		Subject:  stringClaim(mc, "sub"),
		Email:    stringClaim(mc, "email"),
	}, true
}

func stringClaim(mc jwt.MapClaims, key string) string {
	if s, ok := mc[key].(string); ok {
		return s
	}
	return ""
}

type ctxKey struct{}

type Info struct {
	Token  string
	Claims Claims
	// Decoded is false when no token was sent or it could not be decoded.
	Decoded bool
}

func WithInfo(ctx context.Context, info Info) context.Context {
	return context.WithValue(ctx, ctxKey{}, info)
}

func FromContext(ctx context.Context) Info {
	if v, ok := ctx.Value(ctxKey{}).(Info); ok {
		return v
	}
	return Info{}
}
