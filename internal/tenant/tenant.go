// Package tenant decides which tenant a storefront request is scoped to.
package tenant

import (
	"context"
	"net/http"
	"strings"

	"github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/auth"
)

const (
	HeaderTenantID = "X-Tenant-ID"
	CookieName     = "x-tenant-id"
)

type Source string

const (
	SourceHeader      Source = "header"
	SourceCookie      Source = "cookie"
	SourceClaim       Source = "claim"
	SourceDefault     Source = "default"
	SourceMarketplace Source = "marketplace"
)

// Resolution is computed per request and never cached.
type Resolution struct {
	TenantID string `json:"tenantId,omitempty"`
	Source   Source `json:"source"`
	// Marketplace is set for customers. They browse across tenants, so no
	// X-Tenant-ID is sent upstream.
	Marketplace bool `json:"marketplace"`
}

// Resolve walks header, cookie, token claim and finally defaultID. It never fails.
func Resolve(r *http.Request, defaultID string) Resolution {
	var claims auth.Claims
	decoded := false
	if tok, ok := auth.BearerToken(r.Header.Get(auth.HeaderAuthorization)); ok {
		claims, decoded = auth.DecodeClaimsUnsafe(tok)
	}
	return resolve(r, claims, decoded, defaultID)
}

// ResolveWithClaims is Resolve for callers that already decoded the token.
func ResolveWithClaims(r *http.Request, info auth.Info, defaultID string) Resolution {
	return resolve(r, info.Claims, info.Decoded, defaultID)
}

// ResolveExplicit ignores token claims: header, cookie, then defaultID.
// Customers use it on tenant-scoped routes that have no cross-tenant variant.
func ResolveExplicit(r *http.Request, defaultID string) Resolution {
	return resolve(r, auth.Claims{}, false, defaultID)
}

func resolve(r *http.Request, claims auth.Claims, decoded bool, defaultID string) Resolution {
	if decoded && claims.IsCustomer() {
		return Resolution{Source: SourceMarketplace, Marketplace: true}
	}
	if v := strings.TrimSpace(r.Header.Get(HeaderTenantID)); v != "" {
		return Resolution{TenantID: v, Source: SourceHeader}
	}
	if c, err := r.Cookie(CookieName); err == nil && strings.TrimSpace(c.Value) != "" {
		return Resolution{TenantID: strings.TrimSpace(c.Value), Source: SourceCookie}
	}
	if decoded && claims.TenantID != "" {
		return Resolution{TenantID: claims.TenantID, Source: SourceClaim}
	}
	return Resolution{TenantID: defaultID, Source: SourceDefault}
}

type ctxKey struct{}

func WithResolution(ctx context.Context, res Resolution) context.Context {
	return context.WithValue(ctx, ctxKey{}, res)
}

// FromContext returns the resolution stored by the tenant middleware.
func FromContext(ctx context.Context) (Resolution, bool) {
	res, ok := ctx.Value(ctxKey{}).(Resolution)
	return res, ok
}
