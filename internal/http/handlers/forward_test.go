package handlers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/auth"
	"github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/logging"
	"github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/middleware"
	"github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/proxy"
)

const defaultTenant = "1574b85d-a3df-400f-9e82-98831aa32934"

func TestAuthorization(t *testing.T) {
	tests := []struct {
		name   string
		header string
		mode   proxy.AuthMode
		want   string
		ok     bool
	}{
		{"bearer rebuilt", "Bearer  abc ", proxy.AuthBearer, "Bearer abc", true},
		{"bearer missing", "", proxy.AuthBearer, "", false},
		{"bearer wrong scheme", "Token abc", proxy.AuthBearer, "", false},
		{"header verbatim", "Token abc", proxy.AuthHeader, "Token abc", true},
		{"header missing", "", proxy.AuthHeader, "", false},
		{"optional absent", "", proxy.AuthOptional, "", true},
		{"optional present", "Bearer x", proxy.AuthOptional, "Bearer x", true},
		{"none drops token", "Bearer x", proxy.AuthNone, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(auth.HeaderAuthorization, tt.header)
			}
			got, ok := Authorization(req, tt.mode)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

type softFailCounter struct{ routes []string }

func (c *softFailCounter) SoftFail(route string) { c.routes = append(c.routes, route) }

func newForwarder(t *testing.T, handler http.HandlerFunc) (*Forwarder, *softFailCounter, <-chan *http.Request) {
	t.Helper()
	seen := make(chan *http.Request, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		seen <- r.Clone(r.Context())
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	set := clients.Set{}
	for _, name := range []string{clients.ServiceAuth, clients.ServiceOrder, clients.ServiceProduct, clients.ServicePayment, clients.ServiceNotification, clients.ServiceTenant} {
		set[name] = clients.NewClient(name, srv.URL, &http.Client{})
	}
	counter := &softFailCounter{}
	return &Forwarder{
		Clients:         set,
		Logger:          logging.Discard(),
		Metrics:         counter,
		DefaultTenantID: defaultTenant,
		Timeout:         time.Second,
	}, counter, seen
}

func customerRequest(t *testing.T, method, target string) *http.Request {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"role": "customer"}).SignedString([]byte("k"))
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, nil)
	req.Header.Set(auth.HeaderAuthorization, "Bearer "+tok)
	return req
}

func TestCustomerOnTenantRouteWithoutMarketplaceTarget(t *testing.T) {
	f, _, seen := newForwarder(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	rt, ok := proxy.Lookup("orders.list")
	require.True(t, ok)

	req := customerRequest(t, http.MethodGet, "/api/orders")
	req.Header.Set("X-Tenant-ID", "t-explicit")
	rr := httptest.NewRecorder()
	middleware.AuthJWT(middleware.Tenant(defaultTenant)(f.Handle(rt))).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	got := <-seen
	assert.Equal(t, "/orders", got.URL.Path)
	assert.Equal(t, "t-explicit", got.Header.Get("X-Tenant-ID"))
}

func TestSoftFailIsCounted(t *testing.T) {
	f, counter, _ := newForwarder(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	rt, ok := proxy.Lookup("onboarding.complete_step")
	require.True(t, ok)

	req := httptest.NewRequest(http.MethodPost, "/api/onboarding/t1/complete-step", strings.NewReader(`{"step":2}`))
	req.Header.Set(auth.HeaderAuthorization, "Bearer x")
	rr := httptest.NewRecorder()
	f.Handle(rt).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true}`, rr.Body.String())
	assert.Equal(t, []string{"onboarding.complete_step"}, counter.routes)
}

func TestInvalidUpstreamJSONIsFailure(t *testing.T) {
	f, _, _ := newForwarder(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	})
	rt, ok := proxy.Lookup("tenants.list")
	require.True(t, ok)

	req := httptest.NewRequest(http.MethodGet, "/api/tenants", nil)
	req.Header.Set(auth.HeaderAuthorization, "Bearer x")
	res := f.Exchange(req, rt, "Bearer x", nil)

	assert.Equal(t, http.StatusInternalServerError, res.Status)
	assert.False(t, res.Upstream)
	assert.Equal(t, map[string]any{"message": "Erreur de connexion au service de tenants"}, res.Body)
}
