package proxy

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoutesAreUniqueAndComplete(t *testing.T) {
	seen := map[string]bool{}
	names := map[string]bool{}
	for _, rt := range Routes() {
		require.NotEmpty(t, rt.Name)
		require.NotNil(t, rt.Target, rt.Name)
		require.NotEmpty(t, rt.Service, rt.Name)
		require.NotEmpty(t, rt.FailureMessage, rt.Name)
		require.NotEmpty(t, rt.TimeoutMessage, rt.Name)
		assert.False(t, seen[rt.Key()], "duplicate route %s", rt.Key())
		assert.False(t, names[rt.Name], "duplicate name %s", rt.Name)
		seen[rt.Key()] = true
		names[rt.Name] = true
		if rt.Auth != AuthNone && rt.Auth != AuthOptional {
			assert.NotEmpty(t, rt.MissingAuthMessage, rt.Name)
		}
		if len(rt.Required) > 0 {
			assert.NotEmpty(t, rt.RequiredMessage, rt.Name)
		}
	}
}

func TestSoftFailRegistryMatchesRoutes(t *testing.T) {
	byKey := map[string]Route{}
	for _, rt := range Routes() {
		byKey[rt.Key()] = rt
	}

	for key, def := range SoftFailRoutes {
		rt, ok := byKey[key]
		require.True(t, ok, "soft-fail entry %q has no route", key)
		assert.Equal(t, def, rt.SoftFail)
	}

	assert.True(t, byKey["GET /api/products/{id}/is-favorite"].SoftFailOnMissingAuth)
	assert.False(t, byKey["GET /api/notifications/unread-count"].SoftFailOnMissingAuth)
	assert.Nil(t, byKey["GET /api/orders"].SoftFail)

	b, err := json.Marshal(byKey["GET /api/onboarding/{tenantId}/progress"].SoftFail)
	require.NoError(t, err)
	assert.JSONEq(t, `{"currentStep":1,"completedSteps":[],"isComplete":false}`, string(b))
}

func TestErrorMessage(t *testing.T) {
	body := map[string]any{"error": "card declined", "message": "generic", "detail": "d"}

	assert.Equal(t, "generic", ErrorMessage(body, nil, "def"))
	assert.Equal(t, "card declined", ErrorMessage(body, []string{"error", "message"}, "def"))
	assert.Equal(t, "d", ErrorMessage(map[string]any{"message": "", "detail": "d"}, nil, "def"))
	assert.Equal(t, "def", ErrorMessage(map[string]any{"message": 42}, nil, "def"))
	assert.Equal(t, "def", ErrorMessage([]any{"x"}, nil, "def"))
	assert.Equal(t, "def", ErrorMessage(DecodeBody([]byte("<html>")), nil, "def"))
}

func TestUpstreamErrorMessageFallsBackToDetail(t *testing.T) {
	for _, name := range []string{
		"auth.login", "auth.register", "auth.validate",
		"products.get", "products.list", "products.reviews.create",
		"products.validate_batch", "products.decrement_stock",
		"favorites.add", "favorites.remove", "payment.create_intent",
	} {
		rt, ok := Lookup(name)
		require.True(t, ok, name)
		assert.Equal(t, "upstream detail", rt.UpstreamErrorMessage(map[string]any{"detail": "upstream detail"}), name)
		assert.Equal(t, "boom", rt.UpstreamErrorMessage(map[string]any{"message": "boom", "detail": "d"}), name)
		assert.Equal(t, rt.DefaultError, rt.UpstreamErrorMessage(map[string]any{}), name)
	}

	get, _ := Lookup("products.get")
	assert.Equal(t, map[string]any{"error": "upstream detail"}, get.ErrorBody(get.UpstreamErrorMessage(map[string]any{"detail": "upstream detail"})))
}

func TestErrorBody(t *testing.T) {
	rt := Route{ErrorKey: "error"}
	assert.Equal(t, map[string]any{"error": "x"}, rt.ErrorBody("x"))

	validate := Route{ErrorExtra: map[string]any{"valid": false}}
	assert.Equal(t, map[string]any{"valid": false, "message": "Token manquant"}, validate.ErrorBody("Token manquant"))
}

func TestDecodeBody(t *testing.T) {
	assert.Equal(t, map[string]any{}, DecodeBody(nil))
	assert.Equal(t, map[string]any{}, DecodeBody([]byte("  ")))
	assert.Equal(t, map[string]any{}, DecodeBody([]byte("oops")))
	assert.Equal(t, []any{json.Number("1")}, DecodeBody([]byte("[1]")))
}

func TestMissingRequired(t *testing.T) {
	fields := []string{"amount", "order_id"}
	assert.False(t, MissingRequired(map[string]any{"amount": json.Number("10"), "order_id": "o1"}, fields))
	assert.True(t, MissingRequired(map[string]any{"amount": json.Number("0"), "order_id": "o1"}, fields))
	assert.True(t, MissingRequired(map[string]any{"amount": json.Number("5")}, fields))
	assert.True(t, MissingRequired([]any{}, fields))
	assert.False(t, MissingRequired(nil, nil))
}

func withURLParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestPattern(t *testing.T) {
	r := withURLParams(httptest.NewRequest(http.MethodGet, "/x", nil), "tenantId", "t-1")
	got := Pattern("/api/v1/onboarding/{tenantId}/progress")(Params{Request: r})
	assert.Equal(t, "/api/v1/onboarding/t-1/progress", got.Path)
}

func TestProductTargets(t *testing.T) {
	var list Route
	for _, rt := range Routes() {
		if rt.Name == "products.list" {
			list = rt
		}
	}
	require.NotNil(t, list.Target)

	cases := []struct {
		query       string
		marketplace bool
		path        string
		q           url.Values
	}{
		{"", false, "/products", nil},
		{"search=mug", false, "/products/search", url.Values{"q": {"mug"}}},
		{"category=home", false, "/products/category/home", nil},
		{"search=mug&category=home", true, "/products/all/search", url.Values{"q": {"mug"}}},
		{"category=home", true, "/products/all", url.Values{"category": {"home"}}},
		{"", true, "/products/all", nil},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, "/api/products?"+tc.query, nil)
		got := list.UpstreamTarget(r, tc.marketplace, nil)
		assert.Equal(t, tc.path, got.Path, tc.query)
		assert.Equal(t, tc.q, got.Query, tc.query)
	}
}

func TestQueryAllow(t *testing.T) {
	rt := Route{Target: Fixed("/h"), QueryAllow: []string{"type", "status"}}
	r := httptest.NewRequest(http.MethodGet, "/api/notifications/history?type=sms&status=&page=2", nil)

	got := rt.UpstreamTarget(r, false, nil)
	assert.Equal(t, url.Values{"type": {"sms"}}, got.Query)
}

func TestRebuildCreateIntent(t *testing.T) {
	got := rebuildCreateIntent(map[string]any{"amount": json.Number("12"), "order_id": "o1", "extra": "x"})
	b, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":12,"currency":"eur","order_id":"o1"}`, string(b))

	got = rebuildCreateIntent(map[string]any{"amount": json.Number("12"), "order_id": "o1", "currency": "usd"})
	b, _ = json.Marshal(got)
	assert.JSONEq(t, `{"amount":12,"currency":"usd","order_id":"o1"}`, string(b))
}

func TestFavoriteTargetUsesBody(t *testing.T) {
	got := favoriteTarget(Params{Body: map[string]any{"productId": "p-9"}})
	assert.Equal(t, "/products/p-9/favorite", got.Path)

	got = favoriteTarget(Params{Body: map[string]any{"productId": json.Number("42")}})
	assert.Equal(t, "/products/42/favorite", got.Path)
}

func TestPathSegment(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
		ok   bool
	}{
		{"string", " p-9 ", "p-9", true},
		{"number", json.Number("7"), "7", true},
		{"empty", "  ", "", false},
		{"dot", ".", "", false},
		{"parent", "..", "", false},
		{"traversal", "../admin", "", false},
		{"backslash", `a\b`, "", false},
		{"query", "p1?x=1", "", false},
		{"object", map[string]any{"a": 1}, "", false},
		{"bool", true, "", false},
		{"nil", nil, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PathSegment(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	rt, ok := Lookup("favorites.add")
	require.True(t, ok)
	require.NotNil(t, rt.Valid)
	assert.True(t, rt.Valid(map[string]any{"productId": "p1"}))
	assert.False(t, rt.Valid(map[string]any{"productId": "../admin"}))
}

func TestLookup(t *testing.T) {
	rt, ok := Lookup("payments.list")
	require.True(t, ok)
	assert.Equal(t, "GET /api/payments", rt.Key())

	_, ok = Lookup("nope")
	assert.False(t, ok)
}
