// Package proxy describes storefront endpoints as data. Each Route says which
// upstream it reaches, how it authenticates and how upstream errors are mapped.
// The executing handler lives in internal/http/handlers.
package proxy

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

type AuthMode int

const (
	AuthNone AuthMode = iota
	// AuthBearer requires "Bearer <token>" and forwards it rebuilt.
	AuthBearer
	// AuthHeader requires any Authorization value and forwards it verbatim.
	AuthHeader
	// AuthOptional forwards Authorization when present.
	AuthOptional
)

type TenantMode int

const (
	TenantNone TenantMode = iota
	// TenantScoped sends X-Tenant-ID. Customers use the marketplace target
	// instead when the route has one.
	TenantScoped
)

type BodyMode int

const (
	BodyNone BodyMode = iota
	BodyForward
)

// Target is the upstream path plus any query it needs.
type Target struct {
	Path  string
	Query url.Values
}

type TargetFunc func(p Params) Target

// Params gives target builders access to the inbound request and its decoded body.
type Params struct {
	Request *http.Request
	Body    map[string]any
}

func (p Params) Path(name string) string { return chi.URLParam(p.Request, name) }

func (p Params) Query(name string) string { return p.Request.URL.Query().Get(name) }

// Fixed returns a target with a constant path.
func Fixed(path string) TargetFunc {
	return func(Params) Target { return Target{Path: path} }
}

// Pattern fills {name} placeholders from the route's URL parameters.
func Pattern(tmpl string) TargetFunc {
	return func(p Params) Target {
		out := tmpl
		for {
			start := strings.IndexByte(out, '{')
			if start < 0 {
				break
			}
			end := strings.IndexByte(out[start:], '}')
			if end < 0 {
				break
			}
			name := out[start+1 : start+end]
			out = out[:start] + p.Path(name) + out[start+end+1:]
		}
		return Target{Path: out}
	}
}

type Route struct {
	Name    string
	Method  string
	Pattern string

	Service string
	Target  TargetFunc
	// MarketplaceTarget is used for customer tokens on TenantScoped routes.
	MarketplaceTarget TargetFunc
	// QueryAllow copies these inbound query parameters when non-empty.
	QueryAllow []string

	Auth               AuthMode
	MissingAuthMessage string

	Tenant TenantMode

	Body BodyMode
	// Required fields must be truthy in the inbound JSON object.
	Required        []string
	RequiredMessage string
	// Valid rejects a body with RequiredMessage when it returns false.
	Valid func(body map[string]any) bool
	// Rebuild replaces the inbound body before forwarding.
	Rebuild func(body map[string]any) any

	Transform func(v any) any

	// SoftFail, when set, is returned with 200 instead of any upstream failure.
	SoftFail any
	// SoftFailOnMissingAuth also answers with SoftFail when the token is absent.
	SoftFailOnMissingAuth bool

	// ErrorKey is "message" or "error".
	ErrorKey string
	// ErrorFields are read from the upstream error body in order. Nil means message, detail.
	ErrorFields []string
	// PassThroughErrors relays the upstream error JSON untouched.
	PassThroughErrors bool
	// ErrorExtra is merged into every error body this route writes.
	ErrorExtra     map[string]any
	DefaultError   string
	FailureMessage string
	TimeoutMessage string
	Timeout        time.Duration

	// SuccessStatus overrides the upstream status on success. 204 writes no body.
	SuccessStatus int
	// SuccessBody replaces the upstream payload on success.
	SuccessBody any
}

// Key is the method and pattern, as used by the soft-fail registry.
func (r Route) Key() string { return r.Method + " " + r.Pattern }

func (r Route) errorKey() string {
	if r.ErrorKey == "" {
		return "message"
	}
	return r.ErrorKey
}

// ErrorBody builds the {message} or {error} body for msg.
func (r Route) ErrorBody(msg string) map[string]any {
	body := make(map[string]any, len(r.ErrorExtra)+1)
	for k, v := range r.ErrorExtra {
		body[k] = v
	}
	body[r.errorKey()] = msg
	return body
}

// UpstreamTarget picks the target for the caller and applies the query allowlist.
func (r Route) UpstreamTarget(req *http.Request, marketplace bool, body any) Target {
	fn := r.Target
	if marketplace && r.MarketplaceTarget != nil {
		fn = r.MarketplaceTarget
	}
	m, _ := body.(map[string]any)
	t := fn(Params{Request: req, Body: m})
	if len(r.QueryAllow) > 0 {
		in := req.URL.Query()
		for _, name := range r.QueryAllow {
			if v := in.Get(name); v != "" {
				if t.Query == nil {
					t.Query = url.Values{}
				}
				t.Query.Set(name, v)
			}
		}
	}
	return t
}

// PathSegment returns v as a single upstream path segment. Only non-empty
// strings and numbers qualify; dot segments and separators are refused.
func PathSegment(v any) (string, bool) {
	var s string
	switch id := v.(type) {
	case string:
		s = strings.TrimSpace(id)
	case json.Number:
		s = id.String()
	default:
		return "", false
	}
	if s == "" || s == "." || s == ".." || strings.ContainsAny(s, "/\\?#") {
		return "", false
	}
	return s, true
}
