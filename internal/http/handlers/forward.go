package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/auth"
	"github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/middleware"
	"github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/model"
	"github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/proxy"
	"github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/tenant"
)

const (
	maxBodyBytes   = 1 << 20
	msgInvalidJSON = "Corps de requête JSON invalide"
)

type SoftFailObserver interface {
	SoftFail(route string)
}

// Forwarder executes proxy routes against the upstream services.
type Forwarder struct {
	Clients         clients.Set
	Logger          *slog.Logger
	Metrics         SoftFailObserver
	DefaultTenantID string
	Timeout         time.Duration
}

// Result is the status and JSON body a proxied call answers with.
// A nil Body is written as no body.
type Result struct {
	Status int
	Body   any
	// Upstream is true when the upstream answered 2xx.
	Upstream bool
}

// Handle builds the handler for rt.
func (f *Forwarder) Handle(rt proxy.Route) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authz, ok := Authorization(r, rt.Auth)
		if !ok {
			if rt.SoftFail != nil && rt.SoftFailOnMissingAuth {
				WriteResult(w, f.softFail(rt))
				return
			}
			WriteJSON(w, http.StatusUnauthorized, rt.ErrorBody(rt.MissingAuthMessage))
			return
		}

		var body any
		if rt.Body == proxy.BodyForward {
			raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
			if err == nil {
				body, err = proxy.DecodeJSON(raw)
			}
			if err != nil {
				if rt.SoftFail != nil {
					f.Logger.WarnContext(r.Context(), "unreadable body on soft-fail route", "route", rt.Name, "err", err)
					WriteResult(w, f.softFail(rt))
					return
				}
				WriteJSON(w, http.StatusBadRequest, rt.ErrorBody(msgInvalidJSON))
				return
			}
			if proxy.MissingRequired(body, rt.Required) || !validBody(rt, body) {
				WriteJSON(w, http.StatusBadRequest, rt.ErrorBody(rt.RequiredMessage))
				return
			}
		}

		WriteResult(w, f.Exchange(r, rt, authz, body))
	}
}

// Authorization returns the header value to forward for mode, and false when a
// required token is missing.
func Authorization(r *http.Request, mode proxy.AuthMode) (string, bool) {
	header := r.Header.Get(auth.HeaderAuthorization)
	switch mode {
	case proxy.AuthBearer:
		tok, ok := auth.BearerToken(header)
		if !ok {
			return "", false
		}
		return "Bearer " + tok, true
	case proxy.AuthHeader:
		return header, header != ""
	case proxy.AuthOptional:
		return header, true
	default:
		return "", true
	}
}

// Exchange performs the upstream call for rt with an already validated body
// and maps the outcome. body is the decoded inbound JSON, or nil.
func (f *Forwarder) Exchange(r *http.Request, rt proxy.Route, authz string, body any) Result {
	ctx := r.Context()

	marketplace := false
	var tenantID string
	if rt.Tenant == proxy.TenantScoped {
		res := f.resolution(r)
		switch {
		case res.Marketplace && rt.MarketplaceTarget != nil:
			marketplace = true
		case res.Marketplace:
			tenantID = tenant.ResolveExplicit(r, f.DefaultTenantID).TenantID
		default:
			tenantID = res.TenantID
		}
	}

	target := rt.UpstreamTarget(r, marketplace, body)

	header := http.Header{}
	header.Set("Content-Type", "application/json")
	if authz != "" {
		header.Set(auth.HeaderAuthorization, authz)
	}
	if tenantID != "" {
		header.Set(tenant.HeaderTenantID, tenantID)
	}

	var payload []byte
	if rt.Body == proxy.BodyForward {
		out := body
		if rt.Rebuild != nil {
			m, _ := body.(map[string]any)
			out = rt.Rebuild(m)
		}
		if out != nil {
			b, err := json.Marshal(out)
			if err != nil {
				return f.failure(r, rt, err)
			}
			payload = b
		}
	}

	client, ok := f.Clients[rt.Service]
	if !ok {
		return f.failure(r, rt, errors.New("no client for service "+rt.Service))
	}

	timeout := rt.Timeout
	if timeout <= 0 {
		timeout = f.Timeout
	}

	resp, err := client.DoWithTimeout(ctx, clients.Request{
		Method: rt.Method,
		Path:   target.Path,
		Query:  target.Query,
		Body:   payload,
		Header: header,
	}, timeout, rt.TimeoutMessage)
	if err != nil {
		return f.failure(r, rt, err)
	}

	if !resp.OK() {
		if rt.SoftFail != nil {
			f.Logger.WarnContext(ctx, "upstream error, soft-failing", "route", rt.Name, "status", resp.StatusCode)
			return f.softFail(rt)
		}
		decoded := proxy.DecodeBody(resp.Body)
		if rt.PassThroughErrors {
			return Result{Status: resp.StatusCode, Body: decoded}
		}
		return Result{Status: resp.StatusCode, Body: rt.ErrorBody(rt.UpstreamErrorMessage(decoded))}
	}

	decoded, err := proxy.DecodeJSON(resp.Body)
	if err != nil {
		return f.failure(r, rt, err)
	}
	if rt.Transform != nil {
		decoded = rt.Transform(decoded)
	}
	if rt.SuccessBody != nil {
		decoded = rt.SuccessBody
	}

	status := resp.StatusCode
	if rt.SuccessStatus != 0 {
		status = rt.SuccessStatus
	}
	if status == http.StatusNoContent {
		decoded = nil
	}
	return Result{Status: status, Body: decoded, Upstream: true}
}

func (f *Forwarder) resolution(r *http.Request) tenant.Resolution {
	if res, ok := tenant.FromContext(r.Context()); ok {
		return res
	}
	return tenant.ResolveWithClaims(r, auth.FromContext(r.Context()), f.DefaultTenantID)
}

// failure maps network, timeout and decode errors.
func (f *Forwarder) failure(r *http.Request, rt proxy.Route, err error) Result {
	f.Logger.ErrorContext(r.Context(), "upstream call failed",
		"route", rt.Name,
		"service", rt.Service,
		"err", err,
	)
	if rt.SoftFail != nil {
		return f.softFail(rt)
	}

	var te *clients.TimeoutError
	if errors.As(err, &te) {
		return Result{Status: http.StatusInternalServerError, Body: rt.ErrorBody(te.Message)}
	}
	return Result{Status: http.StatusInternalServerError, Body: rt.ErrorBody(rt.FailureMessage)}
}

func (f *Forwarder) softFail(rt proxy.Route) Result {
	if f.Metrics != nil {
		f.Metrics.SoftFail(rt.Name)
	}
	return Result{Status: http.StatusOK, Body: rt.SoftFail}
}

func WriteResult(w http.ResponseWriter, res Result) {
	if res.Body == nil && res.Status == http.StatusNoContent {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	WriteJSON(w, res.Status, res.Body)
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes a gateway-originated error with the correlation id.
func WriteError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	WriteJSON(w, status, model.ErrorResponse{
		Error:         msg,
		CorrelationID: middleware.GetCorrelationID(r.Context()),
	})
}

func validBody(rt proxy.Route, body any) bool {
	if rt.Valid == nil {
		return true
	}
	m, ok := body.(map[string]any)
	return ok && rt.Valid(m)
}
