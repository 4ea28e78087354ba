package clients

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/middleware"
)

// Observer receives one call per upstream round trip.
type Observer interface {
	ObserveUpstream(service, outcome string, d time.Duration)
}

type Client struct {
	Name     string
	BaseURL  *url.URL
	HTTP     *http.Client
	Observer Observer
}

func NewClient(name string, baseURL string, httpClient *http.Client) *Client {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		// Fail fast: config error
		panic(fmt.Sprintf("invalid %s base url %q: %v", name, baseURL, err))
	}
	return &Client{Name: name, BaseURL: u, HTTP: httpClient}
}

// Request describes one upstream call. Path is appended to the base URL path.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   []byte
	Header http.Header
}

// Response is a fully buffered upstream response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (r *Response) OK() bool { return r.StatusCode >= 200 && r.StatusCode < 300 }

func (c *Client) URL(path string, query url.Values) *url.URL {
	u := *c.BaseURL
	u.Path = strings.TrimRight(c.BaseURL.Path, "/") + path
	u.RawPath = ""
	u.RawQuery = ""
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return &u
}

func (c *Client) Do(ctx context.Context, method, path, rawQuery string, body io.Reader, inHeaders http.Header) (*http.Response, error) {
	u := c.URL(path, nil)
	u.RawQuery = rawQuery

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}

	copyHeaders(req.Header, inHeaders)

	// Ensure correlation id propagated downstream
	if cid := middleware.GetCorrelationID(ctx); cid != "" {
		req.Header.Set(middleware.HeaderCorrelationID, cid)
	}

	return c.HTTP.Do(req)
}

func copyHeaders(dst, src http.Header) {
	for k, vv := range src {
		if isHopByHopHeader(k) {
			continue
		}
		if strings.EqualFold(k, "Host") {
			continue
		}
		for _, v := range vv {
			dst.Add(k, v)
		}
	}
}

// Hop-by-hop headers (RFC 7230)
func isHopByHopHeader(k string) bool {
	switch http.CanonicalHeaderKey(k) {
	case "Connection", "Proxy-Connection", "Keep-Alive",
		"Proxy-Authenticate", "Proxy-Authorization",
		"Te", "Trailer", "Transfer-Encoding", "Upgrade":
		return true
	default:
		return false
	}
}

func (c *Client) observe(outcome string, start time.Time) {
	if c.Observer != nil {
		c.Observer.ObserveUpstream(c.Name, outcome, time.Since(start))
	}
}

func bodyReader(b []byte) io.Reader {
	if b == nil {
		return nil
	}
	return bytes.NewReader(b)
}
