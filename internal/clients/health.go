package clients

import (
	"context"
	"net/http"
	"time"
)

type HealthTarget struct {
	Name   string
	Client *Client
	Path   string
}

type HealthResult struct {
	Name       string `json:"name"`
	OK         bool   `json:"ok"`
	StatusCode int    `json:"statusCode,omitempty"`
	Error      string `json:"error,omitempty"`
}

const healthTimeout = 2 * time.Second

func CheckHealth(ctx context.Context, target HealthTarget) HealthResult {
	resp, err := target.Client.DoWithTimeout(ctx, Request{Method: http.MethodGet, Path: target.Path}, healthTimeout, "health check timed out")
	if err != nil {
		return HealthResult{Name: target.Name, OK: false, Error: err.Error()}
	}
	return HealthResult{Name: target.Name, OK: resp.OK(), StatusCode: resp.StatusCode}
}
