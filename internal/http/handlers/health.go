package handlers

import (
	"net/http"
	"sync"

	"github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/http/dto"
)

const serviceName = "storefront-gateway"

type HealthHandler struct {
	Targets []clients.HealthTarget
}

func (h *HealthHandler) Gateway(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, dto.HealthResponse{Status: "ok", Service: serviceName})
}

// Upstreams checks every service concurrently. It always answers 200; the
// status is "degraded" when any check fails.
func (h *HealthHandler) Upstreams(w http.ResponseWriter, r *http.Request) {
	results := make([]dto.UpstreamHealth, len(h.Targets))

	var wg sync.WaitGroup
	wg.Add(len(h.Targets))
	for i := range h.Targets {
		go func() {
			defer wg.Done()
			res := clients.CheckHealth(r.Context(), h.Targets[i])
			results[i] = dto.UpstreamHealth{
				Name:       res.Name,
				OK:         res.OK,
				StatusCode: res.StatusCode,
				Error:      res.Error,
			}
		}()
	}
	wg.Wait()

	status := "ok"
	for _, res := range results {
		if !res.OK {
			status = "degraded"
			break
		}
	}

	WriteJSON(w, http.StatusOK, dto.UpstreamsHealthResponse{
		Status:   status,
		Service:  serviceName,
		Upstream: results,
	})
}
