package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/auth"
	"github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/http/dto"
	"github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/tenant"
)

const (
	tenantCookieTTL = 7 * 24 * time.Hour

	msgInvalidTenant = "tenantId invalide"
)

type TenantHandler struct {
	DefaultTenantID string
}

// Current reports how this request's tenant was resolved.
func (h *TenantHandler) Current(w http.ResponseWriter, r *http.Request) {
	res, ok := tenant.FromContext(r.Context())
	if !ok {
		res = tenant.ResolveWithClaims(r, auth.FromContext(r.Context()), h.DefaultTenantID)
	}
	WriteJSON(w, http.StatusOK, res)
}

// Select stores the chosen tenant in the x-tenant-id cookie.
func (h *TenantHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req dto.SelectTenantRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, msgInvalidJSON)
		return
	}
	id, err := uuid.Parse(req.TenantID)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, msgInvalidTenant)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     tenant.CookieName,
		Value:    id.String(),
		Path:     "/",
		MaxAge:   int(tenantCookieTTL.Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
	WriteJSON(w, http.StatusOK, dto.SelectTenantResponse{TenantID: id.String()})
}
