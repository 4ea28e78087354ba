package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/dashboard"
	"github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/http/dto"
	"github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/proxy"
)

const msgNotAuthenticated = "Non authentifié"

type DashboardHandler struct {
	Forwarder *Forwarder
	Now       func() time.Time
}

// Get fetches orders, products and payments in parallel through their proxy
// routes. A failing source contributes an empty list and is named in partial.
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	authz, ok := Authorization(r, proxy.AuthBearer)
	if !ok {
		WriteJSON(w, http.StatusUnauthorized, dto.Message{Message: msgNotAuthenticated})
		return
	}

	var (
		orders   []dto.Order
		products []dto.Product
		payments []dto.Payment
		partial  [3]bool
	)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		orders, partial[0] = fetchList[dto.Order](h.Forwarder, r, "orders.list", authz)
	}()
	go func() {
		defer wg.Done()
		products, partial[1] = fetchList[dto.Product](h.Forwarder, r, "products.list", authz)
	}()
	go func() {
		defer wg.Done()
		payments, partial[2] = fetchList[dto.Payment](h.Forwarder, r, "payments.list", authz)
	}()
	wg.Wait()

	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	d := dashboard.Build(orders, products, payments, now())
	for i, name := range []string{"orders", "products", "payments"} {
		if partial[i] {
			d.Partial = append(d.Partial, name)
		}
	}

	WriteJSON(w, http.StatusOK, d)
}

// fetchList runs the named route on its raw upstream payload and decodes a
// JSON list. Entries that do not decode are skipped. Any other failure yields
// an empty list and true.
func fetchList[T any](f *Forwarder, r *http.Request, name, authz string) ([]T, bool) {
	rt, ok := proxy.Lookup(name)
	if !ok {
		return []T{}, true
	}
	rt.Transform = nil
	if rt.Auth == proxy.AuthNone {
		authz = ""
	}

	res := f.Exchange(r, rt, authz, nil)
	if !res.Upstream {
		return []T{}, true
	}
	b, err := json.Marshal(res.Body)
	if err != nil {
		return []T{}, true
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		f.Logger.WarnContext(r.Context(), "dashboard source is not a list", "route", name, "err", err)
		return []T{}, true
	}
	out := make([]T, 0, len(raw))
	for i, entry := range raw {
		var v T
		if err := json.Unmarshal(entry, &v); err != nil {
			f.Logger.WarnContext(r.Context(), "skipping dashboard entry", "route", name, "index", i, "err", err)
			continue
		}
		out = append(out, v)
	}
	return out, false
}
