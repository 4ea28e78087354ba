package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/http/dto"
	"github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/middleware"
	"github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/proxy"
)

const (
	msgProductRequired  = "productId requis"
	msgQuantityRequired = "quantity requis"
	msgEmptyCart        = "Le panier est vide"
	msgCartUnavailable  = "Panier indisponible"

	sseKeepAlive = 25 * time.Second
)

type CartHandler struct {
	Service   *cart.Service
	Broker    *cart.Broker
	Forwarder *Forwarder
	Logger    *slog.Logger
}

func toDTO(c cart.Cart) dto.Cart {
	items := make([]dto.CartItem, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, dto.CartItem(it))
	}
	return dto.Cart{CartID: c.ID, Items: items, Summary: dto.CartSummary(cart.Summarize(c.Items))}
}

func (h *CartHandler) cartID(r *http.Request) string {
	return middleware.GetCartID(r.Context())
}

func (h *CartHandler) ctx(r *http.Request) *http.Request {
	return r.WithContext(cart.WithCorrelationID(r.Context(), middleware.GetCorrelationID(r.Context())))
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, toDTO(h.Service.Get(r.Context(), h.cartID(r))))
}

func (h *CartHandler) Summary(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, dto.CartSummary(h.Service.Summary(r.Context(), h.cartID(r))))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req dto.AddCartItemRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, msgInvalidJSON)
		return
	}
	if strings.TrimSpace(req.ProductID) == "" {
		WriteError(w, r, http.StatusBadRequest, msgProductRequired)
		return
	}

	r = h.ctx(r)
	c, err := h.Service.AddItem(r.Context(), h.cartID(r), cart.Item{
		ProductID: req.ProductID,
		Name:      req.Name,
		Price:     req.Price.InexactFloat64(),
		Quantity:  req.Quantity,
		ImageURL:  req.ImageURL,
	})
	h.respond(w, r, c, err)
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateCartItemRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, msgInvalidJSON)
		return
	}
	if req.Quantity == nil {
		WriteError(w, r, http.StatusBadRequest, msgQuantityRequired)
		return
	}

	r = h.ctx(r)
	c, err := h.Service.UpdateQuantity(r.Context(), h.cartID(r), chi.URLParam(r, "productId"), *req.Quantity)
	h.respond(w, r, c, err)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	r = h.ctx(r)
	c, err := h.Service.RemoveItem(r.Context(), h.cartID(r), chi.URLParam(r, "productId"))
	h.respond(w, r, c, err)
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	r = h.ctx(r)
	c, err := h.Service.Clear(r.Context(), h.cartID(r))
	h.respond(w, r, c, err)
}

func (h *CartHandler) respond(w http.ResponseWriter, r *http.Request, c cart.Cart, err error) {
	if err != nil {
		if errors.Is(err, cart.ErrInvalidItem) {
			WriteError(w, r, http.StatusBadRequest, msgProductRequired)
			return
		}
		h.Logger.ErrorContext(r.Context(), "cart write failed", "cart_id", h.cartID(r), "err", err)
		WriteError(w, r, http.StatusInternalServerError, msgCartUnavailable)
		return
	}
	WriteJSON(w, http.StatusOK, toDTO(c))
}

// Checkout turns the cart into an order upstream and clears it on success.
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	rt := proxy.CreateOrderRoute()
	authz, ok := Authorization(r, rt.Auth)
	if !ok {
		WriteJSON(w, http.StatusUnauthorized, rt.ErrorBody(rt.MissingAuthMessage))
		return
	}

	r = h.ctx(r)
	id := h.cartID(r)
	c := h.Service.Get(r.Context(), id)
	if c.State() == cart.StateEmpty {
		WriteJSON(w, http.StatusBadRequest, rt.ErrorBody(msgEmptyCart))
		return
	}

	items := make([]dto.CreateOrderItem, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, dto.CreateOrderItem{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price})
	}

	res := h.Forwarder.Exchange(r, rt, authz, dto.CreateOrderRequest{Items: items})
	if res.Upstream {
		if _, err := h.Service.CheckedOut(r.Context(), id); err != nil {
			h.Logger.ErrorContext(r.Context(), "clear cart after checkout", "cart_id", id, "err", err)
		}
	}
	WriteResult(w, res)
}

// Events streams cart changes for the session as server-sent events. The
// current cart is sent first.
func (h *CartHandler) Events(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	id := h.cartID(r)

	events, cancel := h.Broker.Subscribe(id)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	c := h.Service.Get(r.Context(), id)
	if err := writeSSE(w, "snapshot", toDTO(c)); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		h.Logger.WarnContext(r.Context(), "sse flush unsupported", "err", err)
		return
	}

	ticker := time.NewTicker(sseKeepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, open := <-events:
			if !open {
				return
			}
			if err := writeSSE(w, string(ev.Type), toDTO(cart.Cart{ID: ev.CartID, Items: ev.Items})); err != nil {
				return
			}
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

func writeSSE(w http.ResponseWriter, event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}
