package handlers

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/logging"
	"github.com/andreasstove999/ecommerce-system/storefront-gateway-go/internal/middleware"
)

// readEvent returns the next "event:" name and its data line.
func readEvent(t *testing.T, r *bufio.Reader) (string, string) {
	t.Helper()
	var name, data string
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		case line == "" && name != "":
			return name, data
		}
	}
}

func TestCartEventsStream(t *testing.T) {
	broker := cart.NewBroker()
	svc := cart.NewService(cart.NewMemoryStore(), logging.Discard(), cart.WithNotifier(broker))
	h := &CartHandler{Service: svc, Broker: broker, Logger: logging.Discard()}

	r := chi.NewRouter()
	r.With(middleware.CartSession).Get("/api/cart/events", h.Events)
	srv := httptest.NewServer(r)
	defer srv.Close()

	cartID := uuid.NewString()
	_, err := svc.AddItem(context.Background(), cartID, cart.Item{ProductID: "p1", Price: 4, Quantity: 1})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/cart/events", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: middleware.CartCookieName, Value: cartID})

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	body := bufio.NewReader(resp.Body)
	name, data := readEvent(t, body)
	assert.Equal(t, "snapshot", name)
	assert.Contains(t, data, `"productId":"p1"`)

	require.Eventually(t, func() bool { return broker.Subscribers(cartID) == 1 }, time.Second, 10*time.Millisecond)

	_, err = svc.UpdateQuantity(context.Background(), cartID, "p1", 3)
	require.NoError(t, err)

	name, data = readEvent(t, body)
	assert.Equal(t, string(cart.EventQuantityUpdated), name)
	assert.Contains(t, data, `"itemCount":3`)

	cancel()
	require.Eventually(t, func() bool { return broker.Subscribers(cartID) == 0 }, time.Second, 10*time.Millisecond)
}

type failingStore struct{ cart.Store }

func (failingStore) Load(context.Context, string) ([]cart.Item, error) { return nil, nil }

func (failingStore) Save(context.Context, string, []cart.Item) error {
	return assert.AnError
}

func TestCartWriteFailureIs500(t *testing.T) {
	h := &CartHandler{
		Service: cart.NewService(failingStore{}, logging.Discard()),
		Logger:  logging.Discard(),
	}
	r := chi.NewRouter()
	r.Use(middleware.CorrelationID)
	r.With(middleware.CartSession).Post("/api/cart/items", h.AddItem)

	req := httptest.NewRequest(http.MethodPost, "/api/cart/items", strings.NewReader(`{"productId":"p1","price":1}`))
	req.Header.Set(middleware.HeaderCorrelationID, "cid-9")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"Panier indisponible","correlationId":"cid-9"}`, rr.Body.String())
}

func TestAddItemRejectsInvalidBody(t *testing.T) {
	h := &CartHandler{Service: cart.NewService(cart.NewMemoryStore(), nil), Logger: logging.Discard()}
	r := chi.NewRouter()
	r.With(middleware.CartSession).Post("/api/cart/items", h.AddItem)

	for _, body := range []string{`{`, `{"productId":"   "}`, `{"productId":"p1","price":"abc"}`} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/cart/items", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, rr.Code, body)
	}
}
