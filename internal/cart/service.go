package cart

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"
)

type Observer interface {
	CartMutation(kind string)
}

// Service owns cart mutations. Mutations are serialized per process; several
// gateway instances sharing one store are last-writer-wins.
type Service struct {
	store    Store
	notifier Notifier
	logger   *slog.Logger
	observer Observer
	now      func() time.Time

	mu sync.Mutex
}

type Option func(*Service)

func WithNotifier(n Notifier) Option { return func(s *Service) { s.notifier = n } }
func WithObserver(o Observer) Option { return func(s *Service) { s.observer = o } }
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Service{store: store, logger: logger, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Get never fails. Unreadable or missing carts are empty.
func (s *Service) Get(ctx context.Context, cartID string) Cart {
	return Cart{ID: cartID, Items: s.load(ctx, cartID), UpdatedAt: s.now()}
}

func (s *Service) Summary(ctx context.Context, cartID string) Summary {
	return Summarize(s.load(ctx, cartID))
}

// AddItem merges by productId. A non-positive quantity counts as 1.
func (s *Service) AddItem(ctx context.Context, cartID string, item Item) (Cart, error) {
	item.ProductID = strings.TrimSpace(item.ProductID)
	if item.ProductID == "" {
		return Cart{}, ErrInvalidItem
	}
	if item.Quantity <= 0 {
		item.Quantity = 1
	}

	return s.mutate(ctx, cartID, EventItemAdded, item.ProductID, func(items []Item) []Item {
		for i := range items {
			if items[i].ProductID == item.ProductID {
				items[i].Quantity += item.Quantity
				return items
			}
		}
		return append(items, item)
	})
}

// UpdateQuantity sets the quantity; q <= 0 removes the item.
func (s *Service) UpdateQuantity(ctx context.Context, cartID, productID string, q int) (Cart, error) {
	if q <= 0 {
		return s.mutate(ctx, cartID, EventQuantityUpdated, productID, removeItem(productID))
	}
	return s.mutate(ctx, cartID, EventQuantityUpdated, productID, func(items []Item) []Item {
		for i := range items {
			if items[i].ProductID == productID {
				items[i].Quantity = q
			}
		}
		return items
	})
}

func (s *Service) RemoveItem(ctx context.Context, cartID, productID string) (Cart, error) {
	return s.mutate(ctx, cartID, EventItemRemoved, productID, removeItem(productID))
}

func (s *Service) Clear(ctx context.Context, cartID string) (Cart, error) {
	return s.clear(ctx, cartID, EventCleared)
}

// CheckedOut clears the cart after a successful order.
func (s *Service) CheckedOut(ctx context.Context, cartID string) (Cart, error) {
	return s.clear(ctx, cartID, EventCheckedOut)
}

func (s *Service) clear(ctx context.Context, cartID string, kind EventType) (Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(ctx, cartID); err != nil {
		return Cart{}, err
	}
	c := Cart{ID: cartID, Items: []Item{}, UpdatedAt: s.now()}
	s.emit(ctx, kind, "", c)
	return c, nil
}

func removeItem(productID string) func([]Item) []Item {
	return func(items []Item) []Item {
		out := items[:0]
		for _, it := range items {
			if it.ProductID != productID {
				out = append(out, it)
			}
		}
		return out
	}
}

func (s *Service) mutate(ctx context.Context, cartID string, kind EventType, productID string, fn func([]Item) []Item) (Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := fn(s.load(ctx, cartID))
	if items == nil {
		items = []Item{}
	}
	if err := s.store.Save(ctx, cartID, items); err != nil {
		return Cart{}, err
	}

	c := Cart{ID: cartID, Items: items, UpdatedAt: s.now()}
	s.emit(ctx, kind, productID, c)
	return c, nil
}

func (s *Service) load(ctx context.Context, cartID string) []Item {
	items, err := s.store.Load(ctx, cartID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.WarnContext(ctx, "cart unreadable, resetting", "cart_id", cartID, "err", err)
		}
		return []Item{}
	}
	if items == nil {
		return []Item{}
	}
	return items
}

func (s *Service) emit(ctx context.Context, kind EventType, productID string, c Cart) {
	if s.observer != nil {
		s.observer.CartMutation(string(kind))
	}
	if s.notifier == nil {
		return
	}
	ev := Event{
		Type:          kind,
		CartID:        c.ID,
		ProductID:     productID,
		Items:         c.Items,
		Summary:       Summarize(c.Items),
		CorrelationID: correlationID(ctx),
		OccurredAt:    c.UpdatedAt,
	}
	if err := s.notifier.Publish(ctx, ev); err != nil {
		s.logger.ErrorContext(ctx, "publish cart event", "cart_id", c.ID, "type", kind, "err", err)
	}
}

type correlationKey struct{}

// WithCorrelationID tags events published under ctx.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

func correlationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}
