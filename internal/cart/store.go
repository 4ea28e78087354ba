package cart

import (
	"context"
	"sync"
)

// Store persists the whole item list of a cart.
type Store interface {
	// Load returns ErrNotFound when the cart does not exist.
	Load(ctx context.Context, cartID string) ([]Item, error)
	Save(ctx context.Context, cartID string, items []Item) error
	Delete(ctx context.Context, cartID string) error
}

type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string][]Item
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string][]Item)}
}

func (s *MemoryStore) Load(_ context.Context, cartID string) ([]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items, ok := s.carts[cartID]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneItems(items), nil
}

func (s *MemoryStore) Save(_ context.Context, cartID string, items []Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.carts[cartID] = cloneItems(items)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, cartID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, cartID)
	return nil
}

func cloneItems(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	return out
}
