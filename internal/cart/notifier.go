package cart

import (
	"context"
	"errors"
	"sync"
)

type Notifier interface {
	Publish(ctx context.Context, ev Event) error
}

// MultiNotifier publishes to every notifier and joins their errors.
type MultiNotifier []Notifier

func (m MultiNotifier) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

const subscriberBuffer = 16

// Broker fans events out to in-process subscribers of a cart.
// Slow subscribers drop events rather than block the publisher.
type Broker struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]chan Event
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[string]map[int]chan Event)}
}

// Subscribe returns a channel of events for cartID and a cancel func that
// closes it. cancel is safe to call more than once.
func (b *Broker) Subscribe(cartID string) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	id := b.nextID
	b.nextID++
	if b.subs[cartID] == nil {
		b.subs[cartID] = make(map[int]chan Event)
	}
	b.subs[cartID][id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs[cartID], id)
			if len(b.subs[cartID]) == 0 {
				delete(b.subs, cartID)
			}
			close(ch)
		})
	}
}

func (b *Broker) Publish(_ context.Context, ev Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs[ev.CartID] {
		select {
		case ch <- ev:
		default:
		}
	}
	return nil
}

func (b *Broker) Subscribers(cartID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[cartID])
}
