package cart

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store used in tests and single-node setups
// without Redis. It mirrors the redis semantics, including the TTL
// refreshed on every write, and additionally preserves first-add order.
type MemoryStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	carts map[string]*memCart
	now   func() time.Time
}

type memCart struct {
	quantities map[string]int64
	order      []string
	deadline   time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		ttl:   ttl,
		carts: make(map[string]*memCart),
		now:   time.Now,
	}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) Add(ctx context.Context, sender, productID string, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.live(sender)
	if c == nil {
		c = &memCart{quantities: make(map[string]int64)}
		s.carts[sender] = c
	}
	if _, ok := c.quantities[productID]; !ok {
		c.order = append(c.order, productID)
	}
	c.quantities[productID] += delta
	c.deadline = s.now().Add(s.ttl)
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, sender string) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.live(sender)
	if c == nil {
		return []Entry{}, nil
	}
	entries := make([]Entry, 0, len(c.order))
	for _, productID := range c.order {
		if qty := c.quantities[productID]; qty >= 1 {
			entries = append(entries, Entry{ProductID: productID, Quantity: qty})
		}
	}
	return entries, nil
}

func (s *MemoryStore) Clear(ctx context.Context, sender string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sender)
	return nil
}

// live returns sender's cart, dropping it first if the TTL has elapsed.
// Callers must hold mu.
func (s *MemoryStore) live(sender string) *memCart {
	c, ok := s.carts[sender]
	if !ok {
		return nil
	}
	if s.now().After(c.deadline) {
		delete(s.carts, sender)
		return nil
	}
	return c
}
