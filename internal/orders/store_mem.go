package orders

import (
	"context"
	"sort"
	"sync"
)

// MemStore is a map-backed order store with a sequential id counter.
type MemStore struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]Order
}

func NewMemStore() *MemStore {
	return &MemStore{items: map[int64]Order{}}
}

func (s *MemStore) Create(ctx context.Context, o Order) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	o.ID = s.nextID
	s.items[o.ID] = o
	return o, nil
}

func (s *MemStore) Get(ctx context.Context, id int64) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.items[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	return o, nil
}

func (s *MemStore) List(ctx context.Context) ([]Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Order, 0, len(s.items))
	for _, o := range s.items {
		out = append(out, o)
	}
	// newest order_date first, id as tiebreak
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OrderDate.Equal(out[j].OrderDate) {
			return out[i].OrderDate.After(out[j].OrderDate)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *MemStore) Update(ctx context.Context, o Order) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.items[o.ID]
	if !ok {
		return Order{}, ErrNotFound
	}
	// order_date and status are not form fields
	o.OrderDate = existing.OrderDate
	o.Status = existing.Status
	s.items[o.ID] = o
	return o, nil
}

func (s *MemStore) SetStatus(ctx context.Context, id int64, status Status) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.items[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	o.Status = status
	s.items[id] = o
	return o, nil
}

func (s *MemStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return ErrNotFound
	}
	delete(s.items, id)
	return nil
}
