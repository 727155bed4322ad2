package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemStore is a map-backed Store. The mutex makes ReserveStock a single
// atomic check-and-decrement, same guarantee the Postgres store gets from
// row locking.
type MemStore struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]*Product
}

func NewMemStore() *MemStore {
	return &MemStore{items: map[int64]*Product{}}
}

func (s *MemStore) Create(ctx context.Context, np NewProduct) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.items {
		if p.Code == np.Code {
			return Product{}, ErrDuplicateCode
		}
	}
	s.nextID++
	now := time.Now().UTC()
	p := &Product{
		ID:        s.nextID,
		Name:      np.Name,
		Code:      np.Code,
		Quantity:  np.Quantity,
		Stock:     np.Quantity,
		Supplier:  np.Supplier,
		Image:     np.Image,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.items[p.ID] = p
	return *p, nil
}

func (s *MemStore) GetByID(ctx context.Context, id int64) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.items[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return *p, nil
}

func (s *MemStore) FindByNameAndCode(ctx context.Context, name, code string) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.items {
		if p.Name == name && p.Code == code {
			return *p, nil
		}
	}
	return Product{}, ErrNotFound
}

func (s *MemStore) List(ctx context.Context) ([]Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Product, 0, len(s.items))
	for _, p := range s.items {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (s *MemStore) Search(ctx context.Context, field SearchField, term string) ([]Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	needle := strings.ToLower(term)
	var out []Product
	for _, p := range s.items {
		hay := p.Name
		if field == SearchByCode {
			hay = p.Code
		}
		if strings.Contains(strings.ToLower(hay), needle) {
			out = append(out, *p)
			if len(out) == SearchLimit {
				break
			}
		}
	}
	return out, nil
}

func (s *MemStore) ReserveStock(ctx context.Context, code string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.items {
		if p.Code != code {
			continue
		}
		if p.Stock < qty {
			return &InsufficientStockError{Available: p.Stock}
		}
		p.Stock -= qty
		p.UpdatedAt = time.Now().UTC()
		return nil
	}
	return ErrNotFound
}

func (s *MemStore) Update(ctx context.Context, id int64, upd ProductUpdate) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.items[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	for _, other := range s.items {
		if other.ID != id && other.Code == upd.Code {
			return Product{}, ErrDuplicateCode
		}
	}
	p.Name = upd.Name
	p.Code = upd.Code
	p.Quantity = upd.Quantity
	p.Supplier = upd.Supplier
	p.Image = upd.Image
	p.UpdatedAt = time.Now().UTC()
	return *p, nil
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
