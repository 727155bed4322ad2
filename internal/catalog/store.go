package catalog

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("product not found")
	ErrDuplicateCode = errors.New("product code already exists")
)

// InsufficientStockError reports the stock available at the moment the
// reservation was refused.
type InsufficientStockError struct {
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Only %d available. Cannot order more than that.", e.Available)
}

type SearchField string

const (
	SearchByName SearchField = "name"
	SearchByCode SearchField = "code"
)

// SearchLimit caps autocomplete responses.
const SearchLimit = 10

// Store owns Product records. It is the sole owner of stock mutation:
// ReserveStock is the only call that moves the counter, and it is atomic
// under concurrent callers.
type Store interface {
	Create(ctx context.Context, p NewProduct) (Product, error)
	GetByID(ctx context.Context, id int64) (Product, error)
	FindByNameAndCode(ctx context.Context, name, code string) (Product, error)
	List(ctx context.Context) ([]Product, error)
	Search(ctx context.Context, field SearchField, term string) ([]Product, error)
	ReserveStock(ctx context.Context, code string, qty int) error
	Update(ctx context.Context, id int64, upd ProductUpdate) (Product, error)
	Delete(ctx context.Context, id int64) error
}
