package orders

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("order not found")

// Store persists Order records. Create assigns the sequential id; List
// returns newest order_date first.
type Store interface {
	Create(ctx context.Context, o Order) (Order, error)
	Get(ctx context.Context, id int64) (Order, error)
	List(ctx context.Context) ([]Order, error)
	Update(ctx context.Context, o Order) (Order, error)
	SetStatus(ctx context.Context, id int64, s Status) (Order, error)
	Delete(ctx context.Context, id int64) error
}
