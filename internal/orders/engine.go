package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sitestock/procurement/internal/catalog"
)

// Engine validates and admits order submissions and applies the review
// transitions. It never mutates stock itself: the one reservation per
// admitted order goes through catalog.Store.ReserveStock, which is atomic.
type Engine struct {
	Catalog catalog.Store
	Orders  Store
}

// Submit validates the form in two phases (per-field, then whole-form),
// reserves stock exactly once and persists the order as pending.
//
// The stock snapshot read during validation is advisory: the authoritative
// check is the reservation. Losing the race between the two surfaces as the
// same insufficient-stock field error.
func (e *Engine) Submit(ctx context.Context, f Form) (Order, error) {
	fields := f.fieldErrors()

	var product catalog.Product
	resolved := false
	if f.ProductName == "" || f.ProductCode == "" {
		fields[FieldForm] = msgMissingProductRef
	} else {
		p, err := e.Catalog.FindByNameAndCode(ctx, f.ProductName, f.ProductCode)
		switch {
		case errors.Is(err, catalog.ErrNotFound):
			fields[FieldForm] = msgProductNotFound
		case err != nil:
			return Order{}, err
		default:
			product = p
			resolved = true
		}
	}

	due, dueOK := f.dueDate()
	if dueOK && due.Before(today()) {
		fields["due_date"] = msgPastDueDate
	}

	// availability is checked against the one snapshot read above; skipped
	// when the quantity already failed a static rule or the product did not
	// resolve, mirroring the source form
	if _, bad := fields["quantity"]; !bad && resolved && f.Quantity > product.Stock {
		fields["quantity"] = fmt.Sprintf(msgOnlyAvailable, product.Stock)
	}

	if len(fields) > 0 {
		return Order{}, &ValidationError{Fields: fields}
	}

	if err := e.Catalog.ReserveStock(ctx, product.Code, f.Quantity); err != nil {
		var ins *catalog.InsufficientStockError
		switch {
		case errors.As(err, &ins):
			// lost the race after validation passed; legitimate outcome
			return Order{}, &ValidationError{Fields: map[string]string{
				"quantity": fmt.Sprintf(msgOnlyAvailable, ins.Available),
			}}
		case errors.Is(err, catalog.ErrNotFound):
			return Order{}, &ValidationError{Fields: map[string]string{
				FieldForm: msgProductNotFound,
			}}
		default:
			return Order{}, err
		}
	}

	o := Order{
		ProductName:       f.ProductName,
		ProductCode:       f.ProductCode,
		Quantity:          f.Quantity,
		OrderDate:         time.Now().UTC(),
		DueDate:           due,
		Status:            StatusPending,
		ProjectName:       f.ProjectName,
		ProjectCode:       f.ProjectCode,
		OrderName:         f.OrderName,
		ProjectPhase:      f.ProjectPhase,
		ProjectConsultant: f.ProjectConsultant,
		ProjectLocation:   f.ProjectLocation,
	}
	return e.Orders.Create(ctx, o)
}

// Update re-validates the product reference and due date but, like the
// source system, does not re-check quantity against stock and does not
// re-reserve. Known gap, preserved on purpose.
func (e *Engine) Update(ctx context.Context, id int64, f Form) (Order, error) {
	existing, err := e.Orders.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}

	fields := f.fieldErrors()
	if f.ProductName == "" || f.ProductCode == "" {
		fields[FieldForm] = msgMissingProductRef
	} else if _, err := e.Catalog.FindByNameAndCode(ctx, f.ProductName, f.ProductCode); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			fields[FieldForm] = msgProductNotFound
		} else {
			return Order{}, err
		}
	}
	due, dueOK := f.dueDate()
	if dueOK && due.Before(today()) {
		fields["due_date"] = msgPastDueDate
	}
	if len(fields) > 0 {
		return Order{}, &ValidationError{Fields: fields}
	}

	existing.ProductName = f.ProductName
	existing.ProductCode = f.ProductCode
	existing.Quantity = f.Quantity
	existing.DueDate = due
	existing.ProjectName = f.ProjectName
	existing.ProjectCode = f.ProjectCode
	existing.OrderName = f.OrderName
	existing.ProjectPhase = f.ProjectPhase
	existing.ProjectConsultant = f.ProjectConsultant
	existing.ProjectLocation = f.ProjectLocation
	return e.Orders.Update(ctx, existing)
}

// Approve is unconditional: any current status, repeated calls included.
// Stock was reserved at creation time and is not touched here.
func (e *Engine) Approve(ctx context.Context, id int64) (Order, error) {
	return e.Orders.SetStatus(ctx, id, StatusApproved)
}

// Disapprove mirrors Approve. Reserved stock is not returned to the pool.
func (e *Engine) Disapprove(ctx context.Context, id int64) (Order, error) {
	return e.Orders.SetStatus(ctx, id, StatusDisapproved)
}

func (e *Engine) Get(ctx context.Context, id int64) (Order, error) {
	return e.Orders.Get(ctx, id)
}

func (e *Engine) List(ctx context.Context) ([]Order, error) {
	return e.Orders.List(ctx)
}

// Delete removes the order without restoring stock.
func (e *Engine) Delete(ctx context.Context, id int64) error {
	return e.Orders.Delete(ctx, id)
}

// today is the date-only lower bound for due dates.
func today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
