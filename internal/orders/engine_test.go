package orders

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitestock/procurement/internal/catalog"
)

func todayStr() string     { return time.Now().UTC().Format(dateLayout) }
func tomorrowStr() string  { return time.Now().UTC().AddDate(0, 0, 1).Format(dateLayout) }
func yesterdayStr() string { return time.Now().UTC().AddDate(0, 0, -1).Format(dateLayout) }

func validForm() Form {
	return Form{
		ProductName:       "Cement",
		ProductCode:       "A1",
		Quantity:          2,
		DueDate:           tomorrowStr(),
		ProjectName:       "Harbour Tower",
		ProjectCode:       "HT-01",
		OrderName:         "Foundation pour",
		ProjectPhase:      "foundation",
		ProjectConsultant: "J. Day",
		ProjectLocation:   "Dock 4",
	}
}

func newEngine(t *testing.T, stock int) (*Engine, *catalog.MemStore) {
	t.Helper()
	cs := catalog.NewMemStore()
	_, err := cs.Create(context.Background(), catalog.NewProduct{
		Name: "Cement", Code: "A1", Quantity: stock, Supplier: "Acme",
	})
	require.NoError(t, err)
	return &Engine{Catalog: cs, Orders: NewMemStore()}, cs
}

func currentStock(t *testing.T, cs *catalog.MemStore) int {
	t.Helper()
	p, err := cs.FindByNameAndCode(context.Background(), "Cement", "A1")
	require.NoError(t, err)
	return p.Stock
}

func TestSubmitCreatesPendingOrderAndReservesStock(t *testing.T) {
	e, cs := newEngine(t, 10)
	ctx := context.Background()

	f := validForm()
	f.Quantity = 10
	f.DueDate = todayStr() // today is allowed

	o, err := e.Submit(ctx, f)
	require.NoError(t, err)

	assert.Equal(t, int64(1), o.ID)
	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, "Cement", o.ProductName)
	assert.Equal(t, "A1", o.ProductCode)
	assert.Equal(t, 10, o.Quantity)
	assert.Equal(t, "Harbour Tower", o.ProjectName)
	assert.Equal(t, "Dock 4", o.ProjectLocation)
	assert.False(t, o.OrderDate.IsZero())
	assert.Equal(t, 0, currentStock(t, cs))

	// second order against the drained product is rejected
	f2 := validForm()
	f2.Quantity = 1
	_, err = e.Submit(ctx, f2)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Only 0 available. Cannot order more than that.", verr.Fields["quantity"])
	assert.Equal(t, 0, currentStock(t, cs))
}

func TestSubmitMissingProductReference(t *testing.T) {
	e, _ := newEngine(t, 10)

	f := validForm()
	f.ProductName = ""
	f.ProductCode = ""

	_, err := e.Submit(context.Background(), f)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, msgMissingProductRef, verr.Fields[FieldForm])
	// the per-field required errors are reported alongside
	assert.Equal(t, msgRequired, verr.Fields["product_name"])
	assert.Equal(t, msgRequired, verr.Fields["product_code"])
}

func TestSubmitUnknownProduct(t *testing.T) {
	e, _ := newEngine(t, 10)

	f := validForm()
	f.ProductCode = "NOPE"

	_, err := e.Submit(context.Background(), f)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, msgProductNotFound, verr.Fields[FieldForm])

	created, err := e.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, created)
}

func TestSubmitPastDueDate(t *testing.T) {
	e, cs := newEngine(t, 10)

	f := validForm()
	f.DueDate = yesterdayStr()

	_, err := e.Submit(context.Background(), f)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, msgPastDueDate, verr.Fields["due_date"])
	assert.Equal(t, 10, currentStock(t, cs), "rejected submission must not reserve")
}

func TestSubmitQuantityChecks(t *testing.T) {
	e, cs := newEngine(t, 10)
	ctx := context.Background()

	f := validForm()
	f.Quantity = 0
	_, err := e.Submit(ctx, f)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, msgRequired, verr.Fields["quantity"]) // zero value trips required first

	f.Quantity = -3
	_, err = e.Submit(ctx, f)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, msgPositiveQuantity, verr.Fields["quantity"])

	f.Quantity = 11
	_, err = e.Submit(ctx, f)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Only 10 available. Cannot order more than that.", verr.Fields["quantity"])

	assert.Equal(t, 10, currentStock(t, cs))
	created, err := e.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, created, "no partial order on rejection")
}

// racingCatalog drains stock between validation and reservation to model a
// concurrent submission winning the window.
type racingCatalog struct {
	*catalog.MemStore
	once  sync.Once
	drain func()
}

func (r *racingCatalog) ReserveStock(ctx context.Context, code string, qty int) error {
	r.once.Do(r.drain)
	return r.MemStore.ReserveStock(ctx, code, qty)
}

func TestSubmitReservationRaceSurfacesAsInsufficientStock(t *testing.T) {
	cs := catalog.NewMemStore()
	ctx := context.Background()
	_, err := cs.Create(ctx, catalog.NewProduct{Name: "Cement", Code: "A1", Quantity: 10})
	require.NoError(t, err)

	rc := &racingCatalog{MemStore: cs, drain: func() {
		require.NoError(t, cs.ReserveStock(ctx, "A1", 10))
	}}
	e := &Engine{Catalog: rc, Orders: NewMemStore()}

	f := validForm()
	f.Quantity = 5

	_, err = e.Submit(ctx, f)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Only 0 available. Cannot order more than that.", verr.Fields["quantity"])

	created, err := e.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, created)
}

func TestApproveAndDisapprove(t *testing.T) {
	e, cs := newEngine(t, 10)
	ctx := context.Background()

	o, err := e.Submit(ctx, validForm())
	require.NoError(t, err)
	stockAfterSubmit := currentStock(t, cs)

	got, err := e.Approve(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, got.Status)

	// idempotent under repeated calls
	got, err = e.Approve(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, got.Status)

	// a disapproved order may be re-approved and vice versa
	got, err = e.Disapprove(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusDisapproved, got.Status)
	got, err = e.Approve(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, got.Status)

	assert.Equal(t, stockAfterSubmit, currentStock(t, cs), "review never moves stock")

	_, err = e.Approve(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = e.Disapprove(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateDoesNotRecheckStock(t *testing.T) {
	e, cs := newEngine(t, 10)
	ctx := context.Background()

	o, err := e.Submit(ctx, validForm()) // qty 2, stock 10 -> 8
	require.NoError(t, err)
	require.Equal(t, 8, currentStock(t, cs))

	// quantity far beyond stock passes on edit and nothing is re-reserved
	f := validForm()
	f.Quantity = 50
	upd, err := e.Update(ctx, o.ID, f)
	require.NoError(t, err)
	assert.Equal(t, 50, upd.Quantity)
	assert.Equal(t, 8, currentStock(t, cs))
	assert.Equal(t, o.OrderDate, upd.OrderDate, "order date set once at creation")
	assert.Equal(t, StatusPending, upd.Status)

	// the product reference is still validated
	f.ProductCode = "NOPE"
	_, err = e.Update(ctx, o.ID, f)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, msgProductNotFound, verr.Fields[FieldForm])

	_, err = e.Update(ctx, 999, validForm())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteDoesNotRestoreStock(t *testing.T) {
	e, cs := newEngine(t, 10)
	ctx := context.Background()

	o, err := e.Submit(ctx, validForm())
	require.NoError(t, err)
	require.Equal(t, 8, currentStock(t, cs))

	require.NoError(t, e.Delete(ctx, o.ID))
	assert.Equal(t, 8, currentStock(t, cs))
	assert.ErrorIs(t, e.Delete(ctx, o.ID), ErrNotFound)
}

func TestListNewestFirst(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := s.Create(ctx, Order{
			ProductName: "Cement",
			ProductCode: "A1",
			Quantity:    1,
			OrderDate:   base.Add(time.Duration(i) * time.Hour),
			Status:      StatusPending,
		})
		require.NoError(t, err)
	}

	out, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, int64(3), out[0].ID)
	assert.Equal(t, int64(2), out[1].ID)
	assert.Equal(t, int64(1), out[2].ID)
}
