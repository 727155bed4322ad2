package catalog

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateInitializesStockFromQuantity(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	p, err := s.Create(ctx, NewProduct{Name: "Cement", Code: "A1", Quantity: 10, Supplier: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, 10, p.Quantity)
	assert.Equal(t, 10, p.Stock)

	_, err = s.Create(ctx, NewProduct{Name: "Other Cement", Code: "A1", Quantity: 3})
	assert.ErrorIs(t, err, ErrDuplicateCode)
}

func TestFindByNameAndCode(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()
	_, err := s.Create(ctx, NewProduct{Name: "Cement", Code: "A1", Quantity: 10})
	require.NoError(t, err)

	p, err := s.FindByNameAndCode(ctx, "Cement", "A1")
	require.NoError(t, err)
	assert.Equal(t, "A1", p.Code)

	// both halves of the pair must match
	_, err = s.FindByNameAndCode(ctx, "Cement", "B2")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.FindByNameAndCode(ctx, "Gravel", "A1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReserveStock(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()
	_, err := s.Create(ctx, NewProduct{Name: "Cement", Code: "A1", Quantity: 10})
	require.NoError(t, err)

	require.NoError(t, s.ReserveStock(ctx, "A1", 4))
	require.NoError(t, s.ReserveStock(ctx, "A1", 6))

	p, err := s.FindByNameAndCode(ctx, "Cement", "A1")
	require.NoError(t, err)
	assert.Equal(t, 0, p.Stock)
	assert.Equal(t, 10, p.Quantity, "original quantity is immutable")

	err = s.ReserveStock(ctx, "A1", 1)
	var ins *InsufficientStockError
	require.ErrorAs(t, err, &ins)
	assert.Equal(t, 0, ins.Available)

	assert.ErrorIs(t, s.ReserveStock(ctx, "ZZ", 1), ErrNotFound)
}

func TestReserveStockReportsAvailable(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()
	_, err := s.Create(ctx, NewProduct{Name: "Cement", Code: "A1", Quantity: 7})
	require.NoError(t, err)

	err = s.ReserveStock(ctx, "A1", 8)
	var ins *InsufficientStockError
	require.ErrorAs(t, err, &ins)
	assert.Equal(t, 7, ins.Available)
	assert.Equal(t, "Only 7 available. Cannot order more than that.", err.Error())

	p, _ := s.FindByNameAndCode(ctx, "Cement", "A1")
	assert.Equal(t, 7, p.Stock, "failed reservation must not move stock")
}

// Overselling must be impossible: with stock 30 and 50 concurrent
// single-unit reservations, exactly 30 succeed.
func TestReserveStockConcurrent(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()
	_, err := s.Create(ctx, NewProduct{Name: "Cement", Code: "A1", Quantity: 30})
	require.NoError(t, err)

	const callers = 50
	results := make(chan error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- s.ReserveStock(ctx, "A1", 1)
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			var ins *InsufficientStockError
			require.ErrorAs(t, err, &ins)
		}
	}
	assert.Equal(t, 30, succeeded)

	p, err := s.FindByNameAndCode(ctx, "Cement", "A1")
	require.NoError(t, err)
	assert.Equal(t, 0, p.Stock)
}

func TestSearch(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()
	seed := []NewProduct{
		{Name: "Portland Cement", Code: "A1", Quantity: 5},
		{Name: "Rapid Cement", Code: "A1-R", Quantity: 5},
		{Name: "Gravel", Code: "G7", Quantity: 5},
	}
	for _, np := range seed {
		_, err := s.Create(ctx, np)
		require.NoError(t, err)
	}

	byCode, err := s.Search(ctx, SearchByCode, "a1")
	require.NoError(t, err)
	require.Len(t, byCode, 2)
	for _, p := range byCode {
		assert.Contains(t, p.Code, "A1")
	}

	byName, err := s.Search(ctx, SearchByName, "CEMENT")
	require.NoError(t, err)
	assert.Len(t, byName, 2)

	none, err := s.Search(ctx, SearchByName, "timber")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSearchCapsResults(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()
	for i := 0; i < SearchLimit+5; i++ {
		_, err := s.Create(ctx, NewProduct{Name: "Cement", Code: fmt.Sprintf("C-%02d", i), Quantity: 1})
		require.NoError(t, err)
	}
	out, err := s.Search(ctx, SearchByName, "cement")
	require.NoError(t, err)
	assert.Len(t, out, SearchLimit)
}

func TestUpdateNeverTouchesStock(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()
	p, err := s.Create(ctx, NewProduct{Name: "Cement", Code: "A1", Quantity: 10})
	require.NoError(t, err)
	require.NoError(t, s.ReserveStock(ctx, "A1", 3))

	upd, err := s.Update(ctx, p.ID, ProductUpdate{Name: "Cement Plus", Code: "A1", Quantity: 99, Supplier: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, 99, upd.Quantity)
	assert.Equal(t, 7, upd.Stock, "update must not reset stock from quantity")
}

func TestDelete(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()
	p, err := s.Create(ctx, NewProduct{Name: "Cement", Code: "A1", Quantity: 10})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, p.ID))
	assert.ErrorIs(t, s.Delete(ctx, p.ID), ErrNotFound)
	_, err = s.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
