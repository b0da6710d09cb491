package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-restaurant-pos/models"
	"go-restaurant-pos/store"
	"go-restaurant-pos/store/storetest"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(*testing.T) store.Store { return New() })
}

func TestReadersSeeOnlyCommittedData(t *testing.T) {
	ctx := context.Background()
	s := New()
	dish := models.Dish{Name: "Crab", Stock: models.LimitedStock(10)}
	require.NoError(t, s.InsertDish(ctx, &dish))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.WithinTx(ctx, func(ctx context.Context, tx store.Tx) error {
				_, err := tx.AdjustStock(ctx, dish.ID, -1)
				return err
			})
			assert.NoError(t, err)
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := s.GetDish(ctx, dish.ID)
			assert.NoError(t, err)
			n, _ := got.Stock.Quantity()
			assert.True(t, n >= 0 && n <= 10)
		}()
	}
	wg.Wait()

	got, err := s.GetDish(ctx, dish.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LimitedStock(0), got.Stock)
}

func TestWithinTx_HonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := New().WithinTx(ctx, func(context.Context, store.Tx) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
