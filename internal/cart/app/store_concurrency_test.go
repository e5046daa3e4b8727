package app_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/dwikikusuma/storefront/internal/cart/app"
	"github.com/dwikikusuma/storefront/internal/cart/domain"
)

func TestStore_ConcurrentAddIncrement(t *testing.T) {
	store := app.NewStore()
	productID := uuid.NewString()

	const N = 100
	g, _ := errgroup.WithContext(context.Background())
	for i := 0; i < N; i++ {
		g.Go(func() error {
			store.Add(domain.LineItem{
				ID:        productID,
				Name:      "Mouse",
				UnitPrice: domain.Money{Currency: "BRL", Amount: 1000},
			})
			return nil
		})
	}
	require.NoError(t, g.Wait())

	item, ok := store.Get(productID)
	require.True(t, ok)
	require.Equal(t, N, item.Quantity)
	require.Equal(t, 1, store.Len())
	require.Equal(t, int64(N*1000), store.TotalPrice())
}

func TestStore_ConcurrentMixedOpsKeepsTotalsConsistent(t *testing.T) {
	store := app.NewStore()

	ids := make([]string, 10)
	for i := range ids {
		ids[i] = uuid.NewString()
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := ids[i%len(ids)]
			store.Add(domain.LineItem{ID: id, UnitPrice: domain.Money{Currency: "BRL", Amount: 250}})
			store.SetQuantity(id, i%4)
			if i%7 == 0 {
				store.Remove(id)
			}
		}(i)
	}
	wg.Wait()

	var want int64
	qty := 0
	for _, it := range store.Items() {
		require.GreaterOrEqual(t, it.Quantity, 1)
		want += it.UnitPrice.Amount * int64(it.Quantity)
		qty += it.Quantity
	}
	require.Equal(t, want, store.TotalPrice())
	require.Equal(t, qty, store.TotalItems())
}
