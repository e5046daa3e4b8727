package adapter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
	catalogdomain "github.com/dwikikusuma/storefront/internal/catalog/domain"
	"github.com/dwikikusuma/storefront/internal/catalog/infra/memory"
	checkoutapp "github.com/dwikikusuma/storefront/internal/checkout/app"
	"github.com/dwikikusuma/storefront/internal/checkout/domain"
)

func seededCatalog() *CatalogServiceReader {
	brl := func(c int64) catalogdomain.Money { return catalogdomain.Money{Currency: "BRL", Amount: c} }
	repo := memory.NewProductRepo(
		catalogdomain.Product{ID: "A", Name: "Cable", Price: brl(1000), Active: true},
		catalogdomain.Product{ID: "B", Name: "Charger", Price: brl(2500), Active: true},
		catalogdomain.Product{ID: "C", Name: "Headset", Price: brl(3000), DiscountPercent: 25, Active: true},
	)
	return NewCatalogServiceReader(catalogapp.NewService(repo))
}

func TestCheckoutOverCartStore(t *testing.T) {
	ctx := context.Background()
	catalog := seededCatalog()

	newCart := func(t *testing.T) (*cartapp.Store, *checkoutapp.Service) {
		t.Helper()
		store := cartapp.NewStore()
		for _, id := range []string{"A", "A", "B"} {
			p, err := catalog.GetProduct(ctx, id)
			require.NoError(t, err)
			store.Add(LineItemFromProduct(p))
		}
		require.Equal(t, int64(4500), store.TotalPrice())

		reader := NewCartStoreReader(store)
		svc := checkoutapp.NewService(reader, catalog, checkoutapp.NewPricing(0), checkoutapp.NewSimulator(reader, nil))
		return store, svc
	}

	t.Run("buy-now of a new product then pay clears the cart", func(t *testing.T) {
		store, svc := newCart(t)
		c, err := svc.Product(ctx, "C")
		require.NoError(t, err)
		require.NotNil(t, c.OriginalUnitPrice)
		assert.Equal(t, int64(4000), c.OriginalUnitPrice.Amount)

		q, err := svc.Quote(domain.SingleProductPlusCart{Product: c})
		require.NoError(t, err)
		assert.Equal(t, int64(7500), q.Total.Amount)
		assert.Equal(t, 3, store.TotalItems(), "quote must not touch the cart")

		receipt, err := svc.Pay(ctx, domain.SingleProductPlusCart{Product: c}, domain.PaymentDetails{})
		require.NoError(t, err)
		assert.True(t, receipt.ClearedCart)
		assert.Equal(t, 0, store.TotalItems())
	})

	t.Run("buy-now of a product already in the cart dedups", func(t *testing.T) {
		store, svc := newCart(t)
		a, err := svc.Product(ctx, "A")
		require.NoError(t, err)

		q, err := svc.Quote(domain.SingleProductPlusCart{Product: a})
		require.NoError(t, err)
		require.Len(t, q.Lines, 2)
		assert.Equal(t, 3, q.Lines[0].Item.Quantity)
		assert.Equal(t, int64(5500), q.Total.Amount)

		line, _ := store.Get("A")
		assert.Equal(t, 2, line.Quantity)
	})

	t.Run("standalone buy-now leaves the cart as it was", func(t *testing.T) {
		store, svc := newCart(t)
		before := store.Items()
		c, _ := svc.Product(ctx, "C")

		receipt, err := svc.Pay(ctx, domain.SingleProductOnly{Product: c}, domain.PaymentDetails{Method: domain.MethodPix, Installments: 1})
		require.NoError(t, err)
		assert.False(t, receipt.ClearedCart)
		assert.Equal(t, int64(3000), receipt.Total.Amount)
		assert.Equal(t, before, store.Items())
	})
}

func TestSnapshotIsDetached(t *testing.T) {
	store := cartapp.NewStore()
	p := domain.Product{ID: "X", UnitPrice: domain.BRL(100), OriginalUnitPrice: &domain.Money{Currency: "BRL", Amount: 150}}
	store.Add(LineItemFromProduct(p))

	reader := NewCartStoreReader(store)
	snap := reader.Snapshot()
	snap[0].Quantity = 99
	snap[0].OriginalUnitPrice.Amount = 1

	line, _ := store.Get("X")
	assert.Equal(t, 1, line.Quantity)
	assert.Equal(t, int64(150), line.OriginalUnitPrice.Amount)
}
