package adapter

import (
	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	cartdomain "github.com/dwikikusuma/storefront/internal/cart/domain"
	"github.com/dwikikusuma/storefront/internal/checkout/domain"
)

// CartStoreReader lets checkout read and clear a cart store without the
// checkout packages depending on cart internals.
type CartStoreReader struct {
	store *cartapp.Store
}

func NewCartStoreReader(store *cartapp.Store) *CartStoreReader {
	return &CartStoreReader{store: store}
}

func (r *CartStoreReader) Snapshot() []domain.Item {
	lines := r.store.Items()

	items := make([]domain.Item, 0, len(lines))
	for _, it := range lines {
		items = append(items, toCheckoutItem(it))
	}
	return items
}

func (r *CartStoreReader) Clear() {
	r.store.Clear()
}

func toCheckoutItem(it cartdomain.LineItem) domain.Item {
	out := domain.Item{
		ProductID: it.ID,
		Name:      it.Name,
		UnitPrice: domain.Money{Currency: it.UnitPrice.Currency, Amount: it.UnitPrice.Amount},
		ImageRef:  it.ImageRef,
		Quantity:  it.Quantity,
	}
	if it.OriginalUnitPrice != nil {
		out.OriginalUnitPrice = &domain.Money{
			Currency: it.OriginalUnitPrice.Currency,
			Amount:   it.OriginalUnitPrice.Amount,
		}
	}
	return out
}

// LineItemFromProduct builds the cart line added by an "add to cart" action.
func LineItemFromProduct(p domain.Product) cartdomain.LineItem {
	li := cartdomain.LineItem{
		ID:        p.ID,
		Name:      p.Name,
		UnitPrice: cartdomain.Money{Currency: p.UnitPrice.Currency, Amount: p.UnitPrice.Amount},
		ImageRef:  p.ImageRef,
		Quantity:  1,
	}
	if p.OriginalUnitPrice != nil {
		li.OriginalUnitPrice = &cartdomain.Money{
			Currency: p.OriginalUnitPrice.Currency,
			Amount:   p.OriginalUnitPrice.Amount,
		}
	}
	return li
}
