package app

import (
	"github.com/dwikikusuma/storefront/internal/checkout/domain"
)

// Compose returns the items a payment would be charged against. It never
// writes to the cart: the SingleProductPlusCart merge exists only in the
// returned slice.
func Compose(cart CartReader, src domain.Source) []domain.Item {
	switch s := src.(type) {
	case domain.CartOnly:
		return cart.Snapshot()

	case domain.SingleProductOnly:
		return []domain.Item{domain.ItemFromProduct(s.Product)}

	case domain.SingleProductPlusCart:
		items := cart.Snapshot()
		for i := range items {
			if items[i].ProductID == s.Product.ID {
				items[i].Quantity++
				return items
			}
		}
		return append(items, domain.ItemFromProduct(s.Product))

	default:
		panic(domain.UnknownSource(src))
	}
}
