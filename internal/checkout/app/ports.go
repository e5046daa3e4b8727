package app

import (
	"context"

	"github.com/dwikikusuma/storefront/internal/checkout/domain"
)

// CartReader exposes the current cart lines as checkout items. Snapshot must
// return values the caller may freely modify.
type CartReader interface {
	Snapshot() []domain.Item
}

// CartClearer is the single write path from checkout back into the cart.
type CartClearer interface {
	Clear()
}

type CatalogReader interface {
	GetProduct(ctx context.Context, productID string) (domain.Product, error)
}
