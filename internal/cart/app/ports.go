package app

import (
	"github.com/dwikikusuma/storefront/internal/cart/domain"
)

// Observer is notified after every cart mutation. Implementations must not
// call back into the Store.
type Observer interface {
	CartMutated(op domain.Op, itemID string)
}

type nopObserver struct{}

func (nopObserver) CartMutated(domain.Op, string) {}
