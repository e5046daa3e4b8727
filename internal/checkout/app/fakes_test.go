package app

import (
	"context"

	"github.com/dwikikusuma/storefront/internal/checkout/domain"
)

type fakeCart struct {
	items   []domain.Item
	cleared int
}

func (f *fakeCart) Snapshot() []domain.Item {
	out := make([]domain.Item, len(f.items))
	copy(out, f.items)
	return out
}

func (f *fakeCart) Clear() {
	f.items = nil
	f.cleared++
}

func (f *fakeCart) totalItems() int {
	n := 0
	for _, it := range f.items {
		n += it.Quantity
	}
	return n
}

type fakeCatalog map[string]domain.Product

func (f fakeCatalog) GetProduct(_ context.Context, id string) (domain.Product, error) {
	p, ok := f[id]
	if !ok {
		return domain.Product{}, ErrInvalidInput
	}
	return p, nil
}

func item(id string, cents int64, qty int) domain.Item {
	return domain.Item{ProductID: id, Name: id, UnitPrice: domain.BRL(cents), Quantity: qty}
}

func product(id string, cents int64) domain.Product {
	return domain.Product{ID: id, Name: id, UnitPrice: domain.BRL(cents)}
}

// scenarioCart is A x2 @ 10.00 and B x1 @ 25.00.
func scenarioCart() *fakeCart {
	return &fakeCart{items: []domain.Item{item("A", 1000, 2), item("B", 2500, 1)}}
}
