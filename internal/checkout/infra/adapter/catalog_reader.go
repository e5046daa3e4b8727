package adapter

import (
	"context"

	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
	catalogdomain "github.com/dwikikusuma/storefront/internal/catalog/domain"
	"github.com/dwikikusuma/storefront/internal/checkout/domain"
)

type CatalogServiceReader struct {
	svc *catalogapp.Service
}

func NewCatalogServiceReader(svc *catalogapp.Service) *CatalogServiceReader {
	return &CatalogServiceReader{svc: svc}
}

func (r *CatalogServiceReader) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	p, err := r.svc.GetProduct(ctx, productID)
	if err != nil {
		return domain.Product{}, err
	}
	return ProductFromCatalog(p), nil
}

// ProductFromCatalog keeps only the fields checkout reads: id, name, price,
// derived original price and image.
func ProductFromCatalog(p catalogdomain.Product) domain.Product {
	out := domain.Product{
		ID:        p.ID,
		Name:      p.Name,
		UnitPrice: domain.Money{Currency: p.Price.Currency, Amount: p.Price.Amount},
		ImageRef:  p.ImageRef,
	}
	if orig, ok := p.OriginalPrice(); ok {
		out.OriginalUnitPrice = &domain.Money{Currency: orig.Currency, Amount: orig.Amount}
	}
	return out
}
