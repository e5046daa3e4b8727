package app

import (
	"context"

	"github.com/dwikikusuma/storefront/internal/address/domain"
)

// Provider resolves a normalized 8-digit postal code. Implementations return
// domain.ErrNotFound for unknown codes and wrap domain.ErrNetwork for
// everything else.
type Provider interface {
	Lookup(ctx context.Context, postalCode string) (domain.Address, error)
}
