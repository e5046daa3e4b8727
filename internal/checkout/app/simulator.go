package app

import (
	"context"
	"log/slog"

	"github.com/dwikikusuma/storefront/internal/checkout/domain"
)

// Simulator stands in for a payment gateway. Every payment succeeds and no
// network call is made.
//
// A real gateway would add declined and network failure kinds and clear the
// cart only after confirmed success. Here clearing follows the mock response
// unconditionally.
type Simulator struct {
	cart CartClearer
	log  *slog.Logger
}

func NewSimulator(cart CartClearer, log *slog.Logger) *Simulator {
	if log == nil {
		log = slog.Default()
	}
	return &Simulator{cart: cart, log: log}
}

// Finalize completes the payment for src and clears the cart when the
// checkout folded cart lines into the charge. The only error is ctx being
// done before the call, in which case the cart is left alone.
func (s *Simulator) Finalize(ctx context.Context, src domain.Source) (domain.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return domain.Receipt{}, err
	}

	cleared := ClearsCart(src)
	if cleared {
		s.cart.Clear()
	}

	s.log.Info("payment simulated",
		slog.String("source", string(src.Kind())),
		slog.Bool("cleared_cart", cleared),
	)

	return domain.Receipt{Success: true, ClearedCart: cleared}, nil
}

// ClearsCart reports whether finalizing a payment for src empties the cart.
// A standalone buy-now must not drop unrelated cart lines.
func ClearsCart(src domain.Source) bool {
	switch src.(type) {
	case domain.CartOnly, domain.SingleProductPlusCart:
		return true
	case domain.SingleProductOnly:
		return false
	default:
		panic(domain.UnknownSource(src))
	}
}
