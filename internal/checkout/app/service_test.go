package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwikikusuma/storefront/internal/checkout/domain"
)

func newTestService(cart *fakeCart) *Service {
	catalog := fakeCatalog{"C": product("C", 3000)}
	return NewService(cart, catalog, NewPricing(0), NewSimulator(cart, nil))
}

func TestQuote(t *testing.T) {
	t.Run("buy-now with cart builds lines, total and installments", func(t *testing.T) {
		svc := newTestService(scenarioCart())

		q, err := svc.Quote(domain.SingleProductPlusCart{Product: product("C", 3000)})
		require.NoError(t, err)
		assert.Equal(t, domain.KindSingleProductPlusCart, q.Source)
		require.Len(t, q.Lines, 3)
		assert.Equal(t, int64(2000), q.Lines[0].LineTotal.Amount)
		assert.Equal(t, int64(7500), q.Total.Amount)
		assert.Len(t, q.Installments, 10)
	})

	t.Run("empty cart cannot be quoted", func(t *testing.T) {
		svc := newTestService(&fakeCart{})
		_, err := svc.Quote(domain.CartOnly{})
		assert.ErrorIs(t, err, ErrEmptyCheckout)
	})
}

func TestPay(t *testing.T) {
	t.Run("scenario: buy-now with cart clears everything", func(t *testing.T) {
		cart := scenarioCart()
		svc := newTestService(cart)

		receipt, err := svc.Pay(context.Background(), domain.SingleProductPlusCart{Product: product("C", 3000)},
			domain.PaymentDetails{Method: domain.MethodCreditCard, Installments: 3})
		require.NoError(t, err)
		assert.True(t, receipt.Success)
		assert.True(t, receipt.ClearedCart)
		assert.Equal(t, int64(7500), receipt.Total.Amount)
		assert.Equal(t, 3, receipt.Installments)
		assert.Equal(t, []domain.Money{domain.BRL(2500), domain.BRL(2500), domain.BRL(2500)}, receipt.Schedule)
		assert.Equal(t, 0, cart.totalItems())
	})

	t.Run("schedule spreads leftover cents", func(t *testing.T) {
		svc := newTestService(scenarioCart())
		receipt, err := svc.Pay(context.Background(), domain.SingleProductPlusCart{Product: product("C", 3001)},
			domain.PaymentDetails{Method: domain.MethodCreditCard, Installments: 4})
		require.NoError(t, err)
		assert.Equal(t, []domain.Money{domain.BRL(1876), domain.BRL(1875), domain.BRL(1875), domain.BRL(1875)}, receipt.Schedule)
	})

	t.Run("configured cap limits the accepted plan", func(t *testing.T) {
		cart := scenarioCart()
		svc := NewService(cart, fakeCatalog{}, NewPricing(6), NewSimulator(cart, nil))

		q, err := svc.Quote(domain.CartOnly{})
		require.NoError(t, err)
		assert.Len(t, q.Installments, 10)

		_, err = svc.Pay(context.Background(), domain.CartOnly{}, domain.PaymentDetails{Method: domain.MethodCreditCard, Installments: 7})
		assert.ErrorIs(t, err, ErrInvalidPayment)
		assert.Equal(t, 3, cart.totalItems())

		_, err = svc.Pay(context.Background(), domain.CartOnly{}, domain.PaymentDetails{Method: domain.MethodCreditCard, Installments: 6})
		require.NoError(t, err)
	})

	t.Run("defaults to credit card paid in full", func(t *testing.T) {
		svc := newTestService(scenarioCart())
		receipt, err := svc.Pay(context.Background(), domain.CartOnly{}, domain.PaymentDetails{})
		require.NoError(t, err)
		assert.Equal(t, domain.MethodCreditCard, receipt.Method)
		assert.Equal(t, 1, receipt.Installments)
	})

	invalid := []struct {
		name    string
		details domain.PaymentDetails
	}{
		{"too many installments", domain.PaymentDetails{Method: domain.MethodCreditCard, Installments: 11}},
		{"negative installments", domain.PaymentDetails{Method: domain.MethodCreditCard, Installments: -1}},
		{"pix in installments", domain.PaymentDetails{Method: domain.MethodPix, Installments: 2}},
		{"boleto in installments", domain.PaymentDetails{Method: domain.MethodBoleto, Installments: 3}},
		{"unknown method", domain.PaymentDetails{Method: "cash"}},
		{"bad email", domain.PaymentDetails{Customer: domain.Customer{Email: "nobody"}}},
	}
	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			cart := scenarioCart()
			svc := newTestService(cart)

			_, err := svc.Pay(context.Background(), domain.CartOnly{}, tc.details)
			assert.ErrorIs(t, err, ErrInvalidPayment)
			assert.Equal(t, 3, cart.totalItems(), "rejected payment must not clear the cart")
		})
	}

	t.Run("empty checkout is rejected", func(t *testing.T) {
		svc := newTestService(&fakeCart{})
		_, err := svc.Pay(context.Background(), domain.CartOnly{}, domain.PaymentDetails{})
		assert.ErrorIs(t, err, ErrEmptyCheckout)
	})
}

func TestProduct(t *testing.T) {
	svc := newTestService(&fakeCart{})

	p, err := svc.Product(context.Background(), "C")
	require.NoError(t, err)
	assert.Equal(t, int64(3000), p.UnitPrice.Amount)

	_, err = svc.Product(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
