package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	addressdomain "github.com/dwikikusuma/storefront/internal/address/domain"
	cartdomain "github.com/dwikikusuma/storefront/internal/cart/domain"
	checkoutapp "github.com/dwikikusuma/storefront/internal/checkout/app"
	"github.com/dwikikusuma/storefront/internal/checkout/domain"
	"github.com/dwikikusuma/storefront/internal/checkout/flow"
	"github.com/dwikikusuma/storefront/internal/checkout/infra/adapter"
)

type catalog map[string]domain.Product

func (c catalog) GetProduct(_ context.Context, id string) (domain.Product, error) {
	p, ok := c[id]
	if !ok {
		return domain.Product{}, errors.New("not found")
	}
	return p, nil
}

type lookuper struct{}

func (lookuper) Lookup(context.Context, string) (addressdomain.Address, error) {
	return addressdomain.Address{Street: "Rua A"}, nil
}

var (
	cable   = domain.Product{ID: "A", Name: "Cable", UnitPrice: domain.BRL(1000)}
	charger = domain.Product{ID: "B", Name: "Charger", UnitPrice: domain.BRL(2500)}
	headset = domain.Product{ID: "C", Name: "Headset", UnitPrice: domain.BRL(3000)}
)

func newRegistry(t *testing.T, max int, opts ...Option) *Registry {
	t.Helper()
	r, err := NewRegistry(max, Deps{
		Catalog:            catalog{"A": cable, "B": charger, "C": headset},
		Pricing:            checkoutapp.NewPricing(0),
		Address:            lookuper{},
		BuyNowIncludesCart: true,
	}, opts...)
	require.NoError(t, err)
	return r
}

func fill(s *Session) {
	s.Cart.Add(adapter.LineItemFromProduct(cable))
	s.Cart.Add(adapter.LineItemFromProduct(cable))
	s.Cart.Add(adapter.LineItemFromProduct(charger))
}

func TestGetOrCreate(t *testing.T) {
	r := newRegistry(t, 0)

	s, created := r.GetOrCreate("")
	require.True(t, created)
	assert.NotEmpty(t, s.ID)

	again, created := r.GetOrCreate(s.ID)
	assert.False(t, created)
	assert.Same(t, s, again)

	other, created := r.GetOrCreate("unknown")
	assert.True(t, created)
	assert.NotEqual(t, "unknown", other.ID, "clients cannot pick their own session id")
	assert.Equal(t, 2, r.Len())
}

func TestSessionsAreIsolated(t *testing.T) {
	r := newRegistry(t, 0)
	a, _ := r.GetOrCreate("")
	b, _ := r.GetOrCreate("")

	fill(a)
	assert.Equal(t, 3, a.Cart.TotalItems())
	assert.Equal(t, 0, b.Cart.TotalItems())
}

func TestEvictionClosesAddressForm(t *testing.T) {
	var sizes []int
	r := newRegistry(t, 1, WithSizeHook(func(n int) { sizes = append(sizes, n) }))

	first, _ := r.GetOrCreate("")
	require.NoError(t, first.Flow.OpenCart())
	first.Cart.Add(adapter.LineItemFromProduct(cable))
	require.NoError(t, first.Flow.OpenCheckoutFromCart())
	assert.True(t, first.Address.State().Open)

	second, _ := r.GetOrCreate("")
	_, ok := r.Get(first.ID)
	assert.False(t, ok)
	assert.False(t, first.Address.State().Open)
	assert.Equal(t, 1, r.Len())

	require.NoError(t, second.Flow.OpenCart())
	second.Cart.Add(adapter.LineItemFromProduct(cable))
	require.NoError(t, second.Flow.OpenCheckoutFromCart())
	require.True(t, second.Address.State().Open)

	r.Delete(second.ID)
	assert.False(t, second.Address.State().Open, "deleting a session closes its address form")
	assert.Equal(t, []int{1, 1, 0}, sizes)
}

func TestAddressFormFollowsCheckout(t *testing.T) {
	r := newRegistry(t, 0)
	s, _ := r.GetOrCreate("")
	fill(s)

	require.NoError(t, s.Flow.OpenCart())
	assert.False(t, s.Address.State().Open)

	require.NoError(t, s.Flow.OpenCheckoutFromCart())
	assert.True(t, s.Address.State().Open)

	_, done, err := s.Address.Input("01310100")
	require.NoError(t, err)
	<-done
	assert.True(t, s.Address.State().Filled)

	require.NoError(t, s.Flow.GoBack())
	assert.False(t, s.Address.State().Open)

	require.NoError(t, s.Flow.OpenCheckoutFromCart())
	assert.False(t, s.Address.State().Filled, "reopened checkout starts with an empty form")
}

func TestQuoteAndPayBuyNow(t *testing.T) {
	r := newRegistry(t, 0)
	s, _ := r.GetOrCreate("")
	fill(s)

	_, err := s.Quote()
	assert.ErrorIs(t, err, flow.ErrNoCheckout)

	require.NoError(t, s.Flow.OpenProduct(headset))
	require.NoError(t, s.Flow.OpenCheckoutFromProduct(headset))

	q, err := s.Quote()
	require.NoError(t, err)
	assert.Equal(t, int64(7500), q.Total.Amount)

	_, err = s.Pay(context.Background(), domain.PaymentDetails{Method: domain.MethodPix, Installments: 4})
	assert.ErrorIs(t, err, checkoutapp.ErrInvalidPayment)
	assert.True(t, s.Flow.State().CheckoutOpen(), "rejected payment keeps the checkout open")
	assert.Equal(t, 3, s.Cart.TotalItems())

	checkoutID := s.Flow.State().CheckoutID
	pay, err := s.Pay(context.Background(), domain.PaymentDetails{Method: domain.MethodCreditCard, Installments: 3})
	require.NoError(t, err)
	assert.Equal(t, checkoutID, pay.CheckoutID)
	assert.True(t, pay.Receipt.ClearedCart)
	assert.Equal(t, int64(7500), pay.Receipt.Total.Amount)
	assert.Equal(t, 0, s.Cart.TotalItems())
	assert.Equal(t, flow.Closed, s.Flow.State().View)

	_, err = s.Pay(context.Background(), domain.PaymentDetails{})
	assert.ErrorIs(t, err, flow.ErrNoCheckout)
}

func TestCancelledDedupLeavesCart(t *testing.T) {
	r := newRegistry(t, 0)
	s, _ := r.GetOrCreate("")
	fill(s)

	require.NoError(t, s.Flow.OpenProduct(cable))
	require.NoError(t, s.Flow.OpenCheckoutFromProduct(cable))
	q, err := s.Quote()
	require.NoError(t, err)
	assert.Equal(t, 3, q.Lines[0].Item.Quantity)

	require.NoError(t, s.Flow.DismissCheckout())
	items := s.Cart.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "A", items[0].ID)
	assert.Equal(t, 2, items[0].Quantity)
}

// backOnClear leaves the checkout the moment the cart is cleared, the way a
// concurrent "back" request could land in the middle of a payment.
type backOnClear struct {
	sess *Session
	err  error
}

func (o *backOnClear) CartMutated(op cartdomain.Op, _ string) {
	if op == cartdomain.OpClear && o.sess != nil {
		o.err = o.sess.Flow.GoBack()
	}
}

func TestPayHoldsCheckoutUntilDone(t *testing.T) {
	obs := &backOnClear{}
	r, err := NewRegistry(0, Deps{
		Catalog:            catalog{"A": cable, "B": charger},
		Pricing:            checkoutapp.NewPricing(0),
		Address:            lookuper{},
		CartObserver:       obs,
		BuyNowIncludesCart: true,
	})
	require.NoError(t, err)

	s, _ := r.GetOrCreate("")
	fill(s)
	require.NoError(t, s.Flow.OpenCart())
	require.NoError(t, s.Flow.OpenCheckoutFromCart())
	obs.sess = s

	pay, err := s.Pay(context.Background(), domain.PaymentDetails{Method: domain.MethodPix})
	require.NoError(t, err)
	assert.True(t, pay.Receipt.ClearedCart)
	assert.Equal(t, int64(4500), pay.Receipt.Total.Amount)

	assert.ErrorIs(t, obs.err, flow.ErrInvalidTransition, "back is refused while the payment runs")
	assert.Equal(t, flow.Closed, s.Flow.State().View)
	assert.Equal(t, 0, s.Cart.TotalItems())
}

func TestRejectedPaymentReleasesCheckout(t *testing.T) {
	r := newRegistry(t, 0)
	s, _ := r.GetOrCreate("")
	fill(s)
	require.NoError(t, s.Flow.OpenCart())
	require.NoError(t, s.Flow.OpenCheckoutFromCart())
	_, done, err := s.Address.Input("01310100")
	require.NoError(t, err)
	<-done

	_, err = s.Pay(context.Background(), domain.PaymentDetails{Method: domain.MethodBoleto, Installments: 2})
	assert.ErrorIs(t, err, checkoutapp.ErrInvalidPayment)

	st := s.Flow.State()
	assert.True(t, st.CheckoutOpen())
	assert.False(t, st.Paying)
	assert.True(t, s.Address.State().Filled, "claiming and releasing the checkout keeps the address form")
	require.NoError(t, s.Flow.GoBack())
}
