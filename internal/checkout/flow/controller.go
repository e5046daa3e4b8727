// Package flow tracks which storefront panel is visible (cart, product view,
// checkout) and where "back" returns to. It owns no pricing.
package flow

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/dwikikusuma/storefront/internal/checkout/domain"
)

var (
	ErrInvalidTransition = errors.New("invalid flow transition")
	ErrNoCheckout        = errors.New("no checkout is open")
)

type View string

const (
	Closed       View = "closed"
	CartOpen     View = "cart"
	ProductView  View = "product"
	CheckoutOpen View = "checkout"
)

// State is a snapshot of the controller. Origin is set only while the
// checkout is open; Product is the product on screen (product view) or the
// buy-now target (checkout entered from a product). Paying is set between
// BeginPayment and the end of that payment.
type State struct {
	View       View
	Origin     View
	Product    *domain.Product
	Source     domain.Source
	CheckoutID string
	Paying     bool
}

func (s State) CheckoutOpen() bool { return s.View == CheckoutOpen }

type Listener func(from, to State)

type Controller struct {
	mu        sync.Mutex
	state     State
	listeners []Listener

	includeCart bool
	newID       func() string
}

type Option func(*Controller)

// WithBuyNowIncludesCart selects the buy-now source: SingleProductPlusCart
// when true (the default), SingleProductOnly otherwise.
func WithBuyNowIncludesCart(include bool) Option {
	return func(c *Controller) { c.includeCart = include }
}

func NewController(opts ...Option) *Controller {
	c := &Controller{
		state:       State{View: Closed},
		includeCart: true,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnChange registers fn to run after every successful transition. fn runs
// without the controller lock held.
func (c *Controller) OnChange(fn Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Source returns the checkout source while a checkout is open.
func (c *Controller) Source() (domain.Source, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.View != CheckoutOpen {
		return nil, ErrNoCheckout
	}
	return c.state.Source, nil
}

func (c *Controller) OpenCart() error {
	return c.transition("open cart", func(s State) (State, bool) {
		if s.View != Closed {
			return s, false
		}
		return State{View: CartOpen}, true
	})
}

func (c *Controller) CloseCart() error {
	return c.transition("close cart", func(s State) (State, bool) {
		if s.View != CartOpen {
			return s, false
		}
		return State{View: Closed}, true
	})
}

func (c *Controller) OpenProduct(p domain.Product) error {
	return c.transition("open product", func(s State) (State, bool) {
		if s.View != Closed {
			return s, false
		}
		return State{View: ProductView, Product: &p}, true
	})
}

func (c *Controller) CloseProduct() error {
	return c.transition("close product", func(s State) (State, bool) {
		if s.View != ProductView {
			return s, false
		}
		return State{View: Closed}, true
	})
}

func (c *Controller) OpenCheckoutFromCart() error {
	return c.transition("open checkout from cart", func(s State) (State, bool) {
		if s.View != CartOpen {
			return s, false
		}
		return State{
			View:       CheckoutOpen,
			Origin:     CartOpen,
			Source:     domain.CartOnly{},
			CheckoutID: c.newID(),
		}, true
	})
}

// OpenCheckoutFromProduct is the "buy now" path. The cart view is never
// opened on the way.
func (c *Controller) OpenCheckoutFromProduct(p domain.Product) error {
	return c.transition("open checkout from product", func(s State) (State, bool) {
		if s.View != ProductView {
			return s, false
		}
		var src domain.Source = domain.SingleProductOnly{Product: p}
		if c.includeCart {
			src = domain.SingleProductPlusCart{Product: p}
		}
		return State{
			View:       CheckoutOpen,
			Origin:     ProductView,
			Product:    &p,
			Source:     src,
			CheckoutID: c.newID(),
		}, true
	})
}

// GoBack returns from checkout to the view it was entered from. Going back
// to a product never re-opens the cart.
func (c *Controller) GoBack() error {
	return c.transition("go back", func(s State) (State, bool) {
		if s.View != CheckoutOpen || s.Paying {
			return s, false
		}
		switch s.Origin {
		case CartOpen:
			return State{View: CartOpen}, true
		case ProductView:
			return State{View: ProductView, Product: s.Product}, true
		default:
			return s, false
		}
	})
}

// BeginPayment claims the open checkout for a payment and returns the claimed
// snapshot. Until OnPaymentSuccess or AbortPayment, the checkout cannot be
// left or claimed again.
func (c *Controller) BeginPayment() (State, error) {
	if _, err := c.Source(); err != nil {
		return State{}, err
	}
	var claimed State
	err := c.transition("start payment", func(s State) (State, bool) {
		if s.View != CheckoutOpen || s.Paying {
			return s, false
		}
		s.Paying = true
		claimed = s
		return s, true
	})
	return claimed, err
}

// AbortPayment releases a claim after a failed payment; the checkout stays
// open.
func (c *Controller) AbortPayment() error {
	return c.transition("abort payment", func(s State) (State, bool) {
		if s.View != CheckoutOpen || !s.Paying {
			return s, false
		}
		s.Paying = false
		return s, true
	})
}

func (c *Controller) OnPaymentSuccess() error {
	return c.transition("complete payment", func(s State) (State, bool) {
		if s.View != CheckoutOpen {
			return s, false
		}
		return State{View: Closed}, true
	})
}

// DismissCheckout closes the checkout without paying, whatever its origin.
func (c *Controller) DismissCheckout() error {
	return c.transition("dismiss checkout", func(s State) (State, bool) {
		if s.View != CheckoutOpen || s.Paying {
			return s, false
		}
		return State{View: Closed}, true
	})
}

func (c *Controller) transition(event string, next func(State) (State, bool)) error {
	c.mu.Lock()
	from := c.state
	to, ok := next(from)
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: cannot %s while %s", ErrInvalidTransition, event, describe(from))
	}
	c.state = to
	listeners := append([]Listener(nil), c.listeners...)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(from, to)
	}
	return nil
}

func describe(s State) string {
	if s.View == CheckoutOpen {
		if s.Paying {
			return fmt.Sprintf("%s (from %s) is being paid", s.View, s.Origin)
		}
		return fmt.Sprintf("%s (from %s)", s.View, s.Origin)
	}
	return string(s.View)
}
