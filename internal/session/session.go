// Package session gives every shopper their own cart, panel flow and address
// form. Sessions live in memory in a bounded LRU; the least recently used one
// is dropped when the registry is full.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	addressapp "github.com/dwikikusuma/storefront/internal/address/app"
	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	checkoutapp "github.com/dwikikusuma/storefront/internal/checkout/app"
	"github.com/dwikikusuma/storefront/internal/checkout/domain"
	"github.com/dwikikusuma/storefront/internal/checkout/flow"
	"github.com/dwikikusuma/storefront/internal/checkout/infra/adapter"
)

const DefaultMaxSessions = 10000

type Session struct {
	ID       string
	Cart     *cartapp.Store
	Checkout *checkoutapp.Service
	Flow     *flow.Controller
	Address  *addressapp.Autofill

	log *slog.Logger
}

// Payment is the outcome of a successful Pay.
type Payment struct {
	CheckoutID string
	Source     domain.Source
	Receipt    domain.Receipt
}

// Quote prices the checkout that is currently open.
func (s *Session) Quote() (domain.Quote, error) {
	src, err := s.Flow.Source()
	if err != nil {
		return domain.Quote{}, err
	}
	return s.Checkout.Quote(src)
}

// Pay finalizes the open checkout and closes it. The checkout is claimed
// before the cart is touched, so a concurrent back or dismiss is refused
// instead of stranding a cleared cart. A rejected payment leaves both the
// cart and the checkout open.
func (s *Session) Pay(ctx context.Context, details domain.PaymentDetails) (Payment, error) {
	st, err := s.Flow.BeginPayment()
	if err != nil {
		return Payment{}, err
	}

	receipt, err := s.Checkout.Pay(ctx, st.Source, details)
	if err != nil {
		if abortErr := s.Flow.AbortPayment(); abortErr != nil {
			s.log.Warn("release payment claim failed", slog.String("checkout_id", st.CheckoutID), slog.Any("err", abortErr))
		}
		return Payment{}, err
	}
	if err := s.Flow.OnPaymentSuccess(); err != nil {
		return Payment{}, err
	}
	return Payment{CheckoutID: st.CheckoutID, Source: st.Source, Receipt: receipt}, nil
}

func (s *Session) close() {
	s.Address.Close()
}

type Deps struct {
	Catalog      checkoutapp.CatalogReader
	Pricing      *checkoutapp.Pricing
	Address      addressapp.Lookuper
	CartObserver cartapp.Observer

	BuyNowIncludesCart bool
	LookupTimeout      time.Duration
	Log                *slog.Logger
}

type Registry struct {
	sessions *lru.Cache[string, *Session]
	deps     Deps
	log      *slog.Logger

	// mu makes GetOrCreate atomic; the cache locks itself for everything else.
	mu sync.Mutex

	onSize func(n int)
}

type Option func(*Registry)

// WithSizeHook reports the number of live sessions after every change.
func WithSizeHook(fn func(n int)) Option {
	return func(r *Registry) { r.onSize = fn }
}

func NewRegistry(maxSessions int, deps Deps, opts ...Option) (*Registry, error) {
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	if deps.Log == nil {
		deps.Log = slog.Default()
	}

	r := &Registry{deps: deps, log: deps.Log, onSize: func(int) {}}
	for _, opt := range opts {
		opt(r)
	}

	cache, err := lru.NewWithEvict[string, *Session](maxSessions, func(id string, s *Session) {
		s.close()
		r.log.Debug("session evicted", slog.String("session_id", id))
	})
	if err != nil {
		return nil, err
	}
	r.sessions = cache
	return r, nil
}

func (r *Registry) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	return r.sessions.Get(id)
}

// GetOrCreate returns the session for id, creating a new one (with a fresh
// id) when id is empty or unknown.
func (r *Registry) GetOrCreate(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.Get(id); ok {
		return s, false
	}
	s := r.newSession(uuid.NewString())
	r.sessions.Add(s.ID, s)
	r.onSize(r.sessions.Len())
	return s, true
}

func (r *Registry) Delete(id string) {
	r.sessions.Remove(id)
	r.onSize(r.sessions.Len())
}

func (r *Registry) Len() int {
	return r.sessions.Len()
}

func (r *Registry) newSession(id string) *Session {
	log := r.log.With(slog.String("session_id", id))

	store := cartapp.NewStore(cartapp.WithObserver(r.deps.CartObserver), cartapp.WithLogger(log))
	cart := adapter.NewCartStoreReader(store)
	checkout := checkoutapp.NewService(cart, r.deps.Catalog, r.deps.Pricing, checkoutapp.NewSimulator(cart, log))

	ctrl := flow.NewController(flow.WithBuyNowIncludesCart(r.deps.BuyNowIncludesCart))
	autofill := addressapp.NewAutofill(r.deps.Address, r.deps.LookupTimeout, log)

	// The address form belongs to the checkout: a new checkout starts it
	// empty and leaving the checkout discards it along with pending lookups.
	ctrl.OnChange(func(from, to flow.State) {
		switch {
		case to.CheckoutOpen() && !from.CheckoutOpen():
			autofill.Open()
		case from.CheckoutOpen() && !to.CheckoutOpen():
			autofill.Close()
		}
		log.Debug("flow changed", slog.String("from", string(from.View)), slog.String("to", string(to.View)),
			slog.Bool("paying", to.Paying))
	})

	return &Session{
		ID:       id,
		Cart:     store,
		Checkout: checkout,
		Flow:     ctrl,
		Address:  autofill,
		log:      log,
	}
}
