package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dwikikusuma/storefront/internal/address/domain"
)

const DefaultLookupTimeout = 8 * time.Second

var ErrAutofillClosed = errors.New("address form is not open")

// Lookuper is satisfied by *Service.
type Lookuper interface {
	Lookup(ctx context.Context, raw string) (domain.Address, error)
}

// AutofillState is what the address form shows. Err holds the code of the
// last failed lookup (see domain.ErrorCode).
type AutofillState struct {
	Open       bool           `json:"open"`
	PostalCode string         `json:"postalCode"`
	Address    domain.Address `json:"address"`
	Filled     bool           `json:"filled"`
	Pending    bool           `json:"pending"`
	Err        string         `json:"error,omitempty"`
}

// Autofill is the postal-code field of one address form. A lookup starts as
// soon as the input holds eight digits. Its result is applied only while the
// form is still open and no newer input has arrived since.
type Autofill struct {
	lookup  Lookuper
	timeout time.Duration
	log     *slog.Logger

	mu     sync.Mutex
	open   bool
	gen    uint64
	cancel context.CancelFunc
	state  AutofillState
}

func NewAutofill(lookup Lookuper, timeout time.Duration, log *slog.Logger) *Autofill {
	if timeout <= 0 {
		timeout = DefaultLookupTimeout
	}
	if log == nil {
		log = slog.Default()
	}
	return &Autofill{lookup: lookup, timeout: timeout, log: log}
}

// Open starts a fresh form. Anything left from a previous form is dropped.
func (a *Autofill) Open() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.invalidateLocked()
	a.open = true
	a.state = AutofillState{Open: true}
}

// Close discards the form and any lookup still in flight.
func (a *Autofill) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.invalidateLocked()
	a.open = false
	a.state = AutofillState{}
}

func (a *Autofill) State() AutofillState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Input records raw as the postal-code field and returns it formatted. The
// returned channel is closed once the lookup it started (if any) has been
// applied or dropped.
func (a *Autofill) Input(raw string) (string, <-chan struct{}, error) {
	done := make(chan struct{})

	a.mu.Lock()
	if !a.open {
		a.mu.Unlock()
		close(done)
		return "", done, ErrAutofillClosed
	}

	formatted := domain.FormatInput(raw)
	a.state.PostalCode = formatted
	a.invalidateLocked()

	cep, err := domain.Normalize(formatted)
	if err != nil {
		a.state.Pending = false
		a.mu.Unlock()
		close(done)
		return formatted, done, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	a.cancel = cancel
	gen := a.gen
	a.state.Pending = true
	a.state.Err = ""
	a.mu.Unlock()

	go a.run(ctx, cancel, gen, cep, done)
	return formatted, done, nil
}

func (a *Autofill) run(ctx context.Context, cancel context.CancelFunc, gen uint64, cep string, done chan struct{}) {
	defer close(done)
	defer cancel()

	addr, err := a.lookup.Lookup(ctx, cep)

	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.open || a.gen != gen {
		a.log.Debug("stale address lookup dropped", slog.String("postal_code", cep))
		return
	}

	a.cancel = nil
	a.state.Pending = false
	if err != nil {
		a.state.Err = domain.ErrorCode(err)
		return
	}
	a.state.Address = addr
	a.state.Filled = true
}

func (a *Autofill) invalidateLocked() {
	a.gen++
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
}
