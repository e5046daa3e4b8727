package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dwikikusuma/storefront/internal/checkout/domain"
)

var (
	ErrEmptyCheckout  = errors.New("nothing to check out")
	ErrInvalidPayment = errors.New("invalid payment details")
	ErrInvalidInput   = errors.New("invalid input")
)

type Service struct {
	Cart     CartReader
	Catalog  CatalogReader
	Pricing  *Pricing
	Payments *Simulator
}

func NewService(cart CartReader, catalog CatalogReader, pricing *Pricing, payments *Simulator) *Service {
	if pricing == nil {
		pricing = NewPricing(DefaultMaxInstallments)
	}
	return &Service{
		Cart:     cart,
		Catalog:  catalog,
		Pricing:  pricing,
		Payments: payments,
	}
}

func (s *Service) Quote(src domain.Source) (domain.Quote, error) {
	items := Compose(s.Cart, src)
	if len(items) == 0 {
		return domain.Quote{}, ErrEmptyCheckout
	}

	lines := make([]domain.QuoteLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, domain.QuoteLine{Item: it, LineTotal: it.LineTotal()})
	}

	total := s.Pricing.ComputeTotal(items)
	return domain.Quote{
		Source:       src.Kind(),
		Lines:        lines,
		Total:        total,
		Installments: s.Pricing.ComputeInstallments(total),
	}, nil
}

func (s *Service) Product(ctx context.Context, productID string) (domain.Product, error) {
	if strings.TrimSpace(productID) == "" {
		return domain.Product{}, ErrInvalidInput
	}
	return s.Catalog.GetProduct(ctx, productID)
}

// Pay validates details, prices the composed items and finalizes the
// simulated payment.
func (s *Service) Pay(ctx context.Context, src domain.Source, details domain.PaymentDetails) (domain.Receipt, error) {
	details, err := s.normalizePayment(details)
	if err != nil {
		return domain.Receipt{}, err
	}

	items := Compose(s.Cart, src)
	if len(items) == 0 {
		return domain.Receipt{}, ErrEmptyCheckout
	}
	total := s.Pricing.ComputeTotal(items)

	receipt, err := s.Payments.Finalize(ctx, src)
	if err != nil {
		return domain.Receipt{}, err
	}

	receipt.Method = details.Method
	receipt.Installments = details.Installments
	receipt.Total = total
	receipt.Schedule = s.Pricing.SplitInstallments(total, details.Installments)
	return receipt, nil
}

func (s *Service) normalizePayment(d domain.PaymentDetails) (domain.PaymentDetails, error) {
	if d.Method == "" {
		d.Method = domain.MethodCreditCard
	}
	if d.Installments == 0 {
		d.Installments = 1
	}

	switch d.Method {
	case domain.MethodCreditCard:
		if d.Installments < 1 || d.Installments > s.Pricing.MaxInstallments() {
			return d, fmt.Errorf("%w: installments must be between 1 and %d, got %d",
				ErrInvalidPayment, s.Pricing.MaxInstallments(), d.Installments)
		}
	case domain.MethodDebitCard, domain.MethodPix, domain.MethodBoleto:
		if d.Installments != 1 {
			return d, fmt.Errorf("%w: %s is paid in full, got %d installments",
				ErrInvalidPayment, d.Method, d.Installments)
		}
	default:
		return d, fmt.Errorf("%w: unknown method %q", ErrInvalidPayment, d.Method)
	}

	d.Customer.Email = strings.TrimSpace(d.Customer.Email)
	if d.Customer.Email != "" && !strings.Contains(d.Customer.Email, "@") {
		return d, fmt.Errorf("%w: email %q", ErrInvalidPayment, d.Customer.Email)
	}
	return d, nil
}
