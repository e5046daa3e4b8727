package domain

import "fmt"

const CurrencyBRL = "BRL"

type Money struct {
	Currency string
	Amount   int64
}

func BRL(cents int64) Money {
	return Money{Currency: CurrencyBRL, Amount: cents}
}

// Float converts minor units to currency units for display.
func (m Money) Float() float64 {
	return float64(m.Amount) / 100
}

// Product is the part of a catalog product the checkout reads.
type Product struct {
	ID                string
	Name              string
	UnitPrice         Money
	OriginalUnitPrice *Money
	ImageRef          string
}

// Item is a read-only snapshot charged during one checkout.
type Item struct {
	ProductID         string
	Name              string
	UnitPrice         Money
	OriginalUnitPrice *Money
	ImageRef          string
	Quantity          int
}

func (it Item) LineTotal() Money {
	return Money{Currency: it.UnitPrice.Currency, Amount: it.UnitPrice.Amount * int64(it.Quantity)}
}

func ItemFromProduct(p Product) Item {
	it := Item{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.UnitPrice,
		ImageRef:  p.ImageRef,
		Quantity:  1,
	}
	if p.OriginalUnitPrice != nil {
		orig := *p.OriginalUnitPrice
		it.OriginalUnitPrice = &orig
	}
	return it
}

// Source records how checkout was entered. The set of implementations is
// closed: CartOnly, SingleProductOnly and SingleProductPlusCart.
type Source interface {
	Kind() SourceKind
	isSource()
}

type SourceKind string

const (
	KindCartOnly              SourceKind = "cart_only"
	KindSingleProductOnly     SourceKind = "single_product_only"
	KindSingleProductPlusCart SourceKind = "single_product_plus_cart"
)

type CartOnly struct{}

type SingleProductOnly struct {
	Product Product
}

type SingleProductPlusCart struct {
	Product Product
}

func (CartOnly) Kind() SourceKind              { return KindCartOnly }
func (SingleProductOnly) Kind() SourceKind     { return KindSingleProductOnly }
func (SingleProductPlusCart) Kind() SourceKind { return KindSingleProductPlusCart }

func (CartOnly) isSource()              {}
func (SingleProductOnly) isSource()     {}
func (SingleProductPlusCart) isSource() {}

func UnknownSource(src Source) string {
	return fmt.Sprintf("checkout: unhandled source %T", src)
}

type InstallmentOption struct {
	Count          int
	PerInstallment float64
	Label          string
}

type Discount struct {
	Percent int
	Savings Money
}

type QuoteLine struct {
	Item      Item
	LineTotal Money
}

type Quote struct {
	Source       SourceKind
	Lines        []QuoteLine
	Total        Money
	Installments []InstallmentOption
}

type PaymentMethod string

const (
	MethodCreditCard PaymentMethod = "credit-card"
	MethodDebitCard  PaymentMethod = "debit-card"
	MethodPix        PaymentMethod = "pix"
	MethodBoleto     PaymentMethod = "boleto"
)

type Customer struct {
	Name  string
	Email string
	Phone string
}

type PaymentDetails struct {
	Method       PaymentMethod
	Installments int
	Customer     Customer
}

// Receipt is the outcome of a simulated payment. It carries no transaction
// identity.
type Receipt struct {
	Success      bool
	ClearedCart  bool
	Method       PaymentMethod
	Installments int
	Total        Money
	// Schedule is the amount of each installment; it always adds up to Total.
	Schedule []Money
}
