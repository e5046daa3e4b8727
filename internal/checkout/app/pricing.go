package app

import (
	"fmt"
	"math"

	"github.com/dwikikusuma/storefront/internal/checkout/domain"
)

// InstallmentOptions is the fixed number of plans offered for every total.
const InstallmentOptions = 10

const DefaultMaxInstallments = InstallmentOptions

// Pricing prices composed items. maxInstallments caps the credit-card plan a
// shopper may pick; it never changes the options offered.
type Pricing struct {
	maxInstallments int
}

func NewPricing(maxInstallments int) *Pricing {
	if maxInstallments <= 0 || maxInstallments > InstallmentOptions {
		maxInstallments = DefaultMaxInstallments
	}
	return &Pricing{maxInstallments: maxInstallments}
}

// MaxInstallments is the largest count accepted at payment, in 1..10.
func (p *Pricing) MaxInstallments() int {
	return p.maxInstallments
}

func (p *Pricing) ComputeTotal(items []domain.Item) domain.Money {
	total := domain.BRL(0)
	for _, it := range items {
		total.Amount += it.LineTotal().Amount
	}
	return total
}

// ComputeInstallments returns exactly InstallmentOptions options, counts 1
// to 10. PerInstallment is the exact quotient; only labels are truncated to
// whole cents.
func (p *Pricing) ComputeInstallments(total domain.Money) []domain.InstallmentOption {
	out := make([]domain.InstallmentOption, 0, InstallmentOptions)
	for count := 1; count <= InstallmentOptions; count++ {
		per := domain.Money{Currency: total.Currency, Amount: total.Amount / int64(count)}

		label := fmt.Sprintf("%dx of %s interest-free", count, FormatBRL(per))
		if count == 1 {
			label = "Pay in full - " + FormatBRL(per)
		}

		out = append(out, domain.InstallmentOption{
			Count:          count,
			PerInstallment: total.Float() / float64(count),
			Label:          label,
		})
	}
	return out
}

// SplitInstallments divides total into count amounts that add up exactly,
// giving the leftover cents to the first installments.
func (p *Pricing) SplitInstallments(total domain.Money, count int) []domain.Money {
	if count < 1 {
		count = 1
	}
	base := total.Amount / int64(count)
	rem := total.Amount % int64(count)

	out := make([]domain.Money, count)
	for i := range out {
		amt := base
		if int64(i) < rem {
			amt++
		}
		out[i] = domain.Money{Currency: total.Currency, Amount: amt}
	}
	return out
}

// Discount derives the sale percentage and savings of a product. It is zero
// when there is no original price above the unit price.
func Discount(unit domain.Money, original *domain.Money) domain.Discount {
	if original == nil || original.Amount <= 0 || original.Amount <= unit.Amount {
		return domain.Discount{Savings: domain.Money{Currency: unit.Currency}}
	}
	diff := original.Amount - unit.Amount
	return domain.Discount{
		Percent: int(math.Round(100 * float64(diff) / float64(original.Amount))),
		Savings: domain.Money{Currency: unit.Currency, Amount: diff},
	}
}

func FormatBRL(m domain.Money) string {
	sign := ""
	amt := m.Amount
	if amt < 0 {
		sign = "-"
		amt = -amt
	}
	return fmt.Sprintf("%sR$ %d.%02d", sign, amt/100, amt%100)
}
