package domain

import (
	"math"
	"time"
)

type Money struct {
	Currency string
	Amount   int64
}

type Product struct {
	ID              string
	Name            string
	Price           Money
	Description     string
	DiscountPercent int
	ImageRef        string
	Category        string
	Stock           int
	Active          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OriginalPrice is the pre-discount price implied by DiscountPercent, rounded
// to whole cents. ok is false when the product is not on sale.
func (p Product) OriginalPrice() (Money, bool) {
	if p.DiscountPercent <= 0 || p.DiscountPercent >= 100 {
		return Money{}, false
	}
	amount := math.Round(float64(p.Price.Amount) * 100 / float64(100-p.DiscountPercent))
	return Money{Currency: p.Price.Currency, Amount: int64(amount)}, true
}

func (p Product) OnSale() bool {
	_, ok := p.OriginalPrice()
	return ok
}

type ListFilter struct {
	Query    string
	Category string
	Limit    int
	Cursor   string
}
