package httpapi

import (
	"time"

	cartdomain "github.com/dwikikusuma/storefront/internal/cart/domain"
	catalogdomain "github.com/dwikikusuma/storefront/internal/catalog/domain"
	checkoutapp "github.com/dwikikusuma/storefront/internal/checkout/app"
	"github.com/dwikikusuma/storefront/internal/checkout/domain"
	"github.com/dwikikusuma/storefront/internal/checkout/flow"
)

// moneyDTO carries cents plus a display label so clients never do
// floating-point math.
type moneyDTO struct {
	Cents    int64  `json:"cents"`
	Currency string `json:"currency"`
	Label    string `json:"label"`
}

func toMoney(m domain.Money) moneyDTO {
	if m.Currency == "" {
		m.Currency = domain.CurrencyBRL
	}
	return moneyDTO{Cents: m.Amount, Currency: m.Currency, Label: checkoutapp.FormatBRL(m)}
}

func toMoneyPtr(m *domain.Money) *moneyDTO {
	if m == nil {
		return nil
	}
	out := toMoney(*m)
	return &out
}

type productDTO struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description,omitempty"`
	Price           moneyDTO   `json:"price"`
	OriginalPrice   *moneyDTO  `json:"originalPrice,omitempty"`
	DiscountPercent int        `json:"discountPercent"`
	Savings         moneyDTO   `json:"savings"`
	OnSale          bool       `json:"onSale"`
	ImageURL        string     `json:"imageUrl,omitempty"`
	Category        string     `json:"category,omitempty"`
	Stock           int        `json:"stock"`
	CreatedAt       *time.Time `json:"createdAt,omitempty"`
}

func toProduct(p catalogdomain.Product) productDTO {
	price := domain.Money{Currency: p.Price.Currency, Amount: p.Price.Amount}
	var orig *domain.Money
	if o, ok := p.OriginalPrice(); ok {
		orig = &domain.Money{Currency: o.Currency, Amount: o.Amount}
	}
	disc := checkoutapp.Discount(price, orig)

	out := productDTO{
		ID:              p.ID,
		Name:            p.Name,
		Description:     p.Description,
		Price:           toMoney(price),
		OriginalPrice:   toMoneyPtr(orig),
		DiscountPercent: disc.Percent,
		Savings:         toMoney(disc.Savings),
		OnSale:          p.OnSale(),
		ImageURL:        p.ImageRef,
		Category:        p.Category,
		Stock:           p.Stock,
	}
	if !p.CreatedAt.IsZero() {
		t := p.CreatedAt
		out.CreatedAt = &t
	}
	return out
}

type createProductRequest struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	PriceCents      int64  `json:"priceCents"`
	DiscountPercent int    `json:"discountPercent"`
	ImageURL        string `json:"imageUrl"`
	Category        string `json:"category"`
	Stock           int    `json:"stock"`
}

type lineDTO struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	UnitPrice       moneyDTO  `json:"unitPrice"`
	OriginalPrice   *moneyDTO `json:"originalPrice,omitempty"`
	DiscountPercent int       `json:"discountPercent"`
	ImageURL        string    `json:"imageUrl,omitempty"`
	Quantity        int       `json:"quantity"`
	LineTotal       moneyDTO  `json:"lineTotal"`
}

type cartDTO struct {
	Items      []lineDTO `json:"items"`
	Lines      int       `json:"lines"`
	TotalItems int       `json:"totalItems"`
	TotalPrice moneyDTO  `json:"totalPrice"`
	Empty      bool      `json:"empty"`
}

func toCartLine(it cartdomain.LineItem) lineDTO {
	unit := domain.Money{Currency: it.UnitPrice.Currency, Amount: it.UnitPrice.Amount}
	var orig *domain.Money
	if it.OriginalUnitPrice != nil {
		orig = &domain.Money{Currency: it.OriginalUnitPrice.Currency, Amount: it.OriginalUnitPrice.Amount}
	}
	return lineDTO{
		ID:              it.ID,
		Name:            it.Name,
		UnitPrice:       toMoney(unit),
		OriginalPrice:   toMoneyPtr(orig),
		DiscountPercent: checkoutapp.Discount(unit, orig).Percent,
		ImageURL:        it.ImageRef,
		Quantity:        it.Quantity,
		LineTotal:       toMoney(domain.Money{Currency: unit.Currency, Amount: it.LineTotal()}),
	}
}

func toCart(items []cartdomain.LineItem, totalItems int, totalPrice int64) cartDTO {
	out := cartDTO{
		Items:      make([]lineDTO, 0, len(items)),
		Lines:      len(items),
		TotalItems: totalItems,
		TotalPrice: toMoney(domain.BRL(totalPrice)),
		Empty:      len(items) == 0,
	}
	for _, it := range items {
		out.Items = append(out.Items, toCartLine(it))
	}
	return out
}

type checkoutProductDTO struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	UnitPrice     moneyDTO  `json:"unitPrice"`
	OriginalPrice *moneyDTO `json:"originalPrice,omitempty"`
	ImageURL      string    `json:"imageUrl,omitempty"`
}

func toCheckoutProduct(p *domain.Product) *checkoutProductDTO {
	if p == nil {
		return nil
	}
	return &checkoutProductDTO{
		ID:            p.ID,
		Name:          p.Name,
		UnitPrice:     toMoney(p.UnitPrice),
		OriginalPrice: toMoneyPtr(p.OriginalUnitPrice),
		ImageURL:      p.ImageRef,
	}
}

type flowDTO struct {
	View       string              `json:"view"`
	Origin     string              `json:"origin,omitempty"`
	Source     string              `json:"source,omitempty"`
	Product    *checkoutProductDTO `json:"product,omitempty"`
	CheckoutID string              `json:"checkoutId,omitempty"`
	Paying     bool                `json:"paying,omitempty"`
}

func toFlow(st flow.State) flowDTO {
	out := flowDTO{
		View:       string(st.View),
		Origin:     string(st.Origin),
		Product:    toCheckoutProduct(st.Product),
		CheckoutID: st.CheckoutID,
		Paying:     st.Paying,
	}
	if st.Source != nil {
		out.Source = string(st.Source.Kind())
	}
	return out
}

type quoteLineDTO struct {
	ProductID       string    `json:"productId"`
	Name            string    `json:"name"`
	UnitPrice       moneyDTO  `json:"unitPrice"`
	OriginalPrice   *moneyDTO `json:"originalPrice,omitempty"`
	DiscountPercent int       `json:"discountPercent"`
	Quantity        int       `json:"quantity"`
	LineTotal       moneyDTO  `json:"lineTotal"`
}

type installmentDTO struct {
	Count          int     `json:"count"`
	PerInstallment float64 `json:"perInstallment"`
	Label          string  `json:"label"`
}

type quoteDTO struct {
	CheckoutID   string           `json:"checkoutId"`
	Source       string           `json:"source"`
	Lines        []quoteLineDTO   `json:"lines"`
	Total        moneyDTO         `json:"total"`
	Installments []installmentDTO `json:"installments"`
}

func toQuote(checkoutID string, q domain.Quote) quoteDTO {
	out := quoteDTO{
		CheckoutID:   checkoutID,
		Source:       string(q.Source),
		Lines:        make([]quoteLineDTO, 0, len(q.Lines)),
		Total:        toMoney(q.Total),
		Installments: make([]installmentDTO, 0, len(q.Installments)),
	}
	for _, l := range q.Lines {
		out.Lines = append(out.Lines, quoteLineDTO{
			ProductID:       l.Item.ProductID,
			Name:            l.Item.Name,
			UnitPrice:       toMoney(l.Item.UnitPrice),
			OriginalPrice:   toMoneyPtr(l.Item.OriginalUnitPrice),
			DiscountPercent: checkoutapp.Discount(l.Item.UnitPrice, l.Item.OriginalUnitPrice).Percent,
			Quantity:        l.Item.Quantity,
			LineTotal:       toMoney(l.LineTotal),
		})
	}
	for _, o := range q.Installments {
		out.Installments = append(out.Installments, installmentDTO{Count: o.Count, PerInstallment: o.PerInstallment, Label: o.Label})
	}
	return out
}

type customerDTO struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type payRequest struct {
	Method       string      `json:"method"`
	Installments int         `json:"installments"`
	Customer     customerDTO `json:"customer"`
}

func (r payRequest) toDetails() domain.PaymentDetails {
	return domain.PaymentDetails{
		Method:       domain.PaymentMethod(r.Method),
		Installments: r.Installments,
		Customer:     domain.Customer{Name: r.Customer.Name, Email: r.Customer.Email, Phone: r.Customer.Phone},
	}
}

type receiptDTO struct {
	Success      bool       `json:"success"`
	CheckoutID   string     `json:"checkoutId"`
	Source       string     `json:"source"`
	ClearedCart  bool       `json:"clearedCart"`
	Method       string     `json:"method"`
	Installments int        `json:"installments"`
	Total        moneyDTO   `json:"total"`
	Schedule     []moneyDTO `json:"schedule"`
}

func toReceipt(checkoutID, source string, r domain.Receipt) receiptDTO {
	out := receiptDTO{
		Success:      r.Success,
		CheckoutID:   checkoutID,
		Source:       source,
		ClearedCart:  r.ClearedCart,
		Method:       string(r.Method),
		Installments: r.Installments,
		Total:        toMoney(r.Total),
		Schedule:     make([]moneyDTO, 0, len(r.Schedule)),
	}
	for _, m := range r.Schedule {
		out.Schedule = append(out.Schedule, toMoney(m))
	}
	return out
}
