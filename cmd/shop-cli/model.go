package main

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	addressdomain "github.com/dwikikusuma/storefront/internal/address/domain"
	checkoutapp "github.com/dwikikusuma/storefront/internal/checkout/app"
	checkoutdomain "github.com/dwikikusuma/storefront/internal/checkout/domain"
	"github.com/dwikikusuma/storefront/internal/checkout/flow"
	"github.com/dwikikusuma/storefront/internal/checkout/infra/adapter"
	"github.com/dwikikusuma/storefront/internal/session"
)

var methods = []checkoutdomain.PaymentMethod{
	checkoutdomain.MethodCreditCard,
	checkoutdomain.MethodDebitCard,
	checkoutdomain.MethodPix,
	checkoutdomain.MethodBoleto,
}

type model struct {
	ctx      context.Context
	products []checkoutdomain.Product
	sess     *session.Session

	cursor     int
	cartCursor int

	method       int
	installments int
	postalCode   string

	status string
}

func newModel(ctx context.Context, products []checkoutdomain.Product, sess *session.Session) model {
	return model{ctx: ctx, products: products, sess: sess, installments: 1, status: "Ready"}
}

// addressSettled arrives when a postal-code lookup has been applied or
// dropped.
type addressSettled struct{}

func waitAddress(done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-done
		return addressSettled{}
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.sess.Flow.State().View {
		case flow.Closed:
			return m.updateBrowse(msg)
		case flow.ProductView:
			return m.updateProduct(msg)
		case flow.CartOpen:
			return m.updateCart(msg)
		case flow.CheckoutOpen:
			return m.updateCheckout(msg)
		}
	case addressSettled:
		st := m.sess.Address.State()
		switch {
		case !st.Open || st.Pending:
		case st.Err == "not_found":
			m.status = "Postal code not found, check the number"
		case st.Err != "":
			m.status = "Address lookup failed, try again"
		case st.Filled:
			m.status = "Address filled in"
		}
	}
	return m, nil
}

func (m model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down":
		if m.cursor < len(m.products)-1 {
			m.cursor++
		}
	case "enter":
		if p, ok := m.current(); ok {
			m.report(m.sess.Flow.OpenProduct(p), "")
		}
	case "a":
		if p, ok := m.current(); ok {
			m.sess.Cart.Add(adapter.LineItemFromProduct(p))
			m.status = fmt.Sprintf("Added %s to cart", p.Name)
		}
	case "c":
		m.cartCursor = 0
		m.report(m.sess.Flow.OpenCart(), "")
	}
	return m, nil
}

func (m model) updateProduct(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.sess.Flow.State().Product
	switch msg.String() {
	case "a":
		m.sess.Cart.Add(adapter.LineItemFromProduct(*p))
		m.status = fmt.Sprintf("Added %s to cart", p.Name)
	case "b":
		m.resetCheckout()
		m.report(m.sess.Flow.OpenCheckoutFromProduct(*p), "")
	case "esc":
		m.report(m.sess.Flow.CloseProduct(), "")
	}
	return m, nil
}

func (m model) updateCart(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.sess.Cart.Items()
	switch msg.String() {
	case "up":
		if m.cartCursor > 0 {
			m.cartCursor--
		}
	case "down":
		if m.cartCursor < len(items)-1 {
			m.cartCursor++
		}
	case "+", "-":
		if m.cartCursor < len(items) {
			it := items[m.cartCursor]
			delta := 1
			if msg.String() == "-" {
				delta = -1
			}
			m.sess.Cart.SetQuantity(it.ID, it.Quantity+delta)
		}
	case "x":
		if m.cartCursor < len(items) {
			m.sess.Cart.Remove(items[m.cartCursor].ID)
			if m.cartCursor > 0 && m.cartCursor >= len(items)-1 {
				m.cartCursor--
			}
		}
	case "enter":
		if len(items) == 0 {
			m.status = "Your cart is empty"
			return m, nil
		}
		m.resetCheckout()
		m.report(m.sess.Flow.OpenCheckoutFromCart(), "")
	case "esc":
		m.report(m.sess.Flow.CloseCart(), "")
	}
	return m, nil
}

func (m model) updateCheckout(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "left":
		m.method = (m.method + len(methods) - 1) % len(methods)
		m.installments = 1
	case "right":
		m.method = (m.method + 1) % len(methods)
		m.installments = 1
	case "up":
		if methods[m.method] == checkoutdomain.MethodCreditCard && m.installments < m.sess.Checkout.Pricing.MaxInstallments() {
			m.installments++
		}
	case "down":
		if m.installments > 1 {
			m.installments--
		}
	case "backspace":
		if d := addressdomain.Digits(m.postalCode); d != "" {
			return m.inputPostalCode(d[:len(d)-1])
		}
	case "enter":
		pay, err := m.sess.Pay(m.ctx, checkoutdomain.PaymentDetails{
			Method:       methods[m.method],
			Installments: m.installments,
		})
		if err != nil {
			m.status = "Payment rejected: " + err.Error()
			return m, nil
		}
		m.status = fmt.Sprintf("Paid %s with %s", checkoutapp.FormatBRL(pay.Receipt.Total), pay.Receipt.Method)
		if pay.Receipt.ClearedCart {
			m.status += ", cart cleared"
		}
		m.cursor = 0
	case "esc":
		m.report(m.sess.Flow.GoBack(), "")
	case "ctrl+w":
		m.report(m.sess.Flow.DismissCheckout(), "Checkout closed")
	default:
		if len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
			return m.inputPostalCode(addressdomain.Digits(m.postalCode) + key)
		}
	}
	return m, nil
}

func (m model) inputPostalCode(raw string) (tea.Model, tea.Cmd) {
	formatted, done, err := m.sess.Address.Input(raw)
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.postalCode = formatted
	if _, err := addressdomain.Normalize(formatted); err == nil {
		m.status = "Looking up address..."
		return m, waitAddress(done)
	}
	return m, nil
}

func (m *model) resetCheckout() {
	m.method = 0
	m.installments = 1
	m.postalCode = ""
}

func (m *model) report(err error, ok string) {
	if err != nil {
		m.status = err.Error()
		return
	}
	if ok != "" {
		m.status = ok
	}
}

func (m model) current() (checkoutdomain.Product, bool) {
	if m.cursor < 0 || m.cursor >= len(m.products) {
		return checkoutdomain.Product{}, false
	}
	return m.products[m.cursor], true
}

func (m model) View() string {
	b := &strings.Builder{}
	st := m.sess.Flow.State()
	fmt.Fprintf(b, "storefront  [cart: %d items, %s]\n\n",
		m.sess.Cart.TotalItems(), checkoutapp.FormatBRL(checkoutdomain.BRL(m.sess.Cart.TotalPrice())))

	switch st.View {
	case flow.Closed:
		m.viewBrowse(b)
	case flow.ProductView:
		viewProduct(b, *st.Product)
	case flow.CartOpen:
		m.viewCart(b)
	case flow.CheckoutOpen:
		m.viewCheckout(b)
	}

	fmt.Fprintf(b, "\nStatus: %s\n", m.status)
	return b.String()
}

func (m model) viewBrowse(b *strings.Builder) {
	fmt.Fprintln(b, "Products:")
	for i, p := range m.products {
		marker := " "
		if i == m.cursor {
			marker = ">"
		}
		fmt.Fprintf(b, " %s %-32s %s%s\n", marker, p.Name, checkoutapp.FormatBRL(p.UnitPrice), saleTag(p.UnitPrice, p.OriginalUnitPrice))
	}
	fmt.Fprintln(b, "\nControls: up/down select, enter details, a add to cart, c open cart, q quit")
}

func viewProduct(b *strings.Builder, p checkoutdomain.Product) {
	fmt.Fprintln(b, p.Name)
	if p.OriginalUnitPrice != nil {
		d := checkoutapp.Discount(p.UnitPrice, p.OriginalUnitPrice)
		fmt.Fprintf(b, "  was %s, save %s\n", checkoutapp.FormatBRL(*p.OriginalUnitPrice), checkoutapp.FormatBRL(d.Savings))
	}
	fmt.Fprintf(b, "  now %s\n", checkoutapp.FormatBRL(p.UnitPrice))
	fmt.Fprintln(b, "\nControls: a add to cart, b buy now, esc close")
}

func (m model) viewCart(b *strings.Builder) {
	items := m.sess.Cart.Items()
	fmt.Fprintf(b, "Cart (%d lines)\n", len(items))
	if len(items) == 0 {
		fmt.Fprintln(b, "  Your cart is empty")
	}
	for i, it := range items {
		marker := " "
		if i == m.cartCursor {
			marker = ">"
		}
		unit := checkoutdomain.Money{Currency: it.UnitPrice.Currency, Amount: it.UnitPrice.Amount}
		fmt.Fprintf(b, " %s %-32s %2d x %s\n", marker, it.Name, it.Quantity, checkoutapp.FormatBRL(unit))
	}
	fmt.Fprintln(b, "\nControls: up/down select, +/- quantity, x remove, enter checkout, esc close")
}

func (m model) viewCheckout(b *strings.Builder) {
	q, err := m.sess.Quote()
	if err != nil {
		fmt.Fprintf(b, "Checkout unavailable: %v\n", err)
		return
	}

	fmt.Fprintln(b, "Checkout")
	for _, l := range q.Lines {
		fmt.Fprintf(b, "  %-32s %2d x %s = %s\n", l.Item.Name, l.Item.Quantity,
			checkoutapp.FormatBRL(l.Item.UnitPrice), checkoutapp.FormatBRL(l.LineTotal))
	}
	fmt.Fprintf(b, "  Total: %s\n\n", checkoutapp.FormatBRL(q.Total))

	fmt.Fprintf(b, "Payment: < %s >\n", methods[m.method])
	if m.installments >= 1 && m.installments <= len(q.Installments) {
		fmt.Fprintf(b, "  %s\n", q.Installments[m.installments-1].Label)
	}

	addr := m.sess.Address.State()
	fmt.Fprintf(b, "\nPostal code: %s\n", m.postalCode)
	if addr.Filled {
		a := addr.Address
		fmt.Fprintf(b, "  %s, %s - %s/%s\n", a.Street, a.Neighborhood, a.City, a.State)
	}
	fmt.Fprintln(b, "\nControls: left/right method, up/down installments, digits postal code, enter pay, esc back, ctrl+w close")
}

func saleTag(unit checkoutdomain.Money, orig *checkoutdomain.Money) string {
	d := checkoutapp.Discount(unit, orig)
	if d.Percent == 0 {
		return ""
	}
	return fmt.Sprintf("  (-%d%%)", d.Percent)
}
