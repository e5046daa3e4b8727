package httpapi

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	addressdomain "github.com/dwikikusuma/storefront/internal/address/domain"
	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
	catalogdomain "github.com/dwikikusuma/storefront/internal/catalog/domain"
	"github.com/dwikikusuma/storefront/internal/checkout/flow"
	"github.com/dwikikusuma/storefront/internal/checkout/infra/adapter"
	"github.com/dwikikusuma/storefront/internal/checkout/infra/events"
)

const maxBatchIDs = 100

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if ids := q.Get("ids"); ids != "" {
		s.handleBatchProducts(w, r, strings.Split(ids, ","))
		return
	}

	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, errBadRequest("limit must be a number"))
			return
		}
		limit = n
	}

	products, next, err := s.catalog.ListProducts(r.Context(), catalogdomain.ListFilter{
		Query:    q.Get("q"),
		Category: q.Get("category"),
		Limit:    limit,
		Cursor:   q.Get("cursor"),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]productDTO, 0, len(products))
	for _, p := range products {
		out = append(out, toProduct(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": out, "nextCursor": next})
}

// handleBatchProducts returns the listed products in request order. One
// unknown id fails the whole batch.
func (s *Server) handleBatchProducts(w http.ResponseWriter, r *http.Request, ids []string) {
	if len(ids) > maxBatchIDs {
		writeError(w, errBadRequest(fmt.Sprintf("at most %d ids per request", maxBatchIDs)))
		return
	}
	products, err := s.catalog.GetProducts(r.Context(), ids)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]productDTO, 0, len(products))
	for _, p := range products {
		out = append(out, toProduct(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": out})
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	p, err := s.catalog.CreateProduct(r.Context(), catalogapp.CreateProductInput{
		Name:            req.Name,
		Description:     req.Description,
		PriceCents:      req.PriceCents,
		DiscountPercent: req.DiscountPercent,
		ImageRef:        req.ImageURL,
		Category:        req.Category,
		Stock:           req.Stock,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	s.log.Info("product created", slog.String("product_id", p.ID), slog.String("name", p.Name))
	writeJSON(w, http.StatusCreated, toProduct(p))
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := s.catalog.GetProduct(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProduct(p))
}

// handleEndSession forgets the caller's session along with its cart and any
// open checkout.
func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	s.sessions.Delete(sess.ID)
	if s.metrics != nil {
		s.metrics.Sessions.Set(float64(s.sessions.Len()))
	}
	w.Header().Del(SessionHeader)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeCart(w http.ResponseWriter, r *http.Request) {
	cart := sessionFrom(r).Cart
	writeJSON(w, http.StatusOK, toCart(cart.Items(), cart.TotalItems(), cart.TotalPrice()))
}

func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request) {
	s.writeCart(w, r)
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	item, ok := sessionFrom(r).Cart.Get(id)
	if !ok {
		writeError(w, errNotFound(fmt.Sprintf("item %q is not in the cart", id)))
		return
	}
	writeJSON(w, http.StatusOK, toCartLine(item))
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string `json:"productId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	sess := sessionFrom(r)
	p, err := sess.Checkout.Product(r.Context(), req.ProductID)
	if err != nil {
		writeError(w, err)
		return
	}
	sess.Cart.Add(adapter.LineItemFromProduct(p))
	s.writeCart(w, r)
}

func (s *Server) handleSetQuantity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity *int `json:"quantity"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Quantity == nil {
		writeError(w, errBadRequest("quantity is required"))
		return
	}

	sessionFrom(r).Cart.SetQuantity(mux.Vars(r)["id"], *req.Quantity)
	s.writeCart(w, r)
}

func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	sessionFrom(r).Cart.Remove(mux.Vars(r)["id"])
	s.writeCart(w, r)
}

func (s *Server) handleClearCart(w http.ResponseWriter, r *http.Request) {
	sessionFrom(r).Cart.Clear()
	s.writeCart(w, r)
}

func (s *Server) handleFlowState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toFlow(sessionFrom(r).Flow.State()))
}

var (
	openCart         = (*flow.Controller).OpenCart
	closeCart        = (*flow.Controller).CloseCart
	closeProduct     = (*flow.Controller).CloseProduct
	checkoutFromCart = (*flow.Controller).OpenCheckoutFromCart
	dismissCheckout  = (*flow.Controller).DismissCheckout
	goBack           = (*flow.Controller).GoBack
)

func (s *Server) flowAction(action func(*flow.Controller) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctrl := sessionFrom(r).Flow
		if err := action(ctrl); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toFlow(ctrl.State()))
	}
}

func (s *Server) handleOpenProduct(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	p, err := sess.Checkout.Product(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	if err := sess.Flow.OpenProduct(p); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toFlow(sess.Flow.State()))
}

// handleCheckoutFromProduct buys the product on screen.
func (s *Server) handleCheckoutFromProduct(w http.ResponseWriter, r *http.Request) {
	ctrl := sessionFrom(r).Flow
	st := ctrl.State()
	if st.View != flow.ProductView || st.Product == nil {
		writeError(w, fmt.Errorf("%w: no product is open", flow.ErrInvalidTransition))
		return
	}
	if err := ctrl.OpenCheckoutFromProduct(*st.Product); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toFlow(ctrl.State()))
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	q, err := sess.Quote()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toQuote(sess.Flow.State().CheckoutID, q))
}

func (s *Server) handleAddressState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionFrom(r).Address.State())
}

// handleAddressInput starts an autofill for a complete postal code. With
// ?wait=true the response is held until the lookup settles.
func (s *Server) handleAddressInput(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PostalCode string `json:"postalCode"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if _, err := addressdomain.Normalize(req.PostalCode); err != nil {
		writeError(w, err)
		return
	}

	form := sessionFrom(r).Address
	_, done, err := form.Input(req.PostalCode)
	if err != nil {
		writeError(w, err)
		return
	}

	status := http.StatusAccepted
	if wait, _ := strconv.ParseBool(r.URL.Query().Get("wait")); wait {
		select {
		case <-done:
			status = http.StatusOK
		case <-r.Context().Done():
			writeError(w, r.Context().Err())
			return
		}
	}
	writeJSON(w, status, form.State())
}

func (s *Server) handlePay(w http.ResponseWriter, r *http.Request) {
	var req payRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	sess := sessionFrom(r)
	pay, err := sess.Pay(r.Context(), req.toDetails())
	if err != nil {
		writeError(w, err)
		return
	}

	kind := string(pay.Source.Kind())
	s.log.Info("payment simulated",
		slog.String("session_id", sess.ID),
		slog.String("checkout_id", pay.CheckoutID),
		slog.String("source", kind),
		slog.Int64("total_cents", pay.Receipt.Total.Amount),
		slog.Bool("cleared_cart", pay.Receipt.ClearedCart),
	)
	if s.metrics != nil {
		s.metrics.Payments.WithLabelValues(kind, string(pay.Receipt.Method)).Inc()
	}
	s.events.PaymentSimulated(r.Context(), events.NewPaymentSimulated(pay.CheckoutID, sess.ID, pay.Source, pay.Receipt))

	writeJSON(w, http.StatusOK, toReceipt(pay.CheckoutID, kind, pay.Receipt))
}
