// Package httpapi exposes the storefront engine as a JSON API.
package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
	"github.com/dwikikusuma/storefront/internal/checkout/infra/events"
	"github.com/dwikikusuma/storefront/internal/session"
	"github.com/dwikikusuma/storefront/pkg/metrics"
)

const SessionHeader = "X-Session-ID"

type PaymentPublisher interface {
	PaymentSimulated(ctx context.Context, ev events.PaymentSimulated)
}

type Deps struct {
	Catalog  *catalogapp.Service
	Sessions *session.Registry
	Events   PaymentPublisher
	Metrics  *metrics.ServerMetrics
	Log      *slog.Logger

	// Ready reports whether backing stores are reachable. nil means always
	// ready.
	Ready func(ctx context.Context) error
}

type Server struct {
	catalog  *catalogapp.Service
	sessions *session.Registry
	events   PaymentPublisher
	metrics  *metrics.ServerMetrics
	ready    func(ctx context.Context) error
	log      *slog.Logger

	router *mux.Router
}

func New(d Deps) *Server {
	s := &Server{
		catalog:  d.Catalog,
		sessions: d.Sessions,
		events:   d.Events,
		metrics:  d.Metrics,
		ready:    d.Ready,
		log:      d.Log,
		router:   mux.NewRouter(),
	}
	if s.events == nil {
		s.events = events.Nop{}
	}
	if s.ready == nil {
		s.ready = func(context.Context) error { return nil }
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := s.router
	if s.metrics != nil {
		r.Use(s.instrument)
	}

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/products", s.handleListProducts).Methods(http.MethodGet)
	api.HandleFunc("/products", s.handleCreateProduct).Methods(http.MethodPost)
	api.HandleFunc("/products/{id}", s.handleGetProduct).Methods(http.MethodGet)

	shop := api.NewRoute().Subrouter()
	shop.Use(s.withSession)

	shop.HandleFunc("/session", s.handleEndSession).Methods(http.MethodDelete)
	shop.HandleFunc("/cart", s.handleGetCart).Methods(http.MethodGet)
	shop.HandleFunc("/cart", s.handleClearCart).Methods(http.MethodDelete)
	shop.HandleFunc("/cart/items", s.handleAddItem).Methods(http.MethodPost)
	shop.HandleFunc("/cart/items/{id}", s.handleGetItem).Methods(http.MethodGet)
	shop.HandleFunc("/cart/items/{id}", s.handleSetQuantity).Methods(http.MethodPut)
	shop.HandleFunc("/cart/items/{id}", s.handleRemoveItem).Methods(http.MethodDelete)

	shop.HandleFunc("/flow", s.handleFlowState).Methods(http.MethodGet)
	shop.HandleFunc("/flow/cart/open", s.flowAction(openCart)).Methods(http.MethodPost)
	shop.HandleFunc("/flow/cart/close", s.flowAction(closeCart)).Methods(http.MethodPost)
	shop.HandleFunc("/flow/product/{id}/open", s.handleOpenProduct).Methods(http.MethodPost)
	shop.HandleFunc("/flow/product/close", s.flowAction(closeProduct)).Methods(http.MethodPost)
	shop.HandleFunc("/flow/checkout/from-cart", s.flowAction(checkoutFromCart)).Methods(http.MethodPost)
	shop.HandleFunc("/flow/checkout/from-product", s.handleCheckoutFromProduct).Methods(http.MethodPost)
	shop.HandleFunc("/flow/checkout/dismiss", s.flowAction(dismissCheckout)).Methods(http.MethodPost)
	shop.HandleFunc("/flow/back", s.flowAction(goBack)).Methods(http.MethodPost)

	shop.HandleFunc("/checkout/quote", s.handleQuote).Methods(http.MethodGet)
	shop.HandleFunc("/checkout/address", s.handleAddressState).Methods(http.MethodGet)
	shop.HandleFunc("/checkout/address", s.handleAddressInput).Methods(http.MethodPost)
	shop.HandleFunc("/checkout/pay", s.handlePay).Methods(http.MethodPost)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.ready(ctx); err != nil {
		s.log.Warn("not ready", slog.Any("err", err))
		writeError(w, errUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}

type sessionKey struct{}

// withSession resolves the caller's session from SessionHeader, creating one
// when the header is missing or stale, and echoes the id back.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, created := s.sessions.GetOrCreate(r.Header.Get(SessionHeader))
		if created && s.metrics != nil {
			s.metrics.Sessions.Set(float64(s.sessions.Len()))
		}
		w.Header().Set(SessionHeader, sess.ID)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, sess)))
	})
}

func sessionFrom(r *http.Request) *session.Session {
	return r.Context().Value(sessionKey{}).(*session.Session)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				handler = tpl
			}
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.metrics.Requests.WithLabelValues(handler, strconv.Itoa(rec.status)).Inc()
		s.metrics.LatencyMS.WithLabelValues(handler).Observe(float64(time.Since(start).Milliseconds()))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errBadRequest(err.Error())
	}
	return nil
}
