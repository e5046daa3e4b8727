package app

import (
	"log/slog"
	"sync"

	"github.com/dwikikusuma/storefront/internal/cart/domain"
)

// Store owns the lines of a single session's cart. None of its operations can
// fail: quantities are clamped and unknown ids are ignored.
type Store struct {
	mu    sync.Mutex
	items map[string]*domain.LineItem
	order []string

	observer Observer
	log      *slog.Logger
}

type Option func(*Store)

func WithObserver(o Observer) Option {
	return func(s *Store) {
		if o != nil {
			s.observer = o
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		items:    make(map[string]*domain.LineItem),
		observer: nopObserver{},
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add increments the quantity of an existing line, ignoring the other fields
// of item, or inserts item with quantity 1.
func (s *Store) Add(item domain.LineItem) {
	s.mu.Lock()
	if existing, ok := s.items[item.ID]; ok {
		existing.Quantity++
	} else {
		line := item.Clone()
		line.Quantity = 1
		s.items[item.ID] = &line
		s.order = append(s.order, item.ID)
	}
	s.mu.Unlock()

	s.log.Debug("cart item added", slog.String("item_id", item.ID))
	s.observer.CartMutated(domain.OpAdd, item.ID)
}

func (s *Store) Remove(id string) {
	s.mu.Lock()
	_, ok := s.items[id]
	if ok {
		delete(s.items, id)
		s.order = removeID(s.order, id)
	}
	s.mu.Unlock()

	if !ok {
		return
	}
	s.log.Debug("cart item removed", slog.String("item_id", id))
	s.observer.CartMutated(domain.OpRemove, id)
}

// SetQuantity floors qty at 1. It never removes the line; use Remove for that.
func (s *Store) SetQuantity(id string, qty int) {
	if qty < 1 {
		qty = 1
	}

	s.mu.Lock()
	item, ok := s.items[id]
	if ok {
		item.Quantity = qty
	}
	s.mu.Unlock()

	if !ok {
		return
	}
	s.log.Debug("cart quantity set", slog.String("item_id", id), slog.Int("quantity", qty))
	s.observer.CartMutated(domain.OpSetQuantity, id)
}

func (s *Store) Clear() {
	s.mu.Lock()
	s.items = make(map[string]*domain.LineItem)
	s.order = nil
	s.mu.Unlock()

	s.log.Debug("cart cleared")
	s.observer.CartMutated(domain.OpClear, "")
}

func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, it := range s.items {
		total += it.Quantity
	}
	return total
}

// TotalPrice is the sum of unit price times quantity, in cents.
func (s *Store) TotalPrice() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total int64
	for _, it := range s.items {
		total += it.LineTotal()
	}
	return total
}

// Len is the number of distinct lines.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Items returns a copy of the lines in insertion order.
func (s *Store) Items() []domain.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.LineItem, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id].Clone())
	}
	return out
}

func (s *Store) Get(id string) (domain.LineItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[id]
	if !ok {
		return domain.LineItem{}, false
	}
	return it.Clone(), true
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
