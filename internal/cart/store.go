// Package cart keeps the line items of one shopping cart.
//
// A Store has exactly one logical owner and is not safe for concurrent use;
// callers that share it across goroutines must serialize access.
package cart

import (
	"storefront/internal/domain"
	"storefront/internal/domain/models"

	"github.com/shopspring/decimal"
)

const (
	MinQuantity = 1
	MaxQuantity = 99
)

// Observer receives a snapshot after every mutation that changed the cart.
type Observer func(models.CartSnapshot)

type Store struct {
	items     []models.LineItem
	observers map[int]Observer
	nextObs   int
}

func NewStore() *Store {
	return &Store{observers: map[int]Observer{}}
}

// AddItem merges qty units of p into the cart. Quantities above MaxQuantity
// are dropped silently; qty < 1 does nothing.
func (s *Store) AddItem(p models.Product, qty int) {
	if qty < MinQuantity {
		return
	}
	if i := s.indexOf(p.ID); i >= 0 {
		next := clamp(s.items[i].Quantity + qty)
		if next == s.items[i].Quantity {
			return
		}
		s.items[i].Quantity = next
	} else {
		s.items = append(s.items, models.LineItemFromProduct(p, clamp(qty)))
	}
	s.emit()
}

// UpdateQuantity sets the quantity of line id. A quantity below 1 removes
// the line.
func (s *Store) UpdateQuantity(id int64, quantity int) error {
	i := s.indexOf(id)
	if i < 0 {
		return domain.NotFoundError{Resource: "cart item", ID: id}
	}
	if quantity < MinQuantity {
		s.RemoveItem(id)
		return nil
	}
	next := clamp(quantity)
	if s.items[i].Quantity == next {
		return nil
	}
	s.items[i].Quantity = next
	s.emit()
	return nil
}

func (s *Store) RemoveItem(id int64) {
	i := s.indexOf(id)
	if i < 0 {
		return
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.emit()
}

func (s *Store) Clear() {
	if len(s.items) == 0 {
		return
	}
	s.items = nil
	s.emit()
}

// Restore replaces the cart with persisted lines. Duplicate ids are merged and
// quantities clamped, so a hand-edited payload cannot break the invariants.
// Observers are not notified.
func (s *Store) Restore(items []models.LineItem) {
	s.items = nil
	for _, it := range items {
		if it.Quantity < MinQuantity {
			continue
		}
		if i := s.indexOf(it.ID); i >= 0 {
			s.items[i].Quantity = clamp(s.items[i].Quantity + it.Quantity)
			continue
		}
		it.Quantity = clamp(it.Quantity)
		s.items = append(s.items, it)
	}
}

// Items returns a copy of the lines in add order.
func (s *Store) Items() []models.LineItem {
	out := make([]models.LineItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) Item(id int64) (models.LineItem, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s.items[i], true
	}
	return models.LineItem{}, false
}

func (s *Store) Len() int { return len(s.items) }

// ItemCount is the sum of all quantities, not the number of lines.
func (s *Store) ItemCount() int {
	n := 0
	for _, it := range s.items {
		n += it.Quantity
	}
	return n
}

func (s *Store) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range s.items {
		total = total.Add(it.LineTotal())
	}
	return total
}

func (s *Store) Snapshot() models.CartSnapshot {
	return models.CartSnapshot{
		Items:     s.Items(),
		ItemCount: s.ItemCount(),
		Subtotal:  s.Subtotal(),
	}
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn Observer) (unsubscribe func()) {
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	return func() { delete(s.observers, id) }
}

func (s *Store) emit() {
	if len(s.observers) == 0 {
		return
	}
	snap := s.Snapshot()
	for _, fn := range s.observers {
		fn(snap)
	}
}

func (s *Store) indexOf(id int64) int {
	for i, it := range s.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func clamp(q int) int {
	if q < MinQuantity {
		return MinQuantity
	}
	if q > MaxQuantity {
		return MaxQuantity
	}
	return q
}
