package cart

import (
	"context"
	"fmt"
	"sync"

	"ticketcart/internal/models"

	"github.com/google/uuid"
)

// DefaultEventTicketLimit is the ceiling on tickets a buyer may hold for a
// single event, counting already purchased tickets, tickets in the cart and
// the requested addition.
const DefaultEventTicketLimit = 6

// TicketOracle answers whether adding tickets for an event would push the
// buyer over the per-event ceiling. The backend knows what the buyer already
// owns; the client passes only the additional quantity it wants.
type TicketOracle interface {
	CheckTicketCeiling(ctx context.Context, eventID, additionalQuantity int) (bool, error)
}

// Store holds the raw cart line items. It is the single mutable resource
// shared between the cart view, the checkout initiator and the reconciler,
// so every operation takes the lock; mutations are last-writer-wins at the
// granularity of one call.
type Store struct {
	mu     sync.Mutex
	items  []models.CartLineItem
	oracle TicketOracle
	limit  int
}

// NewStore creates a cart store. limit <= 0 falls back to the default
// per-event ceiling.
func NewStore(oracle TicketOracle, limit int) *Store {
	if limit <= 0 {
		limit = DefaultEventTicketLimit
	}
	return &Store{oracle: oracle, limit: limit}
}

// Add appends a line item, or merges it into an existing general-admission
// line for the same event, place, sector and price. It fails with
// ErrTicketLimitExceeded when the per-event ceiling check rejects the
// addition.
func (s *Store) Add(ctx context.Context, item models.CartLineItem, quantity int) error {
	if quantity <= 0 {
		return models.ErrInvalidInput
	}

	allowed, err := s.checkCeiling(ctx, item.EventID, quantity)
	if err != nil {
		return fmt.Errorf("checking ticket ceiling: %w", err)
	}
	if !allowed {
		return models.ErrTicketLimitExceeded
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item.Quantity = quantity
	if item.ID == "" {
		item.ID = uuid.NewString()
	}

	// Seat-managed items identify concrete seats and always get their own
	// line; general items merge into a matching existing line.
	if len(item.TicketIDs) == 0 && !item.SeatManaged() {
		for i := range s.items {
			existing := &s.items[i]
			if existing.EventID == item.EventID &&
				existing.PlaceID == item.PlaceID &&
				existing.SectorID == item.SectorID &&
				existing.Price == item.Price &&
				len(existing.TicketIDs) == 0 {
				existing.Quantity += quantity
				return nil
			}
		}
	}

	s.items = append(s.items, item)
	return nil
}

// UpdateQuantity changes the quantity of a line item. Items backed by more
// than one explicit ticket id cannot be edited in place; the caller must
// remove and re-add. Decreasing always succeeds locally, increasing re-runs
// the same ceiling check as Add.
func (s *Store) UpdateQuantity(ctx context.Context, id string, quantity int) error {
	if quantity <= 0 {
		return models.ErrInvalidInput
	}

	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return models.ErrItemNotFound
	}
	item := s.items[idx]
	s.mu.Unlock()

	if len(item.TicketIDs) > 1 {
		return models.ErrQuantityLocked
	}

	if delta := quantity - item.Quantity; delta > 0 {
		allowed, err := s.checkCeiling(ctx, item.EventID, delta)
		if err != nil {
			return fmt.Errorf("checking ticket ceiling: %w", err)
		}
		if !allowed {
			return models.ErrTicketLimitExceeded
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if idx = s.indexOf(id); idx < 0 {
		return models.ErrItemNotFound
	}
	s.items[idx].Quantity = quantity
	return nil
}

// Remove deletes exactly one line item by id. Removing an absent id is not
// an error.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.indexOf(id); idx >= 0 {
		s.items = append(s.items[:idx], s.items[idx+1:]...)
	}
}

// Clear empties the store. Called after a confirmed sale.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
}

// Restore replaces the cart contents with the given items. Used to
// re-populate the cart from a persisted snapshot after a failed checkout so
// the buyer can retry without re-selecting seats.
func (s *Store) Restore(items []models.CartLineItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = copyItems(items)
}

// Items returns a snapshot of the cart. The caller owns the returned slice.
func (s *Store) Items() []models.CartLineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyItems(s.items)
}

// TotalAmount returns the cart total in cents.
func (s *Store) TotalAmount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for i := range s.items {
		total += s.items[i].Subtotal()
	}
	return total
}

// checkCeiling asks the oracle whether the event can absorb the in-cart
// quantity plus the requested addition.
func (s *Store) checkCeiling(ctx context.Context, eventID, additional int) (bool, error) {
	s.mu.Lock()
	inCart := 0
	for i := range s.items {
		if s.items[i].EventID == eventID {
			inCart += s.items[i].Quantity
		}
	}
	limit := s.limit
	s.mu.Unlock()

	if inCart+additional > limit {
		return false, nil
	}
	return s.oracle.CheckTicketCeiling(ctx, eventID, inCart+additional)
}

// indexOf must be called with the lock held.
func (s *Store) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func copyItems(items []models.CartLineItem) []models.CartLineItem {
	if len(items) == 0 {
		return nil
	}
	out := make([]models.CartLineItem, len(items))
	copy(out, items)
	for i := range out {
		if len(items[i].TicketIDs) > 0 {
			out[i].TicketIDs = append([]int(nil), items[i].TicketIDs...)
		}
	}
	return out
}
