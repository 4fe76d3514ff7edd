// Package session owns the lifecycle of one ordering flow: one cart, one
// live catalog subscription, destroyed together when the flow closes or
// completes.
package session

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/menulink/ordercore/internal/cart"
	"github.com/menulink/ordercore/internal/catalog"
	catsync "github.com/menulink/ordercore/internal/catalog/sync"
	"github.com/menulink/ordercore/internal/order"
	"github.com/menulink/ordercore/internal/pricing"
	"github.com/shopspring/decimal"
)

// Session is one active ordering flow for one business.
//
// The cart itself is single-writer and lock-free; the mutex here only
// serialises the HTTP requests that share this session. Snapshot reads
// are already safe under the syncer's atomic swap.
type Session struct {
	ID         string
	BusinessID string

	mu     sync.Mutex
	cart   *cart.Cart
	syncer *catsync.Syncer
	closed bool
}

// View is the priced, reconciled rendition of the cart against the
// current snapshot, recomputed on every call.
type View struct {
	Lines     []pricing.LinePrice
	ItemCount int
	Total     decimal.Decimal
}

// Open creates a session around an already started syncer.
func Open(businessID string, syncer *catsync.Syncer) *Session {
	return &Session{
		ID:         uuid.NewString(),
		BusinessID: businessID,
		cart:       cart.New(),
		syncer:     syncer,
	}
}

// Snapshot returns the session's current catalog snapshot.
func (s *Session) Snapshot() *catalog.Snapshot {
	return s.syncer.Snapshot()
}

// AddLine resolves the item in the current snapshot and adds it to the
// cart. Unknown items map to catalog.ErrNotFound; unavailable ones to
// cart.ErrItemUnavailable.
func (s *Session) AddLine(itemID, sizeID string, extraIDs []string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.Snapshot().Lookup(itemID)
	if !ok {
		return "", fmt.Errorf("%w: item %s", catalog.ErrNotFound, itemID)
	}
	return s.cart.AddLine(item, sizeID, extraIDs)
}

// Increment raises a line's quantity by one. No-op for unknown keys.
func (s *Session) Increment(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Increment(key)
}

// Decrement lowers a line's quantity by one, removing the line at zero.
func (s *Session) Decrement(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Decrement(key)
}

// RemoveLine deletes a line unconditionally.
func (s *Session) RemoveLine(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Remove(key)
}

// View prices the cart against the current snapshot. Stale lines are
// included, flagged, and excluded from Total.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.Snapshot()
	return View{
		Lines:     pricing.PriceCart(s.cart, snap),
		ItemCount: s.cart.TotalItemCount(),
		Total:     pricing.CartTotal(s.cart, snap),
	}
}

// Compose builds the final order from the cart as priced right now.
// Validation failures leave the cart intact for correction.
func (s *Session) Compose(cmp *order.Composer, customer order.Customer, notes string) (*order.ComposedOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cmp.Compose(s.cart, s.Snapshot(), customer, notes)
}

// Close discards the cart and detaches the catalog subscription. No
// background work outlives the session. Idempotent.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.cart.Clear()
	return s.syncer.Close()
}
