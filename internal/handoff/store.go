package handoff

import (
	"context"
	"errors"

	"github.com/menulink/ordercore/internal/order"
)

// ErrOrderNotFound is returned by Store.Get for an unknown order ID.
var ErrOrderNotFound = errors.New("handoff: order not found")

// Store is the order-persistence sink. The gateway depends on this
// abstraction, not on SQLite directly, so the implementation can be
// swapped for Postgres or an in-memory store in tests.
type Store interface {
	// Save persists a composed order. Orders are immutable; Save is
	// insert-only and never updates an existing row.
	Save(ctx context.Context, o *order.ComposedOrder) error
	Get(ctx context.Context, id string) (*order.ComposedOrder, error)
}
