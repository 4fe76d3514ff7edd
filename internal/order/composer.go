// Package order builds the final, immutable order payload from a cart,
// the current catalog snapshot, and the customer's contact fields.
package order

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/menulink/ordercore/internal/cart"
	"github.com/menulink/ordercore/internal/catalog"
	"github.com/menulink/ordercore/internal/pricing"
	"github.com/shopspring/decimal"
)

// Compose-time validation failures. They block handoff but leave the cart
// untouched so the user can correct and retry.
var (
	ErrMissingName  = errors.New("order: customer name is required")
	ErrInvalidPhone = errors.New("order: customer phone must be at least 10 characters")
	ErrEmptyCart    = errors.New("order: cart has no available lines")
)

const minPhoneLen = 10

// Customer is the contact block entered at checkout.
type Customer struct {
	Name  string
	Phone string
}

// Line is one itemized entry in a composed order. All fields are values
// copied out of the cart and snapshot at compose time.
type Line struct {
	ItemID    string
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
	LineTotal decimal.Decimal
}

// ComposedOrder is the finished order. It holds no reference to the cart
// or the snapshot it was built from, so it stays valid even if the cart
// is cleared or the catalog changes immediately afterwards.
type ComposedOrder struct {
	ID            string
	BusinessName  string
	CustomerName  string
	CustomerPhone string
	Lines         []Line
	Notes         string
	GrandTotal    decimal.Decimal
	CreatedAt     time.Time
}

// Composer binds the per-business presentation settings.
type Composer struct {
	businessName string
	locale       pricing.Locale
}

func NewComposer(businessName string, locale pricing.Locale) *Composer {
	return &Composer{businessName: businessName, locale: locale}
}

// Compose validates and builds the order. Checks run in a fixed sequence
// and fail fast on the first violation: name, then phone, then a
// non-empty set of non-stale lines. Stale lines are omitted entirely from
// the output; their exclusion from the grand total follows from the
// pricing engine.
func (c *Composer) Compose(crt *cart.Cart, snap *catalog.Snapshot, customer Customer, notes string) (*ComposedOrder, error) {
	name := strings.TrimSpace(customer.Name)
	if name == "" {
		return nil, ErrMissingName
	}

	phone := strings.TrimSpace(customer.Phone)
	if len(phone) < minPhoneLen {
		return nil, ErrInvalidPhone
	}

	var lines []Line
	for _, lp := range pricing.PriceCart(crt, snap) {
		if lp.Stale {
			continue
		}
		lines = append(lines, Line{
			ItemID:    lp.ItemID,
			Name:      lp.ItemName,
			UnitPrice: lp.UnitPrice,
			Quantity:  lp.Quantity,
			LineTotal: lp.LineTotal,
		})
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	return &ComposedOrder{
		ID:            uuid.NewString(),
		BusinessName:  c.businessName,
		CustomerName:  name,
		CustomerPhone: phone,
		Lines:         lines,
		Notes:         strings.TrimSpace(notes),
		GrandTotal:    pricing.CartTotal(crt, snap),
		CreatedAt:     time.Now().UTC(),
	}, nil
}
