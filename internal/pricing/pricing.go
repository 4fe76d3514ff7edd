// Package pricing computes line and cart totals from a cart and a catalog
// snapshot. Everything here is a pure function of its inputs: the same
// cart priced against the same snapshot always yields the same totals, so
// callers recompute freely on every mutation and every snapshot swap
// instead of caching across a reconciliation boundary.
package pricing

import (
	"github.com/menulink/ordercore/internal/cart"
	"github.com/menulink/ordercore/internal/catalog"
	"github.com/shopspring/decimal"
)

// minor-unit precision of the supported currencies
const currencyScale = 2

// LinePrice is the priced view of one cart line against one snapshot.
type LinePrice struct {
	Key      string
	ItemID   string
	ItemName string
	Quantity int

	// Stale marks a line whose item is gone, inactive, or out of stock in
	// the current snapshot, or whose selected variant no longer exists.
	// Stale lines carry zero prices and are excluded from totals; they
	// stay visible so the user can consciously remove them.
	Stale bool

	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// PriceLine prices one line against the snapshot.
//
// unitPrice = basePrice + size modifier + sum of extras, rounded half-up
// to the currency's minor unit once at the line level. lineTotal is then
// unitPrice * quantity, rounded the same way. Rounding once per line
// keeps per-extra rounding errors from compounding.
func PriceLine(line cart.Line, snap *catalog.Snapshot) LinePrice {
	lp := LinePrice{
		Key:      line.Key(),
		ItemID:   line.ItemID,
		Quantity: line.Quantity,
	}

	item, ok := snap.Lookup(line.ItemID)
	if !ok {
		lp.Stale = true
		return lp
	}
	lp.ItemName = item.Name

	if !item.Purchasable() {
		lp.Stale = true
		return lp
	}

	unit := item.BasePrice

	if line.SizeID != "" {
		size, ok := item.SizeByID(line.SizeID)
		if !ok {
			lp.Stale = true
			return lp
		}
		unit = unit.Add(size.PriceModifier)
	}

	for _, extraID := range line.ExtraIDs {
		extra, ok := item.ExtraByID(extraID)
		if !ok {
			lp.Stale = true
			return lp
		}
		unit = unit.Add(extra.Price)
	}

	lp.UnitPrice = unit.Round(currencyScale)
	lp.LineTotal = lp.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))).Round(currencyScale)
	return lp
}

// PriceCart prices every line, stale or not, in cart order.
func PriceCart(c *cart.Cart, snap *catalog.Snapshot) []LinePrice {
	lines := c.Lines()
	out := make([]LinePrice, 0, len(lines))
	for _, l := range lines {
		out = append(out, PriceLine(l, snap))
	}
	return out
}

// CartTotal is the sum of line totals over all non-stale lines.
func CartTotal(c *cart.Cart, snap *catalog.Snapshot) decimal.Decimal {
	total := decimal.Zero
	for _, lp := range PriceCart(c, snap) {
		if lp.Stale {
			continue
		}
		total = total.Add(lp.LineTotal)
	}
	return total
}
