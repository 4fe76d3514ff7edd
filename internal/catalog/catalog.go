// Package catalog defines the immutable, versioned view of a business's
// sellable items that every other component reads from.
//
// A Snapshot is never patched in place. When the backing catalog changes,
// a whole new Snapshot is built and swapped in atomically (see the sync
// subpackage), so a reader either sees the old catalog in full or the new
// one in full, never a mix.
package catalog

import "github.com/shopspring/decimal"

// Category groups items for display purposes.
type Category struct {
	ID   string
	Name string
}

// Size is a variant that replaces nothing but shifts the item's base price.
// PriceModifier is signed: a small size may be cheaper than the base.
type Size struct {
	ID            string
	Name          string
	PriceModifier decimal.Decimal
}

// Extra is an optional add-on with a non-negative additive price.
type Extra struct {
	ID    string
	Name  string
	Price decimal.Decimal
}

// Item is one sellable catalog entry.
type Item struct {
	ID         string
	Name       string
	BasePrice  decimal.Decimal
	CategoryID string
	ImageURL   string
	IsActive   bool
	InStock    bool
	Sizes      []Size
	Extras     []Extra
}

// Purchasable reports whether a new cart line may be opened for the item.
// Lines added earlier may still reference a non-purchasable item; they are
// flagged stale at pricing time instead of being dropped.
func (i Item) Purchasable() bool {
	return i.IsActive && i.InStock
}

// SizeByID returns the size with the given ID, if the item carries it.
func (i Item) SizeByID(id string) (Size, bool) {
	for _, s := range i.Sizes {
		if s.ID == id {
			return s, true
		}
	}
	return Size{}, false
}

// ExtraByID returns the extra with the given ID, if the item carries it.
func (i Item) ExtraByID(id string) (Extra, bool) {
	for _, e := range i.Extras {
		if e.ID == id {
			return e, true
		}
	}
	return Extra{}, false
}

// Snapshot is the catalog of one business as of one version.
// Construct it with NewSnapshot and treat it as read-only afterwards.
type Snapshot struct {
	businessID string
	version    string
	categories []Category
	items      []Item
	byID       map[string]Item
}

// NewSnapshot builds an immutable snapshot. The item order is preserved
// for display; lookups go through an index built here once.
func NewSnapshot(businessID, version string, categories []Category, items []Item) *Snapshot {
	byID := make(map[string]Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	return &Snapshot{
		businessID: businessID,
		version:    version,
		categories: categories,
		items:      items,
		byID:       byID,
	}
}

// BusinessID identifies the tenant this snapshot belongs to.
func (s *Snapshot) BusinessID() string { return s.businessID }

// Version identifies the point in time this snapshot was taken.
// Two snapshots with the same version are interchangeable.
func (s *Snapshot) Version() string { return s.version }

// Categories returns the category list in catalog order.
func (s *Snapshot) Categories() []Category { return s.categories }

// Items returns all items in catalog order.
func (s *Snapshot) Items() []Item { return s.items }

// Lookup returns the item with the given ID.
func (s *Snapshot) Lookup(id string) (Item, bool) {
	it, ok := s.byID[id]
	return it, ok
}
