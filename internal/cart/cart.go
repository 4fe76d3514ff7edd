// Package cart implements the mutable line collection of one ordering
// session.
//
// A cart has exactly one writer (the session that owns it), so no locking
// lives here. Catalog changes never mutate lines either: a line added
// while its item was purchasable stays in the cart and is flagged stale
// at pricing time if the item has since gone away.
package cart

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/menulink/ordercore/internal/catalog"
)

// ErrItemUnavailable is returned when a new line is opened for an item
// that is inactive or out of stock in the snapshot the caller resolved it
// from. The cart is left untouched.
var ErrItemUnavailable = errors.New("cart: item unavailable")

// ErrUnknownVariant is returned when the selected size or an extra does
// not belong to the item.
var ErrUnknownVariant = errors.New("cart: unknown size or extra")

// Line is one distinct item+variant selection.
// Quantity is always >= 1; dropping to zero removes the line instead.
type Line struct {
	ItemID   string
	SizeID   string   // empty when the item has no sizes
	ExtraIDs []string // sorted, unique
	Quantity int
}

// Key is the merge-on-add identity: two selections of the same item with
// the same size and the same extras set land on one line. The format is
// URL-segment-safe so keys can travel in REST paths.
func (l Line) Key() string {
	return lineKey(l.ItemID, l.SizeID, l.ExtraIDs)
}

func lineKey(itemID, sizeID string, extraIDs []string) string {
	return fmt.Sprintf("%s:%s:%s", itemID, sizeID, strings.Join(extraIDs, "+"))
}

// Cart is an insertion-ordered sequence of lines.
type Cart struct {
	lines []Line
}

func New() *Cart {
	return &Cart{}
}

// AddLine validates the selection against the given item and either
// increments the matching existing line or appends a new one with
// quantity 1. It returns the line key of the affected line.
//
// The item must come from the caller's current snapshot; AddLine rejects
// items that are inactive or out of stock with ErrItemUnavailable.
func (c *Cart) AddLine(item catalog.Item, sizeID string, extraIDs []string) (string, error) {
	if !item.Purchasable() {
		return "", fmt.Errorf("%w: %s", ErrItemUnavailable, item.ID)
	}

	sizeID, err := resolveSize(item, sizeID)
	if err != nil {
		return "", err
	}

	extras, err := normalizeExtras(item, extraIDs)
	if err != nil {
		return "", err
	}

	key := lineKey(item.ID, sizeID, extras)
	for i := range c.lines {
		if c.lines[i].Key() == key {
			c.lines[i].Quantity++
			return key, nil
		}
	}

	c.lines = append(c.lines, Line{
		ItemID:   item.ID,
		SizeID:   sizeID,
		ExtraIDs: extras,
		Quantity: 1,
	})
	return key, nil
}

// resolveSize applies the "exactly one size when sizes exist" rule:
// the first size is the default, and an explicit selection must belong
// to the item. Items without sizes take no size at all.
func resolveSize(item catalog.Item, sizeID string) (string, error) {
	if len(item.Sizes) == 0 {
		if sizeID != "" {
			return "", fmt.Errorf("%w: item %s has no sizes", ErrUnknownVariant, item.ID)
		}
		return "", nil
	}
	if sizeID == "" {
		return item.Sizes[0].ID, nil
	}
	if _, ok := item.SizeByID(sizeID); !ok {
		return "", fmt.Errorf("%w: size %s on item %s", ErrUnknownVariant, sizeID, item.ID)
	}
	return sizeID, nil
}

// normalizeExtras dedupes, validates, and sorts the selection so the line
// key is stable regardless of selection order.
func normalizeExtras(item catalog.Item, extraIDs []string) ([]string, error) {
	if len(extraIDs) == 0 {
		return nil, nil
	}
	seen := make(map[string]struct{}, len(extraIDs))
	out := make([]string, 0, len(extraIDs))
	for _, id := range extraIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		if _, ok := item.ExtraByID(id); !ok {
			return nil, fmt.Errorf("%w: extra %s on item %s", ErrUnknownVariant, id, item.ID)
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

// Increment raises the quantity of the line with the given key by one.
// No-op if the key is absent.
func (c *Cart) Increment(key string) {
	for i := range c.lines {
		if c.lines[i].Key() == key {
			c.lines[i].Quantity++
			return
		}
	}
}

// Decrement lowers the quantity by one, removing the line when it reaches
// zero. No-op if the key is absent.
func (c *Cart) Decrement(key string) {
	for i := range c.lines {
		if c.lines[i].Key() != key {
			continue
		}
		c.lines[i].Quantity--
		if c.lines[i].Quantity <= 0 {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
		}
		return
	}
}

// Remove deletes the line unconditionally. No-op if the key is absent.
func (c *Cart) Remove(key string) {
	for i := range c.lines {
		if c.lines[i].Key() == key {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// Clear empties the cart. Used when the session closes or completes.
func (c *Cart) Clear() {
	c.lines = nil
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// TotalItemCount is the sum of quantities across all lines.
func (c *Cart) TotalItemCount() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Empty reports whether the cart has no lines at all.
func (c *Cart) Empty() bool {
	return len(c.lines) == 0
}
