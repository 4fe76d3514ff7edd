package order

import (
	"strings"
	"testing"

	"github.com/menulink/ordercore/internal/cart"
	"github.com/menulink/ordercore/internal/catalog"
	"github.com/menulink/ordercore/internal/pricing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func burgerItem() catalog.Item {
	return catalog.Item{
		ID:        "burger",
		Name:      "Burger",
		BasePrice: decimal.RequireFromString("45.00"),
		IsActive:  true,
		InStock:   true,
	}
}

func burgerSnapshot() *catalog.Snapshot {
	return catalog.NewSnapshot("biz-1", "v1", nil, []catalog.Item{burgerItem()})
}

func testComposer() *Composer {
	return NewComposer("Burger Sarayi", pricing.LocaleTR)
}

func validCustomer() Customer {
	return Customer{Name: "Ali Veli", Phone: "05551112233"}
}

func cartWithBurgers(t *testing.T, qty int) *cart.Cart {
	t.Helper()
	c := cart.New()
	key, err := c.AddLine(burgerItem(), "", nil)
	require.NoError(t, err)
	for i := 1; i < qty; i++ {
		c.Increment(key)
	}
	return c
}

func TestComposeValidationOrder(t *testing.T) {
	cmp := testComposer()
	snap := burgerSnapshot()

	tests := []struct {
		name     string
		customer Customer
		cart     *cart.Cart
		want     error
	}{
		// Empty name on an empty cart: the name check wins.
		{"missing name beats empty cart", Customer{Phone: "05551112233"}, cart.New(), ErrMissingName},
		{"whitespace name", Customer{Name: "   ", Phone: "05551112233"}, cartWithBurgers(t, 1), ErrMissingName},
		{"short phone", Customer{Name: "Ali", Phone: "555123"}, cartWithBurgers(t, 1), ErrInvalidPhone},
		{"phone padded to ten", Customer{Name: "Ali", Phone: "  555123  "}, cartWithBurgers(t, 1), ErrInvalidPhone},
		{"empty cart", validCustomer(), cart.New(), ErrEmptyCart},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := cmp.Compose(tt.cart, snap, tt.customer, "")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestComposeAllStaleIsEmptyCart(t *testing.T) {
	cmp := testComposer()
	c := cartWithBurgers(t, 2)

	// Snapshot replaced; the burger is gone.
	emptySnap := catalog.NewSnapshot("biz-1", "v2", nil, nil)

	_, err := cmp.Compose(c, emptySnap, validCustomer(), "")
	assert.ErrorIs(t, err, ErrEmptyCart)
	// Validation failures leave the cart intact for correction.
	assert.Equal(t, 2, c.TotalItemCount())
}

func TestComposeBurgerScenario(t *testing.T) {
	cmp := testComposer()
	c := cartWithBurgers(t, 2)

	o, err := cmp.Compose(c, burgerSnapshot(), validCustomer(), "")
	require.NoError(t, err)

	assert.NotEmpty(t, o.ID)
	assert.Equal(t, "Burger Sarayi", o.BusinessName)
	assert.Equal(t, "Ali Veli", o.CustomerName)
	assert.Equal(t, "05551112233", o.CustomerPhone)
	assert.Equal(t, "90.00", o.GrandTotal.StringFixed(2))
	require.Len(t, o.Lines, 1)
	assert.Equal(t, "Burger", o.Lines[0].Name)
	assert.Equal(t, 2, o.Lines[0].Quantity)
	assert.Equal(t, "45.00", o.Lines[0].UnitPrice.StringFixed(2))
	assert.Equal(t, "90.00", o.Lines[0].LineTotal.StringFixed(2))
	assert.False(t, o.CreatedAt.IsZero())

	msg := cmp.RenderMessage(o)
	assert.Contains(t, msg, "2x Burger - ₺90,00")
	assert.Contains(t, msg, "Total: ₺90,00")
	assert.Contains(t, msg, "Burger Sarayi")
	assert.Contains(t, msg, "Customer: Ali Veli")
	assert.Contains(t, msg, "Phone: 05551112233")
	assert.NotContains(t, msg, "Notes:")
}

func TestComposeOmitsStaleLines(t *testing.T) {
	cmp := testComposer()
	burger := burgerItem()
	cola := catalog.Item{
		ID:        "cola",
		Name:      "Cola",
		BasePrice: decimal.RequireFromString("8.00"),
		IsActive:  true,
		InStock:   true,
	}
	c := cart.New()
	_, err := c.AddLine(burger, "", nil)
	require.NoError(t, err)
	_, err = c.AddLine(cola, "", nil)
	require.NoError(t, err)

	staleCola := cola
	staleCola.IsActive = false
	snap := catalog.NewSnapshot("biz-1", "v2", nil, []catalog.Item{burger, staleCola})

	o, err := cmp.Compose(c, snap, validCustomer(), "")
	require.NoError(t, err)

	require.Len(t, o.Lines, 1)
	assert.Equal(t, "Burger", o.Lines[0].Name)
	assert.Equal(t, "45.00", o.GrandTotal.StringFixed(2))

	msg := cmp.RenderMessage(o)
	assert.NotContains(t, msg, "Cola")
}

func TestComposedOrderIsImmutable(t *testing.T) {
	cmp := testComposer()
	c := cartWithBurgers(t, 2)
	snap := burgerSnapshot()

	o, err := cmp.Compose(c, snap, validCustomer(), "")
	require.NoError(t, err)
	require.Equal(t, "90.00", o.GrandTotal.StringFixed(2))

	// Clearing the source cart must not touch the composed order.
	c.Clear()
	assert.Equal(t, "90.00", o.GrandTotal.StringFixed(2))
	assert.Len(t, o.Lines, 1)
	assert.Equal(t, 2, o.Lines[0].Quantity)
}

func TestRenderMessageLayout(t *testing.T) {
	cmp := testComposer()
	c := cartWithBurgers(t, 1)

	o, err := cmp.Compose(c, burgerSnapshot(), validCustomer(), "no onions please")
	require.NoError(t, err)

	msg := cmp.RenderMessage(o)
	lines := strings.Split(msg, "\n")

	// Fixed layout: header, business, divider, customer block, divider,
	// items, divider, total, divider, notes.
	require.Len(t, lines, 11)
	assert.Equal(t, "*New Order*", lines[0])
	assert.Equal(t, "Burger Sarayi", lines[1])
	assert.Equal(t, "Customer: Ali Veli", lines[3])
	assert.Equal(t, "Phone: 05551112233", lines[4])
	assert.Equal(t, "1x Burger - ₺45,00", lines[6])
	assert.Equal(t, "Total: ₺45,00", lines[8])
	assert.Equal(t, "Notes: no onions please", lines[10])
}

func TestRenderMessageDeterministic(t *testing.T) {
	cmp := testComposer()
	c := cartWithBurgers(t, 2)

	o, err := cmp.Compose(c, burgerSnapshot(), validCustomer(), "ring the bell")
	require.NoError(t, err)

	assert.Equal(t, cmp.RenderMessage(o), cmp.RenderMessage(o))
}
