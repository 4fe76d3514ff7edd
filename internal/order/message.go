package order

import (
	"fmt"
	"strings"
)

const messageDivider = "--------------------------"

// RenderMessage produces the plain-text order message sent over the
// messaging channel. The layout is fixed: header, business name, customer
// block, one "{qty}x {name} - {total}" line per item, the grand total,
// and a trailing notes block only when notes were given. Receiving ends
// parse this shape, so any change here is a wire-format change.
func (c *Composer) RenderMessage(o *ComposedOrder) string {
	var b strings.Builder

	b.WriteString("*New Order*\n")
	b.WriteString(o.BusinessName + "\n")
	b.WriteString(messageDivider + "\n")
	b.WriteString("Customer: " + o.CustomerName + "\n")
	b.WriteString("Phone: " + o.CustomerPhone + "\n")
	b.WriteString(messageDivider + "\n")

	for _, line := range o.Lines {
		fmt.Fprintf(&b, "%dx %s - %s\n", line.Quantity, line.Name, c.locale.Format(line.LineTotal))
	}

	b.WriteString(messageDivider + "\n")
	b.WriteString("Total: " + c.locale.Format(o.GrandTotal))

	if o.Notes != "" {
		b.WriteString("\n" + messageDivider + "\n")
		b.WriteString("Notes: " + o.Notes)
	}

	return b.String()
}
