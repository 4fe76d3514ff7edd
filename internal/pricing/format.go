package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Locale describes how a business renders money in customer-facing text:
// currency symbol prefixed, with its own thousands and decimal separators.
type Locale struct {
	CurrencySymbol string
	ThousandsSep   string
	DecimalSep     string
}

// LocaleTR is the default: Turkish lira, dot thousands, comma decimals
// ("₺1.250,50").
var LocaleTR = Locale{CurrencySymbol: "₺", ThousandsSep: ".", DecimalSep: ","}

// Format renders an amount as e.g. "₺1.250,50". Always two decimals; the
// sign goes before the symbol.
func (l Locale) Format(amount decimal.Decimal) string {
	neg := amount.IsNegative()

	fixed := amount.Abs().StringFixed(currencyScale)
	intPart, fracPart, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	b.Grow(len(fixed) + len(intPart)/3 + 4)
	if neg {
		b.WriteString("-")
	}
	b.WriteString(l.CurrencySymbol)

	// Group the integer digits from the left.
	rem := len(intPart) % 3
	if rem == 0 {
		rem = 3
	}
	b.WriteString(intPart[:rem])
	for i := rem; i < len(intPart); i += 3 {
		b.WriteString(l.ThousandsSep)
		b.WriteString(intPart[i : i+3])
	}

	b.WriteString(l.DecimalSep)
	b.WriteString(fracPart)
	return b.String()
}
