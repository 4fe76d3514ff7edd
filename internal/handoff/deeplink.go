// Package handoff moves a composed order out of the core: either as a
// messaging deep link the customer's device opens, or into the order
// store. Both sinks consume the same stable ComposedOrder + rendered
// message pair; nothing here feeds back into the cart.
package handoff

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrMissingDestination means no messaging address is configured for the
// business. A configuration problem, not a retryable one.
var ErrMissingDestination = errors.New("handoff: no destination address configured")

// DeepLink builds messaging links of the form
// {baseURL}/{destination}?text={url-encoded message}.
type DeepLink struct {
	baseURL     string
	destination string
}

// NewDeepLink configures the link builder. baseURL is the provider prefix
// (e.g. "https://wa.me"); destination is the business's raw contact
// address as entered in its settings.
func NewDeepLink(baseURL, destination string) DeepLink {
	return DeepLink{
		baseURL:     strings.TrimRight(baseURL, "/"),
		destination: NormalizeAddress(destination),
	}
}

// Build returns the full deep link for the rendered message text.
func (d DeepLink) Build(message string) (string, error) {
	if d.destination == "" {
		return "", ErrMissingDestination
	}
	return fmt.Sprintf("%s/%s?text=%s", d.baseURL, d.destination, url.QueryEscape(message)), nil
}

// NormalizeAddress strips the decoration people type into phone fields —
// whitespace, parentheses, hyphens — leaving the bare address the
// messaging provider expects.
func NormalizeAddress(addr string) string {
	var b strings.Builder
	b.Grow(len(addr))
	for _, r := range addr {
		switch r {
		case ' ', '\t', '(', ')', '-':
			continue
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
