// Package contact builds WhatsApp deep links buyers use to reach sellers.
package contact

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/lukman83/campusfair/internal/cart"
	"github.com/lukman83/campusfair/internal/models"
)

// DefaultCountryCode replaces the leading zero of local numbers.
const DefaultCountryCode = "234"

const waBase = "https://wa.me/"

// ErrNoContact means the product has no reachable seller, so the order
// action stays disabled.
var ErrNoContact = errors.New("seller has no contact number")

// NormalizePhone reduces raw to the digits-only international form wa.me
// expects.
func NormalizePhone(raw, countryCode string) string {
	if countryCode == "" {
		countryCode = DefaultCountryCode
	}
	raw = strings.TrimSpace(raw)
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	switch {
	case digits == "":
		return ""
	case strings.HasPrefix(raw, "+"):
		return digits
	case strings.HasPrefix(digits, "00"):
		return digits[2:]
	case strings.HasPrefix(digits, "0"):
		return countryCode + digits[1:]
	case strings.HasPrefix(digits, countryCode) && len(digits) > 10:
		return digits
	default:
		return countryCode + digits
	}
}

// ProductMessage is the prefilled text for ordering one product.
func ProductMessage(name string, price int64) string {
	return fmt.Sprintf("Hi, I want to purchase %s for ₦%d", name, price)
}

// ProductLink returns the deep link for ordering p from its seller.
func ProductLink(p models.EnrichedProduct, countryCode string) (string, error) {
	if !p.Attributed {
		return "", ErrNoContact
	}
	return link(p.SellerPhone, countryCode, ProductMessage(p.Name, p.Price))
}

// OrderMessage lists every cart item for a store checkout.
func OrderMessage(storeName string, items []cart.Item) string {
	var b strings.Builder
	b.WriteString("Hello, I’d like to order:\n\n")
	for _, it := range items {
		fmt.Fprintf(&b, "• %s × %d = ₦%d\n", it.Product.Name, it.Qty, it.Subtotal())
	}
	fmt.Fprintf(&b, "\nFrom %s on CampusFair", storeName)
	return b.String()
}

// OrderLink returns the deep link for checking out a store cart.
func OrderLink(seller models.Seller, items []cart.Item, countryCode string) (string, error) {
	if len(items) == 0 {
		return "", errors.New("cart is empty")
	}
	return link(seller.Phone, countryCode, OrderMessage(seller.StoreName, items))
}

func link(phone, countryCode, message string) (string, error) {
	number := NormalizePhone(phone, countryCode)
	if number == "" {
		return "", ErrNoContact
	}
	return waBase + number + "?text=" + encodeComponent(message), nil
}

// encodeComponent escapes a query component with spaces as %20.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
