package shop

import (
	"fmt"
	"net/url"
	"strings"
)

// WhatsAppLink builds a wa.me deep link pre-filled with text. This is a
// navigation target, not an API call.
func WhatsAppLink(number, text string) string {
	encoded := strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
	return "https://wa.me/" + number + "?text=" + encoded
}

// OrderMessage renders the outbound order text for the messaging hand-off.
func OrderMessage(productName, originalPrice, finalPrice string, quantity, discountPercent int, discountCode string) string {
	var b strings.Builder
	b.WriteString("Hello PixaliumDigital!\n\nI'd like to order:\n\n")
	fmt.Fprintf(&b, "Product: %s\n", productName)
	fmt.Fprintf(&b, "Original Price: %s\n", originalPrice)
	fmt.Fprintf(&b, "Final Price: %s", finalPrice)
	if discountPercent > 0 {
		fmt.Fprintf(&b, " (%d%% discount with code %s)", discountPercent, discountCode)
	}
	fmt.Fprintf(&b, "\nQuantity: %d\n\n", quantity)
	b.WriteString("Please let me know the next steps. Thank you!")
	return b.String()
}
