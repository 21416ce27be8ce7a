package shop

import "strings"

// ParsePrice extracts the numeric amount from a display price such as
// "10 000 FCFA". Every non-digit rune is stripped. Prices with no digits at
// all ("Sur commande") report ok=false.
func ParsePrice(display string) (int64, bool) {
	var n int64
	seen := false
	for _, r := range display {
		if r < '0' || r > '9' {
			continue
		}
		seen = true
		n = n*10 + int64(r-'0')
	}
	return n, seen
}

// FormatPrice renders an amount in FCFA with thousands grouped by spaces:
// 9000 -> "9 000 FCFA".
func FormatPrice(amount int64) string {
	digits := []byte{}
	if amount == 0 {
		digits = []byte{'0'}
	}
	for v := amount; v > 0; v /= 10 {
		digits = append(digits, byte('0'+v%10))
	}
	var b strings.Builder
	for i := len(digits) - 1; i >= 0; i-- {
		b.WriteByte(digits[i])
		if i > 0 && i%3 == 0 {
			b.WriteByte(' ')
		}
	}
	b.WriteString(" FCFA")
	return b.String()
}

// ApplyDiscount applies a flat percentage to a display price, rounding to the
// nearest whole unit. Non-numeric prices pass through unchanged rather than
// erroring: "On request"-style prices silently keep their original text.
func ApplyDiscount(display string, percent int) string {
	if percent <= 0 {
		return display
	}
	n, ok := ParsePrice(display)
	if !ok {
		return display
	}
	discounted := (n*int64(100-percent) + 50) / 100
	return FormatPrice(discounted)
}
