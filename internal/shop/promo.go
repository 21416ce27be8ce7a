package shop

import (
	"strings"
	"time"
)

// ActivePromo returns the first promo satisfying the active predicate, in
// iteration order. At most one promo is treated as active for display; when
// several qualify the first match wins (no priority rule exists, see
// DESIGN.md).
func ActivePromo(promos []PromoConfig, now time.Time) (PromoConfig, bool) {
	for _, p := range promos {
		if p.ActiveAt(now) {
			return p, true
		}
	}
	return PromoConfig{}, false
}

// MatchDiscount accepts a submitted code only if it case-insensitively equals
// the active promo's code, returning the percent to apply. The applied
// discount lives in the client session only and is never persisted.
func MatchDiscount(input string, promo PromoConfig, now time.Time) (int, bool) {
	input = strings.TrimSpace(input)
	if input == "" || !promo.ActiveAt(now) {
		return 0, false
	}
	if !strings.EqualFold(input, promo.Code) {
		return 0, false
	}
	return promo.Discount, true
}
