package shop

import (
	"testing"
	"time"
)

func TestActivePromo(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(48 * time.Hour)
	past := now.Add(-time.Hour)

	t.Run("skips inactive and ended promos", func(t *testing.T) {
		promos := []PromoConfig{
			{ID: "1", Code: "OLD", IsActive: true, EndDate: past},
			{ID: "2", Code: "OFF", IsActive: false, EndDate: future},
			{ID: "3", Code: "SAVE10", IsActive: true, EndDate: future},
		}
		p, ok := ActivePromo(promos, now)
		if !ok || p.ID != "3" {
			t.Fatalf("got (%+v, %v), want promo 3", p, ok)
		}
	})

	t.Run("first match wins when several qualify", func(t *testing.T) {
		promos := []PromoConfig{
			{ID: "a", Code: "FIRST", IsActive: true, EndDate: future},
			{ID: "b", Code: "SECOND", IsActive: true, EndDate: future},
		}
		p, _ := ActivePromo(promos, now)
		if p.ID != "a" {
			t.Fatalf("got %s, want first promo", p.ID)
		}
	})

	t.Run("none active", func(t *testing.T) {
		if _, ok := ActivePromo([]PromoConfig{{IsActive: true, EndDate: past}}, now); ok {
			t.Fatal("expected no active promo")
		}
	})
}

func TestMatchDiscount(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	promo := PromoConfig{Code: "SAVE10", Discount: 10, IsActive: true, EndDate: now.Add(time.Hour)}

	cases := []struct {
		name  string
		input string
		promo PromoConfig
		want  int
		ok    bool
	}{
		{"exact match", "SAVE10", promo, 10, true},
		{"case insensitive", "save10", promo, 10, true},
		{"surrounding spaces", "  SAVE10 ", promo, 10, true},
		{"wrong code", "SAVE20", promo, 0, false},
		{"empty code", "", promo, 0, false},
		{"promo ended", "SAVE10", PromoConfig{Code: "SAVE10", Discount: 10, IsActive: true, EndDate: now.Add(-time.Minute)}, 0, false},
		{"promo inactive", "SAVE10", PromoConfig{Code: "SAVE10", Discount: 10, IsActive: false, EndDate: now.Add(time.Hour)}, 0, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, ok := MatchDiscount(c.input, c.promo, now)
			if got != c.want || ok != c.ok {
				t.Errorf("MatchDiscount(%q) = (%d, %v), want (%d, %v)", c.input, got, ok, c.want, c.ok)
			}
		})
	}
}
