package shop

import "testing"

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"10 000 FCFA", 10000, true},
		{"9 000 FCFA", 9000, true},
		{"250000", 250000, true},
		{"1 500 FCFA", 1500, true},
		{"Sur commande", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, ok := ParsePrice(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("ParsePrice(%q) = (%d, %v), want (%d, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestFormatPrice(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{9000, "9 000 FCFA"},
		{0, "0 FCFA"},
		{500, "500 FCFA"},
		{1250000, "1 250 000 FCFA"},
	}
	for _, c := range cases {
		if got := FormatPrice(c.in); got != c.want {
			t.Errorf("FormatPrice(%d) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestApplyDiscount(t *testing.T) {
	cases := []struct {
		name    string
		price   string
		percent int
		want    string
	}{
		{"ten percent off", "10 000 FCFA", 10, "9 000 FCFA"},
		{"rounds to nearest unit", "999 FCFA", 10, "899 FCFA"},
		{"zero percent passes through", "10 000 FCFA", 0, "10 000 FCFA"},
		{"non-numeric passes through", "Sur commande", 25, "Sur commande"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := ApplyDiscount(c.price, c.percent); got != c.want {
				t.Errorf("ApplyDiscount(%q, %d) = %q, want %q", c.price, c.percent, got, c.want)
			}
		})
	}
}
