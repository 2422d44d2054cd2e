package unit

import (
	"errors"
	"math"
	"testing"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"72pt", 72},
		{"1in", 72},
		{"2.54cm", 72},
		{"25.4mm", 72},
		{"1pc", 12},
		{"12", 12},
		{" 3cm ", 3 * 72 / 2.54},
		{"-1.5cm", -1.5 * 72 / 2.54},
		{"10CM", 10 * 72 / 2.54},
	}
	for _, tc := range cases {
		got, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tc.in, err)
		}
		if math.Abs(got.Points()-tc.want) > 1e-9 {
			t.Fatalf("Parse(%q) = %v, want %vpt", tc.in, got, tc.want)
		}
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "cm", "abc", "1.2.3mm", "2*"} {
		if _, err := Parse(in); !errors.Is(err, ErrInvalidLength) {
			t.Fatalf("Parse(%q) err = %v, want ErrInvalidLength", in, err)
		}
	}
}

func TestConversions(t *testing.T) {
	u := Cm(2.54)
	if math.Abs(u.Inches()-1) > 1e-9 {
		t.Fatalf("2.54cm = %vin, want 1in", u.Inches())
	}
	if math.Abs(Mm(10).Centimeters()-1) > 1e-9 {
		t.Fatalf("10mm = %vcm, want 1cm", Mm(10).Centimeters())
	}
	if Pt(12).String() != "12pt" {
		t.Fatalf("String() = %q", Pt(12).String())
	}
}
