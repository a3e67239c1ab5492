package topics

import (
	"math/rand"
	"testing"
)

func TestNormalizeAliases(t *testing.T) {
	cases := map[string]string{
		"cricket":        "sports",
		"human_body":     "science_nature",
		"human-body":     "science_nature",
		"cyber-security": "cyber_security",
		"SPACE":          "space_astronomy",
		"online safety":  "internet_safety",
		"geography":      "geography",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, slug := range Slugs() {
		if got := Normalize(Normalize(slug)); got != slug {
			t.Errorf("normalizing canonical slug %q changed it to %q", slug, got)
		}
	}
}

func TestNormalizeUnknownPassesThrough(t *testing.T) {
	if got := Normalize("Underwater Basket-Weaving"); got != "underwater_basket_weaving" {
		t.Errorf("unexpected normalization: %q", got)
	}
	if Known("underwater_basket_weaving") {
		t.Error("unknown slug reported as known")
	}
}

func TestRandomReturnsCatalogSlug(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		if slug := Random(rnd); !Known(slug) {
			t.Fatalf("Random returned non-catalog slug %q", slug)
		}
	}
}
