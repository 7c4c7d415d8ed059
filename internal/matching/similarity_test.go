package matching_test

import (
	"testing"

	"stayhook/internal/matching"
)

func TestEditSimilarity(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 100},
		{"casa", "casa", 100},
		{"kitten", "sitting", 57},
		{"csa plya azul", "casa playa azul", 87},
		{"abc", "", 0},
	}
	for _, c := range cases {
		if got := matching.EditSimilarity(c.a, c.b); got != c.want {
			t.Errorf("EditSimilarity(%q,%q) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestKeywordOverlap(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"Loft Centro Madrid", "Apartamento Centro", 33},
		{"Apartamento Sol Madrid", "Madrid Sol Apartamento Centro", 75},
		{"Casa Playa", "casa playa", 100},
		{"Casas Playa", "Casa", 50}, // "casas" contains "casa"
		{"de la", "Casa Playa", 0},
		{"", "", 0},
	}
	for _, c := range cases {
		if got := matching.KeywordOverlap(c.a, c.b); got != c.want {
			t.Errorf("KeywordOverlap(%q,%q) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}
