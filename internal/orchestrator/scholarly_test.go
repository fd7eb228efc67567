package orchestrator

import "testing"

func TestIsScholarly(t *testing.T) {
	tests := []struct {
		host string
		want bool
	}{
		{"jstor.org", true},
		{"www.jstor.org", true}, // a www. subdomain also matches as a suffix
		{"articles.jstor.org", true},
		{"en.wikipedia.org", true},
		{"example.com", false},
	}
	for _, tt := range tests {
		if got := isScholarly(tt.host); got != tt.want {
			t.Errorf("isScholarly(%q) = %v, want %v", tt.host, got, tt.want)
		}
	}
}

func TestAugmentQuery(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"thomas aquinas", "thomas aquinas scholarly theology philosophy"},
		{"scholarly journal review", "scholarly journal review"},
		{"site:jstor.org aquinas", "site:jstor.org aquinas"},
		{"academic paper on Augustine", "academic paper on Augustine"},
	}
	for _, tt := range tests {
		if got := augmentQuery(tt.query); got != tt.want {
			t.Errorf("augmentQuery(%q) = %q, want %q", tt.query, got, tt.want)
		}
	}
}

func TestApplyBoostsTitleAndDomain(t *testing.T) {
	base := 2.0
	// query terms are passed stemmed, as Tokenize emits them ("natural" -> "natur")
	boosted := applyBoosts(base, []string{"natur", "law"}, "Natural Law in Aquinas", "https://plato.stanford.edu/entries/x")
	// title boost: 1 + 0.3*2/2 = 1.3; domain boost: 1.5 -> 2 * 1.3 * 1.5 = 3.9
	want := base * 1.3 * 1.5
	if diff := boosted - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("applyBoosts = %v, want %v", boosted, want)
	}
}

func TestApplyBoostsNoMatch(t *testing.T) {
	boosted := applyBoosts(2.0, []string{"natural", "law"}, "Unrelated Title", "https://example.com/x")
	if boosted != 2.0 {
		t.Errorf("applyBoosts = %v, want unchanged 2.0", boosted)
	}
}
