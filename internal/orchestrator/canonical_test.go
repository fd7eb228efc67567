package orchestrator

import "testing"

func TestCanonicalizeDedup(t *testing.T) {
	urls := []string{
		"https://www.jstor.org/x/",
		"http://jstor.org/x",
		"https://jstor.org/x#frag",
	}
	first := canonicalize(urls[0])
	for _, u := range urls[1:] {
		if got := canonicalize(u); got != first {
			t.Errorf("canonicalize(%q) = %q, want %q", u, got, first)
		}
	}
}

func TestCanonicalizePreservesQuery(t *testing.T) {
	got := canonicalize("https://example.com/search?q=aquinas")
	want := "https://example.com/search?q=aquinas"
	if got != want {
		t.Errorf("canonicalize = %q, want %q", got, want)
	}
}

func TestHostOf(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.jstor.org/x", "jstor.org"},
		{"https://plato.stanford.edu/entries/aquinas/", "plato.stanford.edu"},
		{"not a url", ""},
	}
	for _, tt := range tests {
		if got := hostOf(tt.url); got != tt.want {
			t.Errorf("hostOf(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
