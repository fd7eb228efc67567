package discovery

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func TestUnwrapURL(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fpage&rut=abc", "https://example.com/page", true},
		{"https://example.com/direct", "https://example.com/direct", true},
		{"ftp://example.com/file", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := unwrapURL(tt.input)
		if ok != tt.ok {
			t.Fatalf("unwrapURL(%q) ok = %v, want %v", tt.input, ok, tt.ok)
		}
		if ok && got != tt.want {
			t.Errorf("unwrapURL(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestExtractResults(t *testing.T) {
	page := `<html><body>
		<div class="result results_links results_links_deep web-result">
			<div class="result__body">
				<a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fone&rut=a">First &amp; Result</a>
				<a class="result__snippet">First description.</a>
			</div>
		</div>
		<div class="result results_links results_links_deep web-result">
			<div class="result__body">
				<a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.org%2Ftwo&rut=b">Second Result</a>
				<a class="result__snippet">Second description.</a>
			</div>
		</div>
	</body></html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	results := extractResults(doc)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].URL != "https://example.com/one" {
		t.Errorf("results[0].URL = %q", results[0].URL)
	}
	if results[0].Title != "First & Result" {
		t.Errorf("results[0].Title = %q, want entity-decoded", results[0].Title)
	}
	if results[1].Snippet != "Second description." {
		t.Errorf("results[1].Snippet = %q", results[1].Snippet)
	}
}

func TestExtractResultsNoMatches(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<html><body><p>no results</p></body></html>`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := extractResults(doc); len(got) != 0 {
		t.Errorf("got %d results, want 0", len(got))
	}
}

func TestExtractNextForm(t *testing.T) {
	page := `<html><body>
		<form>
			<input type="hidden" name="q" value="thomas aquinas">
			<input type="hidden" name="s" value="30">
			<input type="submit" value="Next">
		</form>
	</body></html>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	form, ok := extractNextForm(doc)
	if !ok {
		t.Fatal("expected a Next form to be found")
	}
	if form.Get("q") != "thomas aquinas" || form.Get("s") != "30" {
		t.Errorf("form = %v", form)
	}
}

func TestExtractNextFormAbsent(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<html><body>no form here</body></html>`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, ok := extractNextForm(doc); ok {
		t.Error("expected no Next form")
	}
}

func TestAppendResultsDedupes(t *testing.T) {
	seen := make(map[string]struct{})
	results := appendResults(nil, seen, []Result{
		{URL: "https://example.com/a", Title: "A"},
		{URL: "https://example.com/b", Title: "B"},
	})
	results = appendResults(results, seen, []Result{
		{URL: "https://example.com/a", Title: "A again"},
		{URL: "https://example.com/c", Title: "C"},
	})
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3 (dup suppressed): %+v", len(results), results)
	}
}
