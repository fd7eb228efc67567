package orchestrator

import "testing"

func TestDiscoveryItemsForCapsAtTopN(t *testing.T) {
	deduped := []candidate{
		{URL: "https://plato.stanford.edu/entries/aquinas", Title: "Aquinas", Snippet: "s1"},
		{URL: "https://example.com/a", Title: "A", Snippet: "s2"},
		{URL: "https://example.com/b", Title: "B", Snippet: "s3"},
	}
	items := discoveryItemsFor(deduped, 2)
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].Score != 0 {
		t.Errorf("discovery items must be zero-scored, got %v", items[0].Score)
	}
	if !items[0].IsScholarly {
		t.Errorf("expected plato.stanford.edu to be marked scholarly")
	}
	if items[0].Domain != "plato.stanford.edu" {
		t.Errorf("Domain = %q", items[0].Domain)
	}
}

func TestDiscoveryItemsForTopNExceedsLength(t *testing.T) {
	deduped := []candidate{{URL: "https://example.com/a", Title: "A"}}
	items := discoveryItemsFor(deduped, 50)
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
}
