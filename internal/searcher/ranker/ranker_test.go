package ranker

import (
	"testing"

	"github.com/liber-scholasticum/live-search/internal/indexer/index"
	"github.com/liber-scholasticum/live-search/internal/indexer/tokenizer"
)

func newIndexWithDocs(t *testing.T, docs map[string]string) *index.Index {
	t.Helper()
	idx := index.NewIndex()
	for id, content := range docs {
		idx.AddDocument(index.Document{ID: id, Title: id}, content)
	}
	return idx
}

func TestScoreZeroOnEmptyIndex(t *testing.T) {
	idx := index.NewIndex()
	if got := Score(idx, []string{"theology"}, "missing"); got != 0 {
		t.Fatalf("Score on empty index = %v, want 0", got)
	}
}

func TestScoreZeroForUnseenTerm(t *testing.T) {
	idx := newIndexWithDocs(t, map[string]string{"a": "natural law tradition"})
	if got := Score(idx, []string{"zzzznoexist"}, "a"); got != 0 {
		t.Fatalf("Score for unseen term = %v, want 0", got)
	}
}

// TestStemmingCollapseMatchesStemmedQuery mirrors seed scenario 1: a
// document containing "theology"/"theological" should match a query for
// "theologians" once both sides are stemmed, with a strictly positive score.
func TestStemmingCollapseMatchesStemmedQuery(t *testing.T) {
	idx := newIndexWithDocs(t, map[string]string{
		"A": "Theology and theological inquiry",
		"B": "a completely unrelated document about gardening",
	})
	queryTokens := tokenizer.Tokenize("theologians")
	if len(queryTokens) != 1 {
		t.Fatalf("Tokenize(theologians) = %v, want exactly one token", queryTokens)
	}
	score := Score(idx, []string{queryTokens[0].Term}, "A")
	if score <= 0 {
		t.Fatalf("Score(A) = %v, want > 0 once theologians stems to match theology/theological", score)
	}
}

func TestBM25NonNegativeForRareTerms(t *testing.T) {
	idx := newIndexWithDocs(t, map[string]string{
		"a": "natural law and divine law",
		"b": "an unrelated essay about gardening techniques",
		"c": "another unrelated essay about cooking methods",
	})
	for _, docID := range idx.GetAllDocumentIds() {
		score := Score(idx, []string{"natur", "law"}, docID)
		if score < 0 {
			t.Errorf("Score(%q) = %v, want >= 0 for a rare term", docID, score)
		}
	}
}

func TestRankAllOrdersDescendingByScore(t *testing.T) {
	idx := newIndexWithDocs(t, map[string]string{
		"lots":  "natural law natural law natural law tradition",
		"few":   "a passing mention of natural law",
		"none":  "nothing relevant here at all",
	})
	ranked := RankAll(idx, []string{"natur", "law"}, idx.GetAllDocumentIds())
	if len(ranked) != 3 {
		t.Fatalf("len(ranked) = %d, want 3", len(ranked))
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i-1].Score < ranked[i].Score {
			t.Fatalf("ranked results not descending: %+v", ranked)
		}
	}
	if ranked[len(ranked)-1].DocID != "none" {
		t.Errorf("lowest-scoring doc = %q, want %q", ranked[len(ranked)-1].DocID, "none")
	}
}

func TestRankAllStableTieBreakByDocID(t *testing.T) {
	idx := newIndexWithDocs(t, map[string]string{
		"b": "identical content about natural law",
		"a": "identical content about natural law",
	})
	ranked := RankAll(idx, []string{"natur", "law"}, idx.GetAllDocumentIds())
	if ranked[0].Score != ranked[1].Score {
		t.Fatalf("expected tied scores, got %+v", ranked)
	}
	if ranked[0].DocID != "a" || ranked[1].DocID != "b" {
		t.Fatalf("tie-break order = %+v, want [a b]", ranked)
	}
}

func TestIDFStaysPositiveForCommonTerms(t *testing.T) {
	got := computeIDF(2, 2)
	if got <= 0 {
		t.Fatalf("computeIDF(2,2) = %v, want positive (term in every doc)", got)
	}
	if rarer := computeIDF(2, 1); got >= rarer {
		t.Fatalf("computeIDF(2,2) = %v, want less than computeIDF(2,1) = %v", got, rarer)
	}
}
