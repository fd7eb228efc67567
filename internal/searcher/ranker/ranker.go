// Package ranker implements Okapi BM25 relevance scoring directly over an
// internal/indexer/index.Index, using its O(1) per-(term, doc) accessors
// instead of pre-flattened posting slices.
package ranker

import (
	"math"
	"sort"

	"github.com/liber-scholasticum/live-search/internal/indexer/index"
)

// BM25 tuning parameters, per spec §4.4.
const (
	k1 = 1.2
	b  = 0.75
)

// ScoredDoc pairs a document ID with its BM25 relevance score.
type ScoredDoc struct {
	DocID string  `json:"doc_id"`
	Score float64 `json:"score"`
}

// Score computes the BM25 score of a single document against queryTerms
// (duplicates retained; repeated terms naturally accumulate idf*tfNorm
// multiple times, which is correct for BM25). Returns 0 if the index has no
// documents or a zero average document length.
func Score(idx *index.Index, queryTerms []string, docID string) float64 {
	n := int64(idx.DocumentCount())
	avgdl := idx.AverageDocumentLength()
	if n == 0 || avgdl == 0 {
		return 0
	}
	dl := float64(idx.GetDocumentLength(docID))

	var total float64
	for _, term := range queryTerms {
		df := idx.GetDocumentFrequency(term)
		if df == 0 {
			continue
		}
		posting, ok := idx.GetPosting(term, docID)
		if !ok {
			continue
		}
		idf := computeIDF(n, int64(df))
		tfNorm := computeTFNorm(float64(posting.TermFrequency), dl, avgdl)
		total += idf * tfNorm
	}
	return total
}

// RankAll scores every document in idx against queryTerms and returns the
// results sorted descending by score (ties broken by docID for a stable,
// deterministic order).
func RankAll(idx *index.Index, queryTerms []string, docIDs []string) []ScoredDoc {
	result := make([]ScoredDoc, 0, len(docIDs))
	for _, docID := range docIDs {
		result = append(result, ScoredDoc{
			DocID: docID,
			Score: Score(idx, queryTerms, docID),
		})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Score != result[j].Score {
			return result[i].Score > result[j].Score
		}
		return result[i].DocID < result[j].DocID
	})
	return result
}

// computeIDF calculates the BM25 inverse document frequency for a term. The
// +1 inside the logarithm keeps it positive even for a term present in
// every document; such common terms get a small weight, never a negative one.
func computeIDF(totalDocs int64, docFreq int64) float64 {
	numerator := float64(totalDocs) - float64(docFreq) + 0.5
	denominator := float64(docFreq) + 0.5
	return math.Log(numerator/denominator + 1)
}

// computeTFNorm calculates the BM25 saturated, length-normalised term
// frequency.
func computeTFNorm(termFreq float64, docLength float64, avgDocLength float64) float64 {
	if avgDocLength == 0 {
		return 0
	}
	lengthRatio := docLength / avgDocLength
	denominator := termFreq + k1*(1-b+b*lengthRatio)
	if denominator == 0 {
		return 0
	}
	return (termFreq * (k1 + 1)) / denominator
}
