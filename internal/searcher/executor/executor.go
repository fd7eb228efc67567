// Package executor implements the indexed (non-live) search path, C8: it
// takes a parsed query and a process-lifetime index.Index and returns
// ranked, snippeted results, without touching the network.
package executor

import (
	"context"
	"log/slog"

	"github.com/liber-scholasticum/live-search/internal/indexer/index"
	"github.com/liber-scholasticum/live-search/internal/retrieval/snippet"
	"github.com/liber-scholasticum/live-search/internal/searcher/merger"
	"github.com/liber-scholasticum/live-search/internal/searcher/parser"
	"github.com/liber-scholasticum/live-search/internal/searcher/ranker"
	"github.com/liber-scholasticum/live-search/internal/searchtypes"
)

// Executor runs parsed queries against a process-lifetime index.Index.
type Executor struct {
	idx    *index.Index
	logger *slog.Logger
}

// New creates an Executor over idx.
func New(idx *index.Index) *Executor {
	return &Executor{
		idx:    idx,
		logger: slog.Default().With("component", "query-executor"),
	}
}

// Execute runs query against the index and returns the top topN results.
// A query with no terms at all returns an empty, zero-hit result rather
// than an error.
func (e *Executor) Execute(ctx context.Context, query string, topN int, contentType index.ContentType) searchtypes.SearchResult {
	pq := parser.Parse(query)
	if pq.IsEmpty() {
		return searchtypes.SearchResult{Query: query, Items: []searchtypes.SearchResultItem{}}
	}

	allTerms := pq.AllTerms()
	candidates := e.collectCandidates(allTerms)
	candidates = e.filterRequired(candidates, pq.RequiredTerms)
	candidates = e.filterPhrases(candidates, pq.Phrases)
	if contentType != "" {
		candidates = e.filterContentType(candidates, contentType)
	}

	docIDs := make([]string, 0, len(candidates))
	for docID := range candidates {
		docIDs = append(docIDs, docID)
	}
	ranked := ranker.RankAll(e.idx, allTerms, docIDs)
	if topN > 0 && len(ranked) > topN {
		ranked = merger.Merge([][]ranker.ScoredDoc{ranked}, topN)
	}

	items := make([]searchtypes.SearchResultItem, 0, len(ranked))
	for _, r := range ranked {
		doc, ok := e.idx.GetDocument(r.DocID)
		if !ok {
			continue
		}
		content, _ := e.idx.GetDocumentContent(r.DocID)
		items = append(items, searchtypes.SearchResultItem{
			Title:      doc.Title,
			URL:        doc.URL,
			Snippet:    snippet.Generate(content, allTerms),
			Score:      r.Score,
			SourceType: searchtypes.SourceIndexed,
		})
	}

	e.logger.Info("indexed query executed",
		"query", query,
		"candidates", len(candidates),
		"results", len(items),
	)
	return searchtypes.SearchResult{
		Query:        query,
		TotalMatches: len(candidates),
		Items:        items,
	}
}

// collectCandidates is the union of posting.docId across every term in
// terms (step 2 of C8).
func (e *Executor) collectCandidates(terms []string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, term := range terms {
		for docID := range e.idx.GetPostings(term) {
			out[docID] = struct{}{}
		}
	}
	return out
}

// filterRequired keeps only candidates that carry an O(1) posting for every
// required term (step 3).
func (e *Executor) filterRequired(candidates map[string]struct{}, required []string) map[string]struct{} {
	if len(required) == 0 {
		return candidates
	}
	for docID := range candidates {
		for _, term := range required {
			if _, ok := e.idx.GetPosting(term, docID); !ok {
				delete(candidates, docID)
				break
			}
		}
	}
	return candidates
}

// filterPhrases keeps only candidates containing every phrase as a
// contiguous run of positions (step 4). The first phrase term's positions
// anchor the candidate starting offsets; each subsequent term is checked
// via an O(1) posting lookup at anchor+i.
func (e *Executor) filterPhrases(candidates map[string]struct{}, phrases [][]string) map[string]struct{} {
	for _, phrase := range phrases {
		if len(phrase) == 0 {
			continue
		}
		for docID := range candidates {
			if !e.docContainsPhrase(docID, phrase) {
				delete(candidates, docID)
			}
		}
	}
	return candidates
}

func (e *Executor) docContainsPhrase(docID string, phrase []string) bool {
	anchor, ok := e.idx.GetPosting(phrase[0], docID)
	if !ok {
		return false
	}
	for start := range anchor.Positions {
		if e.phraseMatchesAt(docID, phrase, start) {
			return true
		}
	}
	return false
}

func (e *Executor) phraseMatchesAt(docID string, phrase []string, start int) bool {
	for i := 1; i < len(phrase); i++ {
		posting, ok := e.idx.GetPosting(phrase[i], docID)
		if !ok {
			return false
		}
		if _, ok := posting.Positions[start+i]; !ok {
			return false
		}
	}
	return true
}

// filterContentType keeps only candidates whose ingested document matches
// contentType (step 5).
func (e *Executor) filterContentType(candidates map[string]struct{}, contentType index.ContentType) map[string]struct{} {
	for docID := range candidates {
		doc, ok := e.idx.GetDocument(docID)
		if !ok || doc.ContentType != contentType {
			delete(candidates, docID)
		}
	}
	return candidates
}
