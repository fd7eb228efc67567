package index

import (
	"sort"
	"sync"

	"github.com/liber-scholasticum/live-search/internal/indexer/tokenizer"
)

// Index is a concurrency-safe in-memory inverted index. It is the single
// canonical structure behind both the per-request live-search pipeline
// (internal/orchestrator builds a fresh Index per query) and the
// process-lifetime indexed-search engine (internal/indexer, wrapping an
// Index for the non-live path).
//
// Reads take the read lock and observe a consistent snapshot of whichever
// sub-structure they touch; mutations serialize on the same lock so a
// reader never observes a torn posting.
type Index struct {
	mu sync.RWMutex

	postings  map[string]map[string]*Posting // term -> docID -> posting
	documents map[string]Document
	docLens   map[string]int
	docBodies map[string]string
	docTerms  map[string]map[string]struct{} // forward index: docID -> terms

	avgDocLength float64
	avgDirty     bool
}

// NewIndex creates an empty Index.
func NewIndex() *Index {
	return &Index{
		postings:  make(map[string]map[string]*Posting),
		documents: make(map[string]Document),
		docLens:   make(map[string]int),
		docBodies: make(map[string]string),
		docTerms:  make(map[string]map[string]struct{}),
	}
}

// AddDocument tokenizes content and upserts meta/content/postings for
// meta.ID. If meta.ID already exists, its prior postings are removed via
// the forward index before the new ones are built, so reindexing replaces
// the record atomically rather than accumulating stale postings.
func (idx *Index) AddDocument(meta Document, content string) {
	tokens := tokenizer.Tokenize(content)
	positionsByTerm := make(map[string][]int, len(tokens)/2+1)
	for _, tok := range tokens {
		positionsByTerm[tok.Term] = append(positionsByTerm[tok.Term], tok.Position)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, exists := idx.documents[meta.ID]; exists {
		idx.removeDocumentLocked(meta.ID)
	}

	idx.documents[meta.ID] = meta
	idx.docLens[meta.ID] = len(tokens)
	idx.docBodies[meta.ID] = content

	terms := make(map[string]struct{}, len(positionsByTerm))
	for term, positions := range positionsByTerm {
		terms[term] = struct{}{}
		docMap, ok := idx.postings[term]
		if !ok {
			docMap = make(map[string]*Posting)
			idx.postings[term] = docMap
		}
		posSet := make(map[int]struct{}, len(positions))
		for _, p := range positions {
			posSet[p] = struct{}{}
		}
		docMap[meta.ID] = &Posting{
			DocID:         meta.ID,
			TermFrequency: len(posSet),
			Positions:     posSet,
		}
	}
	idx.docTerms[meta.ID] = terms
	idx.avgDirty = true
}

// RemoveDocument deletes docID's postings, metadata, length, content, and
// forward-index entry. It is O(|terms in doc|), walking the forward index
// instead of scanning every term's posting map.
func (idx *Index) RemoveDocument(docID string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.removeDocumentLocked(docID)
	idx.avgDirty = true
}

func (idx *Index) removeDocumentLocked(docID string) {
	terms, ok := idx.docTerms[docID]
	if !ok {
		return
	}
	for term := range terms {
		docMap, ok := idx.postings[term]
		if !ok {
			continue
		}
		delete(docMap, docID)
		if len(docMap) == 0 {
			delete(idx.postings, term)
		}
	}
	delete(idx.docTerms, docID)
	delete(idx.documents, docID)
	delete(idx.docLens, docID)
	delete(idx.docBodies, docID)
}

// Clear resets the entire index to empty.
func (idx *Index) Clear() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.postings = make(map[string]map[string]*Posting)
	idx.documents = make(map[string]Document)
	idx.docLens = make(map[string]int)
	idx.docBodies = make(map[string]string)
	idx.docTerms = make(map[string]map[string]struct{})
	idx.avgDocLength = 0
	idx.avgDirty = false
}

// GetPostings returns a snapshot copy of every posting for term, keyed by
// docID. Missing terms return an empty (non-nil) map.
func (idx *Index) GetPostings(term string) map[string]Posting {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	docMap, ok := idx.postings[term]
	if !ok {
		return map[string]Posting{}
	}
	out := make(map[string]Posting, len(docMap))
	for docID, p := range docMap {
		out[docID] = *p
	}
	return out
}

// GetDocumentFrequency returns the number of documents containing term.
func (idx *Index) GetDocumentFrequency(term string) int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.postings[term])
}

// GetPosting returns the O(1) posting for (term, docID), if present.
func (idx *Index) GetPosting(term, docID string) (Posting, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	docMap, ok := idx.postings[term]
	if !ok {
		return Posting{}, false
	}
	p, ok := docMap[docID]
	if !ok {
		return Posting{}, false
	}
	return *p, true
}

// GetDocument returns the metadata record for docID.
func (idx *Index) GetDocument(docID string) (Document, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	d, ok := idx.documents[docID]
	return d, ok
}

// GetDocumentLength returns the token count ingested for docID (0 if absent).
func (idx *Index) GetDocumentLength(docID string) int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.docLens[docID]
}

// GetDocumentContent returns the original ingested text for docID.
func (idx *Index) GetDocumentContent(docID string) (string, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	c, ok := idx.docBodies[docID]
	return c, ok
}

// GetAllDocumentIds returns every document id currently in the index, in
// no particular order.
func (idx *Index) GetAllDocumentIds() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	ids := make([]string, 0, len(idx.documents))
	for id := range idx.documents {
		ids = append(ids, id)
	}
	return ids
}

// DocumentCount returns the number of documents currently indexed.
func (idx *Index) DocumentCount() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.documents)
}

// AverageDocumentLength returns the cached mean of DocLengths, recomputing
// lazily the first time it is read after a mutation invalidated it.
func (idx *Index) AverageDocumentLength() float64 {
	idx.mu.RLock()
	if !idx.avgDirty {
		v := idx.avgDocLength
		idx.mu.RUnlock()
		return v
	}
	idx.mu.RUnlock()

	idx.mu.Lock()
	defer idx.mu.Unlock()
	if !idx.avgDirty {
		return idx.avgDocLength
	}
	if len(idx.docLens) == 0 {
		idx.avgDocLength = 0
	} else {
		sum := 0
		for _, l := range idx.docLens {
			sum += l
		}
		idx.avgDocLength = float64(sum) / float64(len(idx.docLens))
	}
	idx.avgDirty = false
	return idx.avgDocLength
}

// Snapshot returns a sorted copy of all term entries, suitable for flushing
// to a segment file (internal/indexer/segment). Documents, lengths, and
// content are not part of the segment format; internal/indexer persists
// them in a separate manifest (see manifestFile in engine.go).
func (idx *Index) Snapshot() []TermEntry {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	entries := make([]TermEntry, 0, len(idx.postings))
	for term, docMap := range idx.postings {
		postings := make(PostingList, 0, len(docMap))
		for _, p := range docMap {
			postings = append(postings, *p)
		}
		sort.Slice(postings, func(i, j int) bool {
			return postings[i].DocID < postings[j].DocID
		})
		entries = append(entries, TermEntry{Term: term, Postings: postings})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Term < entries[j].Term
	})
	return entries
}
