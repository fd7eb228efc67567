// Package parser converts raw search query strings into a ParsedQuery of
// required terms, optional terms, and quoted phrases, delegating token
// normalisation to the indexer tokenizer.
package parser

import (
	"regexp"
	"strings"

	"github.com/liber-scholasticum/live-search/internal/indexer/tokenizer"
)

// ParsedQuery is the structured representation of a search query: ordered
// required terms, ordered optional terms, and ordered phrases (each an
// ordered sequence of terms). It is empty when all three are empty.
type ParsedQuery struct {
	RequiredTerms []string
	OptionalTerms []string
	Phrases       [][]string
	RawQuery      string
}

// IsEmpty reports whether the query carries no terms at all.
func (q *ParsedQuery) IsEmpty() bool {
	return len(q.RequiredTerms) == 0 && len(q.OptionalTerms) == 0 && len(q.Phrases) == 0
}

var phrasePattern = regexp.MustCompile(`"([^"]*)"`)

// Parse extracts quoted phrases first (tokenizing each phrase's interior),
// then splits the remainder on whitespace. AND is a no-op skip; OR routes
// the next token (or run of tokens, until the next recognised operator) to
// OptionalTerms; every other token is tokenized via C1 and routed to
// RequiredTerms, unless the OR flag is active, in which case it goes to
// OptionalTerms and the flag clears.
func Parse(query string) *ParsedQuery {
	pq := &ParsedQuery{
		RequiredTerms: make([]string, 0),
		OptionalTerms: make([]string, 0),
		Phrases:       make([][]string, 0),
		RawQuery:      query,
	}
	if strings.TrimSpace(query) == "" {
		return pq
	}

	working := query
	for _, m := range phrasePattern.FindAllStringSubmatch(query, -1) {
		interior := m[1]
		tokens := tokenizer.Tokenize(interior)
		if len(tokens) == 0 {
			continue
		}
		terms := make([]string, 0, len(tokens))
		for _, t := range tokens {
			terms = append(terms, t.Term)
		}
		pq.Phrases = append(pq.Phrases, terms)
	}
	working = phrasePattern.ReplaceAllString(working, " ")

	words := strings.Fields(working)
	optionalFlag := false
	for _, word := range words {
		switch strings.ToUpper(word) {
		case "AND":
			continue
		case "OR":
			optionalFlag = true
			continue
		}
		tokens := tokenizer.Tokenize(word)
		if len(tokens) == 0 {
			continue
		}
		for _, t := range tokens {
			if optionalFlag {
				pq.OptionalTerms = append(pq.OptionalTerms, t.Term)
			} else {
				pq.RequiredTerms = append(pq.RequiredTerms, t.Term)
			}
		}
		optionalFlag = false
	}
	return pq
}

// AllTerms returns RequiredTerms ∪ OptionalTerms ∪ flatten(Phrases), with
// duplicates retained — the scorer handles repeated terms correctly.
func (q *ParsedQuery) AllTerms() []string {
	all := make([]string, 0, len(q.RequiredTerms)+len(q.OptionalTerms))
	all = append(all, q.RequiredTerms...)
	all = append(all, q.OptionalTerms...)
	for _, phrase := range q.Phrases {
		all = append(all, phrase...)
	}
	return all
}
