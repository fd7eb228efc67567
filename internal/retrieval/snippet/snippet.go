// Package snippet selects and highlights the most relevant excerpt of a
// document for a given set of query terms, using a best-coverage sliding
// window rather than simply returning the first match.
package snippet

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

// WindowSize is the width, in bytes, of the sliding snippet window.
const WindowSize = 280

// StepSize is the stride the window slides by while searching for the
// highest-coverage position.
const StepSize = 40

// snapMargin is how close to a window edge a whitespace boundary must be
// to be snapped to, per spec §4.5 step 4.
const snapMargin = 30

// highlightTimeout bounds the highlight regex pass; on timeout the plain
// (unhighlighted) snippet is returned instead of hanging on pathological
// input.
const highlightTimeout = 100 * time.Millisecond

type hit struct {
	pos  int
	term string
}

// Generate returns a best-window excerpt of text covering as many distinct
// queryTerms as possible, with every occurrence wrapped in <mark>...</mark>
// (case-insensitive). If text contains none of queryTerms, the first
// WindowSize characters are returned instead, +ellipsis if truncated.
func Generate(text string, queryTerms []string) string {
	terms := distinctNonEmpty(queryTerms)
	if len(text) == 0 || len(terms) == 0 {
		return truncatePlain(text)
	}

	hits := collectHits(text, terms)
	if len(hits) == 0 {
		return truncatePlain(text)
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	start, end := bestWindow(text, hits)
	start, end = snapToWordBoundaries(text, start, end)

	excerpt := text[start:end]
	excerpt = highlight(excerpt, terms)

	var b strings.Builder
	if start > 0 {
		b.WriteString("...")
	}
	b.WriteString(excerpt)
	if end < len(text) {
		b.WriteString("...")
	}
	return b.String()
}

func distinctNonEmpty(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		lower := strings.ToLower(t)
		if _, ok := seen[lower]; ok {
			continue
		}
		seen[lower] = struct{}{}
		out = append(out, t)
	}
	return out
}

func collectHits(text string, terms []string) []hit {
	lower := strings.ToLower(text)
	var hits []hit
	for _, term := range terms {
		needle := strings.ToLower(term)
		if needle == "" {
			continue
		}
		start := 0
		for {
			idx := strings.Index(lower[start:], needle)
			if idx < 0 {
				break
			}
			pos := start + idx
			hits = append(hits, hit{pos: pos, term: needle})
			start = pos + len(needle)
		}
	}
	return hits
}

// bestWindow slides a WindowSize window in StepSize steps, scoring each
// by 1000*distinctTermsInWindow + hitsInWindow, and returns the [start,end)
// bounds of the first window to achieve the strictly highest score.
func bestWindow(text string, hits []hit) (int, int) {
	length := len(text)
	positions := make([]int, len(hits))
	for i, h := range hits {
		positions[i] = h.pos
	}

	bestScore := -1
	bestStart := 0
	for start := 0; start < length; start += StepSize {
		end := start + WindowSize
		if end > length {
			end = length
		}
		lo := sort.Search(len(positions), func(i int) bool { return positions[i] >= start })
		distinct := make(map[string]struct{})
		total := 0
		for i := lo; i < len(hits) && hits[i].pos < end; i++ {
			distinct[hits[i].term] = struct{}{}
			total++
		}
		score := 1000*len(distinct) + total
		if score > bestScore {
			bestScore = score
			bestStart = start
		}
		if end == length {
			break
		}
	}
	bestEnd := bestStart + WindowSize
	if bestEnd > length {
		bestEnd = length
	}
	return bestStart, bestEnd
}

func snapToWordBoundaries(text string, start, end int) (int, int) {
	if start > 0 {
		limit := start + snapMargin
		if limit > len(text) {
			limit = len(text)
		}
		if idx := strings.IndexByte(text[start:limit], ' '); idx >= 0 {
			start = start + idx + 1
		}
	}
	if end < len(text) {
		lowerBound := end - snapMargin
		if lowerBound < start {
			lowerBound = start
		}
		if idx := strings.LastIndexByte(text[lowerBound:end], ' '); idx >= 0 {
			end = lowerBound + idx
		}
	}
	if end < start {
		end = start
	}
	return start, end
}

func truncatePlain(text string) string {
	if len(text) <= WindowSize {
		return text
	}
	end := WindowSize
	if idx := strings.LastIndexByte(text[:end], ' '); idx > 0 {
		end = idx
	}
	return text[:end] + "..."
}

// highlight wraps every occurrence of any term (plus trailing word
// characters, so "natural" highlights the whole of "naturally") with
// <mark>...</mark>, case-insensitively, in one combined pattern pass. The
// pass is bounded by highlightTimeout; on timeout the unhighlighted excerpt
// is returned.
func highlight(excerpt string, terms []string) string {
	pattern := buildHighlightPattern(terms)
	if pattern == nil {
		return excerpt
	}

	result := make(chan string, 1)
	go func() {
		result <- pattern.ReplaceAllStringFunc(excerpt, func(match string) string {
			return "<mark>" + match + "</mark>"
		})
	}()

	select {
	case highlighted := <-result:
		return highlighted
	case <-time.After(highlightTimeout):
		return excerpt
	}
}

func buildHighlightPattern(terms []string) *regexp.Regexp {
	quoted := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		quoted = append(quoted, regexp.QuoteMeta(t))
	}
	if len(quoted) == 0 {
		return nil
	}
	expr := `(?i)\b(?:` + strings.Join(quoted, "|") + `)\w*`
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil
	}
	return re
}
