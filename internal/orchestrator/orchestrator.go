// Package orchestrator implements the live-search pipeline: discovery,
// canonical-URL dedup, DNS prefetch, bounded parallel fetch, a transient
// per-query inverted index, BM25 scoring with title/domain boosts, snippet
// generation, and ranked (or two-phase streamed) emission.
package orchestrator

import (
	"context"
	"net"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/liber-scholasticum/live-search/internal/discovery"
	"github.com/liber-scholasticum/live-search/internal/fetch"
	"github.com/liber-scholasticum/live-search/internal/indexer/index"
	"github.com/liber-scholasticum/live-search/internal/indexer/tokenizer"
	"github.com/liber-scholasticum/live-search/internal/retrieval/snippet"
	"github.com/liber-scholasticum/live-search/internal/robots"
	"github.com/liber-scholasticum/live-search/internal/searcher/ranker"
	"github.com/liber-scholasticum/live-search/internal/searchtypes"
	"github.com/liber-scholasticum/live-search/pkg/metrics"
	"github.com/liber-scholasticum/live-search/pkg/resilience"
	"github.com/liber-scholasticum/live-search/pkg/tracing"
)

// Config controls the live-search pipeline's bounds and timeouts.
type Config struct {
	MaxDiscoveryResults int
	MaxParallelFetches  int
	PerPageTimeout      time.Duration
	DiscoveryTimeout    time.Duration
}

// DefaultConfig returns the spec's default bounds.
func DefaultConfig() Config {
	return Config{
		MaxDiscoveryResults: 50,
		MaxParallelFetches:  8,
		PerPageTimeout:      10 * time.Second,
		DiscoveryTimeout:    15 * time.Second,
	}
}

// Orchestrator drives one live search end-to-end. Robots and Metrics are
// optional collaborators; either may be nil.
type Orchestrator struct {
	Scraper *discovery.Scraper
	Fetcher *fetch.Fetcher
	Robots  *robots.Checker
	Metrics *metrics.Metrics
	Config  Config
}

// New constructs an Orchestrator, filling in DefaultConfig for zero-value
// Config fields.
func New(scraper *discovery.Scraper, fetcher *fetch.Fetcher, robotsChecker *robots.Checker, m *metrics.Metrics, cfg Config) *Orchestrator {
	def := DefaultConfig()
	if cfg.MaxDiscoveryResults <= 0 {
		cfg.MaxDiscoveryResults = def.MaxDiscoveryResults
	}
	if cfg.MaxParallelFetches <= 0 {
		cfg.MaxParallelFetches = def.MaxParallelFetches
	}
	if cfg.PerPageTimeout <= 0 {
		cfg.PerPageTimeout = def.PerPageTimeout
	}
	if cfg.DiscoveryTimeout <= 0 {
		cfg.DiscoveryTimeout = def.DiscoveryTimeout
	}
	return &Orchestrator{Scraper: scraper, Fetcher: fetcher, Robots: robotsChecker, Metrics: m, Config: cfg}
}

// candidate is a deduplicated discovery tuple. URL is the discovery URL as
// returned, which is also the URL fetched downstream; its canonical form is
// used only as the dedup key.
type candidate struct {
	URL     string
	Title   string
	Snippet string
}

// Search runs the full non-streaming pipeline for (query, topN).
func (o *Orchestrator) Search(ctx context.Context, query string, topN int) (searchtypes.SearchResult, error) {
	start := time.Now()
	ctx, span := tracing.StartChildSpan(ctx, "live_search")
	defer span.End()

	query = strings.TrimSpace(query)
	if query == "" {
		return emptyResult(query, start), nil
	}

	deduped, err := o.discover(ctx, query)
	if err != nil || len(deduped) == 0 {
		return emptyResult(query, start), nil
	}

	items, total, _ := o.fetchScoreAndSnippet(ctx, query, deduped, topN)
	return searchtypes.SearchResult{
		Query:               query,
		TotalMatches:        total,
		ElapsedMilliseconds: time.Since(start).Milliseconds(),
		Items:               items,
	}, nil
}

// StreamFunc receives one event of the two-phase streaming contract. The
// caller is responsible for flushing the event's bytes before this returns.
type StreamFunc func(searchtypes.StreamedSearchEvent) error

// SearchStream runs the pipeline in two phases, emitting a "discovery"
// event before the "scored" event, per §4.1's streaming contract.
func (o *Orchestrator) SearchStream(ctx context.Context, query string, topN int, emit StreamFunc) error {
	start := time.Now()
	ctx, span := tracing.StartChildSpan(ctx, "live_search_stream")
	defer span.End()

	query = strings.TrimSpace(query)
	if query == "" {
		empty := emptyResult(query, start)
		return emit(searchtypes.StreamedSearchEvent{Phase: searchtypes.PhaseScored, Result: empty})
	}

	deduped, err := o.discover(ctx, query)
	if err != nil || len(deduped) == 0 {
		empty := emptyResult(query, start)
		return emit(searchtypes.StreamedSearchEvent{Phase: searchtypes.PhaseScored, Result: empty})
	}

	discoveryItems := discoveryItemsFor(deduped, topN)
	discoveryResult := searchtypes.SearchResult{
		Query:               query,
		TotalMatches:        len(deduped),
		ElapsedMilliseconds: time.Since(start).Milliseconds(),
		Items:               discoveryItems,
	}
	if err := emit(searchtypes.StreamedSearchEvent{Phase: searchtypes.PhaseDiscovery, Result: discoveryResult}); err != nil {
		return err
	}

	items, total, fellBack := o.fetchScoreAndSnippet(ctx, query, deduped, topN)
	scoredResult := searchtypes.SearchResult{
		Query:               query,
		TotalMatches:        total,
		ElapsedMilliseconds: time.Since(start).Milliseconds(),
		Items:               items,
	}
	if fellBack {
		scoredResult.Items = discoveryItems
		scoredResult.TotalMatches = len(deduped)
	}
	return emit(searchtypes.StreamedSearchEvent{Phase: searchtypes.PhaseScored, Result: scoredResult})
}

func emptyResult(query string, start time.Time) searchtypes.SearchResult {
	return searchtypes.SearchResult{
		Query:               query,
		TotalMatches:        0,
		ElapsedMilliseconds: time.Since(start).Milliseconds(),
		Items:               []searchtypes.SearchResultItem{},
	}
}

// discover queries C3 with the scholarly-biased query, retried once on
// transient failure, and returns deduplicated candidates (first occurrence
// of each canonical URL wins, discovery order preserved).
func (o *Orchestrator) discover(ctx context.Context, query string) ([]candidate, error) {
	ctx, span := tracing.StartChildSpan(ctx, "discovery")
	defer span.End()

	discoveryStart := time.Now()
	augmented := augmentQuery(query)

	var results []discovery.Result
	err := resilience.Retry(ctx, "discovery", resilience.RetryConfig{MaxAttempts: 2}, func() error {
		var innerErr error
		timeoutErr := resilience.WithTimeout(ctx, o.Config.DiscoveryTimeout, "discovery", func(tctx context.Context) error {
			results, innerErr = o.Scraper.Search(tctx, augmented, o.Config.MaxDiscoveryResults)
			return innerErr
		})
		if timeoutErr != nil {
			return timeoutErr
		}
		return innerErr
	})
	if o.Metrics != nil {
		o.Metrics.SearchLatency.WithLabelValues("discovery").Observe(time.Since(discoveryStart).Seconds())
		o.Metrics.DiscoveryLatency.Observe(time.Since(discoveryStart).Seconds())
	}
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(results))
	deduped := make([]candidate, 0, len(results))
	for _, r := range results {
		key := canonicalize(r.URL)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, candidate{URL: r.URL, Title: r.Title, Snippet: r.Snippet})
	}
	if o.Metrics != nil {
		o.Metrics.DiscoveryResultsCount.Observe(float64(len(deduped)))
	}
	return deduped, nil
}

// discoveryItemsFor builds the zero-scored item list from deduped
// discovery tuples, capped at topN.
func discoveryItemsFor(deduped []candidate, topN int) []searchtypes.SearchResultItem {
	if topN <= 0 || topN > len(deduped) {
		topN = len(deduped)
	}
	items := make([]searchtypes.SearchResultItem, 0, topN)
	for _, c := range deduped[:topN] {
		host := hostOf(c.URL)
		items = append(items, searchtypes.SearchResultItem{
			Title:       c.Title,
			URL:         c.URL,
			Snippet:     c.Snippet,
			Score:       0,
			SourceType:  searchtypes.SourceLive,
			IsScholarly: isScholarly(host),
			Domain:      host,
		})
	}
	return items
}

type fetchedPage struct {
	candidate candidate
	page      fetch.Page
}

// fetchScoreAndSnippet runs DNS prefetch, bounded parallel fetch, builds a
// transient index, scores every successfully-fetched page, and returns the
// topN items. If no page was fetched successfully it falls back to the
// deduped discovery tuples as zero-scored items (fellBack=true).
func (o *Orchestrator) fetchScoreAndSnippet(ctx context.Context, query string, deduped []candidate, topN int) (items []searchtypes.SearchResultItem, total int, fellBack bool) {
	ctx, fetchSpan := tracing.StartChildSpan(ctx, "fetch")
	o.dnsPrefetch(deduped)

	pages := o.parallelFetch(ctx, deduped)
	fetchSpan.End()

	if len(pages) == 0 {
		return discoveryItemsFor(deduped, topN), len(deduped), true
	}

	_, indexSpan := tracing.StartChildSpan(ctx, "index")
	idx := index.NewIndex()
	byID := make(map[string]fetchedPage, len(pages))
	for _, fp := range pages {
		title := fp.page.Title
		if title == "" {
			title = fp.candidate.Title
		}
		idx.AddDocument(index.Document{
			ID:          fp.page.URL,
			Title:       title,
			URL:         fp.page.URL,
			ContentType: index.ContentTypeHTML,
		}, fp.page.Text)
		byID[fp.page.URL] = fp
	}
	indexSpan.End()

	_, scoreSpan := tracing.StartChildSpan(ctx, "score")
	queryTokens := tokenizer.Tokenize(query)
	queryTerms := make([]string, 0, len(queryTokens))
	for _, t := range queryTokens {
		queryTerms = append(queryTerms, t.Term)
	}

	docIDs := idx.GetAllDocumentIds()
	scored := ranker.RankAll(idx, queryTerms, docIDs)
	for i, sd := range scored {
		doc, _ := idx.GetDocument(sd.DocID)
		scored[i].Score = applyBoosts(sd.Score, queryTerms, doc.Title, doc.ID)
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	scoreSpan.End()

	if topN <= 0 || topN > len(scored) {
		topN = len(scored)
	}

	_, snippetSpan := tracing.StartChildSpan(ctx, "snippet")
	items = make([]searchtypes.SearchResultItem, 0, topN)
	for _, sd := range scored[:topN] {
		doc, _ := idx.GetDocument(sd.DocID)
		content, _ := idx.GetDocumentContent(sd.DocID)
		host := hostOf(doc.URL)
		items = append(items, searchtypes.SearchResultItem{
			Title:       doc.Title,
			URL:         doc.URL,
			Snippet:     snippet.Generate(content, queryTerms),
			Score:       sd.Score,
			SourceType:  searchtypes.SourceLive,
			IsScholarly: isScholarly(host),
			Domain:      host,
		})
	}
	snippetSpan.End()

	return items, len(scored), false
}

// applyBoosts multiplies a BM25 score by the title-overlap boost and the
// scholarly-domain boost, per §4.1 Scoring.
func applyBoosts(score float64, queryTerms []string, title, docID string) float64 {
	if len(queryTerms) > 0 {
		titleTokens := tokenizer.Tokenize(title)
		titleSet := make(map[string]struct{}, len(titleTokens))
		for _, t := range titleTokens {
			titleSet[t.Term] = struct{}{}
		}
		matched := 0
		seen := make(map[string]struct{})
		for _, term := range queryTerms {
			if _, dup := seen[term]; dup {
				continue
			}
			seen[term] = struct{}{}
			if _, ok := titleSet[term]; ok {
				matched++
			}
		}
		if matched > 0 {
			score *= 1 + 0.3*float64(matched)/float64(len(queryTerms))
		}
	}
	if isScholarly(hostOf(docID)) {
		score *= scholarlyBoost
	}
	return score
}

// dnsPrefetch resolves every distinct candidate host asynchronously,
// fire-and-forget; failures are swallowed.
func (o *Orchestrator) dnsPrefetch(deduped []candidate) {
	seen := make(map[string]struct{})
	for _, c := range deduped {
		host := hostOf(c.URL)
		if host == "" {
			continue
		}
		if _, dup := seen[host]; dup {
			continue
		}
		seen[host] = struct{}{}
		go func(h string) {
			prefetchCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_, _ = net.DefaultResolver.LookupHost(prefetchCtx, h)
		}(host)
	}
}

// parallelFetch fetches every candidate with bounded concurrency, skipping
// URLs robots.txt disallows (if a Robots checker is configured) and
// dropping any page whose fetch failed.
func (o *Orchestrator) parallelFetch(ctx context.Context, deduped []candidate) []fetchedPage {
	sem := semaphore.NewWeighted(int64(o.Config.MaxParallelFetches))
	var wg sync.WaitGroup
	var mu sync.Mutex
	var pages []fetchedPage

	for _, c := range deduped {
		if ctx.Err() != nil {
			break
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(c candidate) {
			defer wg.Done()
			defer sem.Release(1)

			if o.Robots != nil && !o.Robots.Allowed(ctx, c.URL) {
				if o.Metrics != nil {
					o.Metrics.FetchAttemptsTotal.WithLabelValues("robots_disallowed").Inc()
				}
				return
			}

			var page fetch.Page
			_ = resilience.WithTimeout(ctx, o.Config.PerPageTimeout, "fetch", func(tctx context.Context) error {
				page = o.Fetcher.Fetch(tctx, c.URL)
				return page.Err
			})
			if page.Err != nil {
				if o.Metrics != nil {
					o.Metrics.SearchQueriesTotal.WithLabelValues("fetch_error").Inc()
					o.Metrics.FetchAttemptsTotal.WithLabelValues("http_error").Inc()
				}
				return
			}
			if o.Metrics != nil {
				o.Metrics.FetchAttemptsTotal.WithLabelValues("ok").Inc()
			}

			mu.Lock()
			pages = append(pages, fetchedPage{candidate: c, page: page})
			mu.Unlock()
		}(c)
	}
	wg.Wait()
	return pages
}
