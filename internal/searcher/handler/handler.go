// Package handler exposes the HTTP adapter surface: live and indexed
// search, the live-search SSE stream, non-live document ingestion, and
// health checks. It is a thin adapter — all ranking, discovery, and
// fetching logic lives in internal/orchestrator and internal/searcher.
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/liber-scholasticum/live-search/internal/ingest"
	"github.com/liber-scholasticum/live-search/internal/indexer"
	"github.com/liber-scholasticum/live-search/internal/indexer/index"
	"github.com/liber-scholasticum/live-search/internal/orchestrator"
	"github.com/liber-scholasticum/live-search/internal/searcher/cache"
	"github.com/liber-scholasticum/live-search/internal/searcher/executor"
	"github.com/liber-scholasticum/live-search/internal/searchtypes"
	apperrors "github.com/liber-scholasticum/live-search/pkg/errors"
	"github.com/liber-scholasticum/live-search/pkg/logger"
	"github.com/liber-scholasticum/live-search/pkg/metrics"
	"github.com/liber-scholasticum/live-search/pkg/middleware"
	"github.com/liber-scholasticum/live-search/pkg/tracing"
)

const (
	modeLive    = "live"
	modeIndexed = "indexed"
)

// Handler serves the search service's HTTP API.
type Handler struct {
	orchestrator *orchestrator.Orchestrator
	executor     *executor.Executor
	engine       *indexer.Engine
	cache        *cache.QueryCache
	metrics      *metrics.Metrics
	defaultTopN  int
	maxTopN      int
	logger       *slog.Logger
}

// New creates a Handler. engine may be nil if indexed-search ingestion is
// not exposed; orchestrator and cache may likewise be nil to disable their
// respective routes, in which case the handler responds 503.
func New(orch *orchestrator.Orchestrator, exec *executor.Executor, engine *indexer.Engine, queryCache *cache.QueryCache, m *metrics.Metrics, defaultTopN, maxTopN int) *Handler {
	return &Handler{
		orchestrator: orch,
		executor:     exec,
		engine:       engine,
		cache:        queryCache,
		metrics:      m,
		defaultTopN:  defaultTopN,
		maxTopN:      maxTopN,
		logger:       slog.Default().With("component", "search-handler"),
	}
}

// Search handles GET /api/v1/search?q=&topN=&mode=live|indexed.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)
	requestID := middleware.GetRequestID(r)

	ctx, span := tracing.StartSpan(ctx, "search", requestID)
	defer func() {
		span.End()
		span.Log()
	}()

	query := r.URL.Query().Get("q")
	mode := r.URL.Query().Get("mode")
	if mode == "" {
		mode = modeLive
	}
	if mode != modeLive && mode != modeIndexed {
		h.writeError(w, http.StatusBadRequest, "mode must be 'live' or 'indexed'")
		return
	}

	topN, ok := h.resolveTopN(w, r)
	if !ok {
		return
	}

	if query == "" {
		h.recordSearchMetrics("empty_query", mode, 0, time.Since(start))
		h.writeJSON(w, http.StatusOK, searchtypes.SearchResult{Query: query, Items: []searchtypes.SearchResultItem{}})
		return
	}

	result, err := h.execute(ctx, mode, query, topN)
	if err != nil {
		log.Error("search execution failed", "query", query, "mode", mode, "error", err)
		h.recordSearchMetrics("error", mode, 0, time.Since(start))
		h.writeError(w, apperrors.HTTPStatusCode(err), err.Error())
		return
	}

	h.recordSearchMetrics("ok", mode, len(result.Items), time.Since(start))
	span.SetAttr("query", query)
	span.SetAttr("mode", mode)
	span.SetAttr("returned", len(result.Items))
	log.Info("search completed", "query", query, "mode", mode, "returned", len(result.Items))

	h.writeJSON(w, http.StatusOK, result)
}

// execute routes to the orchestrator (live) or executor (indexed) path,
// transparently through the response cache when one is configured.
func (h *Handler) execute(ctx context.Context, mode, query string, topN int) (searchtypes.SearchResult, error) {
	compute := func() (searchtypes.SearchResult, error) {
		_, execSpan := tracing.StartChildSpan(ctx, "execute_query")
		defer execSpan.End()
		switch mode {
		case modeIndexed:
			if h.executor == nil {
				return searchtypes.SearchResult{}, apperrors.New(apperrors.ErrIndexClosed, http.StatusServiceUnavailable, "indexed search is not enabled")
			}
			return h.executor.Execute(ctx, query, topN, ""), nil
		default:
			if h.orchestrator == nil {
				return searchtypes.SearchResult{}, apperrors.New(apperrors.ErrInternal, http.StatusServiceUnavailable, "live search is not enabled")
			}
			return h.orchestrator.Search(ctx, query, topN)
		}
	}

	if h.cache == nil {
		return compute()
	}
	result, hit, err := h.cache.GetOrCompute(ctx, mode, topN, query, compute)
	if h.metrics != nil {
		if hit {
			h.metrics.CacheHitsTotal.Inc()
		} else {
			h.metrics.CacheMissesTotal.Inc()
		}
	}
	return result, err
}

// SearchStream handles GET /api/v1/search/stream?q=&topN=, live mode only.
func (h *Handler) SearchStream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	if h.orchestrator == nil {
		h.writeError(w, http.StatusServiceUnavailable, "live search is not enabled")
		return
	}

	query := r.URL.Query().Get("q")
	topN, ok := h.resolveTopN(w, r)
	if !ok {
		return
	}
	if query == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	err := h.orchestrator.SearchStream(ctx, query, topN, func(event searchtypes.StreamedSearchEvent) error {
		data, marshalErr := json.Marshal(event.Result)
		if marshalErr != nil {
			return marshalErr
		}
		if _, writeErr := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Phase, data); writeErr != nil {
			return writeErr
		}
		flusher.Flush()
		return nil
	})
	if err != nil {
		log.Error("search stream failed", "query", query, "error", err)
	}
}

// Ingest handles POST /api/v1/index, feeding the process-lifetime indexed
// search engine (C8).
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	if h.engine == nil {
		h.writeError(w, http.StatusServiceUnavailable, "indexed-search ingestion is not enabled")
		return
	}

	var req struct {
		ID          string              `json:"id"`
		Title       string              `json:"title"`
		URL         string              `json:"url"`
		SourcePath  string              `json:"sourcePath"`
		ContentType index.ContentType   `json:"contentType"`
		Content     string              `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Content == "" {
		h.writeError(w, http.StatusBadRequest, "content is required")
		return
	}
	if req.ContentType == "" {
		req.ContentType = index.ContentTypeHTML
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	derivedTitle, text, err := ingest.PlainText(req.ContentType, req.Content)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "could not process document content")
		return
	}
	title := req.Title
	if title == "" {
		title = derivedTitle
	}

	doc := index.Document{
		ID:            req.ID,
		Title:         title,
		URL:           req.URL,
		SourcePath:    req.SourcePath,
		ContentType:   req.ContentType,
		LastIndexedAt: time.Now().UTC(),
	}
	h.engine.IndexDocument(doc, text)
	if h.metrics != nil {
		h.metrics.DocsIndexedTotal.Inc()
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"id": req.ID, "status": "indexed"})
}

// resolveTopN parses and clamps the topN query parameter, writing a 400
// response and returning ok=false on a malformed value.
func (h *Handler) resolveTopN(w http.ResponseWriter, r *http.Request) (int, bool) {
	topN := h.defaultTopN
	if v := r.URL.Query().Get("topN"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			h.writeError(w, http.StatusBadRequest, "topN must be a positive integer")
			return 0, false
		}
		topN = parsed
	}
	if topN > h.maxTopN {
		topN = h.maxTopN
	}
	return topN, true
}

// recordSearchMetrics updates Prometheus counters and histograms for a
// completed search.
func (h *Handler) recordSearchMetrics(outcome, mode string, resultCount int, duration time.Duration) {
	if h.metrics == nil {
		return
	}
	h.metrics.SearchQueriesTotal.WithLabelValues(outcome).Inc()
	h.metrics.SearchLatency.WithLabelValues("total").Observe(duration.Seconds())
	h.metrics.SearchResultsCount.WithLabelValues(mode).Observe(float64(resultCount))
}

// Live handles GET /health/live: always 200 once the process is running.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready handles GET /health/ready: 200 once the handler's dependencies are
// wired (at least one of live or indexed search must be enabled).
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.orchestrator == nil && h.executor == nil {
		h.writeError(w, http.StatusServiceUnavailable, "no search backend is configured")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// CacheStats returns current cache hit/miss counts and hit rate.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

// writeJSON serialises data as JSON and writes it with the given status code.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

// writeError writes a JSON error response, following the teacher's
// {"error": message} convention.
func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
