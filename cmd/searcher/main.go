// Command searcher starts the live-search service.
//
// It assembles the discovery scraper, per-page fetcher, optional robots.txt
// checker, live-search orchestrator, process-lifetime indexed-search engine,
// response cache, and Prometheus metrics, then exposes an HTTP API for live
// and indexed search (including an SSE streaming endpoint), document
// ingestion, cache introspection, and health checks.
//
// Usage:
//
//	go run ./cmd/searcher [-config configs/development.yaml]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/liber-scholasticum/live-search/internal/discovery"
	"github.com/liber-scholasticum/live-search/internal/fetch"
	"github.com/liber-scholasticum/live-search/internal/indexer"
	"github.com/liber-scholasticum/live-search/internal/orchestrator"
	"github.com/liber-scholasticum/live-search/internal/robots"
	"github.com/liber-scholasticum/live-search/internal/searcher/cache"
	"github.com/liber-scholasticum/live-search/internal/searcher/executor"
	"github.com/liber-scholasticum/live-search/internal/searcher/handler"
	"github.com/liber-scholasticum/live-search/pkg/config"
	"github.com/liber-scholasticum/live-search/pkg/health"
	"github.com/liber-scholasticum/live-search/pkg/httpclient"
	"github.com/liber-scholasticum/live-search/pkg/logger"
	"github.com/liber-scholasticum/live-search/pkg/metrics"
	"github.com/liber-scholasticum/live-search/pkg/middleware"
)

// searchRateLimit and searchRateWindow bound how many search requests a
// single client IP may make; neither is exposed via config since it is a
// fixed ambient safeguard rather than a tunable search-pipeline knob.
const (
	searchRateLimit  = 60
	searchRateWindow = time.Minute
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional; defaults apply when omitted)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting live-search service", "port", cfg.Server.Port)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		metricsShutdown := metrics.StartServer(cfg.Metrics.Port)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			metricsShutdown(shutdownCtx)
		}()
		slog.Info("prometheus metrics enabled", "port", cfg.Metrics.Port)
	}

	httpClient := httpclient.New(cfg.Discovery.UserAgent)
	scraper := discovery.New(httpClient)
	fetcher := fetch.New(httpClient)

	var robotsChecker *robots.Checker
	if cfg.Robots.Enabled {
		robotsChecker = robots.NewChecker(httpClient, cfg.Discovery.UserAgent)
		slog.Info("robots.txt enforcement enabled", "timeout", cfg.Robots.Timeout)
	}

	orch := orchestrator.New(scraper, fetcher, robotsChecker, m, orchestrator.Config{
		MaxDiscoveryResults: cfg.Discovery.MaxResults,
		MaxParallelFetches:  cfg.Fetch.MaxParallel,
		PerPageTimeout:      cfg.Fetch.PerPageTimeout,
		DiscoveryTimeout:    cfg.Discovery.Timeout,
	})
	slog.Info("live-search orchestrator ready",
		"maxDiscoveryResults", cfg.Discovery.MaxResults,
		"maxParallelFetches", cfg.Fetch.MaxParallel,
	)

	engine, err := indexer.NewEngine(cfg.Indexer)
	if err != nil {
		slog.Error("failed to create indexed-search engine", "error", err)
		os.Exit(1)
	}
	defer engine.Close()
	slog.Info("indexed-search engine ready",
		"dataDir", cfg.Indexer.DataDir,
		"persistence", cfg.Indexer.PersistenceEnabled,
		"docs", engine.Index().DocumentCount(),
	)
	exec := executor.New(engine.Index())

	var queryCache *cache.QueryCache
	if cfg.Cache.TTL > 0 {
		queryCache = cache.New(cfg.Cache.TTL, cfg.Cache.SweepInterval)
		defer queryCache.Close()
		slog.Info("response cache enabled", "ttl", cfg.Cache.TTL, "sweepInterval", cfg.Cache.SweepInterval)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine.StartFlushLoop(ctx)

	checker := health.NewChecker()
	checker.Register("live_search", func(ctx context.Context) health.ComponentHealth {
		return health.ComponentHealth{Status: health.StatusUp}
	})
	checker.Register("indexed_search", func(ctx context.Context) health.ComponentHealth {
		return health.ComponentHealth{Status: health.StatusUp, Message: fmt.Sprintf("%d documents", engine.Index().DocumentCount())}
	})
	checker.Register("response_cache", func(ctx context.Context) health.ComponentHealth {
		if queryCache == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	h := handler.New(orch, exec, engine, queryCache, m, cfg.Search.DefaultTopN, cfg.Search.MaxTopN)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/search/stream", h.SearchStream)
	mux.HandleFunc("POST /api/v1/index", h.Ingest)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	limiter := middleware.New(searchRateWindow)
	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = middleware.RateLimit(limiter, searchRateLimit)(chain)
	chain = middleware.CORS(middleware.DefaultCORSConfig())(chain)
	if m != nil {
		chain = middleware.Metrics(m)(chain)
	}
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("live-search service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("live-search service stopped")
}
