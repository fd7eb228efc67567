// Package config loads and validates application configuration from YAML
// files with environment-variable overrides. It provides typed structs for
// every subsystem: the HTTP server, the live-search discovery/fetch
// pipeline, the indexed-search engine, the response cache, and the ambient
// logging/tracing/metrics stack.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Fetch     FetchConfig     `yaml:"fetch"`
	Robots    RobotsConfig    `yaml:"robots"`
	Search    SearchConfig    `yaml:"search"`
	Indexer   IndexerConfig   `yaml:"indexer"`
	Cache     CacheConfig     `yaml:"cache"`
	Logging   LoggingConfig   `yaml:"logging"`
	Tracing   TracingConfig   `yaml:"tracing"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// DiscoveryConfig controls the live-search result discovery stage (C3).
type DiscoveryConfig struct {
	MaxResults int           `yaml:"maxResults"`
	Timeout    time.Duration `yaml:"timeout"`
	UserAgent  string        `yaml:"userAgent"`
}

// FetchConfig controls the bounded-parallel per-page fetch stage.
type FetchConfig struct {
	MaxParallel    int           `yaml:"maxParallel"`
	PerPageTimeout time.Duration `yaml:"perPageTimeout"`
}

// RobotsConfig controls the optional robots.txt checker that may front the
// fetch client.
type RobotsConfig struct {
	Enabled bool          `yaml:"enabled"`
	Timeout time.Duration `yaml:"timeout"`
}

// IndexerConfig controls the process-lifetime indexed-search engine (C8)
// and its optional on-disk segment persistence.
type IndexerConfig struct {
	DataDir            string        `yaml:"dataDir"`
	PersistenceEnabled bool          `yaml:"persistenceEnabled"`
	FlushInterval      time.Duration `yaml:"flushInterval"`
}

// SearchConfig controls query execution defaults and limits.
type SearchConfig struct {
	DefaultTopN int `yaml:"defaultTopN"`
	MaxTopN     int `yaml:"maxTopN"`
}

// CacheConfig controls the bounded-TTL response cache (C10).
type CacheConfig struct {
	TTL           time.Duration `yaml:"ttl"`
	SweepInterval time.Duration `yaml:"sweepInterval"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TracingConfig controls the lightweight span-based tracer.
type TracingConfig struct {
	Enabled    bool    `yaml:"enabled"`
	Endpoint   string  `yaml:"endpoint"`
	SampleRate float64 `yaml:"sampleRate"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. It returns a Config populated with sensible defaults for any
// missing values.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// defaultConfig returns a Config with production-ready defaults for local
// development.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Discovery: DiscoveryConfig{
			MaxResults: 50,
			Timeout:    15 * time.Second,
			UserAgent:  "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
		},
		Fetch: FetchConfig{
			MaxParallel:    8,
			PerPageTimeout: 10 * time.Second,
		},
		Robots: RobotsConfig{
			Enabled: false,
			Timeout: 3 * time.Second,
		},
		Search: SearchConfig{
			DefaultTopN: 10,
			MaxTopN:     50,
		},
		Indexer: IndexerConfig{
			DataDir:            "./data/index",
			PersistenceEnabled: false,
			FlushInterval:      5 * time.Minute,
		},
		Cache: CacheConfig{
			TTL:           5 * time.Minute,
			SweepInterval: 1 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
	}
}

// applyEnvOverrides reads LIBER_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LIBER_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("LIBER_DISCOVERY_MAX_RESULTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Discovery.MaxResults = n
		}
	}
	if v := os.Getenv("LIBER_DISCOVERY_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Discovery.Timeout = d
		}
	}
	if v := os.Getenv("LIBER_FETCH_MAX_PARALLEL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Fetch.MaxParallel = n
		}
	}
	if v := os.Getenv("LIBER_FETCH_PER_PAGE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Fetch.PerPageTimeout = d
		}
	}
	if v := os.Getenv("LIBER_ROBOTS_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Robots.Enabled = b
		}
	}
	if v := os.Getenv("LIBER_SEARCH_DEFAULT_TOPN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Search.DefaultTopN = n
		}
	}
	if v := os.Getenv("LIBER_SEARCH_MAX_TOPN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Search.MaxTopN = n
		}
	}
	if v := os.Getenv("LIBER_INDEXER_DATA_DIR"); v != "" {
		cfg.Indexer.DataDir = v
	}
	if v := os.Getenv("LIBER_INDEXER_PERSISTENCE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Indexer.PersistenceEnabled = b
		}
	}
	if v := os.Getenv("LIBER_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Cache.TTL = d
		}
	}
	if v := os.Getenv("LIBER_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LIBER_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("LIBER_METRICS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Metrics.Port = port
		}
	}
}
