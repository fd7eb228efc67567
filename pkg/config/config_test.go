package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Cache.TTL != 5*time.Minute {
		t.Errorf("Cache.TTL = %v, want 5m", cfg.Cache.TTL)
	}
}

func TestLoadEnvOverridePrecedence(t *testing.T) {
	t.Setenv("LIBER_SERVER_PORT", "9999")
	t.Setenv("LIBER_SEARCH_DEFAULT_TOPN", "25")
	t.Setenv("LIBER_ROBOTS_ENABLED", "true")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999 (env override)", cfg.Server.Port)
	}
	if cfg.Search.DefaultTopN != 25 {
		t.Errorf("Search.DefaultTopN = %d, want 25", cfg.Search.DefaultTopN)
	}
	if !cfg.Robots.Enabled {
		t.Errorf("Robots.Enabled = false, want true")
	}
}

func TestLoadInvalidEnvValueIsIgnored(t *testing.T) {
	t.Setenv("LIBER_SERVER_PORT", "not-a-number")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want default 8080 when env value is malformed", cfg.Server.Port)
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	path := os.TempDir() + "/liber-search-config-does-not-exist.yaml"
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error loading a nonexistent config file")
	}
}
