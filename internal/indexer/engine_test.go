package indexer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/liber-scholasticum/live-search/internal/indexer/index"
	"github.com/liber-scholasticum/live-search/pkg/config"
)

func TestEngineFlushIsNoopWhenPersistenceDisabled(t *testing.T) {
	cfg := config.IndexerConfig{DataDir: t.TempDir(), PersistenceEnabled: false}
	e, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	e.IndexDocument(index.Document{ID: "d1", Title: "T", URL: "u1"}, "some content about natural law")
	if err := e.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.DataDir, manifestFile)); err == nil {
		t.Fatal("manifest should not be written when persistence is disabled")
	}
}

func TestEngineWarmStartRoundTrip(t *testing.T) {
	dataDir := t.TempDir()
	cfg := config.IndexerConfig{DataDir: dataDir, PersistenceEnabled: true}

	e1, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	e1.IndexDocument(index.Document{ID: "d1", Title: "Natural Law", URL: "https://example.com/d1", ContentType: index.ContentTypeHTML}, "natural law and divine law in Aquinas")
	if err := e1.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	e2, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine (warm start): %v", err)
	}
	doc, ok := e2.Index().GetDocument("d1")
	if !ok {
		t.Fatal("expected d1 to be warm-started")
	}
	if doc.Title != "Natural Law" {
		t.Errorf("Title = %q, want %q", doc.Title, "Natural Law")
	}
	if _, ok := e2.Index().GetPosting("natur", "d1"); !ok {
		t.Error("expected postings for 'natur' (stem of 'natural') to be reconstructed on warm start")
	}
}
