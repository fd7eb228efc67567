// Package indexer wraps the process-lifetime index.Index used by the
// indexed (non-live) search path (C8) with optional on-disk persistence, so
// a restarted process can warm-start instead of requiring full
// reingestion.
package indexer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/liber-scholasticum/live-search/internal/indexer/index"
	"github.com/liber-scholasticum/live-search/internal/indexer/segment"
	"github.com/liber-scholasticum/live-search/pkg/config"
)

// manifestFile holds the document metadata and content the .spdx segment
// format itself has no room for (it stores only term->postings). Engine
// replays this manifest through index.Index.AddDocument on warm start,
// which regenerates postings deterministically from content; the flushed
// .spdx segment is kept alongside it as a term-dictionary artifact in the
// teacher's own on-disk shape, even though warm start does not read it
// back.
const manifestFile = "manifest.json"

type docRecord struct {
	Document index.Document `json:"document"`
	Content  string         `json:"content"`
}

// Engine owns the process-lifetime Index and, when persistence is enabled,
// periodically flushes it to disk and warm-starts from a prior flush on
// construction.
type Engine struct {
	idx    *index.Index
	writer *segment.Writer
	cfg    config.IndexerConfig
	logger *slog.Logger
}

// NewEngine constructs an Engine. If cfg.PersistenceEnabled, it attempts to
// warm-start from a prior manifest in cfg.DataDir before returning.
func NewEngine(cfg config.IndexerConfig) (*Engine, error) {
	e := &Engine{
		idx:    index.NewIndex(),
		writer: segment.NewWriter(cfg.DataDir),
		cfg:    cfg,
		logger: slog.Default().With("component", "indexer"),
	}
	if cfg.PersistenceEnabled {
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating index data directory: %w", err)
		}
		if err := e.loadManifest(); err != nil {
			return nil, fmt.Errorf("warm-starting from manifest: %w", err)
		}
	}
	return e, nil
}

// Index returns the underlying index.Index for direct use by
// internal/searcher/executor.
func (e *Engine) Index() *index.Index {
	return e.idx
}

// IndexDocument ingests a single document into the live index.
func (e *Engine) IndexDocument(doc index.Document, content string) {
	e.idx.AddDocument(doc, content)
	e.logger.Debug("document indexed",
		"doc_id", doc.ID,
		"content_type", doc.ContentType,
	)
}

// Flush writes the current index state to disk: a manifest of document
// metadata and content (for warm start) and a .spdx segment snapshot of the
// term dictionary (for parity with the teacher's on-disk format). It does
// not reset the live index; C8's index is never transient.
func (e *Engine) Flush() error {
	if !e.cfg.PersistenceEnabled {
		return nil
	}
	ids := e.idx.GetAllDocumentIds()
	if len(ids) == 0 {
		return nil
	}

	records := make(map[string]docRecord, len(ids))
	for _, id := range ids {
		doc, ok := e.idx.GetDocument(id)
		if !ok {
			continue
		}
		content, _ := e.idx.GetDocumentContent(id)
		records[id] = docRecord{Document: doc, Content: content}
	}
	if err := e.writeManifest(records); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}

	snapshot := e.idx.Snapshot()
	if len(snapshot) > 0 {
		segmentName, err := e.writer.Write(snapshot)
		if err != nil {
			return fmt.Errorf("writing segment: %w", err)
		}
		e.logger.Info("index flushed",
			"segment", segmentName,
			"docs", len(records),
			"terms", len(snapshot),
		)
	}
	return nil
}

func (e *Engine) writeManifest(records map[string]docRecord) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	path := filepath.Join(e.cfg.DataDir, manifestFile)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("writing temp manifest: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming manifest: %w", err)
	}
	return nil
}

func (e *Engine) loadManifest() error {
	path := filepath.Join(e.cfg.DataDir, manifestFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading manifest: %w", err)
	}
	var records map[string]docRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("parsing manifest: %w", err)
	}
	for _, rec := range records {
		e.idx.AddDocument(rec.Document, rec.Content)
	}
	e.logger.Info("warm-started from manifest", "docs", len(records))
	return nil
}

// StartFlushLoop periodically flushes the index until ctx is cancelled, at
// which point it performs one final flush before returning.
func (e *Engine) StartFlushLoop(ctx context.Context) {
	if !e.cfg.PersistenceEnabled {
		return
	}
	ticker := time.NewTicker(e.cfg.FlushInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				e.logger.Info("flush loop stopping, performing final flush")
				if err := e.Flush(); err != nil {
					e.logger.Error("final flush failed", "error", err)
				}
				return
			case <-ticker.C:
				if err := e.Flush(); err != nil {
					e.logger.Error("periodic flush failed", "error", err)
				}
			}
		}
	}()
}

// Close performs a final flush.
func (e *Engine) Close() error {
	return e.Flush()
}
