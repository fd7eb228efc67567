package executor

import (
	"context"
	"testing"

	"github.com/liber-scholasticum/live-search/internal/indexer/index"
)

func newTestIndex() *index.Index {
	idx := index.NewIndex()
	idx.AddDocument(index.Document{ID: "d1", Title: "Natural Law in Aquinas", URL: "https://example.com/d1", ContentType: index.ContentTypeHTML}, "Aquinas wrote extensively about natural law and its relation to divine law.")
	idx.AddDocument(index.Document{ID: "d2", Title: "Augustine on Grace", URL: "https://example.com/d2", ContentType: index.ContentTypeMarkdown}, "Augustine's theology of grace shaped the western tradition of natural theology.")
	idx.AddDocument(index.Document{ID: "d3", Title: "Unrelated", URL: "https://example.com/d3", ContentType: index.ContentTypeHTML}, "This document is about something else entirely.")
	return idx
}

func TestExecuteRequiredTermsAND(t *testing.T) {
	idx := newTestIndex()
	e := New(idx)
	result := e.Execute(context.Background(), "natural law", 10, "")
	if len(result.Items) != 1 || result.Items[0].URL != "https://example.com/d1" {
		t.Fatalf("expected only d1 to match AND of 'natural' and 'law', got %+v", result.Items)
	}
}

func TestExecutePhraseFilter(t *testing.T) {
	idx := index.NewIndex()
	idx.AddDocument(index.Document{ID: "p1", Title: "P1", URL: "u1"}, "the quick brown fox jumps")
	idx.AddDocument(index.Document{ID: "p2", Title: "P2", URL: "u2"}, "the fox is quick and brown but not in that order")
	e := New(idx)
	result := e.Execute(context.Background(), `"quick brown fox"`, 10, "")
	if len(result.Items) != 1 || result.Items[0].URL != "u1" {
		t.Fatalf("expected only p1 to match the phrase, got %+v", result.Items)
	}
}

func TestExecuteContentTypeFilter(t *testing.T) {
	idx := newTestIndex()
	e := New(idx)
	result := e.Execute(context.Background(), "natural", 10, index.ContentTypeMarkdown)
	if len(result.Items) != 1 || result.Items[0].URL != "https://example.com/d2" {
		t.Fatalf("expected only the markdown doc, got %+v", result.Items)
	}
}

func TestExecuteEmptyQuery(t *testing.T) {
	idx := newTestIndex()
	e := New(idx)
	result := e.Execute(context.Background(), "", 10, "")
	if len(result.Items) != 0 {
		t.Fatalf("expected no items for an empty query, got %+v", result.Items)
	}
}

func TestExecuteOptionalTermsOR(t *testing.T) {
	idx := newTestIndex()
	e := New(idx)
	result := e.Execute(context.Background(), "OR grace OR law", 10, "")
	if len(result.Items) != 2 {
		t.Fatalf("expected d1 and d2 to match the optional terms, got %+v", result.Items)
	}
}

func TestExecuteRanksHigherScoreFirst(t *testing.T) {
	idx := index.NewIndex()
	idx.AddDocument(index.Document{ID: "a", Title: "A", URL: "ua"}, "grace grace grace appears many times in this document about grace")
	idx.AddDocument(index.Document{ID: "b", Title: "B", URL: "ub"}, "grace appears once here")
	e := New(idx)
	result := e.Execute(context.Background(), "grace", 10, "")
	if len(result.Items) != 2 {
		t.Fatalf("expected both docs to match, got %+v", result.Items)
	}
	if result.Items[0].URL != "ua" {
		t.Fatalf("expected doc with higher term frequency ranked first, got %+v", result.Items)
	}
}
