package ingest

import (
	"strings"
	"testing"

	"github.com/liber-scholasticum/live-search/internal/indexer/index"
)

func TestPlainTextHTML(t *testing.T) {
	_, text, err := PlainText(index.ContentTypeHTML, "<html><title>T</title><body><p>Natural law in Aquinas</p></body></html>")
	if err != nil {
		t.Fatalf("PlainText: %v", err)
	}
	if !strings.Contains(text, "Natural law in Aquinas") {
		t.Errorf("text = %q, want it to contain the body text", text)
	}
}

func TestPlainTextMarkdownSanitizesEmbeddedHTML(t *testing.T) {
	_, text, err := PlainText(index.ContentTypeMarkdown, "# Title\n\nSome <script>alert('x')</script> text about grace.")
	if err != nil {
		t.Fatalf("PlainText: %v", err)
	}
	if strings.Contains(text, "alert") || strings.Contains(text, "script") {
		t.Errorf("text = %q, embedded script should have been stripped", text)
	}
	if !strings.Contains(text, "grace") {
		t.Errorf("text = %q, want it to still contain the surrounding prose", text)
	}
}

func TestPlainTextPDFStubNeverErrors(t *testing.T) {
	raw := "%PDF-1.4\n\x00\x01\x02binary junk\xff\xfeSome Extracted Words Here\x00\x01"
	_, text, err := PlainText(index.ContentTypePDF, raw)
	if err != nil {
		t.Fatalf("PlainText: %v", err)
	}
	if !strings.Contains(text, "Some Extracted Words Here") {
		t.Errorf("text = %q, want it to recover the printable run", text)
	}
}
