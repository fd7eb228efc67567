// Package ingest converts a document's raw source bytes into the plain text
// the indexed-search engine tokenizes, dispatching on content type. HTML goes
// straight to the htmlx extractor; Markdown is rendered with goldmark and
// sanitized with bluemonday before the same extractor; PDF has no parsing library anywhere in the pack and falls back to a
// minimal stdlib byte-scan.
package ingest

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"

	"github.com/liber-scholasticum/live-search/internal/indexer/index"
	"github.com/liber-scholasticum/live-search/internal/retrieval/htmlx"
)

var markdownRenderer = goldmark.New()
var sanitizePolicy = bluemonday.UGCPolicy()

// PlainText extracts title and searchable plain text from raw source bytes
// according to contentType. The returned title is empty when none could be
// derived from the content itself; callers should fall back to a
// caller-supplied title in that case.
func PlainText(contentType index.ContentType, raw string) (title, text string, err error) {
	switch contentType {
	case index.ContentTypeMarkdown:
		return markdownToText(raw)
	case index.ContentTypePDF:
		return "", pdfToText(raw), nil
	default:
		return htmlToText(raw)
	}
}

func htmlToText(raw string) (string, string, error) {
	extracted, err := htmlx.Extract(strings.NewReader(raw), "")
	if err != nil {
		return "", "", err
	}
	return extracted.Title, extracted.Text, nil
}

// markdownToText renders Markdown to HTML via goldmark, sanitizes any
// embedded raw HTML via bluemonday before it ever reaches the tokenizer,
// then reuses the C2 HTML extractor for title/text.
func markdownToText(raw string) (string, string, error) {
	var buf bytes.Buffer
	if err := markdownRenderer.Convert([]byte(raw), &buf); err != nil {
		return "", "", err
	}
	sanitized := sanitizePolicy.SanitizeBytes(buf.Bytes())
	return htmlToText(string(sanitized))
}

// pdfToText does not parse the PDF object model; it scans for runs of
// printable UTF-8 text among the raw bytes, which recovers uncompressed
// text streams in simple PDFs and degrades to nothing on binary/compressed
// content without ever panicking.
func pdfToText(raw string) string {
	var b strings.Builder
	data := []byte(raw)
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size <= 1 {
			data = data[1:]
			if b.Len() > 0 && b.String()[b.Len()-1] != ' ' {
				b.WriteByte(' ')
			}
			continue
		}
		if isPrintable(r) {
			b.WriteRune(r)
		} else if b.Len() > 0 && b.String()[b.Len()-1] != ' ' {
			b.WriteByte(' ')
		}
		data = data[size:]
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func isPrintable(r rune) bool {
	return r == ' ' || (r >= 0x21 && r < utf8.RuneSelf) || r > utf8.RuneSelf
}
