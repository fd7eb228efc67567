// Package fetch retrieves a single candidate page's HTML over the shared
// process-wide HTTP client and extracts its title/text via internal/retrieval/htmlx.
// Fetch has no error return: every failure, including context cancellation
// or timeout, non-2xx statuses, non-HTML content types, and extraction
// failures, is reported as a Page with Err set, so the orchestrator can
// record a failed-page entry and move on to the next candidate.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/liber-scholasticum/live-search/internal/retrieval/htmlx"
	"github.com/liber-scholasticum/live-search/pkg/httpclient"
)

// Page is the result of fetching and extracting a single URL.
type Page struct {
	URL   string
	Title string
	Text  string
	Err   error
}

// Fetcher fetches pages over a shared httpclient.Client.
type Fetcher struct {
	client *httpclient.Client
}

// New constructs a Fetcher bound to client.
func New(client *httpclient.Client) *Fetcher {
	return &Fetcher{client: client}
}

// Fetch retrieves rawURL and extracts its title/text. ctx governs the whole
// operation — callers derive a per-page-timeout context via
// pkg/resilience.WithTimeout before calling this.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) Page {
	page := Page{URL: rawURL}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		page.Err = fmt.Errorf("build request: %w", err)
		return page
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		page.Err = fmt.Errorf("fetch: %w", err)
		return page
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		page.Err = fmt.Errorf("fetch: status %d", resp.StatusCode)
		return page
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.Contains(contentType, "html") && !strings.HasPrefix(contentType, "text/") {
		page.Err = fmt.Errorf("fetch: unsupported content type %q", contentType)
		return page
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		page.Err = fmt.Errorf("read body: %w", err)
		return page
	}

	extracted, err := htmlx.Extract(strings.NewReader(string(body)), rawURL)
	if err != nil {
		page.Err = fmt.Errorf("extract: %w", err)
		return page
	}
	if strings.TrimSpace(extracted.Text) == "" {
		page.Err = fmt.Errorf("extract: no text content")
		return page
	}

	page.Title = extracted.Title
	page.Text = extracted.Text
	return page
}
