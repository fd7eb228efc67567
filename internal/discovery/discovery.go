// Package discovery scrapes a third-party HTML search endpoint (DuckDuckGo's
// HTML-only frontend) for candidate result URLs, titles, and snippets. A
// failure on the first page is returned as an error; a failure on the
// second page ends pagination and the first page's results are returned.
package discovery

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/liber-scholasticum/live-search/pkg/httpclient"
)

const (
	endpoint  = "https://html.duckduckgo.com/html/"
	userAgent = httpclient.DefaultUserAgent
)

// Result is one discovered candidate, in result order.
type Result struct {
	URL     string
	Title   string
	Snippet string
}

// Scraper queries the discovery endpoint over the shared process-wide HTTP
// client.
type Scraper struct {
	client *httpclient.Client
}

// New constructs a Scraper bound to client.
func New(client *httpclient.Client) *Scraper {
	return &Scraper{client: client}
}

// Search returns up to maxResults deduplicated candidates for query, across
// at most two pages: page 1 is a GET with the encoded query, page 2 (only
// fetched if page 1 yields fewer than maxResults and exposes a "Next" form)
// is a POST carrying that form's hidden fields. A transport or parse
// failure on page 1 returns nil results and a non-nil error; a failure on
// page 2 stops pagination and returns the page-1 results with a nil error.
func (s *Scraper) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	seen := make(map[string]struct{})
	var results []Result

	page1Body, err := s.get(ctx, endpoint+"?q="+url.QueryEscape(query))
	if err != nil {
		return nil, fmt.Errorf("discovery page 1: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page1Body))
	if err != nil {
		return nil, fmt.Errorf("discovery page 1 parse: %w", err)
	}

	results = appendResults(results, seen, extractResults(doc))
	if len(results) >= maxResults {
		return results[:maxResults], nil
	}

	nextForm, ok := extractNextForm(doc)
	if !ok {
		return results, nil
	}

	page2Body, err := s.post(ctx, endpoint, nextForm)
	if err != nil {
		return results, nil
	}
	doc2, err := goquery.NewDocumentFromReader(strings.NewReader(page2Body))
	if err != nil {
		return results, nil
	}

	results = appendResults(results, seen, extractResults(doc2))
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}

func appendResults(results []Result, seen map[string]struct{}, fresh []Result) []Result {
	for _, r := range fresh {
		if _, dup := seen[r.URL]; dup {
			continue
		}
		seen[r.URL] = struct{}{}
		results = append(results, r)
	}
	return results
}

// extractResults walks every result node, preferring the result__body /
// result__a / result__snippet class contract and falling back to any
// result-ish class and any anchor when the primary selectors miss.
func extractResults(doc *goquery.Document) []Result {
	nodes := doc.Find("div[class*=result__body]")
	if nodes.Length() == 0 {
		nodes = doc.Find("[class*=result]")
	}

	var out []Result
	nodes.Each(func(_ int, s *goquery.Selection) {
		link := s.Find("a[class*=result__a]").First()
		if link.Length() == 0 {
			link = s.Find("a[href]").First()
		}
		href, exists := link.Attr("href")
		title := strings.TrimSpace(link.Text())
		if !exists || title == "" {
			return
		}

		dest, ok := unwrapURL(href)
		if !ok {
			return
		}

		snippetNode := s.Find("[class*=result__snippet]").First()
		snippet := strings.TrimSpace(snippetNode.Text())

		out = append(out, Result{
			URL:     dest,
			Title:   html.UnescapeString(title),
			Snippet: html.UnescapeString(snippet),
		})
	})
	return out
}

// unwrapURL extracts the real destination from the uddg redirect parameter,
// accepting only http/https results.
func unwrapURL(href string) (string, bool) {
	parsed, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	dest := href
	if uddg := parsed.Query().Get("uddg"); uddg != "" {
		dest = uddg
	}
	destURL, err := url.Parse(dest)
	if err != nil {
		return "", false
	}
	if destURL.Scheme != "http" && destURL.Scheme != "https" {
		return "", false
	}
	return destURL.String(), true
}

// extractNextForm finds the "Next" pagination form and returns its hidden
// input fields as a ready-to-POST url.Values.
func extractNextForm(doc *goquery.Document) (url.Values, bool) {
	var form url.Values
	var found bool
	doc.Find("form").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		isNext := strings.Contains(strings.ToLower(s.Text()), "next")
		s.Find("input[type=submit]").Each(func(_ int, input *goquery.Selection) {
			if val, _ := input.Attr("value"); strings.Contains(strings.ToLower(val), "next") {
				isNext = true
			}
		})
		if !isNext {
			return true
		}
		values := url.Values{}
		s.Find("input").Each(func(_ int, input *goquery.Selection) {
			name, ok := input.Attr("name")
			if !ok || name == "" {
				return
			}
			val, _ := input.Attr("value")
			values.Set(name, val)
		})
		if len(values) == 0 {
			return true
		}
		form = values
		found = true
		return false
	})
	return form, found
}

func (s *Scraper) get(ctx context.Context, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", err
	}
	setHeaders(req)
	return s.do(req)
}

func (s *Scraper) post(ctx context.Context, target string, form url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	setHeaders(req)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(req)
}

func setHeaders(req *http.Request) {
	req.Header.Set("Accept", "text/html")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
}

func (s *Scraper) do(req *http.Request) (string, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("discovery endpoint status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}
