// Package httpclient provides the single process-wide HTTP client used by
// both the discovery scraper and the per-page fetcher. It is immutable
// after initialization, safe for concurrent use, and carries the
// process-wide User-Agent header; each caller sets its own Accept header
// (§5's "global mutable state"
// ambient note: this is one of only two such globals, the other being the
// response cache).
package httpclient

import (
	"net/http"
	"time"
)

// DefaultUserAgent mimics a common desktop browser, per spec §6.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Client wraps an *http.Client configured with the shared transport,
// redirect policy, and default timeout the spec mandates; callers needing
// a shorter deadline (discovery, per-page fetch) derive one via
// context.WithTimeout rather than constructing a second client.
type Client struct {
	http      *http.Client
	userAgent string
}

// New creates the shared client with up to 5 redirects, automatic
// decompression (the stdlib transport does this by default as long as the
// caller doesn't set an explicit Accept-Encoding), and a 15s default
// timeout (the spec's discovery/fetch default; callers pass a shorter
// context deadline for the per-page 10s budget).
func New(userAgent string) *Client {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 16,
		IdleConnTimeout:     90 * time.Second,
	}
	return &Client{
		userAgent: userAgent,
		http: &http.Client{
			Transport: transport,
			Timeout:   15 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
	}
}

// UserAgent returns the process-wide User-Agent string.
func (c *Client) UserAgent() string {
	return c.userAgent
}

// Do executes req after stamping the shared User-Agent header, unless the
// caller already set one.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return c.http.Do(req)
}
