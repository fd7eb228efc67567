// Package robots parses and evaluates robots.txt directives, and provides a
// per-host caching checker that fronts the fetch stage. A checker failure
// (timeout, non-2xx, parse error) is treated as allow-all, matching the
// fail-open policy a best-effort crawler should take.
package robots

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/liber-scholasticum/live-search/pkg/httpclient"
)

// FetchTimeout bounds how long a robots.txt retrieval may take before the
// checker falls back to allow-all.
const FetchTimeout = 3 * time.Second

// RobotsData holds the directives selected for a single user-agent.
type RobotsData struct {
	Disallowed []string
	Allowed    []string
	CrawlDelay time.Duration
}

// ParseRobots reads a robots.txt document and returns the directives that
// apply to userAgent: the first section whose User-agent line matches
// userAgent (case-insensitive substring match), or the "*" section if none
// matches.
func ParseRobots(r io.Reader, userAgent string) *RobotsData {
	type section struct {
		agents     []string
		disallowed []string
		allowed    []string
		crawlDelay time.Duration
	}
	var sections []*section
	var current *section

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := splitDirective(line)
		if !ok {
			continue
		}
		switch strings.ToLower(key) {
		case "user-agent":
			if current == nil || len(current.disallowed) > 0 || len(current.allowed) > 0 || current.crawlDelay > 0 {
				current = &section{}
				sections = append(sections, current)
			}
			current.agents = append(current.agents, value)
		case "disallow":
			if current != nil && value != "" {
				current.disallowed = append(current.disallowed, value)
			}
		case "allow":
			if current != nil && value != "" {
				current.allowed = append(current.allowed, value)
			}
		case "crawl-delay":
			if current != nil {
				if secs, err := strconv.Atoi(value); err == nil {
					current.crawlDelay = time.Duration(secs) * time.Second
				}
			}
		}
	}

	var matched, wildcard *section
	for _, s := range sections {
		for _, agent := range s.agents {
			if agent == "*" && wildcard == nil {
				wildcard = s
			}
			if agent != "*" && strings.Contains(strings.ToLower(userAgent), strings.ToLower(agent)) {
				matched = s
			}
		}
	}
	chosen := matched
	if chosen == nil {
		chosen = wildcard
	}
	if chosen == nil {
		return &RobotsData{}
	}
	return &RobotsData{
		Disallowed: chosen.disallowed,
		Allowed:    chosen.allowed,
		CrawlDelay: chosen.crawlDelay,
	}
}

func splitDirective(line string) (key, value string, ok bool) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return "", "", false
	}
	return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+1:]), true
}

// IsAllowed reports whether path is permitted under data, using
// longest-match-wins over every Disallow/Allow pattern that matches path;
// an Allow wins ties against a Disallow of equal pattern length. A path
// matching nothing is allowed.
func IsAllowed(path string, data *RobotsData) bool {
	disallowLen := -1
	for _, pattern := range data.Disallowed {
		if matchRobotsPattern(path, pattern) && len(pattern) > disallowLen {
			disallowLen = len(pattern)
		}
	}
	allowLen := -1
	for _, pattern := range data.Allowed {
		if matchRobotsPattern(path, pattern) && len(pattern) > allowLen {
			allowLen = len(pattern)
		}
	}
	if allowLen >= 0 && allowLen >= disallowLen {
		return true
	}
	return disallowLen < 0
}

// matchRobotsPattern matches path against a robots.txt pattern supporting
// "*" as a wildcard and a terminal "$" anchoring the pattern to the end of
// path.
func matchRobotsPattern(path, pattern string) bool {
	anchored := strings.HasSuffix(pattern, "$")
	if anchored {
		pattern = strings.TrimSuffix(pattern, "$")
	}
	segments := strings.Split(pattern, "*")
	pos := 0
	for i, seg := range segments {
		if seg == "" {
			continue
		}
		idx := strings.Index(path[pos:], seg)
		if idx < 0 {
			return false
		}
		if i == 0 && idx != 0 {
			return false
		}
		pos += idx + len(seg)
	}
	if anchored && pos != len(path) {
		return false
	}
	return true
}

// Checker fetches and caches robots.txt per host.
type Checker struct {
	client    *httpclient.Client
	userAgent string

	mu    sync.Mutex
	cache map[string]*RobotsData
}

// NewChecker constructs a Checker bound to client, identifying itself as
// userAgent when evaluating User-agent sections.
func NewChecker(client *httpclient.Client, userAgent string) *Checker {
	return &Checker{
		client:    client,
		userAgent: userAgent,
		cache:     make(map[string]*RobotsData),
	}
}

// Allowed reports whether rawURL may be fetched. On any failure to retrieve
// or parse the host's robots.txt, it fails open (returns true).
func (c *Checker) Allowed(ctx context.Context, rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	data := c.robotsFor(ctx, parsed)
	if data == nil {
		return true
	}
	return IsAllowed(parsed.EscapedPath(), data)
}

func (c *Checker) robotsFor(ctx context.Context, target *url.URL) *RobotsData {
	host := target.Scheme + "://" + target.Host
	c.mu.Lock()
	if cached, ok := c.cache[host]; ok {
		c.mu.Unlock()
		return cached
	}
	c.mu.Unlock()

	data := c.fetchRobots(ctx, host)

	c.mu.Lock()
	c.cache[host] = data
	c.mu.Unlock()
	return data
}

func (c *Checker) fetchRobots(ctx context.Context, host string) *RobotsData {
	timeoutCtx, cancel := context.WithTimeout(ctx, FetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, host+"/robots.txt", nil)
	if err != nil {
		return nil
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil
	}
	return ParseRobots(resp.Body, c.userAgent)
}
