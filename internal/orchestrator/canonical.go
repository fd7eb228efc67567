package orchestrator

import (
	"net/url"
	"strings"
)

// canonicalize reduces rawURL to a comparison key for dedup: forced https,
// leading "www." stripped, trailing "/" and any fragment dropped, path and
// query preserved, and the whole key lowercased. Malformed URLs canonicalize
// to their lowercased, trimmed input so they still participate in dedup
// rather than panicking or being silently dropped.
func canonicalize(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(rawURL))
	}
	host := strings.ToLower(parsed.Host)
	host = strings.TrimPrefix(host, "www.")
	path := strings.TrimSuffix(parsed.Path, "/")

	var b strings.Builder
	b.WriteString("https://")
	b.WriteString(host)
	b.WriteString(path)
	if parsed.RawQuery != "" {
		b.WriteString("?")
		b.WriteString(parsed.RawQuery)
	}
	return strings.ToLower(b.String())
}

// hostOf returns the lowercased host of rawURL with any "www." prefix
// stripped, or "" if rawURL does not parse.
func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(parsed.Host), "www.")
}
