// Package htmlx performs a single-pass extraction of a document's title,
// visible text, and outbound links from raw HTML, built directly over
// golang.org/x/net/html's parse tree — the same tree goquery wraps, and the
// pack's only precedent for HTML content extraction.
package htmlx

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// skipElements are never descended into for visible text.
var skipElements = map[string]struct{}{
	"script": {}, "style": {}, "noscript": {}, "svg": {},
	"path": {}, "iframe": {}, "nav": {}, "footer": {}, "header": {},
}

// blockElements emit an extra space after their content so adjacent text
// nodes across block boundaries don't run together.
var blockElements = map[string]struct{}{
	"p": {}, "div": {}, "br": {}, "li": {},
	"h1": {}, "h2": {}, "h3": {}, "h4": {}, "h5": {}, "h6": {},
	"tr": {}, "blockquote": {}, "section": {}, "article": {},
}

// Extracted holds the result of a single-pass HTML parse.
type Extracted struct {
	Title string
	Text  string
	Links []string
}

// Extract parses r as HTML and returns its title, visible text, and
// resolved outbound http/https links. baseURL resolves relative hrefs and
// is used as-is when it fails to parse (relative links are then dropped).
func Extract(r io.Reader, baseURL string) (Extracted, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return Extracted{}, err
	}
	base, _ := url.Parse(baseURL)

	var title, firstH1 string
	var textBuilder strings.Builder
	var links []string
	seenLinks := make(map[string]struct{})

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			name := strings.ToLower(n.Data)
			if _, skip := skipElements[name]; skip {
				return
			}
			if name == "title" {
				if title == "" {
					title = collectText(n)
				}
				return
			}
			if name == "h1" && firstH1 == "" {
				firstH1 = collectText(n)
			}
			if name == "a" {
				if href, ok := attr(n, "href"); ok {
					if resolved, ok := resolveLink(base, href); ok {
						if _, dup := seenLinks[resolved]; !dup {
							seenLinks[resolved] = struct{}{}
							links = append(links, resolved)
						}
					}
				}
			}
		}
		if n.Type == html.TextNode {
			text := n.Data
			if strings.TrimSpace(text) != "" {
				textBuilder.WriteString(text)
				textBuilder.WriteByte(' ')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode {
			if _, isBlock := blockElements[strings.ToLower(n.Data)]; isBlock {
				textBuilder.WriteByte(' ')
			}
		}
	}
	walk(doc)

	resultTitle := title
	if resultTitle == "" {
		resultTitle = firstH1
	}

	return Extracted{
		Title: strings.TrimSpace(resultTitle),
		Text:  collapseWhitespace(textBuilder.String()),
		Links: links,
	}, nil
}

func collectText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

// resolveLink filters out non-navigable hrefs (fragments, javascript:,
// mailto:), resolves relative hrefs against base, keeps only http/https
// destinations, and drops any fragment from the result.
func resolveLink(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}
	lower := strings.ToLower(href)
	if strings.HasPrefix(lower, "javascript:") || strings.HasPrefix(lower, "mailto:") {
		return "", false
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	if base != nil {
		parsed = base.ResolveReference(parsed)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", false
	}
	parsed.Fragment = ""
	return parsed.String(), true
}

func collapseWhitespace(s string) string {
	fields := strings.Fields(s)
	return strings.TrimSpace(strings.Join(fields, " "))
}
