package orchestrator

import "strings"

// scholarlyDomains receives a 1.5x score boost at ranking time.
var scholarlyDomains = map[string]struct{}{
	"plato.stanford.edu":    {},
	"iep.utm.edu":           {},
	"jstor.org":             {},
	"academia.edu":          {},
	"philpapers.org":        {},
	"scholar.google.com":    {},
	"arxiv.org":             {},
	"doi.org":               {},
	"newadvent.org":         {},
	"corpusthomisticum.org": {},
	"dhspriory.org":         {},
	"aquinas.cc":            {},
	"ccel.org":              {},
	"fordham.edu":           {},
	"orthodoxwiki.org":      {},
	"carm.org":              {},
	"monergism.com":         {},
	"theopedia.com":         {},
	"britannica.com":        {},
	"en.wikipedia.org":      {},
}

// scholarlyBoost is the multiplier applied to a document scored from a
// scholarly domain.
const scholarlyBoost = 1.5

// isScholarly reports whether host matches a scholarly domain exactly or as
// a suffix ("." + domain).
func isScholarly(host string) bool {
	host = strings.ToLower(host)
	if _, ok := scholarlyDomains[host]; ok {
		return true
	}
	for domain := range scholarlyDomains {
		if strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// scholarlyBiasTokens are the query tokens whose presence suppresses the
// automatic " scholarly theology philosophy" suffix.
var scholarlyBiasTokens = map[string]struct{}{
	"scholar":  {},
	"academic": {},
	"journal":  {},
	"paper":    {},
}

// augmentQuery appends the scholarly-bias suffix unless query already
// mentions a bias token or uses a site: operator.
func augmentQuery(query string) string {
	lower := strings.ToLower(query)
	if strings.Contains(lower, "site:") {
		return query
	}
	for _, word := range strings.Fields(lower) {
		if _, ok := scholarlyBiasTokens[word]; ok {
			return query
		}
	}
	return query + " scholarly theology philosophy"
}
