// Package marketplace holds the static marketplace and country tables:
// which sources exist per country, their domains and currencies, how to
// build a search URL for each, and the per-source rate limits.
package marketplace

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Source identifies one marketplace in one country.
type Source struct {
	Name     string
	Domain   string
	Currency string
}

// SearchURL builds the search-results URL for this source.
func (s Source) SearchURL(query string) string {
	q := url.QueryEscape(query)
	switch strings.ToLower(s.Name) {
	case "amazon":
		return fmt.Sprintf("https://%s/s?k=%s&ref=sr_pg_1", s.Domain, q)
	case "ebay":
		return fmt.Sprintf("https://%s/sch/i.html?_nkw=%s&_sacat=0&LH_BIN=1&_sop=15", s.Domain, q)
	case "walmart":
		return fmt.Sprintf("https://%s/search?q=%s", s.Domain, q)
	case "flipkart":
		return fmt.Sprintf("https://%s/search?q=%s&sort=price_asc", s.Domain, q)
	case "target":
		return fmt.Sprintf("https://%s/s?searchTerm=%s", s.Domain, q)
	default:
		return fmt.Sprintf("https://%s/search?q=%s", s.Domain, q)
	}
}

// RateLimit is the token-bucket configuration for one source.
type RateLimit struct {
	RequestsPerSecond float64
	Burst             int
}

var configs = map[string]map[string]Source{
	"US": {
		"amazon":  {Name: "Amazon", Domain: "amazon.com", Currency: "USD"},
		"ebay":    {Name: "eBay", Domain: "ebay.com", Currency: "USD"},
		"walmart": {Name: "Walmart", Domain: "walmart.com", Currency: "USD"},
		"target":  {Name: "Target", Domain: "target.com", Currency: "USD"},
	},
	"CA": {
		"amazon":  {Name: "Amazon", Domain: "amazon.ca", Currency: "CAD"},
		"ebay":    {Name: "eBay", Domain: "ebay.ca", Currency: "CAD"},
		"walmart": {Name: "Walmart", Domain: "walmart.ca", Currency: "CAD"},
	},
	"UK": {
		"amazon": {Name: "Amazon", Domain: "amazon.co.uk", Currency: "GBP"},
		"ebay":   {Name: "eBay", Domain: "ebay.co.uk", Currency: "GBP"},
	},
	"DE": {
		"amazon": {Name: "Amazon", Domain: "amazon.de", Currency: "EUR"},
		"ebay":   {Name: "eBay", Domain: "ebay.de", Currency: "EUR"},
	},
	"FR": {
		"amazon": {Name: "Amazon", Domain: "amazon.fr", Currency: "EUR"},
		"ebay":   {Name: "eBay", Domain: "ebay.fr", Currency: "EUR"},
	},
	"IN": {
		"amazon":   {Name: "Amazon", Domain: "amazon.in", Currency: "INR"},
		"flipkart": {Name: "Flipkart", Domain: "flipkart.com", Currency: "INR"},
	},
	"JP": {
		"amazon": {Name: "Amazon", Domain: "amazon.co.jp", Currency: "JPY"},
	},
	"AU": {
		"amazon": {Name: "Amazon", Domain: "amazon.com.au", Currency: "AUD"},
		"ebay":   {Name: "eBay", Domain: "ebay.com.au", Currency: "AUD"},
	},
	"BR": {
		"amazon": {Name: "Amazon", Domain: "amazon.com.br", Currency: "BRL"},
	},
	"SG": {
		"amazon": {Name: "Amazon", Domain: "amazon.sg", Currency: "SGD"},
	},
}

var rateLimits = map[string]RateLimit{
	"amazon":   {RequestsPerSecond: 0.5, Burst: 2},
	"ebay":     {RequestsPerSecond: 1, Burst: 3},
	"walmart":  {RequestsPerSecond: 1, Burst: 3},
	"target":   {RequestsPerSecond: 1, Burst: 3},
	"flipkart": {RequestsPerSecond: 1, Burst: 3},
	"default":  {RequestsPerSecond: 1, Burst: 2},
}

// UserAgents is the rotation pool for outbound requests.
var UserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
}

// SourcesFor returns the sources configured for a country code, keyed
// order normalized so fan-out is deterministic in tests.
func SourcesFor(country string) []Source {
	m, ok := configs[strings.ToUpper(country)]
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Source, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}

// IsSupported reports whether a country code has any configured source.
func IsSupported(country string) bool {
	_, ok := configs[strings.ToUpper(country)]
	return ok
}

// Countries returns the supported country codes, sorted.
func Countries() []string {
	out := make([]string, 0, len(configs))
	for c := range configs {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// CurrencyFor returns the currency shared by a country's sources, or ""
// when the country is unknown.
func CurrencyFor(country string) string {
	for _, s := range SourcesFor(country) {
		return s.Currency
	}
	return ""
}

// LimitFor returns the rate limit for a source name, falling back to
// the default entry.
func LimitFor(name string) RateLimit {
	if rl, ok := rateLimits[strings.ToLower(name)]; ok {
		return rl
	}
	return rateLimits["default"]
}
