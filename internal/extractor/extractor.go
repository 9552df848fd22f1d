// Package extractor turns raw HTML into structured product records
// using ordered per-site selector chains with a generic fallback.
package extractor

import (
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"pricefinder/internal/domain"
)

const (
	maxTitleLen     = 100
	maxListingLinks = 10
)

var (
	numberPattern = regexp.MustCompile(`[\d,]+(?:\.\d+)?`)
	ratingPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)`)
	reviewPattern = regexp.MustCompile(`([\d,]+)`)
)

// Extractor parses fetched documents. It holds no per-request state
// and is safe for concurrent use.
type Extractor struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// ListingLinks pulls candidate product-page URLs from a search-results
// page. Relative hrefs are resolved against baseURL, junk schemes are
// dropped, order-preserving dedup is applied and the result is capped.
func (e *Extractor) ListingLinks(html, baseURL string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		e.logger.Debug("listing parse failed", zap.String("base", baseURL), zap.Error(err))
		return nil
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		base = nil
	}

	prof, ok := profileFor(hostOf(baseURL))
	chains := genericProfile.ListingSelectors
	if ok {
		chains = append(append([]string{}, prof.ListingSelectors...), chains...)
	}

	seen := make(map[string]struct{})
	var links []string
	for _, sel := range chains {
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			href, exists := s.Attr("href")
			if !exists {
				return true
			}
			abs, ok := resolveLink(base, href)
			if !ok {
				return true
			}
			if _, dup := seen[abs]; dup {
				return true
			}
			seen[abs] = struct{}{}
			links = append(links, abs)
			return len(links) < maxListingLinks
		})
		if len(links) >= maxListingLinks {
			break
		}
	}
	return links
}

// Product parses one product page. It returns false when either title
// or price cannot be resolved; no partial record is ever produced.
func (e *Extractor) Product(html, pageURL, currency string) (domain.Product, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		e.logger.Debug("product parse failed", zap.String("url", pageURL), zap.Error(err))
		return domain.Product{}, false
	}

	prof, matched := profileFor(hostOf(pageURL))
	source := prof.Name
	if !matched {
		source = sourceFromHost(hostOf(pageURL))
	}

	title := e.firstText(doc, prof.Title, genericProfile.Title)
	priceText := e.firstText(doc, prof.Price, genericProfile.Price)
	price, priceOK := CleanPrice(priceText)

	if title == "" || !priceOK {
		e.logger.Debug("extraction yielded no record",
			zap.String("url", pageURL),
			zap.Bool("title", title != ""),
			zap.Bool("price", priceOK))
		return domain.Product{}, false
	}
	if len(title) > maxTitleLen {
		title = title[:maxTitleLen]
	}

	p := domain.Product{
		Title:        title,
		Price:        price,
		Currency:     currency,
		Source:       source,
		URL:          pageURL,
		Availability: "Available",
		Timestamp:    time.Now(),
	}

	if avail := e.firstText(doc, prof.Availability, genericProfile.Availability); avail != "" {
		p.Availability = avail
	}
	if orig, ok := CleanPrice(e.firstText(doc, prof.OriginalPrice, genericProfile.OriginalPrice)); ok && orig > price {
		p.OriginalPrice = domain.Float64Ptr(orig)
		p.DiscountPercent = domain.IntPtr(int(math.Round((orig - price) / orig * 100)))
	}
	if rt := e.firstText(doc, prof.Rating, genericProfile.Rating); rt != "" {
		if m := ratingPattern.FindString(rt); m != "" {
			if v, err := strconv.ParseFloat(m, 64); err == nil && v >= 0 && v <= 5 {
				p.Rating = domain.Float64Ptr(v)
			}
		}
	}
	if rc := e.firstText(doc, prof.Reviews, genericProfile.Reviews); rc != "" {
		if m := reviewPattern.FindString(rc); m != "" {
			if v, err := strconv.Atoi(strings.ReplaceAll(m, ",", "")); err == nil {
				p.ReviewsCount = domain.IntPtr(v)
			}
		}
	}
	if img := e.firstAttr(doc, "src", prof.Image, genericProfile.Image); img != "" {
		p.ImageURL = domain.StringPtr(img)
	}

	return p, true
}

// firstText walks the site chain then the generic chain and returns the
// first non-empty trimmed text. A failing selector never aborts the
// rest of the chain.
func (e *Extractor) firstText(doc *goquery.Document, chain, fallback []string) string {
	for _, sel := range append(append([]string{}, chain...), fallback...) {
		if sel == "" {
			continue
		}
		if txt := strings.TrimSpace(doc.Find(sel).First().Text()); txt != "" {
			return txt
		}
	}
	return ""
}

func (e *Extractor) firstAttr(doc *goquery.Document, attr string, chain, fallback []string) string {
	for _, sel := range append(append([]string{}, chain...), fallback...) {
		if sel == "" {
			continue
		}
		if v, ok := doc.Find(sel).First().Attr(attr); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// CleanPrice strips currency symbols and thousands separators from
// free-text and parses the first numeric pattern found.
func CleanPrice(text string) (float64, bool) {
	if text == "" {
		return 0, false
	}
	m := numberPattern.FindString(text)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

func resolveLink(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}
	lower := strings.ToLower(href)
	for _, bad := range []string{"javascript:", "mailto:", "tel:"} {
		if strings.HasPrefix(lower, bad) {
			return "", false
		}
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}
	if ref.Scheme != "http" && ref.Scheme != "https" {
		return "", false
	}
	return ref.String(), true
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}

// sourceFromHost derives a display name for unrecognized hosts, e.g.
// "shop.example.co.uk" -> "Example".
func sourceFromHost(host string) string {
	host = strings.TrimPrefix(host, "www.")
	parts := strings.Split(host, ".")
	name := host
	if len(parts) >= 2 {
		name = parts[len(parts)-2]
		if len(parts) >= 3 && len(name) <= 3 {
			name = parts[len(parts)-3]
		}
	}
	if name == "" {
		return "Unknown"
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
