// Package ranker scores product titles against features extracted from
// the search query and filters out weak matches.
package ranker

import (
	"regexp"
	"sort"
	"strings"

	"pricefinder/internal/domain"
)

// DefaultThreshold is the minimum score a record needs to survive
// FilterAndSort.
const DefaultThreshold = 0.2

// Scoring weights. Brand-model bonuses accumulate uncapped; only the
// final score is clamped to 1.0.
const (
	weightBrand        = 0.4
	weightBrandModel   = 0.1
	weightModelToken   = 0.3
	weightSpec         = 0.2
	weightColor        = 0.05
	weightKeywordCover = 0.05
	minKeywordLen      = 3
)

// brandModels maps a brand name to model keywords that reinforce a
// brand match when they also appear in the title.
var brandModels = map[string][]string{
	"apple":   {"iphone", "ipad", "macbook", "imac", "airpods", "watch"},
	"samsung": {"galaxy", "note", "tab", "fold", "flip", "buds"},
	"google":  {"pixel", "nest", "chromecast"},
	"oneplus": {"nord"},
	"xiaomi":  {"redmi", "poco", "mi"},
	"sony":    {"playstation", "xperia", "bravia", "wh-1000xm"},
	"dell":    {"xps", "inspiron", "latitude", "alienware"},
	"hp":      {"pavilion", "envy", "spectre", "omen"},
	"lenovo":  {"thinkpad", "ideapad", "legion", "yoga"},
	"asus":    {"zenbook", "vivobook", "rog", "tuf"},
}

var colorVocabulary = []string{
	"black", "white", "blue", "red", "green", "yellow", "purple", "pink",
	"gold", "silver", "gray", "grey", "graphite", "midnight", "starlight",
	"titanium", "bronze", "cream", "lavender", "mint",
}

var (
	// modelTokenRe matches alphanumeric model-like tokens, optionally
	// suffixed with a marketing tier.
	modelTokenRe = regexp.MustCompile(`\b([a-z]*\d+[a-z0-9]*(?:\s?(?:pro|max|plus|mini|ultra|lite|air|se|note|tab|watch))?)\b`)

	specPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(\d+)\s?(?:gb|tb)\b`),             // storage
		regexp.MustCompile(`\b(\d+(?:\.\d+)?)\s?(?:inch|in|")`), // display
		regexp.MustCompile(`\b(\d+)\s?hz\b`),                    // refresh rate
		regexp.MustCompile(`\b(\d+)\s?mp\b`),                    // camera
		regexp.MustCompile(`\b(\d+)\s?mah\b`),                   // battery
		regexp.MustCompile(`\b(\d+)\s?(?:gb)?\s?ram\b`),         // memory
	}
)

// Features are the query-derived signals the scorer matches against.
type Features struct {
	Brands      []string
	BrandModels []string
	ModelTokens []string
	Specs       []string
	Colors      []string
	Keywords    []string
}

// ExtractFeatures lowercases the query and pulls brands, model tokens,
// spec values, colors and generic keywords out of it.
func ExtractFeatures(query string) Features {
	q := strings.ToLower(strings.TrimSpace(query))
	var f Features

	for brand, models := range brandModels {
		if !strings.Contains(q, brand) {
			continue
		}
		f.Brands = append(f.Brands, brand)
		for _, m := range models {
			if strings.Contains(q, m) {
				f.BrandModels = append(f.BrandModels, m)
			}
		}
	}
	sort.Strings(f.Brands)
	sort.Strings(f.BrandModels)

	for _, m := range modelTokenRe.FindAllString(q, -1) {
		f.ModelTokens = append(f.ModelTokens, strings.TrimSpace(m))
	}
	for _, re := range specPatterns {
		for _, m := range re.FindAllString(q, -1) {
			f.Specs = append(f.Specs, strings.TrimSpace(m))
		}
	}
	for _, c := range colorVocabulary {
		if containsWord(q, c) {
			f.Colors = append(f.Colors, c)
		}
	}
	f.Keywords = strings.Fields(q)
	return f
}

// Score rates how well a title matches the features, additive with
// fixed weights and clamped to [0, 1].
func Score(title string, f Features) float64 {
	t := strings.ToLower(title)
	score := 0.0

	for _, brand := range f.Brands {
		if strings.Contains(t, brand) {
			score += weightBrand
			for _, m := range f.BrandModels {
				if strings.Contains(t, m) {
					score += weightBrandModel
				}
			}
			break
		}
	}
	for _, tok := range f.ModelTokens {
		if tok != "" && strings.Contains(t, tok) {
			score += weightModelToken
		}
	}
	for _, spec := range f.Specs {
		if strings.Contains(t, spec) {
			score += weightSpec
		}
	}
	for _, c := range f.Colors {
		if containsWord(t, c) {
			score += weightColor
		}
	}

	matched, total := 0, 0
	for _, kw := range f.Keywords {
		if len(kw) < minKeywordLen {
			continue
		}
		total++
		if strings.Contains(t, kw) {
			matched++
		}
	}
	if total > 0 {
		score += weightKeywordCover * float64(matched) / float64(total)
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// FilterAndSort scores every record, drops those under threshold and
// orders the rest by descending score, breaking ties by ascending
// price. Records keep their RelevanceScore set.
func FilterAndSort(records []domain.Product, query string, threshold float64) []domain.Product {
	f := ExtractFeatures(query)
	out := make([]domain.Product, 0, len(records))
	for _, r := range records {
		r.RelevanceScore = Score(r.Title, f)
		if r.RelevanceScore >= threshold {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].RelevanceScore != out[j].RelevanceScore {
			return out[i].RelevanceScore > out[j].RelevanceScore
		}
		return sortPrice(out[i]) < sortPrice(out[j])
	})
	return out
}

// sortPrice treats a missing price as a very large sentinel so such
// records sort last within a score tie.
func sortPrice(p domain.Product) float64 {
	if p.Price <= 0 {
		return 1e18
	}
	return p.Price
}

func containsWord(s, word string) bool {
	for _, tok := range strings.FieldsFunc(s, func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	}) {
		if tok == word {
			return true
		}
	}
	return false
}
