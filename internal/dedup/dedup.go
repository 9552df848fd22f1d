// Package dedup merges near-duplicate product records gathered from
// different sources. Two strategies exist: an aggressive composite-key
// filter and a title-similarity filter; the aggregator picks one via
// configuration. Both keep first-seen order and are idempotent.
package dedup

import (
	"fmt"
	"strings"

	"pricefinder/internal/domain"
)

// Policy selects the active strategy.
type Policy string

const (
	PolicyKeys       Policy = "keys"
	PolicySimilarity Policy = "similarity"
)

const (
	normalizedPrefixLen = 50
	similarityThreshold = 0.85
)

// ParsePolicy maps a config string to a Policy, defaulting to
// similarity.
func ParsePolicy(s string) Policy {
	if Policy(strings.ToLower(strings.TrimSpace(s))) == PolicyKeys {
		return PolicyKeys
	}
	return PolicySimilarity
}

// Dedupe applies the chosen policy.
func Dedupe(records []domain.Product, p Policy) []domain.Product {
	if p == PolicyKeys {
		return ByKeys(records)
	}
	return BySimilarity(records)
}

// ByKeys drops a record when any of its composite keys was already
// seen. Collisions across genuinely distinct products are accepted as
// cheap false positives.
func ByKeys(records []domain.Product) []domain.Product {
	seen := make(map[string]struct{}, len(records)*3)
	out := make([]domain.Product, 0, len(records))

	for _, r := range records {
		keys := []string{
			fmt.Sprintf("%s|%.2f|%s", r.Title, r.Price, r.Source),
			fmt.Sprintf("%s|%.2f", strings.ToLower(r.Title), r.Price),
			fmt.Sprintf("%.2f|%s", r.Price, r.Source),
		}
		dup := false
		for _, k := range keys {
			if _, ok := seen[k]; ok {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		for _, k := range keys {
			seen[k] = struct{}{}
		}
		out = append(out, r)
	}
	return out
}

// BySimilarity drops a record when its normalized title is more than
// 85% similar to any previously accepted one. Quadratic in result
// count, which stays in the tens per query.
func BySimilarity(records []domain.Product) []domain.Product {
	out := make([]domain.Product, 0, len(records))
	accepted := make([]string, 0, len(records))

	for _, r := range records {
		norm := normalizeTitle(r.Title)
		dup := false
		for _, prev := range accepted {
			if similarityRatio(norm, prev) > similarityThreshold {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		accepted = append(accepted, norm)
		out = append(out, r)
	}
	return out
}

// normalizeTitle lowercases, strips all whitespace and truncates to a
// fixed prefix so that long tails don't dominate the comparison.
func normalizeTitle(title string) string {
	n := strings.Join(strings.Fields(strings.ToLower(title)), "")
	if len(n) > normalizedPrefixLen {
		n = n[:normalizedPrefixLen]
	}
	return n
}

// similarityRatio counts the characters of a present in b, relative to
// the longer string.
func similarityRatio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	common := 0
	for _, c := range a {
		if strings.ContainsRune(b, c) {
			common++
		}
	}
	longer := len(a)
	if len(b) > longer {
		longer = len(b)
	}
	return float64(common) / float64(longer)
}
