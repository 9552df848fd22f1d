// Package cache stores aggregation results keyed by (query, country)
// with a TTL. The memory backend is the default; a Redis backend is
// available for deployments that share a cache between instances.
package cache

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"

	"pricefinder/internal/domain"
)

// Store is the result-cache contract used by the aggregator. Get
// returns false on miss or expiry; Set overwrites unconditionally.
type Store interface {
	Get(key string) ([]domain.Product, bool)
	Set(key string, records []domain.Product)
	Clear()
	Stats() domain.CacheStats
}

// Key derives the deterministic cache key for a query in a country.
func Key(query, country string) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%s_%s", query, country)))
	return hex.EncodeToString(sum[:])
}
