package domain

import "time"

// Product is the canonical record extracted from a marketplace page.
// Title and Price are mandatory; extraction that cannot produce both
// yields no Product at all. Optional fields use pointers so that
// "absent" and "zero" stay distinguishable through serialization.
type Product struct {
	Title           string   `json:"title"`
	Price           float64  `json:"price"`
	Currency        string   `json:"currency"`
	Source          string   `json:"source"`
	URL             string   `json:"url"`
	Availability    string   `json:"availability"`
	Rating          *float64 `json:"rating,omitempty"`
	ReviewsCount    *int     `json:"reviews_count,omitempty"`
	ShippingCost    *float64 `json:"shipping_cost,omitempty"`
	Seller          *string  `json:"seller,omitempty"`
	ImageURL        *string  `json:"image_url,omitempty"`
	OriginalPrice   *float64 `json:"original_price,omitempty"`
	DiscountPercent *int     `json:"discount_percent,omitempty"`
	// RelevanceScore is set only by the ranker; plain aggregation
	// leaves it at 0.
	RelevanceScore float64   `json:"relevance_score"`
	Timestamp      time.Time `json:"timestamp"`
}

// SearchRequest is the payload for single-country search.
type SearchRequest struct {
	Query   string `json:"query"`
	Country string `json:"country"`
	Rank    bool   `json:"rank,omitempty"`
}

// MultiSearchRequest is the payload for multi-country search.
type MultiSearchRequest struct {
	Query     string   `json:"query"`
	Countries []string `json:"countries"`
}

// CacheStats reports the state of the result cache.
type CacheStats struct {
	Size       int `json:"cache_size"`
	MaxSize    int `json:"max_size"`
	TTLSeconds int `json:"ttl_seconds"`
}

// SearchResponse is returned by the single-country endpoint.
type SearchResponse struct {
	Results    []Product  `json:"results"`
	TotalCount int        `json:"total_count"`
	Country    string     `json:"country"`
	Query      string     `json:"query"`
	Timestamp  int64      `json:"timestamp"`
	CacheStats CacheStats `json:"cache_stats"`
}

// MultiSearchResponse is returned by the multi-country endpoint.
type MultiSearchResponse struct {
	Results    map[string][]Product `json:"results"`
	Countries  []string             `json:"countries"`
	Query      string               `json:"query"`
	Timestamp  int64                `json:"timestamp"`
	CacheStats CacheStats           `json:"cache_stats"`
}

// Float64Ptr returns a pointer to v. Convenience for optional fields.
func Float64Ptr(v float64) *float64 { return &v }

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }

// StringPtr returns a pointer to v.
func StringPtr(v string) *string { return &v }
